// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kiann/seraa-tui/internal/session"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keyMap.Quit) {
			return m, tea.Quit
		}
		if m.mode == ModePicker {
			return m.updatePicker(msg)
		}
		return m.updateChat(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case turnFragmentMsg:
		if msg.event.SessionID == m.active.ID {
			m.streamedText += msg.event.Fragment
			m.refreshViewport()
		}
		return m, waitForEvent(msg.ch)

	case turnDoneMsg:
		return m.handleTurnDone(msg)

	case sessionsLoadedMsg:
		if msg.err != nil {
			m.status = "Could not load sessions: " + msg.err.Error()
			return m, nil
		}
		m.pickerSessions = msg.sessions
		m.pickerCursor = 0
		m.mode = ModePicker
		return m, nil

	case sessionSwitchedMsg:
		if msg.err != nil {
			m.status = "Could not switch session: " + msg.err.Error()
			return m, nil
		}
		m.active = msg.session
		m.mode = ModeChat
		m.streamedText = ""
		m.pendingInput = ""
		m.status = ""
		m.refreshViewport()
		return m, nil

	case reflectionDoneMsg:
		if msg.err != nil {
			if errors.Is(msg.err, session.ErrNothingToRemember) {
				m.status = "Nothing to remember yet."
			} else {
				m.status = "Could not save a memory: " + msg.err.Error()
			}
		} else {
			if msg.gc != nil {
				m.gc = msg.gc
			}
			m.status = "Remembered: " + msg.reflection
		}
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.status = "Export failed: " + msg.err.Error()
		} else {
			m.status = "Exported to " + msg.path
		}
		return m, nil

	case maintenanceDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		m.refreshViewport()
		return m, nil
	}

	return m, nil
}

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.Resize(msg.Width, msg.Height)
	m.renderer = newRendererForWidth(msg.Width)

	inputHeight := 5
	chromeHeight := 3 // header + status bar
	m.viewport.Width = msg.Width
	m.viewport.Height = msg.Height - inputHeight - chromeHeight
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
	m.input.SetWidth(msg.Width - 4)
	m.refreshViewport()
	return m
}

// =============================================================================
// CHAT MODE
// =============================================================================

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.NewSession):
		return m, newSessionCmd(m.mgr)

	case key.Matches(msg, m.keyMap.Sessions):
		return m, loadSessionsCmd(m.mgr)

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Send):
		return m.handleSend()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSend() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if strings.HasPrefix(text, "/") {
		m.input.Reset()
		return m.handleCommand(text)
	}
	return m.startTurn(text)
}

func (m Model) startTurn(text string) (tea.Model, tea.Cmd) {
	if m.state == StateStreaming {
		m.status = "Still thinking — one turn at a time."
		return m, nil
	}
	if m.credential == "" {
		m.status = "No API key configured. Run: seraa key set"
		return m, nil
	}

	m.input.Reset()
	m.state = StateStreaming
	m.pendingInput = text
	m.streamedText = ""
	m.editTargetID = ""
	m.status = ""
	m.refreshViewport()
	return m, submitTurnCmd(m.mgr, m.active, m.gc, text, m.credential)
}

func (m Model) handleTurnDone(msg turnDoneMsg) (tea.Model, tea.Cmd) {
	m.state = StateReady
	m.pendingInput = ""
	m.streamedText = ""
	m.editTargetID = ""

	if msg.event.SessionID != m.active.ID {
		// A stale turn resolving after a session switch; its outcome
		// was already persisted (or dropped) by the manager. Only the
		// streaming state is cleared so new turns are accepted again.
		return m, nil
	}

	if sess := msg.event.Session; sess != nil {
		m.active = sess
	}

	if err := msg.event.Err; err != nil {
		switch {
		case errors.Is(err, session.ErrEmptyInput):
			m.status = "Type something first."
		case errors.Is(err, session.ErrTurnInFlight):
			m.status = "Still thinking — one turn at a time."
		case errors.Is(err, session.ErrNoCredential):
			m.status = "No API key configured. Run: seraa key set"
		case errors.Is(err, session.ErrInteractionNotFound):
			m.status = "That turn no longer exists."
		default:
			m.status = err.Error()
		}
	}
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func (m Model) handleCommand(text string) (tea.Model, tea.Cmd) {
	name, arg := splitCommand(text)

	switch name {
	case "/new":
		return m, newSessionCmd(m.mgr)

	case "/sessions":
		return m, loadSessionsCmd(m.mgr)

	case "/switch":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			m.status = "Usage: /switch <session id>"
			return m, nil
		}
		return m, switchSessionCmd(m.mgr, id)

	case "/pin":
		snapshot := m.active.Clone()
		m.active.IsPinned = !m.active.IsPinned
		return m, togglePinCmd(m.mgr, snapshot)

	case "/rename":
		if arg == "" {
			m.status = "Usage: /rename <new name>"
			return m, nil
		}
		snapshot := m.active.Clone()
		m.active.Name = strings.TrimSpace(arg)
		return m, renameSessionCmd(m.mgr, snapshot, arg)

	case "/edit":
		return m.handleEditCommand(arg)

	case "/remember":
		if m.credential == "" {
			m.status = "No API key configured. Run: seraa key set"
			return m, nil
		}
		m.status = "Reflecting…"
		return m, reflectCmd(m.mgr, m.active, m.gc, m.credential)

	case "/delete":
		return m, deleteSessionCmd(m.mgr, m.active.ID)

	case "/export":
		return m, exportCmd(m.active, arg)

	case "/help":
		m.status = helpText
		return m, nil

	case "/quit":
		return m, tea.Quit

	default:
		m.status = "Unknown command " + name + " — try /help"
		return m, nil
	}
}

// handleEditCommand parses "/edit <turn number> <new text>" and starts a
// regeneration. Turn numbers are 1-based as displayed in the transcript.
func (m Model) handleEditCommand(arg string) (tea.Model, tea.Cmd) {
	if m.state == StateStreaming {
		m.status = "Still thinking — one turn at a time."
		return m, nil
	}
	if m.credential == "" {
		m.status = "No API key configured. Run: seraa key set"
		return m, nil
	}

	fields := strings.SplitN(arg, " ", 2)
	if len(fields) != 2 || strings.TrimSpace(fields[1]) == "" {
		m.status = "Usage: /edit <turn number> <new text>"
		return m, nil
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 1 || n > len(m.active.Interactions) {
		m.status = fmt.Sprintf("No turn %s — this session has %d.", fields[0], len(m.active.Interactions))
		return m, nil
	}

	target := m.active.Interactions[n-1]
	newText := strings.TrimSpace(fields[1])

	m.state = StateStreaming
	m.pendingInput = newText
	m.streamedText = ""
	m.editTargetID = target.ID
	m.status = ""
	m.refreshViewport()
	return m, editTurnCmd(m.mgr, m.active, m.gc, target.ID, newText, m.credential)
}

// splitCommand separates "/name arg text" into its command and argument.
func splitCommand(text string) (string, string) {
	fields := strings.SplitN(text, " ", 2)
	name := strings.ToLower(fields[0])
	if len(fields) == 1 {
		return name, ""
	}
	return name, strings.TrimSpace(fields[1])
}

const helpText = "/new /sessions /switch <id> /pin /rename <name> /edit <n> <text> /remember /delete /export [dir] /quit"

// =============================================================================
// PICKER MODE
// =============================================================================

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}
	case key.Matches(msg, m.keyMap.Down):
		if m.pickerCursor < len(m.pickerSessions)-1 {
			m.pickerCursor++
		}
	case key.Matches(msg, m.keyMap.Select):
		if len(m.pickerSessions) > 0 {
			return m, switchSessionCmd(m.mgr, m.pickerSessions[m.pickerCursor].ID)
		}
	case key.Matches(msg, m.keyMap.Back):
		m.mode = ModeChat
	}
	return m, nil
}
