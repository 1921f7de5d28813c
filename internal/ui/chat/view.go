// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/kiann/seraa-tui/internal/render"
	"github.com/kiann/seraa-tui/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat interface.
func (m Model) View() string {
	if m.mode == ModePicker {
		return m.viewPicker()
	}

	var sb strings.Builder
	sb.WriteString(m.viewHeader())
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.theme.InputBox.Render(m.input.View()))
	sb.WriteString("\n")
	sb.WriteString(m.viewStatusBar())
	return sb.String()
}

func (m Model) viewHeader() string {
	title := m.theme.HeaderTitle.Render(m.active.Name)
	pin := ""
	if m.active.IsPinned {
		pin = m.theme.SessionPinned.Render(" ●")
	}
	meta := m.theme.HeaderMeta.Render("  " + m.modelName)
	return m.theme.Header.Render(title + pin + meta)
}

func (m Model) viewStatusBar() string {
	if m.state == StateStreaming {
		return m.theme.StatusBar.Render(m.theme.Spinner.Render(m.spinner.View()) + " " + m.gc.AIName + " is thinking…")
	}
	if m.status != "" {
		return m.theme.StatusBar.Render(util.TruncateWidth(m.status, m.width-2))
	}
	help := m.theme.StatusKey.Render("enter") + m.theme.StatusInfo.Render(" send  ") +
		m.theme.StatusKey.Render("ctrl+s") + m.theme.StatusInfo.Render(" sessions  ") +
		m.theme.StatusKey.Render("ctrl+n") + m.theme.StatusInfo.Render(" new  ") +
		m.theme.StatusKey.Render("/help") + m.theme.StatusInfo.Render(" commands")
	return m.theme.StatusBar.Render(help)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshViewport re-renders the transcript into the viewport.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// renderTranscript renders the active session. Turns run against a deep
// copy, so m.active never changes mid-stream: an in-flight submission is
// drawn from pendingInput/streamedText, and an in-flight edit overlays its
// target turn (later turns are hidden, matching the truncation the edit
// will persist).
func (m *Model) renderTranscript() string {
	var sb strings.Builder

	for i, interaction := range m.active.Interactions {
		input := interaction.Input
		response := interaction.Response
		editing := m.state == StateStreaming && m.editTargetID != "" && interaction.ID == m.editTargetID
		if editing {
			input = m.pendingInput
			response = m.streamedText
		}

		sb.WriteString(m.theme.UserLabel.Render(fmt.Sprintf("%d · %s", i+1, m.gc.UserName)))
		sb.WriteString("\n")
		sb.WriteString(m.theme.UserBubble.Render(input))
		sb.WriteString("\n\n")

		sb.WriteString(m.theme.AILabel.Render(m.gc.AIName))
		sb.WriteString("\n")
		if response != "" {
			sb.WriteString(m.theme.AIBubble.Render(m.renderer.Message(response)))
		} else {
			sb.WriteString(m.theme.AIBubble.Render("…"))
		}
		sb.WriteString("\n\n")

		if editing {
			break
		}
	}

	// An in-flight submission; its interaction lands in m.active with the
	// done event.
	if m.state == StateStreaming && m.editTargetID == "" && m.pendingInput != "" {
		sb.WriteString(m.theme.UserLabel.Render(m.gc.UserName))
		sb.WriteString("\n")
		sb.WriteString(m.theme.UserBubble.Render(m.pendingInput))
		sb.WriteString("\n\n")
		sb.WriteString(m.theme.AILabel.Render(m.gc.AIName))
		sb.WriteString("\n")
		text := m.streamedText
		if text == "" {
			text = "…"
		}
		sb.WriteString(m.theme.AIBubble.Render(text))
		sb.WriteString("\n\n")
	}

	if len(m.active.Interactions) == 0 && m.state != StateStreaming {
		sb.WriteString(m.theme.HeaderMeta.Render("No messages yet. Say hello."))
		sb.WriteString("\n")
	}

	return sb.String()
}

// =============================================================================
// SESSION PICKER
// =============================================================================

func (m Model) viewPicker() string {
	var sb strings.Builder
	sb.WriteString(m.theme.Header.Render(m.theme.HeaderTitle.Render("Sessions")))
	sb.WriteString("\n\n")

	if len(m.pickerSessions) == 0 {
		sb.WriteString(m.theme.HeaderMeta.Render("  No sessions."))
		sb.WriteString("\n")
	}

	for i, sess := range m.pickerSessions {
		label := fmt.Sprintf("%d  %s", sess.ID, util.TruncateWidth(sess.Name, m.width-12))
		if sess.IsPinned {
			label = "● " + label
		} else {
			label = "  " + label
		}
		if i == m.pickerCursor {
			sb.WriteString(m.theme.SessionSelected.Render(label))
		} else {
			sb.WriteString(m.theme.SessionItem.Render(label))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.theme.HelpKey.Render("enter") + m.theme.HelpDesc.Render(" open  ") +
		m.theme.HelpKey.Render("esc") + m.theme.HelpDesc.Render(" back"))
	return sb.String()
}

// =============================================================================
// HELPERS
// =============================================================================

// newRendererForWidth sizes the markdown renderer to the terminal.
func newRendererForWidth(width int) *render.Renderer {
	w := width - 4
	if w < 20 {
		w = 20
	}
	return render.NewRenderer(w)
}
