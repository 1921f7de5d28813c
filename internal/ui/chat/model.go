// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kiann/seraa-tui/internal/model"
	"github.com/kiann/seraa-tui/internal/render"
	"github.com/kiann/seraa-tui/internal/session"
	"github.com/kiann/seraa-tui/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State is what the chat view is currently doing.
type State int

const (
	StateReady     State = iota // Ready for input
	StateStreaming              // A turn is in flight
)

// Mode is which surface has focus.
type Mode int

const (
	ModeChat   Mode = iota // Transcript and input
	ModePicker             // Session picker overlay
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	state State
	mode  Mode

	theme    *styles.Theme
	renderer *render.Renderer
	keyMap   KeyMap

	width  int
	height int

	// Conversation state
	mgr        *session.Manager
	active     *model.Session
	gc         *model.GlobalContext
	credential string
	modelName  string

	// In-flight turn
	pendingInput string
	streamedText string
	editTargetID string // set while the in-flight turn is a regeneration

	// Session picker
	pickerSessions []*model.Session
	pickerCursor   int

	// Transient status line
	status string

	// Components
	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
}

// New creates the chat model. The session and global context are the ones
// selected at startup; the credential may be empty, in which case the first
// send surfaces a setup hint instead of calling the API.
func New(mgr *session.Manager, active *model.Session, gc *model.GlobalContext, credential, modelName string) Model {
	input := textarea.New()
	input.Placeholder = "Message " + gc.AIName + "… (/help for commands)"
	input.CharLimit = 0
	input.SetHeight(3)
	input.ShowLineNumbers = false
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		state:      StateReady,
		mode:       ModeChat,
		theme:      styles.NewTheme(80, 24),
		renderer:   render.NewRenderer(76),
		keyMap:     DefaultKeyMap(),
		mgr:        mgr,
		active:     active,
		gc:         gc,
		credential: credential,
		modelName:  modelName,
		viewport:   viewport.New(80, 18),
		input:      input,
		spinner:    sp,
	}
}

// Init starts the spinner tick.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// ActiveSession exposes the session currently on screen.
func (m Model) ActiveSession() *model.Session {
	return m.active
}
