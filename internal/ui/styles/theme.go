// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME
// =============================================================================

// Theme holds the styled components for the chat interface. It detects the
// terminal's color capability once at construction.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// Header
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderMeta  lipgloss.Style

	// Message bubbles
	UserBubble  lipgloss.Style
	AIBubble    lipgloss.Style
	UserLabel   lipgloss.Style
	AILabel     lipgloss.Style
	ErrorNotice lipgloss.Style
	BlockNotice lipgloss.Style

	// Session list
	SessionItem     lipgloss.Style
	SessionSelected lipgloss.Style
	SessionPinned   lipgloss.Style

	// Input area
	InputBox    lipgloss.Style
	Placeholder lipgloss.Style

	// Status bar
	StatusBar  lipgloss.Style
	StatusKey  lipgloss.Style
	StatusInfo lipgloss.Style
	Spinner    lipgloss.Style

	// Help
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
}

// NewTheme creates a theme sized for the given terminal dimensions.
func NewTheme(width, height int) *Theme {
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
		Width:        width,
		Height:       height,
	}
	t.build()
	return t
}

// Resize updates the theme's layout dimensions.
func (t *Theme) Resize(width, height int) {
	t.Width = width
	t.Height = height
	t.build()
}

// bubbleWidth is how wide a message bubble may grow relative to the
// viewport.
func (t *Theme) bubbleWidth() int {
	w := t.Width * 3 / 4
	if w < 24 {
		w = 24
	}
	return w
}

func (t *Theme) build() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1).
		Width(t.Width)
	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(Violet).
		Bold(true)
	t.HeaderMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1).
		MaxWidth(t.bubbleWidth())
	t.AIBubble = lipgloss.NewStyle().
		Foreground(AIBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AIBubbleBorder).
		Padding(0, 1).
		MaxWidth(t.bubbleWidth())
	t.UserLabel = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)
	t.AILabel = lipgloss.NewStyle().
		Foreground(Violet).
		Bold(true)
	t.ErrorNotice = lipgloss.NewStyle().
		Foreground(Rose)
	t.BlockNotice = lipgloss.NewStyle().
		Foreground(Amber)

	t.SessionItem = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)
	t.SessionSelected = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Violet).
		Padding(0, 1).
		Bold(true)
	t.SessionPinned = lipgloss.NewStyle().
		Foreground(Amber)

	t.InputBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1).
		Width(t.Width - 2)
	t.Placeholder = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1).
		Width(t.Width)
	t.StatusKey = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)
	t.StatusInfo = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.Spinner = lipgloss.NewStyle().
		Foreground(Violet)

	t.HelpKey = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)
	t.HelpDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
}
