// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewThemeDimensions(t *testing.T) {
	theme := NewTheme(120, 40)

	if theme.Width != 120 || theme.Height != 40 {
		t.Errorf("dimensions = %dx%d, want 120x40", theme.Width, theme.Height)
	}
	if theme.Header.GetWidth() != 120 {
		t.Errorf("header width = %d, want 120", theme.Header.GetWidth())
	}
}

func TestThemeResize(t *testing.T) {
	theme := NewTheme(80, 24)
	theme.Resize(100, 30)

	if theme.Width != 100 || theme.Height != 30 {
		t.Errorf("dimensions = %dx%d after resize, want 100x30", theme.Width, theme.Height)
	}
	if theme.StatusBar.GetWidth() != 100 {
		t.Errorf("status bar width = %d, want 100", theme.StatusBar.GetWidth())
	}
}

func TestBubbleWidthFloor(t *testing.T) {
	theme := NewTheme(10, 5)

	if w := theme.bubbleWidth(); w < 24 {
		t.Errorf("bubble width = %d on narrow terminal, want floor of 24", w)
	}
}
