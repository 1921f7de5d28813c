// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the Seraa TUI.
// All colors use Lip Gloss AdaptiveColor so the palette adjusts to light
// and dark terminals automatically.
package styles
