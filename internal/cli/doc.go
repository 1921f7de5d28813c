// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses command-line arguments and implements the non-TUI
// commands: session listing, credential management, transcript export, and
// version output. Running the binary with no command opens the chat TUI.
package cli
