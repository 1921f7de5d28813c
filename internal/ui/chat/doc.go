// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea model for the conversation view: a
// scrolling transcript, a text input, and slash commands for session
// management. Turn submission runs in a background goroutine and feeds
// streamed fragments back into the update loop as messages.
package chat
