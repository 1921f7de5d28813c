// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/kiann/seraa-tui/internal/model"

// =============================================================================
// TEA MESSAGES
// =============================================================================

// streamEvent is one event emitted by an in-flight turn.
type streamEvent struct {
	// SessionID identifies the session the turn runs against, so events
	// from a stale turn can be ignored after a switch.
	SessionID int64

	// Fragment is a piece of streamed response text.
	Fragment string

	// Done marks the terminal event. Interaction, Session, and Err are
	// only set here. Session is the resolved snapshot the turn ran
	// against; the update loop adopts it as the active session.
	Done        bool
	Interaction *model.Interaction
	Session     *model.Session
	Err         error
}

// turnFragmentMsg delivers one streamed fragment to the update loop.
type turnFragmentMsg struct {
	event streamEvent
	ch    chan streamEvent
}

// turnDoneMsg delivers the turn's terminal event.
type turnDoneMsg struct {
	event streamEvent
}

// sessionsLoadedMsg delivers the session list for the picker.
type sessionsLoadedMsg struct {
	sessions []*model.Session
	err      error
}

// sessionSwitchedMsg delivers a newly activated session.
type sessionSwitchedMsg struct {
	session *model.Session
	err     error
}

// reflectionDoneMsg delivers the outcome of a /remember call. On success gc
// is the context snapshot holding the new memory entry; the update loop
// adopts it as the live context.
type reflectionDoneMsg struct {
	reflection string
	gc         *model.GlobalContext
	err        error
}

// exportDoneMsg delivers the outcome of a /export call.
type exportDoneMsg struct {
	path string
	err  error
}

// maintenanceDoneMsg delivers the outcome of a rename / pin / title
// refresh, where only an error matters.
type maintenanceDoneMsg struct {
	err error
}
