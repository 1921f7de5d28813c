// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kiann/seraa-tui/internal/export"
	"github.com/kiann/seraa-tui/internal/model"
	"github.com/kiann/seraa-tui/internal/session"
)

// =============================================================================
// TURN COMMANDS
// =============================================================================

// submitTurnCmd runs a turn in the background and opens the event channel
// the update loop drains. The manager works on deep copies of the session
// and global context; the update loop never shares mutable state with the
// turn goroutine and adopts the resolved session from the done event. The
// returned batch starts the turn and the first channel read together.
func submitTurnCmd(mgr *session.Manager, sess *model.Session, gc *model.GlobalContext, input, credential string) tea.Cmd {
	ch := make(chan streamEvent, 32)
	snapshot := sess.Clone()
	gcSnapshot := gc.Clone()
	id := snapshot.ID

	run := func() tea.Msg {
		interaction, err := mgr.SubmitTurn(context.Background(), snapshot, gcSnapshot, input, credential, func(fragment string) {
			ch <- streamEvent{SessionID: id, Fragment: fragment}
		})
		ch <- streamEvent{SessionID: id, Done: true, Interaction: interaction, Session: snapshot, Err: err}
		close(ch)
		return nil
	}

	return tea.Batch(func() tea.Msg { return run() }, waitForEvent(ch))
}

// editTurnCmd runs an edit-and-regenerate in the background, on snapshots
// like submitTurnCmd.
func editTurnCmd(mgr *session.Manager, sess *model.Session, gc *model.GlobalContext, interactionID, newInput, credential string) tea.Cmd {
	ch := make(chan streamEvent, 32)
	snapshot := sess.Clone()
	gcSnapshot := gc.Clone()
	id := snapshot.ID

	run := func() tea.Msg {
		interaction, err := mgr.EditAndRegenerate(context.Background(), snapshot, gcSnapshot, interactionID, newInput, credential, func(fragment string) {
			ch <- streamEvent{SessionID: id, Fragment: fragment}
		})
		ch <- streamEvent{SessionID: id, Done: true, Interaction: interaction, Session: snapshot, Err: err}
		close(ch)
		return nil
	}

	return tea.Batch(func() tea.Msg { return run() }, waitForEvent(ch))
}

// waitForEvent reads one event from an in-flight turn's channel.
func waitForEvent(ch chan streamEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		if event.Done {
			return turnDoneMsg{event: event}
		}
		return turnFragmentMsg{event: event, ch: ch}
	}
}

// =============================================================================
// SESSION COMMANDS
// =============================================================================

// loadSessionsCmd fetches the session list for the picker.
func loadSessionsCmd(mgr *session.Manager) tea.Cmd {
	return func() tea.Msg {
		sessions, err := mgr.Sessions(context.Background())
		return sessionsLoadedMsg{sessions: sessions, err: err}
	}
}

// switchSessionCmd loads one session by id.
func switchSessionCmd(mgr *session.Manager, id int64) tea.Cmd {
	return func() tea.Msg {
		sess, err := mgr.Session(context.Background(), id)
		return sessionSwitchedMsg{session: sess, err: err}
	}
}

// newSessionCmd starts a fresh session and activates it.
func newSessionCmd(mgr *session.Manager) tea.Cmd {
	return func() tea.Msg {
		sess, err := mgr.StartSession(context.Background())
		return sessionSwitchedMsg{session: sess, err: err}
	}
}

// deleteSessionCmd deletes a session; the manager picks the next active
// one.
func deleteSessionCmd(mgr *session.Manager, id int64) tea.Cmd {
	return func() tea.Msg {
		next, err := mgr.DeleteSession(context.Background(), id)
		return sessionSwitchedMsg{session: next, err: err}
	}
}

// renameSessionCmd persists a rename. The caller hands in a snapshot and
// applies the same change to its own copy.
func renameSessionCmd(mgr *session.Manager, snapshot *model.Session, name string) tea.Cmd {
	return func() tea.Msg {
		return maintenanceDoneMsg{err: mgr.RenameSession(context.Background(), snapshot, name)}
	}
}

// togglePinCmd persists a pin flip, on a pre-flip snapshot.
func togglePinCmd(mgr *session.Manager, snapshot *model.Session) tea.Cmd {
	return func() tea.Msg {
		return maintenanceDoneMsg{err: mgr.TogglePin(context.Background(), snapshot)}
	}
}

// =============================================================================
// REFLECTION AND EXPORT COMMANDS
// =============================================================================

// reflectCmd runs the "remember" operation in the background, on snapshots
// of both the session and the global context. The done message carries the
// context snapshot back so the update loop can adopt the new memory entry.
func reflectCmd(mgr *session.Manager, sess *model.Session, gc *model.GlobalContext, credential string) tea.Cmd {
	snapshot := sess.Clone()
	gcSnapshot := gc.Clone()
	return func() tea.Msg {
		reflection, err := mgr.ReflectAndRemember(context.Background(), snapshot, gcSnapshot, credential)
		return reflectionDoneMsg{reflection: reflection, gc: gcSnapshot, err: err}
	}
}

// exportCmd writes the session transcript to a markdown file.
func exportCmd(sess *model.Session, outputDir string) tea.Cmd {
	snapshot := sess.Clone()
	return func() tea.Msg {
		opts := export.DefaultOptions()
		if outputDir != "" {
			opts.OutputDir = outputDir
		}
		path, err := export.Markdown(snapshot, opts)
		return exportDoneMsg{path: path, err: err}
	}
}
