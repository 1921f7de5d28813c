// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for sessions, interactions, and
// the global context record.
package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// INTERACTION TYPE
// =============================================================================

// Interaction is one (user input, AI response) pair within a session.
//
// Response is empty while a turn is in flight and is fully replaced (never
// appended to after completion) when the interaction is edited and
// regenerated.
type Interaction struct {
	// ID is a locally assigned token, stable for the life of the
	// interaction. Records written by old revisions may lack one; Normalize
	// assigns it lazily so every interaction stays addressable.
	ID       string `json:"id"`
	Input    string `json:"input"`
	Response string `json:"response"`
}

// NewInteraction creates an interaction with a fresh ID and empty response.
func NewInteraction(input string) *Interaction {
	return &Interaction{
		ID:    uuid.NewString(),
		Input: input,
	}
}

// Clone returns a copy of the interaction.
func (i *Interaction) Clone() *Interaction {
	c := *i
	return &c
}

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session is one persisted conversation thread.
type Session struct {
	// ID is assigned by the store on first persist; 0 means unsaved.
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	IsPinned  bool      `json:"is_pinned"`

	// Interactions is the ordered turn log. Append-only, except for the
	// edit-and-regenerate operation which truncates everything after the
	// edited entry.
	Interactions []*Interaction `json:"interactions"`
}

// NewSession creates an unsaved session with a timestamp-derived name.
func NewSession(now time.Time) *Session {
	return &Session{
		Name:         "Chat on " + now.Format("Jan 2, 2006 3:04 PM"),
		CreatedAt:    now,
		Interactions: make([]*Interaction, 0),
	}
}

// Clone returns a deep copy of the session. The copy shares nothing with the
// original; mutating one never affects the other.
func (s *Session) Clone() *Session {
	c := *s
	c.Interactions = make([]*Interaction, len(s.Interactions))
	for i, it := range s.Interactions {
		c.Interactions[i] = it.Clone()
	}
	return &c
}

// Normalize fills in shapes that legacy records may lack: missing interaction
// IDs and a nil interaction slice. It is run once at load time so use sites
// never branch on field presence.
func (s *Session) Normalize() {
	if s.Interactions == nil {
		s.Interactions = make([]*Interaction, 0)
	}
	for _, it := range s.Interactions {
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
	}
}

// FindInteraction returns the interaction with the given ID and its index, or
// (nil, -1) if absent.
func (s *Session) FindInteraction(id string) (*Interaction, int) {
	for i, it := range s.Interactions {
		if it.ID == id {
			return it, i
		}
	}
	return nil, -1
}

// LastInteraction returns the most recent interaction, or nil when empty.
func (s *Session) LastInteraction() *Interaction {
	if len(s.Interactions) == 0 {
		return nil
	}
	return s.Interactions[len(s.Interactions)-1]
}

// TruncateAfter drops every interaction strictly after index i. Out-of-range
// indices are a no-op.
func (s *Session) TruncateAfter(i int) {
	if i < 0 || i >= len(s.Interactions)-1 {
		return
	}
	s.Interactions = s.Interactions[:i+1]
}

// =============================================================================
// SESSION ORDERING
// =============================================================================

// SortSessions orders sessions for display and selection: pinned sessions
// before unpinned, then newest first within each group. The sort is stable.
func SortSessions(sessions []*Session) {
	sort.SliceStable(sessions, func(a, b int) bool {
		sa, sb := sessions[a], sessions[b]
		if sa.IsPinned != sb.IsPinned {
			return sa.IsPinned
		}
		return sa.CreatedAt.After(sb.CreatedAt)
	})
}

// SelectLatest returns the session to auto-load: the first in SortSessions
// order, so a pinned session wins over any unpinned one regardless of
// recency. Returns nil for an empty slice.
func SelectLatest(sessions []*Session) *Session {
	if len(sessions) == 0 {
		return nil
	}
	sorted := make([]*Session, len(sessions))
	copy(sorted, sessions)
	SortSessions(sorted)
	return sorted[0]
}
