// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for sessions, interactions, and
// the global context record.
//
// A Session is one persisted conversation thread holding ordered Interactions
// (user input / AI response pairs) plus display metadata. The GlobalContext is
// a singleton record shared by every session: persona fields, user-curated
// saved facts, and AI-authored long-term memory entries.
//
// All types are plain data. Clone produces the deep snapshot that must be
// taken before a value crosses a persistence or network boundary; live values
// bound to the UI are never handed to the store or the generation client
// directly.
package model
