// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides local persistence for sessions and the global
// context record.
//
// The backing store is a single SQLite database (~/.seraa/seraa.db, pure Go
// driver). Sessions live in an autoincrement-keyed table whose interaction
// log is stored as a JSON document column; the global context is a singleton
// row. Legacy document shapes from earlier revisions are migrated to the
// canonical form at read time, so nothing above this package ever branches on
// field presence.
//
// The store assumes a single active process; there is no cross-process
// conflict resolution.
package store
