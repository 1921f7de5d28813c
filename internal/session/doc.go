// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session orchestrates the conversation lifecycle: starting and
// selecting sessions, the submit/receive/persist cycle of a turn, the
// edit-and-regenerate operation that truncates and replays history, and the
// "remember" reflection that appends to long-term memory.
//
// All turn logic is single-flight per session. A per-session busy flag is
// taken before the first suspension point and released when the operation
// resolves, so two rapid submissions against the same session cannot
// interleave. Operations on different sessions run independently.
package session
