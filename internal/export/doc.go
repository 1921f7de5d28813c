// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversation transcripts to files. Markdown and
// JSON formats are supported; both operate on a session snapshot and never
// touch the store.
package export
