// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt assembles the text prompts sent to the generation API.
//
// The main conversation prompt layers global context (identity, saved info,
// long-term memory), the session history, and the pending user input into a
// single document. Section order is fixed and empty sections are omitted
// entirely. The package also builds the auxiliary prompts used for session
// titling and memory reflection.
package prompt
