// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render formats model responses for terminal display. Responses
// carry code in <CODE language="..."> tags rather than markdown fences; the
// renderer splits a message into prose and code segments, runs prose through
// a markdown renderer, and syntax-highlights code blocks.
package render
