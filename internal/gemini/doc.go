// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the HTTP client for the Gemini text-generation API.
//
// The client speaks the v1beta REST surface directly: one-shot calls via
// models/<model>:generateContent and incremental streaming via
// :streamGenerateContent with server-sent events. A single safety threshold
// is fanned out identically to the four harm categories the API understands.
//
// A response with no usable candidates is classified as a Blocked outcome
// (carrying the upstream block reason when one was provided), which callers
// must treat as a distinguishable success-shaped result rather than a
// transport failure.
package gemini
