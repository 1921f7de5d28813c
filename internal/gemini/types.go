// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the HTTP client for the Gemini text-generation API.
package gemini

import (
	"strings"

	"github.com/kiann/seraa-tui/internal/model"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Content is one content block in a request or response.
type Content struct {
	Parts []Part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

// Part is a single text fragment within a content block.
type Part struct {
	Text string `json:"text"`
}

// SafetySetting maps one harm category to a blocking threshold.
type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// generateRequest is the body for :generateContent and
// :streamGenerateContent.
type generateRequest struct {
	Contents       []Content       `json:"contents"`
	SafetySettings []SafetySetting `json:"safetySettings,omitempty"`
}

// harmCategories are the four categories every request configures. The same
// threshold is applied to each.
var harmCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

// newGenerateRequest builds the request body for a prompt and threshold.
func newGenerateRequest(prompt string, threshold model.SafetyThreshold) generateRequest {
	settings := make([]SafetySetting, 0, len(harmCategories))
	for _, category := range harmCategories {
		settings = append(settings, SafetySetting{
			Category:  category,
			Threshold: threshold.String(),
		})
	}
	return generateRequest{
		Contents:       []Content{{Parts: []Part{{Text: prompt}}}},
		SafetySettings: settings,
	}
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// Candidate is one generated answer.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// promptFeedback reports why a prompt produced no candidates.
type promptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

// apiError is the error envelope the API returns on non-2xx responses and
// inside stream chunks.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// generateResponse is the body of a :generateContent response and of each
// streamed chunk.
type generateResponse struct {
	Candidates     []Candidate     `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
	Error          *apiError       `json:"error,omitempty"`
}

// text concatenates the text parts of the first candidate.
func (r *generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

// blockReason returns the upstream block reason, preferring prompt feedback
// over a candidate-level safety finish.
func (r *generateResponse) blockReason() string {
	if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
		return r.PromptFeedback.BlockReason
	}
	for _, c := range r.Candidates {
		if c.FinishReason == "SAFETY" {
			return "SAFETY"
		}
	}
	return ""
}
