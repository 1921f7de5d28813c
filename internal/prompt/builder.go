// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/kiann/seraa-tui/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// codeTagInstruction tells the model to emit code in <CODE> tags instead of
// markdown fences, so the renderer can rely on a single code format.
const codeTagInstruction = "IMPORTANT INSTRUCTION: When you provide code, you MUST wrap it in custom tags. " +
	"Use <CODE language=\"language_name\"> for the opening tag and </CODE> for the closing tag. " +
	"Example: <CODE language=\"python\">print('Hello')</CODE>. DO NOT use markdown backticks (```).\n\n"

const (
	// timeLayout renders like "Monday, July 21, 2025 at 02:30 PM".
	timeLayout = "Monday, January 2, 2006 at 03:04 PM"

	// memoryDateLayout renders like "7/21/2025".
	memoryDateLayout = "1/2/2006"
)

// =============================================================================
// BUILDER
// =============================================================================

// Builder assembles prompts against a fixed time zone. The clock is
// injectable for tests; zero-value fields fall back to the local zone and
// wall clock.
type Builder struct {
	zone  *time.Location
	label string
	now   func() time.Time
}

// NewBuilder creates a Builder for the given IANA zone name and display
// label (e.g. "Asia/Jakarta", "WIB"). An unresolvable zone falls back to
// UTC.
func NewBuilder(zoneName, label string) *Builder {
	zone, err := time.LoadLocation(zoneName)
	if err != nil {
		zone = time.UTC
	}
	return &Builder{zone: zone, label: label, now: time.Now}
}

// WithClock returns a copy of the builder using the given clock.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	clone := *b
	clone.now = now
	return &clone
}

// =============================================================================
// CONVERSATION PROMPT
// =============================================================================

// Build assembles the full conversation prompt: time header, identity,
// code-format instruction, saved info, long-term memory, history, and the
// pending input. Saved info, memory, and history sections are omitted when
// empty.
func (b *Builder) Build(gc *model.GlobalContext, history []*model.Interaction, input string) string {
	var sb strings.Builder

	sb.WriteString("Current Time: " + b.now().In(b.zone).Format(timeLayout))
	if b.label != "" {
		sb.WriteString(" (" + b.label + ")")
	}
	sb.WriteString("\n\n")

	sb.WriteString("AI Name: " + gc.AIName + "\n")
	sb.WriteString("User Name: " + gc.UserName + "\n")
	sb.WriteString("Location: " + gc.UserLocation + "\n\n")

	sb.WriteString(codeTagInstruction)

	if len(gc.SavedInfo) > 0 {
		sb.WriteString("Saved Info:\n")
		for i, item := range gc.SavedInfo {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString("- " + item)
		}
		sb.WriteString("\n\n")
	}

	if len(gc.LongTermMemory) > 0 {
		sb.WriteString("My Long-Term Memory (My previous observations about the user):\n")
		for i, entry := range gc.LongTermMemory {
			if i > 0 {
				sb.WriteString("\n")
			}
			date := entry.SavedAt.In(b.zone).Format(memoryDateLayout)
			sb.WriteString(fmt.Sprintf("- On %s, I noted: %q", date, entry.Content))
		}
		sb.WriteString("\n\n")
	}

	if len(history) > 0 {
		sb.WriteString("History:\n")
		for i, interaction := range history {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString("User: " + interaction.Input + "\nAI: " + interaction.Response)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("User: " + input)

	return strings.TrimSpace(sb.String())
}

// =============================================================================
// AUXILIARY PROMPTS
// =============================================================================

// TitlePrompt builds the prompt that asks the model to name a new session
// after its first user input.
func TitlePrompt(input string) string {
	return fmt.Sprintf("Based on this initial user prompt, create a very short title for this conversation (maximum 4-5 words). User Prompt: %q", input)
}

// ReflectionPrompt builds the prompt that asks the model to distill a
// long-term observation about the user from the most recent window of the
// conversation. Window caps how many trailing interactions the excerpt
// includes; a non-positive window means all of them.
func ReflectionPrompt(gc *model.GlobalContext, history []*model.Interaction, window int) string {
	recent := history
	if window > 0 && len(recent) > window {
		recent = recent[len(recent)-window:]
	}

	pairs := make([]string, 0, len(recent))
	for _, interaction := range recent {
		pairs = append(pairs, "User: "+interaction.Input+"\nAI: "+interaction.Response)
	}
	excerpt := strings.Join(pairs, "\n\n")

	return fmt.Sprintf(`You are an AI assistant named %s. Your user is %s.
Based *only* on the recent conversation excerpt below, formulate a single, insightful observation about the user or their current activity from your perspective as their AI companion.
Start your response with "I've noticed that..." or "I understand now that..." or a similar reflective phrase. Be concise.

---
RECENT CONVERSATION:
%s
---

Your reflection on the user:`, gc.AIName, gc.UserName, excerpt)
}
