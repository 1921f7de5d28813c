// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for sessions, interactions, and
// the global context record.
package model

import (
	"strings"
	"time"
)

// =============================================================================
// SAFETY THRESHOLD
// =============================================================================

// SafetyThreshold is the content-filter permissiveness applied to a
// generation request. A single value is fanned out identically to all four
// harm categories the API understands.
type SafetyThreshold string

const (
	// BlockNone disables the content filter entirely.
	BlockNone SafetyThreshold = "BLOCK_NONE"
	// BlockOnlyHigh blocks only high-probability harmful content.
	BlockOnlyHigh SafetyThreshold = "BLOCK_ONLY_HIGH"
	// BlockMediumAndAbove blocks medium and high probability content.
	BlockMediumAndAbove SafetyThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	// BlockLowAndAbove blocks everything but negligible-probability content.
	BlockLowAndAbove SafetyThreshold = "BLOCK_LOW_AND_ABOVE"
)

// DefaultSafetyThreshold matches the first-run installation default.
const DefaultSafetyThreshold = BlockNone

// String returns the wire form of the threshold.
func (t SafetyThreshold) String() string {
	return string(t)
}

// IsValid reports whether the threshold is one of the known values.
func (t SafetyThreshold) IsValid() bool {
	switch t {
	case BlockNone, BlockOnlyHigh, BlockMediumAndAbove, BlockLowAndAbove:
		return true
	}
	return false
}

// ParseSafetyThreshold converts a stored string into a SafetyThreshold.
// Legacy records stored lowercase values ("block_none"); both spellings are
// accepted. Unknown values fall back to the installation default.
func ParseSafetyThreshold(s string) SafetyThreshold {
	t := SafetyThreshold(strings.ToUpper(strings.TrimSpace(s)))
	if t.IsValid() {
		return t
	}
	return DefaultSafetyThreshold
}

// =============================================================================
// GLOBAL CONTEXT
// =============================================================================

// MemoryEntry is one AI-authored reflection in long-term memory.
type MemoryEntry struct {
	SavedAt time.Time `json:"saved_at"`
	Content string    `json:"content"`
}

// GlobalContext is the singleton cross-session record: persona fields,
// user-curated saved facts, and AI long-term memory. Exactly one instance
// exists after first access; the store creates it with defaults on first
// read.
type GlobalContext struct {
	AIName       string `json:"ai_name"`
	UserName     string `json:"user_name"`
	UserLocation string `json:"user_location"`

	// SavedInfo holds user-curated persistent facts injected into every
	// prompt.
	SavedInfo []string `json:"saved_info"`

	// LongTermMemory holds AI-authored reflections. Append-only from the
	// turn lifecycle's perspective; entries are removed only through the
	// settings surface.
	LongTermMemory []MemoryEntry `json:"ai_long_term_memory"`

	SafetyThreshold SafetyThreshold `json:"safety_threshold"`
}

// DefaultGlobalContext returns the record created on first access.
func DefaultGlobalContext() *GlobalContext {
	return &GlobalContext{
		AIName:          "Seraa",
		UserName:        "User",
		UserLocation:    "Jakarta",
		SavedInfo:       make([]string, 0),
		LongTermMemory:  make([]MemoryEntry, 0),
		SafetyThreshold: DefaultSafetyThreshold,
	}
}

// Clone returns a deep copy of the global context.
func (g *GlobalContext) Clone() *GlobalContext {
	c := *g
	c.SavedInfo = make([]string, len(g.SavedInfo))
	copy(c.SavedInfo, g.SavedInfo)
	c.LongTermMemory = make([]MemoryEntry, len(g.LongTermMemory))
	copy(c.LongTermMemory, g.LongTermMemory)
	return &c
}

// Normalize fills defaults for any fields a legacy record left empty and
// canonicalizes the safety threshold spelling.
func (g *GlobalContext) Normalize() {
	def := DefaultGlobalContext()
	if g.AIName == "" {
		g.AIName = def.AIName
	}
	if g.UserName == "" {
		g.UserName = def.UserName
	}
	if g.UserLocation == "" {
		g.UserLocation = def.UserLocation
	}
	if g.SavedInfo == nil {
		g.SavedInfo = make([]string, 0)
	}
	if g.LongTermMemory == nil {
		g.LongTermMemory = make([]MemoryEntry, 0)
	}
	g.SafetyThreshold = ParseSafetyThreshold(string(g.SafetyThreshold))
}

// Remember appends one reflection to long-term memory.
func (g *GlobalContext) Remember(savedAt time.Time, content string) {
	g.LongTermMemory = append(g.LongTermMemory, MemoryEntry{
		SavedAt: savedAt,
		Content: content,
	})
}
