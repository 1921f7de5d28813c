// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides local persistence for sessions and the global
// context record.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kiann/seraa-tui/internal/model"
)

// globalContextKey is the fixed id of the singleton global context row.
const globalContextKey = "default"

// =============================================================================
// GLOBAL CONTEXT OPERATIONS
// =============================================================================

// GlobalContext returns the singleton global context, creating it with
// defaults on first access. After this call exactly one instance exists.
func (s *Store) GlobalContext(ctx context.Context) (*model.GlobalContext, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM global_context WHERE id = ?`, globalContextKey).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		gc := model.DefaultGlobalContext()
		if err := s.SaveGlobalContext(ctx, gc); err != nil {
			return nil, err
		}
		return gc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read global context: %w", err)
	}

	gc, err := decodeGlobalContext([]byte(doc))
	if err != nil {
		return nil, err
	}
	return gc, nil
}

// SaveGlobalContext persists the global context in the canonical shape.
func (s *Store) SaveGlobalContext(ctx context.Context, gc *model.GlobalContext) error {
	doc, err := json.Marshal(gc)
	if err != nil {
		return fmt.Errorf("failed to encode global context: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO global_context (id, document) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET document = excluded.document`,
		globalContextKey, string(doc))
	if err != nil {
		return fmt.Errorf("failed to save global context: %w", err)
	}
	return nil
}

// =============================================================================
// LEGACY DOCUMENT MIGRATION
// =============================================================================

// Earlier revisions stored the global context with wrapped containers and
// different field names:
//
//	saved_info:           {"info": ["..."]}
//	long_term_memory:     {"memory": [{"memory_saved_at": ..., "memory_content": ...}]}
//	ai_long_term_memory:  same wrapped shape, later renamed from long_term_memory
//	safety_settings:      lowercase threshold string
//
// decodeGlobalContext accepts both the canonical and all legacy shapes and
// produces the single canonical model.GlobalContext. This is the only place
// in the repository that knows the old shapes exist.
func decodeGlobalContext(doc []byte) (*model.GlobalContext, error) {
	var envelope struct {
		AIName       string `json:"ai_name"`
		UserName     string `json:"user_name"`
		UserLocation string `json:"user_location"`

		SavedInfo        json.RawMessage `json:"saved_info"`
		AILongTermMemory json.RawMessage `json:"ai_long_term_memory"`
		LongTermMemory   json.RawMessage `json:"long_term_memory"`

		SafetyThreshold string `json:"safety_threshold"`
		SafetySettings  string `json:"safety_settings"`
	}
	if err := json.Unmarshal(doc, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode global context: %w", err)
	}

	gc := &model.GlobalContext{
		AIName:       envelope.AIName,
		UserName:     envelope.UserName,
		UserLocation: envelope.UserLocation,
	}

	info, err := decodeSavedInfo(envelope.SavedInfo)
	if err != nil {
		return nil, err
	}
	gc.SavedInfo = info

	// The rename: ai_long_term_memory wins when both are present.
	memorySrc := envelope.AILongTermMemory
	if len(memorySrc) == 0 {
		memorySrc = envelope.LongTermMemory
	}
	memory, err := decodeLongTermMemory(memorySrc)
	if err != nil {
		return nil, err
	}
	gc.LongTermMemory = memory

	threshold := envelope.SafetyThreshold
	if threshold == "" {
		threshold = envelope.SafetySettings
	}
	gc.SafetyThreshold = model.ParseSafetyThreshold(threshold)

	gc.Normalize()
	return gc, nil
}

func decodeSavedInfo(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var flat []string
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat, nil
	}

	var wrapped struct {
		Info []string `json:"info"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode saved_info: %w", err)
	}
	return wrapped.Info, nil
}

func decodeLongTermMemory(raw json.RawMessage) ([]model.MemoryEntry, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var flat []model.MemoryEntry
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat, nil
	}

	var wrapped struct {
		Memory []struct {
			SavedAt time.Time `json:"memory_saved_at"`
			Content string    `json:"memory_content"`
		} `json:"memory"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode long-term memory: %w", err)
	}

	entries := make([]model.MemoryEntry, 0, len(wrapped.Memory))
	for _, m := range wrapped.Memory {
		entries = append(entries, model.MemoryEntry{SavedAt: m.SavedAt, Content: m.Content})
	}
	return entries, nil
}
