// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiann/seraa-tui/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "seraa.db"))
	require.NoError(t, err, "failed to open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

// =============================================================================
// GLOBAL CONTEXT TESTS
// =============================================================================

func TestGlobalContext_CreatedWithDefaultsOnFirstRead(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	gc, err := s.GlobalContext(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Seraa", gc.AIName)
	assert.Equal(t, "User", gc.UserName)
	assert.Equal(t, "Jakarta", gc.UserLocation)
	assert.Equal(t, model.BlockNone, gc.SafetyThreshold)
	assert.Empty(t, gc.SavedInfo)
	assert.Empty(t, gc.LongTermMemory)

	// Second read returns the persisted record, not a fresh default.
	gc.UserName = "Kiann"
	require.NoError(t, s.SaveGlobalContext(ctx, gc))

	again, err := s.GlobalContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Kiann", again.UserName)
}

func TestGlobalContext_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	gc, err := s.GlobalContext(ctx)
	require.NoError(t, err)

	gc.SavedInfo = append(gc.SavedInfo, "prefers concise answers")
	savedAt := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	gc.Remember(savedAt, "I've noticed that the user codes at night.")
	gc.SafetyThreshold = model.BlockMediumAndAbove
	require.NoError(t, s.SaveGlobalContext(ctx, gc))

	loaded, err := s.GlobalContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"prefers concise answers"}, loaded.SavedInfo)
	require.Len(t, loaded.LongTermMemory, 1)
	assert.Equal(t, "I've noticed that the user codes at night.", loaded.LongTermMemory[0].Content)
	assert.True(t, loaded.LongTermMemory[0].SavedAt.Equal(savedAt))
	assert.Equal(t, model.BlockMediumAndAbove, loaded.SafetyThreshold)
}

func TestGlobalContext_MigratesLegacyDocument(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// A document written by the earliest revision: wrapped containers, the
	// pre-rename memory field, lowercase safety value.
	legacy := `{
		"id": "default",
		"ai_name": "Seraa",
		"user_name": "Kiann",
		"user_location": "Jakarta",
		"saved_info": {"info": ["studies informatics"]},
		"long_term_memory": {"memory": [
			{"memory_saved_at": "2024-11-05T08:30:00Z", "memory_content": "I understand now that the user is preparing for exams."}
		]},
		"safety_settings": "block_none"
	}`
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO global_context (id, document) VALUES (?, ?)`, globalContextKey, legacy)
	require.NoError(t, err)

	gc, err := s.GlobalContext(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Kiann", gc.UserName)
	assert.Equal(t, []string{"studies informatics"}, gc.SavedInfo)
	require.Len(t, gc.LongTermMemory, 1)
	assert.Equal(t, "I understand now that the user is preparing for exams.", gc.LongTermMemory[0].Content)
	assert.Equal(t, model.BlockNone, gc.SafetyThreshold)
}

func TestGlobalContext_RenamedMemoryFieldWins(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := `{
		"ai_name": "Seraa",
		"long_term_memory": {"memory": [{"memory_saved_at": "2024-01-01T00:00:00Z", "memory_content": "old"}]},
		"ai_long_term_memory": {"memory": [{"memory_saved_at": "2024-06-01T00:00:00Z", "memory_content": "new"}]}
	}`
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO global_context (id, document) VALUES (?, ?)`, globalContextKey, doc)
	require.NoError(t, err)

	gc, err := s.GlobalContext(ctx)
	require.NoError(t, err)
	require.Len(t, gc.LongTermMemory, 1)
	assert.Equal(t, "new", gc.LongTermMemory[0].Content)
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestUpsertSession_AssignsIDOnInsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sess := model.NewSession(time.Now())
	id, err := s.UpsertSession(ctx, sess)
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, id, sess.ID, "assigned id written back onto the session")

	second := model.NewSession(time.Now())
	id2, err := s.UpsertSession(ctx, second)
	require.NoError(t, err)
	assert.NotEqual(t, id, id2, "ids are unique")
}

func TestUpsertSession_UpdateRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sess := model.NewSession(time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC))
	_, err := s.UpsertSession(ctx, sess)
	require.NoError(t, err)

	sess.Name = "Trip planning"
	sess.IsPinned = true
	it := model.NewInteraction("hello")
	it.Response = "hi there"
	sess.Interactions = append(sess.Interactions, it)
	_, err = s.UpsertSession(ctx, sess)
	require.NoError(t, err)

	loaded, err := s.Session(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trip planning", loaded.Name)
	assert.True(t, loaded.IsPinned)
	assert.True(t, loaded.CreatedAt.Equal(sess.CreatedAt))
	require.Len(t, loaded.Interactions, 1)
	assert.Equal(t, it.ID, loaded.Interactions[0].ID)
	assert.Equal(t, "hello", loaded.Interactions[0].Input)
	assert.Equal(t, "hi there", loaded.Interactions[0].Response)
}

func TestUpsertSession_UpdateMissingSession(t *testing.T) {
	s := openTestStore(t)

	sess := model.NewSession(time.Now())
	sess.ID = 999
	_, err := s.UpsertSession(context.Background(), sess)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSession_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Session(context.Background(), 42)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessions_NormalizesLegacyInteractions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Interactions persisted before ids existed.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (name, created_at, is_pinned, interactions) VALUES (?, ?, 0, ?)`,
		"legacy chat", time.Now().UTC().Format(time.RFC3339Nano),
		`[{"input": "hi", "response": "hello"}]`)
	require.NoError(t, err)

	sessions, err := s.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Len(t, sessions[0].Interactions, 1)
	assert.NotEmpty(t, sessions[0].Interactions[0].ID, "legacy interaction received an id")
}

func TestDeleteSession(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sess := model.NewSession(time.Now())
	_, err := s.UpsertSession(ctx, sess)
	require.NoError(t, err)

	require.NoError(t, s.DeleteSession(ctx, sess.ID))

	_, err = s.Session(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, s.DeleteSession(ctx, sess.ID), ErrSessionNotFound)
}

func TestHasSession(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sess := model.NewSession(time.Now())
	_, err := s.UpsertSession(ctx, sess)
	require.NoError(t, err)

	ok, err := s.HasSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.HasSession(ctx, sess.ID+1)
	require.NoError(t, err)
	assert.False(t, ok)
}
