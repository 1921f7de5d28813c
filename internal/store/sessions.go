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

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// UpsertSession persists a session: insert when the session has no id yet
// (the store assigns one and writes it back), update otherwise. The caller
// should hand in a snapshot (model.Session.Clone), not a live UI value.
func (s *Store) UpsertSession(ctx context.Context, sess *model.Session) (int64, error) {
	doc, err := json.Marshal(sess.Interactions)
	if err != nil {
		return 0, fmt.Errorf("failed to encode interactions: %w", err)
	}
	createdAt := sess.CreatedAt.UTC().Format(time.RFC3339Nano)

	if sess.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO sessions (name, created_at, is_pinned, interactions) VALUES (?, ?, ?, ?)`,
			sess.Name, createdAt, sess.IsPinned, string(doc))
		if err != nil {
			return 0, fmt.Errorf("failed to insert session: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to read assigned session id: %w", err)
		}
		sess.ID = id
		return id, nil
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET name = ?, created_at = ?, is_pinned = ?, interactions = ? WHERE id = ?`,
		sess.Name, createdAt, sess.IsPinned, string(doc), sess.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrSessionNotFound
	}
	return sess.ID, nil
}

// Session loads one session by id.
func (s *Store) Session(ctx context.Context, id int64) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, is_pinned, interactions FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return sess, err
}

// Sessions loads every session, normalized, in no particular order. Callers
// use model.SortSessions / model.SelectLatest for display ordering.
func (s *Store) Sessions(ctx context.Context) ([]*model.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, is_pinned, interactions FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// HasSession reports whether a session id still exists. Turn logic uses this
// as the stale-write guard before persisting a resolved turn.
func (s *Store) HasSession(ctx context.Context, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// DeleteSession removes a session by id.
func (s *Store) DeleteSession(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// =============================================================================
// ROW DECODING
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (*model.Session, error) {
	var (
		sess      model.Session
		createdAt string
		doc       string
	)
	if err := r.Scan(&sess.ID, &sess.Name, &createdAt, &sess.IsPinned, &doc); err != nil {
		return nil, err
	}

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session created_at: %w", err)
	}
	sess.CreatedAt = t

	if err := json.Unmarshal([]byte(doc), &sess.Interactions); err != nil {
		return nil, fmt.Errorf("failed to decode interactions: %w", err)
	}

	sess.Normalize()
	return &sess, nil
}
