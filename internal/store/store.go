// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides local persistence for sessions and the global
// context record.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrSessionNotFound indicates the requested session id does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrUnsavedSession indicates an operation that requires a persisted
	// session was given one with no id.
	ErrUnsavedSession = errors.New("session has not been persisted")
)

// =============================================================================
// SCHEMA
// =============================================================================

// schemaVersion is the current PRAGMA user_version. Bump together with an
// entry in migrations.
const schemaVersion = 1

var migrations = []string{
	// v1: initial schema
	`CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		is_pinned INTEGER NOT NULL DEFAULT 0,
		interactions TEXT NOT NULL DEFAULT '[]'
	);
	CREATE TABLE IF NOT EXISTS global_context (
		id TEXT PRIMARY KEY,
		document TEXT NOT NULL
	);`,
}

// =============================================================================
// STORE
// =============================================================================

// Store is the SQLite-backed conversation store.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the default database location (~/.seraa/seraa.db).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".seraa", "seraa.db"), nil
}

// Open opens (creating if necessary) the database at path and brings the
// schema up to date.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent session turns.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies any schema migrations newer than the database's recorded
// version, then records the new version.
func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}

	for v := version; v < schemaVersion; v++ {
		if _, err := s.db.Exec(migrations[v]); err != nil {
			return fmt.Errorf("migration to v%d failed: %w", v+1, err)
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion))
	return err
}
