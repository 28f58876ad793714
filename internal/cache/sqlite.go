// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS caches (
	id TEXT PRIMARY KEY,
	expiration INTEGER NOT NULL,
	cache BLOB
)`

func init() {
	RegisterDriver("sqlite", func(ctx context.Context, cfg map[string]any) (Driver, error) {
		return NewSQLite(ctx, cfg)
	})
}

// SQLite stores entries in a single table of a SQLite database.
type SQLite struct {
	Base
	db *sql.DB
}

// NewSQLite opens (and if needed initialises) the database named by the
// database key. ":memory:" is accepted.
func NewSQLite(ctx context.Context, cfg map[string]any) (*SQLite, error) {
	s := &SQLite{}
	s.bind(s, cfg)

	path := s.stringValue("database", "")
	if path == "" {
		return nil, &Error{Message: "Database path not available in K7 Cache configuration"}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, &Error{Message: "Failed to open K7 Cache database " + path, Err: err}
	}
	// A :memory: database is private to its connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close() //nolint:errcheck
		return nil, &Error{Message: "Failed to create K7 Cache schema in " + path, Err: err}
	}

	s.db = db
	return s, nil
}

func (s *SQLite) Get(ctx context.Context, id string) ([]byte, bool, error) {
	var expires int64
	var data []byte
	sid := s.SanitizeID(id)
	err := s.db.QueryRowContext(ctx, `SELECT expiration, cache FROM caches WHERE id = ?`, sid).Scan(&expires, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	if s.expired(expires) {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM caches WHERE id = ?`, sid); err != nil {
			log.WithError(err).Warnf("failed to remove expired cache entry %s", sid)
		}
		return nil, false, nil
	}
	if data == nil {
		data = []byte{}
	}
	return data, true, nil
}

func (s *SQLite) Set(ctx context.Context, id string, data []byte, lifetime time.Duration) error {
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO caches (id, expiration, cache) VALUES (?, ?, ?)`,
		s.SanitizeID(id), s.expiresAt(lifetime), data)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM caches WHERE id = ?`, s.SanitizeID(id)); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

func (s *SQLite) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM caches`); err != nil {
		return fmt.Errorf("failed to delete cache entries: %w", err)
	}
	return nil
}

// GarbageCollect deletes expired rows.
func (s *SQLite) GarbageCollect(ctx context.Context) (GCStats, error) {
	var stats GCStats
	now := s.clock().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to collect garbage: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(LENGTH(cache)), 0) FROM caches WHERE expiration != 0 AND expiration <= ?`,
		now).Scan(&stats.Removed, &stats.Bytes)
	if err != nil {
		return GCStats{}, fmt.Errorf("failed to collect garbage: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM caches WHERE expiration != 0 AND expiration <= ?`, now); err != nil {
		return GCStats{}, fmt.Errorf("failed to collect garbage: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return GCStats{}, fmt.Errorf("failed to collect garbage: %w", err)
	}
	return stats, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
