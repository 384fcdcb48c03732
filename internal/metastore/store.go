// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

// Package metastore is the SQLite-backed relational store for teams,
// actions and their steps, persons with their distinct ids, and
// session-recording view markers.
//
// Writes go through a single-connection pool, reads through a separate
// pool, and the schema is versioned with embedded goose migrations.
package metastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tomtom215/tracepoint/internal/config"
	"github.com/tomtom215/tracepoint/internal/logging"
)

// Sentinel errors.
var (
	ErrTeamNotFound   = errors.New("team not found")
	ErrActionNotFound = errors.New("action not found")
	ErrPersonNotFound = errors.New("person not found")
)

// Store holds the write and read pools.
type Store struct {
	write *sql.DB
	read  *sql.DB
}

// Open opens the metastore at cfg.Path, applying migrations when
// cfg.AutoMigrate is set.
func Open(cfg *config.MetastoreConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create metastore directory %s: %w", dir, err)
		}
	}

	writeDB, readDB, err := OpenSQLitePair(cfg.Path, cfg.ReadPoolSize)
	if err != nil {
		return nil, err
	}
	s := &Store{write: writeDB, read: readDB}

	if cfg.AutoMigrate {
		if err := RunMigrations(writeDB); err != nil {
			_ = s.Close()
			return nil, err
		}
	}

	logging.Info().Str("path", cfg.Path).Bool("auto_migrate", cfg.AutoMigrate).Msg("Metastore ready")
	return s, nil
}

// NewStore wraps existing pools.
func NewStore(writeDB, readDB *sql.DB) *Store {
	return &Store{write: writeDB, read: readDB}
}

// Close closes both pools.
func (s *Store) Close() error {
	return errors.Join(s.read.Close(), s.write.Close())
}

// Ping checks both pools.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.write.PingContext(ctx); err != nil {
		return fmt.Errorf("metastore write pool: %w", err)
	}
	if err := s.read.PingContext(ctx); err != nil {
		return fmt.Errorf("metastore read pool: %w", err)
	}
	return nil
}

// Migrate applies pending migrations.
func (s *Store) Migrate() error {
	return RunMigrations(s.write)
}

// HasPendingMigrations reports whether migrations are outstanding.
func (s *Store) HasPendingMigrations() (bool, error) {
	return HasPendingMigrations(s.write)
}
