// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package database

import (
	"context"
	"testing"

	"github.com/tomtom215/tracepoint/internal/config"
	"github.com/tomtom215/tracepoint/internal/models"
)

// sharedTestSemaphore serializes in-memory DuckDB instances opened by
// tests of other packages.
var sharedTestSemaphore = make(chan struct{}, 1)

// OpenTestDB opens an in-memory event store for tests and registers cleanup.
func OpenTestDB(t *testing.T) *DB {
	t.Helper()

	sharedTestSemaphore <- struct{}{}
	t.Cleanup(func() { <-sharedTestSemaphore })

	db, err := New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB"})
	if err != nil {
		t.Fatalf("open test event store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// MustInsertEvents inserts events or fails the test.
func MustInsertEvents(t *testing.T, db *DB, events ...models.NewEvent) {
	t.Helper()
	if _, err := db.InsertEvents(context.Background(), events); err != nil {
		t.Fatalf("insert test events: %v", err)
	}
}
