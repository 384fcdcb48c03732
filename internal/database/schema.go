// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package database

import (
	"context"
	"fmt"
)

// EventColumns is the column order every event SELECT must use so rows can
// be scanned by QueryEvents.
const EventColumns = "uuid, event, properties, timestamp, team_id, distinct_id, elements_chain, created_at"

// Properties and snapshot payloads are stored as JSON text; DuckDB's json
// functions accept VARCHAR directly.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS events (
		uuid VARCHAR PRIMARY KEY,
		event VARCHAR NOT NULL,
		properties VARCHAR NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		team_id BIGINT NOT NULL,
		distinct_id VARCHAR NOT NULL,
		elements_chain VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_team_timestamp ON events (team_id, timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_events_team_distinct ON events (team_id, distinct_id)`,
	`CREATE TABLE IF NOT EXISTS session_recording_events (
		uuid VARCHAR PRIMARY KEY,
		team_id BIGINT NOT NULL,
		distinct_id VARCHAR NOT NULL,
		session_id VARCHAR NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		snapshot_data VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recordings_team_session ON session_recording_events (team_id, session_id)`,
}

func (db *DB) createSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
