// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/tracepoint/internal/database/query"
	"github.com/tomtom215/tracepoint/internal/models"
)

// SessionsQuery selects sessions starting inside [From, To].
type SessionsQuery struct {
	TeamID int64
	From   time.Time
	To     time.Time
	Gap    time.Duration
	Limit  int
	Offset int
}

// A new session starts at a distinct id's first event in the window and at
// every event following a pause longer than the gap.
const sessionsSQL = `
WITH flagged AS (
	SELECT distinct_id, timestamp,
		json_extract_string(properties, '$."$current_url"') AS current_url,
		CASE
			WHEN lag(timestamp) OVER w IS NULL THEN 1
			WHEN epoch(timestamp) - epoch(lag(timestamp) OVER w) > ? THEN 1
			ELSE 0
		END AS is_start
	FROM events
	WHERE team_id = ? AND timestamp >= ? AND timestamp <= ?
	WINDOW w AS (PARTITION BY distinct_id ORDER BY timestamp)
), numbered AS (
	SELECT *, sum(is_start) OVER (PARTITION BY distinct_id ORDER BY timestamp ROWS UNBOUNDED PRECEDING) AS session_no
	FROM flagged
)
SELECT distinct_id,
	min(timestamp) AS start_time,
	max(timestamp) AS end_time,
	count(*) AS event_count,
	arg_min(current_url, timestamp) AS start_url,
	arg_max(current_url, timestamp) AS end_url
FROM numbered
GROUP BY distinct_id, session_no
ORDER BY start_time DESC, distinct_id
LIMIT ? OFFSET ?`

// ListSessions groups a team's events into sessions, newest first. Limit+1
// rows may be requested by the caller to detect a further page.
func (db *DB) ListSessions(ctx context.Context, q SessionsQuery) ([]models.Session, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, sessionsSQL,
		q.Gap.Seconds(), q.TeamID, q.From.UTC(), q.To.UTC(), q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		var startURL, endURL sql.NullString
		if err := rows.Scan(&s.DistinctID, &s.StartTime, &s.EndTime, &s.EventCount, &startURL, &endURL); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.StartURL = startURL.String
		s.EndURL = endURL.String
		s.LengthSeconds = s.EndTime.Sub(s.StartTime).Seconds()
		s.GlobalSessionID = int64(q.Offset + len(sessions))
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return sessions, nil
}

// GetSessionRecording returns every snapshot of a session in time order.
func (db *DB) GetSessionRecording(ctx context.Context, teamID int64, sessionID string) ([]models.SessionRecordingEvent, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := query.NewPredicate().
		AddClause("team", "team_id = ?", teamID).
		AddClause("session", "session_id = ?", sessionID).
		Build()

	rows, err := db.conn.QueryContext(ctx,
		"SELECT uuid, team_id, distinct_id, session_id, timestamp, snapshot_data FROM session_recording_events WHERE "+
			where+" ORDER BY timestamp, uuid", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query session recording: %w", err)
	}
	defer rows.Close()

	var snapshots []models.SessionRecordingEvent
	for rows.Next() {
		var s models.SessionRecordingEvent
		if err := rows.Scan(&s.UUID, &s.TeamID, &s.DistinctID, &s.SessionID, &s.Timestamp, &s.SnapshotData); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// InsertSessionRecordingEvents stores recording snapshots.
func (db *DB) InsertSessionRecordingEvents(ctx context.Context, snapshots []models.SessionRecordingEvent) error {
	if len(snapshots) == 0 {
		return nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for i := range snapshots {
		s := &snapshots[i]
		id := s.UUID
		if id == "" {
			id = newEventUUID()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_recording_events (uuid, team_id, distinct_id, session_id, timestamp, snapshot_data, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, s.TeamID, s.DistinctID, s.SessionID, s.Timestamp.UTC(), s.SnapshotData, now); err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}
	}
	return tx.Commit()
}
