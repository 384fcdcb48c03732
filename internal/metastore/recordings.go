// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package metastore

import (
	"context"
	"fmt"
)

// MarkRecordingViewed records that a user opened a session recording.
// Repeated views are idempotent.
func (s *Store) MarkRecordingViewed(ctx context.Context, teamID, userID int64, sessionID string) error {
	_, err := s.write.ExecContext(ctx,
		`INSERT OR IGNORE INTO session_recording_views (team_id, user_id, session_id) VALUES (?, ?, ?)`,
		teamID, userID, sessionID)
	if err != nil {
		return fmt.Errorf("mark recording viewed: %w", err)
	}
	return nil
}

// RecordingViewed reports whether the user has opened the recording.
func (s *Store) RecordingViewed(ctx context.Context, teamID, userID int64, sessionID string) (bool, error) {
	var n int
	err := s.read.QueryRowContext(ctx,
		`SELECT count(*) FROM session_recording_views WHERE team_id = ? AND user_id = ? AND session_id = ?`,
		teamID, userID, sessionID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("recording viewed: %w", err)
	}
	return n > 0, nil
}
