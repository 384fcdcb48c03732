// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package models

import "time"

// Session is a run of one distinct id's events separated by less than the
// configured inactivity gap.
type Session struct {
	DistinctID      string    `json:"distinct_id"`
	GlobalSessionID int64     `json:"global_session_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	LengthSeconds   float64   `json:"length_seconds"`
	EventCount      int64     `json:"event_count"`
	StartURL        string    `json:"start_url"`
	EndURL          string    `json:"end_url"`
	Person          *Person   `json:"person"`
}

// SessionRecordingEvent is one stored recording snapshot.
type SessionRecordingEvent struct {
	UUID         string
	TeamID       int64
	DistinctID   string
	SessionID    string
	Timestamp    time.Time
	SnapshotData string
}

// SessionRecording is the assembled replay for one session id.
type SessionRecording struct {
	Snapshots       []map[string]any `json:"snapshots"`
	Person          *Person          `json:"person"`
	StartTime       *time.Time       `json:"start_time"`
	EndTime         *time.Time       `json:"end_time"`
	DurationSeconds float64          `json:"duration_seconds"`
}
