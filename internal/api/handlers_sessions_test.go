// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package api

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/tomtom215/tracepoint/internal/database"
	"github.com/tomtom215/tracepoint/internal/models"
)

func TestSessions(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now().UTC().Truncate(time.Second)
	database.MustInsertEvents(t, env.db,
		models.NewEvent{Event: "$pageview", TeamID: env.team.ID, DistinctID: "s", Timestamp: now.Add(-50 * time.Minute),
			Properties: map[string]any{"$current_url": "https://example.com/a"}},
		models.NewEvent{Event: "$pageview", TeamID: env.team.ID, DistinctID: "s", Timestamp: now.Add(-40 * time.Minute),
			Properties: map[string]any{"$current_url": "https://example.com/b"}},
	)

	rec := env.get(t, "/api/v1/events/sessions")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	page := decodeBody[models.SessionsPage](t, rec)
	if len(page.Result) != 1 {
		t.Fatalf("got %d sessions, want 1", len(page.Result))
	}
	s := page.Result[0]
	if s.EventCount != 2 || s.StartURL != "https://example.com/a" || s.EndURL != "https://example.com/b" {
		t.Errorf("session = %+v", s)
	}
	if page.Pagination != nil {
		t.Errorf("pagination = %+v, want null", page.Pagination)
	}
}

func TestSessions_InvalidParams(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		query string
	}{
		{"bad date_from", "date_from=soon"},
		{"negative offset", "offset=-1"},
		{"inverted range", "date_from=2021-02-01T00:00:00Z&date_to=2021-01-01T00:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, env.get(t, "/api/v1/events/sessions?"+tt.query), http.StatusBadRequest, ErrCodeInvalid, "")
		})
	}
}

func TestSessionRecording(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)

	err := env.db.InsertSessionRecordingEvents(ctx, []models.SessionRecordingEvent{
		{TeamID: env.team.ID, DistinctID: "viewer", SessionID: "sess-1", Timestamp: start, SnapshotData: `{"type":2}`},
		{TeamID: env.team.ID, DistinctID: "viewer", SessionID: "sess-1", Timestamp: start.Add(90 * time.Second), SnapshotData: `{"type":3}`},
	})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("missing id", func(t *testing.T) {
		expectError(t, env.get(t, "/api/v1/events/session_recording"), http.StatusBadRequest, ErrCodeInvalid,
			"The query parameter session_recording_id is required for this endpoint.")
	})

	t.Run("recording with saved view", func(t *testing.T) {
		q := url.Values{"session_recording_id": {"sess-1"}, "save_view": {"true"}}
		rec := env.get(t, "/api/v1/events/session_recording?"+q.Encode())
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		body := decodeBody[models.SessionRecordingResponse](t, rec)
		if len(body.Result.Snapshots) != 2 || body.Result.DurationSeconds != 90 {
			t.Errorf("recording = %+v", body.Result)
		}

		viewed, err := env.meta.RecordingViewed(ctx, env.team.ID, 11, "sess-1")
		if err != nil {
			t.Fatal(err)
		}
		if !viewed {
			t.Error("save_view did not record the view")
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		rec := env.get(t, "/api/v1/events/session_recording?session_recording_id=nope")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		body := decodeBody[models.SessionRecordingResponse](t, rec)
		if len(body.Result.Snapshots) != 0 || body.Result.StartTime != nil {
			t.Errorf("recording = %+v, want empty", body.Result)
		}
	})
}
