// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/tracepoint/internal/database"
	"github.com/tomtom215/tracepoint/internal/models"
)

type fakeResolver map[string]*models.Person

func (r fakeResolver) Resolve(_ context.Context, _ int64, ids []string) (map[string]*models.Person, error) {
	out := map[string]*models.Person{}
	for _, id := range ids {
		if p, ok := r[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// failingResolver stands in for an unreachable metastore.
type failingResolver struct{}

func (failingResolver) Resolve(context.Context, int64, []string) (map[string]*models.Person, error) {
	return nil, errors.New("metastore down")
}

func TestSessionLister_List(t *testing.T) {
	db := database.OpenTestDB(t)
	now := time.Date(2021, 6, 10, 12, 0, 0, 0, time.UTC)

	// user-a: two sessions split by a 2h pause; user-b: one session.
	at := func(d time.Duration) time.Time { return now.Add(-d) }
	database.MustInsertEvents(t, db,
		models.NewEvent{Event: "$pageview", TeamID: 1, DistinctID: "user-a", Timestamp: at(5 * time.Hour), Properties: map[string]any{"$current_url": "/a1"}},
		models.NewEvent{Event: "$pageview", TeamID: 1, DistinctID: "user-a", Timestamp: at(5*time.Hour - 10*time.Minute), Properties: map[string]any{"$current_url": "/a2"}},
		models.NewEvent{Event: "$pageview", TeamID: 1, DistinctID: "user-a", Timestamp: at(2 * time.Hour), Properties: map[string]any{"$current_url": "/a3"}},
		models.NewEvent{Event: "$pageview", TeamID: 1, DistinctID: "user-b", Timestamp: at(1 * time.Hour), Properties: map[string]any{"$current_url": "/b1"}},
	)

	cfg := testEventsConfig()
	cfg.SessionsPageSize = 2
	alice := &models.Person{ID: 1, DistinctIDs: []string{"user-a"}}
	l := NewSessionLister(db, fakeResolver{"user-a": alice}, cfg)
	l.now = func() time.Time { return now }

	page, err := l.List(context.Background(), 1, nil, nil, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Result) != 2 || page.Pagination == nil || page.Pagination.Offset != 2 {
		t.Fatalf("first page = %d sessions, pagination %+v; want 2 and offset 2", len(page.Result), page.Pagination)
	}
	if page.Result[0].DistinctID != "user-b" || page.Result[0].Person != nil {
		t.Errorf("newest session = %+v", page.Result[0])
	}
	if page.Result[1].DistinctID != "user-a" || page.Result[1].Person != alice || page.Result[1].StartURL != "/a3" {
		t.Errorf("second session = %+v", page.Result[1])
	}

	rest, err := l.List(context.Background(), 1, nil, nil, 2)
	if err != nil {
		t.Fatalf("List(offset 2): %v", err)
	}
	if len(rest.Result) != 1 || rest.Pagination != nil {
		t.Fatalf("last page = %d sessions, pagination %+v; want 1 and none", len(rest.Result), rest.Pagination)
	}
	s := rest.Result[0]
	if s.EventCount != 2 || s.StartURL != "/a1" || s.EndURL != "/a2" || s.LengthSeconds != 600 {
		t.Errorf("oldest session = %+v", s)
	}
	if s.GlobalSessionID != 2 {
		t.Errorf("global session id = %d, want 2", s.GlobalSessionID)
	}
}

func TestSessionLister_Recording(t *testing.T) {
	db := database.OpenTestDB(t)
	start := time.Date(2021, 6, 10, 12, 0, 0, 0, time.UTC)
	err := db.InsertSessionRecordingEvents(context.Background(), []models.SessionRecordingEvent{
		{TeamID: 1, DistinctID: "user-a", SessionID: "s1", Timestamp: start, SnapshotData: `{"type":2,"data":{}}`},
		{TeamID: 1, DistinctID: "user-a", SessionID: "s1", Timestamp: start.Add(90 * time.Second), SnapshotData: `{"type":3}`},
		{TeamID: 1, DistinctID: "user-b", SessionID: "s2", Timestamp: start, SnapshotData: `{"type":2}`},
	})
	if err != nil {
		t.Fatalf("InsertSessionRecordingEvents: %v", err)
	}

	alice := &models.Person{ID: 1}
	l := NewSessionLister(db, fakeResolver{"user-a": alice}, testEventsConfig())

	rec, err := l.Recording(context.Background(), 1, "s1")
	if err != nil {
		t.Fatalf("Recording: %v", err)
	}
	if len(rec.Snapshots) != 2 || rec.Person != alice || rec.DurationSeconds != 90 {
		t.Errorf("recording = %+v", rec)
	}
	if !rec.StartTime.Equal(start) || !rec.EndTime.Equal(start.Add(90*time.Second)) {
		t.Errorf("bounds = %v..%v", rec.StartTime, rec.EndTime)
	}

	empty, err := l.Recording(context.Background(), 1, "missing")
	if err != nil {
		t.Fatalf("Recording(missing): %v", err)
	}
	if empty.Snapshots == nil || len(empty.Snapshots) != 0 || empty.StartTime != nil || empty.Person != nil {
		t.Errorf("missing recording = %+v, want empty", empty)
	}
}

func TestSessionLister_PersonLookupFailure(t *testing.T) {
	db := database.OpenTestDB(t)
	now := time.Date(2021, 6, 10, 12, 0, 0, 0, time.UTC)
	database.MustInsertEvents(t, db,
		models.NewEvent{Event: "$pageview", TeamID: 1, DistinctID: "user-a", Timestamp: now.Add(-time.Hour)},
	)
	err := db.InsertSessionRecordingEvents(context.Background(), []models.SessionRecordingEvent{
		{TeamID: 1, DistinctID: "user-a", SessionID: "s1", Timestamp: now, SnapshotData: `{"type":2}`},
	})
	if err != nil {
		t.Fatalf("InsertSessionRecordingEvents: %v", err)
	}

	l := NewSessionLister(db, failingResolver{}, testEventsConfig())
	l.now = func() time.Time { return now }

	page, err := l.List(context.Background(), 1, nil, nil, 0)
	if err != nil {
		t.Fatalf("List with failing resolver: %v", err)
	}
	if len(page.Result) != 1 || page.Result[0].Person != nil {
		t.Errorf("sessions = %+v, want one session without person", page.Result)
	}

	rec, err := l.Recording(context.Background(), 1, "s1")
	if err != nil {
		t.Fatalf("Recording with failing resolver: %v", err)
	}
	if len(rec.Snapshots) != 1 || rec.Person != nil {
		t.Errorf("recording = %+v, want snapshots without person", rec)
	}
}
