// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tracepoint/internal/config"
	"github.com/tomtom215/tracepoint/internal/database"
	"github.com/tomtom215/tracepoint/internal/models"
)

// SessionStore reads sessions and recording snapshots.
type SessionStore interface {
	ListSessions(ctx context.Context, q database.SessionsQuery) ([]models.Session, error)
	GetSessionRecording(ctx context.Context, teamID int64, sessionID string) ([]models.SessionRecordingEvent, error)
}

// SessionLister pages through sessions and assembles recordings.
type SessionLister struct {
	store    SessionStore
	persons  PersonResolver
	pageSize int
	gap      time.Duration
	window   time.Duration
	now      func() time.Time
}

// NewSessionLister returns a SessionLister configured from cfg.
func NewSessionLister(store SessionStore, persons PersonResolver, cfg *config.EventsConfig) *SessionLister {
	return &SessionLister{
		store:    store,
		persons:  persons,
		pageSize: cfg.SessionsPageSize,
		gap:      cfg.SessionGap,
		window:   cfg.NarrowWindow,
		now:      time.Now,
	}
}

// List returns one page of sessions starting inside [from, to]. Nil bounds
// default to the last narrow window ending now.
func (l *SessionLister) List(ctx context.Context, teamID int64, from, to *time.Time, offset int) (*models.SessionsPage, error) {
	end := l.now().UTC()
	if to != nil {
		end = *to
	}
	start := end.Add(-l.window)
	if from != nil {
		start = *from
	}

	sessions, err := l.store.ListSessions(ctx, database.SessionsQuery{
		TeamID: teamID,
		From:   start,
		To:     end,
		Gap:    l.gap,
		Limit:  l.pageSize + 1,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}

	page := &models.SessionsPage{Result: sessions}
	if len(sessions) > l.pageSize {
		page.Result = sessions[:l.pageSize]
		page.Pagination = &models.SessionsPagination{Offset: offset + l.pageSize}
	}
	if page.Result == nil {
		page.Result = []models.Session{}
	}

	if len(page.Result) > 0 {
		ids := make([]string, len(page.Result))
		for i := range page.Result {
			ids[i] = page.Result[i].DistinctID
		}
		people := resolvePersons(ctx, l.persons, teamID, ids, surfaceSessions)
		for i := range page.Result {
			page.Result[i].Person = people[page.Result[i].DistinctID]
		}
	}
	return page, nil
}

// Recording assembles a session recording. An unknown session yields an
// empty recording, not an error.
func (l *SessionLister) Recording(ctx context.Context, teamID int64, sessionID string) (*models.SessionRecording, error) {
	events, err := l.store.GetSessionRecording(ctx, teamID, sessionID)
	if err != nil {
		return nil, err
	}

	rec := &models.SessionRecording{Snapshots: make([]map[string]any, 0, len(events))}
	if len(events) == 0 {
		return rec, nil
	}

	for i := range events {
		var snap map[string]any
		if err := json.Unmarshal([]byte(events[i].SnapshotData), &snap); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", events[i].UUID, err)
		}
		rec.Snapshots = append(rec.Snapshots, snap)
	}

	first := events[0].Timestamp.UTC()
	last := events[len(events)-1].Timestamp.UTC()
	rec.StartTime = &first
	rec.EndTime = &last
	rec.DurationSeconds = last.Sub(first).Seconds()

	distinctID := events[0].DistinctID
	rec.Person = resolvePersons(ctx, l.persons, teamID, []string{distinctID}, surfaceRecording)[distinctID]
	return rec, nil
}
