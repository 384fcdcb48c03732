// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package events

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tracepoint/internal/filters"
	"github.com/tomtom215/tracepoint/internal/logging"
	"github.com/tomtom215/tracepoint/internal/metrics"
	"github.com/tomtom215/tracepoint/internal/models"
)

// Surfaces labelling degraded person lookups.
const (
	surfaceEvents    = "events"
	surfaceSessions  = "sessions"
	surfaceRecording = "recording"
)

// resolvePersons looks up persons for ids. The metastore is independent of
// the event store, so a failed lookup is logged and counted and the caller
// continues with an empty map (every person null).
func resolvePersons(ctx context.Context, r PersonResolver, teamID int64, ids []string, surface string) map[string]*models.Person {
	if r == nil || len(ids) == 0 {
		return map[string]*models.Person{}
	}
	people, err := r.Resolve(ctx, teamID, ids)
	if err != nil {
		metrics.RecordPersonResolutionDegraded(surface)
		logging.Ctx(ctx).Warn().Err(err).
			Str("surface", surface).
			Int("distinct_ids", len(ids)).
			Msg("Person resolution failed, serving without persons")
		return map[string]*models.Person{}
	}
	if people == nil {
		people = map[string]*models.Person{}
	}
	return people
}

// Serializer turns stored rows into API events, attaching persons.
type Serializer struct {
	persons PersonResolver
}

// NewSerializer returns a Serializer. A nil resolver leaves person null.
func NewSerializer(persons PersonResolver) *Serializer {
	return &Serializer{persons: persons}
}

// Serialize resolves the persons of rows in one batch and renders each row.
// A failed person lookup leaves every person null.
func (s *Serializer) Serialize(ctx context.Context, teamID int64, rows []models.EventRow) ([]models.Event, error) {
	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = rows[i].DistinctID
	}
	people := resolvePersons(ctx, s.persons, teamID, ids, surfaceEvents)

	out := make([]models.Event, len(rows))
	for i := range rows {
		out[i] = SerializeRow(&rows[i], people[rows[i].DistinctID])
	}
	return out, nil
}

// SerializeRow renders one row. Unparseable properties become an empty object.
func SerializeRow(row *models.EventRow, person *models.Person) models.Event {
	props := map[string]any{}
	if row.Properties != "" {
		if err := json.Unmarshal([]byte(row.Properties), &props); err != nil || props == nil {
			props = map[string]any{}
		}
	}
	return models.Event{
		ID:            row.UUID,
		DistinctID:    row.DistinctID,
		Properties:    props,
		Event:         row.Event,
		Timestamp:     row.Timestamp.UTC(),
		Person:        person,
		Elements:      filters.ParseElementsChain(row.ElementsChain),
		ElementsChain: row.ElementsChain,
	}
}
