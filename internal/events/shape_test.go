// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package events

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/tracepoint/internal/database"
	"github.com/tomtom215/tracepoint/internal/database/query"
	"github.com/tomtom215/tracepoint/internal/models"
)

func seedShapeFixtures(t *testing.T, db *database.DB) time.Time {
	t.Helper()
	base := time.Date(2021, 6, 1, 23, 59, 0, 0, time.UTC)
	var evs []models.NewEvent
	for i := range 30 {
		evs = append(evs, models.NewEvent{
			UUID:       fmt.Sprintf("0178c0a1-1f4f-0000-ab6e-%012d", i),
			Event:      []string{"$pageview", "signup", "$autocapture"}[i%3],
			Properties: map[string]any{"i": i},
			// Pairs share a timestamp and straddle midnight.
			Timestamp:  base.Add(time.Duration(i/2) * 20 * time.Second),
			TeamID:     1 + int64(i%7/6),
			DistinctID: fmt.Sprintf("user-%d", i%4),
		})
	}
	database.MustInsertEvents(t, db, evs...)
	return base
}

func TestShapesReturnIdenticalRows(t *testing.T) {
	db := database.OpenTestDB(t)
	base := seedShapeFixtures(t, db)

	predicates := map[string]*query.Predicate{
		"team only": query.NewPredicate().
			AddClause(ClauseTeam, "team_id = ?", int64(1)),
		"window": query.NewPredicate().
			AddClause(ClauseTeam, "team_id = ?", int64(1)).
			AddClause(ClauseAfter, "timestamp > ?", base.Add(40*time.Second)).
			AddClause(ClauseBefore, "timestamp < ?", base.Add(4*time.Minute)),
		"event": query.NewPredicate().
			AddClause(ClauseTeam, "team_id = ?", int64(1)).
			AddClause(ClauseEvent, "event = ?", "signup"),
		"person": query.NewPredicate().
			AddClause(ClauseTeam, "team_id = ?", int64(1)).
			Add(query.In(ClausePerson, "distinct_id", []string{"user-1", "user-3"})),
		"nothing": query.NewPredicate().
			AddClause(ClauseTeam, "team_id = ?", int64(99)),
	}

	ctx := context.Background()
	for name, pred := range predicates {
		for _, ascending := range []bool{false, true} {
			for _, page := range []struct{ limit, offset int }{{5, 0}, {5, 5}, {100, 0}} {
				label := fmt.Sprintf("%s/asc=%v/limit=%d/offset=%d", name, ascending, page.limit, page.offset)
				t.Run(label, func(t *testing.T) {
					want, err := PropertyAwareQuery{}.Execute(ctx, db, pred, ascending, page.limit, page.offset)
					if err != nil {
						t.Fatalf("property-aware: %v", err)
					}
					got, err := ArrayOptimizedQuery{}.Execute(ctx, db, pred, ascending, page.limit, page.offset)
					if err != nil {
						t.Fatalf("array-optimized: %v", err)
					}
					if len(got) != len(want) {
						t.Fatalf("rows = %d, want %d", len(got), len(want))
					}
					for i := range want {
						if got[i].UUID != want[i].UUID || got[i].Properties != want[i].Properties {
							t.Errorf("row %d = %s, want %s", i, got[i].UUID, want[i].UUID)
						}
					}
				})
			}
		}
	}
}

func TestShapeOrdering(t *testing.T) {
	db := database.OpenTestDB(t)
	seedShapeFixtures(t, db)
	pred := query.NewPredicate().AddClause(ClauseTeam, "team_id = ?", int64(1))

	for _, ascending := range []bool{false, true} {
		rows, err := PropertyAwareQuery{}.Execute(context.Background(), db, pred, ascending, 100, 0)
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		for i := 1; i < len(rows); i++ {
			prev, cur := rows[i-1], rows[i]
			inOrder := prev.Timestamp.After(cur.Timestamp) ||
				(prev.Timestamp.Equal(cur.Timestamp) && prev.UUID > cur.UUID)
			if ascending {
				inOrder = prev.Timestamp.Before(cur.Timestamp) ||
					(prev.Timestamp.Equal(cur.Timestamp) && prev.UUID < cur.UUID)
			}
			if !inOrder {
				t.Fatalf("ascending=%v: rows %d and %d out of order: %v/%s then %v/%s",
					ascending, i-1, i, prev.Timestamp, prev.UUID, cur.Timestamp, cur.UUID)
			}
		}
	}
}

func TestArrayOptimizedRejectsPropertyClauses(t *testing.T) {
	t.Parallel()

	pred := query.NewPredicate().
		AddClause(ClauseTeam, "team_id = ?", int64(1)).
		AddClause(ClauseProperties, "json_extract_string(properties, ?) = ?", `$."a"`, "b")
	if _, err := (ArrayOptimizedQuery{}).Execute(context.Background(), &fakeStore{}, pred, false, 10, 0); err == nil {
		t.Error("expected error for property clause")
	}
	if _, ok := ShapeFor(pred).(PropertyAwareQuery); !ok {
		t.Error("ShapeFor should pick the property-aware shape")
	}
}

func TestListEvents_DuckDB(t *testing.T) {
	db := database.OpenTestDB(t)
	ctx := context.Background()
	now := time.Date(2021, 6, 10, 12, 0, 0, 0, time.UTC)

	// Three recent events and five older than the narrow window.
	var evs []models.NewEvent
	for i := range 8 {
		ts := now.Add(-time.Duration(i) * time.Hour)
		if i >= 3 {
			ts = now.Add(-time.Duration(i) * 48 * time.Hour)
		}
		evs = append(evs, models.NewEvent{Event: "$pageview", TeamID: 1, DistinctID: "u", Timestamp: ts,
			Properties: map[string]any{"n": i}})
	}
	database.MustInsertEvents(t, db, evs...)

	p := NewPlanner(db, nil, nil, nil, nil, testEventsConfig())
	p.now = func() time.Time { return now }

	first, err := p.ListEvents(ctx, 1, &Filter{OrderBy: OrderNewestFirst}, 4)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(first.Rows) != 4 || first.Next == nil {
		t.Fatalf("first page = %d rows, next %v; want 4 rows and a cursor", len(first.Rows), first.Next)
	}

	before := first.Next.Timestamp
	second, err := p.ListEvents(ctx, 1, &Filter{Before: &before, OrderBy: OrderNewestFirst}, 4)
	if err != nil {
		t.Fatalf("ListEvents(page 2): %v", err)
	}
	if len(second.Rows) != 4 || second.Next != nil {
		t.Fatalf("second page = %d rows, next %v; want 4 rows and no cursor", len(second.Rows), second.Next)
	}
	if !second.Rows[0].Timestamp.Before(first.Rows[3].Timestamp) {
		t.Error("second page overlaps the first")
	}
}
