// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/tracepoint/internal/database"
	"github.com/tomtom215/tracepoint/internal/database/query"
	"github.com/tomtom215/tracepoint/internal/models"
)

// Predicate clause names.
const (
	ClauseTeam       = "team"
	ClauseAfter      = "after"
	ClauseBefore     = "before"
	ClauseEvent      = "event"
	ClauseDistinctID = "distinct_id"
	ClausePerson     = "person"
	ClauseProperties = "properties"
	ClauseAction     = "action"
)

// Shape names, as reported in metrics.
const (
	ShapePropertyAware  = "property_aware"
	ShapeArrayOptimized = "array_optimized"
)

// Shape is one way of running a listing predicate against the store.
type Shape interface {
	Name() string
	Execute(ctx context.Context, store EventStore, p *query.Predicate, ascending bool, limit, offset int) ([]models.EventRow, error)
}

// ShapeFor picks the shape for p: property-aware whenever a property or
// action clause is present.
func ShapeFor(p *query.Predicate) Shape {
	if p.Has(ClauseProperties) || p.Has(ClauseAction) {
		return PropertyAwareQuery{}
	}
	return ArrayOptimizedQuery{}
}

// PropertyAwareQuery evaluates every clause, including JSON property
// extraction, in a single scan.
type PropertyAwareQuery struct{}

// Name implements Shape.
func (PropertyAwareQuery) Name() string { return ShapePropertyAware }

// Execute implements Shape.
func (PropertyAwareQuery) Execute(ctx context.Context, store EventStore, p *query.Predicate, ascending bool, limit, offset int) ([]models.EventRow, error) {
	where, args := p.Build()
	sqlText := "SELECT " + database.EventColumns + " FROM events WHERE " + where +
		" ORDER BY " + orderBy("", ascending) + " LIMIT ? OFFSET ?"
	return store.QueryEvents(ctx, sqlText, append(args, limit, offset))
}

// ArrayOptimizedQuery selects the page's keys from the narrow columns
// first and reads the wide columns only for those rows. It refuses
// property and action clauses.
type ArrayOptimizedQuery struct{}

// Name implements Shape.
func (ArrayOptimizedQuery) Name() string { return ShapeArrayOptimized }

// Execute implements Shape.
func (ArrayOptimizedQuery) Execute(ctx context.Context, store EventStore, p *query.Predicate, ascending bool, limit, offset int) ([]models.EventRow, error) {
	if p.Has(ClauseProperties) || p.Has(ClauseAction) {
		return nil, fmt.Errorf("%s cannot evaluate property or action clauses", ShapeArrayOptimized)
	}
	where, args := p.Build()
	sqlText := "WITH page AS (SELECT uuid, timestamp FROM events WHERE " + where +
		" ORDER BY " + orderBy("", ascending) + " LIMIT ? OFFSET ?) " +
		"SELECT " + qualifiedColumns("e") + " FROM page JOIN events e ON e.uuid = page.uuid " +
		"ORDER BY " + orderBy("e.", ascending)
	return store.QueryEvents(ctx, sqlText, append(args, limit, offset))
}

// orderBy sorts by day first so a day-partitioned store can prune, then
// by timestamp and uuid for a total order.
func orderBy(prefix string, ascending bool) string {
	dir := "DESC"
	if ascending {
		dir = "ASC"
	}
	return fmt.Sprintf("CAST(%[1]stimestamp AS DATE) %[2]s, %[1]stimestamp %[2]s, %[1]suuid %[2]s", prefix, dir)
}

func qualifiedColumns(alias string) string {
	cols := strings.Split(database.EventColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
