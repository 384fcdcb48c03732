// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/tracepoint/internal/database/query"
	"github.com/tomtom215/tracepoint/internal/metrics"
	"github.com/tomtom215/tracepoint/internal/models"
)

// ErrEventNotFound is returned when no event matches a UUID within a team.
var ErrEventNotFound = errors.New("event not found")

// QueryEvents runs a SELECT whose projection is EventColumns and scans the rows.
func (db *DB) QueryEvents(ctx context.Context, sqlText string, args []any) ([]models.EventRow, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, sqlText, args...)
	metrics.RecordDBQuery("query_events", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.EventRow
	for rows.Next() {
		var e models.EventRow
		if err := rows.Scan(&e.UUID, &e.Event, &e.Properties, &e.Timestamp, &e.TeamID,
			&e.DistinctID, &e.ElementsChain, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

// GetEvent returns one event of a team by its canonical UUID.
func (db *DB) GetEvent(ctx context.Context, teamID int64, id string) (*models.EventRow, error) {
	rows, err := db.QueryEvents(ctx,
		"SELECT "+EventColumns+" FROM events WHERE team_id = ? AND uuid = ? LIMIT 1",
		[]any{teamID, id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEventNotFound
	}
	return &rows[0], nil
}

// CustomEventNames returns the distinct event names of a team, skipping exclude.
func (db *DB) CustomEventNames(ctx context.Context, teamID int64, exclude []string) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	p := query.NewPredicate().AddClause("team", "team_id = ?", teamID)
	if len(exclude) > 0 {
		in := query.In("exclude", "event", exclude)
		p.AddClause(in.Name, "NOT "+in.SQL, in.Args...)
	}
	where, args := p.Build()

	rows, err := db.conn.QueryContext(ctx, "SELECT DISTINCT event FROM events WHERE "+where+" ORDER BY event", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query event names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan event name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// PropertyValues returns up to limit distinct raw values of a property key.
// Strings come back unquoted; arrays and objects as JSON text. When contains
// is non-empty only values containing it (case-sensitive LIKE) are returned.
func (db *DB) PropertyValues(ctx context.Context, teamID int64, key, contains string, limit int) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	path := query.JSONPath(key)
	p := query.NewPredicate().
		AddClause("team", "team_id = ?", teamID).
		AddClause("has_key", "json_extract_string(properties, ?) IS NOT NULL", path)
	if contains != "" {
		p.AddClause("value", "json_extract_string(properties, ?) LIKE ?", path, "%"+contains+"%")
	}
	where, args := p.Build()
	args = append([]any{path}, args...)
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx,
		"SELECT DISTINCT json_extract_string(properties, ?) AS prop_value FROM events WHERE "+where+" ORDER BY prop_value LIMIT ?",
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query property values: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan property value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// InsertEvents writes events in one transaction and returns the number inserted.
// Missing UUIDs are generated (v7, time ordered).
func (db *DB) InsertEvents(ctx context.Context, events []models.NewEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO events ("+EventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range events {
		e := &events[i]
		id := e.UUID
		if id == "" {
			id = newEventUUID()
		}
		props := e.Properties
		if props == nil {
			props = map[string]any{}
		}
		raw, err := json.Marshal(props)
		if err != nil {
			return 0, fmt.Errorf("failed to encode properties of %s: %w", id, err)
		}
		if _, err := stmt.ExecContext(ctx, id, e.Event, string(raw), e.Timestamp.UTC(), e.TeamID,
			e.DistinctID, e.ElementsChain, now); err != nil {
			return 0, fmt.Errorf("failed to insert event %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit events: %w", err)
	}
	return len(events), nil
}

// CountEvents returns the number of events stored for a team.
func (db *DB) CountEvents(ctx context.Context, teamID int64) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	err := db.conn.QueryRowContext(ctx, "SELECT count(*) FROM events WHERE team_id = ?", teamID).Scan(&n)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}

func newEventUUID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.New().String()
}
