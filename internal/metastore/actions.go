// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package metastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tracepoint/internal/models"
)

// CreateAction stores an action with its steps in one transaction.
func (s *Store) CreateAction(ctx context.Context, teamID int64, name string, steps []models.ActionStep) (*models.Action, error) {
	tx, err := s.write.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT INTO actions (team_id, name) VALUES (?, ?)`, teamID, name)
	if err != nil {
		return nil, fmt.Errorf("insert action: %w", err)
	}
	actionID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("action id: %w", err)
	}

	for i := range steps {
		step := &steps[i]
		matching := step.URLMatching
		if matching == "" {
			matching = models.URLMatchContains
		}
		props := step.Properties
		if props == nil {
			props = []models.PropertyFilter{}
		}
		rawProps, err := json.Marshal(props)
		if err != nil {
			return nil, fmt.Errorf("encode step properties: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO action_steps (action_id, event, url, url_matching, tag_name, text, href, properties)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			actionID, step.Event, step.URL, matching, step.TagName, step.Text, step.Href, string(rawProps)); err != nil {
			return nil, fmt.Errorf("insert action step: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit action: %w", err)
	}
	return s.getAction(ctx, s.write, teamID, actionID)
}

// GetAction returns a non-deleted action of a team with its steps, or
// ErrActionNotFound. An action may legitimately have zero steps.
func (s *Store) GetAction(ctx context.Context, teamID, actionID int64) (*models.Action, error) {
	return s.getAction(ctx, s.read, teamID, actionID)
}

// DeleteAction soft-deletes an action.
func (s *Store) DeleteAction(ctx context.Context, teamID, actionID int64) error {
	res, err := s.write.ExecContext(ctx, `UPDATE actions SET deleted = 1 WHERE team_id = ? AND id = ?`, teamID, actionID)
	if err != nil {
		return fmt.Errorf("delete action: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrActionNotFound
	}
	return nil
}

func (s *Store) getAction(ctx context.Context, db *sql.DB, teamID, actionID int64) (*models.Action, error) {
	a := models.Action{Steps: []models.ActionStep{}}
	err := db.QueryRowContext(ctx,
		`SELECT id, team_id, name, deleted, created_at FROM actions WHERE team_id = ? AND id = ? AND deleted = 0`,
		teamID, actionID).
		Scan(&a.ID, &a.TeamID, &a.Name, &a.Deleted, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get action %d: %w", actionID, err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, action_id, event, url, url_matching, tag_name, text, href, properties
		FROM action_steps WHERE action_id = ? ORDER BY id`, actionID)
	if err != nil {
		return nil, fmt.Errorf("query action steps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var step models.ActionStep
		var rawProps string
		if err := rows.Scan(&step.ID, &step.ActionID, &step.Event, &step.URL, &step.URLMatching,
			&step.TagName, &step.Text, &step.Href, &rawProps); err != nil {
			return nil, fmt.Errorf("scan action step: %w", err)
		}
		if rawProps != "" {
			if err := json.Unmarshal([]byte(rawProps), &step.Properties); err != nil {
				return nil, fmt.Errorf("decode step %d properties: %w", step.ID, err)
			}
		}
		a.Steps = append(a.Steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action steps: %w", err)
	}
	return &a, nil
}
