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
	"strings"

	"github.com/google/uuid"

	"github.com/tomtom215/tracepoint/internal/models"
)

// CreateTeam inserts a team with a freshly generated API token.
func (s *Store) CreateTeam(ctx context.Context, name string) (*models.Team, error) {
	token := "phc_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	res, err := s.write.ExecContext(ctx, `INSERT INTO teams (name, api_token) VALUES (?, ?)`, name, token)
	if err != nil {
		return nil, fmt.Errorf("insert team: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("team id: %w", err)
	}
	return s.GetTeam(ctx, id)
}

// GetTeam returns a team by id.
func (s *Store) GetTeam(ctx context.Context, id int64) (*models.Team, error) {
	var t models.Team
	err := s.read.QueryRowContext(ctx,
		`SELECT id, name, api_token, created_at FROM teams WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.APIToken, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get team %d: %w", id, err)
	}
	return &t, nil
}

// CountTeams returns the number of teams; zero means the instance is not set up.
func (s *Store) CountTeams(ctx context.Context) (int64, error) {
	var n int64
	if err := s.read.QueryRowContext(ctx, `SELECT count(*) FROM teams`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count teams: %w", err)
	}
	return n, nil
}
