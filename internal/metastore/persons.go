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
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/tracepoint/internal/database/query"
	"github.com/tomtom215/tracepoint/internal/models"
)

// CreatePerson inserts a person owning distinctIDs.
func (s *Store) CreatePerson(ctx context.Context, teamID int64, properties map[string]any, identified bool, distinctIDs ...string) (*models.Person, error) {
	if properties == nil {
		properties = map[string]any{}
	}
	raw, err := json.Marshal(properties)
	if err != nil {
		return nil, fmt.Errorf("encode person properties: %w", err)
	}

	tx, err := s.write.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	personUUID := uuid.New().String()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO persons (uuid, team_id, properties, is_identified) VALUES (?, ?, ?, ?)`,
		personUUID, teamID, string(raw), identified)
	if err != nil {
		return nil, fmt.Errorf("insert person: %w", err)
	}
	personID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("person id: %w", err)
	}
	for _, did := range distinctIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO person_distinct_ids (team_id, person_id, distinct_id) VALUES (?, ?, ?)`,
			teamID, personID, did); err != nil {
			return nil, fmt.Errorf("insert distinct id %q: %w", did, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit person: %w", err)
	}

	return &models.Person{
		ID:           personID,
		UUID:         personUUID,
		TeamID:       teamID,
		Properties:   properties,
		IsIdentified: identified,
		DistinctIDs:  append([]string{}, distinctIDs...),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// DistinctIDsForPerson returns the distinct ids of a person, or ErrPersonNotFound.
func (s *Store) DistinctIDsForPerson(ctx context.Context, teamID, personID int64) ([]string, error) {
	var exists int
	err := s.read.QueryRowContext(ctx, `SELECT 1 FROM persons WHERE team_id = ? AND id = ?`, teamID, personID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPersonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get person %d: %w", personID, err)
	}

	rows, err := s.read.QueryContext(ctx,
		`SELECT distinct_id FROM person_distinct_ids WHERE team_id = ? AND person_id = ? ORDER BY id`, teamID, personID)
	if err != nil {
		return nil, fmt.Errorf("query distinct ids: %w", err)
	}
	return scanStrings(rows)
}

// DistinctIDsMatching returns every distinct id whose person satisfies all filters.
func (s *Store) DistinctIDsMatching(ctx context.Context, teamID int64, filters []models.PropertyFilter) ([]string, error) {
	p := query.NewPredicate().AddClause("team", "p.team_id = ?", teamID)
	for i := range filters {
		c, err := personPropertyClause(&filters[i])
		if err != nil {
			return nil, err
		}
		p.Add(c)
	}
	where, args := p.Build()

	rows, err := s.read.QueryContext(ctx,
		`SELECT pdi.distinct_id FROM person_distinct_ids pdi
		JOIN persons p ON p.id = pdi.person_id
		WHERE `+where+` ORDER BY pdi.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query person property match: %w", err)
	}
	return scanStrings(rows)
}

// personsByDistinctIDs resolves one batch of ids in a single query.
func (s *Store) personsByDistinctIDs(ctx context.Context, teamID int64, distinctIDs []string) (map[string]*models.Person, error) {
	out := make(map[string]*models.Person, len(distinctIDs))
	if len(distinctIDs) == 0 {
		return out, nil
	}

	where, args := query.NewPredicate().
		AddClause("team", "p.team_id = ?", teamID).
		Add(query.In("distinct", "pdi.distinct_id", distinctIDs)).
		Build()

	// Join back to all distinct ids of each matched person so the response
	// carries the full identity set, not just the requested id.
	rows, err := s.read.QueryContext(ctx,
		`SELECT pdi.distinct_id, p.id, p.uuid, p.properties, p.is_identified, p.created_at, all_ids.distinct_id
		FROM person_distinct_ids pdi
		JOIN persons p ON p.id = pdi.person_id
		JOIN person_distinct_ids all_ids ON all_ids.person_id = p.id
		WHERE `+where+`
		ORDER BY p.id, all_ids.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query persons: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*models.Person)
	seen := make(map[int64]map[string]bool)
	for rows.Next() {
		var requested, other, rawProps string
		var p models.Person
		if err := rows.Scan(&requested, &p.ID, &p.UUID, &rawProps, &p.IsIdentified, &p.CreatedAt, &other); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		person, ok := byID[p.ID]
		if !ok {
			p.TeamID = teamID
			if err := json.Unmarshal([]byte(rawProps), &p.Properties); err != nil {
				return nil, fmt.Errorf("decode person %d properties: %w", p.ID, err)
			}
			person = &p
			byID[p.ID] = person
			seen[p.ID] = make(map[string]bool)
		}
		if !seen[person.ID][other] {
			seen[person.ID][other] = true
			person.DistinctIDs = append(person.DistinctIDs, other)
		}
		out[requested] = person
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate persons: %w", err)
	}
	return out, nil
}

// personPropertyClause compiles one person-property filter to SQLite JSON1.
// Filter values are bound as JSON and decoded with json_extract(?, '$') so
// numbers, strings and booleans compare with their stored types.
func personPropertyClause(f *models.PropertyFilter) (query.Clause, error) {
	path := query.JSONPath(f.Key)
	col := "json_extract(p.properties, ?)"

	switch f.Operator {
	case "", "exact", "is_not":
		values := valueList(f.Value)
		parts := make([]query.Clause, 0, len(values))
		for _, v := range values {
			raw, err := json.Marshal(v)
			if err != nil {
				return query.Clause{}, fmt.Errorf("encode person filter value: %w", err)
			}
			parts = append(parts, query.Clause{SQL: col + " = json_extract(?, '$')", Args: []any{path, string(raw)}})
		}
		match := query.Or("person:"+f.Key, parts...)
		if match.Empty() {
			return query.Clause{Name: "person:" + f.Key, SQL: "1=0"}, nil
		}
		if f.Operator == "is_not" {
			match.SQL = "(" + col + " IS NULL OR NOT " + match.SQL + ")"
			match.Args = append([]any{path}, match.Args...)
		}
		return match, nil
	case "icontains", "not_icontains":
		sql := col + " LIKE ?"
		if f.Operator == "not_icontains" {
			sql = "(" + col + " IS NULL OR " + col + " NOT LIKE ?)"
			return query.Clause{Name: "person:" + f.Key, SQL: sql, Args: []any{path, path, "%" + fmt.Sprint(f.Value) + "%"}}, nil
		}
		return query.Clause{Name: "person:" + f.Key, SQL: sql, Args: []any{path, "%" + fmt.Sprint(f.Value) + "%"}}, nil
	case "gt", "lt":
		op := ">"
		if f.Operator == "lt" {
			op = "<"
		}
		n, ok := toFloat(f.Value)
		if !ok {
			return query.Clause{}, fmt.Errorf("person property %q: %s needs a numeric value", f.Key, f.Operator)
		}
		return query.Clause{Name: "person:" + f.Key, SQL: "CAST(" + col + " AS REAL) " + op + " ?", Args: []any{path, n}}, nil
	case "is_set":
		return query.Clause{Name: "person:" + f.Key, SQL: "json_type(p.properties, ?) IS NOT NULL", Args: []any{path}}, nil
	case "is_not_set":
		return query.Clause{Name: "person:" + f.Key, SQL: "json_type(p.properties, ?) IS NULL", Args: []any{path}}, nil
	default:
		return query.Clause{}, fmt.Errorf("operator %q is not supported for person properties", f.Operator)
	}
}

func valueList(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		var f float64
		_, err := fmt.Sscanf(n, "%g", &f)
		return f, err == nil
	}
	return 0, false
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
