// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package filters

import (
	"context"
	"fmt"
	"regexp"

	"github.com/tomtom215/tracepoint/internal/database/query"
	"github.com/tomtom215/tracepoint/internal/models"
)

// PersonMatcher resolves person-property filters to the distinct ids of
// matching persons.
type PersonMatcher interface {
	DistinctIDsMatching(ctx context.Context, teamID int64, filters []models.PropertyFilter) ([]string, error)
}

// Compiler compiles property filters for the events table.
type Compiler struct {
	persons PersonMatcher
}

// NewCompiler returns a Compiler. persons may be nil when person filters
// are not supported; such filters then fail validation.
func NewCompiler(persons PersonMatcher) *Compiler {
	return &Compiler{persons: persons}
}

// Compile ANDs every filter into one clause named "properties". No filters
// yields an empty clause.
func (c *Compiler) Compile(ctx context.Context, teamID int64, filters []models.PropertyFilter) (query.Clause, error) {
	var (
		parts         []query.Clause
		personFilters []models.PropertyFilter
	)
	for i := range filters {
		f := filters[i]
		normalize(&f)
		switch f.Type {
		case TypePerson:
			if f.Operator == OpRegex || f.Operator == OpNotRegex {
				return query.Clause{}, fmt.Errorf("%w: operator %s is not supported for person property %q",
					ErrInvalidProperty, f.Operator, f.Key)
			}
			if f.Operator == OpGT || f.Operator == OpLT {
				if _, ok := numericValue(f.Value); !ok {
					return query.Clause{}, fmt.Errorf("%w: %s on %q needs a numeric value", ErrInvalidProperty, f.Operator, f.Key)
				}
			}
			personFilters = append(personFilters, f)
		case TypeEvent:
			clause, err := eventPropertyClause(&f)
			if err != nil {
				return query.Clause{}, err
			}
			parts = append(parts, clause)
		default:
			return query.Clause{}, fmt.Errorf("%w: unknown property type %q", ErrInvalidProperty, f.Type)
		}
	}

	if len(personFilters) > 0 {
		if c.persons == nil {
			return query.Clause{}, fmt.Errorf("%w: person properties are not available", ErrInvalidProperty)
		}
		ids, err := c.persons.DistinctIDsMatching(ctx, teamID, personFilters)
		if err != nil {
			return query.Clause{}, fmt.Errorf("match person properties: %w", err)
		}
		parts = append(parts, query.In("person_properties", "distinct_id", ids))
	}

	return query.And("properties", parts...), nil
}

// eventPropertyClause compiles one event-property filter. The JSON path is
// always bound as an argument, never interpolated.
func eventPropertyClause(f *models.PropertyFilter) (query.Clause, error) {
	const col = "json_extract_string(properties, ?)"
	path := query.JSONPath(f.Key)
	name := "property:" + f.Key

	switch f.Operator {
	case OpExact, OpIsNot:
		values := valueList(f.Value)
		if len(values) == 0 {
			if f.Operator == OpIsNot {
				return query.Clause{Name: name, SQL: "1=1"}, nil
			}
			return query.Clause{Name: name, SQL: "1=0"}, nil
		}
		args := []any{path}
		for _, v := range values {
			args = append(args, textValue(v))
		}
		in := fmt.Sprintf("%s IN (%s)", col, query.Placeholders(len(values)))
		if f.Operator == OpIsNot {
			return query.Clause{Name: name, SQL: fmt.Sprintf("(%s IS NULL OR NOT %s)", col, in), Args: append([]any{path}, args...)}, nil
		}
		return query.Clause{Name: name, SQL: in, Args: args}, nil

	case OpIContains:
		return query.Clause{Name: name, SQL: col + " ILIKE ?", Args: []any{path, likePattern(f.Value)}}, nil
	case OpNotIContains:
		return query.Clause{
			Name: name,
			SQL:  fmt.Sprintf("(%s IS NULL OR NOT %s ILIKE ?)", col, col),
			Args: []any{path, path, likePattern(f.Value)},
		}, nil

	case OpRegex, OpNotRegex:
		pattern := textValue(f.Value)
		if _, err := regexp.Compile(pattern); err != nil {
			return query.Clause{}, fmt.Errorf("%w: invalid regex for %q: %v", ErrInvalidProperty, f.Key, err)
		}
		if f.Operator == OpNotRegex {
			return query.Clause{
				Name: name,
				SQL:  fmt.Sprintf("(%s IS NULL OR NOT regexp_matches(%s, ?))", col, col),
				Args: []any{path, path, pattern},
			}, nil
		}
		return query.Clause{Name: name, SQL: "regexp_matches(" + col + ", ?)", Args: []any{path, pattern}}, nil

	case OpGT, OpLT:
		n, ok := numericValue(f.Value)
		if !ok {
			return query.Clause{}, fmt.Errorf("%w: %s on %q needs a numeric value", ErrInvalidProperty, f.Operator, f.Key)
		}
		op := ">"
		if f.Operator == OpLT {
			op = "<"
		}
		return query.Clause{Name: name, SQL: "TRY_CAST(" + col + " AS DOUBLE) " + op + " ?", Args: []any{path, n}}, nil

	case OpIsSet:
		return query.Clause{Name: name, SQL: "json_extract(properties, ?) IS NOT NULL", Args: []any{path}}, nil
	case OpIsNotSet:
		return query.Clause{Name: name, SQL: "json_extract(properties, ?) IS NULL", Args: []any{path}}, nil
	}
	return query.Clause{}, fmt.Errorf("%w: unknown operator %q", ErrInvalidProperty, f.Operator)
}

func likePattern(v any) string {
	return "%" + textValue(v) + "%"
}
