// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package filters

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/tomtom215/tracepoint/internal/database/query"
	"github.com/tomtom215/tracepoint/internal/models"
)

// ErrActionHasNoSteps is returned for an action that can match nothing.
var ErrActionHasNoSteps = errors.New("action has no steps")

// ActionCompiler compiles actions, reusing a property Compiler for step
// property filters.
type ActionCompiler struct {
	props *Compiler
}

// NewActionCompiler returns an ActionCompiler.
func NewActionCompiler(props *Compiler) *ActionCompiler {
	return &ActionCompiler{props: props}
}

// Compile returns the OR of the action's steps as a clause named "action".
func (a *ActionCompiler) Compile(ctx context.Context, action *models.Action) (query.Clause, error) {
	if len(action.Steps) == 0 {
		return query.Clause{}, ErrActionHasNoSteps
	}

	steps := make([]query.Clause, 0, len(action.Steps))
	for i := range action.Steps {
		step, err := a.stepClause(ctx, action.TeamID, &action.Steps[i])
		if err != nil {
			return query.Clause{}, fmt.Errorf("action %d step %d: %w", action.ID, i, err)
		}
		steps = append(steps, step)
	}
	return query.Or("action", steps...), nil
}

func (a *ActionCompiler) stepClause(ctx context.Context, teamID int64, step *models.ActionStep) (query.Clause, error) {
	var parts []query.Clause

	if step.Event != "" {
		parts = append(parts, query.Clause{SQL: "event = ?", Args: []any{step.Event}})
	}
	if step.URL != "" {
		c, err := urlClause(step.URL, step.URLMatching)
		if err != nil {
			return query.Clause{}, err
		}
		parts = append(parts, c)
	}
	if step.TagName != "" {
		parts = append(parts, elementsMatch(`(^|;)`+regexp.QuoteMeta(step.TagName)+`(\.|$|;|:)`))
	}
	if step.Text != "" {
		parts = append(parts, elementsMatch(`text="`+regexp.QuoteMeta(step.Text)+`"`))
	}
	if step.Href != "" {
		parts = append(parts, elementsMatch(`href="`+regexp.QuoteMeta(step.Href)+`"`))
	}
	if len(step.Properties) > 0 {
		c, err := a.props.Compile(ctx, teamID, step.Properties)
		if err != nil {
			return query.Clause{}, err
		}
		parts = append(parts, c)
	}

	if len(parts) == 0 {
		// A step with no constraints matches every event.
		return query.Clause{SQL: "1=1"}, nil
	}
	return query.And("step", parts...), nil
}

func urlClause(url, matching string) (query.Clause, error) {
	const col = `json_extract_string(properties, '$."$current_url"')`
	switch matching {
	case models.URLMatchExact:
		return query.Clause{SQL: col + " = ?", Args: []any{url}}, nil
	case models.URLMatchRegex:
		if _, err := regexp.Compile(url); err != nil {
			return query.Clause{}, fmt.Errorf("%w: invalid url regex: %v", ErrInvalidProperty, err)
		}
		return query.Clause{SQL: "regexp_matches(" + col + ", ?)", Args: []any{url}}, nil
	case "", models.URLMatchContains:
		return query.Clause{SQL: col + " LIKE ?", Args: []any{"%" + url + "%"}}, nil
	}
	return query.Clause{}, fmt.Errorf("%w: unknown url_matching %q", ErrInvalidProperty, matching)
}

func elementsMatch(pattern string) query.Clause {
	return query.Clause{SQL: "regexp_matches(elements_chain, ?)", Args: []any{pattern}}
}
