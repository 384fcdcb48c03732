// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/tracepoint/internal/config"
	"github.com/tomtom215/tracepoint/internal/database/query"
	"github.com/tomtom215/tracepoint/internal/filters"
	"github.com/tomtom215/tracepoint/internal/logging"
	"github.com/tomtom215/tracepoint/internal/metastore"
	"github.com/tomtom215/tracepoint/internal/metrics"
	"github.com/tomtom215/tracepoint/internal/models"
	"github.com/tomtom215/tracepoint/internal/validation"
)

// ErrInvalidEventID is returned for an identifier that is not a UUID.
var ErrInvalidEventID = errors.New("invalid event id")

// EventStore runs read-only queries whose projection is database.EventColumns.
type EventStore interface {
	QueryEvents(ctx context.Context, sqlText string, args []any) ([]models.EventRow, error)
	GetEvent(ctx context.Context, teamID int64, id string) (*models.EventRow, error)
}

// ActionSource loads a team's action with its steps.
type ActionSource interface {
	GetAction(ctx context.Context, teamID, actionID int64) (*models.Action, error)
}

// PersonDirectory lists the distinct ids of a person.
type PersonDirectory interface {
	DistinctIDsForPerson(ctx context.Context, teamID, personID int64) ([]string, error)
}

// PersonResolver maps distinct ids to persons. Unknown ids are absent.
type PersonResolver interface {
	Resolve(ctx context.Context, teamID int64, distinctIDs []string) (map[string]*models.Person, error)
}

// PropertyCompiler compiles property filters to one clause.
type PropertyCompiler interface {
	Compile(ctx context.Context, teamID int64, filters []models.PropertyFilter) (query.Clause, error)
}

// ActionCompiler compiles an action to one clause.
type ActionCompiler interface {
	Compile(ctx context.Context, action *models.Action) (query.Clause, error)
}

// Page is one listing result.
type Page struct {
	Rows []models.EventRow
	// Next is nil when the store held no further rows.
	Next *Cursor
}

// Planner builds and runs event listings.
type Planner struct {
	store   EventStore
	actions ActionSource
	people  PersonDirectory
	props   PropertyCompiler
	action  ActionCompiler
	cfg     *config.EventsConfig
	now     func() time.Time
}

// NewPlanner wires a Planner.
func NewPlanner(store EventStore, actions ActionSource, people PersonDirectory, props PropertyCompiler, action ActionCompiler, cfg *config.EventsConfig) *Planner {
	return &Planner{
		store:   store,
		actions: actions,
		people:  people,
		props:   props,
		action:  action,
		cfg:     cfg,
		now:     time.Now,
	}
}

// errEmptyPage short-circuits a listing that can match nothing.
var errEmptyPage = errors.New("empty page")

// ListEvents returns at most limit rows of the team's events matching f.
func (p *Planner) ListEvents(ctx context.Context, teamID int64, f *Filter, limit int) (*Page, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidFilter)
	}

	pred, err := p.buildPredicate(ctx, teamID, f)
	if errors.Is(err, errEmptyPage) {
		return &Page{Rows: []models.EventRow{}}, nil
	}
	if err != nil {
		return nil, err
	}

	shape := ShapeFor(pred)
	ascending := f.Ascending()

	window := metrics.WindowNarrow
	if f.After != nil {
		window = metrics.WindowExplicit
	}
	rows, err := shape.Execute(ctx, p.store, pred, ascending, limit+1, 0)
	if err != nil {
		return nil, fmt.Errorf("%s query: %w", shape.Name(), err)
	}
	metrics.RecordEventListQuery(shape.Name(), window, len(rows))

	if len(rows) < limit && f.After == nil {
		wide := pred.Without(ClauseAfter)
		rows, err = shape.Execute(ctx, p.store, wide, ascending, limit+1, 0)
		if err != nil {
			return nil, fmt.Errorf("%s fallback query: %w", shape.Name(), err)
		}
		metrics.RecordEventListQuery(shape.Name(), metrics.WindowFallback, len(rows))
		logging.Ctx(ctx).Debug().Int("rows", len(rows)).Str("shape", shape.Name()).
			Msg("Narrow window under-filled, used full history")
	}

	page := &Page{Rows: rows}
	if len(rows) > limit {
		page.Rows = rows[:limit]
		page.Next = NewCursor(ascending, page.Rows[limit-1].Timestamp)
	}
	if page.Rows == nil {
		page.Rows = []models.EventRow{}
	}
	return page, nil
}

// buildPredicate composes the WHERE clauses. It returns errEmptyPage when
// the filter references an action or person that can match nothing.
func (p *Planner) buildPredicate(ctx context.Context, teamID int64, f *Filter) (*query.Predicate, error) {
	now := p.now().UTC()

	after := now.Add(-p.cfg.NarrowWindow)
	if f.After != nil {
		after = *f.After
	}
	before := now.Add(p.cfg.ClockSkew)
	if f.Before != nil {
		before = *f.Before
	}

	pred := query.NewPredicate().
		AddClause(ClauseTeam, "team_id = ?", teamID).
		AddClause(ClauseAfter, "timestamp > ?", after).
		AddClause(ClauseBefore, "timestamp < ?", before)

	if f.Event != "" {
		pred.AddClause(ClauseEvent, "event = ?", f.Event)
	}
	if f.DistinctID != "" {
		pred.AddClause(ClauseDistinctID, "distinct_id = ?", f.DistinctID)
	}
	if f.PersonID != nil {
		ids, err := p.people.DistinctIDsForPerson(ctx, teamID, *f.PersonID)
		if errors.Is(err, metastore.ErrPersonNotFound) || (err == nil && len(ids) == 0) {
			return nil, errEmptyPage
		}
		if err != nil {
			return nil, fmt.Errorf("load person %d: %w", *f.PersonID, err)
		}
		pred.Add(query.In(ClausePerson, "distinct_id", ids))
	}

	if len(f.Properties) > 0 {
		c, err := p.props.Compile(ctx, teamID, f.Properties)
		if err != nil {
			return nil, invalidIfFilterError(err)
		}
		c.Name = ClauseProperties
		pred.Add(c)
	}

	if f.ActionID != nil {
		action, err := p.actions.GetAction(ctx, teamID, *f.ActionID)
		if errors.Is(err, metastore.ErrActionNotFound) {
			return nil, errEmptyPage
		}
		if err != nil {
			return nil, fmt.Errorf("load action %d: %w", *f.ActionID, err)
		}
		c, err := p.action.Compile(ctx, action)
		if errors.Is(err, filters.ErrActionHasNoSteps) {
			return nil, errEmptyPage
		}
		if err != nil {
			return nil, invalidIfFilterError(err)
		}
		c.Name = ClauseAction
		pred.Add(c)
	}
	return pred, nil
}

func invalidIfFilterError(err error) error {
	if errors.Is(err, filters.ErrInvalidProperty) {
		return fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	return err
}

// GetEvent returns one event of the team. id may carry dashes or not.
func (p *Planner) GetEvent(ctx context.Context, teamID int64, id string) (*models.EventRow, error) {
	canonical, ok := validation.NormalizeEventUUID(id)
	if !ok {
		return nil, ErrInvalidEventID
	}
	return p.store.GetEvent(ctx, teamID, canonical)
}
