// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package events

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/tomtom215/tracepoint/internal/config"
	"github.com/tomtom215/tracepoint/internal/filters"
	"github.com/tomtom215/tracepoint/internal/models"
	"github.com/tomtom215/tracepoint/internal/validation"
)

// ErrInvalidFilter marks a malformed listing request.
var ErrInvalidFilter = errors.New("invalid filter")

// Ordering keys.
const (
	OrderNewestFirst = "-timestamp"
	OrderOldestFirst = "timestamp"
)

// Filter is the validated, read-only description of one listing request.
type Filter struct {
	After      *time.Time
	Before     *time.Time
	Properties []models.PropertyFilter
	ActionID   *int64
	Event      string
	DistinctID string
	PersonID   *int64
	OrderBy    string
	Limit      int
}

// Ascending reports whether the listing runs oldest first: every order key
// other than OrderNewestFirst.
func (f *Filter) Ascending() bool {
	return f.OrderBy != OrderNewestFirst
}

// listParams mirrors the accepted query parameters for validation.
type listParams struct {
	After      string `validate:"omitempty,isotime"`
	Before     string `validate:"omitempty,isotime"`
	Properties string `validate:"omitempty,jsonarray_or_object"`
	ActionID   string `validate:"omitempty,number"`
	PersonID   string `validate:"omitempty,number"`
	Limit      string `validate:"omitempty,number"`
}

// ParseFilter validates the query parameters of a listing request. The
// limit defaults to cfg.PageSize and may not exceed cfg.MaxPageSize. A
// cursor parameter, when present, overrides the bound of its direction.
func ParseFilter(values url.Values, cfg *config.EventsConfig) (*Filter, error) {
	p := listParams{
		After:      values.Get("after"),
		Before:     values.Get("before"),
		Properties: values.Get("properties"),
		ActionID:   values.Get("action_id"),
		PersonID:   values.Get("person_id"),
		Limit:      values.Get("limit"),
	}
	if verr := validation.ValidateStruct(&p); verr != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFilter, verr.Error())
	}

	f := &Filter{
		Event:      values.Get("event"),
		DistinctID: values.Get("distinct_id"),
		OrderBy:    OrderNewestFirst,
		Limit:      cfg.PageSize,
	}
	// Any value other than -timestamp, including an empty one, lists oldest first.
	if values.Has("orderBy") {
		f.OrderBy = values.Get("orderBy")
	}

	var err error
	if f.After, err = optionalTime(p.After); err != nil {
		return nil, err
	}
	if f.Before, err = optionalTime(p.Before); err != nil {
		return nil, err
	}
	if f.ActionID, err = optionalID("action_id", p.ActionID); err != nil {
		return nil, err
	}
	if f.PersonID, err = optionalID("person_id", p.PersonID); err != nil {
		return nil, err
	}

	if p.Limit != "" {
		n, err := strconv.Atoi(p.Limit)
		if err != nil || n < 1 || n > cfg.MaxPageSize {
			return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidFilter, cfg.MaxPageSize)
		}
		f.Limit = n
	}

	if f.Properties, err = filters.ParseProperties(p.Properties); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}

	if raw := values.Get("cursor"); raw != "" {
		c, err := DecodeCursor(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
		}
		ts := c.Timestamp
		if c.Direction == DirectionAfter {
			f.After = &ts
		} else {
			f.Before = &ts
		}
	}

	if f.After != nil && f.Before != nil && !f.After.Before(*f.Before) {
		return nil, fmt.Errorf("%w: after must be earlier than before", ErrInvalidFilter)
	}
	return f, nil
}

func optionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := validation.ParseTimestamp(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	return &t, nil
}

func optionalID(name, s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 1 {
		return nil, fmt.Errorf("%w: %s must be a positive integer", ErrInvalidFilter, name)
	}
	return &n, nil
}
