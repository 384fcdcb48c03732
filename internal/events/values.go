// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package events

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"
)

// CustomEventKey selects event names instead of a property.
const CustomEventKey = "custom_event"

// BuiltinEvents are left out of the custom event name listing.
var BuiltinEvents = []string{"$autocapture", "$pageview", "$identify", "$pageleave", "$screen"}

// ValueStore reads distinct property values and event names.
type ValueStore interface {
	CustomEventNames(ctx context.Context, teamID int64, exclude []string) ([]string, error)
	PropertyValues(ctx context.Context, teamID int64, key, contains string, limit int) ([]string, error)
}

// ValueLister lists distinct values for property filter pickers.
type ValueLister struct {
	store ValueStore
	limit int
}

// NewValueLister returns a ValueLister returning at most limit raw values per key.
func NewValueLister(store ValueStore, limit int) *ValueLister {
	return &ValueLister{store: store, limit: limit}
}

// List returns display names for key. For CustomEventKey contains is ignored.
func (l *ValueLister) List(ctx context.Context, teamID int64, key, contains string) ([]string, error) {
	if key == CustomEventKey {
		names, err := l.store.CustomEventNames(ctx, teamID, BuiltinEvents)
		if err != nil {
			return nil, fmt.Errorf("custom event names: %w", err)
		}
		if names == nil {
			names = []string{}
		}
		return names, nil
	}
	if key == "" {
		return []string{}, nil
	}

	raw, err := l.store.PropertyValues(ctx, teamID, key, contains, l.limit)
	if err != nil {
		return nil, fmt.Errorf("property values for %q: %w", key, err)
	}
	return DisplayValues(raw), nil
}

// DisplayValues decodes each raw value as JSON when it parses, flattens
// lists, renders every scalar as text and drops repeats, keeping the
// first occurrence's position. Numbers are compared in canonical form.
func DisplayValues(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	var add func(v any)
	add = func(v any) {
		if list, ok := v.([]any); ok {
			for _, item := range list {
				add(item)
			}
			return
		}
		s := displayValue(v)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, r := range raw {
		v, ok := decodeJSON(r)
		if !ok {
			add(r)
			continue
		}
		add(v)
	}
	return out
}

func decodeJSON(s string) (any, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	// Anything but whitespace after the value means the text was not JSON.
	var trailing any
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return v, true
}

func displayValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return canonicalNumber(t)
	default:
		// Maps marshal with sorted keys.
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// canonicalNumber renders equal numbers identically: 1.50, 1.5e0 and 1.5
// all become 1.5, and integral values print without a fraction.
func canonicalNumber(n json.Number) string {
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return n.String()
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
