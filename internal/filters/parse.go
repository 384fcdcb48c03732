// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package filters

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tracepoint/internal/models"
	"github.com/tomtom215/tracepoint/internal/validation"
)

// Property filter operators.
const (
	OpExact        = "exact"
	OpIsNot        = "is_not"
	OpIContains    = "icontains"
	OpNotIContains = "not_icontains"
	OpRegex        = "regex"
	OpNotRegex     = "not_regex"
	OpGT           = "gt"
	OpLT           = "lt"
	OpIsSet        = "is_set"
	OpIsNotSet     = "is_not_set"
)

// Property filter types.
const (
	TypeEvent  = "event"
	TypePerson = "person"
)

var knownOperators = map[string]bool{
	OpExact: true, OpIsNot: true, OpIContains: true, OpNotIContains: true,
	OpRegex: true, OpNotRegex: true, OpGT: true, OpLT: true,
	OpIsSet: true, OpIsNotSet: true,
}

// ErrInvalidProperty marks a malformed property filter. Callers map it to a 400.
var ErrInvalidProperty = errors.New("invalid property filter")

// ParseProperties decodes the properties query parameter. An empty string
// yields no filters. Operator and type are defaulted.
func ParseProperties(raw string) ([]models.PropertyFilter, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: properties is not valid JSON", ErrInvalidProperty)
	}

	var out []models.PropertyFilter
	switch v := decoded.(type) {
	case []any:
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: properties[%d] must be an object", ErrInvalidProperty, i)
			}
			out = append(out, fromObject(obj))
		}
	case map[string]any:
		out = fromLegacy(v)
	default:
		return nil, fmt.Errorf("%w: properties must be a list or an object", ErrInvalidProperty)
	}

	for i := range out {
		normalize(&out[i])
		if verr := validation.ValidateStruct(&out[i]); verr != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidProperty, verr.Error())
		}
	}
	return out, nil
}

func fromObject(obj map[string]any) models.PropertyFilter {
	f := models.PropertyFilter{Value: obj["value"]}
	f.Key, _ = obj["key"].(string)
	f.Operator, _ = obj["operator"].(string)
	f.Type, _ = obj["type"].(string)
	return f
}

// fromLegacy expands {"key__op": value}. Keys are sorted so the generated
// SQL is stable across requests.
func fromLegacy(obj map[string]any) []models.PropertyFilter {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]models.PropertyFilter, 0, len(keys))
	for _, k := range keys {
		f := models.PropertyFilter{Key: k, Value: obj[k]}
		if i := strings.LastIndex(k, "__"); i > 0 && knownOperators[k[i+2:]] {
			f.Key, f.Operator = k[:i], k[i+2:]
		}
		out = append(out, f)
	}
	return out
}

func normalize(f *models.PropertyFilter) {
	if f.Operator == "" {
		f.Operator = OpExact
	}
	if f.Type == "" {
		f.Type = TypeEvent
	}
}
