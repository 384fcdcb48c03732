// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

// Package query builds parameterized WHERE clauses for the event store.
//
// A Predicate is a conjunction of named Clauses. Names let callers inspect
// or drop individual conditions (the event listing fallback removes the
// lower time bound) without re-deriving the rest.
//
//	p := query.NewPredicate().
//	    AddClause("team", "team_id = ?", teamID).
//	    Add(query.In("distinct", "distinct_id", ids))
//	where, args := p.Build()
//	// team_id = ? AND distinct_id IN (?, ?)
package query

import (
	"fmt"
	"strings"
)

// Clause is one named SQL condition with its bound arguments.
type Clause struct {
	Name string
	SQL  string
	Args []any
}

// Empty reports whether the clause carries no condition.
func (c Clause) Empty() bool {
	return strings.TrimSpace(c.SQL) == ""
}

// Predicate is an ordered AND of clauses.
type Predicate struct {
	clauses []Clause
}

// NewPredicate creates an empty predicate.
func NewPredicate() *Predicate {
	return &Predicate{}
}

// Add appends c. Empty clauses are ignored.
func (p *Predicate) Add(c Clause) *Predicate {
	if c.Empty() {
		return p
	}
	p.clauses = append(p.clauses, c)
	return p
}

// AddClause appends a raw condition under name.
func (p *Predicate) AddClause(name, sql string, args ...any) *Predicate {
	return p.Add(Clause{Name: name, SQL: sql, Args: args})
}

// Has reports whether a clause with name is present.
func (p *Predicate) Has(name string) bool {
	for _, c := range p.clauses {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Get returns the first clause with name.
func (p *Predicate) Get(name string) (Clause, bool) {
	for _, c := range p.clauses {
		if c.Name == name {
			return c, true
		}
	}
	return Clause{}, false
}

// Without returns a copy of p minus every clause whose name is listed.
func (p *Predicate) Without(names ...string) *Predicate {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := &Predicate{clauses: make([]Clause, 0, len(p.clauses))}
	for _, c := range p.clauses {
		if !drop[c.Name] {
			out.clauses = append(out.clauses, c)
		}
	}
	return out
}

// Clauses returns a copy of the clauses in insertion order.
func (p *Predicate) Clauses() []Clause {
	out := make([]Clause, len(p.clauses))
	copy(out, p.clauses)
	return out
}

// Len returns the number of clauses.
func (p *Predicate) Len() int {
	return len(p.clauses)
}

// Build joins the clauses with AND. It returns ("1=1", nil) when empty.
func (p *Predicate) Build() (string, []any) {
	if len(p.clauses) == 0 {
		return "1=1", nil
	}
	parts := make([]string, len(p.clauses))
	var args []any
	for i, c := range p.clauses {
		parts[i] = c.SQL
		args = append(args, c.Args...)
	}
	return strings.Join(parts, " AND "), args
}

// Placeholders returns "?, ?, ..." with n markers.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// In builds "column IN (?, ...)". An empty value list yields a clause
// that matches nothing, never an empty IN list.
func In(name, column string, values []string) Clause {
	if len(values) == 0 {
		return Clause{Name: name, SQL: "1=0"}
	}
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return Clause{
		Name: name,
		SQL:  fmt.Sprintf("%s IN (%s)", column, Placeholders(len(values))),
		Args: args,
	}
}

// And combines clauses into one parenthesized conjunction named name.
func And(name string, clauses ...Clause) Clause {
	return combine(name, " AND ", clauses)
}

// Or combines clauses into one parenthesized disjunction named name.
// An Or of nothing is empty.
func Or(name string, clauses ...Clause) Clause {
	return combine(name, " OR ", clauses)
}

func combine(name, sep string, clauses []Clause) Clause {
	parts := make([]string, 0, len(clauses))
	var args []any
	for _, c := range clauses {
		if c.Empty() {
			continue
		}
		parts = append(parts, "("+c.SQL+")")
		args = append(args, c.Args...)
	}
	switch len(parts) {
	case 0:
		return Clause{Name: name}
	case 1:
		return Clause{Name: name, SQL: parts[0], Args: args}
	}
	return Clause{Name: name, SQL: "(" + strings.Join(parts, sep) + ")", Args: args}
}

// JSONPath returns the DuckDB/SQLite JSON path selecting a top-level key,
// quoted so keys with dots, spaces or a leading $ resolve literally.
func JSONPath(key string) string {
	return `$."` + strings.ReplaceAll(key, `"`, `\"`) + `"`
}
