// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

/*
Package filters turns user-supplied property filters and stored actions
into DuckDB predicate clauses over the events table.

Property filters arrive either as a JSON list

	[{"key": "$browser", "value": "Chrome", "operator": "exact", "type": "event"}]

or in the legacy object form, where an operator is appended to the key:

	{"$browser": "Chrome", "$current_url__icontains": "pricing"}

Event properties compile to json_extract_string() comparisons. Person
properties are resolved against the metastore first and compile to a
distinct_id IN (...) clause, so no cross-store join is needed.

An action compiles to an OR of its steps; each step is an AND of its
event name, URL match, element selectors and step properties.
*/
package filters
