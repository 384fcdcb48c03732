// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

/*
Package events plans and executes event listings.

A listing is built from a validated Filter and runs against the event
store in at most two queries:

 1. A narrow query bounded to the last day (unless the caller supplied
    its own lower bound), fetching limit+1 rows.
 2. If that under-fills the page and the lower bound was implicit, the
    same query without the lower bound. Its rows replace the first
    result entirely.

The page is truncated to limit rows. When the store returned more, a
Cursor pointing past the last row of the page is produced, and NextURL
renders it into the follow-up request URL.

Two query shapes exist. PropertyAwareQuery filters on JSON properties
and action steps; ArrayOptimizedQuery serves listings without them by
selecting the page keys first and materializing only those rows. Both
return the same rows for the same predicate.
*/
package events
