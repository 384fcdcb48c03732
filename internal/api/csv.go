// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tracepoint/internal/logging"
	"github.com/tomtom215/tracepoint/internal/models"
)

var eventCSVHeader = []string{
	"id", "event", "distinct_id", "timestamp", "person_id", "url", "elements_chain", "properties",
}

// writeEventsCSV renders events as an attachment. Headers are written
// before the first row, so a write failure midway can only be logged.
func writeEventsCSV(w http.ResponseWriter, r *http.Request, results []models.Event) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="events-%s.csv"`, time.Now().UTC().Format("20060102-150405")))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	if err := cw.Write(eventCSVHeader); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to write CSV header")
		return
	}
	for i := range results {
		if err := cw.Write(eventCSVRecord(&results[i])); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Int("row", i).Msg("Failed to write CSV row")
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to flush CSV")
	}
}

func eventCSVRecord(e *models.Event) []string {
	personID := ""
	if e.Person != nil {
		personID = strconv.FormatInt(e.Person.ID, 10)
	}
	currentURL, _ := e.Properties["$current_url"].(string)
	props, err := json.Marshal(e.Properties)
	if err != nil {
		props = []byte("{}")
	}
	return []string{
		e.ID,
		e.Event,
		e.DistinctID,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
		personID,
		currentURL,
		e.ElementsChain,
		string(props),
	}
}
