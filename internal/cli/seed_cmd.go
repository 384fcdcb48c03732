// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/tracepoint/internal/config"
	"github.com/tomtom215/tracepoint/internal/database"
	"github.com/tomtom215/tracepoint/internal/metastore"
	"github.com/tomtom215/tracepoint/internal/models"
)

// seedOptions controls the size and time span of the demo data set.
type seedOptions struct {
	TeamName string
	Events   int
	Span     time.Duration
	Now      time.Time
}

// seedResult summarizes what seed created.
type seedResult struct {
	TeamID     int64 `json:"team_id"`
	ActionID   int64 `json:"action_id"`
	Persons    int   `json:"persons"`
	Events     int   `json:"events"`
	Recordings int   `json:"recording_snapshots"`
}

type demoVisitor struct {
	distinctIDs []string
	properties  map[string]any
	identified  bool
}

var demoVisitors = []demoVisitor{
	{[]string{"alice-web", "alice-mobile"}, map[string]any{"email": "alice@example.com", "plan": "pro"}, true},
	{[]string{"bob-web"}, map[string]any{"email": "bob@example.com", "plan": "free"}, true},
	{[]string{"anon-7f3a"}, map[string]any{}, false},
}

var demoPaths = []string{"/", "/pricing", "/signup", "/docs", "/checkout"}

func newSeedCmd() *cobra.Command {
	opts := seedOptions{}
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo team with persons, an action and events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Events <= 0 {
				return errors.New("--events must be positive")
			}
			if opts.Span <= 0 {
				return errors.New("--span must be positive")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.Now = time.Now().UTC()

			res, err := seed(cmd.Context(), cfg, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			_, err = fmt.Fprintf(out, "team %d: %d events, %d persons, action %d, %d recording snapshots\n",
				res.TeamID, res.Events, res.Persons, res.ActionID, res.Recordings)
			return err
		},
	}
	cmd.Flags().StringVar(&opts.TeamName, "team-name", "Demo", "Name of the team to create")
	cmd.Flags().IntVar(&opts.Events, "events", 200, "Number of events to generate")
	cmd.Flags().DurationVar(&opts.Span, "span", 48*time.Hour, "Events are spread over this period ending now")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

// seed writes the demo data set into the configured stores.
func seed(ctx context.Context, cfg *config.Config, opts seedOptions) (*seedResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	meta, err := metastore.Open(&cfg.Metastore)
	if err != nil {
		return nil, err
	}
	defer func() { _ = meta.Close() }()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	team, err := meta.CreateTeam(ctx, opts.TeamName)
	if err != nil {
		return nil, err
	}
	res := &seedResult{TeamID: team.ID}

	for _, v := range demoVisitors {
		if _, err := meta.CreatePerson(ctx, team.ID, v.properties, v.identified, v.distinctIDs...); err != nil {
			return nil, fmt.Errorf("create person %s: %w", v.distinctIDs[0], err)
		}
		res.Persons++
	}

	action, err := meta.CreateAction(ctx, team.ID, "Signed up", []models.ActionStep{
		{Event: "$autocapture", TagName: "button", Text: "Sign up"},
		{Event: "$pageview", URL: "/signup", URLMatching: models.URLMatchContains},
	})
	if err != nil {
		return nil, err
	}
	res.ActionID = action.ID

	events := demoEvents(team.ID, opts)
	if res.Events, err = db.InsertEvents(ctx, events); err != nil {
		return nil, err
	}

	snapshots, err := demoSnapshots(team.ID, events)
	if err != nil {
		return nil, err
	}
	if err := db.InsertSessionRecordingEvents(ctx, snapshots); err != nil {
		return nil, err
	}
	res.Recordings = len(snapshots)
	return res, nil
}

// demoEvents spreads opts.Events evenly over opts.Span, oldest first.
func demoEvents(teamID int64, opts seedOptions) []models.NewEvent {
	step := opts.Span / time.Duration(opts.Events)
	start := opts.Now.Add(-opts.Span)
	events := make([]models.NewEvent, 0, opts.Events)

	for i := range opts.Events {
		visitor := demoVisitors[i%len(demoVisitors)]
		distinctID := visitor.distinctIDs[i%len(visitor.distinctIDs)]
		path := demoPaths[i%len(demoPaths)]
		ts := start.Add(time.Duration(i+1) * step)

		e := models.NewEvent{
			TeamID:     teamID,
			DistinctID: distinctID,
			Timestamp:  ts,
			Event:      "$pageview",
			Properties: map[string]any{
				"$current_url": "https://demo.example.com" + path,
				"$browser":     []string{"Chrome", "Firefox", "Safari"}[i%3],
				"$session_id":  fmt.Sprintf("%s-%s", distinctID, ts.Format("20060102")),
			},
		}
		switch {
		case path == "/signup" && i%2 == 0:
			e.Event = "$autocapture"
			e.Properties["$event_type"] = "click"
			e.ElementsChain = `button.btn.btn-primary:text="Sign up"nth-child="1"nth-of-type="1"` +
				`;form.signup:attr_id="signup"nth-child="2"nth-of-type="1"`
		case path == "/checkout":
			e.Event = "purchase"
			e.Properties["amount"] = 10 + i%90
			e.Properties["plan"] = visitor.properties["plan"]
		}
		events = append(events, e)
	}
	return events
}

// demoSnapshots records two snapshots per session: a full page and a click.
func demoSnapshots(teamID int64, events []models.NewEvent) ([]models.SessionRecordingEvent, error) {
	seen := make(map[string]bool)
	var snapshots []models.SessionRecordingEvent

	for i := range events {
		e := &events[i]
		sessionID, _ := e.Properties["$session_id"].(string)
		if sessionID == "" || seen[sessionID] {
			continue
		}
		seen[sessionID] = true

		for n, payload := range []map[string]any{
			{"type": 2, "data": map[string]any{"href": e.Properties["$current_url"]}},
			{"type": 3, "data": map[string]any{"source": 2, "x": 120, "y": 48}},
		} {
			raw, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("encode snapshot: %w", err)
			}
			snapshots = append(snapshots, models.SessionRecordingEvent{
				TeamID:       teamID,
				DistinctID:   e.DistinctID,
				SessionID:    sessionID,
				Timestamp:    e.Timestamp.Add(time.Duration(n) * time.Second),
				SnapshotData: string(raw),
			})
		}
	}
	return snapshots, nil
}
