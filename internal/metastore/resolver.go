// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package metastore

import (
	"context"
	"errors"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/tracepoint/internal/config"
	"github.com/tomtom215/tracepoint/internal/logging"
	"github.com/tomtom215/tracepoint/internal/metrics"
	"github.com/tomtom215/tracepoint/internal/models"
)

const personBreakerName = "person_resolver"

// PersonResolver maps distinct ids to persons in bounded, concurrent chunks.
type PersonResolver struct {
	store       *Store
	chunkSize   int
	concurrency int
	breaker     *gobreaker.CircuitBreaker[map[string]*models.Person]
}

// NewPersonResolver builds a resolver. A nil breaker config disables the breaker.
func NewPersonResolver(store *Store, events *config.EventsConfig, bc *config.BreakerConfig) *PersonResolver {
	r := &PersonResolver{
		store:       store,
		chunkSize:   events.PersonChunkSize,
		concurrency: events.PersonConcurrency,
	}
	if r.chunkSize <= 0 {
		r.chunkSize = 500
	}
	if r.concurrency <= 0 {
		r.concurrency = 1
	}
	if bc != nil {
		r.breaker = newPersonBreaker(bc)
	}
	return r
}

func newPersonBreaker(bc *config.BreakerConfig) *gobreaker.CircuitBreaker[map[string]*models.Person] {
	settings := gobreaker.Settings{
		Name:        personBreakerName,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bc.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= bc.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			// A cancelled request says nothing about metastore health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordBreakerTransition(name, from.String(), to.String())
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}
	return gobreaker.NewCircuitBreaker[map[string]*models.Person](settings)
}

// Resolve returns the person of each distinct id that has one. When the
// breaker is open the result is empty and no error is returned, so event
// listings degrade to rows without persons.
func (r *PersonResolver) Resolve(ctx context.Context, teamID int64, distinctIDs []string) (map[string]*models.Person, error) {
	ids := uniqueStrings(distinctIDs)
	if len(ids) == 0 {
		return map[string]*models.Person{}, nil
	}
	if r.breaker == nil {
		return r.resolveChunks(ctx, teamID, ids)
	}

	out, err := r.breaker.Execute(func() (map[string]*models.Person, error) {
		return r.resolveChunks(ctx, teamID, ids)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordBreakerResult(personBreakerName, "rejected")
		logging.Ctx(ctx).Warn().Int("distinct_ids", len(ids)).Msg("Person resolution skipped, circuit open")
		return map[string]*models.Person{}, nil
	case err != nil:
		metrics.RecordBreakerResult(personBreakerName, "failure")
		return nil, err
	}
	metrics.RecordBreakerResult(personBreakerName, "success")
	return out, nil
}

// BreakerState returns the breaker state name, "disabled" without one.
func (r *PersonResolver) BreakerState() string {
	if r.breaker == nil {
		return "disabled"
	}
	return r.breaker.State().String()
}

func (r *PersonResolver) resolveChunks(ctx context.Context, teamID int64, ids []string) (map[string]*models.Person, error) {
	start := time.Now()
	defer func() { metrics.RecordMetastoreQuery("resolve_persons", time.Since(start)) }()

	if len(ids) <= r.chunkSize {
		return r.store.personsByDistinctIDs(ctx, teamID, ids)
	}

	var (
		mu  sync.Mutex
		out = make(map[string]*models.Person, len(ids))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for lo := 0; lo < len(ids); lo += r.chunkSize {
		chunk := ids[lo:min(lo+r.chunkSize, len(ids))]
		g.Go(func() error {
			found, err := r.store.personsByDistinctIDs(gctx, teamID, chunk)
			if err != nil {
				return err
			}
			mu.Lock()
			for k, v := range found {
				out[k] = v
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
