// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

// Package main is the entry point for the Tracepoint API server.
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional config.yaml, environment (Koanf v2)
//  2. Event store: DuckDB
//  3. Metastore: SQLite, migrated with goose when METASTORE_AUTO_MIGRATE is set
//  4. Query stack: property/action compilers, person resolver, planner
//  5. HTTP server and store monitor under a suture supervisor tree
//
// SIGINT and SIGTERM cancel the tree; the HTTP server drains in-flight
// requests for SERVER_SHUTDOWN_TIMEOUT before the stores are closed.
//
// Development without tokens:
//
//	export AUTH_MODE=none DEFAULT_TEAM_ID=1
//	./tracepoint
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/tracepoint/internal/api"
	"github.com/tomtom215/tracepoint/internal/auth"
	"github.com/tomtom215/tracepoint/internal/config"
	"github.com/tomtom215/tracepoint/internal/database"
	"github.com/tomtom215/tracepoint/internal/events"
	"github.com/tomtom215/tracepoint/internal/filters"
	"github.com/tomtom215/tracepoint/internal/logging"
	"github.com/tomtom215/tracepoint/internal/metastore"
	"github.com/tomtom215/tracepoint/internal/metrics"
	"github.com/tomtom215/tracepoint/internal/supervisor"
	"github.com/tomtom215/tracepoint/internal/supervisor/services"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	started := time.Now()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller = cfg.Logging.Caller
	logging.Init(logCfg)
	metrics.SetAppInfo(version)

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("metastore_path", cfg.Metastore.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Msg("Starting Tracepoint")

	if err := run(cfg, started); err != nil {
		logging.Fatal().Err(err).Msg("Server stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

// run wires the stores and services and blocks until a shutdown signal.
func run(cfg *config.Config, started time.Time) error {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize event store: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event store")
		}
	}()

	meta, err := metastore.Open(&cfg.Metastore)
	if err != nil {
		return fmt.Errorf("initialize metastore: %w", err)
	}
	defer func() {
		if err := meta.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing metastore")
		}
	}()

	if pending, err := meta.HasPendingMigrations(); err != nil {
		logging.Warn().Err(err).Msg("Could not read migration status")
	} else if pending {
		logging.Warn().Msg("Metastore has pending migrations; run tracepointctl migrate")
	}

	authMW, err := auth.NewMiddleware(&cfg.Security)
	if err != nil {
		return fmt.Errorf("initialize auth: %w", err)
	}

	handler := newHandler(cfg, db, meta)
	defer handler.Close()

	router := api.NewRouter(handler, authMW, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)))
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddStoreService(services.NewStoreMonitorService(30*time.Second, started,
		services.MonitoredStore{Name: "duckdb", Store: db},
		services.MonitoredStore{Name: "metastore", Store: meta},
	))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	logging.Info().Msg("Shutdown signal received, stopping services")

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return nil
}

// newHandler assembles the query stack behind the API handlers.
func newHandler(cfg *config.Config, db *database.DB, meta *metastore.Store) *api.Handler {
	resolver := metastore.NewPersonResolver(meta, &cfg.Events, &cfg.Breaker)
	props := filters.NewCompiler(meta)

	return api.NewHandler(api.Deps{
		Planner:    events.NewPlanner(db, meta, meta, props, filters.NewActionCompiler(props), &cfg.Events),
		Serializer: events.NewSerializer(resolver),
		Values:     events.NewValueLister(db, cfg.Events.PropertyValuesLimit),
		Sessions:   events.NewSessionLister(db, resolver, &cfg.Events),
		DB:         db,
		Metastore:  meta,
		Config:     cfg,
		Version:    version,
	})
}
