// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/sugoi/internal/api"
	"github.com/tomtom215/sugoi/internal/config"
	"github.com/tomtom215/sugoi/internal/database"
	"github.com/tomtom215/sugoi/internal/logging"
	"github.com/tomtom215/sugoi/internal/middleware"
	"github.com/tomtom215/sugoi/internal/supervisor"
	"github.com/tomtom215/sugoi/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.LoggingConfig())

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	logging.Info().
		Str("driver", cfg.Database.Driver).
		Str("addr", cfg.Server.Addr()).
		Bool("audit", cfg.Audit.Enabled).
		Bool("dedupe", cfg.Maintenance.DedupeEnabled).
		Msg("Starting Sugoi")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Str("driver", db.Driver()).Msg("Database initialized")

	if cfg.Database.SeedDemoData {
		res, err := db.SeedDemoData(context.Background(), cfg.Database.SeedValue)
		if err != nil {
			return err
		}
		logging.Info().
			Int("content", res.Content).
			Int("profiles", res.Profiles).
			Int("watches", res.Watches).
			Msg("Demo data seeded")
	}

	engine, err := newEngine(cfg, db)
	if err != nil {
		return err
	}
	auditLog := newAuditLogger(cfg, db)

	handler := api.NewHandler(db, engine, api.HandlerOptions{
		AuditLog:         auditLog,
		PerfMon:          middleware.NewPerformanceMonitor(0, 0),
		RecommendTimeout: cfg.Recommend.Timeout,
	})
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(handler, api.RouterConfigFrom(cfg.Security)).Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + time.Second,
	})
	if err != nil {
		return err
	}

	if auditLog != nil {
		tree.AddDataService(auditLog)
	}
	if cfg.Maintenance.DedupeEnabled {
		tree.AddDataService(services.NewDedupeService(db, services.DedupeServiceConfig{
			Interval:     cfg.Maintenance.DedupeInterval,
			RunOnStartup: cfg.Maintenance.DedupeOnStartup,
		}, logging.Logger()))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.Logger()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	err = tree.Serve(ctx)

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if auditLog != nil {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := auditLog.Flush(flushCtx); err != nil {
			logging.Warn().Err(err).Msg("Failed to flush audit events")
		}
	}
	return nil
}
