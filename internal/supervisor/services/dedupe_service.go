// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sugoi/internal/metrics"
	"github.com/tomtom215/sugoi/internal/models"
)

// Deduper removes duplicate watch events. Satisfied by *database.DB.
type Deduper interface {
	DedupeWatchEvents(ctx context.Context) (*models.DedupeResult, error)
}

// DedupeServiceConfig schedules the dedupe pass.
type DedupeServiceConfig struct {
	// Interval between runs. Default: 1h
	Interval time.Duration

	// RunOnStartup runs a pass before the first tick.
	RunOnStartup bool

	// RunTimeout bounds a single pass. Default: 5m
	RunTimeout time.Duration
}

// DedupeService runs the watch-event dedupe pass on a ticker.
// A failed pass is logged and retried on the next tick; it does not stop
// the service.
type DedupeService struct {
	db     Deduper
	config DedupeServiceConfig
	logger zerolog.Logger
	name   string

	// onRun is called after each pass. Tests use it to observe runs.
	onRun func(*models.DedupeResult, error)
}

// NewDedupeService creates the scheduler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewDedupeService(db Deduper, cfg DedupeServiceConfig, logger zerolog.Logger) *DedupeService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 5 * time.Minute
	}
	return &DedupeService{
		db:     db,
		config: cfg,
		logger: logger.With().Str("service", "dedupe").Logger(),
		name:   "dedupe-scheduler",
	}
}

// Serve implements suture.Service.
func (s *DedupeService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("run_on_startup", s.config.RunOnStartup).
		Dur("interval", s.config.Interval).
		Msg("dedupe scheduler starting")

	if s.config.RunOnStartup {
		s.run(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("dedupe scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *DedupeService) run(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.db.DedupeWatchEvents(runCtx)
	removed := 0
	if result != nil {
		removed = result.Removed
	}
	metrics.RecordDedupe(removed, err)

	if err != nil {
		s.logger.Warn().Err(err).Msg("scheduled dedupe failed")
	} else {
		s.logger.Info().
			Int("groups", result.Groups).
			Int("removed", result.Removed).
			Int("remaining", result.Remaining).
			Dur("duration", time.Since(start)).
			Msg("scheduled dedupe complete")
	}

	if s.onRun != nil {
		s.onRun(result, err)
	}
}

// String returns the service name for logging.
func (s *DedupeService) String() string {
	return s.name
}
