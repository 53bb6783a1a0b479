// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package main

import (
	"github.com/tomtom215/sugoi/internal/audit"
	"github.com/tomtom215/sugoi/internal/config"
	"github.com/tomtom215/sugoi/internal/database"
	"github.com/tomtom215/sugoi/internal/logging"
	"github.com/tomtom215/sugoi/internal/recommend"
	"github.com/tomtom215/sugoi/internal/recommend/strategies"
)

// newEngine builds the engine with the built-in strategies registered.
func newEngine(cfg *config.Config, db *database.DB) (*recommend.Engine, error) {
	engineCfg := cfg.EngineConfig()
	engine, err := recommend.NewEngine(engineCfg, db, logging.Logger())
	if err != nil {
		return nil, err
	}
	strategies.Register(engine, db, engineCfg.Signals)

	logging.Info().
		Strs("strategies", engine.Strategies()).
		Int("default_limit", engineCfg.Limits.DefaultLimit).
		Int64("seed", engineCfg.Seed).
		Msg("Recommendation engine initialized")
	return engine, nil
}

// newAuditLogger returns nil when auditing is disabled.
func newAuditLogger(cfg *config.Config, db *database.DB) *audit.Logger {
	if !cfg.Audit.Enabled {
		logging.Info().Msg("Audit logging disabled (AUDIT_ENABLED=false)")
		return nil
	}

	var store audit.Store
	if cfg.Audit.Persist {
		store = audit.NewSQLStore(db.Conn())
	} else {
		store = audit.NewMemoryStore(cfg.Audit.MemoryLimit)
	}

	logging.Info().
		Bool("persist", cfg.Audit.Persist).
		Int("buffer_size", cfg.Audit.BufferSize).
		Msg("Audit logging initialized")

	return audit.NewLogger(store, &audit.Config{
		Enabled:       true,
		BufferSize:    cfg.Audit.BufferSize,
		FlushInterval: cfg.Audit.FlushInterval,
	})
}
