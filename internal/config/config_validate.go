// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/sugoi/internal/logging"
	"github.com/tomtom215/sugoi/internal/recommend"
	"github.com/tomtom215/sugoi/internal/validation"
)

// Validate checks struct tags first, then cross-field rules.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateMaintenance(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case DriverDuckDB:
		if c.Database.Path == "" {
			return fmt.Errorf("DUCKDB_PATH is required when DB_DRIVER=duckdb")
		}
	case DriverMySQL:
		if c.Database.DSN == "" {
			return fmt.Errorf("MYSQL_DSN is required when DB_DRIVER=mysql")
		}
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns && c.Database.MaxOpenConns > 0 {
		return fmt.Errorf("database.max_idle_conns (%d) exceeds max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.DefaultLimit > c.Recommend.MaxLimit {
		return fmt.Errorf("recommend.default_limit (%d) exceeds max_limit (%d)",
			c.Recommend.DefaultLimit, c.Recommend.MaxLimit)
	}
	return nil
}

func (c *Config) validateMaintenance() error {
	if c.Maintenance.DedupeEnabled && c.Maintenance.DedupeInterval < time.Minute {
		return fmt.Errorf("DEDUPE_INTERVAL must be at least 1m, got %s", c.Maintenance.DedupeInterval)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	return nil
}

// LoggingConfig converts to the logging package's config.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}

// EngineConfig converts to the recommendation engine's config.
func (c *Config) EngineConfig() *recommend.Config {
	cfg := recommend.DefaultConfig()
	r := c.Recommend

	cfg.Seed = r.Seed
	cfg.Limits.DefaultLimit = r.DefaultLimit
	cfg.Limits.MaxLimit = r.MaxLimit
	cfg.Limits.SimilarLimit = r.SimilarLimit
	cfg.Limits.CategoryLimit = r.CategoryLimit

	cfg.Signals.HistoryCategoryLimit = r.HistoryCategoryLimit
	cfg.Signals.RatingCategoryLimit = r.RatingCategoryLimit
	cfg.Signals.FrequentCategoryLimit = r.FrequentCategoryLimit
	cfg.Signals.LikedMinScore = r.LikedMinScore
	cfg.Signals.MinAverageRating = r.MinAverageRating
	cfg.Signals.PopularityWindow = r.PopularityWindow
	cfg.Signals.CategoryMeanTolerance = r.CategoryMeanTolerance
	return cfg
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
