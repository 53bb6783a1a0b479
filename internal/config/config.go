// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

// Package config loads Sugoi configuration with koanf.
//
// Sources are layered, later ones winning:
//
//  1. struct defaults (defaultConfig)
//  2. an optional YAML file (CONFIG_PATH, ./config.yaml, /etc/sugoi/config.yaml)
//  3. environment variables listed in envMappings
package config

import "time"

// Config is the complete service configuration.
type Config struct {
	Database    DatabaseConfig    `koanf:"database"`
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
	Recommend   RecommendConfig   `koanf:"recommend"`
	Maintenance MaintenanceConfig `koanf:"maintenance"`
	Audit       AuditConfig       `koanf:"audit"`
	Security    SecurityConfig    `koanf:"security"`
}

// Database drivers.
const (
	DriverDuckDB = "duckdb"
	DriverMySQL  = "mysql"
)

// DatabaseConfig selects and tunes the relational store.
type DatabaseConfig struct {
	Driver          string        `koanf:"driver" validate:"oneof=duckdb mysql"`
	Path            string        `koanf:"path"`       // DuckDB file, ":memory:" for ephemeral
	DSN             string        `koanf:"dsn"`        // MySQL DSN, e.g. user:pass@tcp(host:3306)/sugoi
	MaxMemory       string        `koanf:"max_memory"` // DuckDB memory_limit
	Threads         int           `koanf:"threads" validate:"gte=0"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	QueryTimeout    time.Duration `koanf:"query_timeout" validate:"gt=0"`
	SeedDemoData    bool          `koanf:"seed_demo_data"`
	SeedValue       int64         `koanf:"seed_value"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// LoggingConfig maps onto logging.Config.
type LoggingConfig struct {
	// Level is trace, debug, info, warn or error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format" validate:"oneof=json console"`

	Caller bool `koanf:"caller"`
}

// RecommendConfig tunes the recommendation engine.
type RecommendConfig struct {
	DefaultLimit int `koanf:"default_limit" validate:"gte=1"`
	MaxLimit     int `koanf:"max_limit" validate:"gte=1"`

	// Seed fixes the shuffle source. Zero seeds from the clock.
	Seed int64 `koanf:"seed"`

	PopularityWindow      time.Duration `koanf:"popularity_window" validate:"gt=0"`
	HistoryCategoryLimit  int           `koanf:"history_category_limit" validate:"gte=1"`
	RatingCategoryLimit   int           `koanf:"rating_category_limit" validate:"gte=1"`
	FrequentCategoryLimit int           `koanf:"frequent_category_limit" validate:"gte=1"`
	LikedMinScore         int           `koanf:"liked_min_score" validate:"gte=1,lte=5"`
	MinAverageRating      float64       `koanf:"min_average_rating" validate:"gte=0,lte=5"`
	SimilarLimit          int           `koanf:"similar_limit" validate:"gte=1"`
	CategoryLimit         int           `koanf:"category_limit" validate:"gte=1"`

	// CategoryMeanTolerance demotes category picks rated more than this many
	// points below the profile's own mean in that category.
	CategoryMeanTolerance float64 `koanf:"category_mean_tolerance" validate:"gte=0"`

	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// MaintenanceConfig controls the watch-event dedupe job.
type MaintenanceConfig struct {
	DedupeEnabled   bool          `koanf:"dedupe_enabled"`
	DedupeInterval  time.Duration `koanf:"dedupe_interval"`
	DedupeOnStartup bool          `koanf:"dedupe_on_startup"`
}

// AuditConfig controls the write audit trail.
type AuditConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Persist       bool          `koanf:"persist"` // store events in the database instead of memory only
	BufferSize    int           `koanf:"buffer_size" validate:"gte=1"`
	MemoryLimit   int           `koanf:"memory_limit" validate:"gte=1"`
	FlushInterval time.Duration `koanf:"flush_interval"`
}

// SecurityConfig holds CORS and rate limiting.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	// MaintenanceRatePerMinute caps dedupe/report calls; 0 disables the cap.
	MaintenanceRatePerMinute float64 `koanf:"maintenance_rate_per_minute" validate:"gte=0"`
}

// Load is the entry point used by main.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
