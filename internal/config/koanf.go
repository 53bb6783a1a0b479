// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/sugoi/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:          DriverDuckDB,
			Path:            "/data/sugoi.duckdb",
			MaxMemory:       "1GB",
			Threads:         0, // NumCPU
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
			QueryTimeout:    30 * time.Second,
			SeedDemoData:    false,
			SeedValue:       1,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Recommend: RecommendConfig{
			DefaultLimit:          10,
			MaxLimit:              100,
			Seed:                  0,
			PopularityWindow:      90 * 24 * time.Hour,
			HistoryCategoryLimit:  8,
			RatingCategoryLimit:   8,
			FrequentCategoryLimit: 3,
			LikedMinScore:         3,
			MinAverageRating:      2.5,
			SimilarLimit:          6,
			CategoryLimit:         8,
			CategoryMeanTolerance: 1.0,
			Timeout:               10 * time.Second,
		},
		Maintenance: MaintenanceConfig{
			DedupeEnabled:   true,
			DedupeInterval:  24 * time.Hour,
			DedupeOnStartup: false,
		},
		Audit: AuditConfig{
			Enabled:       true,
			Persist:       true,
			BufferSize:    256,
			MemoryLimit:   10000,
			FlushInterval: 5 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:              []string{"*"},
			RateLimitRequests:        100,
			RateLimitWindow:          time.Minute,
			MaintenanceRatePerMinute: 6,
		},
	}
}

// sliceConfigPaths may arrive from env as comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"db_driver":         "database.driver",
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"mysql_dsn":         "database.dsn",
	"db_max_open_conns": "database.max_open_conns",
	"db_max_idle_conns": "database.max_idle_conns",
	"db_query_timeout":  "database.query_timeout",
	"seed_demo_data":    "database.seed_demo_data",
	"seed_value":        "database.seed_value",

	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"recommend_default_limit":           "recommend.default_limit",
	"recommend_max_limit":               "recommend.max_limit",
	"recommend_seed":                    "recommend.seed",
	"recommend_popularity_window":       "recommend.popularity_window",
	"recommend_min_average_rating":      "recommend.min_average_rating",
	"recommend_liked_min_score":         "recommend.liked_min_score",
	"recommend_similar_limit":           "recommend.similar_limit",
	"recommend_category_limit":          "recommend.category_limit",
	"recommend_category_mean_tolerance": "recommend.category_mean_tolerance",
	"recommend_timeout":                 "recommend.timeout",

	"dedupe_enabled":    "maintenance.dedupe_enabled",
	"dedupe_interval":   "maintenance.dedupe_interval",
	"dedupe_on_startup": "maintenance.dedupe_on_startup",

	"audit_enabled":     "audit.enabled",
	"audit_persist":     "audit.persist",
	"audit_buffer_size": "audit.buffer_size",

	"cors_origins":                "security.cors_origins",
	"rate_limit_requests":         "security.rate_limit_requests",
	"rate_limit_window":           "security.rate_limit_window",
	"maintenance_rate_per_minute": "security.maintenance_rate_per_minute",
}

// LoadWithKoanf builds a Config from defaults, file and environment.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envTransformFunc returns "" for unmapped keys so koanf skips them.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
