// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package database

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/go-sql-driver/mysql"

	"github.com/tomtom215/sugoi/internal/config"
)

// dialect isolates the statements DuckDB and MySQL spell differently.
type dialect interface {
	// driverName is the database/sql driver to open.
	driverName() string
	// dataSource builds the connection string from configuration.
	dataSource(cfg *config.DatabaseConfig) (string, error)
	// schema returns CREATE statements in dependency order. Every statement is idempotent.
	schema() []string
	// returning reports whether INSERT ... RETURNING id is available.
	returning() bool
	// insertIgnore builds an INSERT that silently skips key conflicts.
	insertIgnore(table string, columns ...string) string
	// upsertRating inserts or replaces a (profile, content) rating.
	upsertRating() string
	// checkpoint is the statement flushing the WAL, empty when not applicable.
	checkpoint() string
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "", config.DriverDuckDB:
		return duckDialect{}, nil
	case config.DriverMySQL:
		return mysqlDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// duckDialect targets embedded DuckDB.
type duckDialect struct{}

func (duckDialect) driverName() string { return "duckdb" }

func (duckDialect) dataSource(cfg *config.DatabaseConfig) (string, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	// Extensions are not needed; keep auto-install off so startup never reaches the network.
	return fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		path, threads, maxMemory), nil
}

func (duckDialect) returning() bool { return true }

func (duckDialect) insertIgnore(table string, columns ...string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING",
		table, strings.Join(columns, ", "), placeholders(len(columns)))
}

func (duckDialect) upsertRating() string {
	return `INSERT INTO ratings (profile_id, content_id, score, rated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (profile_id, content_id) DO UPDATE SET score = excluded.score, rated_at = excluded.rated_at`
}

func (duckDialect) checkpoint() string { return "CHECKPOINT" }

func (duckDialect) schema() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS categories_id_seq START 1`,
		`CREATE TABLE IF NOT EXISTS categories (
			id BIGINT PRIMARY KEY DEFAULT nextval('categories_id_seq'),
			name VARCHAR NOT NULL UNIQUE
		)`,
		`CREATE SEQUENCE IF NOT EXISTS content_id_seq START 1`,
		`CREATE TABLE IF NOT EXISTS content (
			id BIGINT PRIMARY KEY DEFAULT nextval('content_id_seq'),
			title VARCHAR NOT NULL,
			kind VARCHAR NOT NULL,
			description VARCHAR NOT NULL,
			release_year INTEGER,
			duration_minutes INTEGER,
			language_code VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS content_categories (
			content_id BIGINT NOT NULL,
			category_id BIGINT NOT NULL,
			PRIMARY KEY (content_id, category_id)
		)`,
		`CREATE SEQUENCE IF NOT EXISTS profiles_id_seq START 1`,
		`CREATE TABLE IF NOT EXISTS profiles (
			id BIGINT PRIMARY KEY DEFAULT nextval('profiles_id_seq'),
			account_id BIGINT NOT NULL,
			name VARCHAR NOT NULL,
			audience VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (account_id, name)
		)`,
		`CREATE SEQUENCE IF NOT EXISTS episodes_id_seq START 1`,
		`CREATE TABLE IF NOT EXISTS episodes (
			id BIGINT PRIMARY KEY DEFAULT nextval('episodes_id_seq'),
			content_id BIGINT NOT NULL,
			season INTEGER NOT NULL,
			episode_number INTEGER NOT NULL,
			title VARCHAR NOT NULL,
			duration_minutes INTEGER NOT NULL,
			UNIQUE (content_id, season, episode_number)
		)`,
		`CREATE SEQUENCE IF NOT EXISTS watch_events_id_seq START 1`,
		`CREATE TABLE IF NOT EXISTS watch_events (
			id BIGINT PRIMARY KEY DEFAULT nextval('watch_events_id_seq'),
			profile_id BIGINT NOT NULL,
			content_id BIGINT NOT NULL,
			episode_id BIGINT,
			watched_seconds INTEGER NOT NULL,
			watched_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ratings (
			profile_id BIGINT NOT NULL,
			content_id BIGINT NOT NULL,
			score INTEGER NOT NULL CHECK (score BETWEEN 1 AND 5),
			rated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (profile_id, content_id)
		)`,
		`CREATE TABLE IF NOT EXISTS favorites (
			profile_id BIGINT NOT NULL,
			content_id BIGINT NOT NULL,
			added_at TIMESTAMP NOT NULL,
			PRIMARY KEY (profile_id, content_id)
		)`,
		`CREATE TABLE IF NOT EXISTS audit_events (
			id VARCHAR PRIMARY KEY,
			occurred_at TIMESTAMP NOT NULL,
			event_type VARCHAR NOT NULL,
			outcome VARCHAR NOT NULL,
			profile_id BIGINT,
			action VARCHAR NOT NULL,
			resource VARCHAR NOT NULL,
			method VARCHAR NOT NULL,
			path VARCHAR NOT NULL,
			status INTEGER NOT NULL,
			remote_addr VARCHAR NOT NULL,
			request_id VARCHAR NOT NULL,
			metadata VARCHAR NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_content_categories_category ON content_categories (category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_watch_events_profile ON watch_events (profile_id)`,
		`CREATE INDEX IF NOT EXISTS idx_watch_events_content ON watch_events (content_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ratings_content ON ratings (content_id)`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_content ON favorites (content_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_events_occurred ON audit_events (occurred_at)`,
	}
}

// mysqlDialect targets MySQL 8 (window functions are required by dedupe).
type mysqlDialect struct{}

func (mysqlDialect) driverName() string { return "mysql" }

// dataSource forces parseTime and UTC so DATETIME columns scan into time.Time.
func (mysqlDialect) dataSource(cfg *config.DatabaseConfig) (string, error) {
	if cfg.DSN == "" {
		return "", fmt.Errorf("%w: mysql driver requires a dsn", ErrInvalidInput)
	}
	parsed, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	parsed.ParseTime = true
	parsed.Loc = time.UTC
	if parsed.Params == nil {
		parsed.Params = map[string]string{}
	}
	if _, ok := parsed.Params["charset"]; !ok {
		parsed.Params["charset"] = "utf8mb4"
	}
	return parsed.FormatDSN(), nil
}

func (mysqlDialect) returning() bool { return false }

func (mysqlDialect) insertIgnore(table string, columns ...string) string {
	return fmt.Sprintf("INSERT IGNORE INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), placeholders(len(columns)))
}

func (mysqlDialect) upsertRating() string {
	return `INSERT INTO ratings (profile_id, content_id, score, rated_at) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE score = VALUES(score), rated_at = VALUES(rated_at)`
}

func (mysqlDialect) checkpoint() string { return "" }

func (mysqlDialect) schema() []string {
	const engine = ` ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`
	return []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			UNIQUE KEY uq_categories_name (name)
		)` + engine,
		`CREATE TABLE IF NOT EXISTS content (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			kind VARCHAR(16) NOT NULL,
			description TEXT NOT NULL,
			release_year INT NULL,
			duration_minutes INT NULL,
			language_code VARCHAR(16) NOT NULL,
			created_at DATETIME(6) NOT NULL,
			KEY idx_content_title (title)
		)` + engine,
		`CREATE TABLE IF NOT EXISTS content_categories (
			content_id BIGINT NOT NULL,
			category_id BIGINT NOT NULL,
			PRIMARY KEY (content_id, category_id),
			KEY idx_content_categories_category (category_id)
		)` + engine,
		`CREATE TABLE IF NOT EXISTS profiles (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			account_id BIGINT NOT NULL,
			name VARCHAR(100) NOT NULL,
			audience VARCHAR(16) NOT NULL,
			created_at DATETIME(6) NOT NULL,
			UNIQUE KEY uq_profiles_account_name (account_id, name)
		)` + engine,
		`CREATE TABLE IF NOT EXISTS episodes (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			content_id BIGINT NOT NULL,
			season INT NOT NULL,
			episode_number INT NOT NULL,
			title VARCHAR(255) NOT NULL,
			duration_minutes INT NOT NULL,
			UNIQUE KEY uq_episodes_number (content_id, season, episode_number)
		)` + engine,
		`CREATE TABLE IF NOT EXISTS watch_events (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			profile_id BIGINT NOT NULL,
			content_id BIGINT NOT NULL,
			episode_id BIGINT NULL,
			watched_seconds INT NOT NULL,
			watched_at DATETIME(6) NOT NULL,
			KEY idx_watch_events_profile (profile_id),
			KEY idx_watch_events_content (content_id)
		)` + engine,
		`CREATE TABLE IF NOT EXISTS ratings (
			profile_id BIGINT NOT NULL,
			content_id BIGINT NOT NULL,
			score INT NOT NULL,
			rated_at DATETIME(6) NOT NULL,
			PRIMARY KEY (profile_id, content_id),
			KEY idx_ratings_content (content_id),
			CONSTRAINT chk_ratings_score CHECK (score BETWEEN 1 AND 5)
		)` + engine,
		`CREATE TABLE IF NOT EXISTS favorites (
			profile_id BIGINT NOT NULL,
			content_id BIGINT NOT NULL,
			added_at DATETIME(6) NOT NULL,
			PRIMARY KEY (profile_id, content_id),
			KEY idx_favorites_content (content_id)
		)` + engine,
		`CREATE TABLE IF NOT EXISTS audit_events (
			id CHAR(36) NOT NULL PRIMARY KEY,
			occurred_at DATETIME(6) NOT NULL,
			event_type VARCHAR(64) NOT NULL,
			outcome VARCHAR(16) NOT NULL,
			profile_id BIGINT NULL,
			action VARCHAR(64) NOT NULL,
			resource VARCHAR(255) NOT NULL,
			method VARCHAR(8) NOT NULL,
			path VARCHAR(255) NOT NULL,
			status INT NOT NULL,
			remote_addr VARCHAR(64) NOT NULL,
			request_id VARCHAR(64) NOT NULL,
			metadata TEXT NOT NULL,
			KEY idx_audit_events_occurred (occurred_at)
		)` + engine,
	}
}
