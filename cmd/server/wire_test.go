// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package main

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/sugoi/internal/audit"
	"github.com/tomtom215/sugoi/internal/config"
	"github.com/tomtom215/sugoi/internal/database"
)

func TestNewAuditLogger_Disabled(t *testing.T) {
	cfg := &config.Config{Audit: config.AuditConfig{Enabled: false}}
	if l := newAuditLogger(cfg, nil); l != nil {
		t.Fatal("expected nil logger when auditing is disabled")
	}
}

func TestNewAuditLogger_Memory(t *testing.T) {
	cfg := &config.Config{Audit: config.AuditConfig{
		Enabled:       true,
		BufferSize:    8,
		MemoryLimit:   4,
		FlushInterval: time.Second,
	}}
	l := newAuditLogger(cfg, nil)
	if l == nil {
		t.Fatal("expected logger")
	}

	l.Log(&audit.Event{Type: audit.EventTypeDedupe, Outcome: audit.OutcomeSuccess})
	if err := l.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	n, err := l.Count(context.Background(), audit.QueryFilter{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 event, got %d", n)
	}
}

func TestNewEngine_RegistersStrategies(t *testing.T) {
	db, err := database.New(&config.DatabaseConfig{
		Driver:       config.DriverDuckDB,
		Path:         ":memory:",
		MaxMemory:    "256MB",
		Threads:      1,
		QueryTimeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("database: %v", err)
	}
	defer db.Close()

	cfg := &config.Config{}
	cfg.Recommend = config.RecommendConfig{
		DefaultLimit:          10,
		MaxLimit:              50,
		Seed:                  1,
		PopularityWindow:      30 * 24 * time.Hour,
		HistoryCategoryLimit:  3,
		RatingCategoryLimit:   3,
		FrequentCategoryLimit: 3,
		LikedMinScore:         4,
		MinAverageRating:      3,
		SimilarLimit:          10,
		CategoryLimit:         10,
		CategoryMeanTolerance: 1,
		Timeout:               time.Second,
	}

	engine, err := newEngine(cfg, db)
	if err != nil {
		t.Fatalf("newEngine: %v", err)
	}
	if got := len(engine.Strategies()); got != 4 {
		t.Errorf("expected 4 strategies, got %d", got)
	}
}
