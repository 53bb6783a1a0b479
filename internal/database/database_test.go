// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/sugoi/internal/config"
	"github.com/tomtom215/sugoi/internal/models"
)

// testDBSemaphore serializes DuckDB tests. Concurrent CGO connections in CI
// can hang, so each test holds the slot until it completes.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB creates a new in-memory DuckDB database.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	db, err := New(&config.DatabaseConfig{
		Driver:       config.DriverDuckDB,
		Path:         ":memory:",
		MaxMemory:    "512MB",
		Threads:      1,
		QueryTimeout: 30 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return db
}

// fixture is a small catalog shared by the store tests.
type fixture struct {
	action, drama, comedy int64
	profile, other        int64
	contents              map[string]int64
}

func seedFixture(t *testing.T, db *DB) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{contents: map[string]int64{}}
	for _, c := range []struct {
		name string
		dest *int64
	}{
		{"Action", &f.action},
		{"Drama", &f.drama},
		{"Comedy", &f.comedy},
	} {
		cat, err := db.CreateCategory(ctx, c.name)
		if err != nil {
			t.Fatalf("CreateCategory(%s): %v", c.name, err)
		}
		*c.dest = cat.ID
	}

	titles := []struct {
		title string
		year  int
		cats  []int64
	}{
		{"Blade Dance", 2010, []int64{f.action}},
		{"Tears of Spring", 2012, []int64{f.drama}},
		{"Laugh Track", 2015, []int64{f.comedy}},
		{"Iron Heart", 2018, []int64{f.action, f.drama}},
		{"Quiet Shore", 2020, []int64{f.drama}},
	}
	for _, tt := range titles {
		year := tt.year
		c, err := db.CreateContent(ctx, ContentInput{Title: tt.title, Kind: models.KindSeries, Year: &year, CategoryIDs: tt.cats})
		if err != nil {
			t.Fatalf("CreateContent(%s): %v", tt.title, err)
		}
		f.contents[tt.title] = c.ID
	}

	p, err := db.CreateProfile(ctx, 1, "Aiko", models.AudienceAdult)
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	f.profile = p.ID

	o, err := db.CreateProfile(ctx, 2, "Ren", models.AudienceAdult)
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	f.other = o.ID

	return f
}

func TestNew_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := New(&config.DatabaseConfig{Driver: "postgres"})
	if !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("New() error = %v, want ErrUnsupportedDriver", err)
	}
}

func TestNew_MySQLRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := New(&config.DatabaseConfig{Driver: config.DriverMySQL})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("New() error = %v, want ErrInvalidInput", err)
	}
}

func TestInitSchema_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	if err := db.InitSchema(context.Background()); err != nil {
		t.Fatalf("second InitSchema() error = %v", err)
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if got := db.Driver(); got != "duckdb" {
		t.Errorf("Driver() = %q, want duckdb", got)
	}
}

func TestCheckpoint(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Checkpoint(context.Background()); err != nil {
		t.Fatalf("Checkpoint() error = %v", err)
	}
}

func TestEnsureContext(t *testing.T) {
	t.Parallel()

	db := &DB{cfg: &config.DatabaseConfig{QueryTimeout: time.Second}}

	ctx, cancel := db.ensureContext(context.Background())
	defer cancel()
	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected deadline to be applied")
	}
	if remaining := time.Until(deadline); remaining > time.Second {
		t.Errorf("deadline %v exceeds configured timeout", remaining)
	}

	parent, parentCancel := context.WithTimeout(context.Background(), time.Hour)
	defer parentCancel()
	ctx2, cancel2 := db.ensureContext(parent)
	defer cancel2()
	if ctx2 != parent {
		t.Error("context with deadline should be returned unchanged")
	}
}

func TestChunkIDs(t *testing.T) {
	t.Parallel()

	ids := []int64{1, 2, 3, 4, 5}
	tests := []struct {
		size int
		want int
	}{
		{size: 2, want: 3},
		{size: 5, want: 1},
		{size: 10, want: 1},
	}
	for _, tt := range tests {
		if got := len(chunkIDs(ids, tt.size)); got != tt.want {
			t.Errorf("chunkIDs(size=%d) = %d chunks, want %d", tt.size, got, tt.want)
		}
	}
	if got := chunkIDs(nil, 3); got != nil {
		t.Errorf("chunkIDs(nil) = %v, want nil", got)
	}
}

func TestBuildInClause(t *testing.T) {
	t.Parallel()

	ph, args := buildInClause([]int64{3, 5, 8})
	if ph != "?, ?, ?" {
		t.Errorf("placeholders = %q", ph)
	}
	if len(args) != 3 || args[2] != int64(8) {
		t.Errorf("args = %v", args)
	}
}
