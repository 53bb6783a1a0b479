// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/sugoi/internal/config"
	"github.com/tomtom215/sugoi/internal/database"
	"github.com/tomtom215/sugoi/internal/recommend"
)

func testEnv(t *testing.T) (*config.Config, *database.DB) {
	t.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:       config.DriverDuckDB,
			Path:         ":memory:",
			MaxMemory:    "256MB",
			Threads:      1,
			QueryTimeout: 30 * time.Second,
			SeedValue:    42,
		},
		Recommend: config.RecommendConfig{
			DefaultLimit:          5,
			MaxLimit:              50,
			Seed:                  3,
			PopularityWindow:      365 * 24 * time.Hour,
			HistoryCategoryLimit:  3,
			RatingCategoryLimit:   3,
			FrequentCategoryLimit: 3,
			LikedMinScore:         4,
			MinAverageRating:      3,
			SimilarLimit:          10,
			CategoryLimit:         10,
			CategoryMeanTolerance: 1,
			Timeout:               5 * time.Second,
		},
	}

	db, err := database.New(&cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return cfg, db
}

func TestRun_Usage(t *testing.T) {
	cfg, db := testEnv(t)
	ctx := context.Background()

	assert.True(t, errors.Is(run(ctx, cfg, db, nil, &bytes.Buffer{}), errUsage))
	assert.True(t, errors.Is(run(ctx, cfg, db, []string{"explode"}, &bytes.Buffer{}), errUsage))
	assert.True(t, errors.Is(run(ctx, cfg, db, []string{"recommend"}, &bytes.Buffer{}), errUsage))
	assert.True(t, errors.Is(run(ctx, cfg, db, []string{"report", "-top", "x"}, &bytes.Buffer{}), errUsage))
}

func TestRun_SeedRecommendReport(t *testing.T) {
	cfg, db := testEnv(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, run(ctx, cfg, db, []string{"seed"}, &out))
	var seeded database.SeedResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &seeded))
	assert.Positive(t, seeded.Content)
	assert.Positive(t, seeded.Profiles)

	profiles, err := db.ListProfiles(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, profiles)
	profileID := strconv.FormatInt(profiles[0].ID, 10)

	out.Reset()
	require.NoError(t, run(ctx, cfg, db, []string{"recommend", "-profile", profileID, "-limit", "3"}, &out))
	var resp recommend.Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.LessOrEqual(t, len(resp.Items), 3)
	assert.Equal(t, profiles[0].ID, resp.Metadata.ProfileID)

	out.Reset()
	require.NoError(t, run(ctx, cfg, db, []string{"report", "-top", "2", "-profile", profileID}, &out))
	var doc struct {
		Report          json.RawMessage     `json:"report"`
		Recommendations *recommend.Response `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.NotEmpty(t, doc.Report)
	require.NotNil(t, doc.Recommendations)

	path := filepath.Join(t.TempDir(), "report.csv")
	out.Reset()
	require.NoError(t, run(ctx, cfg, db, []string{"report", "-csv", path}, &out))
	assert.Contains(t, out.String(), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, "section", records[0][0])
}

func TestRun_RecommendMissingProfile(t *testing.T) {
	cfg, db := testEnv(t)

	err := run(context.Background(), cfg, db, []string{"recommend", "-profile", "404"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, recommend.ErrProfileNotFound)
}

func TestRun_Dedupe(t *testing.T) {
	cfg, db := testEnv(t)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, db, []string{"dedupe"}, &out))
	assert.Contains(t, out.String(), "removed 0 duplicate watch events")
}
