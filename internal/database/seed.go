// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package database

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/tomtom215/sugoi/internal/logging"
	"github.com/tomtom215/sugoi/internal/models"
)

// DemoCategories are the genres created by SeedDemoData.
var DemoCategories = []string{"Action", "Drama", "Comedy", "Romance", "Thriller", "Sci-Fi", "Fantasy", "Horror"}

type demoTitle struct {
	title      string
	kind       models.ContentKind
	year       int
	minutes    int
	episodes   int
	categories []string
}

var demoTitles = []demoTitle{
	{"Attack on Titan", models.KindSeries, 2013, 24, 4, []string{"Action", "Drama", "Fantasy"}},
	{"Fullmetal Alchemist: Brotherhood", models.KindSeries, 2009, 24, 4, []string{"Action", "Fantasy", "Drama"}},
	{"Steins;Gate", models.KindSeries, 2011, 24, 3, []string{"Sci-Fi", "Thriller"}},
	{"Your Name", models.KindMovie, 2016, 106, 0, []string{"Romance", "Drama", "Fantasy"}},
	{"Spirited Away", models.KindMovie, 2001, 125, 0, []string{"Fantasy", "Drama"}},
	{"Death Note", models.KindSeries, 2006, 23, 3, []string{"Thriller", "Drama"}},
	{"Cowboy Bebop", models.KindSeries, 1998, 24, 3, []string{"Action", "Sci-Fi"}},
	{"Ghost in the Shell", models.KindMovie, 1995, 83, 0, []string{"Sci-Fi", "Action", "Thriller"}},
	{"Toradora!", models.KindSeries, 2008, 23, 3, []string{"Romance", "Comedy"}},
	{"Kaguya-sama: Love Is War", models.KindSeries, 2019, 24, 3, []string{"Romance", "Comedy"}},
	{"One Punch Man", models.KindSeries, 2015, 24, 3, []string{"Action", "Comedy"}},
	{"Gintama", models.KindSeries, 2006, 24, 3, []string{"Comedy", "Action", "Sci-Fi"}},
	{"Another", models.KindSeries, 2012, 24, 3, []string{"Horror", "Thriller"}},
	{"Parasyte: The Maxim", models.KindSeries, 2014, 23, 3, []string{"Horror", "Action", "Sci-Fi"}},
	{"Perfect Blue", models.KindMovie, 1997, 81, 0, []string{"Thriller", "Horror", "Drama"}},
	{"Made in Abyss", models.KindSeries, 2017, 25, 3, []string{"Fantasy", "Drama", "Horror"}},
	{"Violet Evergarden", models.KindSeries, 2018, 24, 3, []string{"Drama", "Fantasy"}},
	{"A Silent Voice", models.KindMovie, 2016, 130, 0, []string{"Drama", "Romance"}},
	{"Akira", models.KindMovie, 1988, 124, 0, []string{"Sci-Fi", "Action"}},
	{"Frieren: Beyond Journey's End", models.KindSeries, 2023, 24, 3, []string{"Fantasy", "Drama"}},
	{"Spy x Family", models.KindSeries, 2022, 24, 3, []string{"Comedy", "Action"}},
	{"Chainsaw Man", models.KindSeries, 2022, 24, 3, []string{"Action", "Horror"}},
	{"Weathering with You", models.KindMovie, 2019, 112, 0, []string{"Romance", "Fantasy"}},
	{"Psycho-Pass", models.KindSeries, 2012, 23, 3, []string{"Sci-Fi", "Thriller", "Action"}},
}

type demoProfile struct {
	accountID int64
	name      string
	audience  models.Audience
}

var demoProfiles = []demoProfile{
	{1, "Aiko", models.AudienceAdult},
	{1, "Kenta", models.AudienceChild},
	{2, "Mika", models.AudienceAdult},
	{3, "Ren", models.AudienceAdult},
	{3, "Yui", models.AudienceChild},
}

// SeedResult counts rows written by SeedDemoData on this run. Ratings are
// upserts, so a rerun counts them again.
type SeedResult struct {
	Categories int `json:"categories"`
	Content    int `json:"content"`
	Episodes   int `json:"episodes"`
	Profiles   int `json:"profiles"`
	Watches    int `json:"watches"`
	Ratings    int `json:"ratings"`
	Favorites  int `json:"favorites"`
}

// SeedDemoData populates a demo catalog, five profiles and random activity.
// Catalog rows are matched by name so repeated runs do not duplicate them;
// activity is generated from seed and is idempotent for a fixed seed.
func (db *DB) SeedDemoData(ctx context.Context, seed int64) (*SeedResult, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // demo data, not security

	result := &SeedResult{}

	categories := make(map[string]int64, len(DemoCategories))
	for _, name := range DemoCategories {
		cat, err := db.CreateCategory(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("seed category %s: %w", name, err)
		}
		categories[name] = cat.ID
	}
	result.Categories = len(categories)

	contentIDs := make([]int64, 0, len(demoTitles))
	for _, t := range demoTitles {
		id, err := db.seedTitle(ctx, t, categories, result)
		if err != nil {
			return nil, err
		}
		contentIDs = append(contentIDs, id)
	}

	profileIDs := make([]int64, 0, len(demoProfiles))
	for _, p := range demoProfiles {
		profile, err := db.CreateProfile(ctx, p.accountID, p.name, p.audience)
		if err != nil {
			return nil, fmt.Errorf("seed profile %s: %w", p.name, err)
		}
		profileIDs = append(profileIDs, profile.ID)
	}
	result.Profiles = len(profileIDs)

	for _, profileID := range profileIDs {
		if err := db.seedActivity(ctx, rng, profileID, contentIDs, result); err != nil {
			return nil, err
		}
	}

	logging.Info().
		Int64("seed", seed).
		Int("content", result.Content).
		Int("watches", result.Watches).
		Int("ratings", result.Ratings).
		Int("favorites", result.Favorites).
		Msg("Seeded demo data")

	return result, nil
}

func (db *DB) seedTitle(ctx context.Context, t demoTitle, categories map[string]int64, result *SeedResult) (int64, error) {
	id, found, err := db.ContentIDByTitle(ctx, t.title)
	if err != nil {
		return 0, err
	}

	if !found {
		catIDs := make([]int64, 0, len(t.categories))
		for _, name := range t.categories {
			catIDs = append(catIDs, categories[name])
		}
		year, minutes := t.year, t.minutes
		content, err := db.CreateContent(ctx, ContentInput{
			Title:           t.title,
			Kind:            t.kind,
			Year:            &year,
			DurationMinutes: &minutes,
			Language:        "ja",
			CategoryIDs:     catIDs,
		})
		if err != nil {
			return 0, fmt.Errorf("seed content %s: %w", t.title, err)
		}
		id = content.ID
		result.Content++
	}

	for n := 1; n <= t.episodes; n++ {
		if _, err := db.CreateEpisode(ctx, EpisodeInput{
			ContentID:       id,
			Season:          1,
			Number:          n,
			Title:           fmt.Sprintf("Episode %d", n),
			DurationMinutes: t.minutes,
		}); err != nil {
			return 0, fmt.Errorf("seed episode %s #%d: %w", t.title, n, err)
		}
		if !found {
			result.Episodes++
		}
	}
	return id, nil
}

// seedActivity gives a profile 4-8 watches, ratings on about half of them
// and 1-2 favorites.
func (db *DB) seedActivity(ctx context.Context, rng *rand.Rand, profileID int64, contentIDs []int64, result *SeedResult) error {
	order := rng.Perm(len(contentIDs))
	watchCount := 4 + rng.Intn(5)
	if watchCount > len(order) {
		watchCount = len(order)
	}

	watchedAt := now().Add(-time.Duration(30+rng.Intn(60)) * 24 * time.Hour)
	for i := 0; i < watchCount; i++ {
		contentID := contentIDs[order[i]]
		watchedAt = watchedAt.Add(time.Duration(1+rng.Intn(72)) * time.Hour)

		_, created, err := db.RecordWatch(ctx, WatchInput{
			ProfileID:      profileID,
			ContentID:      contentID,
			WatchedSeconds: 300 + rng.Intn(5400),
			WatchedAt:      watchedAt,
		})
		if err != nil {
			return fmt.Errorf("seed watch: %w", err)
		}
		if created {
			result.Watches++
		}

		if rng.Intn(2) == 0 {
			if _, err := db.SetRating(ctx, profileID, contentID, models.ScoreMin+rng.Intn(models.ScoreMax)); err != nil {
				return fmt.Errorf("seed rating: %w", err)
			}
			result.Ratings++
		}
	}

	favorites := 1 + rng.Intn(2)
	for i := 0; i < favorites && i < watchCount; i++ {
		created, err := db.AddFavorite(ctx, profileID, contentIDs[order[i]])
		if err != nil {
			return fmt.Errorf("seed favorite: %w", err)
		}
		if created {
			result.Favorites++
		}
	}
	return nil
}
