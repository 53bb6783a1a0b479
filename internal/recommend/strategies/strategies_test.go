// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package strategies

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/tomtom215/sugoi/internal/models"
	"github.com/tomtom215/sugoi/internal/recommend"
	"github.com/tomtom215/sugoi/internal/recommend/recommendtest"
)

const (
	action = int64(1)
	drama  = int64(2)
	comedy = int64(3)
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func baseStore() *recommendtest.Store {
	s := recommendtest.NewStore()
	s.AddCategory(action, "Action")
	s.AddCategory(drama, "Drama")
	s.AddCategory(comedy, "Comedy")
	s.AddProfile(1)
	s.AddProfile(2)
	return s
}

func query(t *testing.T, store recommend.Store, profileID int64, target int) recommend.Query {
	t.Helper()
	seen, err := store.SeenContentIDs(context.Background(), profileID)
	if err != nil {
		t.Fatal(err)
	}
	return recommend.Query{
		ProfileID: profileID,
		Target:    target,
		Seen:      recommend.NewSeenSet(seen),
		Shuffler:  recommend.NewShuffler(1),
		Now:       testNow,
	}
}

func contentIDs(items []models.Content) []int64 {
	out := make([]int64, len(items))
	for i := range items {
		out[i] = items[i].ID
	}
	return out
}

func TestHistory_OnlyWatchedCategories(t *testing.T) {
	t.Parallel()

	s := baseStore()
	for id := int64(1); id <= 6; id++ {
		s.AddContent(id, "Action", 2020, action)
	}
	for id := int64(7); id <= 10; id++ {
		s.AddContent(id, "Drama", 2020, drama)
	}
	s.Watch(1, 1, testNow)
	s.Watch(1, 2, testNow)

	h := NewHistory(s, recommend.DefaultConfig().Signals)
	items, err := h.Candidates(context.Background(), query(t, s, 1, 10))
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}

	got := contentIDs(items)
	slices.Sort(got)
	if !slices.Equal(got, []int64{3, 4, 5, 6}) {
		t.Errorf("expected unseen Action content only, got %v", got)
	}
	for _, c := range items {
		if !c.HasCategory(action) {
			t.Errorf("content %d is not Action", c.ID)
		}
	}
}

func TestHistory_FallsBackToFavorites(t *testing.T) {
	t.Parallel()

	s := baseStore()
	s.AddContent(1, "Comedy fav", 2020, comedy)
	s.AddContent(2, "Comedy", 2020, comedy)
	s.AddContent(3, "Drama", 2020, drama)
	s.Favorite(1, 1)

	items, err := NewHistory(s, recommend.DefaultConfig().Signals).Candidates(context.Background(), query(t, s, 1, 5))
	if err != nil {
		t.Fatal(err)
	}
	if got := contentIDs(items); !slices.Equal(got, []int64{2}) {
		t.Errorf("expected [2], got %v", got)
	}
}

func TestHistory_NoSignal(t *testing.T) {
	t.Parallel()

	s := baseStore()
	s.AddContent(1, "Action", 2020, action)
	items, err := NewHistory(s, recommend.DefaultConfig().Signals).Candidates(context.Background(), query(t, s, 2, 5))
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("expected no candidates, got %v", contentIDs(items))
	}
}

func TestRating_UnratedEligibleLowRatedExcluded(t *testing.T) {
	t.Parallel()

	s := baseStore()
	s.AddContent(1, "liked", 2020, action)
	s.AddContent(2, "poorly rated", 2020, action)
	s.AddContent(3, "unrated", 2020, action)
	s.AddContent(4, "well rated", 2020, action)
	s.AddContent(5, "other category", 2020, drama)
	s.Rate(1, 1, 5)
	s.Rate(2, 2, 1)
	s.Rate(2, 4, 4)

	items, err := NewRating(s, recommend.DefaultConfig().Signals).Candidates(context.Background(), query(t, s, 1, 10))
	if err != nil {
		t.Fatal(err)
	}
	if got := contentIDs(items); !slices.Equal(got, []int64{4, 3}) {
		t.Errorf("expected [4 3], got %v", got)
	}
}

func TestRating_FallsBackToAnyRatedCategory(t *testing.T) {
	t.Parallel()

	s := baseStore()
	s.AddContent(1, "disliked", 2020, drama)
	s.AddContent(2, "same category", 2020, drama)
	s.Rate(1, 1, models.ScoreDislike)

	items, err := NewRating(s, recommend.DefaultConfig().Signals).Candidates(context.Background(), query(t, s, 1, 10))
	if err != nil {
		t.Fatal(err)
	}
	if got := contentIDs(items); !slices.Equal(got, []int64{2}) {
		t.Errorf("expected [2], got %v", got)
	}
}

func TestFrequency_NewestFirst(t *testing.T) {
	t.Parallel()

	s := baseStore()
	s.AddContent(1, "watched", 2001, action)
	s.AddContent(2, "old", 1995, action)
	s.AddContent(3, "new", 2024, action)
	s.AddContent(4, "unknown year", 0, action)
	s.AddContent(5, "drama", 2025, drama)
	s.Watch(1, 1, testNow)

	items, err := NewFrequency(s, recommend.DefaultConfig().Signals).Candidates(context.Background(), query(t, s, 1, 3))
	if err != nil {
		t.Fatal(err)
	}
	if got := contentIDs(items); !slices.Equal(got, []int64{3, 2, 4}) {
		t.Errorf("expected [3 2 4], got %v", got)
	}
}

func TestPopularity_RecentWatchesFirstThenPadding(t *testing.T) {
	t.Parallel()

	s := baseStore()
	for id := int64(1); id <= 6; id++ {
		s.AddContent(id, "content", 2020, action)
	}
	old := testNow.Add(-200 * 24 * time.Hour)
	// Content 1: three old watches. Content 2: one recent watch.
	s.Watch(2, 1, old)
	s.Watch(2, 1, old)
	s.Watch(2, 1, old)
	s.Watch(2, 2, testNow)
	// Profile 1 has seen content 6.
	s.Favorite(1, 6)

	items, err := NewPopularity(s, recommend.DefaultConfig().Signals).Candidates(context.Background(), query(t, s, 1, 4))
	if err != nil {
		t.Fatal(err)
	}
	// 2 (recent), 1 (all time), then padding newest first: 5, 4.
	if got := contentIDs(items); !slices.Equal(got, []int64{2, 1, 5, 4}) {
		t.Errorf("expected [2 1 5 4], got %v", got)
	}
}

func TestStrategies_StoreErrors(t *testing.T) {
	t.Parallel()

	s := baseStore()
	s.AddContent(1, "content", 2020, action)
	q := query(t, s, 1, 5)
	s.Err = errors.New("boom")

	for _, strategy := range Defaults(s, recommend.DefaultConfig().Signals) {
		if _, err := strategy.Candidates(context.Background(), q); !errors.Is(err, s.Err) {
			t.Errorf("%s: expected store error, got %v", strategy.Name(), err)
		}
	}
}

func TestDefaults_Divisors(t *testing.T) {
	t.Parallel()

	want := map[string]int{NameHistory: 2, NameRating: 3, NameFrequency: 4, NamePopularity: 5}
	for _, s := range Defaults(recommendtest.NewStore(), recommend.DefaultConfig().Signals) {
		if s.Divisor() != want[s.Name()] {
			t.Errorf("%s divisor %d, want %d", s.Name(), s.Divisor(), want[s.Name()])
		}
	}
}
