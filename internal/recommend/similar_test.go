// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package recommend_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/tomtom215/sugoi/internal/recommend"
	"github.com/tomtom215/sugoi/internal/recommend/recommendtest"
)

// similarStore: content 10 is tagged Action+Drama.
//
//	11 Action+Drama avg 3
//	12 Action       avg 5
//	13 Drama        unrated, watched by profile 1
//	14 Comedy       unrated
//	15 untagged     unrated
func similarStore() *recommendtest.Store {
	s := recommendtest.NewStore()
	s.AddCategory(1, "Action")
	s.AddCategory(2, "Drama")
	s.AddCategory(3, "Comedy")
	s.AddProfile(1)
	s.AddProfile(3)

	s.AddContent(10, "Target", 2010, 1, 2)
	s.AddContent(11, "Both", 2011, 1, 2)
	s.AddContent(12, "Action only", 2012, 1)
	s.AddContent(13, "Drama only", 2013, 2)
	s.AddContent(14, "Comedy", 2014, 3)
	s.AddContent(15, "Untagged", 2015)

	s.Rate(3, 11, 3)
	s.Rate(3, 12, 5)
	s.Watch(1, 13, time.Now())
	return s
}

func TestSimilar_WithProfile(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, similarStore(), 1)
	profile := int64(1)

	resp, err := engine.Similar(context.Background(), recommend.SimilarRequest{ContentID: 10, ProfileID: &profile})
	if err != nil {
		t.Fatalf("Similar: %v", err)
	}
	if got := resp.ContentIDs(); !slices.Equal(got, []int64{11, 12}) {
		t.Fatalf("expected [11 12], got %v", got)
	}
	if resp.Items[0].SharedCategories != 2 || resp.Items[1].SharedCategories != 1 {
		t.Errorf("unexpected shared counts %+v", resp.Items)
	}
	if resp.Metadata.Mode != recommend.ModeSimilar || resp.Metadata.Limit != 6 {
		t.Errorf("unexpected metadata %+v", resp.Metadata)
	}
}

func TestSimilar_WithoutProfileRanksByRating(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, similarStore(), 1)
	resp, err := engine.Similar(context.Background(), recommend.SimilarRequest{ContentID: 10})
	if err != nil {
		t.Fatalf("Similar: %v", err)
	}
	if got := resp.ContentIDs(); !slices.Equal(got, []int64{12, 11, 13}) {
		t.Fatalf("expected [12 11 13], got %v", got)
	}
}

func TestSimilar_UntaggedContentFallsBackToTopRated(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, similarStore(), 1)
	resp, err := engine.Similar(context.Background(), recommend.SimilarRequest{ContentID: 15, Limit: 3})
	if err != nil {
		t.Fatalf("Similar: %v", err)
	}
	got := resp.ContentIDs()
	if len(got) != 3 || got[0] != 12 || got[1] != 11 {
		t.Fatalf("expected top rated first, got %v", got)
	}
	if slices.Contains(got, 15) {
		t.Error("content must not be similar to itself")
	}
}

func TestSimilar_Errors(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, similarStore(), 1)
	if _, err := engine.Similar(context.Background(), recommend.SimilarRequest{ContentID: 404}); !errors.Is(err, recommend.ErrContentNotFound) {
		t.Errorf("expected ErrContentNotFound, got %v", err)
	}
	if _, err := engine.Similar(context.Background(), recommend.SimilarRequest{}); !errors.Is(err, recommend.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

// categoryStore: Action content with varied ratings.
//
//	20 avg 5 (1 rating)   21 avg 2   22 unrated
//	23 avg 4 (2 ratings)  24 avg 4 (1 rating)
//	25 rated 5 by profile 1, so profile 1's Action mean is 5
func categoryStore() *recommendtest.Store {
	s := recommendtest.NewStore()
	s.AddCategory(1, "Action")
	s.AddCategory(2, "Drama")
	s.AddProfile(1)
	s.AddProfile(2)
	for id := int64(20); id <= 25; id++ {
		s.AddContent(id, "Action", 2020, 1)
	}
	s.AddContent(26, "Drama", 2020, 2)

	s.Rate(3, 20, 5)
	s.Rate(3, 21, 2)
	s.Rate(3, 23, 4)
	s.Rate(4, 23, 4)
	s.Rate(3, 24, 4)
	s.Rate(1, 25, 5)
	return s
}

func TestForCategory_DemotesBelowProfileMean(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, categoryStore(), 1)
	resp, err := engine.ForCategory(context.Background(), recommend.CategoryRequest{ProfileID: 1, CategoryID: 1})
	if err != nil {
		t.Fatalf("ForCategory: %v", err)
	}

	// Mean 5, tolerance 1: content averaging under 4 moves to the back.
	if got := resp.ContentIDs(); !slices.Equal(got, []int64{20, 23, 24, 22, 21}) {
		t.Fatalf("unexpected order %v", got)
	}
	if resp.Metadata.CategoryMean == nil || *resp.Metadata.CategoryMean != 5 {
		t.Errorf("expected category mean 5, got %v", resp.Metadata.CategoryMean)
	}
}

func TestForCategory_DefaultMean(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, categoryStore(), 1)
	resp, err := engine.ForCategory(context.Background(), recommend.CategoryRequest{ProfileID: 2, CategoryID: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ForCategory: %v", err)
	}
	if resp.Metadata.CategoryMean == nil || *resp.Metadata.CategoryMean != 3 {
		t.Fatalf("expected default mean 3, got %v", resp.Metadata.CategoryMean)
	}

	got := resp.ContentIDs()
	if len(got) != 6 {
		t.Fatalf("expected all six Action items, got %v", got)
	}
	// Rated 2 is within tolerance of 3, so it stays ahead of unrated content.
	if got[len(got)-1] != 22 || got[len(got)-2] != 21 {
		t.Errorf("expected 21 then 22 at the end, got %v", got)
	}
	if slices.Contains(got, 26) {
		t.Error("content from another category returned")
	}
}

func TestForCategory_UnknownCategory(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, categoryStore(), 1)
	_, err := engine.ForCategory(context.Background(), recommend.CategoryRequest{ProfileID: 1, CategoryID: 99})
	if !errors.Is(err, recommend.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}
