// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/sugoi/internal/models"
)

// Store is the read-only view of the catalog and activity tables the engine
// needs. It is implemented by the database package.
//
// Content returned by the candidate queries carries its full category list
// and derived rating/watch statistics. Stores never exclude seen content and
// never randomize; both are the engine's job.
type Store interface {
	// SeenContentIDs returns content the profile watched, rated or favorited.
	SeenContentIDs(ctx context.Context, profileID int64) ([]int64, error)

	// WatchedCategoryIDs returns categories of watched content, most watched first.
	WatchedCategoryIDs(ctx context.Context, profileID int64, limit int) ([]int64, error)

	// FavoriteCategoryIDs returns distinct categories of favorited content.
	FavoriteCategoryIDs(ctx context.Context, profileID int64, limit int) ([]int64, error)

	// RatedCategoryIDs returns categories of content the profile rated with a
	// score >= minScore, ordered by the profile's average score descending.
	// minScore <= 0 accepts every rating.
	RatedCategoryIDs(ctx context.Context, profileID int64, minScore, limit int) ([]int64, error)

	// FrequentCategoryIDs ranks categories by watch plus favorite count.
	FrequentCategoryIDs(ctx context.Context, profileID int64, limit int) ([]int64, error)

	// CategoryMeanRating is the profile's mean score in a category, nil if unrated.
	CategoryMeanRating(ctx context.Context, profileID, categoryID int64) (*float64, error)

	// ContentInCategories returns each content tagged with any of categoryIDs once.
	ContentInCategories(ctx context.Context, categoryIDs []int64) ([]models.Content, error)

	// PopularContent returns content watched at least once, with watch counts
	// since the given time.
	PopularContent(ctx context.Context, since time.Time) ([]PopularItem, error)

	// CatalogContent returns the whole catalog, newest (highest id) first.
	CatalogContent(ctx context.Context) ([]models.Content, error)

	// ContentByID wraps models.ErrNotFound when the content does not exist.
	ContentByID(ctx context.Context, contentID int64) (*models.Content, error)

	// CategoryByID wraps models.ErrNotFound when the category does not exist.
	CategoryByID(ctx context.Context, categoryID int64) (*models.Category, error)

	ProfileExists(ctx context.Context, profileID int64) (bool, error)
}

// PopularItem pairs content with its recent watch count.
type PopularItem struct {
	Content       models.Content `json:"content"`
	RecentWatches int            `json:"recent_watches"`
}
