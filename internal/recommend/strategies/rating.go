// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package strategies

import (
	"context"
	"fmt"

	"github.com/tomtom215/sugoi/internal/models"
	"github.com/tomtom215/sugoi/internal/recommend"
)

// Rating recommends well rated content from categories the profile rated
// positively (falling back to any rated category). Unrated content stays
// eligible and ranks after rated content.
type Rating struct {
	BaseStrategy
}

// NewRating targets a third of the requested items.
func NewRating(store recommend.Store, signals recommend.SignalsConfig) *Rating {
	return &Rating{BaseStrategy: NewBaseStrategy(NameRating, 3, store, signals)}
}

//nolint:gocritic // hugeParam: q passed by value for immutability
func (r *Rating) Candidates(ctx context.Context, q recommend.Query) ([]models.Content, error) {
	limit := r.signals.RatingCategoryLimit

	catIDs, err := r.store.RatedCategoryIDs(ctx, q.ProfileID, r.signals.LikedMinScore, limit)
	if err != nil {
		return nil, fmt.Errorf("liked categories: %w", err)
	}
	if len(catIDs) == 0 {
		if catIDs, err = r.store.RatedCategoryIDs(ctx, q.ProfileID, 0, limit); err != nil {
			return nil, fmt.Errorf("rated categories: %w", err)
		}
	}

	items, err := r.inCategories(ctx, catIDs, q.Seen)
	if err != nil {
		return nil, err
	}

	eligible := items[:0]
	for _, c := range items {
		if c.AvgRating == nil || *c.AvgRating >= r.signals.MinAverageRating {
			eligible = append(eligible, c)
		}
	}

	q.Shuffler.Rank(eligible, recommend.Then(recommend.ByAvgRating, recommend.ByRatingCount))
	return recommend.Take(eligible, q.Target), nil
}
