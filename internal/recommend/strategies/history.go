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

// History recommends unseen content from the profile's most watched
// categories, or from its favorites' categories when nothing was watched.
// Order is random.
type History struct {
	BaseStrategy
}

// NewHistory targets half of the requested items.
func NewHistory(store recommend.Store, signals recommend.SignalsConfig) *History {
	return &History{BaseStrategy: NewBaseStrategy(NameHistory, 2, store, signals)}
}

//nolint:gocritic // hugeParam: q passed by value for immutability
func (h *History) Candidates(ctx context.Context, q recommend.Query) ([]models.Content, error) {
	limit := h.signals.HistoryCategoryLimit

	catIDs, err := h.store.WatchedCategoryIDs(ctx, q.ProfileID, limit)
	if err != nil {
		return nil, fmt.Errorf("watched categories: %w", err)
	}
	if len(catIDs) == 0 {
		if catIDs, err = h.store.FavoriteCategoryIDs(ctx, q.ProfileID, limit); err != nil {
			return nil, fmt.Errorf("favorite categories: %w", err)
		}
	}

	items, err := h.inCategories(ctx, catIDs, q.Seen)
	if err != nil {
		return nil, err
	}
	recommend.ShuffleSlice(q.Shuffler, items)
	return recommend.Take(items, q.Target), nil
}
