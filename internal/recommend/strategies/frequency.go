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

// Frequency recommends the newest unseen content from the categories the
// profile watched or favorited most.
type Frequency struct {
	BaseStrategy
}

// NewFrequency targets a quarter of the requested items.
func NewFrequency(store recommend.Store, signals recommend.SignalsConfig) *Frequency {
	return &Frequency{BaseStrategy: NewBaseStrategy(NameFrequency, 4, store, signals)}
}

//nolint:gocritic // hugeParam: q passed by value for immutability
func (f *Frequency) Candidates(ctx context.Context, q recommend.Query) ([]models.Content, error) {
	catIDs, err := f.store.FrequentCategoryIDs(ctx, q.ProfileID, f.signals.FrequentCategoryLimit)
	if err != nil {
		return nil, fmt.Errorf("frequent categories: %w", err)
	}

	items, err := f.inCategories(ctx, catIDs, q.Seen)
	if err != nil {
		return nil, err
	}
	q.Shuffler.Rank(items, recommend.ByYear)
	return recommend.Take(items, q.Target), nil
}
