// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package strategies

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/tomtom215/sugoi/internal/models"
	"github.com/tomtom215/sugoi/internal/recommend"
)

// Popularity ranks unseen content by watches inside the popularity window,
// then all-time watches, then average rating. When that yields fewer than
// the target it pads with the newest unseen catalog entries.
type Popularity struct {
	BaseStrategy
}

// NewPopularity targets a fifth of the requested items.
func NewPopularity(store recommend.Store, signals recommend.SignalsConfig) *Popularity {
	return &Popularity{BaseStrategy: NewBaseStrategy(NamePopularity, 5, store, signals)}
}

//nolint:gocritic // hugeParam: q passed by value for immutability
func (p *Popularity) Candidates(ctx context.Context, q recommend.Query) ([]models.Content, error) {
	since := q.Now.Add(-p.signals.PopularityWindow)
	popular, err := p.store.PopularContent(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("popular content: %w", err)
	}

	ranked := make([]recommend.PopularItem, 0, len(popular))
	for _, item := range popular {
		if !q.Seen.Contains(item.Content.ID) {
			ranked = append(ranked, item)
		}
	}
	recommend.ShuffleSlice(q.Shuffler, ranked)
	slices.SortStableFunc(ranked, func(a, b recommend.PopularItem) int {
		if c := cmp.Compare(b.RecentWatches, a.RecentWatches); c != 0 {
			return c
		}
		return recommend.Then(recommend.ByWatchCount, recommend.ByAvgRating)(a.Content, b.Content)
	})

	items := make([]models.Content, 0, q.Target)
	picked := make(map[int64]struct{}, q.Target)
	for i := 0; i < len(ranked) && len(items) < q.Target; i++ {
		items = append(items, ranked[i].Content)
		picked[ranked[i].Content.ID] = struct{}{}
	}
	if len(items) >= q.Target {
		return items, nil
	}

	catalog, err := p.store.CatalogContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("recent content: %w", err)
	}
	padding := q.Seen.Unseen(catalog, picked)
	return append(items, recommend.Take(padding, q.Target-len(items))...), nil
}
