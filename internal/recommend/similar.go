// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package recommend

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/tomtom215/sugoi/internal/models"
)

// Similar returns content sharing at least one category with req.ContentID.
//
// With a profile, seen content is excluded and items rank by shared category
// count, then average rating. Without one, items rank by average rating only.
// Content without categories falls back to the best rated catalog items.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Similar(ctx context.Context, req SimilarRequest) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	resp, err := e.similar(ctx, req, start)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}
	return resp, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) similar(ctx context.Context, req SimilarRequest, start time.Time) (*Response, error) {
	if req.ContentID <= 0 {
		return nil, fmt.Errorf("%w: content id %d", ErrInvalidRequest, req.ContentID)
	}
	req.RequestID = requestID(req.RequestID)
	req.Limit = e.clampLimit(req.Limit, e.config.Limits.SimilarLimit)

	target, err := e.store.ContentByID(ctx, req.ContentID)
	if err != nil {
		return nil, notFound(fmt.Errorf("load content: %w", err), ErrContentNotFound, req.ContentID)
	}

	var (
		seen      SeenSet
		profileID int64
	)
	if req.ProfileID != nil {
		profileID = *req.ProfileID
		if seen, err = e.seenSnapshot(ctx, profileID); err != nil {
			return nil, err
		}
	}

	exclude := map[int64]struct{}{target.ID: {}}
	var items []ScoredItem

	if len(target.Categories) == 0 {
		catalog, err := e.store.CatalogContent(ctx)
		if err != nil {
			return nil, fmt.Errorf("similar fallback catalog: %w", err)
		}
		candidates := seen.Unseen(catalog, exclude)
		e.shuffler.Rank(candidates, ByAvgRating)
		for _, c := range Take(candidates, req.Limit) {
			items = append(items, ScoredItem{Content: c, Source: string(ModeSimilar)})
		}
	} else {
		catIDs := make([]int64, len(target.Categories))
		for i, c := range target.Categories {
			catIDs[i] = c.ID
		}
		content, err := e.store.ContentInCategories(ctx, catIDs)
		if err != nil {
			return nil, fmt.Errorf("similar candidates: %w", err)
		}
		items = e.rankSimilar(seen.Unseen(content, exclude), catIDs, req.ProfileID != nil, req.Limit)
	}
	assignRanks(items)

	return &Response{
		Items: items,
		Metadata: ResponseMetadata{
			RequestID: req.RequestID,
			Mode:      ModeSimilar,
			ProfileID: profileID,
			Limit:     req.Limit,
			SeenCount: len(seen),
			LatencyMS: time.Since(start).Milliseconds(),
			Timestamp: e.now(),
		},
	}, nil
}

func (e *Engine) rankSimilar(candidates []models.Content, catIDs []int64, byShared bool, limit int) []ScoredItem {
	items := make([]ScoredItem, len(candidates))
	for i := range candidates {
		shared := 0
		for _, id := range catIDs {
			if candidates[i].HasCategory(id) {
				shared++
			}
		}
		items[i] = ScoredItem{Content: candidates[i], Source: string(ModeSimilar), SharedCategories: shared}
	}

	ShuffleSlice(e.shuffler, items)
	slices.SortStableFunc(items, func(a, b ScoredItem) int {
		if byShared && a.SharedCategories != b.SharedCategories {
			return b.SharedCategories - a.SharedCategories
		}
		return ByAvgRating(a.Content, b.Content)
	})

	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
