// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/sugoi/internal/models"
)

// ForCategory returns unseen content in one category ranked by average
// rating, then rating count. Items whose average falls more than
// Signals.CategoryMeanTolerance below the profile's own mean score in the
// category are moved behind the others but still returned.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) ForCategory(ctx context.Context, req CategoryRequest) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	resp, err := e.forCategory(ctx, req, start)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}
	return resp, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) forCategory(ctx context.Context, req CategoryRequest, start time.Time) (*Response, error) {
	if req.ProfileID <= 0 || req.CategoryID <= 0 {
		return nil, fmt.Errorf("%w: profile %d category %d", ErrInvalidRequest, req.ProfileID, req.CategoryID)
	}
	req.RequestID = requestID(req.RequestID)
	req.Limit = e.clampLimit(req.Limit, e.config.Limits.CategoryLimit)

	if _, err := e.store.CategoryByID(ctx, req.CategoryID); err != nil {
		return nil, notFound(fmt.Errorf("load category: %w", err), ErrCategoryNotFound, req.CategoryID)
	}

	seen, err := e.seenSnapshot(ctx, req.ProfileID)
	if err != nil {
		return nil, err
	}

	mean, err := e.store.CategoryMeanRating(ctx, req.ProfileID, req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("category mean rating: %w", err)
	}
	if mean == nil {
		def := e.config.Signals.DefaultCategoryMean
		mean = &def
	}

	content, err := e.store.ContentInCategories(ctx, []int64{req.CategoryID})
	if err != nil {
		return nil, fmt.Errorf("category candidates: %w", err)
	}
	candidates := seen.Unseen(content, nil)
	e.shuffler.Rank(candidates, Then(ByAvgRating, ByRatingCount))
	candidates = demoteBelow(candidates, *mean-e.config.Signals.CategoryMeanTolerance)

	items := make([]ScoredItem, 0, min(len(candidates), req.Limit))
	for _, c := range Take(candidates, req.Limit) {
		items = append(items, ScoredItem{Content: c, Source: string(ModeCategory)})
	}
	assignRanks(items)

	return &Response{
		Items: items,
		Metadata: ResponseMetadata{
			RequestID:    req.RequestID,
			Mode:         ModeCategory,
			ProfileID:    req.ProfileID,
			Limit:        req.Limit,
			SeenCount:    len(seen),
			CategoryMean: mean,
			LatencyMS:    time.Since(start).Milliseconds(),
			Timestamp:    e.now(),
		},
	}, nil
}

// demoteBelow moves rated items averaging under floor to the end, keeping
// relative order in both groups. Unrated items are never demoted.
func demoteBelow(items []models.Content, floor float64) []models.Content {
	kept := make([]models.Content, 0, len(items))
	var demoted []models.Content
	for i := range items {
		if items[i].AvgRating != nil && *items[i].AvgRating < floor {
			demoted = append(demoted, items[i])
			continue
		}
		kept = append(kept, items[i])
	}
	return append(kept, demoted...)
}
