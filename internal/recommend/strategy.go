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

// Strategy is one signal source blended by Engine.Recommend.
type Strategy interface {
	// Name is reported as ScoredItem.Source.
	Name() string

	// Divisor sets the strategy's share: target = limit / Divisor.
	// A zero target skips the strategy.
	Divisor() int

	// Candidates returns at most q.Target unseen items, best first.
	// Missing signal yields an empty slice, not an error.
	Candidates(ctx context.Context, q Query) ([]models.Content, error)
}

// Query is the per-call input shared by all strategies.
type Query struct {
	ProfileID int64
	Target    int
	Seen      SeenSet
	Shuffler  *Shuffler
	Now       time.Time
}

// Target computes a strategy's share of limit.
func Target(limit, divisor int) int {
	if divisor <= 0 || limit <= 0 {
		return 0
	}
	return limit / divisor
}

// Take returns at most n items.
func Take(items []models.Content, n int) []models.Content {
	if n < 0 {
		n = 0
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}
