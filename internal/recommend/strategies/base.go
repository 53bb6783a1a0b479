// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

// Package strategies holds the four signal sources blended by the engine:
// viewing history, ratings, category frequency and global popularity.
package strategies

import (
	"context"
	"fmt"

	"github.com/tomtom215/sugoi/internal/models"
	"github.com/tomtom215/sugoi/internal/recommend"
)

// Strategy names, reported as ScoredItem.Source.
const (
	NameHistory    = "history"
	NameRating     = "rating"
	NameFrequency  = "category_frequency"
	NamePopularity = "popularity"
)

// BaseStrategy carries the fields every strategy shares.
type BaseStrategy struct {
	name    string
	divisor int
	store   recommend.Store
	signals recommend.SignalsConfig
}

// NewBaseStrategy returns a base with the given name and share divisor.
func NewBaseStrategy(name string, divisor int, store recommend.Store, signals recommend.SignalsConfig) BaseStrategy {
	return BaseStrategy{name: name, divisor: divisor, store: store, signals: signals}
}

func (b *BaseStrategy) Name() string {
	return b.name
}

func (b *BaseStrategy) Divisor() int {
	return b.divisor
}

// inCategories fetches unseen content tagged with any of catIDs.
func (b *BaseStrategy) inCategories(ctx context.Context, catIDs []int64, seen recommend.SeenSet) ([]models.Content, error) {
	if len(catIDs) == 0 {
		return nil, nil
	}
	content, err := b.store.ContentInCategories(ctx, catIDs)
	if err != nil {
		return nil, fmt.Errorf("content in categories: %w", err)
	}
	return seen.Unseen(content, nil), nil
}

// Defaults returns the standard strategy set in merge order.
func Defaults(store recommend.Store, signals recommend.SignalsConfig) []recommend.Strategy {
	return []recommend.Strategy{
		NewHistory(store, signals),
		NewRating(store, signals),
		NewFrequency(store, signals),
		NewPopularity(store, signals),
	}
}

// Register adds the default strategies to engine.
func Register(engine *recommend.Engine, store recommend.Store, signals recommend.SignalsConfig) {
	for _, s := range Defaults(store, signals) {
		engine.RegisterStrategy(s)
	}
}
