// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Limits bounds result sizes.
	Limits LimitsConfig `json:"limits"`

	// Signals tunes how strategies read profile activity.
	Signals SignalsConfig `json:"signals"`

	// Seed fixes the shuffle source. Zero seeds from the clock.
	Seed int64 `json:"seed"`
}

// LimitsConfig bounds result sizes per operation.
type LimitsConfig struct {
	// DefaultLimit applies to Recommend when the request limit is <= 0.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit clamps every request.
	MaxLimit int `json:"max_limit"`

	// SimilarLimit is the default for Similar.
	SimilarLimit int `json:"similar_limit"`

	// CategoryLimit is the default for ForCategory.
	CategoryLimit int `json:"category_limit"`
}

// SignalsConfig tunes the default strategies and category ranking.
type SignalsConfig struct {
	HistoryCategoryLimit  int           `json:"history_category_limit"`
	RatingCategoryLimit   int           `json:"rating_category_limit"`
	FrequentCategoryLimit int           `json:"frequent_category_limit"`
	LikedMinScore         int           `json:"liked_min_score"`
	MinAverageRating      float64       `json:"min_average_rating"`
	PopularityWindow      time.Duration `json:"popularity_window"`

	// DefaultCategoryMean is assumed when a profile has not rated anything
	// in the requested category.
	DefaultCategoryMean float64 `json:"default_category_mean"`

	// CategoryMeanTolerance: content averaging more than this below the
	// profile's category mean is moved behind the rest.
	CategoryMeanTolerance float64 `json:"category_mean_tolerance"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		Limits: LimitsConfig{
			DefaultLimit:  10,
			MaxLimit:      100,
			SimilarLimit:  6,
			CategoryLimit: 8,
		},
		Signals: SignalsConfig{
			HistoryCategoryLimit:  8,
			RatingCategoryLimit:   8,
			FrequentCategoryLimit: 3,
			LikedMinScore:         3,
			MinAverageRating:      2.5,
			PopularityWindow:      90 * 24 * time.Hour,
			DefaultCategoryMean:   3,
			CategoryMeanTolerance: 1,
		},
	}
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	l := c.Limits
	if l.DefaultLimit < 1 || l.SimilarLimit < 1 || l.CategoryLimit < 1 {
		return fmt.Errorf("%w: limits must be positive", ErrInvalidConfig)
	}
	if l.MaxLimit < l.DefaultLimit {
		return fmt.Errorf("%w: max limit %d below default limit %d", ErrInvalidConfig, l.MaxLimit, l.DefaultLimit)
	}

	s := c.Signals
	if s.HistoryCategoryLimit < 1 || s.RatingCategoryLimit < 1 || s.FrequentCategoryLimit < 1 {
		return fmt.Errorf("%w: category limits must be positive", ErrInvalidConfig)
	}
	if s.LikedMinScore < 1 || s.LikedMinScore > 5 {
		return fmt.Errorf("%w: liked min score %d outside 1..5", ErrInvalidConfig, s.LikedMinScore)
	}
	if s.MinAverageRating < 0 || s.MinAverageRating > 5 {
		return fmt.Errorf("%w: min average rating %.2f outside 0..5", ErrInvalidConfig, s.MinAverageRating)
	}
	if s.PopularityWindow <= 0 {
		return fmt.Errorf("%w: popularity window must be positive", ErrInvalidConfig)
	}
	if s.CategoryMeanTolerance < 0 {
		return fmt.Errorf("%w: category mean tolerance must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
