// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package recommend

import (
	"time"

	"github.com/tomtom215/sugoi/internal/models"
)

// Mode identifies which operation produced a response.
type Mode string

const (
	ModeProfile  Mode = "profile"
	ModeSimilar  Mode = "similar"
	ModeCategory Mode = "category"
)

// SourceBackfill marks items added by the random catalog backfill.
const SourceBackfill = "backfill"

// Request asks for recommendations for a profile.
type Request struct {
	// RequestID correlates logs; generated when empty.
	RequestID string `json:"request_id,omitempty"`

	ProfileID int64 `json:"profile_id"`

	// Limit is the number of items wanted. <= 0 uses the configured default.
	Limit int `json:"limit"`
}

// SimilarRequest asks for content similar to ContentID.
type SimilarRequest struct {
	RequestID string `json:"request_id,omitempty"`
	ContentID int64  `json:"content_id"`

	// ProfileID is optional. When set, seen content is excluded and shared
	// category count ranks ahead of rating.
	ProfileID *int64 `json:"profile_id,omitempty"`

	Limit int `json:"limit"`
}

// CategoryRequest asks for unseen content inside one category.
type CategoryRequest struct {
	RequestID  string `json:"request_id,omitempty"`
	ProfileID  int64  `json:"profile_id"`
	CategoryID int64  `json:"category_id"`
	Limit      int    `json:"limit"`
}

// ScoredItem is one recommended content item.
type ScoredItem struct {
	Content models.Content `json:"content"`

	// Source names the strategy that contributed the item, or "backfill".
	Source string `json:"source"`

	// Rank is the 1-based position in the response.
	Rank int `json:"rank"`

	// SharedCategories is set by Similar.
	SharedCategories int `json:"shared_categories,omitempty"`
}

// Response is returned by every engine operation.
type Response struct {
	Items    []ScoredItem     `json:"items"`
	Metadata ResponseMetadata `json:"metadata"`
}

// ContentIDs returns item ids in response order.
func (r *Response) ContentIDs() []int64 {
	ids := make([]int64, len(r.Items))
	for i := range r.Items {
		ids[i] = r.Items[i].Content.ID
	}
	return ids
}

// ResponseMetadata describes how a response was built.
type ResponseMetadata struct {
	RequestID string `json:"request_id"`
	Mode      Mode   `json:"mode"`
	ProfileID int64  `json:"profile_id,omitempty"`
	Limit     int    `json:"limit"`

	// SeenCount is the size of the seen snapshot used for exclusion.
	SeenCount int `json:"seen_count"`

	// StrategyCounts is the number of candidates each strategy returned.
	StrategyCounts map[string]int `json:"strategy_counts,omitempty"`

	// Backfilled is the number of items added by random backfill.
	Backfilled int `json:"backfilled"`

	// CategoryMean is the profile mean used by ForCategory.
	CategoryMean *float64 `json:"category_mean,omitempty"`

	LatencyMS int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats are cumulative engine counters.
type Stats struct {
	Requests   int64 `json:"requests"`
	Errors     int64 `json:"errors"`
	Backfilled int64 `json:"backfilled"`
	Strategies int   `json:"strategies"`
}
