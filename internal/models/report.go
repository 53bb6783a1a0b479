// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package models

import "time"

// Report is the recommendation-system health report.
type Report struct {
	GeneratedAt   time.Time         `json:"generated_at"`
	Totals        ReportTotals      `json:"totals"`
	Ratings       RatingBreakdown   `json:"ratings"`
	TopProfiles   []RankedProfile   `json:"top_profiles"`
	TopContent    []RankedContent   `json:"top_content"`
	TopCategories []RankedCategory  `json:"top_categories"`
	Status        []ComponentStatus `json:"status"`
}

// ReportTotals counts rows per table.
type ReportTotals struct {
	Profiles    int `json:"profiles"`
	Content     int `json:"content"`
	Categories  int `json:"categories"`
	WatchEvents int `json:"watch_events"`
	Ratings     int `json:"ratings"`
	Favorites   int `json:"favorites"`
}

// RatingBreakdown splits ratings into likes (>=4), dislikes (<=2) and neutral (3).
type RatingBreakdown struct {
	Likes    int      `json:"likes"`
	Dislikes int      `json:"dislikes"`
	Neutral  int      `json:"neutral"`
	Average  *float64 `json:"average,omitempty"`
}

// RankedProfile is a profile ordered by total interactions.
type RankedProfile struct {
	ProfileID    int64  `json:"profile_id"`
	Name         string `json:"name"`
	Watches      int    `json:"watches"`
	Ratings      int    `json:"ratings"`
	Favorites    int    `json:"favorites"`
	Interactions int    `json:"interactions"`
}

// RankedContent is content ordered by total interactions.
type RankedContent struct {
	ContentID    int64    `json:"content_id"`
	Title        string   `json:"title"`
	Watches      int      `json:"watches"`
	Ratings      int      `json:"ratings"`
	Favorites    int      `json:"favorites"`
	Interactions int      `json:"interactions"`
	AvgRating    *float64 `json:"avg_rating,omitempty"`
}

// RankedCategory is a category ordered by interactions on its content.
type RankedCategory struct {
	CategoryID   int64  `json:"category_id"`
	Name         string `json:"name"`
	Content      int    `json:"content"`
	Interactions int    `json:"interactions"`
}

// ComponentStatus is one line of the system status section.
type ComponentStatus struct {
	Component string `json:"component"`
	OK        bool   `json:"ok"`
	Detail    string `json:"detail"`
}
