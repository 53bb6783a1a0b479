// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

// Package models defines the catalog and activity records shared by the
// database, recommendation and API packages.
package models

import "time"

// ContentKind distinguishes multi-episode series from standalone movies.
type ContentKind string

const (
	KindSeries ContentKind = "series"
	KindMovie  ContentKind = "movie"
)

// Valid reports whether k is a known kind.
func (k ContentKind) Valid() bool {
	return k == KindSeries || k == KindMovie
}

// Audience is the profile type. Child profiles exist for parental separation.
type Audience string

const (
	AudienceAdult Audience = "adult"
	AudienceChild Audience = "child"
)

// Valid reports whether a is a known audience.
func (a Audience) Valid() bool {
	return a == AudienceAdult || a == AudienceChild
}

// Category is a genre tag. Names are unique.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Content is a catalog entry.
//
// AvgRating, RatingCount and WatchCount are derived from ratings and watch
// events at query time. AvgRating is nil when nobody has rated the content.
type Content struct {
	ID              int64       `json:"id"`
	Title           string      `json:"title"`
	Kind            ContentKind `json:"kind"`
	Description     string      `json:"description,omitempty"`
	Year            *int        `json:"year,omitempty"`
	DurationMinutes *int        `json:"duration_minutes,omitempty"`
	Language        string      `json:"language,omitempty"`
	Categories      []Category  `json:"categories,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`

	AvgRating   *float64 `json:"avg_rating,omitempty"`
	RatingCount int      `json:"rating_count"`
	WatchCount  int      `json:"watch_count"`
}

// Rated reports whether the content has at least one rating.
func (c *Content) Rated() bool {
	return c.AvgRating != nil
}

// HasCategory reports whether the content is tagged with categoryID.
func (c *Content) HasCategory(categoryID int64) bool {
	for _, cat := range c.Categories {
		if cat.ID == categoryID {
			return true
		}
	}
	return false
}

// Episode belongs to series content.
type Episode struct {
	ID              int64  `json:"id"`
	ContentID       int64  `json:"content_id"`
	Season          int    `json:"season"`
	Number          int    `json:"number"`
	Title           string `json:"title"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

// Profile is a viewing identity under an account.
type Profile struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	Name      string    `json:"name"`
	Audience  Audience  `json:"audience"`
	CreatedAt time.Time `json:"created_at"`
}
