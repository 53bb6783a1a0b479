// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package models

import "time"

// Rating scores. The UI exposes like/dislike buttons that store the extremes.
const (
	ScoreMin     = 1
	ScoreMax     = 5
	ScoreDislike = ScoreMin
	ScoreLike    = ScoreMax
	ScoreNeutral = 3
)

// ValidScore reports whether score is within 1..5.
func ValidScore(score int) bool {
	return score >= ScoreMin && score <= ScoreMax
}

// WatchEvent records that a profile watched (part of) a piece of content.
// At most one row should exist per (profile, content, episode); the dedupe
// maintenance pass removes extras created by concurrent requests.
type WatchEvent struct {
	ID             int64     `json:"id"`
	ProfileID      int64     `json:"profile_id"`
	ContentID      int64     `json:"content_id"`
	EpisodeID      *int64    `json:"episode_id,omitempty"`
	WatchedSeconds int       `json:"watched_seconds"`
	WatchedAt      time.Time `json:"watched_at"`
}

// Rating is unique per (profile, content).
type Rating struct {
	ProfileID int64     `json:"profile_id"`
	ContentID int64     `json:"content_id"`
	Score     int       `json:"score"`
	RatedAt   time.Time `json:"rated_at"`
}

// IsLike reports a positive rating (4 or 5).
func (r Rating) IsLike() bool {
	return r.Score >= 4
}

// IsDislike reports a negative rating (1 or 2).
func (r Rating) IsDislike() bool {
	return r.Score <= 2
}

// Favorite is unique per (profile, content).
type Favorite struct {
	ProfileID int64     `json:"profile_id"`
	ContentID int64     `json:"content_id"`
	AddedAt   time.Time `json:"added_at"`
}

// DedupeResult summarizes one watch-event dedupe pass.
type DedupeResult struct {
	Groups    int       `json:"groups"`    // (profile, content, episode) keys that had duplicates
	Removed   int       `json:"removed"`   // rows deleted
	Remaining int       `json:"remaining"` // watch events left afterwards
	RanAt     time.Time `json:"ran_at"`
}
