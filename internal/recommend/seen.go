// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package recommend

import "github.com/tomtom215/sugoi/internal/models"

// SeenSet is a snapshot of content ids a profile has interacted with.
// A nil SeenSet contains nothing.
type SeenSet map[int64]struct{}

// NewSeenSet builds a set from ids.
func NewSeenSet(ids []int64) SeenSet {
	s := make(SeenSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id was seen.
func (s SeenSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// Unseen returns items that are neither seen nor in exclude, preserving order.
func (s SeenSet) Unseen(items []models.Content, exclude map[int64]struct{}) []models.Content {
	out := make([]models.Content, 0, len(items))
	for i := range items {
		id := items[i].ID
		if s.Contains(id) {
			continue
		}
		if _, skip := exclude[id]; skip {
			continue
		}
		out = append(out, items[i])
	}
	return out
}
