// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package recommend

import (
	"cmp"

	"github.com/tomtom215/sugoi/internal/models"
)

// Comparators for Shuffler.Rank. Each sorts the "better" item first.
// Missing values (unrated, unknown year) sort after present ones.

// ByAvgRating orders by average rating, highest first.
func ByAvgRating(a, b models.Content) int {
	return compareOptionalDesc(a.AvgRating, b.AvgRating)
}

// ByRatingCount orders by number of ratings, most first.
func ByRatingCount(a, b models.Content) int {
	return cmp.Compare(b.RatingCount, a.RatingCount)
}

// ByWatchCount orders by all-time watch count, most first.
func ByWatchCount(a, b models.Content) int {
	return cmp.Compare(b.WatchCount, a.WatchCount)
}

// ByYear orders by release year, newest first.
func ByYear(a, b models.Content) int {
	return compareOptionalDesc(a.Year, b.Year)
}

// Then chains comparators; the first non-zero result wins.
func Then(cmps ...func(a, b models.Content) int) func(a, b models.Content) int {
	return func(a, b models.Content) int {
		for _, c := range cmps {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

func compareOptionalDesc[T cmp.Ordered](a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*b, *a)
	}
}
