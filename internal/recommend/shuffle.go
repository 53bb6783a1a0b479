// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package recommend

import (
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/tomtom215/sugoi/internal/models"
)

// Shuffler is the single random source for tie-breaking. Safe for concurrent use.
type Shuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewShuffler returns a Shuffler seeded with seed, or with the clock when seed is 0.
func NewShuffler(seed int64) *Shuffler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Shuffler{
		rng: rand.New(rand.NewSource(seed)), //nolint:gosec // tie-breaking, not security
	}
}

// Shuffle permutes n elements through swap, like rand.Shuffle.
func (s *Shuffler) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(n, swap)
}

// ShuffleSlice permutes items in place using s.
func ShuffleSlice[T any](s *Shuffler, items []T) {
	s.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

// Rank shuffles items and then stable-sorts them with cmp, so equal keys
// end up in random order.
func (s *Shuffler) Rank(items []models.Content, cmp func(a, b models.Content) int) {
	ShuffleSlice(s, items)
	if cmp != nil {
		slices.SortStableFunc(items, cmp)
	}
}
