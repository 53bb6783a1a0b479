// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

// Package recommendtest provides an in-memory recommend.Store for tests.
package recommendtest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/sugoi/internal/models"
	"github.com/tomtom215/sugoi/internal/recommend"
)

// Store is a recommend.Store backed by slices. The zero value is not usable;
// call NewStore. Err, when set, is returned by every query.
type Store struct {
	mu sync.RWMutex

	profiles   map[int64]models.Profile
	categories map[int64]models.Category
	content    map[int64]models.Content
	tags       map[int64][]int64 // content id -> category ids
	watches    []models.WatchEvent
	ratings    map[[2]int64]models.Rating
	favorites  map[[2]int64]models.Favorite

	Err error

	// SeenCalls counts SeenContentIDs invocations.
	SeenCalls int
}

var _ recommend.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		profiles:   make(map[int64]models.Profile),
		categories: make(map[int64]models.Category),
		content:    make(map[int64]models.Content),
		tags:       make(map[int64][]int64),
		ratings:    make(map[[2]int64]models.Rating),
		favorites:  make(map[[2]int64]models.Favorite),
	}
}

// AddProfile registers a profile id.
func (s *Store) AddProfile(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[id] = models.Profile{ID: id, Name: fmt.Sprintf("profile-%d", id), Audience: models.AudienceAdult}
}

// AddCategory registers a category.
func (s *Store) AddCategory(id int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[id] = models.Category{ID: id, Name: name}
}

// AddContent registers content tagged with categoryIDs. year may be 0 for unknown.
func (s *Store) AddContent(id int64, title string, year int, categoryIDs ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := models.Content{ID: id, Title: title, Kind: models.KindSeries}
	if year > 0 {
		y := year
		c.Year = &y
	}
	s.content[id] = c
	s.tags[id] = append([]int64(nil), categoryIDs...)
}

// Watch records a watch event.
func (s *Store) Watch(profileID, contentID int64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watches = append(s.watches, models.WatchEvent{
		ID: int64(len(s.watches) + 1), ProfileID: profileID, ContentID: contentID, WatchedAt: at,
	})
}

// Rate upserts a rating.
func (s *Store) Rate(profileID, contentID int64, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings[[2]int64{profileID, contentID}] = models.Rating{ProfileID: profileID, ContentID: contentID, Score: score}
}

// Favorite adds a favorite.
func (s *Store) Favorite(profileID, contentID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorites[[2]int64{profileID, contentID}] = models.Favorite{ProfileID: profileID, ContentID: contentID}
}

func (s *Store) SeenContentIDs(_ context.Context, profileID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SeenCalls++
	if s.Err != nil {
		return nil, s.Err
	}

	set := make(map[int64]struct{})
	for _, w := range s.watches {
		if w.ProfileID == profileID {
			set[w.ContentID] = struct{}{}
		}
	}
	for k := range s.ratings {
		if k[0] == profileID {
			set[k[1]] = struct{}{}
		}
	}
	for k := range s.favorites {
		if k[0] == profileID {
			set[k[1]] = struct{}{}
		}
	}
	return sortedIDs(set), nil
}

func (s *Store) WatchedCategoryIDs(_ context.Context, profileID int64, limit int) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	counts := make(map[int64]float64)
	for _, w := range s.watches {
		if w.ProfileID != profileID {
			continue
		}
		for _, cat := range s.tags[w.ContentID] {
			counts[cat]++
		}
	}
	return topKeys(counts, limit), nil
}

func (s *Store) FavoriteCategoryIDs(_ context.Context, profileID int64, limit int) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	set := make(map[int64]struct{})
	for k := range s.favorites {
		if k[0] != profileID {
			continue
		}
		for _, cat := range s.tags[k[1]] {
			set[cat] = struct{}{}
		}
	}
	ids := sortedIDs(set)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (s *Store) RatedCategoryIDs(_ context.Context, profileID int64, minScore, limit int) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	sums := make(map[int64]float64)
	counts := make(map[int64]float64)
	for k, r := range s.ratings {
		if k[0] != profileID || r.Score < minScore {
			continue
		}
		for _, cat := range s.tags[k[1]] {
			sums[cat] += float64(r.Score)
			counts[cat]++
		}
	}
	avgs := make(map[int64]float64, len(sums))
	for cat, sum := range sums {
		avgs[cat] = sum / counts[cat]
	}
	return topKeys(avgs, limit), nil
}

func (s *Store) FrequentCategoryIDs(_ context.Context, profileID int64, limit int) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	counts := make(map[int64]float64)
	for _, w := range s.watches {
		if w.ProfileID == profileID {
			for _, cat := range s.tags[w.ContentID] {
				counts[cat]++
			}
		}
	}
	for k := range s.favorites {
		if k[0] == profileID {
			for _, cat := range s.tags[k[1]] {
				counts[cat]++
			}
		}
	}
	return topKeys(counts, limit), nil
}

func (s *Store) CategoryMeanRating(_ context.Context, profileID, categoryID int64) (*float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	var sum, n float64
	for k, r := range s.ratings {
		if k[0] == profileID && contains(s.tags[k[1]], categoryID) {
			sum += float64(r.Score)
			n++
		}
	}
	if n == 0 {
		return nil, nil
	}
	mean := sum / n
	return &mean, nil
}

func (s *Store) ContentInCategories(_ context.Context, categoryIDs []int64) ([]models.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	var out []models.Content
	for _, id := range s.contentIDs() {
		for _, cat := range categoryIDs {
			if contains(s.tags[id], cat) {
				out = append(out, s.hydrate(id))
				break
			}
		}
	}
	return out, nil
}

func (s *Store) PopularContent(_ context.Context, since time.Time) ([]recommend.PopularItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	recent := make(map[int64]int)
	for _, w := range s.watches {
		if !w.WatchedAt.Before(since) {
			recent[w.ContentID]++
		}
	}

	var out []recommend.PopularItem
	for _, id := range s.contentIDs() {
		c := s.hydrate(id)
		if c.WatchCount == 0 {
			continue
		}
		out = append(out, recommend.PopularItem{Content: c, RecentWatches: recent[id]})
	}
	return out, nil
}

func (s *Store) CatalogContent(_ context.Context) ([]models.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	ids := s.contentIDs()
	out := make([]models.Content, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, s.hydrate(ids[i]))
	}
	return out, nil
}

func (s *Store) ContentByID(_ context.Context, contentID int64) (*models.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if _, ok := s.content[contentID]; !ok {
		return nil, fmt.Errorf("content %d: %w", contentID, models.ErrNotFound)
	}
	c := s.hydrate(contentID)
	return &c, nil
}

func (s *Store) CategoryByID(_ context.Context, categoryID int64) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	c, ok := s.categories[categoryID]
	if !ok {
		return nil, fmt.Errorf("category %d: %w", categoryID, models.ErrNotFound)
	}
	return &c, nil
}

func (s *Store) ProfileExists(_ context.Context, profileID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return false, s.Err
	}
	_, ok := s.profiles[profileID]
	return ok, nil
}

// hydrate fills categories and derived statistics. Caller holds mu.
func (s *Store) hydrate(id int64) models.Content {
	c := s.content[id]
	c.Categories = nil
	for _, cat := range s.tags[id] {
		if known, ok := s.categories[cat]; ok {
			c.Categories = append(c.Categories, known)
		} else {
			c.Categories = append(c.Categories, models.Category{ID: cat})
		}
	}

	var sum float64
	c.RatingCount = 0
	for k, r := range s.ratings {
		if k[1] == id {
			sum += float64(r.Score)
			c.RatingCount++
		}
	}
	if c.RatingCount > 0 {
		avg := sum / float64(c.RatingCount)
		c.AvgRating = &avg
	}

	c.WatchCount = 0
	for _, w := range s.watches {
		if w.ContentID == id {
			c.WatchCount++
		}
	}
	return c
}

func (s *Store) contentIDs() []int64 {
	set := make(map[int64]struct{}, len(s.content))
	for id := range s.content {
		set[id] = struct{}{}
	}
	return sortedIDs(set)
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// topKeys orders keys by value descending, then id ascending.
func topKeys(values map[int64]float64, limit int) []int64 {
	ids := make([]int64, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if values[ids[i]] != values[ids[j]] {
			return values[ids[i]] > values[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
