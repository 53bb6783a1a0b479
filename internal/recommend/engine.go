// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sugoi/internal/models"
)

// Engine blends strategies into recommendations. It holds no per-profile
// state between calls and is safe for concurrent use.
type Engine struct {
	config   *Config
	store    Store
	logger   zerolog.Logger
	shuffler *Shuffler
	now      func() time.Time

	strategies []Strategy
	strategyMu sync.RWMutex

	requestCount    atomic.Int64
	errorCount      atomic.Int64
	backfilledCount atomic.Int64
}

// NewEngine creates an engine over store. Strategies are added with
// RegisterStrategy; without any, Recommend is served by backfill alone.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, store Store, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}

	return &Engine{
		config:   cfg.Clone(),
		store:    store,
		logger:   logger.With().Str("component", "recommend").Logger(),
		shuffler: NewShuffler(cfg.Seed),
		now:      time.Now,
	}, nil
}

// RegisterStrategy appends a strategy. Registration order is merge order.
func (e *Engine) RegisterStrategy(s Strategy) {
	e.strategyMu.Lock()
	defer e.strategyMu.Unlock()

	e.strategies = append(e.strategies, s)
	e.logger.Info().
		Str("strategy", s.Name()).
		Int("divisor", s.Divisor()).
		Msg("registered strategy")
}

// Strategies returns the registered strategy names.
func (e *Engine) Strategies() []string {
	e.strategyMu.RLock()
	defer e.strategyMu.RUnlock()

	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name()
	}
	return names
}

// Stats returns cumulative counters.
func (e *Engine) Stats() Stats {
	e.strategyMu.RLock()
	n := len(e.strategies)
	e.strategyMu.RUnlock()

	return Stats{
		Requests:   e.requestCount.Load(),
		Errors:     e.errorCount.Load(),
		Backfilled: e.backfilledCount.Load(),
		Strategies: n,
	}
}

// CheckProfile returns ErrProfileNotFound when the profile does not exist.
// Callers run it before Recommend or ForCategory.
func (e *Engine) CheckProfile(ctx context.Context, profileID int64) error {
	if profileID <= 0 {
		return fmt.Errorf("%w: profile id %d", ErrInvalidRequest, profileID)
	}
	ok, err := e.store.ProfileExists(ctx, profileID)
	if err != nil {
		return fmt.Errorf("check profile: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %d", ErrProfileNotFound, profileID)
	}
	return nil
}

// Recommend returns up to req.Limit unseen content items for the profile.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	if req.ProfileID <= 0 {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("%w: profile id %d", ErrInvalidRequest, req.ProfileID)
	}
	req.RequestID = requestID(req.RequestID)
	req.Limit = e.clampLimit(req.Limit, e.config.Limits.DefaultLimit)

	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Int64("profile_id", req.ProfileID).
		Int("limit", req.Limit).
		Logger()

	seen, err := e.seenSnapshot(ctx, req.ProfileID)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	q := Query{
		ProfileID: req.ProfileID,
		Seen:      seen,
		Shuffler:  e.shuffler,
		Now:       e.now(),
	}

	merged, counts, err := e.runStrategies(ctx, q, req.Limit)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	// Strategies already exclude seen content; filtering again keeps a
	// misbehaving strategy from leaking it.
	pool := dedupe(merged, seen)
	ShuffleSlice(e.shuffler, pool)
	if len(pool) > req.Limit {
		pool = pool[:req.Limit]
	}

	backfilled := 0
	if len(pool) < req.Limit {
		pool, backfilled, err = e.backfill(ctx, pool, seen, req.Limit)
		if err != nil {
			e.errorCount.Add(1)
			return nil, err
		}
		if backfilled > 0 {
			ShuffleSlice(e.shuffler, pool)
		}
	}
	e.backfilledCount.Add(int64(backfilled))
	assignRanks(pool)

	resp := &Response{
		Items: pool,
		Metadata: ResponseMetadata{
			RequestID:      req.RequestID,
			Mode:           ModeProfile,
			ProfileID:      req.ProfileID,
			Limit:          req.Limit,
			SeenCount:      len(seen),
			StrategyCounts: counts,
			Backfilled:     backfilled,
			LatencyMS:      time.Since(start).Milliseconds(),
			Timestamp:      e.now(),
		},
	}

	logger.Debug().
		Int("seen", len(seen)).
		Int("candidates", len(merged)).
		Int("returned", len(pool)).
		Int("backfilled", backfilled).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// runStrategies executes strategies sequentially and concatenates their
// output in registration order.
func (e *Engine) runStrategies(ctx context.Context, q Query, limit int) ([]ScoredItem, map[string]int, error) {
	e.strategyMu.RLock()
	strategies := make([]Strategy, len(e.strategies))
	copy(strategies, e.strategies)
	e.strategyMu.RUnlock()

	counts := make(map[string]int, len(strategies))
	var merged []ScoredItem

	for _, s := range strategies {
		q.Target = Target(limit, s.Divisor())
		if q.Target == 0 {
			counts[s.Name()] = 0
			continue
		}

		items, err := s.Candidates(ctx, q)
		if err != nil {
			return nil, nil, fmt.Errorf("strategy %s: %w", s.Name(), err)
		}
		items = Take(items, q.Target)
		counts[s.Name()] = len(items)

		for i := range items {
			merged = append(merged, ScoredItem{Content: items[i], Source: s.Name()})
		}
	}
	return merged, counts, nil
}

// backfill tops pool up to limit with random unseen catalog content.
func (e *Engine) backfill(ctx context.Context, pool []ScoredItem, seen SeenSet, limit int) ([]ScoredItem, int, error) {
	catalog, err := e.store.CatalogContent(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("backfill catalog: %w", err)
	}

	selected := make(map[int64]struct{}, len(pool))
	for i := range pool {
		selected[pool[i].Content.ID] = struct{}{}
	}

	extra := seen.Unseen(catalog, selected)
	ShuffleSlice(e.shuffler, extra)
	extra = Take(extra, limit-len(pool))

	for i := range extra {
		pool = append(pool, ScoredItem{Content: extra[i], Source: SourceBackfill})
	}
	return pool, len(extra), nil
}

func (e *Engine) seenSnapshot(ctx context.Context, profileID int64) (SeenSet, error) {
	ids, err := e.store.SeenContentIDs(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("load seen content: %w", err)
	}
	return NewSeenSet(ids), nil
}

func (e *Engine) clampLimit(limit, def int) int {
	if limit <= 0 {
		limit = def
	}
	if limit > e.config.Limits.MaxLimit {
		limit = e.config.Limits.MaxLimit
	}
	return limit
}

// dedupe drops seen items and repeated ids, keeping the first occurrence.
func dedupe(items []ScoredItem, seen SeenSet) []ScoredItem {
	out := make([]ScoredItem, 0, len(items))
	kept := make(map[int64]struct{}, len(items))
	for i := range items {
		id := items[i].Content.ID
		if seen.Contains(id) {
			continue
		}
		if _, dup := kept[id]; dup {
			continue
		}
		kept[id] = struct{}{}
		out = append(out, items[i])
	}
	return out
}

func assignRanks(items []ScoredItem) {
	for i := range items {
		items[i].Rank = i + 1
	}
}

func requestID(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}

// notFound maps a store's models.ErrNotFound onto the engine sentinel.
func notFound(err, sentinel error, id int64) error {
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%w: %d", sentinel, id)
	}
	return err
}
