// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

// Package recommend produces content recommendations for viewing profiles.
//
// # Profile recommendations
//
// Engine.Recommend blends registered strategies. Each strategy receives a
// target of limit/divisor items (history 2, rating 3, category frequency 4,
// popularity 5 for the default set in package strategies) and returns unseen
// content. The engine then
//
//  1. concatenates strategy output in registration order
//  2. drops seen content and duplicate ids (first occurrence wins)
//  3. shuffles the pool and truncates it to the limit
//  4. backfills from random unseen catalog content when short
//
// A profile without any activity is served by the popularity strategy and
// backfill alone. An empty catalog yields an empty list.
//
// # Seen snapshot
//
// Watched, rated and favorited content ids are read once per call into a
// SeenSet and shared by every strategy and the backfill step, so concurrent
// writes cannot produce inconsistent exclusion within one response.
//
// # Randomness
//
// Random tie-breaks never use the database. Candidates are shuffled with the
// engine's Shuffler and then stable-sorted by their ranking keys, so a fixed
// Config.Seed makes every response reproducible.
//
// # Related operations
//
// Engine.Similar ranks content sharing categories with a given item.
// Engine.ForCategory ranks unseen content inside one category and demotes
// items rated well below the profile's own mean for that category.
package recommend
