// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

// Package audit records an audit trail of write requests.
//
// Every state-changing API call (catalog edits, watch, rating, favorite,
// maintenance) emits
// one Event carrying the route, the profile it touched, the response status
// and the request ID. Events are buffered in memory and flushed to a Store by
// the Logger's Serve loop so request latency never waits on audit writes.
//
// # Event Types
//
//   - watch.recorded: a watch event was recorded
//   - rating.set: a rating was set, liked or disliked
//   - favorite.added / favorite.removed
//   - maintenance.dedupe: a dedupe run was triggered through the API
//   - content.changed: a title was created, updated or deleted
//
// # Stores
//
//   - MemoryStore: bounded ring for development and tests
//   - SQLStore: the audit_events table on the application database (DuckDB or MySQL)
//
// # Usage
//
//	logger := audit.NewLogger(audit.NewSQLStore(db.Conn()), cfg)
//	r.With(logger.Middleware(audit.EventTypeWatchRecorded)).Post("/watch", h.RecordWatch)
package audit
