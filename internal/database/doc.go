// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

/*
Package database provides the relational store behind the catalog, viewing
activity, maintenance jobs and reports.

# Dialects

Two SQL dialects are supported and selected by config.DatabaseConfig.Driver:

  - duckdb (default): embedded, file backed or ":memory:" for tests
  - mysql: a shared server reached through a go-sql-driver DSN

Queries are written in the subset both engines accept. The few statements that
differ (identity columns, upserts, insert-or-ignore, checkpoints) go through the
dialect type in dialect.go.

# Tables

  - categories, content, content_categories: the catalog
  - profiles, episodes
  - watch_events, ratings, favorites: per-profile activity
  - audit_events: rows written by the audit package

Deletes of profiles and content cascade to dependent rows inside one
transaction so no activity row ever references a missing profile or title.

# Recommendation Store

DB implements recommend.Store. Every query returns rows in a deterministic
order (ties broken by id); random tie-breaking belongs to the engine's
seeded shuffler and never to SQL.

# Thread Safety

DB is safe for concurrent use. Write paths that can race (watch
get-or-create, favorites) run inside transactions and retry on DuckDB
transaction conflicts.
*/
package database
