// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

/*
Package middleware provides HTTP middleware for the API router.

Key Components:

  - RequestID: honours or generates X-Request-ID and threads it into the logging context
  - PrometheusMetrics: request counts, latency and in-flight gauge labelled by chi route pattern
  - PerformanceMonitor: rolling latency window per route with percentile summaries and slow request logging

All middleware use the standard func(http.Handler) http.Handler shape so they
compose with chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(perfMon.Middleware)

Labels use the matched route pattern ("/api/v1/profiles/{profileID}/recommendations")
rather than the raw path so metric cardinality stays bounded.
*/
package middleware
