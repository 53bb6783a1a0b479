// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

/*
Package api exposes the catalog, activity and recommendation operations over HTTP.

Routes are served by a chi router. Every JSON response uses the APIResponse
envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "profile not found"}, "meta": {...}}

Endpoint groups:

  - Recommendations: profile, category-scoped and content-similarity lists
  - Activity: watch events, ratings (set, like, dislike) and favorites
  - Catalog: categories, content and profiles (read only)
  - Maintenance: watch event dedupe and the recommendation activity report
  - Audit: the write audit trail
  - Health and Prometheus metrics

Middleware stack (outermost first): request ID, real IP, panic recovery,
CORS, Prometheus metrics, performance monitor, httprate limiting. Write routes
are additionally wrapped by the audit middleware; maintenance routes have a
per-client token bucket on top.

A missing profile is reported as 404 before the engine is invoked. Request
bodies are decoded with goccy/go-json and validated with go-playground/validator.
*/
package api
