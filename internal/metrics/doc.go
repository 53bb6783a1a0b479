// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Database:
  - sugoi_db_query_duration_seconds{operation,table}
  - sugoi_db_query_errors_total{operation,table,error_type}

HTTP API:
  - sugoi_api_requests_total{method,endpoint,status}
  - sugoi_api_request_duration_seconds{method,endpoint}
  - sugoi_api_active_requests

Recommendations:
  - sugoi_recommendation_requests_total{mode}
  - sugoi_recommendation_errors_total{mode}
  - sugoi_recommendation_duration_seconds{mode}
  - sugoi_recommendation_strategy_items_total{strategy}
  - sugoi_recommendation_backfill_items_total

Maintenance and audit:
  - sugoi_dedupe_runs_total{result}
  - sugoi_dedupe_removed_total
  - sugoi_audit_events_total{type}
  - sugoi_audit_events_dropped_total

Endpoint labels use the chi route pattern, never the raw path, so profile and
content IDs do not explode label cardinality.
*/
package metrics
