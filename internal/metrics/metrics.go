// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sugoi_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sugoi_db_query_errors_total",
			Help: "Total number of database query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sugoi_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sugoi_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sugoi_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Recommendation Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sugoi_recommendation_requests_total",
			Help: "Total number of recommendation requests by mode",
		},
		[]string{"mode"},
	)

	RecommendationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sugoi_recommendation_errors_total",
			Help: "Total number of failed recommendation requests by mode",
		},
		[]string{"mode"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sugoi_recommendation_duration_seconds",
			Help:    "Time spent producing a recommendation list",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"mode"},
	)

	RecommendationStrategyItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sugoi_recommendation_strategy_items_total",
			Help: "Candidates contributed by each strategy before merge",
		},
		[]string{"strategy"},
	)

	RecommendationBackfillItems = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sugoi_recommendation_backfill_items_total",
			Help: "Items added from the catalog to fill short recommendation lists",
		},
	)

	// Maintenance Metrics
	DedupeRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sugoi_dedupe_runs_total",
			Help: "Watch-event dedupe runs by result",
		},
		[]string{"result"}, // "success", "error"
	)

	DedupeRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sugoi_dedupe_removed_total",
			Help: "Duplicate watch events removed by dedupe runs",
		},
	)

	// Audit Metrics
	AuditEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sugoi_audit_events_total",
			Help: "Audit events accepted by type",
		},
		[]string{"type"},
	)

	AuditEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sugoi_audit_events_dropped_total",
			Help: "Audit events dropped because the buffer was full",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, ErrorType(err)).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records the outcome of one recommendation request.
// strategyCounts may be nil for modes that do not run strategies.
func RecordRecommendation(mode string, duration time.Duration, strategyCounts map[string]int, backfilled int, err error) {
	RecommendationRequests.WithLabelValues(mode).Inc()
	RecommendationDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if err != nil {
		RecommendationErrors.WithLabelValues(mode).Inc()
		return
	}
	for name, n := range strategyCounts {
		RecommendationStrategyItems.WithLabelValues(name).Add(float64(n))
	}
	if backfilled > 0 {
		RecommendationBackfillItems.Add(float64(backfilled))
	}
}

// RecordDedupe records one watch-event dedupe run
func RecordDedupe(removed int, err error) {
	if err != nil {
		DedupeRuns.WithLabelValues("error").Inc()
		return
	}
	DedupeRuns.WithLabelValues("success").Inc()
	DedupeRemoved.Add(float64(removed))
}

// RecordAuditEvent counts an accepted audit event
func RecordAuditEvent(eventType string) {
	AuditEvents.WithLabelValues(eventType).Inc()
}

// RecordAuditDropped counts an audit event lost to a full buffer
func RecordAuditDropped() {
	AuditEventsDropped.Inc()
}

// ErrorType maps an error to a low-cardinality label value.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
