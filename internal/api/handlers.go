// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/sugoi/internal/audit"
	"github.com/tomtom215/sugoi/internal/database"
	"github.com/tomtom215/sugoi/internal/middleware"
	"github.com/tomtom215/sugoi/internal/recommend"
)

// defaultRecommendTimeout bounds engine calls when no timeout is configured.
const defaultRecommendTimeout = 10 * time.Second

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_recommend.go: recommendation endpoints
//   - handlers_activity.go: watch, rating and favorite writes
//   - handlers_catalog.go: read-only catalog endpoints
//   - handlers_maintenance.go: dedupe, report and performance
//   - handlers_audit.go: audit trail queries
//   - handlers_health.go: health check
type Handler struct {
	db               *database.DB
	engine           *recommend.Engine
	auditLog         *audit.Logger
	perfMon          *middleware.PerformanceMonitor
	recommendTimeout time.Duration
	startTime        time.Time
}

// HandlerOptions carries the optional collaborators of a Handler.
type HandlerOptions struct {
	// AuditLog receives write events; nil disables the audit endpoints.
	AuditLog *audit.Logger

	// PerfMon backs the performance endpoint; nil disables it.
	PerfMon *middleware.PerformanceMonitor

	// RecommendTimeout bounds each engine call.
	RecommendTimeout time.Duration
}

// NewHandler creates a new API handler.
func NewHandler(db *database.DB, engine *recommend.Engine, opts HandlerOptions) *Handler {
	timeout := opts.RecommendTimeout
	if timeout <= 0 {
		timeout = defaultRecommendTimeout
	}
	return &Handler{
		db:               db,
		engine:           engine,
		auditLog:         opts.AuditLog,
		perfMon:          opts.PerfMon,
		recommendTimeout: timeout,
		startTime:        time.Now(),
	}
}

// requireProfile parses {profileID} and writes 400/404 when it is unusable.
func (h *Handler) requireProfile(rw *ResponseWriter, r *http.Request) (int64, bool) {
	profileID, err := pathID(r, "profileID")
	if err != nil {
		rw.BadRequest(err.Error())
		return 0, false
	}
	if err := h.engine.CheckProfile(r.Context(), profileID); err != nil {
		writeError(rw, err)
		return 0, false
	}
	return profileID, true
}

// requirePathID parses a positive path parameter and writes 400 on failure.
func requirePathID(rw *ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := pathID(r, name)
	if err != nil {
		rw.BadRequest(err.Error())
		return 0, false
	}
	return id, true
}

// engineContext bounds a recommendation call.
func (h *Handler) engineContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.recommendTimeout)
}
