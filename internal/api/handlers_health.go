// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status            string  `json:"status"`
	DatabaseDriver    string  `json:"database_driver"`
	DatabaseConnected bool    `json:"database_connected"`
	Strategies        int     `json:"strategies"`
	AuditPending      int     `json:"audit_pending"`
	Uptime            float64 `json:"uptime_seconds"`
}

// Health handles GET /health
// Responds 503 with the same body when the database is unreachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	health := HealthStatus{
		Status:            "healthy",
		DatabaseDriver:    h.db.Driver(),
		DatabaseConnected: h.db.Ping(ctx) == nil,
		Strategies:        len(h.engine.Strategies()),
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if h.auditLog != nil {
		health.AuditPending = h.auditLog.Pending()
	}

	if !health.DatabaseConnected {
		health.Status = "degraded"
		rw.writeJSON(http.StatusServiceUnavailable, APIResponse{Success: false, Data: health, Meta: rw.meta(nil)})
		return
	}
	rw.Success(health)
}

// HealthLive handles GET /health/live. It never touches dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}
