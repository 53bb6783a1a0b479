// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/sugoi/internal/database"
	"github.com/tomtom215/sugoi/internal/logging"
	"github.com/tomtom215/sugoi/internal/metrics"
	"github.com/tomtom215/sugoi/internal/middleware"
	"github.com/tomtom215/sugoi/internal/recommend"
	"github.com/tomtom215/sugoi/internal/validation"
)

// PerformanceReport combines request latency and engine counters.
type PerformanceReport struct {
	Endpoints  []middleware.EndpointStats `json:"endpoints"`
	Engine     recommend.Stats            `json:"engine"`
	Strategies []string                   `json:"strategies"`
	UptimeSec  float64                    `json:"uptime_seconds"`
}

// Dedupe handles POST /api/v1/maintenance/dedupe
//
// @Summary Remove duplicate watch events
// @Description Keeps the earliest watch event per (profile, content, episode) and deletes the rest.
// @Tags Maintenance
// @Produce json
// @Success 200 {object} APIResponse{data=models.DedupeResult}
// @Router /api/v1/maintenance/dedupe [post]
func (h *Handler) Dedupe(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	result, err := h.db.DedupeWatchEvents(r.Context())
	if err != nil {
		metrics.RecordDedupe(0, err)
		writeError(rw, err)
		return
	}
	metrics.RecordDedupe(result.Removed, nil)

	logging.Ctx(r.Context()).Info().
		Int("groups", result.Groups).
		Int("removed", result.Removed).
		Msg("Dedupe triggered via API")
	rw.Success(result)
}

// Report handles GET /api/v1/reports/recommendations?top=&format=json|csv
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	top, err := getIntParam(r, "top", database.DefaultReportTopN)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	params := ReportParams{Top: top, Format: r.URL.Query().Get("format")}
	if params.Format == "" {
		params.Format = "json"
	}
	if verr := validation.ValidateStruct(&params); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	report, err := h.db.BuildReport(r.Context(), params.Top)
	if err != nil {
		writeError(rw, err)
		return
	}

	if params.Format == "json" {
		rw.Success(report)
		return
	}

	var buf bytes.Buffer
	if err := database.WriteReportCSV(&buf, report); err != nil {
		rw.InternalError("failed to render report")
		return
	}
	filename := fmt.Sprintf("sugoi-report-%s.csv", report.GeneratedAt.UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to write CSV report")
	}
}

// Performance handles GET /api/v1/maintenance/performance
func (h *Handler) Performance(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	report := PerformanceReport{
		Endpoints:  []middleware.EndpointStats{},
		Engine:     h.engine.Stats(),
		Strategies: h.engine.Strategies(),
		UptimeSec:  time.Since(h.startTime).Seconds(),
	}
	if h.perfMon != nil {
		report.Endpoints = h.perfMon.GetStats()
	}
	rw.Success(report)
}
