// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/sugoi/internal/audit"
)

// AuditEvents handles GET /api/v1/audit/events
// Filters: type (comma separated), outcome, profile_id, request_id,
// since/until (RFC3339), limit, offset.
func (h *Handler) AuditEvents(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.auditLog == nil {
		rw.ServiceUnavailable("audit logging is disabled")
		return
	}

	filter, err := parseAuditFilter(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	events, err := h.auditLog.Query(r.Context(), filter)
	if err != nil {
		writeError(rw, err)
		return
	}
	countFilter := filter
	countFilter.Limit, countFilter.Offset = 0, 0
	total, err := h.auditLog.Count(r.Context(), countFilter)
	if err != nil {
		writeError(rw, err)
		return
	}

	rw.SuccessWithPagination(nonNil(events), &PaginationMeta{
		Total:   total,
		Count:   len(events),
		Offset:  filter.Offset,
		Limit:   filter.Limit,
		HasMore: int64(filter.Offset+len(events)) < total,
	})
}

// AuditEvent handles GET /api/v1/audit/events/{eventID}
func (h *Handler) AuditEvent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.auditLog == nil {
		rw.ServiceUnavailable("audit logging is disabled")
		return
	}

	event, err := h.auditLog.Get(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		if errors.Is(err, audit.ErrEventNotFound) {
			rw.NotFound("audit event not found")
			return
		}
		writeError(rw, err)
		return
	}
	rw.Success(event)
}
