// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package audit

import (
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tomtom215/sugoi/internal/logging"
)

// Middleware records one event of the given type for every request that
// passes through it. Mount it on individual write routes.
func (l *Logger) Middleware(eventType EventType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			event := &Event{
				Type:       eventType,
				Outcome:    OutcomeForStatus(status),
				Action:     routeAction(r),
				Resource:   r.URL.Path,
				Method:     r.Method,
				Path:       r.URL.Path,
				Status:     status,
				RemoteAddr: remoteHost(r.RemoteAddr),
				RequestID:  logging.RequestIDFromContext(r.Context()),
			}
			if id, err := strconv.ParseInt(chi.URLParam(r, "profileID"), 10, 64); err == nil {
				event.ProfileID = &id
			}
			if contentID := chi.URLParam(r, "contentID"); contentID != "" {
				event.Metadata = map[string]string{"content_id": contentID}
			}

			l.Log(event)
		})
	}
}

// routeAction returns "METHOD pattern", falling back to the raw path when
// the request was not routed by chi.
func routeAction(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return r.Method + " " + pattern
		}
	}
	return r.Method + " " + r.URL.Path
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
