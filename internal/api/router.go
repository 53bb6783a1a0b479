// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/sugoi/internal/audit"
	"github.com/tomtom215/sugoi/internal/config"
	"github.com/tomtom215/sugoi/internal/middleware"
)

// RouterConfig holds CORS and rate limiting settings.
type RouterConfig struct {
	CORSAllowedOrigins []string
	CORSMaxAge         int // seconds

	// RateLimitRequests per RateLimitWindow per client IP; 0 disables.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// MaintenanceRatePerMinute caps dedupe and report calls; 0 disables.
	MaintenanceRatePerMinute float64
}

// RouterConfigFrom maps the security section of the application config.
func RouterConfigFrom(sec config.SecurityConfig) RouterConfig {
	return RouterConfig{
		CORSAllowedOrigins:       sec.CORSOrigins,
		CORSMaxAge:               86400,
		RateLimitRequests:        sec.RateLimitRequests,
		RateLimitWindow:          sec.RateLimitWindow,
		MaintenanceRatePerMinute: sec.MaintenanceRatePerMinute,
	}
}

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler *Handler
	config  RouterConfig
}

// NewRouter creates a router for handler.
func NewRouter(handler *Handler, cfg RouterConfig) *Router {
	return &Router{handler: handler, config: cfg}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.cors())

	r.Get("/health", h.Health)
	r.Get("/health/live", h.HealthLive)
	r.Handle("/metrics", promhttp.Handler())

	maintenance := router.maintenanceLimit()

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		if h.perfMon != nil {
			r.Use(h.perfMon.Middleware)
		}
		r.Use(router.rateLimit())
		r.Use(APISecurityHeaders)

		r.Get("/categories", h.Categories)
		r.Get("/content/{contentID}", h.Content)
		r.Get("/content/{contentID}/similar", h.SimilarContent)
		r.Group(func(r chi.Router) {
			r.Use(router.audited(audit.EventTypeContentChanged))
			r.Post("/content", h.CreateContent)
			r.Put("/content/{contentID}", h.UpdateContent)
			r.Delete("/content/{contentID}", h.DeleteContent)
		})
		r.Get("/profiles", h.Profiles)

		r.Route("/profiles/{profileID}", func(r chi.Router) {
			r.Get("/", h.Profile)
			r.Get("/recommendations", h.Recommendations)
			r.Get("/categories/{categoryID}/recommendations", h.CategoryRecommendations)

			r.Get("/watch", h.WatchHistory)
			r.With(router.audited(audit.EventTypeWatchRecorded)).Post("/watch", h.RecordWatch)

			r.Get("/ratings/{contentID}", h.GetRating)
			r.Group(func(r chi.Router) {
				r.Use(router.audited(audit.EventTypeRatingSet))
				r.Put("/ratings/{contentID}", h.SetRating)
				r.Post("/ratings/{contentID}/like", h.Like)
				r.Post("/ratings/{contentID}/dislike", h.Dislike)
			})

			r.Get("/favorites", h.Favorites)
			r.With(router.audited(audit.EventTypeFavoriteAdded)).Post("/favorites/{contentID}", h.AddFavorite)
			r.With(router.audited(audit.EventTypeFavoriteRemoved)).Delete("/favorites/{contentID}", h.RemoveFavorite)
		})

		r.Route("/maintenance", func(r chi.Router) {
			r.With(maintenance, router.audited(audit.EventTypeDedupe)).Post("/dedupe", h.Dedupe)
			r.Get("/performance", h.Performance)
		})
		r.With(maintenance).Get("/reports/recommendations", h.Report)

		r.Get("/audit/events", h.AuditEvents)
		r.Get("/audit/events/{eventID}", h.AuditEvent)
	})

	return r
}

// cors builds the go-chi/cors handler. An empty origin list allows none.
func (router *Router) cors() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   router.config.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           router.config.CORSMaxAge,
	})
}

// rateLimit applies the global per-IP limit with go-chi/httprate.
func (router *Router) rateLimit() func(http.Handler) http.Handler {
	if router.config.RateLimitRequests <= 0 || router.config.RateLimitWindow <= 0 {
		return passthrough
	}
	return httprate.Limit(
		router.config.RateLimitRequests,
		router.config.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			NewResponseWriter(w, r).TooManyRequests("rate limit exceeded")
		}),
	)
}

// maintenanceLimit is the token bucket shared by the expensive endpoints.
func (router *Router) maintenanceLimit() func(http.Handler) http.Handler {
	if router.config.MaintenanceRatePerMinute <= 0 {
		return passthrough
	}
	return NewClientRateLimiter(router.config.MaintenanceRatePerMinute).Middleware
}

// audited records an audit event for the route when audit logging is on.
func (router *Router) audited(eventType audit.EventType) func(http.Handler) http.Handler {
	if router.handler.auditLog == nil {
		return passthrough
	}
	return router.handler.auditLog.Middleware(eventType)
}

func passthrough(next http.Handler) http.Handler {
	return next
}

// APISecurityHeaders adds headers that harden JSON responses.
func APISecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
