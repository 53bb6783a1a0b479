// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/sugoi/internal/logging"
	"github.com/tomtom215/sugoi/internal/metrics"
	"github.com/tomtom215/sugoi/internal/recommend"
)

// Recommendations handles GET /api/v1/profiles/{profileID}/recommendations
//
// @Summary Personalized recommendations
// @Description Merges the history, rating, frequency and popularity strategies, removes seen content and backfills from the catalog.
// @Tags Recommendations
// @Produce json
// @Param profileID path int true "Profile ID"
// @Param limit query int false "Number of items"
// @Success 200 {object} APIResponse{data=recommend.Response}
// @Failure 404 {object} APIResponse "Profile not found"
// @Router /api/v1/profiles/{profileID}/recommendations [get]
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	profileID, ok := h.requireProfile(rw, r)
	if !ok {
		return
	}
	limit, err := getIntParam(r, "limit", 0)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	ctx, cancel := h.engineContext(r)
	defer cancel()

	start := time.Now()
	resp, err := h.engine.Recommend(ctx, recommend.Request{
		RequestID: logging.RequestIDFromContext(r.Context()),
		ProfileID: profileID,
		Limit:     limit,
	})
	recordRecommendation(recommend.ModeProfile, start, resp, err)
	if err != nil {
		writeError(rw, err)
		return
	}
	rw.Success(resp)
}

// CategoryRecommendations handles
// GET /api/v1/profiles/{profileID}/categories/{categoryID}/recommendations
func (h *Handler) CategoryRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	profileID, ok := h.requireProfile(rw, r)
	if !ok {
		return
	}
	categoryID, ok := requirePathID(rw, r, "categoryID")
	if !ok {
		return
	}
	limit, err := getIntParam(r, "limit", 0)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	ctx, cancel := h.engineContext(r)
	defer cancel()

	start := time.Now()
	resp, err := h.engine.ForCategory(ctx, recommend.CategoryRequest{
		RequestID:  logging.RequestIDFromContext(r.Context()),
		ProfileID:  profileID,
		CategoryID: categoryID,
		Limit:      limit,
	})
	recordRecommendation(recommend.ModeCategory, start, resp, err)
	if err != nil {
		writeError(rw, err)
		return
	}
	rw.Success(resp)
}

// SimilarContent handles GET /api/v1/content/{contentID}/similar?profile_id=&limit=
// Without profile_id the list is not filtered by viewing history.
func (h *Handler) SimilarContent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	contentID, ok := requirePathID(rw, r, "contentID")
	if !ok {
		return
	}
	profileID, err := optionalInt64Param(r, "profile_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if profileID != nil {
		if err := h.engine.CheckProfile(r.Context(), *profileID); err != nil {
			writeError(rw, err)
			return
		}
	}
	limit, err := getIntParam(r, "limit", 0)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	ctx, cancel := h.engineContext(r)
	defer cancel()

	start := time.Now()
	resp, err := h.engine.Similar(ctx, recommend.SimilarRequest{
		RequestID: logging.RequestIDFromContext(r.Context()),
		ContentID: contentID,
		ProfileID: profileID,
		Limit:     limit,
	})
	recordRecommendation(recommend.ModeSimilar, start, resp, err)
	if err != nil {
		writeError(rw, err)
		return
	}
	rw.Success(resp)
}

func recordRecommendation(mode recommend.Mode, start time.Time, resp *recommend.Response, err error) {
	var (
		counts     map[string]int
		backfilled int
	)
	if resp != nil {
		counts = resp.Metadata.StrategyCounts
		backfilled = resp.Metadata.Backfilled
	}
	metrics.RecordRecommendation(string(mode), time.Since(start), counts, backfilled, err)
}
