// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/sugoi/internal/database"
	"github.com/tomtom215/sugoi/internal/models"
)

// FavoriteResult reports the effect of a favorite toggle.
type FavoriteResult struct {
	ProfileID int64 `json:"profile_id"`
	ContentID int64 `json:"content_id"`
	Favorite  bool  `json:"favorite"`
	Changed   bool  `json:"changed"`
}

// RecordWatch handles POST /api/v1/profiles/{profileID}/watch
// Responds 201 when a new watch event was stored and 200 when an existing
// one was updated.
func (h *Handler) RecordWatch(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	profileID, ok := h.requireProfile(rw, r)
	if !ok {
		return
	}

	var req WatchRequest
	verr, err := decodeJSON(w, r, &req)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr != nil {
		writeValidationError(rw, verr)
		return
	}

	in := database.WatchInput{
		ProfileID:      profileID,
		ContentID:      req.ContentID,
		EpisodeID:      req.EpisodeID,
		WatchedSeconds: req.WatchedSeconds,
	}
	if req.WatchedAt != nil {
		in.WatchedAt = *req.WatchedAt
	}

	event, created, err := h.db.RecordWatch(r.Context(), in)
	if err != nil {
		writeError(rw, err)
		return
	}
	if created {
		rw.Created(event)
		return
	}
	rw.Success(event)
}

// WatchHistory handles GET /api/v1/profiles/{profileID}/watch
func (h *Handler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	profileID, ok := h.requireProfile(rw, r)
	if !ok {
		return
	}
	events, err := h.db.WatchEvents(r.Context(), profileID)
	if err != nil {
		writeError(rw, err)
		return
	}
	rw.Success(nonNil(events))
}

// SetRating handles PUT /api/v1/profiles/{profileID}/ratings/{contentID}
func (h *Handler) SetRating(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req RatingRequest
	verr, err := decodeJSON(w, r, &req)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr != nil {
		writeValidationError(rw, verr)
		return
	}

	h.rate(rw, r, func(ctx context.Context, profileID, contentID int64) (*models.Rating, error) {
		return h.db.SetRating(ctx, profileID, contentID, req.Score)
	})
}

// Like handles POST /api/v1/profiles/{profileID}/ratings/{contentID}/like
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	h.rate(NewResponseWriter(w, r), r, h.db.Like)
}

// Dislike handles POST /api/v1/profiles/{profileID}/ratings/{contentID}/dislike
func (h *Handler) Dislike(w http.ResponseWriter, r *http.Request) {
	h.rate(NewResponseWriter(w, r), r, h.db.Dislike)
}

// GetRating handles GET /api/v1/profiles/{profileID}/ratings/{contentID}
func (h *Handler) GetRating(w http.ResponseWriter, r *http.Request) {
	h.rate(NewResponseWriter(w, r), r, h.db.GetRating)
}

func (h *Handler) rate(rw *ResponseWriter, r *http.Request, fn func(ctx context.Context, profileID, contentID int64) (*models.Rating, error)) {
	profileID, ok := h.requireProfile(rw, r)
	if !ok {
		return
	}
	contentID, ok := requirePathID(rw, r, "contentID")
	if !ok {
		return
	}

	rating, err := fn(r.Context(), profileID, contentID)
	if err != nil {
		writeError(rw, err)
		return
	}
	rw.Success(rating)
}

// AddFavorite handles POST /api/v1/profiles/{profileID}/favorites/{contentID}
// Adding an existing favorite is a no-op that responds 200.
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	profileID, contentID, ok := h.favoriteTarget(rw, r)
	if !ok {
		return
	}
	created, err := h.db.AddFavorite(r.Context(), profileID, contentID)
	if err != nil {
		writeError(rw, err)
		return
	}

	result := FavoriteResult{ProfileID: profileID, ContentID: contentID, Favorite: true, Changed: created}
	if created {
		rw.Created(result)
		return
	}
	rw.Success(result)
}

// RemoveFavorite handles DELETE /api/v1/profiles/{profileID}/favorites/{contentID}
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	profileID, contentID, ok := h.favoriteTarget(rw, r)
	if !ok {
		return
	}
	removed, err := h.db.RemoveFavorite(r.Context(), profileID, contentID)
	if err != nil {
		writeError(rw, err)
		return
	}
	rw.Success(FavoriteResult{ProfileID: profileID, ContentID: contentID, Favorite: false, Changed: removed})
}

// Favorites handles GET /api/v1/profiles/{profileID}/favorites
func (h *Handler) Favorites(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	profileID, ok := h.requireProfile(rw, r)
	if !ok {
		return
	}
	favorites, err := h.db.Favorites(r.Context(), profileID)
	if err != nil {
		writeError(rw, err)
		return
	}
	rw.Success(nonNil(favorites))
}

func (h *Handler) favoriteTarget(rw *ResponseWriter, r *http.Request) (profileID, contentID int64, ok bool) {
	if profileID, ok = h.requireProfile(rw, r); !ok {
		return 0, 0, false
	}
	if contentID, ok = requirePathID(rw, r, "contentID"); !ok {
		return 0, 0, false
	}
	return profileID, contentID, true
}

// nonNil renders empty lists as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
