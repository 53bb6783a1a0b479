// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package api

import "net/http"

// Categories handles GET /api/v1/categories
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	categories, err := h.db.ListCategories(r.Context())
	if err != nil {
		writeError(rw, err)
		return
	}
	rw.Success(nonNil(categories))
}

// Content handles GET /api/v1/content/{contentID}
func (h *Handler) Content(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	contentID, ok := requirePathID(rw, r, "contentID")
	if !ok {
		return
	}
	content, err := h.db.ContentByID(r.Context(), contentID)
	if err != nil {
		writeError(rw, err)
		return
	}
	rw.Success(content)
}

// CreateContent handles POST /api/v1/content
func (h *Handler) CreateContent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, ok := decodeContentRequest(rw, w, r)
	if !ok {
		return
	}
	content, err := h.db.CreateContent(r.Context(), req.input())
	if err != nil {
		writeError(rw, err)
		return
	}
	rw.Created(content)
}

// UpdateContent handles PUT /api/v1/content/{contentID}
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	contentID, ok := requirePathID(rw, r, "contentID")
	if !ok {
		return
	}
	req, ok := decodeContentRequest(rw, w, r)
	if !ok {
		return
	}
	content, err := h.db.UpdateContent(r.Context(), contentID, req.input())
	if err != nil {
		writeError(rw, err)
		return
	}
	rw.Success(content)
}

// DeleteContent handles DELETE /api/v1/content/{contentID}. Episodes, watch
// history, ratings and favorites of the title are removed with it.
func (h *Handler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	contentID, ok := requirePathID(rw, r, "contentID")
	if !ok {
		return
	}
	if err := h.db.DeleteContent(r.Context(), contentID); err != nil {
		writeError(rw, err)
		return
	}
	rw.NoContent()
}

func decodeContentRequest(rw *ResponseWriter, w http.ResponseWriter, r *http.Request) (*ContentRequest, bool) {
	var req ContentRequest
	verr, err := decodeJSON(w, r, &req)
	if err != nil {
		rw.BadRequest(err.Error())
		return nil, false
	}
	if verr != nil {
		writeValidationError(rw, verr)
		return nil, false
	}
	return &req, true
}

// Profiles handles GET /api/v1/profiles
func (h *Handler) Profiles(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	profiles, err := h.db.ListProfiles(r.Context())
	if err != nil {
		writeError(rw, err)
		return
	}
	rw.Success(nonNil(profiles))
}

// Profile handles GET /api/v1/profiles/{profileID}
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	profileID, ok := requirePathID(rw, r, "profileID")
	if !ok {
		return
	}
	profile, err := h.db.ProfileByID(r.Context(), profileID)
	if err != nil {
		writeError(rw, err)
		return
	}
	rw.Success(profile)
}
