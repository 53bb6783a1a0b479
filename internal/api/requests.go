// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/sugoi/internal/audit"
	"github.com/tomtom215/sugoi/internal/database"
	"github.com/tomtom215/sugoi/internal/models"
	"github.com/tomtom215/sugoi/internal/validation"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

// WatchRequest is the body of POST /profiles/{profileID}/watch.
type WatchRequest struct {
	ContentID      int64      `json:"content_id" validate:"required,gt=0"`
	EpisodeID      *int64     `json:"episode_id,omitempty" validate:"omitempty,gt=0"`
	WatchedSeconds int        `json:"watched_seconds" validate:"gte=0"`
	WatchedAt      *time.Time `json:"watched_at,omitempty"`
}

// RatingRequest is the body of PUT /profiles/{profileID}/ratings/{contentID}.
type RatingRequest struct {
	Score int `json:"score" validate:"score"`
}

// ContentRequest is the body of POST /content and PUT /content/{contentID}.
type ContentRequest struct {
	Title           string             `json:"title" validate:"required,max=255"`
	Kind            models.ContentKind `json:"kind" validate:"content_kind"`
	Description     string             `json:"description"`
	Year            *int               `json:"year,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	DurationMinutes *int               `json:"duration_minutes,omitempty" validate:"omitempty,gt=0"`
	Language        string             `json:"language" validate:"max=16"`
	CategoryIDs     []int64            `json:"category_ids" validate:"max=32,dive,gt=0"`
}

func (req *ContentRequest) input() database.ContentInput {
	return database.ContentInput{
		Title:           req.Title,
		Kind:            req.Kind,
		Description:     req.Description,
		Year:            req.Year,
		DurationMinutes: req.DurationMinutes,
		Language:        req.Language,
		CategoryIDs:     req.CategoryIDs,
	}
}

// ListParams are shared limit/offset query parameters.
type ListParams struct {
	Limit  int `validate:"gte=1,lte=1000"`
	Offset int `validate:"gte=0,lte=1000000"`
}

// ReportParams are the query parameters of the recommendation report.
type ReportParams struct {
	Top    int    `validate:"gte=1,lte=100"`
	Format string `validate:"oneof=json csv"`
}

// decodeJSON reads a bounded JSON body into v and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) (*validation.RequestValidationError, error) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("request body is empty")
		}
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	return validation.ValidateStruct(v), nil
}

// pathID parses a positive int64 URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// getIntParam extracts an integer query parameter with a default value.
// Malformed values are an error rather than silently defaulted.
func getIntParam(r *http.Request, key string, defaultValue int) (int, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

// optionalInt64Param parses an optional positive int64 query parameter.
func optionalInt64Param(r *http.Request, key string) (*int64, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("%s must be a positive integer", key)
	}
	return &n, nil
}

// parseAuditFilter builds an audit filter from query parameters.
func parseAuditFilter(r *http.Request) (audit.QueryFilter, error) {
	filter := audit.DefaultQueryFilter()
	q := r.URL.Query()

	limit, err := getIntParam(r, "limit", filter.Limit)
	if err != nil {
		return filter, err
	}
	offset, err := getIntParam(r, "offset", 0)
	if err != nil {
		return filter, err
	}
	if verr := validation.ValidateStruct(&ListParams{Limit: limit, Offset: offset}); verr != nil {
		return filter, verr
	}
	filter.Limit = limit
	filter.Offset = offset

	if types := q.Get("type"); types != "" {
		for _, t := range parseCommaSeparated(types) {
			filter.Types = append(filter.Types, audit.EventType(t))
		}
	}
	switch outcome := audit.Outcome(q.Get("outcome")); outcome {
	case "":
	case audit.OutcomeSuccess, audit.OutcomeFailure:
		filter.Outcome = outcome
	default:
		return filter, fmt.Errorf("outcome must be success or failure")
	}
	if filter.ProfileID, err = optionalInt64Param(r, "profile_id"); err != nil {
		return filter, err
	}
	filter.RequestID = q.Get("request_id")

	for key, dst := range map[string]**time.Time{"since": &filter.StartTime, "until": &filter.EndTime} {
		if value := q.Get(key); value != "" {
			t, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return filter, fmt.Errorf("%s must be an RFC3339 timestamp", key)
			}
			*dst = &t
		}
	}
	return filter, nil
}

// parseCommaSeparated parses a comma-separated string into a slice
func parseCommaSeparated(value string) []string {
	if value == "" {
		return nil
	}

	var result []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
