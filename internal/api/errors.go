// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/sugoi/internal/database"
	"github.com/tomtom215/sugoi/internal/models"
	"github.com/tomtom215/sugoi/internal/recommend"
	"github.com/tomtom215/sugoi/internal/validation"
)

// errProfileNotFound is the message for a missing profile in any route.
const errProfileNotFound = "profile not found"

// writeError maps domain errors onto HTTP status codes.
func writeError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, recommend.ErrProfileNotFound):
		rw.NotFound(errProfileNotFound)
	case errors.Is(err, recommend.ErrContentNotFound):
		rw.NotFound("content not found")
	case errors.Is(err, recommend.ErrCategoryNotFound):
		rw.NotFound("category not found")
	case errors.Is(err, models.ErrNotFound):
		rw.NotFound(err.Error())
	case errors.Is(err, recommend.ErrInvalidRequest), errors.Is(err, database.ErrInvalidInput):
		rw.BadRequest(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		rw.Error(http.StatusGatewayTimeout, ErrCodeTimeout, "request timed out")
	case errors.Is(err, context.Canceled):
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "request canceled")
	default:
		rw.DatabaseError(err)
	}
}

// writeValidationError renders a validator failure as VALIDATION_ERROR.
func writeValidationError(rw *ResponseWriter, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
}
