// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package recommend

import "errors"

var (
	ErrInvalidConfig    = errors.New("invalid recommend config")
	ErrInvalidRequest   = errors.New("invalid recommendation request")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrContentNotFound  = errors.New("content not found")
	ErrCategoryNotFound = errors.New("category not found")
)
