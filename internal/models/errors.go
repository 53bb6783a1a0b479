// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package models

import "errors"

// ErrNotFound is wrapped by stores when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")
