// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package database

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tomtom215/sugoi/internal/models"
)

var (
	// ErrInvalidInput reports arguments rejected before touching the database.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedDriver is returned by New for unknown drivers.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

// notFound wraps models.ErrNotFound with the missing entity.
func notFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, models.ErrNotFound)
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use it for cleanup in error paths where Close errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// isTransactionConflict checks if an error is a DuckDB optimistic concurrency conflict.
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Transaction conflict") ||
		strings.Contains(msg, "Conflict on update") ||
		strings.Contains(msg, "Conflict on tuple deletion")
}
