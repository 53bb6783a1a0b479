// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/sugoi/internal/logging"
	"github.com/tomtom215/sugoi/internal/models"
)

// duplicateWatchGroups counts (profile, content, episode) keys with more than one row.
// GROUP BY treats NULL episodes as one group.
const duplicateWatchGroups = `SELECT COUNT(*) FROM (
		SELECT profile_id, content_id, episode_id
		FROM watch_events
		GROUP BY profile_id, content_id, episode_id
		HAVING COUNT(*) > 1
	) dup`

// duplicateWatchIDs lists every row except the earliest of its key.
const duplicateWatchIDs = `SELECT id FROM (
		SELECT id, ROW_NUMBER() OVER (
			PARTITION BY profile_id, content_id, episode_id
			ORDER BY watched_at, id
		) AS rn
		FROM watch_events
	) ranked
	WHERE rn > 1
	ORDER BY id`

// DedupeWatchEvents keeps the earliest watch event (by watched_at, then id)
// for each (profile, content, episode) and deletes the rest in one transaction.
func (db *DB) DedupeWatchEvents(ctx context.Context) (result *models.DedupeResult, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("delete", "watch_events", time.Now(), &err)

	start := time.Now()
	err = db.withTx(ctx, func(tx *sql.Tx) error {
		result = &models.DedupeResult{RanAt: now()}

		groups, err := count(ctx, tx, duplicateWatchGroups)
		if err != nil {
			return fmt.Errorf("count duplicate groups: %w", err)
		}
		result.Groups = groups

		if groups > 0 {
			ids, err := queryAndScan(ctx, tx, duplicateWatchIDs, nil, scanInt64)
			if err != nil {
				return fmt.Errorf("query duplicate watch events: %w", err)
			}

			// MySQL cannot delete from a table it selects from in a subquery, so ids are materialized first.
			for _, chunk := range chunkIDs(ids, inClauseChunk) {
				ph, args := buildInClause(chunk)
				res, err := tx.ExecContext(ctx, "DELETE FROM watch_events WHERE id IN ("+ph+")", args...)
				if err != nil {
					return fmt.Errorf("delete duplicate watch events: %w", err)
				}
				n, err := res.RowsAffected()
				if err != nil {
					return fmt.Errorf("rows affected: %w", err)
				}
				result.Removed += int(n)
			}
		}

		remaining, err := count(ctx, tx, "SELECT COUNT(*) FROM watch_events")
		if err != nil {
			return fmt.Errorf("count watch events: %w", err)
		}
		result.Remaining = remaining
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Info().
		Int("groups", result.Groups).
		Int("removed", result.Removed).
		Int("remaining", result.Remaining).
		Dur("duration", time.Since(start)).
		Msg("Watch event dedupe completed")

	return result, nil
}
