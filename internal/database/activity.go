// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/sugoi/internal/models"
)

// WatchInput records a profile playing a title or one of its episodes.
type WatchInput struct {
	ProfileID      int64
	ContentID      int64
	EpisodeID      *int64
	WatchedSeconds int
	// WatchedAt defaults to now.
	WatchedAt time.Time
}

// RecordWatch is a get-or-create keyed by (profile, content, episode). An
// existing event keeps its original watched_at and grows to the larger
// watched_seconds. The boolean reports whether a row was inserted.
func (db *DB) RecordWatch(ctx context.Context, in WatchInput) (_ *models.WatchEvent, created bool, err error) {
	if in.WatchedSeconds < 0 {
		return nil, false, invalidInput("watched_seconds must not be negative")
	}
	if in.WatchedAt.IsZero() {
		in.WatchedAt = now()
	} else {
		in.WatchedAt = in.WatchedAt.UTC()
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("upsert", "watch_events", time.Now(), &err)

	var ev models.WatchEvent
	err = db.withTx(ctx, func(tx *sql.Tx) error {
		created = false
		if err := requireProfile(ctx, tx, in.ProfileID); err != nil {
			return err
		}
		if err := requireContent(ctx, tx, in.ContentID); err != nil {
			return err
		}
		if in.EpisodeID != nil {
			ok, err := exists(ctx, tx, "SELECT COUNT(*) FROM episodes WHERE id = ? AND content_id = ?", *in.EpisodeID, in.ContentID)
			if err != nil {
				return fmt.Errorf("check episode: %w", err)
			}
			if !ok {
				return invalidInput("episode %d does not belong to content %d", *in.EpisodeID, in.ContentID)
			}
		}

		query := `SELECT id, watched_seconds, watched_at FROM watch_events
			WHERE profile_id = ? AND content_id = ? AND `
		args := []any{in.ProfileID, in.ContentID}
		if in.EpisodeID == nil {
			query += "episode_id IS NULL"
		} else {
			query += "episode_id = ?"
			args = append(args, *in.EpisodeID)
		}
		query += " ORDER BY watched_at, id LIMIT 1"

		ev = models.WatchEvent{ProfileID: in.ProfileID, ContentID: in.ContentID, EpisodeID: in.EpisodeID}
		err := tx.QueryRowContext(ctx, query, args...).Scan(&ev.ID, &ev.WatchedSeconds, &ev.WatchedAt)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			ev.WatchedSeconds = in.WatchedSeconds
			ev.WatchedAt = in.WatchedAt
			ev.ID, err = db.insertID(ctx, tx,
				`INSERT INTO watch_events (profile_id, content_id, episode_id, watched_seconds, watched_at)
				VALUES (?, ?, ?, ?, ?)`,
				in.ProfileID, in.ContentID, nullInt64(in.EpisodeID), in.WatchedSeconds, in.WatchedAt)
			if err != nil {
				return fmt.Errorf("insert watch event: %w", err)
			}
			created = true
			return nil
		case err != nil:
			return fmt.Errorf("query watch event: %w", err)
		}

		if in.WatchedSeconds > ev.WatchedSeconds {
			if _, err := tx.ExecContext(ctx, "UPDATE watch_events SET watched_seconds = ? WHERE id = ?", in.WatchedSeconds, ev.ID); err != nil {
				return fmt.Errorf("update watch event: %w", err)
			}
			ev.WatchedSeconds = in.WatchedSeconds
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &ev, created, nil
}

// WatchEvents returns a profile's watch history, most recent first.
func (db *DB) WatchEvents(ctx context.Context, profileID int64) ([]models.WatchEvent, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	events, err := queryAndScan(ctx, db.conn,
		`SELECT id, profile_id, content_id, episode_id, watched_seconds, watched_at
		FROM watch_events WHERE profile_id = ? ORDER BY watched_at DESC, id DESC`,
		[]any{profileID},
		func(rows *sql.Rows) (models.WatchEvent, error) {
			var (
				ev      models.WatchEvent
				episode sql.NullInt64
			)
			err := rows.Scan(&ev.ID, &ev.ProfileID, &ev.ContentID, &episode, &ev.WatchedSeconds, &ev.WatchedAt)
			ev.EpisodeID = int64Ptr(episode)
			return ev, err
		})
	if err != nil {
		return nil, fmt.Errorf("query watch events: %w", err)
	}
	return events, nil
}

// SetRating stores score (1..5) for the pair, replacing any earlier rating.
func (db *DB) SetRating(ctx context.Context, profileID, contentID int64, score int) (_ *models.Rating, err error) {
	if !models.ValidScore(score) {
		return nil, invalidInput("score %d outside %d..%d", score, models.ScoreMin, models.ScoreMax)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("upsert", "ratings", time.Now(), &err)

	rating := &models.Rating{ProfileID: profileID, ContentID: contentID, Score: score, RatedAt: now()}
	err = db.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireProfile(ctx, tx, profileID); err != nil {
			return err
		}
		if err := requireContent(ctx, tx, contentID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, db.dialect.upsertRating(), profileID, contentID, score, rating.RatedAt); err != nil {
			return fmt.Errorf("upsert rating: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rating, nil
}

// Like rates the content with the top score.
func (db *DB) Like(ctx context.Context, profileID, contentID int64) (*models.Rating, error) {
	return db.SetRating(ctx, profileID, contentID, models.ScoreLike)
}

// Dislike rates the content with the bottom score.
func (db *DB) Dislike(ctx context.Context, profileID, contentID int64) (*models.Rating, error) {
	return db.SetRating(ctx, profileID, contentID, models.ScoreDislike)
}

// GetRating wraps models.ErrNotFound when the profile has not rated the content.
func (db *DB) GetRating(ctx context.Context, profileID, contentID int64) (*models.Rating, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	r := models.Rating{ProfileID: profileID, ContentID: contentID}
	err := db.conn.QueryRowContext(ctx,
		"SELECT score, rated_at FROM ratings WHERE profile_id = ? AND content_id = ?",
		profileID, contentID).Scan(&r.Score, &r.RatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rating for content %d: %w", contentID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query rating: %w", err)
	}
	return &r, nil
}

// AddFavorite marks the content as a favorite. Adding twice is a no-op and
// reports created=false.
func (db *DB) AddFavorite(ctx context.Context, profileID, contentID int64) (created bool, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("insert", "favorites", time.Now(), &err)

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		created = false
		if err := requireProfile(ctx, tx, profileID); err != nil {
			return err
		}
		if err := requireContent(ctx, tx, contentID); err != nil {
			return err
		}

		already, err := exists(ctx, tx, "SELECT COUNT(*) FROM favorites WHERE profile_id = ? AND content_id = ?", profileID, contentID)
		if err != nil {
			return fmt.Errorf("check favorite: %w", err)
		}
		if already {
			return nil
		}

		stmt := db.dialect.insertIgnore("favorites", "profile_id", "content_id", "added_at")
		if _, err := tx.ExecContext(ctx, stmt, profileID, contentID, now()); err != nil {
			return fmt.Errorf("insert favorite: %w", err)
		}
		created = true
		return nil
	})
	return created, err
}

// RemoveFavorite deletes the favorite and reports whether one existed.
func (db *DB) RemoveFavorite(ctx context.Context, profileID, contentID int64) (removed bool, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("delete", "favorites", time.Now(), &err)

	res, err := db.conn.ExecContext(ctx, "DELETE FROM favorites WHERE profile_id = ? AND content_id = ?", profileID, contentID)
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Favorites returns a profile's favorites, newest first.
func (db *DB) Favorites(ctx context.Context, profileID int64) ([]models.Favorite, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	favs, err := queryAndScan(ctx, db.conn,
		"SELECT profile_id, content_id, added_at FROM favorites WHERE profile_id = ? ORDER BY added_at DESC, content_id",
		[]any{profileID},
		func(rows *sql.Rows) (models.Favorite, error) {
			var f models.Favorite
			err := rows.Scan(&f.ProfileID, &f.ContentID, &f.AddedAt)
			return f, err
		})
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	return favs, nil
}
