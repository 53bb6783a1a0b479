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
	"strings"
	"time"

	"github.com/tomtom215/sugoi/internal/models"
	"github.com/tomtom215/sugoi/internal/validation"
)

// ContentInput describes a new catalog entry.
type ContentInput struct {
	Title           string             `json:"title" validate:"required,max=255"`
	Kind            models.ContentKind `json:"kind" validate:"content_kind"`
	Description     string             `json:"description"`
	Year            *int               `json:"year,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	DurationMinutes *int               `json:"duration_minutes,omitempty" validate:"omitempty,gt=0"`
	Language        string             `json:"language" validate:"max=16"`
	CategoryIDs     []int64            `json:"category_ids"`
}

// EpisodeInput describes a new episode of a series.
type EpisodeInput struct {
	ContentID       int64  `json:"content_id" validate:"gt=0"`
	Season          int    `json:"season" validate:"gte=0"`
	Number          int    `json:"number" validate:"gt=0"`
	Title           string `json:"title" validate:"max=255"`
	DurationMinutes int    `json:"duration_minutes" validate:"gte=0"`
}

// CreateCategory returns the category with the given name, creating it when absent.
func (db *DB) CreateCategory(ctx context.Context, name string) (cat *models.Category, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidInput("category name is required")
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("upsert", "categories", time.Now(), &err)

	if _, err = db.conn.ExecContext(ctx, db.dialect.insertIgnore("categories", "name"), name); err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}

	cat = &models.Category{}
	err = db.conn.QueryRowContext(ctx, "SELECT id, name FROM categories WHERE name = ?", name).Scan(&cat.ID, &cat.Name)
	if err != nil {
		return nil, fmt.Errorf("select category: %w", err)
	}
	return cat, nil
}

// CategoryByID wraps models.ErrNotFound when the category does not exist.
func (db *DB) CategoryByID(ctx context.Context, categoryID int64) (*models.Category, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var cat models.Category
	err := db.conn.QueryRowContext(ctx, "SELECT id, name FROM categories WHERE id = ?", categoryID).Scan(&cat.ID, &cat.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("category", categoryID)
	}
	if err != nil {
		return nil, fmt.Errorf("query category: %w", err)
	}
	return &cat, nil
}

// ListCategories returns every category ordered by name.
func (db *DB) ListCategories(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	cats, err := queryAndScan(ctx, db.conn, "SELECT id, name FROM categories ORDER BY name, id", nil,
		func(rows *sql.Rows) (models.Category, error) {
			var c models.Category
			err := rows.Scan(&c.ID, &c.Name)
			return c, err
		})
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	return cats, nil
}

// CreateContent inserts a title and its category links in one transaction.
func (db *DB) CreateContent(ctx context.Context, in ContentInput) (_ *models.Content, err error) {
	in.Title = strings.TrimSpace(in.Title)
	if verr := validation.ValidateStruct(in); verr != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, verr.Error())
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("insert", "content", time.Now(), &err)

	categoryIDs := uniqueIDs(in.CategoryIDs)

	var id int64
	err = db.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireCategories(ctx, tx, categoryIDs); err != nil {
			return err
		}

		var err error
		id, err = db.insertID(ctx, tx,
			`INSERT INTO content (title, kind, description, release_year, duration_minutes, language_code, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			in.Title, string(in.Kind), in.Description, nullInt(in.Year), nullInt(in.DurationMinutes), in.Language, now())
		if err != nil {
			return fmt.Errorf("insert content: %w", err)
		}
		return linkCategories(ctx, tx, id, categoryIDs)
	})
	if err != nil {
		return nil, err
	}

	return db.ContentByID(ctx, id)
}

// UpdateContent replaces every editable field of a title, including its
// category links.
func (db *DB) UpdateContent(ctx context.Context, contentID int64, in ContentInput) (_ *models.Content, err error) {
	in.Title = strings.TrimSpace(in.Title)
	if verr := validation.ValidateStruct(in); verr != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, verr.Error())
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("update", "content", time.Now(), &err)

	categoryIDs := uniqueIDs(in.CategoryIDs)

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireContent(ctx, tx, contentID); err != nil {
			return err
		}
		if err := requireCategories(ctx, tx, categoryIDs); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE content SET title = ?, kind = ?, description = ?, release_year = ?,
			duration_minutes = ?, language_code = ? WHERE id = ?`,
			in.Title, string(in.Kind), in.Description, nullInt(in.Year), nullInt(in.DurationMinutes), in.Language, contentID); err != nil {
			return fmt.Errorf("update content: %w", err)
		}
		return relinkCategories(ctx, tx, contentID, categoryIDs)
	})
	if err != nil {
		return nil, err
	}

	return db.ContentByID(ctx, contentID)
}

// requireCategories fails with ErrInvalidInput unless every id exists.
func requireCategories(ctx context.Context, tx *sql.Tx, categoryIDs []int64) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	ph, args := buildInClause(categoryIDs)
	n, err := count(ctx, tx, "SELECT COUNT(*) FROM categories WHERE id IN ("+ph+")", args...)
	if err != nil {
		return fmt.Errorf("check categories: %w", err)
	}
	if n != len(categoryIDs) {
		return invalidInput("unknown category in %v", categoryIDs)
	}
	return nil
}

// relinkCategories diffs the stored links against categoryIDs so unchanged
// (content, category) keys are never deleted and reinserted.
func relinkCategories(ctx context.Context, tx *sql.Tx, contentID int64, categoryIDs []int64) error {
	current, err := queryAndScan(ctx, tx, "SELECT category_id FROM content_categories WHERE content_id = ?",
		[]any{contentID}, func(rows *sql.Rows) (int64, error) {
			var id int64
			err := rows.Scan(&id)
			return id, err
		})
	if err != nil {
		return fmt.Errorf("query category links: %w", err)
	}

	want := make(map[int64]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		want[id] = struct{}{}
	}
	have := make(map[int64]struct{}, len(current))
	for _, id := range current {
		have[id] = struct{}{}
		if _, ok := want[id]; ok {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM content_categories WHERE content_id = ? AND category_id = ?", contentID, id); err != nil {
			return fmt.Errorf("unlink category %d: %w", id, err)
		}
	}

	var added []int64
	for _, id := range categoryIDs {
		if _, ok := have[id]; !ok {
			added = append(added, id)
		}
	}
	return linkCategories(ctx, tx, contentID, added)
}

func linkCategories(ctx context.Context, tx *sql.Tx, contentID int64, categoryIDs []int64) error {
	for _, catID := range categoryIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO content_categories (content_id, category_id) VALUES (?, ?)", contentID, catID); err != nil {
			return fmt.Errorf("link category %d: %w", catID, err)
		}
	}
	return nil
}

// ContentIDByTitle looks up the oldest title with an exact name match.
func (db *DB) ContentIDByTitle(ctx context.Context, title string) (int64, bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var id int64
	err := db.conn.QueryRowContext(ctx, "SELECT id FROM content WHERE title = ? ORDER BY id LIMIT 1", title).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query content by title: %w", err)
	}
	return id, true, nil
}

// DeleteContent removes a title and every row that references it.
func (db *DB) DeleteContent(ctx context.Context, contentID int64) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("delete", "content", time.Now(), &err)

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireContent(ctx, tx, contentID); err != nil {
			return err
		}
		for _, table := range []string{"content_categories", "episodes", "watch_events", "ratings", "favorites"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE content_id = ?", contentID); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM content WHERE id = ?", contentID); err != nil {
			return fmt.Errorf("delete content: %w", err)
		}
		return nil
	})
}

// CreateProfile returns the profile named name under accountID, creating it when absent.
func (db *DB) CreateProfile(ctx context.Context, accountID int64, name string, audience models.Audience) (_ *models.Profile, err error) {
	name = strings.TrimSpace(name)
	switch {
	case accountID <= 0:
		return nil, invalidInput("account id must be positive")
	case name == "":
		return nil, invalidInput("profile name is required")
	case !audience.Valid():
		return nil, invalidInput("audience %q", audience)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("upsert", "profiles", time.Now(), &err)

	stmt := db.dialect.insertIgnore("profiles", "account_id", "name", "audience", "created_at")
	if _, err = db.conn.ExecContext(ctx, stmt, accountID, name, string(audience), now()); err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}

	p, err := scanProfile(db.conn.QueryRowContext(ctx,
		"SELECT id, account_id, name, audience, created_at FROM profiles WHERE account_id = ? AND name = ?",
		accountID, name))
	if err != nil {
		return nil, fmt.Errorf("select profile: %w", err)
	}
	return p, nil
}

// ProfileByID wraps models.ErrNotFound when the profile does not exist.
func (db *DB) ProfileByID(ctx context.Context, profileID int64) (*models.Profile, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	p, err := scanProfile(db.conn.QueryRowContext(ctx,
		"SELECT id, account_id, name, audience, created_at FROM profiles WHERE id = ?", profileID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("profile", profileID)
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return p, nil
}

// ListProfiles returns every profile ordered by id.
func (db *DB) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	profiles, err := queryAndScan(ctx, db.conn,
		"SELECT id, account_id, name, audience, created_at FROM profiles ORDER BY id", nil,
		func(rows *sql.Rows) (models.Profile, error) {
			p, err := scanProfile(rows)
			if err != nil {
				return models.Profile{}, err
			}
			return *p, nil
		})
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	return profiles, nil
}

// ProfileExists reports whether the profile exists.
func (db *DB) ProfileExists(ctx context.Context, profileID int64) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	ok, err := exists(ctx, db.conn, "SELECT COUNT(*) FROM profiles WHERE id = ?", profileID)
	if err != nil {
		return false, fmt.Errorf("check profile: %w", err)
	}
	return ok, nil
}

// DeleteProfile removes a profile and all of its activity.
func (db *DB) DeleteProfile(ctx context.Context, profileID int64) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("delete", "profiles", time.Now(), &err)

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireProfile(ctx, tx, profileID); err != nil {
			return err
		}
		for _, table := range []string{"watch_events", "ratings", "favorites"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE profile_id = ?", profileID); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM profiles WHERE id = ?", profileID); err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		return nil
	})
}

// CreateEpisode returns the episode at (content, season, number), creating it when absent.
func (db *DB) CreateEpisode(ctx context.Context, in EpisodeInput) (_ *models.Episode, err error) {
	if verr := validation.ValidateStruct(in); verr != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, verr.Error())
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("upsert", "episodes", time.Now(), &err)

	var ep models.Episode
	err = db.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireContent(ctx, tx, in.ContentID); err != nil {
			return err
		}

		stmt := db.dialect.insertIgnore("episodes", "content_id", "season", "episode_number", "title", "duration_minutes")
		if _, err := tx.ExecContext(ctx, stmt, in.ContentID, in.Season, in.Number, in.Title, in.DurationMinutes); err != nil {
			return fmt.Errorf("insert episode: %w", err)
		}

		err := tx.QueryRowContext(ctx,
			`SELECT id, content_id, season, episode_number, title, duration_minutes
			FROM episodes WHERE content_id = ? AND season = ? AND episode_number = ?`,
			in.ContentID, in.Season, in.Number,
		).Scan(&ep.ID, &ep.ContentID, &ep.Season, &ep.Number, &ep.Title, &ep.DurationMinutes)
		if err != nil {
			return fmt.Errorf("select episode: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ep, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var (
		p        models.Profile
		audience string
	)
	if err := row.Scan(&p.ID, &p.AccountID, &p.Name, &audience, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Audience = models.Audience(audience)
	return &p, nil
}

// uniqueIDs drops duplicates and non-positive ids, keeping first-seen order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
