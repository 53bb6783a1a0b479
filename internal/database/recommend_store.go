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

	"github.com/tomtom215/sugoi/internal/models"
	"github.com/tomtom215/sugoi/internal/recommend"
)

var _ recommend.Store = (*DB)(nil)

// contentColumns and contentJoins hydrate models.Content with rating and
// watch aggregates. Callers append WHERE / ORDER BY.
const (
	contentColumns = `c.id, c.title, c.kind, c.description, c.release_year, c.duration_minutes,
		c.language_code, c.created_at, r.avg_score, COALESCE(r.rating_count, 0), COALESCE(w.watch_count, 0)`

	contentJoins = `
		LEFT JOIN (SELECT content_id, AVG(score) AS avg_score, COUNT(*) AS rating_count
			FROM ratings GROUP BY content_id) r ON r.content_id = c.id
		LEFT JOIN (SELECT content_id, COUNT(*) AS watch_count
			FROM watch_events GROUP BY content_id) w ON w.content_id = c.id`
)

// SeenContentIDs returns content the profile watched, rated or favorited.
func (db *DB) SeenContentIDs(ctx context.Context, profileID int64) (ids []int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("select", "seen", time.Now(), &err)

	query := `SELECT content_id FROM watch_events WHERE profile_id = ?
		UNION SELECT content_id FROM ratings WHERE profile_id = ?
		UNION SELECT content_id FROM favorites WHERE profile_id = ?`

	ids, err = queryAndScan(ctx, db.conn, query, []any{profileID, profileID, profileID}, scanInt64)
	if err != nil {
		return nil, fmt.Errorf("query seen content: %w", err)
	}
	return ids, nil
}

// WatchedCategoryIDs returns categories of watched content, most watched first.
func (db *DB) WatchedCategoryIDs(ctx context.Context, profileID int64, limit int) ([]int64, error) {
	query := `SELECT cc.category_id, COUNT(*) AS watches
		FROM watch_events we
		JOIN content_categories cc ON cc.content_id = we.content_id
		WHERE we.profile_id = ?
		GROUP BY cc.category_id
		ORDER BY watches DESC, cc.category_id
		LIMIT ?`
	return db.rankedCategories(ctx, "watched", query, profileID, limit)
}

// FavoriteCategoryIDs returns distinct categories of favorited content.
func (db *DB) FavoriteCategoryIDs(ctx context.Context, profileID int64, limit int) ([]int64, error) {
	query := `SELECT cc.category_id, COUNT(*) AS favorites
		FROM favorites f
		JOIN content_categories cc ON cc.content_id = f.content_id
		WHERE f.profile_id = ?
		GROUP BY cc.category_id
		ORDER BY favorites DESC, cc.category_id
		LIMIT ?`
	return db.rankedCategories(ctx, "favorite", query, profileID, limit)
}

// RatedCategoryIDs returns categories of content rated at least minScore,
// best average first. minScore <= 0 accepts every rating.
func (db *DB) RatedCategoryIDs(ctx context.Context, profileID int64, minScore, limit int) ([]int64, error) {
	if minScore < 0 {
		minScore = 0
	}
	query := `SELECT cc.category_id, AVG(r.score) AS avg_score
		FROM ratings r
		JOIN content_categories cc ON cc.content_id = r.content_id
		WHERE r.profile_id = ? AND r.score >= ?
		GROUP BY cc.category_id
		ORDER BY avg_score DESC, cc.category_id
		LIMIT ?`
	return db.rankedCategories(ctx, "rated", query, profileID, minScore, limit)
}

// FrequentCategoryIDs ranks categories by watch plus favorite count.
func (db *DB) FrequentCategoryIDs(ctx context.Context, profileID int64, limit int) ([]int64, error) {
	query := `SELECT category_id, COUNT(*) AS hits FROM (
			SELECT cc.category_id FROM watch_events we
			JOIN content_categories cc ON cc.content_id = we.content_id
			WHERE we.profile_id = ?
			UNION ALL
			SELECT cc.category_id FROM favorites f
			JOIN content_categories cc ON cc.content_id = f.content_id
			WHERE f.profile_id = ?
		) interactions
		GROUP BY category_id
		ORDER BY hits DESC, category_id
		LIMIT ?`
	return db.rankedCategories(ctx, "frequent", query, profileID, profileID, limit)
}

// rankedCategories runs a (category_id, rank) query whose last argument is the limit.
func (db *DB) rankedCategories(ctx context.Context, label, query string, args ...any) (ids []int64, err error) {
	if limit, ok := args[len(args)-1].(int); ok && limit <= 0 {
		return nil, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("select", "categories_"+label, time.Now(), &err)

	ids, err = queryAndScan(ctx, db.conn, query, args, scanRankedID)
	if err != nil {
		return nil, fmt.Errorf("query %s categories: %w", label, err)
	}
	return ids, nil
}

// CategoryMeanRating is the profile's mean score in a category, nil if unrated.
func (db *DB) CategoryMeanRating(ctx context.Context, profileID, categoryID int64) (mean *float64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("select", "ratings", time.Now(), &err)

	var avg sql.NullFloat64
	err = db.conn.QueryRowContext(ctx,
		`SELECT AVG(r.score) FROM ratings r
		JOIN content_categories cc ON cc.content_id = r.content_id
		WHERE r.profile_id = ? AND cc.category_id = ?`,
		profileID, categoryID).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("query category mean: %w", err)
	}
	return floatPtr(avg), nil
}

// ContentInCategories returns each title tagged with any of categoryIDs once, by id.
func (db *DB) ContentInCategories(ctx context.Context, categoryIDs []int64) (items []models.Content, err error) {
	categoryIDs = uniqueIDs(categoryIDs)
	if len(categoryIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("select", "content", time.Now(), &err)

	ph, args := buildInClause(categoryIDs)
	query := `SELECT ` + contentColumns + ` FROM content c` + contentJoins + `
		WHERE c.id IN (SELECT content_id FROM content_categories WHERE category_id IN (` + ph + `))
		ORDER BY c.id`

	items, err = queryAndScan(ctx, db.conn, query, args, scanContent)
	if err != nil {
		return nil, fmt.Errorf("query content in categories: %w", err)
	}
	if err = db.attachCategories(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// PopularContent returns titles watched at least once with their watch count since the given time.
func (db *DB) PopularContent(ctx context.Context, since time.Time) (items []recommend.PopularItem, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("select", "content_popular", time.Now(), &err)

	query := `SELECT ` + contentColumns + `, COALESCE(rw.recent_count, 0)
		FROM content c` + contentJoins + `
		LEFT JOIN (SELECT content_id, COUNT(*) AS recent_count
			FROM watch_events WHERE watched_at >= ? GROUP BY content_id) rw ON rw.content_id = c.id
		WHERE w.watch_count > 0
		ORDER BY c.id`

	items, err = queryAndScan(ctx, db.conn, query, []any{since.UTC()}, func(rows *sql.Rows) (recommend.PopularItem, error) {
		var item recommend.PopularItem
		c, err := scanContentWith(rows, &item.RecentWatches)
		item.Content = c
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("query popular content: %w", err)
	}

	contents := make([]models.Content, len(items))
	for i := range items {
		contents[i] = items[i].Content
	}
	if err = db.attachCategories(ctx, contents); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Content = contents[i]
	}
	return items, nil
}

// CatalogContent returns the whole catalog, newest (highest id) first.
func (db *DB) CatalogContent(ctx context.Context) (items []models.Content, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("select", "content", time.Now(), &err)

	query := `SELECT ` + contentColumns + ` FROM content c` + contentJoins + ` ORDER BY c.id DESC`
	items, err = queryAndScan(ctx, db.conn, query, nil, scanContent)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	if err = db.attachCategories(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// ContentByID wraps models.ErrNotFound when the content does not exist.
func (db *DB) ContentByID(ctx context.Context, contentID int64) (*models.Content, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT ` + contentColumns + ` FROM content c` + contentJoins + ` WHERE c.id = ?`
	items, err := queryAndScan(ctx, db.conn, query, []any{contentID}, scanContent)
	if err != nil {
		return nil, fmt.Errorf("query content: %w", err)
	}
	if len(items) == 0 {
		return nil, notFound("content", contentID)
	}
	if err := db.attachCategories(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// attachCategories fills Categories on every item, ordered by name.
func (db *DB) attachCategories(ctx context.Context, items []models.Content) error {
	if len(items) == 0 {
		return nil
	}

	index := make(map[int64]int, len(items))
	ids := make([]int64, 0, len(items))
	for i := range items {
		items[i].Categories = nil
		if _, ok := index[items[i].ID]; !ok {
			ids = append(ids, items[i].ID)
		}
		index[items[i].ID] = i
	}

	type link struct {
		contentID int64
		category  models.Category
	}

	for _, chunk := range chunkIDs(ids, inClauseChunk) {
		ph, args := buildInClause(chunk)
		links, err := queryAndScan(ctx, db.conn,
			`SELECT cc.content_id, k.id, k.name
			FROM content_categories cc
			JOIN categories k ON k.id = cc.category_id
			WHERE cc.content_id IN (`+ph+`)
			ORDER BY cc.content_id, k.name, k.id`,
			args,
			func(rows *sql.Rows) (link, error) {
				var l link
				err := rows.Scan(&l.contentID, &l.category.ID, &l.category.Name)
				return l, err
			})
		if err != nil {
			return fmt.Errorf("query content categories: %w", err)
		}
		for _, l := range links {
			i := index[l.contentID]
			items[i].Categories = append(items[i].Categories, l.category)
		}
	}
	return nil
}

func scanContent(rows *sql.Rows) (models.Content, error) {
	return scanContentWith(rows)
}

// scanContentWith scans contentColumns followed by any extra destinations.
func scanContentWith(rows *sql.Rows, extra ...any) (models.Content, error) {
	var (
		c        models.Content
		kind     string
		year     sql.NullInt64
		duration sql.NullInt64
		avg      sql.NullFloat64
	)
	dest := []any{
		&c.ID, &c.Title, &kind, &c.Description, &year, &duration,
		&c.Language, &c.CreatedAt, &avg, &c.RatingCount, &c.WatchCount,
	}
	if err := rows.Scan(append(dest, extra...)...); err != nil {
		return models.Content{}, err
	}
	c.Kind = models.ContentKind(kind)
	c.Year = intPtr(year)
	c.DurationMinutes = intPtr(duration)
	c.AvgRating = floatPtr(avg)
	return c, nil
}
