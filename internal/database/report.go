// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package database

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/tomtom215/sugoi/internal/models"
)

// DefaultReportTopN is used when BuildReport receives topN <= 0.
const DefaultReportTopN = 5

// BuildReport summarizes catalog size, rating sentiment and the most active
// profiles, titles and categories.
func (db *DB) BuildReport(ctx context.Context, topN int) (report *models.Report, err error) {
	if topN <= 0 {
		topN = DefaultReportTopN
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("select", "report", time.Now(), &err)

	report = &models.Report{GeneratedAt: now()}

	if report.Totals, err = db.reportTotals(ctx); err != nil {
		return nil, err
	}
	if report.Ratings, err = db.ratingBreakdown(ctx); err != nil {
		return nil, err
	}
	if report.TopProfiles, err = db.topProfiles(ctx, topN); err != nil {
		return nil, err
	}
	if report.TopContent, err = db.topContent(ctx, topN); err != nil {
		return nil, err
	}
	if report.TopCategories, err = db.topCategories(ctx, topN); err != nil {
		return nil, err
	}
	report.Status = reportStatus(db.Ping(ctx), report)

	return report, nil
}

func (db *DB) reportTotals(ctx context.Context) (models.ReportTotals, error) {
	var t models.ReportTotals
	targets := []struct {
		table string
		dest  *int
	}{
		{"profiles", &t.Profiles},
		{"content", &t.Content},
		{"categories", &t.Categories},
		{"watch_events", &t.WatchEvents},
		{"ratings", &t.Ratings},
		{"favorites", &t.Favorites},
	}
	for _, target := range targets {
		n, err := count(ctx, db.conn, "SELECT COUNT(*) FROM "+target.table)
		if err != nil {
			return t, fmt.Errorf("count %s: %w", target.table, err)
		}
		*target.dest = n
	}
	return t, nil
}

func (db *DB) ratingBreakdown(ctx context.Context) (models.RatingBreakdown, error) {
	var (
		b   models.RatingBreakdown
		avg sql.NullFloat64
	)
	err := db.conn.QueryRowContext(ctx, `SELECT
			COUNT(CASE WHEN score >= 4 THEN 1 END),
			COUNT(CASE WHEN score <= 2 THEN 1 END),
			COUNT(CASE WHEN score = 3 THEN 1 END),
			AVG(score)
		FROM ratings`).Scan(&b.Likes, &b.Dislikes, &b.Neutral, &avg)
	if err != nil {
		return b, fmt.Errorf("query rating breakdown: %w", err)
	}
	b.Average = floatPtr(avg)
	return b, nil
}

// activityJoins attaches per-key watch, rating and favorite counts; %[1]s is the key column.
const activityJoins = `
		LEFT JOIN (SELECT %[1]s, COUNT(*) AS n FROM watch_events GROUP BY %[1]s) w ON w.%[1]s = %[2]s
		LEFT JOIN (SELECT %[1]s, COUNT(*) AS n FROM ratings GROUP BY %[1]s) r ON r.%[1]s = %[2]s
		LEFT JOIN (SELECT %[1]s, COUNT(*) AS n FROM favorites GROUP BY %[1]s) f ON f.%[1]s = %[2]s`

func (db *DB) topProfiles(ctx context.Context, limit int) ([]models.RankedProfile, error) {
	query := `SELECT id, name, watches, ratings, favorites, interactions FROM (
			SELECT p.id, p.name,
				COALESCE(w.n, 0) AS watches,
				COALESCE(r.n, 0) AS ratings,
				COALESCE(f.n, 0) AS favorites,
				COALESCE(w.n, 0) + COALESCE(r.n, 0) + COALESCE(f.n, 0) AS interactions
			FROM profiles p` + fmt.Sprintf(activityJoins, "profile_id", "p.id") + `
		) ranked
		WHERE interactions > 0
		ORDER BY interactions DESC, id
		LIMIT ?`

	out, err := queryAndScan(ctx, db.conn, query, []any{limit}, func(rows *sql.Rows) (models.RankedProfile, error) {
		var p models.RankedProfile
		err := rows.Scan(&p.ProfileID, &p.Name, &p.Watches, &p.Ratings, &p.Favorites, &p.Interactions)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("query top profiles: %w", err)
	}
	return out, nil
}

func (db *DB) topContent(ctx context.Context, limit int) ([]models.RankedContent, error) {
	query := `SELECT id, title, watches, ratings, favorites, interactions, avg_score FROM (
			SELECT c.id, c.title,
				COALESCE(w.n, 0) AS watches,
				COALESCE(r.n, 0) AS ratings,
				COALESCE(f.n, 0) AS favorites,
				COALESCE(w.n, 0) + COALESCE(r.n, 0) + COALESCE(f.n, 0) AS interactions,
				s.avg_score
			FROM content c` + fmt.Sprintf(activityJoins, "content_id", "c.id") + `
			LEFT JOIN (SELECT content_id, AVG(score) AS avg_score FROM ratings GROUP BY content_id) s ON s.content_id = c.id
		) ranked
		WHERE interactions > 0
		ORDER BY interactions DESC, id
		LIMIT ?`

	out, err := queryAndScan(ctx, db.conn, query, []any{limit}, func(rows *sql.Rows) (models.RankedContent, error) {
		var (
			c   models.RankedContent
			avg sql.NullFloat64
		)
		err := rows.Scan(&c.ContentID, &c.Title, &c.Watches, &c.Ratings, &c.Favorites, &c.Interactions, &avg)
		c.AvgRating = floatPtr(avg)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("query top content: %w", err)
	}
	return out, nil
}

func (db *DB) topCategories(ctx context.Context, limit int) ([]models.RankedCategory, error) {
	query := `SELECT k.id, k.name, COUNT(DISTINCT cc.content_id) AS titles, COUNT(i.content_id) AS interactions
		FROM categories k
		JOIN content_categories cc ON cc.category_id = k.id
		LEFT JOIN (
			SELECT content_id FROM watch_events
			UNION ALL SELECT content_id FROM ratings
			UNION ALL SELECT content_id FROM favorites
		) i ON i.content_id = cc.content_id
		GROUP BY k.id, k.name
		HAVING COUNT(i.content_id) > 0
		ORDER BY interactions DESC, k.id
		LIMIT ?`

	out, err := queryAndScan(ctx, db.conn, query, []any{limit}, func(rows *sql.Rows) (models.RankedCategory, error) {
		var c models.RankedCategory
		err := rows.Scan(&c.CategoryID, &c.Name, &c.Content, &c.Interactions)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("query top categories: %w", err)
	}
	return out, nil
}

func reportStatus(pingErr error, r *models.Report) []models.ComponentStatus {
	dbStatus := models.ComponentStatus{Component: "database", OK: pingErr == nil, Detail: "reachable"}
	if pingErr != nil {
		dbStatus.Detail = pingErr.Error()
	}

	return []models.ComponentStatus{
		dbStatus,
		{
			Component: "catalog",
			OK:        r.Totals.Content > 0 && r.Totals.Categories > 0,
			Detail:    fmt.Sprintf("%d titles in %d categories", r.Totals.Content, r.Totals.Categories),
		},
		{
			Component: "activity",
			OK:        r.Totals.WatchEvents+r.Totals.Ratings+r.Totals.Favorites > 0,
			Detail: fmt.Sprintf("%d watches, %d ratings, %d favorites",
				r.Totals.WatchEvents, r.Totals.Ratings, r.Totals.Favorites),
		},
	}
}

// reportCSVHeader is the column layout of WriteReportCSV. Totals rows carry
// their metric in name and the count in value.
var reportCSVHeader = []string{
	"section", "rank", "id", "name", "watches", "ratings", "favorites", "interactions", "avg_rating", "value",
}

// WriteReportCSV writes r as one CSV table with a section column.
func WriteReportCSV(w io.Writer, r *models.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportCSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := func(section string, rank int, id int64, name string, watches, ratings, favorites, interactions int, avg *float64) []string {
		return []string{
			section, strconv.Itoa(rank), strconv.FormatInt(id, 10), name,
			strconv.Itoa(watches), strconv.Itoa(ratings), strconv.Itoa(favorites), strconv.Itoa(interactions),
			formatAvg(avg), "",
		}
	}
	metric := func(section, name, value string) []string {
		return []string{section, "", "", name, "", "", "", "", "", value}
	}

	records := [][]string{
		metric("totals", "profiles", strconv.Itoa(r.Totals.Profiles)),
		metric("totals", "content", strconv.Itoa(r.Totals.Content)),
		metric("totals", "categories", strconv.Itoa(r.Totals.Categories)),
		metric("totals", "watch_events", strconv.Itoa(r.Totals.WatchEvents)),
		metric("totals", "ratings", strconv.Itoa(r.Totals.Ratings)),
		metric("totals", "favorites", strconv.Itoa(r.Totals.Favorites)),
		metric("ratings", "likes", strconv.Itoa(r.Ratings.Likes)),
		metric("ratings", "dislikes", strconv.Itoa(r.Ratings.Dislikes)),
		metric("ratings", "neutral", strconv.Itoa(r.Ratings.Neutral)),
		metric("ratings", "average", formatAvg(r.Ratings.Average)),
	}
	for i, p := range r.TopProfiles {
		records = append(records, row("top_profiles", i+1, p.ProfileID, p.Name, p.Watches, p.Ratings, p.Favorites, p.Interactions, nil))
	}
	for i, c := range r.TopContent {
		records = append(records, row("top_content", i+1, c.ContentID, c.Title, c.Watches, c.Ratings, c.Favorites, c.Interactions, c.AvgRating))
	}
	for i, c := range r.TopCategories {
		rec := row("top_categories", i+1, c.CategoryID, c.Name, 0, 0, 0, c.Interactions, nil)
		rec[4], rec[5], rec[6] = "", "", ""
		rec[9] = strconv.Itoa(c.Content)
		records = append(records, rec)
	}
	for _, s := range r.Status {
		records = append(records, metric("status", s.Component, strconv.FormatBool(s.OK)))
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func formatAvg(avg *float64) string {
	if avg == nil {
		return ""
	}
	return strconv.FormatFloat(*avg, 'f', 2, 64)
}
