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

	"github.com/tomtom215/sugoi/internal/logging"
)

// inClauseChunk bounds the number of placeholders per IN list.
const inClauseChunk = 500

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// buildInClause builds a parameterized IN list.
//
// Example:
//
//	placeholders, args := buildInClause([]int64{3, 5, 8})
//	// placeholders = "?, ?, ?"
//	// args = []any{int64(3), int64(5), int64(8)}
func buildInClause(ids []int64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return placeholders(len(ids)), args
}

// chunkIDs splits ids into slices of at most size elements.
func chunkIDs(ids []int64, size int) [][]int64 {
	var chunks [][]int64
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}

// scanFunc is a function that scans a single row into a result type
type scanFunc[T any] func(*sql.Rows) (T, error)

// queryAndScan executes a query and scans all rows using the provided scan function
func queryAndScan[T any](ctx context.Context, q querier, query string, args []any, scan scanFunc[T]) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

func scanInt64(rows *sql.Rows) (int64, error) {
	var v int64
	err := rows.Scan(&v)
	return v, err
}

// scanRankedID reads (id, rank value) rows and keeps the id.
func scanRankedID(rows *sql.Rows) (int64, error) {
	var (
		id   int64
		rank float64
	)
	err := rows.Scan(&id, &rank)
	return id, err
}

// count runs a single-value COUNT query.
func count(ctx context.Context, q querier, query string, args ...any) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// insertID runs an INSERT and returns the generated id. query must not end
// with a RETURNING clause; it is appended for dialects that support it.
func (db *DB) insertID(ctx context.Context, q querier, query string, args ...any) (int64, error) {
	if db.dialect.returning() {
		var id int64
		if err := q.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// withTx runs fn in a transaction, retrying DuckDB write-write conflicts.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	const maxAttempts = 3

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = db.runTx(ctx, fn)
		if !isTransactionConflict(err) {
			return err
		}
		logging.Debug().Int("attempt", attempt).Err(err).Msg("Transaction conflict, retrying")

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(time.Duration(attempt) * 10 * time.Millisecond):
		}
	}
	return err
}

func (db *DB) runTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// exists reports whether query returns a positive count.
func exists(ctx context.Context, q querier, query string, args ...any) (bool, error) {
	n, err := count(ctx, q, query, args...)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func requireProfile(ctx context.Context, q querier, profileID int64) error {
	ok, err := exists(ctx, q, "SELECT COUNT(*) FROM profiles WHERE id = ?", profileID)
	if err != nil {
		return fmt.Errorf("check profile: %w", err)
	}
	if !ok {
		return notFound("profile", profileID)
	}
	return nil
}

func requireContent(ctx context.Context, q querier, contentID int64) error {
	ok, err := exists(ctx, q, "SELECT COUNT(*) FROM content WHERE id = ?", contentID)
	if err != nil {
		return fmt.Errorf("check content: %w", err)
	}
	if !ok {
		return notFound("content", contentID)
	}
	return nil
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	i := v.Int64
	return &i
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// now is the timestamp written to rows; DuckDB TIMESTAMP and MySQL DATETIME store it as UTC.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
