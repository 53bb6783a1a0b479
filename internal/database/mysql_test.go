// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package database

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/sugoi/internal/config"
	"github.com/tomtom215/sugoi/internal/models"
)

func newMockMySQL(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := NewFromConn(conn, &config.DatabaseConfig{Driver: config.DriverMySQL, QueryTimeout: time.Second})
	require.NoError(t, err)
	return db, mock
}

func TestMySQLDialect_DataSource(t *testing.T) {
	t.Parallel()

	dsn, err := mysqlDialect{}.dataSource(&config.DatabaseConfig{DSN: "sugoi:secret@tcp(db:3306)/sugoi"})
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
	assert.True(t, strings.HasPrefix(dsn, "sugoi:secret@tcp(db:3306)/sugoi?"), dsn)

	_, err = mysqlDialect{}.dataSource(&config.DatabaseConfig{DSN: "not a dsn"})
	assert.Error(t, err)

	_, err = mysqlDialect{}.dataSource(&config.DatabaseConfig{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDialectStatements(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"INSERT IGNORE INTO favorites (profile_id, content_id, added_at) VALUES (?, ?, ?)",
		mysqlDialect{}.insertIgnore("favorites", "profile_id", "content_id", "added_at"))
	assert.Equal(t,
		"INSERT INTO categories (name) VALUES (?) ON CONFLICT DO NOTHING",
		duckDialect{}.insertIgnore("categories", "name"))

	assert.Contains(t, mysqlDialect{}.upsertRating(), "ON DUPLICATE KEY UPDATE")
	assert.Contains(t, duckDialect{}.upsertRating(), "ON CONFLICT (profile_id, content_id)")

	assert.Empty(t, mysqlDialect{}.checkpoint())
	assert.False(t, mysqlDialect{}.returning())
	assert.True(t, duckDialect{}.returning())

	for _, stmt := range (mysqlDialect{}).schema() {
		assert.Contains(t, stmt, "ENGINE=InnoDB")
	}
}

func TestMySQL_CreateCategory(t *testing.T) {
	t.Parallel()
	db, mock := newMockMySQL(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO categories (name) VALUES (?)")).
		WithArgs("Action").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM categories WHERE name = ?")).
		WithArgs("Action").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Action"))

	cat, err := db.CreateCategory(context.Background(), "Action")
	require.NoError(t, err)
	assert.Equal(t, int64(1), cat.ID)
	assert.Equal(t, "Action", cat.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQL_SetRating(t *testing.T) {
	t.Parallel()

	t.Run("upserts inside a transaction", func(t *testing.T) {
		db, mock := newMockMySQL(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM profiles WHERE id = ?")).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM content WHERE id = ?")).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
		mock.ExpectExec("ON DUPLICATE KEY UPDATE").
			WithArgs(int64(1), int64(2), 4, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		r, err := db.SetRating(context.Background(), 1, 2, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, r.Score)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing profile rolls back", func(t *testing.T) {
		db, mock := newMockMySQL(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM profiles WHERE id = ?")).
			WithArgs(int64(9)).
			WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
		mock.ExpectRollback()

		_, err := db.SetRating(context.Background(), 9, 2, 4)
		assert.ErrorIs(t, err, models.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMySQL_RecordWatchUsesLastInsertID(t *testing.T) {
	t.Parallel()
	db, mock := newMockMySQL(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM profiles")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM content")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery("SELECT id, watched_seconds, watched_at FROM watch_events.*episode_id IS NULL").
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "watched_seconds", "watched_at"}))
	mock.ExpectExec("INSERT INTO watch_events").
		WithArgs(int64(1), int64(2), nil, 90, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	ev, created, err := db.RecordWatch(context.Background(), WatchInput{ProfileID: 1, ContentID: 2, WatchedSeconds: 90})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(42), ev.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQL_DedupeWatchEvents(t *testing.T) {
	t.Parallel()
	db, mock := newMockMySQL(t)

	mock.ExpectBegin()
	mock.ExpectQuery("HAVING COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery("ROW_NUMBER\\(\\) OVER").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7).AddRow(9))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM watch_events WHERE id IN (?, ?)")).
		WithArgs(int64(7), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM watch_events")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))
	mock.ExpectCommit()

	result, err := db.DedupeWatchEvents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Groups)
	assert.Equal(t, 2, result.Removed)
	assert.Equal(t, 3, result.Remaining)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQL_CategoryMeanRatingDecimal(t *testing.T) {
	t.Parallel()
	db, mock := newMockMySQL(t)

	// MySQL returns AVG over integers as DECIMAL text.
	mock.ExpectQuery("SELECT AVG\\(r.score\\) FROM ratings").
		WithArgs(int64(1), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow([]byte("4.5000")))

	mean, err := db.CategoryMeanRating(context.Background(), 1, 3)
	require.NoError(t, err)
	require.NotNil(t, mean)
	assert.InDelta(t, 4.5, *mean, 1e-9)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQL_QueryErrorIsWrapped(t *testing.T) {
	t.Parallel()
	db, mock := newMockMySQL(t)

	boom := errors.New("connection reset")
	mock.ExpectQuery("SELECT content_id FROM watch_events").WillReturnError(boom)

	_, err := db.SeenContentIDs(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "query seen content")
}

func TestMySQL_CheckpointIsNoop(t *testing.T) {
	t.Parallel()
	db, mock := newMockMySQL(t)

	require.NoError(t, db.Checkpoint(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
