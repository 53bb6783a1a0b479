// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// SQLStore implements Store on the audit_events table. The table is created
// by the database package, so the same store serves DuckDB and MySQL.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates a store on an open connection pool.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const eventColumns = `id, occurred_at, event_type, outcome, profile_id, action, resource,
	method, path, status, remote_addr, request_id, metadata`

// Save persists an audit event.
func (s *SQLStore) Save(ctx context.Context, event *Event) error {
	metadata := "{}"
	if len(event.Metadata) > 0 {
		data, err := json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("marshal audit metadata: %w", err)
		}
		metadata = string(data)
	}

	var profileID sql.NullInt64
	if event.ProfileID != nil {
		profileID = sql.NullInt64{Int64: *event.ProfileID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Timestamp.UTC(), string(event.Type), string(event.Outcome), profileID,
		event.Action, event.Resource, event.Method, event.Path, event.Status,
		event.RemoteAddr, event.RequestID, metadata,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// Get retrieves an event by ID.
func (s *SQLStore) Get(ctx context.Context, id string) (*Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM audit_events WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("query audit event: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query audit event: %w", err)
		}
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	return scanEvent(rows)
}

// Query retrieves events matching the filter, newest first.
func (s *SQLStore) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	where, args := buildFilterConditions(filter)
	query := `SELECT ` + eventColumns + ` FROM audit_events` + where + ` ORDER BY occurred_at DESC, id DESC`

	// MySQL has no OFFSET without LIMIT, so an offset-only filter gets a very large limit.
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = 1 << 31
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

// Count returns the number of events matching the filter.
func (s *SQLStore) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	where, args := buildFilterConditions(filter)

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_events`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count audit events: %w", err)
	}
	return n, nil
}

// Delete removes events older than the given time.
func (s *SQLStore) Delete(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM audit_events WHERE occurred_at < ?`, olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete audit events: %w", err)
	}
	return res.RowsAffected()
}

// buildFilterConditions returns a " WHERE ..." clause (or "") and its arguments.
func buildFilterConditions(filter QueryFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	if len(filter.Types) > 0 {
		conditions = append(conditions, buildSliceCondition("event_type", filter.Types, &args))
	}
	if filter.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, string(filter.Outcome))
	}
	if filter.ProfileID != nil {
		conditions = append(conditions, "profile_id = ?")
		args = append(args, *filter.ProfileID)
	}
	if filter.RequestID != "" {
		conditions = append(conditions, "request_id = ?")
		args = append(args, filter.RequestID)
	}
	if filter.StartTime != nil {
		conditions = append(conditions, "occurred_at >= ?")
		args = append(args, filter.StartTime.UTC())
	}
	if filter.EndTime != nil {
		conditions = append(conditions, "occurred_at <= ?")
		args = append(args, filter.EndTime.UTC())
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// buildSliceCondition builds "column IN (?, ...)" for string-like values.
func buildSliceCondition[T ~string](column string, values []T, args *[]any) string {
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		*args = append(*args, string(v))
	}
	return column + " IN (" + strings.Join(placeholders, ", ") + ")"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var (
		e         Event
		eventType string
		outcome   string
		profileID sql.NullInt64
		metadata  sql.NullString
	)
	err := row.Scan(&e.ID, &e.Timestamp, &eventType, &outcome, &profileID, &e.Action, &e.Resource,
		&e.Method, &e.Path, &e.Status, &e.RemoteAddr, &e.RequestID, &metadata)
	if err != nil {
		return nil, fmt.Errorf("scan audit event: %w", err)
	}

	e.Type = EventType(eventType)
	e.Outcome = Outcome(outcome)
	if profileID.Valid {
		id := profileID.Int64
		e.ProfileID = &id
	}
	if metadata.Valid && metadata.String != "" && metadata.String != "{}" {
		if err := json.Unmarshal([]byte(metadata.String), &e.Metadata); err != nil {
			return nil, errors.Join(fmt.Errorf("decode audit metadata for %s", e.ID), err)
		}
	}
	return &e, nil
}
