// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package audit

import (
	"context"
	"errors"
	"time"
)

// EventType categorizes audit events.
type EventType string

const (
	EventTypeWatchRecorded   EventType = "watch.recorded"
	EventTypeRatingSet       EventType = "rating.set"
	EventTypeFavoriteAdded   EventType = "favorite.added"
	EventTypeFavoriteRemoved EventType = "favorite.removed"
	EventTypeDedupe          EventType = "maintenance.dedupe"
	EventTypeContentChanged  EventType = "content.changed"
)

// Outcome indicates whether an action succeeded or failed.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// OutcomeForStatus maps an HTTP status to an outcome.
func OutcomeForStatus(status int) Outcome {
	if status >= 400 {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

// ErrEventNotFound is returned by Store.Get.
var ErrEventNotFound = errors.New("audit event not found")

// Event is one audited write request.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Outcome   Outcome   `json:"outcome"`

	// ProfileID is the profile the request acted on, if any.
	ProfileID *int64 `json:"profile_id,omitempty"`

	// Action is the route pattern, e.g. "POST /api/v1/profiles/{profileID}/watch".
	Action string `json:"action"`
	// Resource is the concrete request path.
	Resource string `json:"resource"`

	Method     string `json:"method"`
	Path       string `json:"path"`
	Status     int    `json:"status"`
	RemoteAddr string `json:"remote_addr"`
	RequestID  string `json:"request_id,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`
}

// Store persists audit events.
type Store interface {
	// Save persists an audit event.
	Save(ctx context.Context, event *Event) error

	// Get retrieves an event by ID.
	Get(ctx context.Context, id string) (*Event, error)

	// Query retrieves events matching the filter, newest first.
	Query(ctx context.Context, filter QueryFilter) ([]Event, error)

	// Count returns the number of events matching the filter.
	Count(ctx context.Context, filter QueryFilter) (int64, error)

	// Delete removes events older than the given time.
	Delete(ctx context.Context, olderThan time.Time) (int64, error)
}

// QueryFilter defines filtering options for audit queries.
type QueryFilter struct {
	Types     []EventType `json:"types,omitempty"`
	Outcome   Outcome     `json:"outcome,omitempty"`
	ProfileID *int64      `json:"profile_id,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	StartTime *time.Time  `json:"start_time,omitempty"`
	EndTime   *time.Time  `json:"end_time,omitempty"`

	// Limit is the maximum number of results; 0 means no limit.
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// DefaultQueryFilter returns a sensible default filter.
func DefaultQueryFilter() QueryFilter {
	return QueryFilter{Limit: 100}
}

// Matches reports whether event satisfies every criterion of f.
func (f *QueryFilter) Matches(event *Event) bool {
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if event.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Outcome != "" && event.Outcome != f.Outcome {
		return false
	}
	if f.ProfileID != nil && (event.ProfileID == nil || *event.ProfileID != *f.ProfileID) {
		return false
	}
	if f.RequestID != "" && event.RequestID != f.RequestID {
		return false
	}
	if f.StartTime != nil && event.Timestamp.Before(*f.StartTime) {
		return false
	}
	if f.EndTime != nil && event.Timestamp.After(*f.EndTime) {
		return false
	}
	return true
}
