// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/sugoi/internal/logging"
)

func TestLogger_LogAndFlush(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(100)
	logger := NewLogger(store, nil)

	pid := int64(7)
	logger.Log(&Event{Type: EventTypeWatchRecorded, Outcome: OutcomeSuccess, ProfileID: &pid})
	logger.Log(&Event{Type: EventTypeRatingSet, Outcome: OutcomeFailure})

	if got := logger.Pending(); got != 2 {
		t.Fatalf("Pending() = %d, want 2", got)
	}
	if err := logger.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := logger.Pending(); got != 0 {
		t.Errorf("Pending() after flush = %d, want 0", got)
	}

	events, err := logger.Query(context.Background(), QueryFilter{ProfileID: &pid})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events for profile, want 1", len(events))
	}
	if events[0].ID == "" {
		t.Error("expected generated ID")
	}
	if events[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}

	n, err := logger.Count(context.Background(), QueryFilter{})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}

func TestLogger_Disabled(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(10)
	logger := NewLogger(store, &Config{Enabled: false, BufferSize: 4})
	logger.Log(&Event{Type: EventTypeFavoriteAdded})

	if logger.Pending() != 0 {
		t.Error("disabled logger should not queue events")
	}

	logger.SetEnabled(true)
	logger.Log(&Event{Type: EventTypeFavoriteAdded})
	if logger.Pending() != 1 {
		t.Error("re-enabled logger should queue events")
	}
}

func TestLogger_DropsWhenBufferFull(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(10)
	logger := NewLogger(store, &Config{Enabled: true, BufferSize: 2})
	for i := 0; i < 5; i++ {
		logger.Log(&Event{Type: EventTypeFavoriteRemoved})
	}

	if got := logger.Pending(); got != 2 {
		t.Errorf("Pending() = %d, want 2", got)
	}
	if err := logger.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if store.Len() != 2 {
		t.Errorf("store has %d events, want 2", store.Len())
	}
}

func TestLogger_ServeDrainsOnStop(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(100)
	logger := NewLogger(store, &Config{Enabled: true, BufferSize: 16, FlushInterval: time.Hour})
	for i := 0; i < 3; i++ {
		logger.Log(&Event{Type: EventTypeDedupe})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- logger.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop")
	}

	if store.Len() != 3 {
		t.Errorf("store has %d events after stop, want 3", store.Len())
	}
}

func TestLogger_ServeFlushesOnInterval(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(100)
	logger := NewLogger(store, &Config{Enabled: true, BufferSize: 16, FlushInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = logger.Serve(ctx) }()

	logger.Log(&Event{Type: EventTypeRatingSet})

	deadline := time.Now().Add(5 * time.Second)
	for store.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("event was not written by the background writer")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMiddleware_RecordsRouteAndProfile(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(100)
	logger := NewLogger(store, nil)

	r := chi.NewRouter()
	r.With(logger.Middleware(EventTypeFavoriteAdded)).
		Put("/profiles/{profileID}/favorites/{contentID}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})
	r.With(logger.Middleware(EventTypeRatingSet)).
		Put("/profiles/{profileID}/ratings/{contentID}", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "bad score", http.StatusBadRequest)
		})

	req := httptest.NewRequest(http.MethodPut, "/profiles/12/favorites/34", nil)
	req = req.WithContext(logging.ContextWithRequestID(req.Context(), "req-1"))
	req.RemoteAddr = "10.0.0.5:5555"
	r.ServeHTTP(httptest.NewRecorder(), req)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/profiles/12/ratings/34", nil))

	if err := logger.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	events, err := store.Query(context.Background(), QueryFilter{RequestID: "req-1"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if e.Type != EventTypeFavoriteAdded || e.Outcome != OutcomeSuccess || e.Status != http.StatusCreated {
		t.Errorf("unexpected event %+v", e)
	}
	if e.Action != "PUT /profiles/{profileID}/favorites/{contentID}" {
		t.Errorf("Action = %q", e.Action)
	}
	if e.ProfileID == nil || *e.ProfileID != 12 {
		t.Errorf("ProfileID = %v, want 12", e.ProfileID)
	}
	if e.Metadata["content_id"] != "34" {
		t.Errorf("Metadata = %v", e.Metadata)
	}
	if e.RemoteAddr != "10.0.0.5" {
		t.Errorf("RemoteAddr = %q", e.RemoteAddr)
	}

	failed, err := store.Query(context.Background(), QueryFilter{Outcome: OutcomeFailure})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(failed) != 1 || failed[0].Status != http.StatusBadRequest {
		t.Errorf("failed events = %+v", failed)
	}
}

func TestOutcomeForStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   Outcome
	}{
		{http.StatusOK, OutcomeSuccess},
		{http.StatusNoContent, OutcomeSuccess},
		{http.StatusNotFound, OutcomeFailure},
		{http.StatusInternalServerError, OutcomeFailure},
	}
	for _, tt := range tests {
		if got := OutcomeForStatus(tt.status); got != tt.want {
			t.Errorf("OutcomeForStatus(%d) = %s, want %s", tt.status, got, tt.want)
		}
	}
}
