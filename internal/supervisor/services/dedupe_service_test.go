// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sugoi/internal/metrics"
	"github.com/tomtom215/sugoi/internal/models"
)

type mockDeduper struct {
	calls   atomic.Int32
	err     error
	removed int
}

func (m *mockDeduper) DedupeWatchEvents(ctx context.Context) (*models.DedupeResult, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return &models.DedupeResult{Groups: 1, Removed: m.removed, Remaining: 10, RanAt: time.Now()}, nil
}

// runs starts svc and returns a channel receiving each pass's error.
func runs(t *testing.T, svc *DedupeService) (<-chan error, context.CancelFunc, <-chan error) {
	t.Helper()
	passes := make(chan error, 16)
	svc.onRun = func(_ *models.DedupeResult, err error) {
		select {
		case passes <- err:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()
	return passes, cancel, done
}

func TestNewDedupeService_Defaults(t *testing.T) {
	svc := NewDedupeService(&mockDeduper{}, DedupeServiceConfig{}, zerolog.Nop())
	if svc.config.Interval != time.Hour {
		t.Errorf("expected default interval 1h, got %v", svc.config.Interval)
	}
	if svc.config.RunTimeout != 5*time.Minute {
		t.Errorf("expected default run timeout 5m, got %v", svc.config.RunTimeout)
	}
	if svc.String() != "dedupe-scheduler" {
		t.Errorf("unexpected name %q", svc.String())
	}
}

func TestDedupeService_RunOnStartup(t *testing.T) {
	db := &mockDeduper{removed: 3}
	before := testutil.ToFloat64(metrics.DedupeRemoved)

	svc := NewDedupeService(db, DedupeServiceConfig{Interval: time.Hour, RunOnStartup: true}, zerolog.Nop())
	passes, cancel, done := runs(t, svc)

	select {
	case err := <-passes:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("startup pass did not run")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if got := testutil.ToFloat64(metrics.DedupeRemoved) - before; got != 3 {
		t.Errorf("expected removed counter +3, got %v", got)
	}
}

func TestDedupeService_TicksAndSurvivesErrors(t *testing.T) {
	db := &mockDeduper{err: errors.New("database is locked")}
	svc := NewDedupeService(db, DedupeServiceConfig{Interval: 10 * time.Millisecond}, zerolog.Nop())
	passes, cancel, done := runs(t, svc)

	for i := 0; i < 2; i++ {
		select {
		case err := <-passes:
			if err == nil {
				t.Fatal("expected pass error")
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("pass %d did not run", i+1)
		}
	}

	cancel()
	<-done
	if db.calls.Load() < 2 {
		t.Errorf("expected at least 2 calls, got %d", db.calls.Load())
	}
}

func TestDedupeService_NoStartupRun(t *testing.T) {
	db := &mockDeduper{}
	svc := NewDedupeService(db, DedupeServiceConfig{Interval: time.Hour}, zerolog.Nop())
	_, cancel, done := runs(t, svc)

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done
	if db.calls.Load() != 0 {
		t.Errorf("expected no passes before the first tick, got %d", db.calls.Load())
	}
}
