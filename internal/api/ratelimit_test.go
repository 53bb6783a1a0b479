// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClientRateLimiter_Allow(t *testing.T) {
	rl := NewClientRateLimiter(2)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"), "burst exhausted")
	assert.True(t, rl.Allow("10.0.0.2"), "clients have separate buckets")

	clock = clock.Add(30 * time.Second)
	assert.True(t, rl.Allow("10.0.0.1"), "one token refills every 30s")
	assert.False(t, rl.Allow("10.0.0.1"))
}

func TestClientRateLimiter_SweepsIdleClients(t *testing.T) {
	rl := NewClientRateLimiter(1)
	clock := time.Now()
	rl.now = func() time.Time { return clock }

	rl.Allow("a")
	rl.Allow("b")
	assert.Len(t, rl.limiters, 2)

	clock = clock.Add(2 * staleLimiterAge)
	rl.Allow("c")
	assert.Len(t, rl.limiters, 1)
	assert.Contains(t, rl.limiters, "c")
}

func TestClientRateLimiter_MinimumBurst(t *testing.T) {
	rl := NewClientRateLimiter(0.5)
	assert.Equal(t, 1, rl.burst)
}

func TestClientRateLimiter_Middleware(t *testing.T) {
	rl := NewClientRateLimiter(1)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/maintenance/dedupe", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, call("192.0.2.1:1000").Code)
	rec := call("192.0.2.1:2000")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "port is not part of the client key")
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusNoContent, call("192.0.2.2:1000").Code)
}
