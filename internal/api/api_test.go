// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/sugoi/internal/audit"
	"github.com/tomtom215/sugoi/internal/config"
	"github.com/tomtom215/sugoi/internal/database"
	"github.com/tomtom215/sugoi/internal/middleware"
	"github.com/tomtom215/sugoi/internal/models"
	"github.com/tomtom215/sugoi/internal/recommend"
	"github.com/tomtom215/sugoi/internal/recommend/strategies"
)

// testDBSemaphore serializes DuckDB-backed tests.
var testDBSemaphore = make(chan struct{}, 1)

// testServer bundles a router over a seeded in-memory database.
type testServer struct {
	db       *database.DB
	handler  http.Handler
	auditLog *audit.Logger
	store    *audit.MemoryStore

	profileID  int64
	categories map[string]int64
	content    map[string]int64
}

func newTestServer(t *testing.T, routerCfg RouterConfig) *testServer {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{
		Driver:       config.DriverDuckDB,
		Path:         ":memory:",
		MaxMemory:    "512MB",
		Threads:      1,
		QueryTimeout: 30 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ts := &testServer{
		db:         db,
		categories: make(map[string]int64),
		content:    make(map[string]int64),
	}
	ts.seed(t)

	engineCfg := recommend.DefaultConfig()
	engineCfg.Seed = 7
	engine, err := recommend.NewEngine(engineCfg, db, zerolog.Nop())
	require.NoError(t, err)
	strategies.Register(engine, db, engineCfg.Signals)

	ts.store = audit.NewMemoryStore(100)
	ts.auditLog = audit.NewLogger(ts.store, nil)

	h := NewHandler(db, engine, HandlerOptions{
		AuditLog:         ts.auditLog,
		PerfMon:          middleware.NewPerformanceMonitor(100, time.Second),
		RecommendTimeout: 5 * time.Second,
	})
	ts.handler = NewRouter(h, routerCfg).Setup()
	return ts
}

func (ts *testServer) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	for _, name := range []string{"Action", "Drama", "Comedy"} {
		c, err := ts.db.CreateCategory(ctx, name)
		require.NoError(t, err)
		ts.categories[name] = c.ID
	}

	titles := []struct {
		title string
		cats  []string
	}{
		{"Blade Dance", []string{"Action"}},
		{"Tears of Spring", []string{"Drama"}},
		{"Laugh Track", []string{"Comedy"}},
		{"Iron Heart", []string{"Action", "Drama"}},
		{"Quiet Shore", []string{"Drama"}},
	}
	for _, tt := range titles {
		var ids []int64
		for _, c := range tt.cats {
			ids = append(ids, ts.categories[c])
		}
		content, err := ts.db.CreateContent(ctx, database.ContentInput{
			Title:       tt.title,
			Kind:        models.KindSeries,
			CategoryIDs: ids,
		})
		require.NoError(t, err)
		ts.content[tt.title] = content.ID
	}

	profile, err := ts.db.CreateProfile(ctx, 1, "Aiko", models.AudienceAdult)
	require.NoError(t, err)
	ts.profileID = profile.ID
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// envelope decodes the APIResponse with Data left raw.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func defaultRouterConfig() RouterConfig {
	return RouterConfig{CORSAllowedOrigins: []string{"*"}}
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
