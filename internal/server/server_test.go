package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/inkpage/internal/history"
	"github.com/iudanet/inkpage/internal/pagestore"
	"github.com/iudanet/inkpage/internal/server/middleware"
	"github.com/iudanet/inkpage/internal/server/storage/sqlite"
	"github.com/iudanet/inkpage/pkg/api"
)

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc := pagestore.New(store, logger, pagestore.WithHistory(history.NewRegistry(
		history.WithIdleTimeout(50*time.Millisecond),
	)))

	srv := httptest.NewServer(NewRouter(Options{
		Logger:  logger,
		Pages:   svc,
		Pinger:  store,
		Limiter: limiter,
		Version: "test",
	}))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestRouter_PageLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)
	base := srv.URL + "/api/v1/pages/example.com/blog/post-1"

	resp := call(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	var snap api.SnapshotResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.True(t, snap.First)

	resp = call(t, http.MethodPost, base+"/shapes", `{"p":"0,0;10,10"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, http.MethodPost, base+"/shapes", `{"p":"0,0;10,10"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = call(t, http.MethodGet, base+"/updates?since="+strconv.FormatInt(snap.NextUpdate, 10), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updates api.UpdatesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updates))
	require.Len(t, updates.Events, 1)
	assert.Equal(t, int64(0), updates.Events[0].Shape.ID)

	resp = call(t, http.MethodDelete, base+"/shapes", `{"p":"0,0;10,10"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, http.MethodPost, base+"/fade", `{"delta":0.1,"cutoff":0.5}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp = call(t, http.MethodGet, base, "")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.False(t, snap.First)
	assert.Empty(t, snap.Shapes)
	assert.Equal(t, int64(1), snap.NextID)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := call(t, http.MethodGet, srv.URL+HealthPath, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health api.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "test", health.Version)

	// Сначала запрос к странице, чтобы метрики HTTP появились
	call(t, http.MethodGet, srv.URL+"/api/v1/pages/home", "")

	resp = call(t, http.MethodGet, srv.URL+MetricsPath, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "inkpage_http_requests_total")
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := call(t, http.MethodPut, srv.URL+"/api/v1/pages/home/fade", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRouter_RateLimitAppliesToMutationsOnly(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(limiter.Stop)
	srv := newTestServer(t, limiter)

	resp := call(t, http.MethodPost, srv.URL+"/api/v1/pages/home/shapes", `{"p":"1,1"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, http.MethodPost, srv.URL+"/api/v1/pages/home/shapes", `{"p":"2,2"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	for i := 0; i < 3; i++ {
		resp = call(t, http.MethodGet, srv.URL+"/api/v1/pages/home", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode, "reads are not limited")
	}
}
