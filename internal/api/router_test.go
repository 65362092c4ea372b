// Metior - GA4 Reporting Cache Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metior

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/metior/internal/report"
)

func newTestRouter(client *fakeReportClient) http.Handler {
	return Router(newTestHandler(client), []string{"*"})
}

func TestRouterHome(t *testing.T) {
	router := newTestRouter(&fakeReportClient{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Status   string `json:"status"`
		Property string `json:"property"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if payload.Status != "ok" {
		t.Errorf("expected status ok, got %q", payload.Status)
	}
	if payload.Property != "properties/123456" {
		t.Errorf("expected qualified property name, got %q", payload.Property)
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	router := newTestRouter(&fakeReportClient{result: resultWithRows()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/realtime-active", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header on report responses")
	}
}

func TestRouterCacheFlush(t *testing.T) {
	client := &fakeReportClient{result: resultWithRows(report.Row{Metrics: []string{"9"}})}
	router := newTestRouter(client)

	// Populate, flush, then the next request must refetch
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/realtime-active", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cache/flush", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("flush failed: %d", rec.Code)
	}

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/realtime-active", nil))

	if client.realtimeCalls != 2 {
		t.Errorf("expected refetch after flush, got %d upstream calls", client.realtimeCalls)
	}
}

func TestRouterCacheStats(t *testing.T) {
	client := &fakeReportClient{result: resultWithRows()}
	router := newTestRouter(client)

	// One miss then one hit
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/top-countries", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/top-countries", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cache/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("stats failed: %d", rec.Code)
	}

	var stats struct {
		Hits      int64 `json:"hits"`
		Misses    int64 `json:"misses"`
		TotalKeys int64 `json:"totalKeys"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("invalid JSON stats: %v", err)
	}
	if stats.Misses != 1 || stats.Hits != 1 {
		t.Errorf("expected 1 hit and 1 miss, got hits=%d misses=%d", stats.Hits, stats.Misses)
	}
	if stats.TotalKeys != 1 {
		t.Errorf("expected 1 cached key, got %d", stats.TotalKeys)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(&fakeReportClient{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("expected Prometheus exposition output")
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(&fakeReportClient{})

	req := httptest.NewRequest(http.MethodOptions, "/realtime-active", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard CORS origin, got %q", got)
	}
}

func TestRouterUnknownPath(t *testing.T) {
	router := newTestRouter(&fakeReportClient{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
