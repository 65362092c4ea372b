// Metior - GA4 Reporting Cache Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metior

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/metior/internal/cache"
	"github.com/tomtom215/metior/internal/config"
	"github.com/tomtom215/metior/internal/ga4"
	"github.com/tomtom215/metior/internal/report"
)

// fakeReportClient records calls and serves canned results.
type fakeReportClient struct {
	result *report.Result
	err    error

	realtimeCalls int
	reportCalls   int
	lastDims      []string
	lastMetrics   []string
	lastLimit     int64
	lastDateRange ga4.DateRange
}

func (f *fakeReportClient) RunRealtimeReport(ctx context.Context, dimensions, metricNames []string, limit int64) (*report.Result, error) {
	f.realtimeCalls++
	f.lastDims = dimensions
	f.lastMetrics = metricNames
	f.lastLimit = limit
	return f.result, f.err
}

func (f *fakeReportClient) RunReport(ctx context.Context, dateRange ga4.DateRange, dimensions, metricNames []string, limit int64) (*report.Result, error) {
	f.reportCalls++
	f.lastDateRange = dateRange
	f.lastDims = dimensions
	f.lastMetrics = metricNames
	f.lastLimit = limit
	return f.result, f.err
}

func newTestHandler(client ga4.ReportClient) *Handler {
	cfg := &config.Config{}
	cfg.GA4.PropertyID = "123456"
	cfg.Cache.RealtimeTTL = 5 * time.Second
	cfg.Cache.HistoricalTTL = 30 * time.Second
	return NewHandler(cfg, client, cache.New(cfg.Cache.RealtimeTTL))
}

func resultWithRows(rows ...report.Row) *report.Result {
	return &report.Result{Rows: rows, RowCount: len(rows)}
}

func TestRealtimeActivePayload(t *testing.T) {
	client := &fakeReportClient{result: resultWithRows(
		report.Row{Metrics: []string{"3.0"}},
		report.Row{Metrics: []string{"2"}},
	)}
	h := newTestHandler(client)

	req := httptest.NewRequest(http.MethodGet, "/realtime-active", nil)
	rec := httptest.NewRecorder()
	h.RealtimeActive(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		TotalActive int    `json:"totalActive"`
		FetchedAt   string `json:"fetchedAt"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if payload.TotalActive != 5 {
		t.Errorf("expected totalActive 5, got %d", payload.TotalActive)
	}
	if _, err := time.Parse("2006-01-02T15:04:05Z", payload.FetchedAt); err != nil {
		t.Errorf("fetchedAt not in expected format: %q", payload.FetchedAt)
	}
	if len(client.lastMetrics) != 1 || client.lastMetrics[0] != "activeUsers" {
		t.Errorf("unexpected metrics requested: %v", client.lastMetrics)
	}
}

func TestRealtimeActiveCacheHitSkipsUpstream(t *testing.T) {
	client := &fakeReportClient{result: resultWithRows(report.Row{Metrics: []string{"7"}})}
	h := newTestHandler(client)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.RealtimeActive(rec, httptest.NewRequest(http.MethodGet, "/realtime-active", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d failed: %d", i, rec.Code)
		}
	}

	if client.realtimeCalls != 1 {
		t.Errorf("expected 1 upstream call across cached requests, got %d", client.realtimeCalls)
	}
}

func TestUpstreamErrorPassedThroughVerbatim(t *testing.T) {
	upstreamMsg := "429 Exhausted property tokens for quota group"
	client := &fakeReportClient{err: &ga4.APIError{StatusCode: 429, Message: upstreamMsg}}
	h := newTestHandler(client)

	rec := httptest.NewRecorder()
	h.TopCountries(rec, httptest.NewRequest(http.MethodGet, "/top-countries", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON error response: %v", err)
	}
	if payload.Error != upstreamMsg {
		t.Errorf("expected error message %q, got %q", upstreamMsg, payload.Error)
	}
}

func TestUpstreamErrorNotCached(t *testing.T) {
	client := &fakeReportClient{err: &ga4.APIError{StatusCode: 503, Message: "503 backend unavailable"}}
	h := newTestHandler(client)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.RealtimePages(rec, httptest.NewRequest(http.MethodGet, "/realtime-pages", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("request %d: expected 500, got %d", i, rec.Code)
		}
	}

	// Each failed request must reach upstream; failures are never cached
	if client.realtimeCalls != 2 {
		t.Errorf("expected 2 upstream calls, got %d", client.realtimeCalls)
	}

	// Recovery: a later success replaces the error path immediately
	client.err = nil
	client.result = resultWithRows(report.Row{Dimensions: []string{"Home"}, Metrics: []string{"4"}})
	rec := httptest.NewRecorder()
	h.RealtimePages(rec, httptest.NewRequest(http.MethodGet, "/realtime-pages", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected recovery with 200, got %d", rec.Code)
	}
}

func TestTrafficLimitClamping(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int64
	}{
		{"default", "", 100},
		{"explicit", "?limit=250", 250},
		{"above cap", "?limit=50000", 10000},
		{"below floor", "?limit=0", 1},
		{"unparseable", "?limit=abc", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeReportClient{result: resultWithRows()}
			h := newTestHandler(client)

			rec := httptest.NewRecorder()
			h.Traffic(rec, httptest.NewRequest(http.MethodGet, "/traffic"+tt.query, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if client.lastLimit != tt.want {
				t.Errorf("expected upstream limit %d, got %d", tt.want, client.lastLimit)
			}
		})
	}
}

func TestURLsDateRangesCacheSeparately(t *testing.T) {
	client := &fakeReportClient{result: resultWithRows(
		report.Row{Dimensions: []string{"https://example.com/"}, Metrics: []string{"12"}},
	)}
	h := newTestHandler(client)

	h.URLs(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/urls", nil))
	h.URLs(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/urls?start_date=30daysAgo", nil))
	h.URLs(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/urls", nil))

	// Two distinct date ranges, third request hits the first entry
	if client.reportCalls != 2 {
		t.Errorf("expected 2 upstream calls for 2 distinct ranges, got %d", client.reportCalls)
	}
	if client.lastDateRange.StartDate != "30daysAgo" {
		t.Errorf("second range not forwarded: %+v", client.lastDateRange)
	}
}

func TestURLsDefaultDateRange(t *testing.T) {
	client := &fakeReportClient{result: resultWithRows()}
	h := newTestHandler(client)

	h.URLs(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/urls", nil))

	if client.lastDateRange.StartDate != "7daysAgo" || client.lastDateRange.EndDate != "today" {
		t.Errorf("unexpected default range: %+v", client.lastDateRange)
	}
	if client.lastLimit != 1000 {
		t.Errorf("expected fixed limit 1000, got %d", client.lastLimit)
	}
}

func TestTrafficPayloadShape(t *testing.T) {
	client := &fakeReportClient{result: resultWithRows(
		report.Row{Dimensions: []string{"google", "organic"}, Metrics: []string{"42.0"}},
		report.Row{Dimensions: []string{"(direct)"}, Metrics: []string{"17"}},
	)}
	h := newTestHandler(client)

	rec := httptest.NewRecorder()
	h.Traffic(rec, httptest.NewRequest(http.MethodGet, "/traffic", nil))

	var payload struct {
		Rows []struct {
			Source   string `json:"source"`
			Medium   string `json:"medium"`
			Sessions int    `json:"sessions"`
		} `json:"rows"`
		RowCount  int    `json:"rowCount"`
		FetchedAt string `json:"fetchedAt"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}

	if payload.RowCount != 2 || len(payload.Rows) != 2 {
		t.Fatalf("expected 2 rows, got rowCount=%d len=%d", payload.RowCount, len(payload.Rows))
	}
	if payload.Rows[0].Source != "google" || payload.Rows[0].Medium != "organic" || payload.Rows[0].Sessions != 42 {
		t.Errorf("row 0 mismatch: %+v", payload.Rows[0])
	}
	// Short dimension row keeps the source, medium falls back
	if payload.Rows[1].Source != "(direct)" || payload.Rows[1].Medium != "(unknown)" {
		t.Errorf("row 1 mismatch: %+v", payload.Rows[1])
	}
}

func TestTopCountriesQueryShape(t *testing.T) {
	client := &fakeReportClient{result: resultWithRows()}
	h := newTestHandler(client)

	h.TopCountries(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/top-countries", nil))

	if len(client.lastDims) != 1 || client.lastDims[0] != "country" {
		t.Errorf("unexpected dimensions: %v", client.lastDims)
	}
	if client.lastLimit != 50 {
		t.Errorf("expected limit 50, got %d", client.lastLimit)
	}
}
