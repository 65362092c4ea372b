// Metior - GA4 Reporting Cache Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metior

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPrometheusMetrics_PassesThroughResponse(t *testing.T) {
	handler := PrometheusMetrics(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	})

	req := httptest.NewRequest(http.MethodGet, "/traffic", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("Expected body to pass through, got %q", rec.Body.String())
	}
}

func TestMetricsResponseWriter_DefaultsToOK(t *testing.T) {
	var captured int
	handler := PrometheusMetrics(func(w http.ResponseWriter, r *http.Request) {
		// No explicit WriteHeader; wrapper must record 200
		_, _ = w.Write([]byte("implicit"))
		captured = w.(*metricsResponseWriter).statusCode
	})

	req := httptest.NewRequest(http.MethodGet, "/top-countries", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if captured != http.StatusOK {
		t.Errorf("Expected recorded status 200, got %d", captured)
	}
}
