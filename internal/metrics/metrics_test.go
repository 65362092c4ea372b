// Metior - GA4 Reporting Cache Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metior

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordAPIRequest tests API request metric recording
func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/urls", "200"))

	RecordAPIRequest("GET", "/urls", "200", 15*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/urls", "200"))
	if after != before+1 {
		t.Errorf("expected counter to increment by 1, got %f -> %f", before, after)
	}
}

// TestTrackActiveRequest tests the active request gauge
func TestTrackActiveRequest(t *testing.T) {
	base := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != base+1 {
		t.Errorf("expected gauge %f after increment, got %f", base+1, got)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != base {
		t.Errorf("expected gauge %f after decrement, got %f", base, got)
	}
}

// TestRecordCacheLookup tests hit and miss counters
func TestRecordCacheLookup(t *testing.T) {
	hitsBefore := testutil.ToFloat64(ReportCacheHits.WithLabelValues("traffic"))
	missesBefore := testutil.ToFloat64(ReportCacheMisses.WithLabelValues("traffic"))

	RecordCacheLookup("traffic", true)
	RecordCacheLookup("traffic", false)
	RecordCacheLookup("traffic", false)

	if got := testutil.ToFloat64(ReportCacheHits.WithLabelValues("traffic")); got != hitsBefore+1 {
		t.Errorf("expected 1 new hit, got %f -> %f", hitsBefore, got)
	}
	if got := testutil.ToFloat64(ReportCacheMisses.WithLabelValues("traffic")); got != missesBefore+2 {
		t.Errorf("expected 2 new misses, got %f -> %f", missesBefore, got)
	}
}

// TestRecordUpstreamRequest tests error counting by status code
func TestRecordUpstreamRequest(t *testing.T) {
	before := testutil.ToFloat64(UpstreamRequestErrors.WithLabelValues("runReport", "429"))

	RecordUpstreamRequest("runReport", 429, 20*time.Millisecond, errors.New("quota exhausted"))
	RecordUpstreamRequest("runReport", 200, 20*time.Millisecond, nil)

	after := testutil.ToFloat64(UpstreamRequestErrors.WithLabelValues("runReport", "429"))
	if after != before+1 {
		t.Errorf("expected error counter to increment only on failure, got %f -> %f", before, after)
	}
}
