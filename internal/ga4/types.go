// Metior - GA4 Reporting Cache Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metior

package ga4

import "fmt"

// DateRange bounds a historical report query. Values follow the Data API
// conventions: ISO dates ("2026-01-31") or relative forms ("7daysAgo",
// "today", "yesterday"). The API itself validates them; Metior passes them
// through untouched.
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// dimension and metric name the requested report columns on the wire.
type dimension struct {
	Name string `json:"name"`
}

type metric struct {
	Name string `json:"name"`
}

// runReportBody is the request body for the v1beta runReport and
// runRealtimeReport methods. Realtime requests carry no dateRanges.
// Limit uses proto3 JSON int64 encoding (decimal string).
type runReportBody struct {
	DateRanges []DateRange `json:"dateRanges,omitempty"`
	Dimensions []dimension `json:"dimensions,omitempty"`
	Metrics    []metric    `json:"metrics"`
	Limit      int64       `json:"limit,omitempty,string"`
}

// wireValue is a single dimension or metric cell; the Data API wraps every
// cell value in an object.
type wireValue struct {
	Value string `json:"value"`
}

// wireRow is one report row: dimension values and metric values are
// positionally aligned with the requested column lists.
type wireRow struct {
	DimensionValues []wireValue `json:"dimensionValues"`
	MetricValues    []wireValue `json:"metricValues"`
}

// reportResponse is the subset of the runReport / runRealtimeReport
// response Metior consumes.
type reportResponse struct {
	Rows     []wireRow `json:"rows"`
	RowCount int       `json:"rowCount"`
}

// apiErrorBody is the google.rpc error envelope returned on non-2xx.
type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// APIError is a failure reported by the GA4 Data API: invalid dimension
// names, authentication failure, quota exhaustion. The upstream message is
// carried verbatim so the HTTP layer can pass it through to callers.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

// Error returns the upstream message verbatim.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("GA4 Data API request failed with status %d", e.StatusCode)
}

func newDimensions(names []string) []dimension {
	out := make([]dimension, 0, len(names))
	for _, n := range names {
		out = append(out, dimension{Name: n})
	}
	return out
}

func newMetrics(names []string) []metric {
	out := make([]metric, 0, len(names))
	for _, n := range names {
		out = append(out, metric{Name: n})
	}
	return out
}
