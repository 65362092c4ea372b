// Metior - GA4 Reporting Cache Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metior

// Package report normalizes raw GA4 report results into the flat,
// JSON-serializable payloads Metior serves.
//
// GA4 rows arrive as parallel dimension-value and metric-value sequences
// that may be shorter than expected or missing entirely. The normalizer is
// total: malformed or absent values degrade to defaults (0 for metrics,
// "(unknown)" for dimensions) and never abort an otherwise successful
// report. Row order is preserved exactly as returned upstream; result caps
// are applied upstream via the request limit, never re-truncated here.
package report

import (
	"math"
	"strconv"
	"time"
)

// Unknown is the placeholder emitted for absent dimension values.
const Unknown = "(unknown)"

// Timestamp formats t as an ISO-8601 UTC string with second precision.
// The value is frozen into a payload when the cache entry is computed, so a
// cache hit reports when the data was fetched, not when it was served.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// CoerceMetric parses a raw metric value into a non-negative integer.
// GA4 reports metrics as decimal strings ("12.9", "5"); the value is parsed
// as a float and truncated. Any unparsable input, including the empty
// string standing in for an absent value, coerces to 0. Never fails.
func CoerceMetric(raw string) int {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return int(f)
}

// metricAt returns the coerced metric at position i, or 0 when the metric
// sequence is too short.
func metricAt(row Row, i int) int {
	if i >= len(row.Metrics) {
		return 0
	}
	return CoerceMetric(row.Metrics[i])
}

// dimensionAt returns the dimension value at position i verbatim, or
// Unknown when the dimension sequence is too short.
func dimensionAt(row Row, i int) string {
	if i >= len(row.Dimensions) {
		return Unknown
	}
	return row.Dimensions[i]
}

// ActiveUsers sums the first metric of every row into a single total.
// Used by realtime-active, which requests no dimensions.
func ActiveUsers(res *Result, fetchedAt string) ActiveUsersPayload {
	total := 0
	if res != nil {
		for _, row := range res.Rows {
			total += metricAt(row, 0)
		}
	}
	return ActiveUsersPayload{TotalActive: total, FetchedAt: fetchedAt}
}

// Pages emits one row per input row for the realtime-pages shape
// (pageTitle x activeUsers).
func Pages(res *Result, fetchedAt string) PagesPayload {
	rows := make([]PageRow, 0)
	if res != nil {
		for _, row := range res.Rows {
			rows = append(rows, PageRow{
				PageTitle:   dimensionAt(row, 0),
				ActiveUsers: metricAt(row, 0),
			})
		}
	}
	return PagesPayload{Rows: rows, FetchedAt: fetchedAt}
}

// URLs emits one row per input row for the urls shape
// (pageLocation x screenPageViews).
func URLs(res *Result, fetchedAt string) URLsPayload {
	rows := make([]URLRow, 0)
	if res != nil {
		for _, row := range res.Rows {
			rows = append(rows, URLRow{
				PageLocation:    dimensionAt(row, 0),
				ScreenPageViews: metricAt(row, 0),
			})
		}
	}
	return URLsPayload{Rows: rows, RowCount: len(rows), FetchedAt: fetchedAt}
}

// Traffic emits one row per input row for the traffic shape
// (source, medium x sessions). Missing dimension positions coerce to
// Unknown rather than failing.
func Traffic(res *Result, fetchedAt string) TrafficPayload {
	rows := make([]TrafficRow, 0)
	if res != nil {
		for _, row := range res.Rows {
			rows = append(rows, TrafficRow{
				Source:   dimensionAt(row, 0),
				Medium:   dimensionAt(row, 1),
				Sessions: metricAt(row, 0),
			})
		}
	}
	return TrafficPayload{Rows: rows, RowCount: len(rows), FetchedAt: fetchedAt}
}

// Countries emits one row per input row for the top-countries shape
// (country x activeUsers).
func Countries(res *Result, fetchedAt string) CountriesPayload {
	rows := make([]CountryRow, 0)
	if res != nil {
		for _, row := range res.Rows {
			rows = append(rows, CountryRow{
				Country:     dimensionAt(row, 0),
				ActiveUsers: metricAt(row, 0),
			})
		}
	}
	return CountriesPayload{Rows: rows, FetchedAt: fetchedAt}
}
