// Metior - GA4 Reporting Cache Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metior

package api

import (
	"net/http"
	"strconv"

	"github.com/tomtom215/metior/internal/ga4"
)

const (
	// defaultStartDate and defaultEndDate are GA4 relative date keywords,
	// resolved by the Data API in the property's timezone.
	defaultStartDate = "7daysAgo"
	defaultEndDate   = "today"

	defaultLimit = 100
	minLimit     = 1
	maxLimit     = 10000
)

// parseDateRange extracts start_date and end_date from the request,
// applying relative-date defaults. Values are passed to the Data API
// unvalidated; it rejects malformed dates with its own error message.
func parseDateRange(r *http.Request) ga4.DateRange {
	dr := ga4.DateRange{StartDate: defaultStartDate, EndDate: defaultEndDate}

	if v := r.URL.Query().Get("start_date"); v != "" {
		dr.StartDate = v
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		dr.EndDate = v
	}

	return dr
}

// parseLimit reads the limit parameter, clamped to the Data API's row cap.
// Unparseable values fall back to the default rather than erroring,
// matching the lenient contract of the report endpoints.
func parseLimit(r *http.Request) int {
	limit := getIntParam(r, "limit", defaultLimit)

	if limit < minLimit {
		limit = minLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return limit
}

// getIntParam reads an integer query parameter with a default value.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}
