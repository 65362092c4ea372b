// Metior - GA4 Reporting Cache Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metior

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/metior/internal/cache"
	"github.com/tomtom215/metior/internal/ga4"
	"github.com/tomtom215/metior/internal/metrics"
	"github.com/tomtom215/metior/internal/report"
)

// Fixed row limits for the endpoints that do not take a caller limit.
const (
	realtimePagesLimit int64 = 50
	urlsLimit          int64 = 1000
	topCountriesLimit  int64 = 50
)

// lookupOrCompute runs one cached report lookup. On a miss it invokes
// fetch, which must return the fully normalized payload with fetchedAt
// already stamped; the payload is cached as served, so the timestamp
// reflects when the data was fetched, not when it was last read.
//
// Concurrent misses for the same key each call fetch. The last writer
// wins and the duplicate upstream calls are bounded by the TTL window.
func (h *Handler) lookupOrCompute(endpoint, key string, ttl time.Duration, fetch func() (interface{}, error)) (interface{}, error) {
	hit := true
	value, err := h.cache.GetOrCompute(key, ttl, func() (interface{}, error) {
		hit = false
		return fetch()
	})
	if err != nil {
		metrics.RecordCacheLookup(endpoint, false)
		return nil, err
	}

	metrics.RecordCacheLookup(endpoint, hit)
	metrics.ReportCacheEntries.Set(float64(h.cache.Len()))
	return value, nil
}

// RealtimeActive returns the total active users over the last 30 minutes.
func (h *Handler) RealtimeActive(w http.ResponseWriter, r *http.Request) {
	key := cache.Key("realtime-active", nil)

	payload, err := h.lookupOrCompute("realtime-active", key, h.cfg.Cache.RealtimeTTL, func() (interface{}, error) {
		result, err := h.client.RunRealtimeReport(r.Context(), nil, []string{"activeUsers"}, 0)
		if err != nil {
			return nil, err
		}
		return report.ActiveUsers(result, report.Timestamp(time.Now())), nil
	})
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, payload)
}

// RealtimePages returns realtime active users grouped by page title.
func (h *Handler) RealtimePages(w http.ResponseWriter, r *http.Request) {
	key := cache.Key("realtime-pages", nil)

	payload, err := h.lookupOrCompute("realtime-pages", key, h.cfg.Cache.RealtimeTTL, func() (interface{}, error) {
		result, err := h.client.RunRealtimeReport(r.Context(), []string{"pageTitle"}, []string{"activeUsers"}, realtimePagesLimit)
		if err != nil {
			return nil, err
		}
		return report.Pages(result, report.Timestamp(time.Now())), nil
	})
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, payload)
}

// URLs returns historical page views grouped by full page URL.
func (h *Handler) URLs(w http.ResponseWriter, r *http.Request) {
	dateRange := parseDateRange(r)
	key := cache.Key("urls", dateRange)

	payload, err := h.lookupOrCompute("urls", key, h.cfg.Cache.HistoricalTTL, func() (interface{}, error) {
		result, err := h.client.RunReport(r.Context(), dateRange, []string{"pageLocation"}, []string{"screenPageViews"}, urlsLimit)
		if err != nil {
			return nil, err
		}
		return report.URLs(result, report.Timestamp(time.Now())), nil
	})
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, payload)
}

// trafficParams feeds the cache key for the traffic endpoint; the caller
// limit is part of the identity because it changes the row set.
type trafficParams struct {
	DateRange ga4.DateRange `json:"dateRange"`
	Limit     int           `json:"limit"`
}

// Traffic returns historical sessions grouped by source and medium.
func (h *Handler) Traffic(w http.ResponseWriter, r *http.Request) {
	params := trafficParams{DateRange: parseDateRange(r), Limit: parseLimit(r)}
	key := cache.Key("traffic", params)

	payload, err := h.lookupOrCompute("traffic", key, h.cfg.Cache.HistoricalTTL, func() (interface{}, error) {
		result, err := h.client.RunReport(r.Context(), params.DateRange, []string{"source", "medium"}, []string{"sessions"}, int64(params.Limit))
		if err != nil {
			return nil, err
		}
		return report.Traffic(result, report.Timestamp(time.Now())), nil
	})
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, payload)
}

// TopCountries returns realtime active users grouped by country.
func (h *Handler) TopCountries(w http.ResponseWriter, r *http.Request) {
	key := cache.Key("top-countries", nil)

	payload, err := h.lookupOrCompute("top-countries", key, h.cfg.Cache.RealtimeTTL, func() (interface{}, error) {
		result, err := h.client.RunRealtimeReport(r.Context(), []string{"country"}, []string{"activeUsers"}, topCountriesLimit)
		if err != nil {
			return nil, err
		}
		return report.Countries(result, report.Timestamp(time.Now())), nil
	})
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, payload)
}
