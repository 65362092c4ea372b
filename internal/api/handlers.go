// Metior - GA4 Reporting Cache Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metior

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/metior/internal/cache"
	"github.com/tomtom215/metior/internal/config"
	"github.com/tomtom215/metior/internal/ga4"
	"github.com/tomtom215/metior/internal/logging"
)

// Handler carries the dependencies shared by all HTTP endpoints.
type Handler struct {
	cfg       *config.Config
	client    ga4.ReportClient
	cache     *cache.Cache
	startTime time.Time
}

// NewHandler creates a handler backed by the given report client and cache.
func NewHandler(cfg *config.Config, client ga4.ReportClient, reportCache *cache.Cache) *Handler {
	return &Handler{
		cfg:       cfg,
		client:    client,
		cache:     reportCache,
		startTime: time.Now(),
	}
}

// homeResponse is the payload for the root endpoint.
type homeResponse struct {
	Status   string `json:"status"`
	Property string `json:"property"`
	Uptime   string `json:"uptime"`
}

// Home reports service identity and liveness.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, homeResponse{
		Status:   "ok",
		Property: h.cfg.GA4.Property(),
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
	})
}

// CacheStats exposes the cache hit/miss counters and entry count.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cache.GetStats())
}

// CacheFlush drops every cached report. The next request for each
// endpoint goes back to the Data API.
func (h *Handler) CacheFlush(w http.ResponseWriter, r *http.Request) {
	h.cache.Clear()
	logger := logging.Ctx(r.Context())
	logger.Info().Msg("Report cache flushed")
	writeJSON(w, http.StatusOK, map[string]string{"status": "flushed"})
}
