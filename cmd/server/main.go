// Metior - GA4 Reporting Cache Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metior

// Package main is the entry point for the Metior server.
//
// Metior is a read-through caching proxy in front of the Google Analytics
// Data API (GA4). Dashboards poll Metior's flat JSON endpoints instead of
// the Data API directly; Metior absorbs the polling rate with short-lived
// in-memory caching and paces its own upstream calls against GA4 quotas.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. GA4 Client: Service-account auth, request pacing, circuit breaker
//  3. Report Cache: In-memory TTL cache shared by all endpoints
//  4. HTTP Server: Chi router with the report and operational endpoints
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables
//   - Config file (config.yaml)
//   - Built-in defaults
//
// Required settings:
//   - GA4_PROPERTY_ID: numeric GA4 property id
//   - GA4_SA_FILE: service-account JSON key path (default: service_account.json)
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//
// # Example Usage
//
//	export GA4_PROPERTY_ID=123456789
//	export GA4_SA_FILE=/etc/metior/service_account.json
//	./metior
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/metior/internal/api"
	"github.com/tomtom215/metior/internal/cache"
	"github.com/tomtom215/metior/internal/config"
	"github.com/tomtom215/metior/internal/ga4"
	"github.com/tomtom215/metior/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("property", cfg.GA4.Property()).
		Dur("realtime_ttl", cfg.Cache.RealtimeTTL).
		Dur("historical_ttl", cfg.Cache.HistoricalTTL).
		Msg("Configuration loaded")

	client, err := ga4.NewClient(&cfg.GA4)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize GA4 client")
	}
	protected := ga4.NewCircuitBreakerClient(client)

	reportCache := cache.New(cfg.Cache.RealtimeTTL)
	handler := api.NewHandler(cfg, protected, reportCache)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.Router(handler, cfg.Security.CORSOrigins),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("Starting Metior")
		serverErr <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server error")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}

	logging.Info().Msg("Application stopped gracefully")
}
