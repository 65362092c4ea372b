// Metior - GA4 Reporting Cache Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metior

// Package config defines Metior's configuration model and its layered
// loading via Koanf v2 (defaults -> optional YAML file -> environment).
package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config is the root configuration for the Metior server.
type Config struct {
	GA4      GA4Config      `koanf:"ga4"`
	Server   ServerConfig   `koanf:"server"`
	Cache    CacheConfig    `koanf:"cache"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// GA4Config configures the Google Analytics Data API client.
type GA4Config struct {
	// PropertyID is the numeric GA4 property id, e.g. "123456789".
	PropertyID string `koanf:"property_id"`

	// CredentialsFile is the path to the service-account JSON key file.
	CredentialsFile string `koanf:"credentials_file"`

	// Endpoint overrides the Data API base URL. Empty means the public
	// https://analyticsdata.googleapis.com endpoint; tests point this at a
	// local httptest server.
	Endpoint string `koanf:"endpoint"`

	// Timeout bounds a single Data API request.
	Timeout time.Duration `koanf:"timeout"`

	// RequestsPerSecond paces outbound Data API calls against GA4 quotas.
	// Zero disables pacing.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

// Property returns the Data API resource name for the configured property.
func (c GA4Config) Property() string {
	return "properties/" + c.PropertyID
}

// Load reads configuration using Koanf with layered sources.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// CacheConfig configures the report cache freshness windows.
// Realtime endpoints reflect near-current activity and cache briefly;
// historical endpoints aggregate day-level data and can cache longer.
type CacheConfig struct {
	RealtimeTTL   time.Duration `koanf:"realtime_ttl"`
	HistoricalTTL time.Duration `koanf:"historical_ttl"`
}

// SecurityConfig configures the caller-facing surface.
type SecurityConfig struct {
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig configures the zerolog facade.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values the server cannot start
// without. It returns the first problem found.
func (c *Config) Validate() error {
	if c.GA4.PropertyID == "" {
		return fmt.Errorf("ga4.property_id is required (set GA4_PROPERTY_ID to the numeric property id)")
	}
	if _, err := strconv.ParseUint(c.GA4.PropertyID, 10, 64); err != nil {
		return fmt.Errorf("ga4.property_id must be numeric, got %q", c.GA4.PropertyID)
	}
	if c.GA4.CredentialsFile == "" {
		return fmt.Errorf("ga4.credentials_file is required (set GA4_SA_FILE)")
	}
	if c.GA4.Timeout <= 0 {
		return fmt.Errorf("ga4.timeout must be positive, got %s", c.GA4.Timeout)
	}
	if c.GA4.RequestsPerSecond < 0 {
		return fmt.Errorf("ga4.requests_per_second must not be negative, got %f", c.GA4.RequestsPerSecond)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Cache.RealtimeTTL <= 0 {
		return fmt.Errorf("cache.realtime_ttl must be positive, got %s", c.Cache.RealtimeTTL)
	}
	if c.Cache.HistoricalTTL <= 0 {
		return fmt.Errorf("cache.historical_ttl must be positive, got %s", c.Cache.HistoricalTTL)
	}
	return nil
}
