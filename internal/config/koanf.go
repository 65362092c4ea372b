// Metior - GA4 Reporting Cache Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metior

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/metior/config.yaml",
	"/etc/metior/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config
// file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all sensible default values.
// These defaults are applied first, then overridden by config file and env.
func defaultConfig() *Config {
	return &Config{
		GA4: GA4Config{
			PropertyID:        "",
			CredentialsFile:   "service_account.json",
			Endpoint:          "",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 10,
		},
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    5000,
			Timeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			// Realtime data changes fast; keep the default window small to
			// still meaningfully reduce Data API calls.
			RealtimeTTL:   5 * time.Second,
			HistoricalTTL: 30 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML config file (if present)
//  3. Environment variables: override any setting
//
// Precedence: ENV > file > defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process values that arrive as plain strings from the environment.
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}
	if err := processSecondFields(k); err != nil {
		return nil, fmt.Errorf("failed to process duration fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the first file found, or empty string if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as comma-separated
// slices when they arrive as plain strings from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML or defaults) - leave it alone.
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// secondConfigPaths lists duration paths whose environment variables carry
// bare second counts (the *_SEC naming predates the Go rewrite), e.g.
// GA4_CACHE_TTL_SEC=5. A bare integer is rewritten into a parseable
// duration; values already carrying a unit ("30s", "2m") pass through.
var secondConfigPaths = []string{
	"cache.realtime_ttl",
	"cache.historical_ttl",
	"ga4.timeout",
	"server.timeout",
}

// processSecondFields normalizes bare-integer duration values to seconds.
func processSecondFields(k *koanf.Koanf) error {
	for _, path := range secondConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		if _, err := strconv.Atoi(strVal); err != nil {
			continue // already has a unit, or garbage for Unmarshal to reject
		}
		if err := k.Set(path, strVal+"s"); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables return the empty string and are skipped, so random
// environment variables cannot pollute the config.
//
// Examples:
//   - GA4_PROPERTY_ID -> ga4.property_id
//   - GA4_SA_FILE -> ga4.credentials_file
//   - GA4_CACHE_TTL_SEC -> cache.realtime_ttl
func envTransformFunc(key string) string {
	envMappings := map[string]string{
		// GA4 mappings (GA4_SA_FILE and GA4_CACHE_TTL_SEC keep their
		// pre-rewrite names for deployment compatibility)
		"ga4_property_id":         "ga4.property_id",
		"ga4_sa_file":             "ga4.credentials_file",
		"ga4_endpoint":            "ga4.endpoint",
		"ga4_timeout_sec":         "ga4.timeout",
		"ga4_requests_per_second": "ga4.requests_per_second",

		// Cache mappings
		"ga4_cache_ttl_sec":        "cache.realtime_ttl",
		"cache_historical_ttl_sec": "cache.historical_ttl",

		// Server mappings
		"http_host":        "server.host",
		"http_port":        "server.port",
		"http_timeout_sec": "server.timeout",

		// Security mappings
		"cors_origins": "security.cors_origins",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
