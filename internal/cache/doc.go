// Metior - GA4 Reporting Cache Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metior

/*
Package cache provides thread-safe in-memory caching with TTL support.

This package implements the read-through caching layer that shields the GA4
Data API from repeated identical report queries. Cached payloads are keyed by
a deterministic query fingerprint (see Key) and expire after a per-write TTL.

# Overview

The cache provides:
  - Thread-safe concurrent access (sync.RWMutex)
  - Per-write time-to-live so endpoints choose their own freshness window
  - Lazy expiration checking on Get operations (no background sweeper)
  - Hit/miss/eviction statistics for monitoring

# Expiry Policy

Entries are removed only when a Get observes them past their expiry; the
cache never sweeps in the background. Keys are drawn from a small set of
endpoints crossed with a bounded parameter space, so key count stays
practically bounded. There is no size-based eviction.

# Usage Example

	c := cache.New(5 * time.Second)
	key := cache.Key("traffic", params)
	payload, err := c.GetOrCompute(key, 30*time.Second, func() (interface{}, error) {
	    return fetchAndNormalize()
	})

# Concurrency

Get and SetWithTTL are individually atomic, but GetOrCompute does not
serialize concurrent misses for the same key: simultaneous misses fetch
independently and the last write wins. This is a deliberate trade-off of
simplicity over exactly-once fetch coalescing.
*/
package cache
