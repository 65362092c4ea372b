// Metior - GA4 Reporting Cache Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metior

/*
Package middleware provides HTTP middleware components for the application.

This package implements infrastructure middleware for request ID tracking
and Prometheus metrics instrumentation. Both are written as
http.HandlerFunc wrappers and adapted to Chi's middleware signature by the
api package.

Key Components:

  - Request ID: UUID-based request tracking, propagated via X-Request-ID
  - Prometheus Metrics: HTTP request/response instrumentation

Usage Example - Request ID:

	http.HandleFunc("/realtime-active",
	    middleware.RequestID(handler),
	)

	// Access request ID in handler
	func handler(w http.ResponseWriter, r *http.Request) {
	    requestID := middleware.GetRequestID(r.Context())
	    _ = requestID
	}

Thread Safety:

All middleware components are thread-safe:
  - Request ID uses context.Context (immutable)
  - Prometheus metrics use atomic operations

See Also:

  - internal/api: HTTP handlers wrapped by middleware
  - internal/metrics: Prometheus metrics definitions
*/
package middleware
