// Metior - GA4 Reporting Cache Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metior

package cache

import (
	"crypto/sha256"
	"fmt"

	"github.com/goccy/go-json"
)

// Key derives the deterministic cache fingerprint for a query.
//
// The fingerprint is the endpoint name joined with a truncated SHA-256 of
// the JSON-encoded parameter struct. Struct fields marshal in declaration
// order, so logically identical queries always hash to the same key while
// any differing parameter changes it. Parameterless endpoints (nil params)
// use the bare endpoint name, matching their single cacheable result.
//
// Key is pure: it never touches the cache and has no side effects.
func Key(endpoint string, params interface{}) string {
	if params == nil {
		return endpoint
	}

	data, err := json.Marshal(params)
	if err != nil {
		// Fallback to a readable key; %+v of a struct is still deterministic.
		return fmt.Sprintf("%s:%+v", endpoint, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", endpoint, hash[:16])
}
