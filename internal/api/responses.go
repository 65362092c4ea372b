// Metior - GA4 Reporting Cache Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metior

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/metior/internal/logging"
)

// errorResponse is the wire shape for all failed requests.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON serializes data and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError writes the error payload. The message is sent to the client
// as-is, so upstream failure detail reaches API consumers unchanged.
func respondError(w http.ResponseWriter, r *http.Request, status int, err error) {
	logger := logging.Ctx(r.Context())
	logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
