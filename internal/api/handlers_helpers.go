// Orderhub - Live Order Broadcasting for the Dinehall Restaurant Platform
// Copyright 2026 Dinehall Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dinehall/orderhub

package api

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/dinehall/orderhub/internal/logging"
	"github.com/dinehall/orderhub/internal/models"
)

// respondJSON sends an APIResponse with proper headers.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

// respondError sends an error response in the APIResponse envelope.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		// Sanitize error output to prevent log injection attacks
		logging.Error().Str("code", sanitizeLogValue(code)).Str("error", sanitizeLogValue(err.Error())).Msg("API error")
	}
	respondJSON(w, status, models.NewError(code, message))
}

// respondSuccess sends a success response in the APIResponse envelope.
func respondSuccess(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, models.NewSuccess(data))
}

// sanitizeLogValue strips control characters that could forge log lines.
func sanitizeLogValue(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}
