// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"net/http"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a generic error response.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

// writeUnauthorized writes a 401 Unauthorized response.
func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
}

// writeNotFound writes a 404 Not Found response.
func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
}

// writeConflict writes a 409 Conflict response with a retry hint.
func writeConflict(w http.ResponseWriter, detail string) {
	w.Header().Set("Retry-After", "30")
	writeJSON(w, http.StatusConflict, map[string]string{
		"error":  "conflict",
		"detail": detail,
	})
}

// writeUnavailable writes a 503 Service Unavailable response.
func writeUnavailable(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"error":  "unavailable",
		"detail": detail,
	})
}
