// SPDX-License-Identifier: MIT

// Package auth implements API token checks for the HTTP surface.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// ExtractToken retrieves the API token from the request.
// Accepted carriers, in order:
//  1. Authorization: Bearer <token>
//  2. Header: X-API-Token
//
// Query parameters are never accepted; tokens in URLs end up in proxy and
// browser logs.
func ExtractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	if t := r.Header.Get("X-API-Token"); t != "" {
		return t
	}
	return ""
}

// AuthorizeToken returns true if got matches expected using constant-time
// comparison. Empty tokens are always treated as unauthorized.
func AuthorizeToken(got, expected string) bool {
	if strings.TrimSpace(expected) == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

// AuthorizeRequest extracts a token from r and validates it against
// expectedToken.
func AuthorizeRequest(r *http.Request, expectedToken string) bool {
	if r == nil {
		return false
	}
	return AuthorizeToken(ExtractToken(r), expectedToken)
}
