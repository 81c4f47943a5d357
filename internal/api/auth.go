// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/adrkit/adrkit/internal/auth"
	"github.com/adrkit/adrkit/internal/log"
)

// authMiddleware enforces API token authentication on mutating routes.
// Without a configured token the daemon stays open, matching its local-first
// use; read routes are never guarded.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.cfg().APIToken
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		logger := log.FromContext(r.Context()).With().Str("component", "auth").Logger()

		reqToken := auth.ExtractToken(r)
		if reqToken == "" {
			logger.Warn().Str("event", "auth.missing_header").Msg("authorization header missing")
			writeUnauthorized(w)
			return
		}

		if !auth.AuthorizeToken(reqToken, token) {
			logger.Warn().Str("event", "auth.invalid_token").Msg("invalid api token")
			writeUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}
