// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/adrkit/adrkit/internal/log"
)

// HeaderRequestID carries the request correlation ID on both directions.
const HeaderRequestID = "X-Request-ID"

// RequestID adds a unique ID to every request. An incoming X-Request-ID is
// preserved so upstream proxies keep their correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.New().String()
		}
		w.Header().Set(HeaderRequestID, reqID)
		ctx := log.ContextWithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
