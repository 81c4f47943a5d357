// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adrkit/adrkit/internal/api/middleware"
)

// Handler builds the HTTP handler with the canonical middleware stack and
// the full route table.
func (s *Server) Handler() http.Handler {
	cfg := s.cfg()

	r := middleware.NewRouter(middleware.StackConfig{
		EnableCORS:     true,
		AllowedOrigins: cfg.AllowedOrigins,

		EnableSecurityHeaders: true,
		CSP:                   middleware.DefaultCSP,

		EnableMetrics:  true,
		TracingService: serviceName(cfg.OTelEnabled),
		EnableLogging:  true,

		EnableRateLimit:    true,
		RateLimitPerMinute: cfg.RateLimit,
	})

	s.registerPublicRoutes(r)
	s.registerAPIRoutes(r)

	return r
}

// serviceName returns the tracing service name, or empty to disable the
// tracing middleware entirely.
func serviceName(otelEnabled bool) string {
	if !otelEnabled {
		return ""
	}
	return "adrkit-api"
}

func (s *Server) registerPublicRoutes(r chi.Router) {
	r.Get("/healthz", s.healthManager.ServeHealth)
	r.Get("/readyz", s.healthManager.ServeReady)
}

func (s *Server) registerAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/records", s.handleListRecords)
		r.Get("/records/{number}", s.handleGetRecord)
		r.Get("/records/{number}/raw", s.handleGetRecordRaw)
		r.Get("/lint", s.handleLint)
		r.Get("/openapi.yaml", s.handleOpenAPI)

		// The scan trigger mutates the index; it carries auth and its
		// own tighter rate limit.
		r.With(s.authMiddleware, middleware.ScanRateLimit()).
			Post("/scan", s.handleScan)
	})

	r.Handle("/files/*", http.StripPrefix("/files/", s.secureFileServer()))
}
