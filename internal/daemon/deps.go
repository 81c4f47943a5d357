// SPDX-License-Identifier: MIT

package daemon

import (
	"net/http"

	"github.com/rs/zerolog"
)

// Deps contains the dependencies required by the daemon Manager. Injecting
// them keeps the manager testable without real wiring.
type Deps struct {
	// Logger is the structured logger for the daemon.
	Logger zerolog.Logger

	// APIHandler is the HTTP handler for the API server.
	APIHandler http.Handler

	// MetricsHandler serves Prometheus metrics. Nil disables the metrics
	// listener.
	MetricsHandler http.Handler

	// MetricsAddr is the metrics listen address. Empty disables the
	// metrics listener.
	MetricsAddr string
}

// Validate checks that the required dependencies are present.
func (d *Deps) Validate() error {
	if d.Logger.GetLevel() == zerolog.Disabled {
		return ErrMissingLogger
	}
	if d.APIHandler == nil {
		return ErrMissingAPIHandler
	}
	return nil
}
