// SPDX-License-Identifier: MIT

package config

import (
	"time"
)

// ServerConfig holds HTTP server runtime settings shared by the API and
// metrics listeners.
type ServerConfig struct {
	// ListenAddr is the address to listen on (e.g. ":8080").
	ListenAddr string

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out response writes.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum time to wait for the next request.
	IdleTimeout time.Duration

	// MaxHeaderBytes bounds request header parsing.
	MaxHeaderBytes int

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

const (
	defaultReadTimeout     = 30 * time.Second
	defaultWriteTimeout    = 60 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultMaxHeaderBytes  = 1 << 20 // 1 MB
	defaultShutdownTimeout = 15 * time.Second
)

// ParseServerConfig resolves server runtime settings with explicit
// precedence: ENV > resolved config > defaults. The listen address comes
// from cfg; timeouts are tunable via environment only since they are
// operational knobs, not document-tooling settings.
func ParseServerConfig(cfg Config) ServerConfig {
	maxHeaderBytes := ParseInt("ADRKIT_SERVER_MAX_HEADER_BYTES", defaultMaxHeaderBytes)
	if maxHeaderBytes <= 0 {
		maxHeaderBytes = defaultMaxHeaderBytes
	}

	shutdownTimeout := ParseDuration("ADRKIT_SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	if shutdownTimeout < 3*time.Second {
		shutdownTimeout = 3 * time.Second
	}

	return ServerConfig{
		ListenAddr:      cfg.Listen,
		ReadTimeout:     ParseDuration("ADRKIT_SERVER_READ_TIMEOUT", defaultReadTimeout),
		WriteTimeout:    ParseDuration("ADRKIT_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
		IdleTimeout:     ParseDuration("ADRKIT_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		MaxHeaderBytes:  maxHeaderBytes,
		ShutdownTimeout: shutdownTimeout,
	}
}
