// SPDX-License-Identifier: MIT

// Package api provides the HTTP read surface of the daemon: scan status,
// indexed records, lint findings, the scan trigger and the generated index
// artifacts.
package api

import (
	"path/filepath"
	"time"

	"github.com/adrkit/adrkit/internal/config"
	"github.com/adrkit/adrkit/internal/health"
	"github.com/adrkit/adrkit/internal/jobs"
	"github.com/adrkit/adrkit/internal/library"
	"github.com/adrkit/adrkit/internal/ratelimit"
	"github.com/adrkit/adrkit/internal/resilience"
)

// scanBreakerName labels the scan circuit breaker in metrics.
const scanBreakerName = "scan"

// ConfigSource hands out the current configuration. Implemented by
// config.Holder; a static implementation serves tests.
type ConfigSource interface {
	Get() config.Config
}

// staticConfig adapts a plain Config value to ConfigSource.
type staticConfig struct{ cfg config.Config }

func (s staticConfig) Get() config.Config { return s.cfg }

// StaticConfig wraps a fixed configuration, for one-shot commands and tests.
func StaticConfig(cfg config.Config) ConfigSource { return staticConfig{cfg: cfg} }

// Server is the HTTP API server.
type Server struct {
	cfgSource ConfigSource
	runner    *jobs.Runner
	store     *library.Store

	healthManager *health.Manager
	scanLimiter   *ratelimit.Limiter
	cb            *resilience.CircuitBreaker
	startTime     time.Time
}

// ServerOption configures optional Server collaborators.
type ServerOption func(*Server)

// WithScanLimiter replaces the scan-trigger rate limiter (tests).
func WithScanLimiter(l *ratelimit.Limiter) ServerOption {
	return func(s *Server) { s.scanLimiter = l }
}

// New creates the API server. The runner serializes scans; the store serves
// index reads.
func New(cfgSource ConfigSource, runner *jobs.Runner, store *library.Store, opts ...ServerOption) *Server {
	cfg := cfgSource.Get()

	limiterCfg := ratelimit.DefaultConfig()
	if cfg.RateLimitBurst > 0 {
		limiterCfg.GlobalBurst = cfg.RateLimitBurst
		limiterCfg.PerIPBurst = cfg.RateLimitBurst
	}

	s := &Server{
		cfgSource:     cfgSource,
		runner:        runner,
		store:         store,
		healthManager: health.NewManager(cfg.Version),
		scanLimiter:   ratelimit.New(limiterCfg),
		cb:            resilience.NewCircuitBreaker(scanBreakerName, 3, 30*time.Second),
		startTime:     time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerHealthCheckers()
	return s
}

// HealthManager exposes the health manager so the daemon can register
// additional checkers.
func (s *Server) HealthManager() *health.Manager {
	return s.healthManager
}

// cfg returns the current configuration snapshot for one request.
func (s *Server) cfg() config.Config {
	return s.cfgSource.Get()
}

// scanConfig derives the pipeline configuration from the app configuration.
func scanConfig(cfg config.Config) jobs.Config {
	return jobs.Config{
		DocsDir:     cfg.DocsDir,
		DataDir:     cfg.DataDir,
		Strict:      cfg.Strict,
		FilePattern: cfg.FilePattern,
		MaxParallel: cfg.MaxParallel,
	}
}

// registerHealthCheckers wires the standing readiness checks: the docs root
// must be reachable, the most recent scan must have concluded, and the
// generated index artifact must exist.
func (s *Server) registerHealthCheckers() {
	s.healthManager.RegisterChecker(health.NewDirectoryChecker("docs_dir", func() string {
		return s.cfg().DocsDir
	}))
	s.healthManager.RegisterChecker(health.NewLastScanChecker(func() (time.Time, string) {
		status, ok := s.runner.Last()
		if !ok {
			return time.Time{}, ""
		}
		return status.LastScan, status.Error
	}))
	s.healthManager.RegisterChecker(health.NewFileChecker("index_artifact", func() string {
		return filepath.Join(s.cfg().DataDir, jobs.IndexMarkdownName)
	}))
}
