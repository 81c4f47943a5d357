// SPDX-License-Identifier: MIT

package config

import (
	"github.com/adrkit/adrkit/internal/validate"
)

// Config is the resolved runtime configuration of the daemon. All fields are
// plain values; use Loader.Load to build one with precedence applied.
type Config struct {
	// DocsDir is the directory tree holding the decision records.
	DocsDir string

	// DataDir receives generated artifacts (index.md, index.json) and the
	// record index database.
	DataDir string

	// Listen is the API listen address (host:port or :port).
	Listen string

	// MetricsListen is the metrics listen address. Empty disables the
	// metrics server.
	MetricsListen string

	// LogLevel and LogService feed the global logger.
	LogLevel   string
	LogService string

	// Strict promotes advisory lint findings to errors.
	Strict bool

	// Watch enables the docs directory watcher.
	Watch bool

	// ScanOnStart runs one scan before the servers accept traffic.
	ScanOnStart bool

	// FilePattern restricts scanned files (glob against the base name).
	FilePattern string

	// MaxParallel bounds concurrent parse+lint workers during a scan.
	MaxParallel int

	// APIToken guards mutating routes when non-empty.
	APIToken string

	// AllowedOrigins enables CORS for the listed origins.
	AllowedOrigins []string

	// TrustedProxies names proxies whose forwarding headers are honored
	// when resolving the client IP.
	TrustedProxies []string

	// RateLimit is the global API request budget per minute. Zero disables
	// the middleware limiter.
	RateLimit int

	// RateLimitBurst is the burst size of the scan-trigger token bucket.
	RateLimitBurst int

	// OpenTelemetry trace export.
	OTelEnabled  bool
	OTelEndpoint string
	OTelProtocol string // "grpc" or "http"
	OTelSample   float64

	// License identity stamped into scaffolded documents and checked by
	// the license lint rule.
	LicenseHolder string
	LicenseID     string

	// Version is the build version, set by the binary.
	Version string
}

const (
	defaultDocsDir     = "docs/adr"
	defaultDataDir     = "data"
	defaultListen      = ":8080"
	defaultFilePattern = "*.md"
	defaultMaxParallel = 8
	defaultRateLimit   = 120
	defaultBurst       = 2
	defaultOTelSample  = 0.1
	defaultLicenseID   = "MIT"
)

// Default returns the built-in configuration before file and env overrides.
func Default() Config {
	return Config{
		DocsDir:        defaultDocsDir,
		DataDir:        defaultDataDir,
		Listen:         defaultListen,
		MetricsListen:  "",
		LogLevel:       "info",
		LogService:     "adrkit",
		Strict:         false,
		Watch:          true,
		ScanOnStart:    true,
		FilePattern:    defaultFilePattern,
		MaxParallel:    defaultMaxParallel,
		RateLimit:      defaultRateLimit,
		RateLimitBurst: defaultBurst,
		OTelEnabled:    false,
		OTelProtocol:   "grpc",
		OTelSample:     defaultOTelSample,
		LicenseID:      defaultLicenseID,
	}
}

// Validate checks the resolved configuration. It accumulates all problems
// instead of stopping at the first one.
func Validate(cfg Config) error {
	v := validate.New()

	v.NotEmpty("docs", cfg.DocsDir)
	v.NotEmpty("data", cfg.DataDir)
	v.ListenAddr("listen", cfg.Listen)
	if cfg.MetricsListen != "" {
		v.ListenAddr("metricsListen", cfg.MetricsListen)
	}
	if cfg.LogLevel != "" {
		v.OneOf("logLevel", cfg.LogLevel, validate.LogLevels)
	}
	v.GlobPattern("filePattern", cfg.FilePattern)
	v.Range("maxParallel", cfg.MaxParallel, 1, 64)
	v.NonNegative("rateLimit", cfg.RateLimit)
	v.Positive("rateLimitBurst", cfg.RateLimitBurst)
	if cfg.OTelEnabled {
		v.OneOf("otelProtocol", cfg.OTelProtocol, []string{"grpc", "http"})
		v.NotEmpty("otelEndpoint", cfg.OTelEndpoint)
	}
	v.UnitInterval("otelSample", cfg.OTelSample)

	if err := v.Err(); err != nil {
		countConfigErrors(err)
		return err
	}
	return nil
}
