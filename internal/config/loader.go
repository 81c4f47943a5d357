// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Loader resolves configuration with the precedence ENV > file > defaults.
type Loader struct {
	configPath string
	version    string

	// ConsumedEnvKeys tracks every env key the loader read, so tests can
	// assert the documented surface matches the implementation.
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a configuration loader. configPath may be empty for
// ENV-only operation.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

func (l *Loader) envList(key string, defaultVal []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseStringList(key, defaultVal)
}

// Load resolves the configuration: parse file (strict), apply env, then
// validate. A validation failure returns the partially resolved config so
// callers can log what was rejected.
func (l *Loader) Load() (Config, error) {
	cfg := Default()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		l.mergeFileConfig(&cfg, fileCfg)
	}

	l.mergeEnvConfig(&cfg)

	// Absolute paths keep later confinement checks and artifact writes
	// independent of the process working directory.
	if abs, err := filepath.Abs(cfg.DocsDir); err == nil {
		cfg.DocsDir = abs
	}
	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}

	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// mergeEnvConfig applies environment overrides (highest priority).
func (l *Loader) mergeEnvConfig(cfg *Config) {
	cfg.DocsDir = l.envString("ADRKIT_DOCS", cfg.DocsDir)
	cfg.DataDir = l.envString("ADRKIT_DATA", cfg.DataDir)
	cfg.Listen = l.envString("ADRKIT_LISTEN", cfg.Listen)
	cfg.MetricsListen = l.envString("ADRKIT_METRICS_LISTEN", cfg.MetricsListen)

	cfg.LogLevel = l.envString("ADRKIT_LOG_LEVEL", cfg.LogLevel)
	cfg.LogService = l.envString("ADRKIT_LOG_SERVICE", cfg.LogService)

	cfg.Strict = l.envBool("ADRKIT_STRICT", cfg.Strict)
	cfg.Watch = l.envBool("ADRKIT_WATCH", cfg.Watch)
	cfg.ScanOnStart = l.envBool("ADRKIT_SCAN_ON_START", cfg.ScanOnStart)
	cfg.FilePattern = l.envString("ADRKIT_FILE_PATTERN", cfg.FilePattern)
	cfg.MaxParallel = l.envInt("ADRKIT_MAX_PARALLEL", cfg.MaxParallel)

	cfg.APIToken = l.envString("ADRKIT_API_TOKEN", cfg.APIToken)
	cfg.AllowedOrigins = l.envList("ADRKIT_ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.TrustedProxies = l.envList("ADRKIT_TRUSTED_PROXIES", cfg.TrustedProxies)
	cfg.RateLimit = l.envInt("ADRKIT_RATE_LIMIT", cfg.RateLimit)
	cfg.RateLimitBurst = l.envInt("ADRKIT_RATE_LIMIT_BURST", cfg.RateLimitBurst)

	cfg.OTelEnabled = l.envBool("ADRKIT_OTEL_ENABLED", cfg.OTelEnabled)
	cfg.OTelEndpoint = l.envString("ADRKIT_OTEL_ENDPOINT", cfg.OTelEndpoint)
	cfg.OTelProtocol = l.envString("ADRKIT_OTEL_PROTOCOL", cfg.OTelProtocol)
	cfg.OTelSample = l.envFloat("ADRKIT_OTEL_SAMPLE", cfg.OTelSample)

	cfg.LicenseHolder = l.envString("ADRKIT_LICENSE_HOLDER", cfg.LicenseHolder)
	cfg.LicenseID = l.envString("ADRKIT_LICENSE_ID", cfg.LicenseID)
}

// EnsureDataDir creates the data directory when missing so first runs do not
// require manual setup.
func EnsureDataDir(cfg Config) error {
	if cfg.DataDir == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}
