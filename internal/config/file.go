// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileConfig mirrors the YAML config file. Scalars that must distinguish
// "absent" from zero values use pointers; strings treat empty as absent.
type FileConfig struct {
	Docs string `yaml:"docs"`
	Data string `yaml:"data"`

	Listen        string `yaml:"listen"`
	MetricsListen string `yaml:"metricsListen"`

	Log struct {
		Level   string `yaml:"level"`
		Service string `yaml:"service"`
	} `yaml:"log"`

	Scan struct {
		Strict      *bool  `yaml:"strict"`
		Watch       *bool  `yaml:"watch"`
		OnStart     *bool  `yaml:"onStart"`
		FilePattern string `yaml:"filePattern"`
		MaxParallel *int   `yaml:"maxParallel"`
	} `yaml:"scan"`

	API struct {
		Token          string   `yaml:"token"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
		TrustedProxies []string `yaml:"trustedProxies"`
		RateLimit      *int     `yaml:"rateLimit"`
		RateLimitBurst *int     `yaml:"rateLimitBurst"`
	} `yaml:"api"`

	OTel struct {
		Enabled  *bool    `yaml:"enabled"`
		Endpoint string   `yaml:"endpoint"`
		Protocol string   `yaml:"protocol"`
		Sample   *float64 `yaml:"sample"`
	} `yaml:"otel"`

	License struct {
		Holder string `yaml:"holder"`
		ID     string `yaml:"id"`
	} `yaml:"license"`
}

// LoadFileConfig loads a YAML config file without applying defaults or env
// overrides.
func LoadFileConfig(path string) (*FileConfig, error) {
	loader := NewLoader(path, "")
	return loader.loadFile(path)
}

// loadFile loads configuration from a YAML file with strict parsing.
// Unknown fields cause an error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if err == io.EOF {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	// Reject multiple documents or trailing content.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}

// mergeFileConfig applies the file settings over the defaults.
func (l *Loader) mergeFileConfig(dst *Config, src *FileConfig) {
	if src.Docs != "" {
		dst.DocsDir = expandEnv(src.Docs)
	}
	if src.Data != "" {
		dst.DataDir = expandEnv(src.Data)
	}
	if src.Listen != "" {
		dst.Listen = expandEnv(src.Listen)
	}
	if src.MetricsListen != "" {
		dst.MetricsListen = expandEnv(src.MetricsListen)
	}

	if src.Log.Level != "" {
		dst.LogLevel = src.Log.Level
	}
	if src.Log.Service != "" {
		dst.LogService = src.Log.Service
	}

	if src.Scan.Strict != nil {
		dst.Strict = *src.Scan.Strict
	}
	if src.Scan.Watch != nil {
		dst.Watch = *src.Scan.Watch
	}
	if src.Scan.OnStart != nil {
		dst.ScanOnStart = *src.Scan.OnStart
	}
	if src.Scan.FilePattern != "" {
		dst.FilePattern = src.Scan.FilePattern
	}
	if src.Scan.MaxParallel != nil {
		dst.MaxParallel = *src.Scan.MaxParallel
	}

	if src.API.Token != "" {
		dst.APIToken = expandEnv(src.API.Token)
	}
	if len(src.API.AllowedOrigins) > 0 {
		dst.AllowedOrigins = append([]string(nil), src.API.AllowedOrigins...)
	}
	if len(src.API.TrustedProxies) > 0 {
		dst.TrustedProxies = append([]string(nil), src.API.TrustedProxies...)
	}
	if src.API.RateLimit != nil {
		dst.RateLimit = *src.API.RateLimit
	}
	if src.API.RateLimitBurst != nil {
		dst.RateLimitBurst = *src.API.RateLimitBurst
	}

	if src.OTel.Enabled != nil {
		dst.OTelEnabled = *src.OTel.Enabled
	}
	if src.OTel.Endpoint != "" {
		dst.OTelEndpoint = expandEnv(src.OTel.Endpoint)
	}
	if src.OTel.Protocol != "" {
		dst.OTelProtocol = src.OTel.Protocol
	}
	if src.OTel.Sample != nil {
		dst.OTelSample = *src.OTel.Sample
	}

	if src.License.Holder != "" {
		dst.LicenseHolder = src.License.Holder
	}
	if src.License.ID != "" {
		dst.LicenseID = src.License.ID
	}
}
