// SPDX-License-Identifier: MIT

// Package config loads and validates the adrkit configuration with the
// precedence ENV > YAML file > defaults. YAML parsing is strict: unknown
// keys fail the load so typos never silently fall back to defaults.
package config
