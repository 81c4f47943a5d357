// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/adrkit/adrkit/internal/config"
	"github.com/adrkit/adrkit/internal/jobs"
	"github.com/adrkit/adrkit/internal/library"
	"github.com/adrkit/adrkit/internal/ratelimit"
)

const recordUseSQLite = `<!--
SPDX-FileCopyrightText: 2025 Example Org <adr@example.org>

SPDX-License-Identifier: CC-BY-4.0
-->

# Use SQLite for the index

* Status: accepted
* Deciders: Ana Ruiz, Ben Okafor
* Date: 2025-02-10

## Context and Problem Statement

The index must survive restarts without an external service.

## Considered Options

* SQLite
* Flat JSON file

## Decision Outcome

Chosen option: "SQLite", because queries stay fast as the log grows.
`

const recordServeHTTP = `# Publish the index over HTTP

* Status: proposed
* Deciders: Ana Ruiz
* Date: 2025-02-11

## Context and Problem Statement

Teams want the decision log without cloning the repository.

## Considered Options

* Built-in HTTP server
* Static site generator

## Decision Outcome

Chosen option: "Built-in HTTP server", because the daemon already runs next to the docs.
`

func testServerConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DocsDir = t.TempDir()
	cfg.DataDir = t.TempDir()
	cfg.Version = "test"
	return cfg
}

// openLimiter returns a limiter that never rejects, so handler tests are not
// coupled to the scan-trigger budget.
func openLimiter() *ratelimit.Limiter {
	return ratelimit.New(ratelimit.Config{
		GlobalRate:      rate.Inf,
		GlobalBurst:     1,
		PerIPRate:       rate.Inf,
		PerIPBurst:      1,
		CleanupInterval: time.Hour,
	})
}

func mustNewServer(t testing.TB, cfg config.Config, opts ...ServerOption) *Server {
	t.Helper()
	store, err := library.NewStore(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	runner := jobs.NewRunner(store)
	opts = append([]ServerOption{WithScanLimiter(openLimiter())}, opts...)
	return New(StaticConfig(cfg), runner, store, opts...)
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// runScan performs one pipeline run directly, bypassing HTTP.
func runScan(t *testing.T, s *Server) *jobs.Status {
	t.Helper()
	st, err := s.runner.Run(context.Background(), scanConfig(s.cfg()))
	require.NoError(t, err)
	return st
}
