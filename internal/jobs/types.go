// SPDX-License-Identifier: MIT

// Package jobs runs the scan pipeline: walk the docs root, parse and lint
// every record, rebuild the library index and regenerate the index
// artifacts.
package jobs

import (
	"time"
)

// RootID identifies the single docs root the daemon indexes.
const RootID = "docs"

// Config carries the scan-relevant subset of the application configuration.
type Config struct {
	DocsDir     string // root of the decision record tree
	DataDir     string // destination for generated artifacts
	Strict      bool   // promote the license-header rule to error severity
	FilePattern string // glob against the base name, narrows scanned files
	MaxParallel int    // worker limit for parse and lint, 0 = GOMAXPROCS
}

// Status is the outcome of the most recent scan, served by the status API.
type Status struct {
	LastScan time.Time `json:"last_scan"`
	Records  int       `json:"records"`
	Findings int       `json:"findings"`
	Errors   int       `json:"errors"`
	Error    string    `json:"error,omitempty"`
}
