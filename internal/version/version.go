// SPDX-License-Identifier: MIT

// Package version carries build metadata injected at link time.
package version

import "fmt"

var (
	// Version is the current application version. It is populated by the
	// build system via ldflags and falls back to "dev" for local builds.
	Version = "dev"

	// Commit is the git short hash of the build.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// String renders the version together with its commit and build date.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
