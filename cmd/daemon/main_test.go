// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"path/filepath"
	"testing"
)

const scanTestDoc = `<!--
SPDX-FileCopyrightText: 2026 Platform Guild
SPDX-License-Identifier: MIT
-->

# Use SQLite for the record index

- Status: accepted
- Deciders: Ana Ruiz
- Date: 2026-03-14

## Context and Problem Statement

Where should the generated record index live?

## Considered Options

- SQLite
- Flat JSON file

## Decision Outcome

Chosen option: "SQLite", because queries stay cheap as the tree grows.
`

// scanTestDocNoLicense drops the SPDX comment. That is a warning by default
// and an error under strict mode.
const scanTestDocNoLicense = `# Use SQLite for the record index

- Status: accepted
- Deciders: Ana Ruiz
- Date: 2026-03-14

## Context and Problem Statement

Where should the generated record index live?

## Considered Options

- SQLite
- Flat JSON file

## Decision Outcome

Chosen option: "SQLite", because queries stay cheap as the tree grows.
`

func TestResolveConfigPath(t *testing.T) {
	t.Run("explicit path wins", func(t *testing.T) {
		t.Setenv("ADRKIT_DATA", t.TempDir())
		got := resolveConfigPath("  /etc/adrkit/config.yaml ")
		if got != "/etc/adrkit/config.yaml" {
			t.Errorf("resolveConfigPath() = %q, want explicit path", got)
		}
	})

	t.Run("auto-detects config in data dir", func(t *testing.T) {
		dataDir := t.TempDir()
		autoPath := filepath.Join(dataDir, "config.yaml")
		if err := os.WriteFile(autoPath, []byte("docs: docs/adr\n"), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
		t.Setenv("ADRKIT_DATA", dataDir)

		if got := resolveConfigPath(""); got != autoPath {
			t.Errorf("resolveConfigPath() = %q, want %q", got, autoPath)
		}
	})

	t.Run("empty when no config exists", func(t *testing.T) {
		t.Setenv("ADRKIT_DATA", t.TempDir())
		if got := resolveConfigPath(""); got != "" {
			t.Errorf("resolveConfigPath() = %q, want empty", got)
		}
	})
}

// scanEnv points the loader at throwaway docs and data directories and
// returns the docs dir for fixture writes.
func scanEnv(t *testing.T) string {
	t.Helper()
	docsDir := t.TempDir()
	t.Setenv("ADRKIT_DOCS", docsDir)
	t.Setenv("ADRKIT_DATA", t.TempDir())
	return docsDir
}

func writeScanDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestRunScanCLI(t *testing.T) {
	t.Run("clean tree exits zero", func(t *testing.T) {
		docsDir := scanEnv(t)
		writeScanDoc(t, docsDir, "0001-use-sqlite.md", scanTestDoc)

		if code := runScanCLI([]string{"--quiet"}); code != 0 {
			t.Errorf("runScanCLI() = %d, want 0", code)
		}
	})

	t.Run("warnings still exit zero", func(t *testing.T) {
		docsDir := scanEnv(t)
		writeScanDoc(t, docsDir, "0001-use-sqlite.md", scanTestDocNoLicense)

		if code := runScanCLI([]string{"--quiet"}); code != 0 {
			t.Errorf("runScanCLI() = %d, want 0", code)
		}
	})

	t.Run("strict promotes warnings to exit one", func(t *testing.T) {
		docsDir := scanEnv(t)
		writeScanDoc(t, docsDir, "0001-use-sqlite.md", scanTestDocNoLicense)

		if code := runScanCLI([]string{"--quiet", "--strict"}); code != 1 {
			t.Errorf("runScanCLI() = %d, want 1", code)
		}
	})

	t.Run("docs flag overrides configuration", func(t *testing.T) {
		scanEnv(t)
		otherDocs := t.TempDir()
		writeScanDoc(t, otherDocs, "0001-use-sqlite.md", scanTestDoc)

		if code := runScanCLI([]string{"--quiet", "--docs", otherDocs}); code != 0 {
			t.Errorf("runScanCLI() = %d, want 0", code)
		}
	})

	t.Run("unknown flag exits two", func(t *testing.T) {
		scanEnv(t)
		if code := runScanCLI([]string{"--nope"}); code != 2 {
			t.Errorf("runScanCLI() = %d, want 2", code)
		}
	})

	t.Run("positional argument exits two", func(t *testing.T) {
		scanEnv(t)
		if code := runScanCLI([]string{"extra"}); code != 2 {
			t.Errorf("runScanCLI() = %d, want 2", code)
		}
	})

	t.Run("missing docs dir exits one", func(t *testing.T) {
		scanEnv(t)
		t.Setenv("ADRKIT_DOCS", filepath.Join(t.TempDir(), "absent"))

		if code := runScanCLI([]string{"--quiet"}); code != 1 {
			t.Errorf("runScanCLI() = %d, want 1", code)
		}
	})
}
