// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrkit/adrkit/internal/library"
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

func newTestStore(t *testing.T) *library.Store {
	t.Helper()
	store, err := library.NewStore(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		DocsDir: t.TempDir(),
		DataDir: t.TempDir(),
	}
}

func TestScanIndexesDocuments(t *testing.T) {
	cfg := testConfig(t)
	writeDoc(t, cfg.DocsDir, "0001-use-sqlite.md", recordUseSQLite)
	writeDoc(t, cfg.DocsDir, "network/0002-publish-over-http.md", recordServeHTTP)

	store := newTestStore(t)
	ctx := context.Background()

	status, err := Scan(ctx, cfg, store)
	require.NoError(t, err)
	assert.Equal(t, 2, status.Records)
	assert.Equal(t, 1, status.Findings) // missing license header on 0002
	assert.Equal(t, 0, status.Errors)
	assert.False(t, status.LastScan.IsZero())

	rec, err := store.GetRecord(ctx, RootID, 1)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Use SQLite for the index", rec.Title)
	assert.Equal(t, "accepted", rec.Status)
	assert.Equal(t, []string{"Ana Ruiz", "Ben Okafor"}, rec.Deciders)
	assert.NotEmpty(t, rec.Checksum)
	assert.Greater(t, rec.SizeBytes, int64(0))

	sub, err := store.GetRecord(ctx, RootID, 2)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "network/0002-publish-over-http.md", sub.RelPath)

	root, err := store.GetRoot(ctx, RootID)
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, library.RootStatusOK, root.LastScanStatus)
	assert.Equal(t, 2, root.TotalRecords)
}

func TestScanWritesArtifacts(t *testing.T) {
	cfg := testConfig(t)
	writeDoc(t, cfg.DocsDir, "0001-use-sqlite.md", recordUseSQLite)

	store := newTestStore(t)
	status, err := Scan(context.Background(), cfg, store)
	require.NoError(t, err)

	md, err := os.ReadFile(filepath.Join(cfg.DataDir, IndexMarkdownName))
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Decision Log")
	assert.Contains(t, string(md), "## Accepted")
	assert.Contains(t, string(md), "[Use SQLite for the index](0001-use-sqlite.md)")

	raw, err := os.ReadFile(filepath.Join(cfg.DataDir, IndexJSONName))
	require.NoError(t, err)
	var doc indexDocument
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, status.Records, doc.TotalRecords)
	assert.Equal(t, status.Findings, doc.TotalFindings)
	require.Len(t, doc.Records, 1)
	assert.Equal(t, "0001-use-sqlite.md", doc.Records[0].RelPath)
	assert.Equal(t, 1, doc.Records[0].Number)
}

func TestScanDropsRemovedDocuments(t *testing.T) {
	cfg := testConfig(t)
	writeDoc(t, cfg.DocsDir, "0001-use-sqlite.md", recordUseSQLite)
	writeDoc(t, cfg.DocsDir, "0002-publish-over-http.md", recordServeHTTP)

	store := newTestStore(t)
	ctx := context.Background()

	status, err := Scan(ctx, cfg, store)
	require.NoError(t, err)
	require.Equal(t, 2, status.Records)

	require.NoError(t, os.Remove(filepath.Join(cfg.DocsDir, "0002-publish-over-http.md")))

	status, err = Scan(ctx, cfg, store)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Records)

	gone, err := store.GetRecordByPath(ctx, RootID, "0002-publish-over-http.md")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestScanBrokenDocumentBecomesFinding(t *testing.T) {
	cfg := testConfig(t)
	writeDoc(t, cfg.DocsDir, "0001-use-sqlite.md", recordUseSQLite)
	writeDoc(t, cfg.DocsDir, "0002-scratch.md", "notes without a level-1 heading\n")

	store := newTestStore(t)
	ctx := context.Background()

	status, err := Scan(ctx, cfg, store)
	require.NoError(t, err, "invalid documents must not abort the scan")
	assert.Equal(t, 2, status.Records)
	assert.Equal(t, 1, status.Errors)

	rec, err := store.GetRecordByPath(ctx, RootID, "0002-scratch.md")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Empty(t, rec.Title)
	assert.Equal(t, "error", rec.WorstSeverity)
	assert.NotEmpty(t, rec.Checksum, "unparseable content is still fingerprinted")

	root, err := store.GetRoot(ctx, RootID)
	require.NoError(t, err)
	assert.Equal(t, library.RootStatusDegraded, root.LastScanStatus)
}

func TestScanStrictPromotesLicenseRule(t *testing.T) {
	cfg := testConfig(t)
	writeDoc(t, cfg.DocsDir, "0001-publish-over-http.md", recordServeHTTP)

	store := newTestStore(t)
	ctx := context.Background()

	status, err := Scan(ctx, cfg, store)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Findings)
	assert.Equal(t, 0, status.Errors)

	cfg.Strict = true
	status, err = Scan(ctx, cfg, store)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Findings)
	assert.Equal(t, 1, status.Errors)

	root, err := store.GetRoot(ctx, RootID)
	require.NoError(t, err)
	assert.Equal(t, library.RootStatusDegraded, root.LastScanStatus)
}

func TestScanSkipsNonRecords(t *testing.T) {
	cfg := testConfig(t)
	writeDoc(t, cfg.DocsDir, "0001-use-sqlite.md", recordUseSQLite)
	writeDoc(t, cfg.DocsDir, "index.md", "# Decision Log\n")
	writeDoc(t, cfg.DocsDir, ".draft.md", "# Hidden draft\n")
	writeDoc(t, cfg.DocsDir, "notes.txt", "not markdown\n")
	writeDoc(t, cfg.DocsDir, ".git/objects.md", "# Not a record\n")

	store := newTestStore(t)
	status, err := Scan(context.Background(), cfg, store)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Records)
}

func TestScanFilePattern(t *testing.T) {
	cfg := testConfig(t)
	cfg.FilePattern = "[0-9][0-9][0-9][0-9]-*.md"
	writeDoc(t, cfg.DocsDir, "0001-use-sqlite.md", recordUseSQLite)
	writeDoc(t, cfg.DocsDir, "scratch.md", "# Scratch pad\n")

	store := newTestStore(t)
	ctx := context.Background()

	status, err := Scan(ctx, cfg, store)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Records)

	skipped, err := store.GetRecordByPath(ctx, RootID, "scratch.md")
	require.NoError(t, err)
	assert.Nil(t, skipped)
}

func TestScanMissingDocsDirFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.DocsDir = filepath.Join(cfg.DocsDir, "does-not-exist")

	store := newTestStore(t)
	_, err := Scan(context.Background(), cfg, store)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "walk:"), "error should name the failing stage: %v", err)
}

func TestScanValidatesConfig(t *testing.T) {
	store := newTestStore(t)

	_, err := Scan(context.Background(), Config{DataDir: t.TempDir()}, store)
	require.Error(t, err)

	_, err = Scan(context.Background(), Config{DocsDir: t.TempDir()}, store)
	require.Error(t, err)

	cfg := testConfig(t)
	cfg.FilePattern = "[" // malformed glob
	_, err = Scan(context.Background(), cfg, store)
	require.Error(t, err)
}

func TestScanParallelMatchesSerial(t *testing.T) {
	cfg := testConfig(t)
	writeDoc(t, cfg.DocsDir, "0001-use-sqlite.md", recordUseSQLite)
	writeDoc(t, cfg.DocsDir, "0002-publish-over-http.md", recordServeHTTP)
	writeDoc(t, cfg.DocsDir, "0003-scratch.md", "no heading\n")

	ctx := context.Background()

	serial := cfg
	serial.MaxParallel = 1
	serialStatus, err := Scan(ctx, serial, newTestStore(t))
	require.NoError(t, err)

	parallel := cfg
	parallel.MaxParallel = 8
	parallelStatus, err := Scan(ctx, parallel, newTestStore(t))
	require.NoError(t, err)

	assert.Equal(t, serialStatus.Records, parallelStatus.Records)
	assert.Equal(t, serialStatus.Findings, parallelStatus.Findings)
	assert.Equal(t, serialStatus.Errors, parallelStatus.Errors)
}
