// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/adrkit/adrkit/internal/adr"
	"github.com/adrkit/adrkit/internal/fsutil"
	"github.com/adrkit/adrkit/internal/library"
	"github.com/adrkit/adrkit/internal/lint"
	"github.com/adrkit/adrkit/internal/log"
	"github.com/adrkit/adrkit/internal/metrics"
	"github.com/adrkit/adrkit/internal/telemetry"
)

// Pipeline stages, used as the failure label on the scan metrics.
const (
	stageWalk      = "walk"
	stageParse     = "parse"
	stageIndex     = "index"
	stageArtifacts = "artifacts"
)

// docFile is one candidate document found by the walk.
type docFile struct {
	abs string // resolved absolute path, confined to the docs root
	rel string // slash-separated path relative to the docs root
}

// docResult is the outcome of parsing and linting one document.
type docResult struct {
	rec         library.IndexedRecord
	findings    []lint.Finding
	parseFailed bool
}

// Scan performs the complete scan cycle: walk the docs root, parse and lint
// every record, rebuild the index and write the index artifacts. Broken
// documents become findings, not failures; Scan returns an error only for
// environmental problems such as an unreadable root or a store failure.
func Scan(ctx context.Context, cfg Config, store *library.Store) (*Status, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	ctx = log.ContextWithScanID(ctx, uuid.NewString())
	logger := log.WithComponentFromContext(ctx, "jobs")

	tracer := telemetry.Tracer("adrkit.jobs")
	ctx, span := tracer.Start(ctx, "adrkit.scan")
	defer span.End()

	start := time.Now()
	logger.Info().
		Str("event", "scan.start").
		Str(log.FieldDocsDir, cfg.DocsDir).
		Bool("strict", cfg.Strict).
		Msg("starting docs scan")

	files, err := collectFiles(ctx, cfg)
	if err != nil {
		return nil, failScan(span, logger, stageWalk, err)
	}

	results, failedDocs, err := parseAll(ctx, cfg, files)
	if err != nil {
		return nil, failScan(span, logger, stageParse, err)
	}

	status := &Status{Records: len(results)}
	for i := range results {
		status.Findings += len(results[i].findings)
		for _, f := range results[i].findings {
			if f.Severity == lint.SeverityError {
				status.Errors++
			}
		}
	}
	outcome := "ok"
	rootStatus := library.RootStatusOK
	if status.Errors > 0 {
		outcome = "degraded"
		rootStatus = library.RootStatusDegraded
	}

	scanTime, err := updateIndex(ctx, store, cfg, results, rootStatus)
	if err != nil {
		return nil, failScan(span, logger, stageIndex, err)
	}
	status.LastScan = scanTime

	records := make([]library.IndexedRecord, len(results))
	for i := range results {
		records[i] = results[i].rec
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Number != records[j].Number {
			return records[i].Number < records[j].Number
		}
		return records[i].RelPath < records[j].RelPath
	})
	if err := writeArtifacts(ctx, cfg, records, status, scanTime); err != nil {
		return nil, failScan(span, logger, stageArtifacts, err)
	}

	counts := make(map[string]int, len(records))
	for i := range records {
		s := records[i].Status
		if s == "" {
			s = "unknown"
		}
		counts[s]++
	}
	metrics.RecordStatusCounts(counts)
	metrics.IncScan(outcome)

	duration := time.Since(start)
	metrics.ObserveScanDuration(duration.Seconds())
	span.SetAttributes(telemetry.ScanAttributes(
		status.Records, status.Findings, failedDocs, outcome, duration.Milliseconds())...)

	logger.Info().
		Str("event", "scan.complete").
		Str("outcome", outcome).
		Int("records", status.Records).
		Int("findings", status.Findings).
		Int("errors", status.Errors).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("scan completed")

	return status, nil
}

// failScan records the failing stage on the metrics and the span, logs the
// abort and wraps the error with the stage name.
func failScan(span trace.Span, logger zerolog.Logger, stage string, err error) error {
	metrics.IncScanFailure(stage)
	metrics.IncScan("failed")
	span.RecordError(err)
	span.SetStatus(codes.Error, stage)
	logger.Error().
		Err(err).
		Str("event", "scan.failed").
		Str(log.FieldStage, stage).
		Msg("scan aborted")
	return fmt.Errorf("%s: %w", stage, err)
}

// collectFiles walks the docs root and returns the candidate documents in
// walk order. Dot-directories, dotfiles and index.md are skipped; FilePattern
// narrows the selection further. Files whose resolved path escapes the root
// are skipped with a warning.
func collectFiles(ctx context.Context, cfg Config) ([]docFile, error) {
	logger := log.WithComponentFromContext(ctx, "jobs")
	var files []docFile
	err := filepath.WalkDir(cfg.DocsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != cfg.DocsDir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || name == IndexMarkdownName {
			return nil
		}
		if filepath.Ext(name) != ".md" {
			return nil
		}
		if cfg.FilePattern != "" {
			ok, err := filepath.Match(cfg.FilePattern, name)
			if err != nil {
				return fmt.Errorf("file pattern %q: %w", cfg.FilePattern, err)
			}
			if !ok {
				return nil
			}
		}
		rel, err := filepath.Rel(cfg.DocsDir, path)
		if err != nil {
			return err
		}
		real, err := fsutil.ConfineRelPath(cfg.DocsDir, rel)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("event", "scan.skip").
				Str(log.FieldPath, rel).
				Msg("skipping file outside docs root")
			return nil
		}
		files = append(files, docFile{abs: real, rel: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// parseAll reads, parses and lints the candidate files with a bounded worker
// pool. It only fails when the context is canceled; broken documents become
// parse-error findings. failedDocs counts the documents that produced no
// record at all.
func parseAll(ctx context.Context, cfg Config, files []docFile) (results []docResult, failedDocs int, err error) {
	limit := cfg.MaxParallel
	if limit < 1 {
		limit = runtime.GOMAXPROCS(0)
	}

	results = make([]docResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = processFile(gctx, cfg, f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	for i := range results {
		if results[i].parseFailed {
			failedDocs++
		}
	}
	return results, failedDocs, nil
}

// processFile turns one markdown file into an index row plus its findings.
// Read and parse failures are reported as parse-error findings so the scan
// keeps going.
func processFile(ctx context.Context, cfg Config, f docFile) docResult {
	row := library.IndexedRecord{
		RootID:  RootID,
		RelPath: f.rel,
		Number:  adr.NumberFromFilename(filepath.Base(f.rel)),
	}

	var (
		res         lint.Result
		parseFailed bool
	)
	data, err := os.ReadFile(f.abs)
	if err == nil {
		row.Checksum = checksum(data)
		row.SizeBytes = int64(len(data))
		if info, statErr := os.Stat(f.abs); statErr == nil {
			row.ModTime = info.ModTime().UTC()
		}

		var rec *adr.Record
		rec, err = adr.ParseBytes(data)
		if err == nil {
			res = lint.Options{Strict: cfg.Strict}.Lint(rec, f.rel)
			row.Title = rec.Title
			row.Status = rec.Status
			row.SupersededBy = rec.SupersededBy
			row.Date = rec.Date
			row.Deciders = rec.Deciders
			row.Chosen = rec.Chosen
		}
	}
	if err != nil {
		res = lint.ParseFailure(f.rel, err)
		parseFailed = true
	}

	outcome := "ok"
	if parseFailed {
		outcome = "error"
	}
	metrics.IncDocumentParsed(outcome)
	for _, fd := range res.Findings {
		metrics.IncLintFinding(fd.Rule, string(fd.Severity))
	}

	row.Findings = len(res.Findings)
	row.WorstSeverity = string(res.WorstSeverity())

	logger := log.WithComponentFromContext(ctx, "jobs")
	logger.Debug().
		Str("event", "scan.document").
		Str(log.FieldPath, f.rel).
		Str("outcome", outcome).
		Int("findings", row.Findings).
		Msg("document processed")

	return docResult{rec: row, findings: res.Findings, parseFailed: parseFailed}
}

// updateIndex rebuilds the library rows for the docs root inside one
// transaction and drops rows whose files disappeared since the previous scan.
func updateIndex(ctx context.Context, store *library.Store, cfg Config, results []docResult, rootStatus library.RootStatus) (time.Time, error) {
	if err := store.UpsertRoot(ctx, RootID, cfg.DocsDir); err != nil {
		return time.Time{}, err
	}
	scanTime, err := store.BeginScan(ctx, RootID)
	if err != nil {
		return time.Time{}, err
	}

	tx, err := store.BeginTx(ctx)
	if err != nil {
		return time.Time{}, err
	}
	defer func() { _ = tx.Rollback() }()

	for i := range results {
		results[i].rec.ScanTime = scanTime
		if err := store.UpsertRecord(ctx, tx, results[i].rec); err != nil {
			return time.Time{}, fmt.Errorf("upsert %s: %w", results[i].rec.RelPath, err)
		}
	}
	deleted, err := store.DeleteMissing(ctx, tx, RootID, scanTime)
	if err != nil {
		return time.Time{}, err
	}
	if err := tx.Commit(); err != nil {
		return time.Time{}, err
	}
	if err := store.FinishScan(ctx, RootID, rootStatus, scanTime, len(results)); err != nil {
		return time.Time{}, err
	}

	if deleted > 0 {
		log.WithComponentFromContext(ctx, "jobs").Info().
			Str("event", "scan.pruned").
			Int64("deleted", deleted).
			Msg("dropped index rows for removed documents")
	}
	return scanTime, nil
}

// checksum returns the hex SHA-256 of the document content.
func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.DocsDir) == "" {
		return fmt.Errorf("docs dir is required")
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return fmt.Errorf("data dir is required")
	}
	if cfg.FilePattern != "" {
		if _, err := filepath.Match(cfg.FilePattern, "probe.md"); err != nil {
			return fmt.Errorf("file pattern %q: %w", cfg.FilePattern, err)
		}
	}
	return nil
}
