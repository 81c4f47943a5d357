// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/renameio/v2"

	"github.com/adrkit/adrkit/internal/adr"
	"github.com/adrkit/adrkit/internal/fsutil"
	"github.com/adrkit/adrkit/internal/library"
	"github.com/adrkit/adrkit/internal/log"
)

// Artifact file names inside the data directory.
const (
	IndexMarkdownName = "index.md"
	IndexJSONName     = "index.json"
)

// indexDocument is the schema of the machine-readable index artifact.
type indexDocument struct {
	GeneratedAt   time.Time               `json:"generated_at"`
	TotalRecords  int                     `json:"total_records"`
	TotalFindings int                     `json:"total_findings"`
	Errors        int                     `json:"errors"`
	Records       []library.IndexedRecord `json:"records"`
}

// writeArtifacts regenerates index.md and index.json in the data directory.
// records must already be sorted by number.
func writeArtifacts(ctx context.Context, cfg Config, records []library.IndexedRecord, status *Status, generated time.Time) error {
	logger := log.WithComponentFromContext(ctx, "jobs")

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	mdPath, err := fsutil.ConfineRelPath(cfg.DataDir, IndexMarkdownName)
	if err != nil {
		return fmt.Errorf("confine %s: %w", IndexMarkdownName, err)
	}
	if err := writeIndexMarkdown(ctx, mdPath, records, generated); err != nil {
		return err
	}
	logger.Info().
		Str("event", "artifact.write").
		Str(log.FieldPath, mdPath).
		Int("records", len(records)).
		Msg("index.md written")

	jsonPath, err := fsutil.ConfineRelPath(cfg.DataDir, IndexJSONName)
	if err != nil {
		return fmt.Errorf("confine %s: %w", IndexJSONName, err)
	}
	doc := indexDocument{
		GeneratedAt:   generated,
		TotalRecords:  status.Records,
		TotalFindings: status.Findings,
		Errors:        status.Errors,
		Records:       records,
	}
	if err := writeIndexJSON(ctx, jsonPath, doc); err != nil {
		return err
	}
	logger.Info().
		Str("event", "artifact.write").
		Str(log.FieldPath, jsonPath).
		Msg("index.json written")

	return nil
}

// writeIndexMarkdown renders the human index and writes it atomically.
// renameio keeps readers of the previous artifact unaffected until the
// rename lands.
func writeIndexMarkdown(ctx context.Context, path string, records []library.IndexedRecord, generated time.Time) error {
	logger := log.FromContext(ctx)

	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending index.md: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending index.md")
		}
	}()

	if _, err := pending.WriteString(renderIndexMarkdown(records, generated)); err != nil {
		return fmt.Errorf("write index.md: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace index.md: %w", err)
	}
	return nil
}

// writeIndexJSON writes the machine-readable index artifact atomically.
func writeIndexJSON(ctx context.Context, path string, doc indexDocument) error {
	logger := log.FromContext(ctx)

	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending index.json: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending index.json")
		}
	}()

	enc := json.NewEncoder(pending)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode index.json: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace index.json: %w", err)
	}
	return nil
}

// renderIndexMarkdown builds the table of contents, grouped by status in
// canonical order with free-text statuses trailing alphabetically.
func renderIndexMarkdown(records []library.IndexedRecord, generated time.Time) string {
	var b strings.Builder
	b.WriteString("<!-- Generated by adrkit. Regenerated on every scan; do not edit. -->\n\n")
	b.WriteString("# Decision Log\n\n")

	noun := "records"
	if len(records) == 1 {
		noun = "record"
	}
	fmt.Fprintf(&b, "%d %s, generated %s.\n", len(records), noun,
		generated.UTC().Format("2006-01-02 15:04 MST"))

	groups := make(map[string][]library.IndexedRecord)
	for _, rec := range records {
		s := rec.Status
		if s == "" {
			s = "unknown"
		}
		groups[s] = append(groups[s], rec)
	}

	order := []string{
		adr.StatusAccepted,
		adr.StatusProposed,
		adr.StatusRejected,
		adr.StatusDeprecated,
		adr.StatusSuperseded,
	}
	var extra []string
	for s := range groups {
		if !adr.KnownStatus(s) {
			extra = append(extra, s)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	for _, s := range order {
		recs := groups[s]
		if len(recs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", statusHeading(s))
		b.WriteString("| Number | Record | Date | Deciders |\n")
		b.WriteString("|-------:|--------|------|----------|\n")
		for _, rec := range recs {
			num := "-"
			if rec.Number > 0 {
				num = fmt.Sprintf("%04d", rec.Number)
			}
			title := rec.Title
			if title == "" {
				title = rec.RelPath
			}
			fmt.Fprintf(&b, "| %s | [%s](%s) | %s | %s |\n",
				num,
				escapeCell(title),
				linkTarget(rec.RelPath),
				escapeCell(rec.Date),
				escapeCell(strings.Join(rec.Deciders, ", ")))
		}
	}
	return b.String()
}

func statusHeading(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// escapeCell keeps free text from breaking the table or the link syntax.
func escapeCell(s string) string {
	repl := strings.NewReplacer("|", "\\|", "[", "\\[", "]", "\\]", "\n", " ")
	return repl.Replace(s)
}

// linkTarget escapes the characters that end a markdown link destination.
func linkTarget(rel string) string {
	repl := strings.NewReplacer(" ", "%20", "(", "%28", ")", "%29")
	return repl.Replace(rel)
}
