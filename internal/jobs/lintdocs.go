// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/adrkit/adrkit/internal/adr"
	"github.com/adrkit/adrkit/internal/lint"
)

// LintDocs walks the docs root and lints every document fresh, without
// touching the index or the artifacts. It backs the on-demand lint endpoint;
// results are in walk order with root-relative paths.
func LintDocs(ctx context.Context, cfg Config) ([]lint.Result, error) {
	if strings.TrimSpace(cfg.DocsDir) == "" {
		return nil, fmt.Errorf("docs dir is required")
	}

	files, err := collectFiles(ctx, cfg)
	if err != nil {
		return nil, err
	}

	limit := cfg.MaxParallel
	if limit < 1 {
		limit = runtime.GOMAXPROCS(0)
	}

	opts := lint.Options{Strict: cfg.Strict}
	results := make([]lint.Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			data, err := os.ReadFile(f.abs)
			if err == nil {
				var rec *adr.Record
				rec, err = adr.ParseBytes(data)
				if err == nil {
					results[i] = opts.Lint(rec, f.rel)
					return nil
				}
			}
			results[i] = lint.ParseFailure(f.rel, err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
