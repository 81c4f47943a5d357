// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/adrkit/adrkit/internal/config"
	"github.com/adrkit/adrkit/internal/jobs"
	"github.com/adrkit/adrkit/internal/library"
	adrlog "github.com/adrkit/adrkit/internal/log"
	"github.com/adrkit/adrkit/internal/version"
)

// runScanCLI runs the scan pipeline once and exits. Exit codes: 0 on a clean
// scan, 1 when records carry error-severity findings or the pipeline fails,
// 2 on usage errors.
func runScanCLI(args []string) int {
	fs := flag.NewFlagSet("adrkit scan", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		configFile string
		docsDir    string
		strict     bool
		quiet      bool
	)
	fs.StringVar(&configFile, "config", "", "path to config file (YAML)")
	fs.StringVar(&docsDir, "docs", "", "docs directory (overrides configuration)")
	fs.BoolVar(&strict, "strict", false, "promote advisory findings to errors")
	fs.BoolVar(&quiet, "quiet", false, "suppress the summary line")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Unexpected argument: %s\n", fs.Arg(0))
		fmt.Fprintln(os.Stderr, "Usage: adrkit scan [--config FILE] [--docs DIR] [--strict] [--quiet]")
		return 2
	}

	adrlog.Configure(adrlog.Config{
		Output:  os.Stderr,
		Service: "adrkit",
		Version: version.Version,
	})

	loader := config.NewLoader(resolveConfigPath(configFile), version.Version)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}
	if strings.TrimSpace(docsDir) != "" {
		abs, err := filepath.Abs(docsDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid docs directory: %v\n", err)
			return 2
		}
		cfg.DocsDir = abs
	}
	if strict {
		cfg.Strict = true
	}

	if err := config.EnsureDataDir(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to prepare data directory: %v\n", err)
		return 1
	}

	store, err := library.NewStore(filepath.Join(cfg.DataDir, "index.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open record index: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := jobs.NewRunner(store)
	st, err := runner.Run(ctx, jobs.Config{
		DocsDir:     cfg.DocsDir,
		DataDir:     cfg.DataDir,
		Strict:      cfg.Strict,
		FilePattern: cfg.FilePattern,
		MaxParallel: cfg.MaxParallel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		return 1
	}

	if !quiet {
		fmt.Printf("indexed %d records, %d findings (%d errors)\n", st.Records, st.Findings, st.Errors)
	}
	if st.Errors > 0 {
		return 1
	}
	return 0
}
