// SPDX-License-Identifier: MIT

// validate lints decision-record markdown files.
//
// Usage:
//
//	validate -f docs/adr/0001-use-sqlite.md
//	validate -d docs/adr --strict
//	validate -f record.md --dump
//	validate -d docs/adr --write
//
// Exit codes:
//   - 0: All documents are valid
//   - 1: Error-severity findings were reported, or a file could not be processed
//   - 2: Usage error
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/adrkit/adrkit/internal/adr"
	"github.com/adrkit/adrkit/internal/lint"
)

var Version = "dev"

// fileList collects repeated -f flags.
type fileList []string

func (l *fileList) String() string { return strings.Join(*l, ",") }

func (l *fileList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// report is the --format json payload. It matches the shape of the daemon's
// GET /api/lint response so tooling can consume either.
type report struct {
	Results  []lint.Result `json:"results"`
	Findings int           `json:"findings"`
	Errors   int           `json:"errors"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("validate", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		files       fileList
		dir         string
		format      string
		strict      bool
		quiet       bool
		dump        bool
		write       bool
		showVersion bool
	)
	flags.Var(&files, "file", "decision record to check (repeatable)")
	flags.Var(&files, "f", "decision record to check (shorthand)")
	flags.StringVar(&dir, "dir", "", "directory tree to check")
	flags.StringVar(&dir, "d", "", "directory tree to check (shorthand)")
	flags.StringVar(&format, "format", "text", "output format: text or json")
	flags.BoolVar(&strict, "strict", false, "promote advisory findings to errors")
	flags.BoolVar(&quiet, "quiet", false, "suppress the summary line")
	flags.BoolVar(&dump, "dump", false, "print the parsed model as JSON (single file only)")
	flags.BoolVar(&write, "write", false, "rewrite checked files normalized, atomically")
	flags.BoolVar(&showVersion, "version", false, "print version and exit")

	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() > 0 {
		fmt.Fprintf(stderr, "Unexpected argument: %s\n", flags.Arg(0))
		printUsage(stderr)
		return 2
	}

	if showVersion {
		fmt.Fprintln(stdout, Version)
		return 0
	}

	switch format {
	case "text", "json":
	default:
		fmt.Fprintf(stderr, "Unsupported format: %s (use text or json)\n", format)
		return 2
	}

	paths := []string(files)
	if dir != "" {
		found, err := collectMarkdown(dir)
		if err != nil {
			fmt.Fprintf(stderr, "Error: cannot read %s: %v\n", dir, err)
			return 1
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		fmt.Fprintln(stderr, "Error: no input files (use -f FILE or -d DIR)")
		printUsage(stderr)
		return 2
	}
	if dump && len(paths) != 1 {
		fmt.Fprintln(stderr, "Error: --dump requires exactly one input file")
		return 2
	}

	opts := lint.Options{Strict: strict}
	rep := report{Results: make([]lint.Result, 0, len(paths))}
	ioFailure := false

	for _, path := range paths {
		rec, res := opts.File(path)
		rep.Results = append(rep.Results, res)
		rep.Findings += len(res.Findings)
		rep.Errors += res.Errors()

		if dump && rec != nil {
			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(rec); err != nil {
				fmt.Fprintf(stderr, "Error: encode %s: %v\n", path, err)
				ioFailure = true
			}
		}
		if write && rec != nil {
			data, err := adr.Marshal(rec)
			if err == nil {
				err = renameio.WriteFile(path, data, 0o644)
			}
			if err != nil {
				fmt.Fprintf(stderr, "Error: rewrite %s: %v\n", path, err)
				ioFailure = true
			}
		}
	}

	switch {
	case format == "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			fmt.Fprintf(stderr, "Error: encode report: %v\n", err)
			ioFailure = true
		}
	case dump:
		// The model JSON is the output; findings go to stderr.
		for _, res := range rep.Results {
			for _, f := range res.Findings {
				fmt.Fprintln(stderr, f.String())
			}
		}
	default:
		for _, res := range rep.Results {
			for _, f := range res.Findings {
				fmt.Fprintln(stdout, f.String())
			}
		}
		if !quiet {
			if rep.Findings == 0 {
				fmt.Fprintf(stdout, "✓ %d documents valid\n", len(rep.Results))
			} else {
				fmt.Fprintf(stdout, "%d documents, %d findings (%d errors)\n",
					len(rep.Results), rep.Findings, rep.Errors)
			}
		}
	}

	if rep.Errors > 0 || ioFailure {
		return 1
	}
	return 0
}

func printUsage(stderr io.Writer) {
	fmt.Fprintln(stderr, "Usage:")
	fmt.Fprintln(stderr, "  validate -f FILE [-f FILE...] [--strict] [--format text|json]")
	fmt.Fprintln(stderr, "  validate -d DIR [--strict] [--format text|json]")
	fmt.Fprintln(stderr, "  validate -f FILE --dump")
	fmt.Fprintln(stderr, "  validate -d DIR --write")
}

// collectMarkdown gathers the markdown files under root in walk order,
// skipping dot directories and dotfiles.
func collectMarkdown(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || filepath.Ext(name) != ".md" {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
