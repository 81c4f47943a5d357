// SPDX-License-Identifier: MIT

// adrgen scaffolds a new decision record in the MADR layout.
//
// Usage:
//
//	adrgen -title "Use PostgreSQL for persistence"
//	adrgen -title "..." -deciders "Ana Ruiz, Ben Okafor" -status proposed -dir docs/adr
//
// The record gets the next free NNNN- number in the destination directory.
//
// Exit codes:
//   - 0: Record created
//   - 1: I/O failure
//   - 2: Usage error
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"

	"github.com/adrkit/adrkit/internal/adr"
	"github.com/adrkit/adrkit/internal/config"
	adrlog "github.com/adrkit/adrkit/internal/log"
)

var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	adrlog.Configure(adrlog.Config{
		Output:  os.Stderr,
		Service: "adrkit",
		Version: Version,
	})

	flags := flag.NewFlagSet("adrgen", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		title         string
		deciders      string
		status        string
		dir           string
		licenseHolder string
		licenseID     string
		story         string
		showVersion   bool
	)
	flags.StringVar(&title, "title", "", "record title (required)")
	flags.StringVar(&deciders, "deciders", "", "comma-separated decider names")
	flags.StringVar(&status, "status", adr.StatusProposed, "initial status")
	flags.StringVar(&dir, "dir", config.ParseString("ADRKIT_DOCS", "docs/adr"), "destination directory")
	flags.StringVar(&licenseHolder, "license-holder",
		config.ParseString("ADRKIT_LICENSE_HOLDER", ""), "copyright holder for the SPDX header")
	flags.StringVar(&licenseID, "license-id",
		config.ParseString("ADRKIT_LICENSE_ID", "MIT"), "license identifier for the SPDX header")
	flags.StringVar(&story, "technical-story", "", "ticket or issue URL")
	flags.BoolVar(&showVersion, "version", false, "print version and exit")

	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() > 0 {
		fmt.Fprintf(stderr, "Unexpected argument: %s\n", flags.Arg(0))
		return 2
	}

	if showVersion {
		fmt.Fprintln(stdout, Version)
		return 0
	}

	title = strings.TrimSpace(title)
	if title == "" {
		fmt.Fprintln(stderr, "Error: -title is required")
		fmt.Fprintln(stderr, "Usage: adrgen -title \"...\" [-deciders a,b] [-status proposed] [-dir docs/adr]")
		return 2
	}
	if adr.Slug(title) == "" {
		fmt.Fprintln(stderr, "Error: title must contain letters or digits")
		return 2
	}
	if !adr.KnownStatus(status) {
		fmt.Fprintf(stderr, "Error: unknown status %q (use proposed, accepted, rejected, deprecated or superseded)\n", status)
		return 2
	}

	number, err := nextNumber(dir)
	if err != nil {
		fmt.Fprintf(stderr, "Error: cannot read %s: %v\n", dir, err)
		return 1
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		fmt.Fprintf(stderr, "Error: create %s: %v\n", dir, err)
		return 1
	}

	now := time.Now().UTC()
	rec := scaffold(title, status, splitList(deciders), story, now)
	if licenseHolder != "" || licenseID != "" {
		hdr := &adr.LicenseHeader{}
		if licenseHolder != "" {
			hdr.Copyrights = []string{fmt.Sprintf("%d %s", now.Year(), licenseHolder)}
		}
		if licenseID != "" {
			hdr.Licenses = []string{licenseID}
		}
		rec.License = hdr
	}

	data, err := adr.Marshal(rec)
	if err != nil {
		fmt.Fprintf(stderr, "Error: render record: %v\n", err)
		return 1
	}

	path := filepath.Join(dir, adr.Filename(number, title))
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(stderr, "Error: %s already exists\n", path)
		return 1
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(stderr, "Error: write %s: %v\n", path, err)
		return 1
	}

	fmt.Fprintln(stdout, path)
	return 0
}

// scaffold builds the MADR template record with bracketed placeholders, the
// way the upstream MADR template reads.
func scaffold(title, status string, deciders []string, story string, now time.Time) *adr.Record {
	return &adr.Record{
		Title:          title,
		Status:         status,
		Deciders:       deciders,
		Date:           now.Format("2006-01-02"),
		TechnicalStory: story,
		Problem:        "[Describe the context and problem statement in two or three sentences.]",
		Drivers:        []string{"[driver 1, e.g., a force, facing concern]", "[driver 2]"},
		Considered:     []string{"[option 1]", "[option 2]"},
		Chosen:         "[option 1]",
		Rationale:      "[justification].",
		Positive:       []string{"[e.g., improved quality attribute]"},
		Negative:       []string{"[e.g., compromised quality attribute]"},
		Options: []adr.Option{
			{
				Name:        "[option 1]",
				Description: "[example | description | pointer to more information]",
				Pros:        []string{"[argument a]"},
				Cons:        []string{"[argument c]"},
			},
			{
				Name:        "[option 2]",
				Description: "[example | description | pointer to more information]",
				Pros:        []string{"[argument a]"},
				Cons:        []string{"[argument c]"},
			},
		},
	}
}

// nextNumber returns one more than the highest NNNN- prefix in dir. A missing
// directory starts the sequence at 1.
func nextNumber(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 1, nil
		}
		return 0, err
	}
	highest := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if n := adr.NumberFromFilename(e.Name()); n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
