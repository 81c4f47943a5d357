// SPDX-License-Identifier: MIT

package adr

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MaxDocumentSize caps parser input. Decision records are short prose; a
// larger file is not a record.
const MaxDocumentSize = 1 << 20

var (
	// ErrNoTitle is returned when a document has no level-1 heading.
	ErrNoTitle = errors.New("adr: document has no level-1 title")
	// ErrTooLarge is returned when input exceeds MaxDocumentSize.
	ErrTooLarge = errors.New("adr: document too large")
)

// Parse reads one record from r. Input is size-capped. Anything structurally
// softer than a missing title is left for lint to report.
func Parse(r io.Reader) (*Record, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return ParseBytes(data)
}

// ParseFile parses the record at path and derives Number from the filename.
func ParseFile(path string) (*Record, error) {
	path = filepath.Clean(path)
	// path is confined by the caller (scan walk or CLI argument)
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read-only handle

	rec, err := Parse(f)
	if err != nil {
		return nil, err
	}
	rec.Number = NumberFromFilename(filepath.Base(path))
	return rec, nil
}

// ParseBytes parses one record from data.
func ParseBytes(data []byte) (*Record, error) {
	if len(data) > MaxDocumentSize {
		return nil, ErrTooLarge
	}
	lines := splitLines(string(data))
	rec := &Record{}

	i := 0
	// Leading SPDX comment block (REUSE convention for markdown).
	for i < len(lines) {
		t := strings.TrimSpace(lines[i])
		if t == "" {
			i++
			continue
		}
		if strings.HasPrefix(t, "<!--") {
			var hdr *LicenseHeader
			hdr, i = parseLicense(lines, i)
			if hdr != nil && rec.License == nil {
				rec.License = hdr
			}
			continue
		}
		break
	}

	// Level-1 title.
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == "" {
			i++
			continue
		}
		if lvl, text, ok := heading(lines[i]); ok && lvl == 1 {
			rec.Title = text
			i++
		}
		break
	}
	if rec.Title == "" {
		return nil, ErrNoTitle
	}

	// Metadata bullets between the title and the first level-2 heading.
	// First occurrence wins.
	for ; i < len(lines); i++ {
		if lvl, _, ok := heading(lines[i]); ok && lvl >= 2 {
			break
		}
		text, ok := bullet(lines[i])
		if !ok {
			continue
		}
		key, value, found := strings.Cut(text, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(stripComments(value))
		switch strings.TrimSpace(key) {
		case "Status":
			if rec.Status != "" {
				continue
			}
			if rest, isSuperseded := strings.CutPrefix(value, "superseded by"); isSuperseded {
				rec.Status = StatusSuperseded
				rec.SupersededBy = strings.TrimSpace(rest)
			} else {
				rec.Status = value
			}
		case "Deciders":
			if rec.Deciders == nil {
				rec.Deciders = splitCSV(value)
			}
		case "Date":
			if rec.Date == "" {
				rec.Date = value
			}
		case "Technical Story":
			if rec.TechnicalStory == "" {
				rec.TechnicalStory = value
			}
		}
	}

	// Level-2 sections with raw bodies, in document order.
	for i < len(lines) {
		lvl, text, ok := heading(lines[i])
		if !ok || lvl != 2 {
			i++
			continue
		}
		sec := Section{Heading: text, Line: i + 1}
		i++
		start := i
		for i < len(lines) {
			if l, _, isHeading := heading(lines[i]); isHeading && l <= 2 {
				break
			}
			i++
		}
		sec.Lines = trimBlank(lines[start:i])
		rec.Sections = append(rec.Sections, sec)
	}

	// Field extraction from the first instance of each recognized heading.
	seen := make(map[string]bool, len(rec.Sections))
	for idx := range rec.Sections {
		sec := &rec.Sections[idx]
		if seen[sec.Heading] {
			continue
		}
		seen[sec.Heading] = true
		switch sec.Heading {
		case HeadingProblem:
			rec.Problem = strings.TrimSpace(strings.Join(sec.Lines, "\n"))
		case HeadingDrivers:
			rec.Drivers = bulletItems(sec.Lines)
		case HeadingConsidered:
			rec.Considered = bulletItems(sec.Lines)
		case HeadingOutcome:
			parseOutcome(rec, sec)
		case HeadingProsCons:
			rec.Options = parseOptions(sec)
		}
	}
	return rec, nil
}

// parseOutcome extracts the chosen option, its rationale and the optional
// consequence subsections.
func parseOutcome(rec *Record, sec *Section) {
	sub := "" // current level-3 subsection
	for _, line := range sec.Lines {
		if lvl, text, ok := heading(line); ok && lvl == 3 {
			switch text {
			case HeadingPositive:
				sub = "+"
			case HeadingNegative:
				sub = "-"
			default:
				sub = ""
			}
			continue
		}
		text, isBullet := bullet(line)
		if !isBullet {
			text = strings.TrimSpace(line)
		}
		if isBullet && sub != "" {
			item := strings.TrimSpace(stripComments(text))
			if sub == "+" {
				rec.Positive = append(rec.Positive, item)
			} else {
				rec.Negative = append(rec.Negative, item)
			}
			continue
		}
		if sub != "" || rec.Chosen != "" {
			continue
		}
		if rest, ok := strings.CutPrefix(text, "Chosen option:"); ok {
			parseChosen(rec, rest)
		}
	}
}

// parseChosen splits `"<name>", because <justification>` forms. Unquoted
// names are taken up to the first comma.
func parseChosen(rec *Record, rest string) {
	rest = strings.TrimSpace(stripComments(rest))
	if name, after, ok := cutQuoted(rest); ok {
		rec.Chosen = name
		rest = after
	} else if c := strings.Index(rest, ","); c >= 0 {
		rec.Chosen = strings.TrimSpace(rest[:c])
		rest = rest[c:]
	} else {
		rec.Chosen = rest
		rest = ""
	}
	rest = strings.TrimSpace(rest)
	rest = strings.TrimSpace(strings.TrimPrefix(rest, ","))
	if r, ok := strings.CutPrefix(rest, "because"); ok {
		rest = strings.TrimSpace(r)
	}
	rec.Rationale = rest
}

// parseOptions walks the level-3 option headings and classifies their
// evaluation bullets.
func parseOptions(sec *Section) []Option {
	var opts []Option
	for _, line := range sec.Lines {
		if lvl, text, ok := heading(line); ok && lvl == 3 {
			opts = append(opts, Option{Name: text})
			continue
		}
		if len(opts) == 0 {
			continue
		}
		cur := &opts[len(opts)-1]
		if text, ok := bullet(line); ok {
			text = strings.TrimSpace(stripComments(text))
			switch {
			case strings.HasPrefix(text, "Good, because "):
				cur.Pros = append(cur.Pros, strings.TrimPrefix(text, "Good, because "))
			case strings.HasPrefix(text, "Bad, because "):
				cur.Cons = append(cur.Cons, strings.TrimPrefix(text, "Bad, because "))
			default:
				cur.Unclassified = append(cur.Unclassified, text)
			}
			continue
		}
		t := strings.TrimSpace(stripComments(line))
		if t != "" && len(cur.Pros)+len(cur.Cons)+len(cur.Unclassified) == 0 {
			if cur.Description == "" {
				cur.Description = t
			} else {
				cur.Description += "\n" + t
			}
		}
	}
	return opts
}

// parseLicense consumes one HTML comment block starting at lines[start] and
// returns the SPDX header found in it, nil when the block carries none. The
// returned index points past the block.
func parseLicense(lines []string, start int) (*LicenseHeader, int) {
	var block []string
	i := start
	for ; i < len(lines); i++ {
		l := lines[i]
		if i == start {
			l = strings.TrimPrefix(strings.TrimSpace(l), "<!--")
		}
		done := false
		if idx := strings.Index(l, "-->"); idx >= 0 {
			l = l[:idx]
			done = true
		}
		if t := strings.TrimSpace(l); t != "" {
			block = append(block, t)
		}
		if done {
			i++
			break
		}
	}
	hdr := &LicenseHeader{}
	for _, l := range block {
		switch {
		case strings.HasPrefix(l, "SPDX-FileCopyrightText:"):
			hdr.Copyrights = append(hdr.Copyrights, strings.TrimSpace(strings.TrimPrefix(l, "SPDX-FileCopyrightText:")))
		case strings.HasPrefix(l, "SPDX-FileContributor:"):
			hdr.Contributors = append(hdr.Contributors, strings.TrimSpace(strings.TrimPrefix(l, "SPDX-FileContributor:")))
		case strings.HasPrefix(l, "SPDX-License-Identifier:"):
			hdr.Licenses = append(hdr.Licenses, strings.TrimSpace(strings.TrimPrefix(l, "SPDX-License-Identifier:")))
		}
	}
	if len(hdr.Copyrights)+len(hdr.Contributors)+len(hdr.Licenses) == 0 {
		return nil, i
	}
	return hdr, i
}
