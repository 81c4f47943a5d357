// SPDX-License-Identifier: MIT

package adr

import (
	"fmt"
	"io"
	"strings"
)

// Marshal serializes rec to normalized markdown. Section order follows
// rec.Sections; records built by hand (no sections) get the canonical MADR
// order. Recognized sections render from the structured fields, everything
// else verbatim, so parse → Marshal → parse yields an equivalent Record.
func Marshal(rec *Record) ([]byte, error) {
	if rec == nil {
		return nil, fmt.Errorf("adr: nil record")
	}
	if strings.TrimSpace(rec.Title) == "" {
		return nil, ErrNoTitle
	}

	var blocks []string
	if lic := renderLicense(rec.License); lic != "" {
		blocks = append(blocks, lic)
	}
	blocks = append(blocks, "# "+rec.Title)
	if meta := renderMeta(rec); meta != "" {
		blocks = append(blocks, meta)
	}

	sections := rec.Sections
	if len(sections) == 0 {
		sections = canonicalSections(rec)
	}
	seen := make(map[string]bool, len(sections))
	for _, sec := range sections {
		first := !seen[sec.Heading]
		seen[sec.Heading] = true
		blocks = append(blocks, renderSection(rec, sec, first))
	}

	return []byte(strings.Join(blocks, "\n\n") + "\n"), nil
}

// Write serializes rec to w in one write, so a failed serialization emits
// nothing.
func Write(w io.Writer, rec *Record) error {
	data, err := Marshal(rec)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func renderLicense(h *LicenseHeader) string {
	if h == nil {
		return ""
	}
	var groups []string
	appendGroup := func(prefix string, values []string) {
		if len(values) == 0 {
			return
		}
		lines := make([]string, len(values))
		for i, v := range values {
			lines[i] = prefix + " " + v
		}
		groups = append(groups, strings.Join(lines, "\n"))
	}
	appendGroup("SPDX-FileCopyrightText:", h.Copyrights)
	appendGroup("SPDX-FileContributor:", h.Contributors)
	appendGroup("SPDX-License-Identifier:", h.Licenses)
	if len(groups) == 0 {
		return ""
	}
	return "<!--\n" + strings.Join(groups, "\n\n") + "\n-->"
}

func renderMeta(rec *Record) string {
	var lines []string
	if rec.Status != "" {
		status := rec.Status
		if rec.Status == StatusSuperseded && rec.SupersededBy != "" {
			status = "superseded by " + rec.SupersededBy
		}
		lines = append(lines, "* Status: "+status)
	}
	if len(rec.Deciders) > 0 {
		lines = append(lines, "* Deciders: "+strings.Join(rec.Deciders, ", "))
	}
	if rec.Date != "" {
		lines = append(lines, "* Date: "+rec.Date)
	}
	if rec.TechnicalStory != "" {
		lines = append(lines, "* Technical Story: "+rec.TechnicalStory)
	}
	return strings.Join(lines, "\n")
}

// canonicalSections synthesizes the MADR section order for records that were
// built in code instead of parsed.
func canonicalSections(rec *Record) []Section {
	var secs []Section
	if rec.Problem != "" {
		secs = append(secs, Section{Heading: HeadingProblem})
	}
	if len(rec.Drivers) > 0 {
		secs = append(secs, Section{Heading: HeadingDrivers})
	}
	if len(rec.Considered) > 0 {
		secs = append(secs, Section{Heading: HeadingConsidered})
	}
	if rec.Chosen != "" || len(rec.Positive)+len(rec.Negative) > 0 {
		secs = append(secs, Section{Heading: HeadingOutcome})
	}
	if len(rec.Options) > 0 {
		secs = append(secs, Section{Heading: HeadingProsCons})
	}
	return secs
}

// renderSection renders one block. Only the first instance of a recognized
// heading is rendered from the structured fields; duplicates and unknown
// sections keep their raw body.
func renderSection(rec *Record, sec Section, first bool) string {
	head := "## " + sec.Heading
	if first {
		switch sec.Heading {
		case HeadingProblem:
			if rec.Problem != "" {
				return head + "\n\n" + rec.Problem
			}
		case HeadingDrivers:
			if len(rec.Drivers) > 0 {
				return head + "\n\n" + renderBullets(rec.Drivers)
			}
		case HeadingConsidered:
			if len(rec.Considered) > 0 {
				return head + "\n\n" + renderBullets(rec.Considered)
			}
		case HeadingOutcome:
			if rec.Chosen != "" || len(rec.Positive)+len(rec.Negative) > 0 {
				return renderOutcome(rec)
			}
		case HeadingProsCons:
			if len(rec.Options) > 0 {
				return renderOptions(rec.Options)
			}
		}
	}
	if len(sec.Lines) == 0 {
		return head
	}
	return head + "\n\n" + strings.Join(sec.Lines, "\n")
}

func renderOutcome(rec *Record) string {
	parts := []string{"## " + HeadingOutcome}
	if rec.Chosen != "" {
		chosen := `Chosen option: "` + rec.Chosen + `"`
		if rec.Rationale != "" {
			chosen += ", because " + rec.Rationale
		}
		parts = append(parts, chosen)
	}
	if len(rec.Positive) > 0 {
		parts = append(parts, "### "+HeadingPositive, renderBullets(rec.Positive))
	}
	if len(rec.Negative) > 0 {
		parts = append(parts, "### "+HeadingNegative, renderBullets(rec.Negative))
	}
	return strings.Join(parts, "\n\n")
}

func renderOptions(options []Option) string {
	parts := []string{"## " + HeadingProsCons}
	for _, opt := range options {
		parts = append(parts, "### "+opt.Name)
		if opt.Description != "" {
			parts = append(parts, opt.Description)
		}
		var bullets []string
		for _, p := range opt.Pros {
			bullets = append(bullets, "Good, because "+p)
		}
		for _, c := range opt.Cons {
			bullets = append(bullets, "Bad, because "+c)
		}
		bullets = append(bullets, opt.Unclassified...)
		if len(bullets) > 0 {
			parts = append(parts, renderBullets(bullets))
		}
	}
	return strings.Join(parts, "\n\n")
}

func renderBullets(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		if item == "" {
			lines[i] = "*"
			continue
		}
		lines[i] = "* " + item
	}
	return strings.Join(lines, "\n")
}
