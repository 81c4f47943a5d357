// SPDX-License-Identifier: MIT

// Package adr models MADR-style architecture decision records. It parses the
// markdown dialect into a structured Record, serializes Records back to
// normalized markdown, and matches chosen options against considered ones.
package adr

// Recognized status values. Free text is tolerated by the parser and
// reported by lint.
const (
	StatusProposed   = "proposed"
	StatusAccepted   = "accepted"
	StatusRejected   = "rejected"
	StatusDeprecated = "deprecated"
	StatusSuperseded = "superseded"
)

// KnownStatus reports whether s is one of the recognized status values.
func KnownStatus(s string) bool {
	switch s {
	case StatusProposed, StatusAccepted, StatusRejected, StatusDeprecated, StatusSuperseded:
		return true
	}
	return false
}

// Recognized level-2 headings, literal and case-sensitive.
const (
	HeadingProblem    = "Context and Problem Statement"
	HeadingDrivers    = "Decision Drivers"
	HeadingConsidered = "Considered Options"
	HeadingOutcome    = "Decision Outcome"
	HeadingProsCons   = "Pros and Cons of the Options"
)

// Level-3 subsection headings inside Decision Outcome.
const (
	HeadingPositive = "Positive Consequences"
	HeadingNegative = "Negative Consequences"
)

// RequiredHeadings are the sections every record must carry.
var RequiredHeadings = []string{HeadingProblem, HeadingConsidered, HeadingOutcome}

// RecognizedHeading reports whether h is a heading this model interprets.
func RecognizedHeading(h string) bool {
	switch h {
	case HeadingProblem, HeadingDrivers, HeadingConsidered, HeadingOutcome, HeadingProsCons:
		return true
	}
	return false
}

// LicenseHeader is the leading SPDX comment block of a record, following the
// REUSE convention for markdown files.
type LicenseHeader struct {
	Copyrights   []string `json:"copyrights,omitempty"`   // SPDX-FileCopyrightText values
	Contributors []string `json:"contributors,omitempty"` // SPDX-FileContributor values
	Licenses     []string `json:"licenses,omitempty"`     // SPDX-License-Identifier values
}

// Section is one level-2 section in document order, with its raw body. The
// parser keeps every section here, including the recognized ones, so the
// writer can reproduce unknown content and duplicate headings verbatim.
type Section struct {
	Heading string   `json:"heading"`
	Lines   []string `json:"lines,omitempty"` // body lines, outer blank lines trimmed
	Line    int      `json:"-"`               // 1-based heading line, 0 when synthesized
}

// Option is one considered alternative under "Pros and Cons of the Options".
type Option struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Pros         []string `json:"pros,omitempty"`         // "Good, because ..." bullets
	Cons         []string `json:"cons,omitempty"`         // "Bad, because ..." bullets
	Unclassified []string `json:"unclassified,omitempty"` // bullets with neither prefix
}

// Record is one parsed decision record.
type Record struct {
	Number         int      `json:"number,omitempty"` // from the NNNN- filename prefix
	Title          string   `json:"title"`
	Status         string   `json:"status,omitempty"`
	SupersededBy   string   `json:"supersededBy,omitempty"`
	Deciders       []string `json:"deciders,omitempty"`
	Date           string   `json:"date,omitempty"` // ISO YYYY-MM-DD, kept verbatim
	TechnicalStory string   `json:"technicalStory,omitempty"`

	Problem    string   `json:"problem,omitempty"`
	Drivers    []string `json:"drivers,omitempty"`
	Considered []string `json:"considered,omitempty"`
	Chosen     string   `json:"chosen,omitempty"`
	Rationale  string   `json:"rationale,omitempty"`
	Positive   []string `json:"positive,omitempty"`
	Negative   []string `json:"negative,omitempty"`
	Options    []Option `json:"options,omitempty"`

	License  *LicenseHeader `json:"license,omitempty"`
	Sections []Section      `json:"sections,omitempty"`
}

// FirstSection returns the first section with the given heading, or nil.
func (r *Record) FirstSection(heading string) *Section {
	for i := range r.Sections {
		if r.Sections[i].Heading == heading {
			return &r.Sections[i]
		}
	}
	return nil
}

// SectionCount returns how many sections carry the given heading.
func (r *Record) SectionCount(heading string) int {
	n := 0
	for i := range r.Sections {
		if r.Sections[i].Heading == heading {
			n++
		}
	}
	return n
}
