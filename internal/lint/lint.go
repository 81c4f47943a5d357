// SPDX-License-Identifier: MIT

package lint

import (
	"strings"
	"time"

	"github.com/adrkit/adrkit/internal/adr"
)

// Rule identifiers. These are stable strings: they appear in CLI output, API
// responses and metric labels.
const (
	RuleMissingTitle               = "missing-title"
	RuleMissingSection             = "missing-section"
	RuleDuplicateSection           = "duplicate-section"
	RuleMissingStatus              = "missing-status"
	RuleUnknownStatus              = "unknown-status"
	RuleSupersededWithoutSuccessor = "superseded-without-successor"
	RuleMissingDate                = "missing-date"
	RuleInvalidDate                = "invalid-date"
	RuleMissingDeciders            = "missing-deciders"
	RuleEmptyDriver                = "empty-driver"
	RuleNoConsideredOptions        = "no-considered-options"
	RuleDuplicateOption            = "duplicate-option"
	RuleMissingChosenOption        = "missing-chosen-option"
	RuleChosenNotConsidered        = "chosen-not-considered"
	RuleOptionNoEvaluation         = "option-no-evaluation"
	RuleUnclassifiedEvaluation     = "unclassified-evaluation"
	RuleMissingLicenseHeader       = "missing-license-header"
	RuleParseError                 = "parse-error"
)

// DateLayout is the required form of the Date metadata bullet.
const DateLayout = "2006-01-02"

// Options tunes rule severities.
type Options struct {
	// Strict promotes the license-header rule to error severity.
	Strict bool
}

// Lint checks rec with default options.
func Lint(rec *adr.Record, path string) Result {
	return Options{}.Lint(rec, path)
}

// Lint checks one parsed record and returns its findings.
func (o Options) Lint(rec *adr.Record, path string) Result {
	res := Result{Path: path}
	if rec == nil {
		res.add(SeverityError, RuleParseError, 0, "no record")
		return res
	}
	o.checkLicense(&res, rec)
	checkTitle(&res, rec)
	checkMetadata(&res, rec)
	checkSections(&res, rec)
	checkDrivers(&res, rec)
	checkOptions(&res, rec)
	checkOutcome(&res, rec)
	return res
}

// File parses and lints the document at path. Parse failures come back as
// findings rather than an error so directory runs report broken files and
// keep going. The record is nil when parsing failed.
func (o Options) File(path string) (*adr.Record, Result) {
	rec, err := adr.ParseFile(path)
	if err != nil {
		return nil, ParseFailure(path, err)
	}
	return rec, o.Lint(rec, path)
}

// ParseFailure reports a document that failed to parse as a single
// error-severity finding.
func ParseFailure(path string, err error) Result {
	res := Result{Path: path}
	res.add(SeverityError, RuleParseError, 0, "%v", err)
	return res
}

func (o Options) checkLicense(res *Result, rec *adr.Record) {
	if rec.License != nil {
		return
	}
	sev := SeverityWarning
	if o.Strict {
		sev = SeverityError
	}
	res.add(sev, RuleMissingLicenseHeader, 1, "no leading SPDX license comment")
}

func checkTitle(res *Result, rec *adr.Record) {
	if strings.TrimSpace(rec.Title) == "" {
		res.add(SeverityError, RuleMissingTitle, 1, "document has no level-1 title")
	}
}

func checkMetadata(res *Result, rec *adr.Record) {
	switch {
	case rec.Status == "":
		res.add(SeverityWarning, RuleMissingStatus, 0, "no Status metadata")
	case !adr.KnownStatus(rec.Status):
		res.add(SeverityWarning, RuleUnknownStatus, 0,
			"status %q is not one of proposed, accepted, rejected, deprecated, superseded", rec.Status)
	}
	if rec.Status == adr.StatusSuperseded && rec.SupersededBy == "" {
		res.add(SeverityWarning, RuleSupersededWithoutSuccessor, 0,
			"status is superseded but names no successor record")
	}

	switch {
	case rec.Date == "":
		res.add(SeverityError, RuleMissingDate, 0, "no Date metadata")
	default:
		if _, err := time.Parse(DateLayout, rec.Date); err != nil {
			res.add(SeverityError, RuleInvalidDate, 0, "date %q is not in YYYY-MM-DD form", rec.Date)
		}
	}

	if len(rec.Deciders) == 0 {
		res.add(SeverityWarning, RuleMissingDeciders, 0, "no Deciders metadata")
	}
}

func checkSections(res *Result, rec *adr.Record) {
	for _, h := range adr.RequiredHeadings {
		if rec.SectionCount(h) == 0 {
			res.add(SeverityError, RuleMissingSection, 0, "required section %q is missing", h)
		}
	}
	seen := make(map[string]bool, len(rec.Sections))
	for _, sec := range rec.Sections {
		if !adr.RecognizedHeading(sec.Heading) {
			continue
		}
		if seen[sec.Heading] {
			res.add(SeverityError, RuleDuplicateSection, sec.Line, "section %q appears more than once", sec.Heading)
			continue
		}
		seen[sec.Heading] = true
	}
}

func checkDrivers(res *Result, rec *adr.Record) {
	line := sectionLine(rec, adr.HeadingDrivers)
	for i, d := range rec.Drivers {
		if strings.TrimSpace(d) == "" {
			res.add(SeverityError, RuleEmptyDriver, line, "decision driver %d is empty", i+1)
		}
	}
}

func checkOptions(res *Result, rec *adr.Record) {
	conLine := sectionLine(rec, adr.HeadingConsidered)
	if len(rec.Considered) == 0 {
		res.add(SeverityError, RuleNoConsideredOptions, conLine, "no considered options listed")
	}
	seen := make(map[string]string, len(rec.Considered))
	for _, opt := range rec.Considered {
		key := adr.NameKey(opt)
		if key == "" {
			continue
		}
		if first, dup := seen[key]; dup {
			res.add(SeverityError, RuleDuplicateOption, conLine,
				"options %q and %q normalize to the same name", first, opt)
			continue
		}
		seen[key] = opt
	}

	prosLine := sectionLine(rec, adr.HeadingProsCons)
	for _, opt := range rec.Options {
		if len(opt.Pros) == 0 && len(opt.Cons) == 0 {
			res.add(SeverityWarning, RuleOptionNoEvaluation, prosLine,
				"option %q has no Good/Bad evaluation", opt.Name)
		}
		for _, u := range opt.Unclassified {
			res.add(SeverityWarning, RuleUnclassifiedEvaluation, prosLine,
				"option %q: bullet %q has neither a Good nor a Bad prefix", opt.Name, snip(u, 48))
		}
	}
}

func checkOutcome(res *Result, rec *adr.Record) {
	sec := rec.FirstSection(adr.HeadingOutcome)
	if sec == nil {
		// missing-section already covers the absent section
		return
	}
	if rec.Chosen == "" {
		res.add(SeverityError, RuleMissingChosenOption, sec.Line, `no "Chosen option:" line in Decision Outcome`)
		return
	}
	if _, ok := adr.MatchOption(rec.Chosen, rec.Considered); !ok {
		res.add(SeverityError, RuleChosenNotConsidered, sec.Line,
			"chosen option %q does not match any considered option", rec.Chosen)
	}
}

func sectionLine(rec *adr.Record, heading string) int {
	if sec := rec.FirstSection(heading); sec != nil {
		return sec.Line
	}
	return 0
}

func snip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
