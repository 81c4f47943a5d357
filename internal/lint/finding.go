// SPDX-License-Identifier: MIT

// Package lint checks parsed decision records for structural problems. Rules
// accumulate as findings so one pass reports everything a document needs
// fixed instead of failing on the first defect.
package lint

import (
	"fmt"
	"strings"
)

// Severity classifies a finding. Errors make a document fail validation,
// warnings do not.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one rule violation in one document.
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Path     string   `json:"path,omitempty"`
	Line     int      `json:"line,omitempty"` // 1-based, 0 when not tied to a line
	Message  string   `json:"message"`
}

// String renders the finding in file:line: severity: rule: message form.
func (f Finding) String() string {
	var b strings.Builder
	if f.Path != "" {
		b.WriteString(f.Path)
		if f.Line > 0 {
			fmt.Fprintf(&b, ":%d", f.Line)
		}
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "%s: %s: %s", f.Severity, f.Rule, f.Message)
	return b.String()
}

// Result aggregates the findings for one document.
type Result struct {
	Path     string    `json:"path"`
	Findings []Finding `json:"findings,omitempty"`
}

func (r *Result) add(sev Severity, rule string, line int, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{
		Rule:     rule,
		Severity: sev,
		Path:     r.Path,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}

// OK reports whether the document has no error-severity findings.
func (r Result) OK() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Errors returns the number of error-severity findings.
func (r Result) Errors() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Warnings returns the number of warning-severity findings.
func (r Result) Warnings() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// WorstSeverity returns the highest severity present, or "" for a clean
// document.
func (r Result) WorstSeverity() Severity {
	worst := Severity("")
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return SeverityError
		}
		worst = SeverityWarning
	}
	return worst
}

// Err folds the error-severity findings into a single error value, nil when
// the document has none.
func (r Result) Err() error {
	var errs []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			errs = append(errs, f)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return ResultError{findings: errs}
}

// ResultError bundles error-severity findings into one error value.
type ResultError struct {
	findings []Finding
}

// Findings returns the individual findings making up the failure.
func (e ResultError) Findings() []Finding { return e.findings }

// Error implements the error interface.
func (e ResultError) Error() string {
	if len(e.findings) == 0 {
		return ""
	}
	msgs := make([]string, len(e.findings))
	for i, f := range e.findings {
		msgs[i] = fmt.Sprintf("%s: %s", f.Rule, f.Message)
	}
	return strings.Join(msgs, "; ")
}
