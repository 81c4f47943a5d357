// SPDX-License-Identifier: MIT

package adr

import (
	"regexp"
	"strings"

	unorm "golang.org/x/text/unicode/norm"
)

var (
	// Version-constraint operators, multi-character forms first.
	constraintOps = regexp.MustCompile(`>=|<=|==|~=|!=|>|<`)
	// Punctuation folded to spaces. Dots survive so "3.10" stays intact.
	foldedPunct = regexp.MustCompile("[\\[\\](){}\"'`,;:!?*_-]")
	whitespace  = regexp.MustCompile(`\s+`)
)

// NameKey normalizes an option name for matching: Unicode NFC, lowercase,
// version-constraint operators dropped, punctuation folded, whitespace
// collapsed. "Python >= 3.10" and `Python 3.10` share a key; "Java" keeps
// its own.
func NameKey(s string) string {
	s = unorm.NFC.String(s)
	s = strings.ToLower(strings.TrimSpace(s))
	// Re-normalize after case conversion (lowercase may create new
	// combining sequences).
	s = unorm.NFC.String(s)
	s = constraintOps.ReplaceAllString(s, " ")
	s = foldedPunct.ReplaceAllString(s, " ")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// MatchOption finds the considered option the chosen name refers to. Exact
// key equality wins; otherwise one key may extend the other by whole words,
// which covers names that carry extra qualifiers on one side only.
func MatchOption(chosen string, considered []string) (string, bool) {
	key := NameKey(chosen)
	if key == "" {
		return "", false
	}
	for _, opt := range considered {
		if NameKey(opt) == key {
			return opt, true
		}
	}
	for _, opt := range considered {
		ok := NameKey(opt)
		if ok == "" {
			continue
		}
		if strings.HasPrefix(ok, key+" ") || strings.HasPrefix(key, ok+" ") {
			return opt, true
		}
	}
	return "", false
}
