// SPDX-License-Identifier: MIT

package adr

import (
	"regexp"
	"strings"
)

var commentSpan = regexp.MustCompile(`<!--.*?-->`)

// splitLines splits on \n and drops trailing \r so CRLF input parses like LF.
func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}

// heading parses an ATX heading. Returns its level and text with any inline
// HTML comment removed.
func heading(line string) (level int, text string, ok bool) {
	t := strings.TrimSpace(line)
	n := 0
	for n < len(t) && t[n] == '#' {
		n++
	}
	if n == 0 || n > 6 {
		return 0, "", false
	}
	if n < len(t) && t[n] != ' ' {
		return 0, "", false
	}
	return n, strings.TrimSpace(stripComments(t[n:])), true
}

// bullet parses a `* ` or `- ` list item. A bare marker counts as an empty
// item so lint can see it.
func bullet(line string) (text string, ok bool) {
	t := strings.TrimSpace(line)
	if t == "*" || t == "-" {
		return "", true
	}
	if strings.HasPrefix(t, "* ") || strings.HasPrefix(t, "- ") {
		return strings.TrimSpace(t[2:]), true
	}
	return "", false
}

// bulletItems extracts every list item from body lines, keeping empty items.
func bulletItems(lines []string) []string {
	var items []string
	for _, l := range lines {
		if text, ok := bullet(l); ok {
			items = append(items, strings.TrimSpace(stripComments(text)))
		}
	}
	return items
}

// stripComments removes single-line `<!-- ... -->` spans.
func stripComments(s string) string {
	return commentSpan.ReplaceAllString(s, "")
}

// cutQuoted extracts the first double-quoted span of s and returns the text
// after the closing quote.
func cutQuoted(s string) (name, after string, ok bool) {
	open := strings.Index(s, `"`)
	if open < 0 {
		return "", "", false
	}
	end := strings.Index(s[open+1:], `"`)
	if end < 0 {
		return "", "", false
	}
	return s[open+1 : open+1+end], s[open+end+2:], true
}

// splitCSV splits a comma-separated value list, trimming items and dropping
// empties.
func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// trimBlank trims leading and trailing blank lines, copying so callers do
// not alias the source slice.
func trimBlank(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if start == end {
		return nil
	}
	out := make([]string, end-start)
	copy(out, lines[start:end])
	return out
}
