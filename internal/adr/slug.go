// SPDX-License-Identifier: MIT

package adr

import (
	"fmt"
	"regexp"
	"strings"

	unorm "golang.org/x/text/unicode/norm"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug derives a stable kebab-case identifier from a record title.
func Slug(title string) string {
	s := unorm.NFC.String(strings.ToLower(strings.TrimSpace(title)))
	s = nonSlug.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Filename builds the canonical record filename, NNNN-kebab-title.md.
func Filename(number int, title string) string {
	return fmt.Sprintf("%04d-%s.md", number, Slug(title))
}

// NumberFromFilename reads the numeric NNNN- prefix of a record filename.
// Returns 0 when the name carries none.
func NumberFromFilename(name string) int {
	n := 0
	digits := 0
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < '0' || c > '9' {
			if c != '-' || digits == 0 {
				return 0
			}
			return n
		}
		n = n*10 + int(c-'0')
		digits++
	}
	return 0
}
