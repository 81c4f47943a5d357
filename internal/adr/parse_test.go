// SPDX-License-Identifier: MIT

package adr

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSample(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "sample.md"))
	require.NoError(t, err)

	rec, err := ParseBytes(data)
	require.NoError(t, err)

	assert.Equal(t, "Choose Python as the implementation language", rec.Title)
	assert.Equal(t, StatusAccepted, rec.Status)
	assert.Equal(t, []string{"Mara Fischer", "Jonas Keller", "Priya Nair"}, rec.Deciders)
	assert.Equal(t, "2024-03-18", rec.Date)
	assert.Equal(t, "https://git.example.org/workflow/issues/12", rec.TechnicalStory)

	require.NotNil(t, rec.License)
	assert.Equal(t, []string{"2024 Example Research Centre <contact@example.org>"}, rec.License.Copyrights)
	assert.Equal(t, []string{"Mara Fischer", "Jonas Keller"}, rec.License.Contributors)
	assert.Equal(t, []string{"CC-BY-SA-4.0"}, rec.License.Licenses)

	assert.Contains(t, rec.Problem, "implementation language")
	assert.Len(t, rec.Drivers, 3)
	assert.Equal(t, []string{"Python >= 3.10", "Java"}, rec.Considered)

	assert.Equal(t, "Python 3.10", rec.Chosen)
	assert.True(t, strings.HasPrefix(rec.Rationale, "the team already maintains"), "rationale: %q", rec.Rationale)
	assert.Len(t, rec.Positive, 2)
	assert.Len(t, rec.Negative, 1)

	require.Len(t, rec.Options, 2)
	python := rec.Options[0]
	assert.Equal(t, "Python >= 3.10", python.Name)
	assert.Equal(t, "Reference implementation language of the metadata tooling ecosystem.", python.Description)
	assert.Len(t, python.Pros, 2)
	assert.Len(t, python.Cons, 1)
	java := rec.Options[1]
	assert.Equal(t, "Java", java.Name)
	assert.Empty(t, java.Pros)
	assert.Empty(t, java.Cons)

	// Every level-2 section survives in order, including the unrecognized one.
	var headings []string
	for _, sec := range rec.Sections {
		headings = append(headings, sec.Heading)
	}
	assert.Equal(t, []string{
		HeadingProblem, HeadingDrivers, HeadingConsidered,
		HeadingOutcome, HeadingProsCons, "Links",
	}, headings)
}

func TestParseNoTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"blank lines", "\n\n\n"},
		{"only sections", "## Decision Outcome\n\nChosen option: \"X\"\n"},
		{"only comment", "<!-- SPDX-License-Identifier: MIT -->\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tt.input))
			assert.ErrorIs(t, err, ErrNoTitle)
		})
	}
}

func TestParseTooLarge(t *testing.T) {
	_, err := ParseBytes(make([]byte, MaxDocumentSize+1))
	assert.ErrorIs(t, err, ErrTooLarge)

	// Parse over a reader must enforce the same cap.
	big := append([]byte("# Title\n"), make([]byte, MaxDocumentSize)...)
	_, err = Parse(bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestParseCRLF(t *testing.T) {
	input := "# CRLF record\r\n\r\n* Status: proposed\r\n* Date: 2025-01-02\r\n\r\n" +
		"## Context and Problem Statement\r\n\r\nLine endings vary by editor.\r\n\r\n" +
		"## Considered Options\r\n\r\n* LF\r\n* CRLF\r\n\r\n" +
		"## Decision Outcome\r\n\r\nChosen option: \"LF\", because tooling expects it.\r\n"

	rec, err := ParseBytes([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, "CRLF record", rec.Title)
	assert.Equal(t, "proposed", rec.Status)
	assert.Equal(t, "Line endings vary by editor.", rec.Problem)
	assert.Equal(t, []string{"LF", "CRLF"}, rec.Considered)
	assert.Equal(t, "LF", rec.Chosen)
}

func TestParseMetadataAnyOrderAndDashBullets(t *testing.T) {
	input := "# Order\n\n- Date: 2025-03-04\n- Deciders: A, B\n- Status: rejected\n"
	rec, err := ParseBytes([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rec.Status)
	assert.Equal(t, "2025-03-04", rec.Date)
	assert.Equal(t, []string{"A", "B"}, rec.Deciders)
}

func TestParseSupersededStatus(t *testing.T) {
	input := "# Old decision\n\n* Status: superseded by [ADR-0007](0007-new-decision.md)\n"
	rec, err := ParseBytes([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, StatusSuperseded, rec.Status)
	assert.Equal(t, "[ADR-0007](0007-new-decision.md)", rec.SupersededBy)
}

func TestParseDuplicateSectionFirstWins(t *testing.T) {
	input := "# Dup\n\n## Decision Outcome\n\nChosen option: \"first\"\n\n" +
		"## Decision Outcome\n\nChosen option: \"second\"\n"
	rec, err := ParseBytes([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, "first", rec.Chosen)
	assert.Equal(t, 2, rec.SectionCount(HeadingOutcome))
}

func TestParseEmptyDriverKept(t *testing.T) {
	input := "# Drivers\n\n## Decision Drivers\n\n* real driver\n*\n* another\n"
	rec, err := ParseBytes([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"real driver", "", "another"}, rec.Drivers)
}

func TestParseUnclassifiedEvaluation(t *testing.T) {
	input := "# Eval\n\n## Pros and Cons of the Options\n\n### Option A\n\n" +
		"* Good, because it works\n* it is popular\n* Bad, because it costs\n"
	rec, err := ParseBytes([]byte(input))
	require.NoError(t, err)
	require.Len(t, rec.Options, 1)
	opt := rec.Options[0]
	assert.Equal(t, []string{"it works"}, opt.Pros)
	assert.Equal(t, []string{"it costs"}, opt.Cons)
	assert.Equal(t, []string{"it is popular"}, opt.Unclassified)
}

func TestParseStripsInlineComments(t *testing.T) {
	input := "# Title <!-- keep short -->\n\n* Status: proposed <!-- change on approval -->\n\n" +
		"## Considered Options <!-- numbers can vary -->\n\n* Only option\n"
	rec, err := ParseBytes([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, "Title", rec.Title)
	assert.Equal(t, "proposed", rec.Status)
	assert.Equal(t, HeadingConsidered, rec.Sections[0].Heading)
}

func TestParseFileSetsNumber(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0042-pick-a-name.md")
	require.NoError(t, os.WriteFile(path, []byte("# Pick a name\n"), 0o600))

	rec, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 42, rec.Number)
	assert.Equal(t, "Pick a name", rec.Title)
}

func TestNumberFromFilename(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"0001-choose-python.md", 1},
		{"0042-pick-a-name.md", 42},
		{"12-short.md", 12},
		{"readme.md", 0},
		{"-leading-dash.md", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := NumberFromFilename(tt.name); got != tt.want {
			t.Errorf("NumberFromFilename(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}
