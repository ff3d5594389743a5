package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractHeadings(t *testing.T) {
	source := `# Getting Started

Intro text.

## Installation

### Linux

### Windows

## Usage

Some usage notes with an inline # that is not a heading.

####### seven hashes is not a heading
`

	headings := ExtractHeadings(source)
	require.Len(t, headings, 5)

	assert.Equal(t, Heading{Level: 1, Text: "Getting Started", Anchor: "getting-started"}, headings[0])
	assert.Equal(t, Heading{Level: 2, Text: "Installation", Anchor: "installation"}, headings[1])
	assert.Equal(t, Heading{Level: 3, Text: "Linux", Anchor: "linux"}, headings[2])
	assert.Equal(t, Heading{Level: 3, Text: "Windows", Anchor: "windows"}, headings[3])
	assert.Equal(t, Heading{Level: 2, Text: "Usage", Anchor: "usage"}, headings[4])
}

func TestExtractHeadings_SkipsFencedCode(t *testing.T) {
	source := "# Real\n\n```bash\n# just a shell comment\n```\n\n~~~\n## also not a heading\n~~~\n\n## Also Real\n"

	headings := ExtractHeadings(source)
	require.Len(t, headings, 2)
	assert.Equal(t, "Real", headings[0].Text)
	assert.Equal(t, "Also Real", headings[1].Text)
}

func TestExtractHeadings_TrailingHashesAndWhitespace(t *testing.T) {
	headings := ExtractHeadings("## Closed Heading ##\n###   Padded   \n")
	require.Len(t, headings, 2)
	assert.Equal(t, "Closed Heading", headings[0].Text)
	assert.Equal(t, "Padded", headings[1].Text)
}

func TestExtractHeadings_DuplicateAnchors(t *testing.T) {
	headings := ExtractHeadings("# Setup\n## Setup\n### Setup\n")
	require.Len(t, headings, 3)
	assert.Equal(t, "setup", headings[0].Anchor)
	assert.Equal(t, "setup-1", headings[1].Anchor)
	assert.Equal(t, "setup-2", headings[2].Anchor)
}

func TestExtractHeadings_Empty(t *testing.T) {
	assert.Empty(t, ExtractHeadings(""))
	assert.Empty(t, ExtractHeadings("plain paragraph\nno headings here\n"))
	assert.Empty(t, ExtractHeadings("#no-space-is-not-a-heading\n"))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Getting Started", "getting-started"},
		{"  Spaces  Everywhere  ", "spaces-everywhere"},
		{"What's New?", "whats-new"},
		{"API & CLI", "api-cli"},
		{"already-hyphenated", "already-hyphenated"},
		{"Ünïcödé Tëxt", "ünïcödé-tëxt"},
		{"trailing punctuation!!!", "trailing-punctuation"},
		{"snake_case_stays", "snake_case_stays"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestTableOfContents(t *testing.T) {
	headings := ExtractHeadings("# A\n## B\n### C\n## D\n# E\n")
	toc := TableOfContents(headings)

	require.Len(t, toc, 2)
	assert.Equal(t, "A", toc[0].Text)
	assert.Equal(t, "E", toc[1].Text)

	require.Len(t, toc[0].Children, 2)
	assert.Equal(t, "B", toc[0].Children[0].Text)
	assert.Equal(t, "D", toc[0].Children[1].Text)

	require.Len(t, toc[0].Children[0].Children, 1)
	assert.Equal(t, "C", toc[0].Children[0].Children[0].Text)
}

func TestTableOfContents_SkippedLevels(t *testing.T) {
	// h1 -> h3 nests directly under h1 without a synthetic h2.
	toc := TableOfContents(ExtractHeadings("# Top\n### Deep\n## Middle\n"))

	require.Len(t, toc, 1)
	require.Len(t, toc[0].Children, 2)
	assert.Equal(t, "Deep", toc[0].Children[0].Text)
	assert.Equal(t, "Middle", toc[0].Children[1].Text)
}

func TestTableOfContents_Empty(t *testing.T) {
	assert.Empty(t, TableOfContents(nil))
}
