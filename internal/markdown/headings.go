// Package markdown renders wiki markdown to HTML and extracts document
// structure (headings, table of contents, diagram blocks).
package markdown

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Heading is one ATX heading discovered in a markdown document.
type Heading struct {
	Level  int    `json:"level"` // 1-6
	Text   string `json:"text"`
	Anchor string `json:"anchor"`
}

// atxHeadingPattern matches ATX headings: 1-6 leading hashes, required
// whitespace, then the heading text with optional trailing hashes.
var atxHeadingPattern = regexp.MustCompile(`^(#{1,6})[ \t]+(.*?)[ \t]*#*[ \t]*$`)

// fencePattern matches the opening/closing of fenced code blocks.
var fencePattern = regexp.MustCompile("^(```|~~~)")

// ExtractHeadings scans source line by line and returns every ATX heading
// outside fenced code blocks, in document order. Anchors follow the same
// slug algorithm the renderer uses for heading IDs, deduplicated with a
// numeric suffix, so TOC links always resolve.
func ExtractHeadings(source string) []Heading {
	var headings []Heading
	slugger := newSlugger()

	inFence := false
	for _, line := range strings.Split(source, "\n") {
		if fencePattern.MatchString(strings.TrimLeft(line, " \t")) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		m := atxHeadingPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		text := strings.TrimSpace(m[2])
		if text == "" {
			continue
		}

		headings = append(headings, Heading{
			Level:  len(m[1]),
			Text:   text,
			Anchor: slugger.slug(text),
		})
	}

	return headings
}

// TOCItem is a node of the nested table of contents.
type TOCItem struct {
	Heading
	Children []*TOCItem `json:"children,omitempty"`
}

// TableOfContents nests headings by level. A heading becomes a child of the
// nearest preceding heading with a smaller level; skipped levels (h1 -> h3)
// nest directly without inventing intermediate entries.
func TableOfContents(headings []Heading) []*TOCItem {
	var root []*TOCItem
	var stack []*TOCItem

	for _, h := range headings {
		item := &TOCItem{Heading: h}

		for len(stack) > 0 && stack[len(stack)-1].Level >= h.Level {
			stack = stack[:len(stack)-1]
		}

		if len(stack) == 0 {
			root = append(root, item)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, item)
		}
		stack = append(stack, item)
	}

	return root
}

// slugger produces GitHub-style anchors, deduplicating repeats with -1, -2…
type slugger struct {
	seen map[string]int
}

func newSlugger() *slugger {
	return &slugger{seen: make(map[string]int)}
}

func (s *slugger) slug(text string) string {
	base := Slugify(text)
	if base == "" {
		base = "section"
	}

	n, dup := s.seen[base]
	s.seen[base] = n + 1
	if !dup {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}

// Slugify lowercases text, replaces whitespace runs with single hyphens and
// drops everything that is not a letter, digit, hyphen or underscore.
func Slugify(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastWasHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
			lastWasHyphen = false
		case unicode.IsSpace(r) || r == '-':
			if !lastWasHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastWasHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}
