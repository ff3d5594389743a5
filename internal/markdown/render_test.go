package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_BasicHTML(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("# Title\n\nA paragraph with **bold** text.\n")
	require.NoError(t, err)

	assert.Contains(t, out, `<h1 id="title">Title</h1>`)
	assert.Contains(t, out, "<strong>bold</strong>")
}

func TestRenderer_HeadingIDsMatchExtractor(t *testing.T) {
	source := "# Getting Started\n## Setup\n## Setup\n"
	r := NewRenderer()

	out, err := r.Render(source)
	require.NoError(t, err)

	for _, h := range ExtractHeadings(source) {
		assert.Contains(t, out, `id="`+h.Anchor+`"`, "renderer should emit the extractor's anchor %q", h.Anchor)
	}
}

func TestRenderer_GFMTables(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)

	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>1</td>")
}

func TestRenderer_MermaidBlocks(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("```mermaid\ngraph TD;\n  A-->B;\n```\n")
	require.NoError(t, err)

	assert.Contains(t, out, `<pre class="mermaid">`)
	assert.Contains(t, out, "A--&gt;B;")
	assert.NotContains(t, out, "<code class=\"language-mermaid\">")
}

func TestRenderer_OrdinaryCodeBlocks(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("```go\nfmt.Println(\"hi\")\n```\n")
	require.NoError(t, err)

	assert.Contains(t, out, `<code class="language-go">`)
	assert.Contains(t, out, "fmt.Println(&#34;hi&#34;)")

	out, err = r.Render("```\nplain\n```\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<pre><code>plain\n</code></pre>")
}

func TestRenderer_RawHTMLEscaped(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("before <script>alert(1)</script> after\n")
	require.NoError(t, err)

	assert.NotContains(t, out, "<script>")
}

func TestRenderer_ConcurrentUse(t *testing.T) {
	r := NewRenderer()

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := r.Render(strings.Repeat("# H\ntext\n\n", 50))
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done)
	}
}

func TestExtractDiagrams(t *testing.T) {
	source := "# Doc\n\n```mermaid\ngraph TD;\nA-->B;\n```\n\ntext\n\n```go\ncode\n```\n\n```mermaid\nsequenceDiagram\n```\n"

	diagrams := ExtractDiagrams(source)
	require.Len(t, diagrams, 2)

	assert.Equal(t, 0, diagrams[0].Index)
	assert.Equal(t, "graph TD;\nA-->B;\n", diagrams[0].Source)
	assert.Equal(t, 1, diagrams[1].Index)
	assert.Equal(t, "sequenceDiagram\n", diagrams[1].Source)
}

func TestExtractDiagrams_None(t *testing.T) {
	assert.Empty(t, ExtractDiagrams("# Doc\n\nno fences\n"))
	assert.Empty(t, ExtractDiagrams("```go\ncode only\n```\n"))
}
