package markdown

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Renderer converts wiki markdown into HTML. GFM extensions (tables,
// strikethrough, task lists, autolinks) are enabled; raw HTML in the source
// is escaped. Fenced ```mermaid blocks are emitted as <pre class="mermaid">
// for the client-side diagram renderer instead of ordinary code blocks.
//
// Renderer is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(
				renderer.WithNodeRenderers(util.Prioritized(&codeBlockRenderer{}, 100)),
			),
		),
	}
}

// Render produces the HTML for source. Heading IDs use the same slug
// algorithm as ExtractHeadings so TOC anchors always resolve.
func (r *Renderer) Render(source string) (string, error) {
	ctx := parser.NewContext(parser.WithIDs(newAnchorIDs()))

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf, parser.WithContext(ctx)); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// anchorIDs plugs the shared Slugify algorithm into goldmark's heading ID
// generation, with the same -1, -2… deduplication as ExtractHeadings.
type anchorIDs struct {
	slugger *slugger
	used    map[string]bool
}

func newAnchorIDs() *anchorIDs {
	return &anchorIDs{slugger: newSlugger(), used: make(map[string]bool)}
}

func (ids *anchorIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	return []byte(ids.slugger.slug(string(value)))
}

func (ids *anchorIDs) Put(value []byte) {
	ids.used[string(value)] = true
}

// codeBlockRenderer overrides fenced code block rendering: mermaid blocks
// become diagram containers, everything else renders as a standard
// <pre><code class="language-x"> block.
type codeBlockRenderer struct{}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.FencedCodeBlock)
	lang := string(n.Language(source))

	if lang == DiagramLanguage {
		if entering {
			_, _ = w.WriteString(`<pre class="mermaid">`)
			writeEscapedLines(w, source, n)
		} else {
			_, _ = w.WriteString("</pre>\n")
		}
		return ast.WalkContinue, nil
	}

	if entering {
		if lang != "" {
			fmt.Fprintf(w, "<pre><code class=\"language-%s\">", html.EscapeString(lang))
		} else {
			_, _ = w.WriteString("<pre><code>")
		}
		writeEscapedLines(w, source, n)
	} else {
		_, _ = w.WriteString("</code></pre>\n")
	}
	return ast.WalkContinue, nil
}

func writeEscapedLines(w util.BufWriter, source []byte, n *ast.FencedCodeBlock) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		_, _ = w.WriteString(html.EscapeString(string(line.Value(source))))
	}
}

// DiagramLanguage is the fence info string that marks a diagram block.
const DiagramLanguage = "mermaid"

// Diagram is one extracted diagram definition.
type Diagram struct {
	Index  int    `json:"index"`
	Source string `json:"source"`
}

// ExtractDiagrams returns the bodies of all ```mermaid fences in document
// order, using the parser rather than a text scan so indented and nested
// constructs are handled the same way rendering handles them.
func ExtractDiagrams(src string) []Diagram {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader([]byte(src)))

	var diagrams []Diagram
	source := []byte(src)

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok || string(fence.Language(source)) != DiagramLanguage {
			return ast.WalkContinue, nil
		}

		var b strings.Builder
		lines := fence.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			b.Write(line.Value(source))
		}
		diagrams = append(diagrams, Diagram{Index: len(diagrams), Source: b.String()})
		return ast.WalkContinue, nil
	})

	return diagrams
}

var _ parser.IDs = (*anchorIDs)(nil)
