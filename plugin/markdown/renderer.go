// Package markdown renders card faces to HTML and extracts plain-text
// snippets for list previews.
package markdown

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

const (
	// DefaultSnippetLength is the rune budget for list previews.
	DefaultSnippetLength = 120

	// maxBoundaryScan limits how far a truncation point may move backward
	// to land on a word boundary.
	maxBoundaryScan = 10
)

// Renderer converts card markdown to HTML and plain text.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a renderer with GFM extensions enabled.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// ToHTML renders markdown source to HTML.
func (r *Renderer) ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ToPlainText strips markdown structure, keeping only the visible text.
// Block boundaries collapse to single spaces.
func (r *Renderer) ToPlainText(source string) string {
	src := []byte(source)
	doc := r.md.Parser().Parse(text.NewReader(src))

	var builder strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				builder.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			builder.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				builder.WriteByte(' ')
			}
		case *ast.AutoLink:
			builder.Write(node.URL(src))
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				segment := lines.At(i)
				builder.Write(segment.Value(src))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(builder.String()), " ")
}

// Snippet returns a plain-text preview of at most maxChars runes, truncated
// at a word boundary with a trailing ellipsis. A non-positive maxChars uses
// DefaultSnippetLength.
func (r *Renderer) Snippet(source string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultSnippetLength
	}

	plain := r.ToPlainText(source)
	runes := []rune(plain)
	if len(runes) <= maxChars {
		return plain
	}

	end := adjustToWordBoundary(runes, maxChars)
	return strings.TrimRight(string(runes[:end]), " ") + "..."
}

// adjustToWordBoundary moves pos backward to the nearest space, scanning at
// most maxBoundaryScan runes, so truncation does not split a word.
func adjustToWordBoundary(runes []rune, pos int) int {
	for i := pos; i > 0 && i > pos-maxBoundaryScan; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i - 1
		}
	}
	return pos
}
