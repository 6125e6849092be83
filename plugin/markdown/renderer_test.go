package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_ToHTML(t *testing.T) {
	r := NewRenderer()

	html, err := r.ToHTML("A function **f** is *continuous* at `x0`.")
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>f</strong>")
	assert.Contains(t, html, "<em>continuous</em>")
	assert.Contains(t, html, "<code>x0</code>")
}

func TestRenderer_ToHTMLTable(t *testing.T) {
	r := NewRenderer()

	source := "| n | n^2 |\n| --- | --- |\n| 2 | 4 |\n"
	html, err := r.ToHTML(source)
	require.NoError(t, err)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>4</td>")
}

func TestRenderer_ToPlainText(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{
			name:     "inline emphasis stripped",
			source:   "Every **bounded** monotone sequence *converges*.",
			expected: "Every bounded monotone sequence converges.",
		},
		{
			name:     "heading and body merge with a space",
			source:   "## Mean Value Theorem\nIf f is continuous on [a, b].",
			expected: "Mean Value Theorem If f is continuous on [a, b].",
		},
		{
			name:     "list items flatten",
			source:   "- base case\n- inductive step",
			expected: "base case inductive step",
		},
		{
			name:     "link keeps its label",
			source:   "See [the lemma](https://example.com/lemma) first.",
			expected: "See the lemma first.",
		},
		{
			name:     "code block text survives",
			source:   "Apply:\n\n```\na^2 + b^2 = c^2\n```\n",
			expected: "Apply: a^2 + b^2 = c^2",
		},
		{
			name:     "empty source",
			source:   "",
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.ToPlainText(tt.source))
		})
	}
}

func TestRenderer_Snippet(t *testing.T) {
	r := NewRenderer()

	t.Run("short text passes through", func(t *testing.T) {
		assert.Equal(t, "A short statement.", r.Snippet("A short *statement*.", 50))
	})

	t.Run("long text truncates at a word boundary", func(t *testing.T) {
		source := "The intermediate value theorem states that a continuous function on a closed interval attains every value between its endpoints."
		snippet := r.Snippet(source, 40)

		assert.True(t, strings.HasSuffix(snippet, "..."))
		assert.LessOrEqual(t, len([]rune(snippet)), 43)
		// No split word before the ellipsis.
		trimmed := strings.TrimSuffix(snippet, "...")
		assert.True(t, strings.HasSuffix(source, trimmed) || strings.Contains(source, trimmed+" "))
	})

	t.Run("non-positive budget uses the default", func(t *testing.T) {
		source := strings.Repeat("lemma ", 60)
		snippet := r.Snippet(source, 0)
		assert.LessOrEqual(t, len([]rune(snippet)), DefaultSnippetLength+3)
		assert.True(t, strings.HasSuffix(snippet, "..."))
	})
}
