package mpost

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderHTMLParagraphsAndBreaks(t *testing.T) {
	out := RenderHTML("<p>first</p><p>second<br>third</p>")
	require.Equal(t, "first\n\nsecond\nthird", out)
}

func TestRenderHTMLHeading(t *testing.T) {
	out := RenderHTML("<h2>Title</h2><p>body</p>")
	require.Equal(t, "## Title\n\nbody", out)
}

func TestRenderHTMLUnorderedList(t *testing.T) {
	out := RenderHTML("<ul><li>one</li><li>two</li></ul>")
	require.Equal(t, "* one\n* two", out)
}

func TestRenderHTMLOrderedList(t *testing.T) {
	out := RenderHTML("<ol><li>one</li><li>two</li></ol>")
	require.Equal(t, "1. one\n2. two", out)
}

func TestRenderHTMLBlockquote(t *testing.T) {
	out := RenderHTML("<blockquote>quoted line</blockquote>")
	require.Equal(t, "> quoted line", out)
}

func TestRenderHTMLEmphasis(t *testing.T) {
	out := RenderHTML("<p><strong>bold</strong> and <em>italic</em> and <code>code</code></p>")
	require.Equal(t, "**bold** and *italic* and `code`", out)
}

func TestRenderHTMLLinkKeepsTextDropsHref(t *testing.T) {
	out := RenderHTML(`<p>see <a href="https://example.com/x">this page</a></p>`)
	require.Equal(t, "see this page", out)
	require.NotContains(t, out, "example.com")
}

func TestRenderHTMLImageUsesTitleThenAlt(t *testing.T) {
	require.Equal(t, "[a cat]", RenderHTML(`<img alt="a cat">`))
	require.Equal(t, "[caption]", RenderHTML(`<img alt="a cat" title="caption">`))
}
