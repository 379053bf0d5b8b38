package markdown_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/docview/markdown"
)

func TestExtractSpansLink(t *testing.T) {
	spans := markdown.ExtractSpans("see [Example](https://example.com) here")
	require.Len(t, spans, 1)
	assert.Equal(t, "Example", spans[0].Label)
	assert.Equal(t, "https://example.com", spans[0].Target)
	assert.False(t, spans[0].Image)
}

func TestExtractSpansImage(t *testing.T) {
	for _, target := range []string{"image.png", "a/b.JPG", "c.jpeg", "d.tiff", "e.bmp", "f.gif"} {
		spans := markdown.ExtractSpans("[Example](" + target + ")")
		require.Len(t, spans, 1, target)
		assert.True(t, spans[0].Image, target)
	}
	assert.False(t, markdown.IsImageTarget("https://example.com"))
	assert.False(t, markdown.IsImageTarget("notes.md"))
	assert.False(t, markdown.IsImageTarget(""))
}

func TestExtractSpansMalformed(t *testing.T) {
	for _, line := range []string{
		"[unclosed](https://example.com",
		"[no target]",
		"(just parens)",
		"[](empty-label)",
		"plain",
	} {
		assert.Empty(t, markdown.ExtractSpans(line), line)
	}
}

func TestExtractSpansLabelExcludesBracket(t *testing.T) {
	spans := markdown.ExtractSpans("[a [b](c)")
	require.Len(t, spans, 1)
	assert.Equal(t, "b", spans[0].Label)
}

func TestRewriteKeepsLastRange(t *testing.T) {
	text := "go [one](u1) and [two](u2)!"
	spans := markdown.ExtractSpans(text)
	require.Len(t, spans, 2)

	out, ranges := markdown.Rewrite(text, spans)
	assert.Equal(t, "go one and two!", out)
	require.Len(t, ranges, 2)
	assert.Equal(t, markdown.Range{Start: 3, End: 6}, ranges[0])

	last, ok := markdown.LastRange(ranges)
	require.True(t, ok)
	assert.Equal(t, markdown.Range{Start: 11, End: 14}, last)
	assert.True(t, last.Contains(11))
	assert.False(t, last.Contains(14))
}

func TestRewriteCountsRunes(t *testing.T) {
	text := "◦ [Ссылка](https://example.com)"
	out, ranges := markdown.Rewrite(text, markdown.ExtractSpans(text))
	assert.Equal(t, "◦ Ссылка", out)
	require.Len(t, ranges, 1)
	assert.Equal(t, markdown.Range{Start: 2, End: 8}, ranges[0])
}

func TestRewriteWithoutSpans(t *testing.T) {
	out, ranges := markdown.Rewrite("nothing here", nil)
	assert.Equal(t, "nothing here", out)
	assert.Nil(t, ranges)
	_, ok := markdown.LastRange(ranges)
	assert.False(t, ok)
}
