package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ByLCY/docview/markdown"
	"github.com/ByLCY/docview/theme"
)

func TestResolveStyle(t *testing.T) {
	th := theme.Theme{Text: theme.Color{R: 1, G: 2, B: 3, A: 255}}
	m := NewMetrics(18)

	cases := []struct {
		line string
		font FontRole
		size float64
	}{
		{"# a", FontBold, m.HeaderSize(1)},
		{"### a", FontBold, m.HeaderSize(3)},
		{"###### a", FontBold, m.Base},
		{"####### a", FontBold, m.HeaderSize(6)},
		{"_a_", FontItalic, m.Base},
		{"**a**", FontBold, m.Base},
		{"`a`", FontCode, m.Base},
		{"> a", FontRegular, m.Base},
		{"- a", FontRegular, m.Base},
		{"a", FontRegular, m.Base},
	}
	for _, c := range cases {
		st := ResolveStyle(markdown.Classify(c.line), m, th)
		assert.Equal(t, c.font, st.Font, c.line)
		assert.InDelta(t, c.size, st.Size, 1e-9, c.line)
		assert.Equal(t, th.Text, st.Color, c.line)
	}
}

func TestDisplayText(t *testing.T) {
	m := NewMetrics(24)
	cases := map[string]string{
		"# Title":        " Title",
		"## a#b":         " ab",
		"_it_ x_y":       "it xy",
		"*star*":         "star",
		"**bold** a*b":   "bold a*b",
		"__b__":          "b",
		"**x*__*":        "x",
		"__a_**_":        "a__",
		"- a-b":          "◦ a-b",
		"- well-known":   "◦ well-known",
		"  - two":        "    • two",
		"    - three":    "        ∙ three",
		"`code`":         " code",
		"> quote > more": "   quote  more",
		"plain [x](y)":   "plain [x](y)",
	}
	for in, want := range cases {
		assert.Equal(t, want, DisplayText(markdown.Classify(in), in, m), in)
	}
}

func TestBulletGlyph(t *testing.T) {
	assert.Equal(t, "◦", BulletGlyph(0))
	assert.Equal(t, "•", BulletGlyph(1))
	assert.Equal(t, "∙", BulletGlyph(2))
	assert.Equal(t, "◦", BulletGlyph(7))
	assert.Equal(t, "◦", BulletGlyph(-1))
}
