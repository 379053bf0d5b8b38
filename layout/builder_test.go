package layout

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ByLCY/docview/logging"
	"github.com/ByLCY/docview/markdown"
	"github.com/ByLCY/docview/theme"
)

// stubTypesetter 是测试用的最小实现：每个字形宽度为字号的一半，避免依赖 renderer。
type stubTypesetter struct {
	err   error
	calls int
}

func (s *stubTypesetter) MeasureGlyph(glyph string, font FontResource, size float64) (Bounds, error) {
	s.calls++
	if s.err != nil {
		return Bounds{}, s.err
	}
	return Bounds{Right: size * 0.5, Bottom: size}, nil
}

// stubImages 按路径返回预置的图片尺寸，未登记的路径视为缺失。
type stubImages map[string]ImageAsset

func (s stubImages) LoadImage(path string) (ImageAsset, error) {
	asset, ok := s[path]
	if !ok {
		return ImageAsset{}, errors.New("文件不存在")
	}
	return asset, nil
}

func lightTheme(t *testing.T) theme.Theme {
	t.Helper()
	th, err := theme.Builtin("light")
	require.NoError(t, err)
	return th
}

func build(t *testing.T, lines []string, opts BuildOptions) *Result {
	t.Helper()
	if opts.Typesetter == nil {
		opts.Typesetter = &stubTypesetter{}
	}
	res, err := Build(lines, Config{BaseSize: 24, AssetDir: "assets"}, lightTheme(t), opts)
	require.NoError(t, err)
	return res
}

func TestBuildValidation(t *testing.T) {
	th := lightTheme(t)

	_, err := Build(nil, Config{BaseSize: 0}, th, BuildOptions{Typesetter: &stubTypesetter{}})
	assert.ErrorIs(t, err, ErrInvalidBaseSize)

	_, err = Build(nil, Config{BaseSize: -3}, th, BuildOptions{Typesetter: &stubTypesetter{}})
	assert.ErrorIs(t, err, ErrInvalidBaseSize)

	_, err = Build(nil, Config{BaseSize: 24}, th, BuildOptions{})
	assert.ErrorIs(t, err, ErrNoTypesetter)
}

func TestValidBaseSize(t *testing.T) {
	assert.True(t, ValidBaseSize(18))
	assert.True(t, ValidBaseSize(0.5))
	for _, size := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.False(t, ValidBaseSize(size), "%g", size)
	}
}

func TestBuildEmptyDocument(t *testing.T) {
	res := build(t, nil, BuildOptions{})

	assert.Empty(t, res.Lines)
	assert.Empty(t, res.Chars)
	assert.Empty(t, res.Images)
	assert.Empty(t, res.CodeBlocks)
	assert.Empty(t, res.QuoteBlocks)
	assert.Equal(t, NewMetrics(24).Origin(), res.Cursor)
	assert.Zero(t, res.CodeBlockWidth)
}

// TestBuildHeadingScenario 覆盖标题、行中斜体标记与两级列表的组合。
func TestBuildHeadingScenario(t *testing.T) {
	res := build(t, []string{"# Title", "Some _italic_ text", "- item one", "  - item two"}, BuildOptions{})
	require.Len(t, res.Lines, 4)

	h1 := res.Lines[0]
	assert.Equal(t, markdown.Header, h1.Category)
	assert.Equal(t, 1, h1.Level)
	assert.Equal(t, FontBold, h1.Font)
	assert.InDelta(t, 24*2+24.0/6, h1.Size, 1e-9)
	assert.Equal(t, " Title", h1.Text)

	assert.Equal(t, markdown.Plain, res.Lines[1].Category)
	assert.Equal(t, "Some _italic_ text", res.Lines[1].Text)
	assert.Equal(t, FontRegular, res.Lines[1].Font)

	assert.Equal(t, markdown.Bullet, res.Lines[2].Category)
	assert.Equal(t, "◦ item one", res.Lines[2].Text)
	assert.Equal(t, markdown.Bullet, res.Lines[3].Category)
	assert.Equal(t, "    • item two", res.Lines[3].Text)
}

func TestBuildCursorAccumulation(t *testing.T) {
	res := build(t, []string{"# Title", "Body text"}, BuildOptions{})
	require.Len(t, res.Lines, 2)

	// 起点 (12, 42)；标题先下移 52，绘制后再下移 28
	assert.InDelta(t, 94, res.Lines[0].Y, 1e-9)
	assert.InDelta(t, 12, res.Lines[0].X, 1e-9)
	// 正文先下移 4，横向缩进到 base + base/6
	assert.InDelta(t, 126, res.Lines[1].Y, 1e-9)
	assert.InDelta(t, 28, res.Lines[1].X, 1e-9)
	assert.InDelta(t, 154, res.Cursor.Y, 1e-9)
	assert.InDelta(t, 28, res.Cursor.X, 1e-9)
}

func TestBuildSecondLevelHeaderSize(t *testing.T) {
	res := build(t, []string{"## Sub"}, BuildOptions{})
	assert.InDelta(t, 48, res.Lines[0].Size, 1e-9)
	assert.Equal(t, FontBold, res.Lines[0].Font)
}

func TestBuildImageLine(t *testing.T) {
	images := stubImages{
		filepath.Join("assets", "image.png"): {Width: 48, Height: 24},
	}
	res := build(t, []string{"[Example](image.png)", "after"}, BuildOptions{Images: images})

	line := res.Lines[0]
	assert.True(t, line.Image)
	assert.True(t, line.Span)
	assert.Empty(t, line.Text)
	assert.Empty(t, res.LineChars(0))

	img, ok := res.Images[ImageKey{Line: 0, Name: "image.png"}]
	require.True(t, ok)
	assert.InDelta(t, 48, img.Width, 1e-9)
	assert.InDelta(t, 24, img.Height, 1e-9)
	assert.InDelta(t, 28, img.X, 1e-9)
	assert.InDelta(t, 46, img.Y, 1e-9)
	// 图片高度计入纵向游标
	assert.InDelta(t, 70, line.Y, 1e-9)
	assert.InDelta(t, 70+28+4, res.Lines[1].Y, 1e-9)
	assert.Empty(t, res.Warnings)
}

func TestBuildImagePathNormalization(t *testing.T) {
	images := stubImages{
		filepath.Join("assets", "img", "pic.PNG"): {Width: 24, Height: 24},
	}
	res := build(t, []string{`[pic](img\pic.PNG)`}, BuildOptions{Images: images})
	_, ok := res.Images[ImageKey{Line: 0, Name: "pic.PNG"}]
	assert.True(t, ok)
}

func TestBuildImageScalesWithBaseSize(t *testing.T) {
	images := stubImages{"pic.png": {Width: 48, Height: 96}}
	res, err := Build([]string{"[x](pic.png)"}, Config{BaseSize: 12}, lightTheme(t),
		BuildOptions{Typesetter: &stubTypesetter{}, Images: images})
	require.NoError(t, err)
	img := res.Images[ImageKey{Line: 0, Name: "pic.png"}]
	assert.InDelta(t, 24, img.Width, 1e-9)
	assert.InDelta(t, 48, img.Height, 1e-9)
}

func TestBuildLinkCharacters(t *testing.T) {
	th := lightTheme(t)
	res := build(t, []string{"See [Example](https://example.com) now"}, BuildOptions{})

	line := res.Lines[0]
	assert.True(t, line.Span)
	assert.False(t, line.Image)
	assert.Equal(t, "See Example now", line.Text)
	assert.Equal(t, markdown.Range{Start: 4, End: 11}, line.Link)

	chars := res.LineChars(0)
	require.Len(t, chars, len([]rune(line.Text)))
	for i, c := range chars {
		assert.Equal(t, string([]rune(line.Text)[i]), c.Glyph)
		assert.InDelta(t, 28+float64(i)*12, c.X, 1e-9, "字符 %d", i)
		assert.InDelta(t, line.Y, c.Y, 1e-9)
		if i >= 4 && i < 11 {
			assert.Equal(t, th.Link, c.Color, "字符 %d 应为链接色", i)
		} else {
			assert.Equal(t, th.Text, c.Color, "字符 %d 应为正文色", i)
		}
	}
	assert.InDelta(t, 28+15*12, res.Cursor.X, 1e-9)
}

func TestBuildOnlyLastLinkIsColored(t *testing.T) {
	th := lightTheme(t)
	res := build(t, []string{"[a](x) and [bc](y)"}, BuildOptions{})

	line := res.Lines[0]
	assert.Equal(t, "a and bc", line.Text)
	assert.Equal(t, markdown.Range{Start: 6, End: 8}, line.Link)
	assert.Equal(t, th.Text, res.Chars[CharKey{Line: 0, Char: 0}].Color)
	assert.Equal(t, th.Link, res.Chars[CharKey{Line: 0, Char: 7}].Color)
}

func TestBuildMissingImageFallsBackToSpan(t *testing.T) {
	th := lightTheme(t)
	res := build(t, []string{"[Example](missing.png)", "next"}, BuildOptions{Images: stubImages{}})

	line := res.Lines[0]
	assert.False(t, line.Image)
	assert.True(t, line.Span)
	assert.Equal(t, "Example", line.Text)
	assert.Empty(t, res.Images)
	for _, c := range res.LineChars(0) {
		assert.Equal(t, th.Link, c.Color)
	}

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 0, res.Warnings[0].Line)
	assert.Equal(t, "missing.png", res.Warnings[0].Target)
	// 后续行照常排版
	require.Len(t, res.Lines, 2)
	assert.Equal(t, "next", res.Lines[1].Text)
}

func TestBuildMalformedMarkupIsPlain(t *testing.T) {
	for _, line := range []string{"[unclosed(x)", "[](empty.png)", "text [a] (b)"} {
		res := build(t, []string{line}, BuildOptions{})
		assert.False(t, res.Lines[0].Span, line)
		assert.Equal(t, line, res.Lines[0].Text)
		assert.Empty(t, res.Chars, line)
	}
}

func TestBuildMeasurementFailureWarnsOncePerLine(t *testing.T) {
	ts := &stubTypesetter{err: errors.New("字体缺失")}
	res := build(t, []string{"[ab](x)", "[cd](y)"}, BuildOptions{Typesetter: ts})

	assert.Len(t, res.Warnings, 2)
	chars := res.LineChars(0)
	require.Len(t, chars, 2)
	assert.InDelta(t, chars[0].X+24*0.55, chars[1].X, 1e-9)
}

func TestBuildCodeBlocks(t *testing.T) {
	res := build(t, []string{"`a`", "`abcd`", "text"}, BuildOptions{})
	require.Len(t, res.CodeBlocks, 2)

	first := res.CodeBlocks[0]
	assert.InDelta(t, 24, first.X, 1e-9)
	// 第一条代码行额外下移 base/6
	assert.InDelta(t, 46, first.Y, 1e-9)
	assert.Equal(t, 2, first.Length)
	assert.Equal(t, " a", res.Lines[0].Text)
	assert.Equal(t, FontCode, res.Lines[0].Font)

	second := res.CodeBlocks[1]
	assert.InDelta(t, 78, second.Y, 1e-9)
	assert.Equal(t, 5, second.Length)

	assert.InDelta(t, 5*24*0.7, res.CodeBlockWidth, 1e-9)
	for _, region := range res.CodeBlocks {
		assert.InDelta(t, region.X, region.Highlight.X, 1e-9)
		assert.InDelta(t, res.CodeBlockWidth-region.X, region.Highlight.Width, 1e-9)
		assert.InDelta(t, region.Y-3-18, region.Highlight.Y, 1e-9)
		assert.InDelta(t, 36, region.Highlight.Height, 1e-9)
	}
}

func TestBuildQuoteBlocks(t *testing.T) {
	res := build(t, []string{"> quoted"}, BuildOptions{})
	require.Len(t, res.QuoteBlocks, 1)

	region := res.QuoteBlocks[0]
	assert.InDelta(t, 24, region.X, 1e-9)
	assert.InDelta(t, 42, region.Y, 1e-9)
	assert.InDelta(t, 12, region.Highlight.Width, 1e-9)
	assert.InDelta(t, 42-6-18, region.Highlight.Y, 1e-9)
	assert.Equal(t, "   quoted", res.Lines[0].Text)
}

func TestBuildScalesWithBaseSize(t *testing.T) {
	lines := []string{"# Title", "body", "[link](x)", "`code`", "> q"}
	th := lightTheme(t)
	small, err := Build(lines, Config{BaseSize: 12}, th, BuildOptions{Typesetter: &stubTypesetter{}})
	require.NoError(t, err)
	large, err := Build(lines, Config{BaseSize: 24}, th, BuildOptions{Typesetter: &stubTypesetter{}})
	require.NoError(t, err)

	for i := range lines {
		assert.InDelta(t, small.Lines[i].X*2, large.Lines[i].X, 1e-9)
		assert.InDelta(t, small.Lines[i].Y*2, large.Lines[i].Y, 1e-9)
		assert.InDelta(t, small.Lines[i].Size*2, large.Lines[i].Size, 1e-9)
	}
	assert.InDelta(t, small.CodeBlockWidth*2, large.CodeBlockWidth, 1e-9)
	assert.InDelta(t, small.Cursor.Y*2, large.Cursor.Y, 1e-9)
}

func TestBuildLogsWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "debug")
	build(t, []string{"[a](gone.png)"}, BuildOptions{Logger: logger})
	assert.Contains(t, buf.String(), "gone.png")
}

var lineGen = rapid.SampledFrom([]string{
	"", "plain", "# H1", "## H2", "### H3", "#### H4", "##### H5", "###### odd", "####### H6",
	"- a", "  - b", "    - c", "   - d", "_it_", "**bold**", "__b__", "`code`", "> quote",
	"[a](https://x)", "[img](p.png)", "x [l](y) z", "中文 [链接](u)",
})

func TestBuildIsIdempotent(t *testing.T) {
	th := lightTheme(t)
	rapid.Check(t, func(rt *rapid.T) {
		lines := rapid.SliceOf(lineGen).Draw(rt, "lines")
		base := rapid.Float64Range(6, 48).Draw(rt, "base")
		cfg := Config{BaseSize: base}

		dump := func() []byte {
			res, err := Build(lines, cfg, th, BuildOptions{Typesetter: &stubTypesetter{}})
			if err != nil {
				rt.Fatalf("排版失败: %v", err)
			}
			var buf bytes.Buffer
			if err := EncodeDebug(&buf, res, "json"); err != nil {
				rt.Fatalf("编码失败: %v", err)
			}
			return buf.Bytes()
		}
		if a, b := dump(), dump(); !bytes.Equal(a, b) {
			rt.Fatalf("两次排版结果不一致")
		}
	})
}

func TestBuildVerticalOffsetStrictlyIncreases(t *testing.T) {
	th := lightTheme(t)
	rapid.Check(t, func(rt *rapid.T) {
		lines := rapid.SliceOfN(lineGen, 1, 40).Draw(rt, "lines")
		res, err := Build(lines, Config{BaseSize: 18}, th, BuildOptions{Typesetter: &stubTypesetter{}})
		if err != nil {
			rt.Fatalf("排版失败: %v", err)
		}
		if len(res.Lines) != len(lines) {
			rt.Fatalf("行数不一致: %d != %d", len(res.Lines), len(lines))
		}
		for i := 1; i < len(res.Lines); i++ {
			if res.Lines[i].Y <= res.Lines[i-1].Y {
				rt.Fatalf("第 %d 行 y=%g 未超过上一行 y=%g", i, res.Lines[i].Y, res.Lines[i-1].Y)
			}
		}
		last := res.Lines[len(res.Lines)-1]
		want := last.Y + NewMetrics(18).LineAdvance()
		if diff := res.Cursor.Y - want; diff > 1e-9 || diff < -1e-9 {
			rt.Fatalf("最终游标 %g 与末行推进 %g 不符", res.Cursor.Y, want)
		}
	})
}

func TestBuildBulletGlyphsFollowIndent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		indent := rapid.IntRange(0, 6).Draw(rt, "indent")
		body := rapid.StringMatching(`[a-z ]{0,8}`).Draw(rt, "body")
		line := strings.Repeat(" ", indent) + "-" + body

		res, err := Build([]string{line}, Config{BaseSize: 24}, theme.Theme{}, BuildOptions{Typesetter: &stubTypesetter{}})
		if err != nil {
			rt.Fatalf("排版失败: %v", err)
		}
		rec := res.Lines[0]
		glyphs := map[int]string{0: "◦", 2: "•", 4: "∙"}
		want, isBullet := glyphs[indent]
		if !isBullet {
			if rec.Category == markdown.Bullet {
				rt.Fatalf("缩进 %d 不应识别为列表", indent)
			}
			return
		}
		if rec.Category != markdown.Bullet {
			rt.Fatalf("缩进 %d 应识别为列表，实际 %s", indent, rec.Category)
		}
		if !strings.Contains(rec.Text, want) {
			rt.Fatalf("缩进 %d 期望符号 %s，实际文本 %q", indent, want, rec.Text)
		}
	})
}
