package layout

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ByLCY/docview/logging"
	"github.com/ByLCY/docview/markdown"
	"github.com/ByLCY/docview/theme"
)

// Build 对整篇文档做一次完整排版：逐行分类、解析样式、推进游标并生成记录。
// 每次调用都从头开始，不依赖也不修改任何全局状态。单行中的问题只记为 Warning，
// 不会中断排版；只有配置错误会在处理任何一行之前返回。
func Build(lines []string, cfg Config, th theme.Theme, opts BuildOptions) (*Result, error) {
	if !ValidBaseSize(cfg.BaseSize) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidBaseSize, cfg.BaseSize)
	}
	if opts.Typesetter == nil {
		return nil, ErrNoTypesetter
	}

	m := NewMetrics(cfg.BaseSize)
	p := &pass{
		cfg:    cfg,
		theme:  th,
		opts:   opts,
		m:      m,
		cursor: m.Origin(),
		res: &Result{
			BaseSize:    cfg.BaseSize,
			Theme:       th,
			Fonts:       cfg.Fonts,
			Lines:       make([]LineRecord, 0, len(lines)),
			Chars:       map[CharKey]CharRecord{},
			Images:      map[ImageKey]ImageRecord{},
			CodeBlocks:  map[int]BlockRegion{},
			QuoteBlocks: map[int]BlockRegion{},
		},
	}

	for i, line := range lines {
		p.placeLine(i, line)
	}
	p.finishBlocks()

	p.res.Cursor = p.cursor
	return p.res, nil
}

// ValidBaseSize 报告 size 能否作为基准字号：必须是有限的正数。
func ValidBaseSize(size float64) bool {
	return size > 0 && !math.IsNaN(size) && !math.IsInf(size, 0)
}

// pass 保存一次排版过程中的游标与输出表。
type pass struct {
	cfg    Config
	theme  theme.Theme
	opts   BuildOptions
	m      Metrics
	cursor Cursor
	res    *Result
}

func (p *pass) placeLine(index int, raw string) {
	cls := markdown.Classify(raw)
	st := ResolveStyle(cls, p.m, p.theme)
	text := DisplayText(cls, raw, p.m)

	switch cls.Category {
	case markdown.Header:
		// 标题在绘制前先下移自身字号
		p.cursor.Y += st.Size
	case markdown.Code:
		if len(p.res.CodeBlocks) == 0 {
			p.cursor.Y += p.m.Sixth
		}
		p.res.CodeBlocks[index] = BlockRegion{
			X:      p.m.Base,
			Y:      p.cursor.Y,
			Length: utf8.RuneCountInString(text),
		}
	case markdown.Quote:
		p.res.QuoteBlocks[index] = BlockRegion{X: p.m.Base, Y: p.cursor.Y}
	}

	if st.Size == p.m.Base {
		p.cursor.Y += p.m.Sixth
		p.cursor.X = p.m.BodyIndent()
	} else {
		p.cursor.X = p.m.Half
	}

	rec := LineRecord{
		Index:    index,
		Text:     text,
		Category: cls.Category,
		Level:    cls.Level,
		Font:     st.Font,
		Size:     st.Size,
		Color:    st.Color,
		X:        p.cursor.X,
		Y:        p.cursor.Y,
	}
	if spans := markdown.ExtractSpans(text); len(spans) > 0 {
		p.placeSpans(&rec, spans)
	}

	p.res.Lines = append(p.res.Lines, rec)
	p.cursor.Y += p.m.LineAdvance()
}

// placeSpans 处理行内标记：成功加载任意一张图片时整行变为图片行；否则按链接处理，
// 加载失败的图片也退化为链接色文字。
func (p *pass) placeSpans(rec *LineRecord, spans []markdown.Span) {
	placed := 0
	for _, sp := range spans {
		if sp.Image && p.placeImage(rec.Index, sp) {
			placed++
		}
	}
	if placed > 0 {
		rec.Image = true
		rec.Span = true
		rec.Text = ""
		rec.Y = p.cursor.Y
		return
	}

	text, ranges := markdown.Rewrite(rec.Text, spans)
	link, ok := markdown.LastRange(ranges)
	if !ok {
		return
	}
	rec.Text = text
	rec.Span = true
	rec.Link = link
	p.placeChars(rec)
}

func (p *pass) placeImage(line int, sp markdown.Span) bool {
	if p.opts.Images == nil {
		p.warn(line, sp.Target, "未配置图片加载器")
		return false
	}
	path := p.resolveImagePath(sp.Target)
	asset, err := p.opts.Images.LoadImage(path)
	if err != nil {
		p.warn(line, sp.Target, fmt.Sprintf("加载图片失败: %v", err))
		return false
	}
	if asset.Width <= 0 || asset.Height <= 0 {
		p.warn(line, sp.Target, fmt.Sprintf("图片尺寸无效: %dx%d", asset.Width, asset.Height))
		return false
	}
	name := asset.Name
	if name == "" {
		name = filepath.Base(path)
	}

	scale := p.m.ImageScale()
	img := ImageRecord{
		Name:    name,
		Path:    path,
		Texture: asset.Texture,
		Width:   float64(asset.Width) * scale,
		Height:  float64(asset.Height) * scale,
		X:       p.cursor.X,
		Y:       p.cursor.Y,
	}
	p.res.Images[ImageKey{Line: line, Name: name}] = img
	p.cursor.Y += img.Height
	return true
}

// resolveImagePath 统一路径分隔符后拼接到资源目录。
func (p *pass) resolveImagePath(target string) string {
	t := filepath.FromSlash(strings.ReplaceAll(strings.TrimSpace(target), `\`, "/"))
	if filepath.IsAbs(t) || p.cfg.AssetDir == "" {
		return filepath.Clean(t)
	}
	return filepath.Join(p.cfg.AssetDir, t)
}

// placeChars 为链接行逐字符生成记录，横向游标按常规字体下每个字形的宽度推进。
func (p *pass) placeChars(rec *LineRecord) {
	x := rec.X
	warned := false
	for i, r := range []rune(rec.Text) {
		col := p.theme.Text
		if rec.Link.Contains(i) {
			col = p.theme.Link
		}
		glyph := string(r)
		p.res.Chars[CharKey{Line: rec.Index, Char: i}] = CharRecord{
			Glyph: glyph,
			Font:  rec.Font,
			Size:  rec.Size,
			Color: col,
			X:     x,
			Y:     rec.Y,
		}
		adv, err := p.advance(glyph, rec.Size)
		if err != nil && !warned {
			p.warn(rec.Index, "", fmt.Sprintf("字形度量失败，改用估算宽度: %v", err))
			warned = true
		}
		x += adv
	}
	p.cursor.X = x
}

func (p *pass) advance(glyph string, size float64) (float64, error) {
	b, err := p.opts.Typesetter.MeasureGlyph(glyph, p.cfg.Fonts.Regular, size)
	if err != nil {
		return estimateGlyphWidth(size), err
	}
	return b.Right, nil
}

// finishBlocks 在所有行处理完之后计算块高亮：代码块统一使用最长代码行决定的右边界。
func (p *pass) finishBlocks() {
	maxLength := 0
	for _, region := range p.res.CodeBlocks {
		if region.Length > maxLength {
			maxLength = region.Length
		}
	}
	width := p.m.CodeWidth(maxLength)
	p.res.CodeBlockWidth = width

	half := p.m.Base - p.m.Quarter
	for k, region := range p.res.CodeBlocks {
		center := region.Y - p.m.Eighth
		region.Highlight = Rect{
			X:      region.X,
			Y:      center - half,
			Width:  math.Max(width-region.X, 0),
			Height: 2 * half,
		}
		p.res.CodeBlocks[k] = region
	}
	for k, region := range p.res.QuoteBlocks {
		center := region.Y - p.m.Quarter
		region.Highlight = Rect{
			X:      region.X,
			Y:      center - half,
			Width:  p.m.Half,
			Height: 2 * half,
		}
		p.res.QuoteBlocks[k] = region
	}
}

func (p *pass) warn(line int, target, msg string) {
	p.res.Warnings = append(p.res.Warnings, Warning{Line: line, Target: target, Message: msg})
	if p.opts.Logger != nil {
		p.opts.Logger.Warn(msg, logging.FieldLine, line+1, logging.FieldTarget, target)
	}
}

// estimateGlyphWidth 在字形度量失败时按字号粗略估算宽度。
func estimateGlyphWidth(size float64) float64 {
	return size * 0.55
}
