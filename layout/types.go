package layout

import (
	"fmt"
	"image"
	"strconv"

	"github.com/ByLCY/docview/markdown"
	"github.com/ByLCY/docview/theme"
)

// 该文件定义一次排版的结果，供渲染与调试输出共用。所有坐标都是虚拟画布坐标，
// 原点在左上角，y 向下增长；滚动偏移只在绘制时叠加。

// Result 保存一次排版产生的全部记录。排版完成后不再修改。
type Result struct {
	BaseSize float64     `json:"baseSize" yaml:"baseSize"`
	Theme    theme.Theme `json:"theme" yaml:"theme"`
	Fonts    FontSet     `json:"fonts" yaml:"fonts"`

	// Lines 以行号为下标，每个输入行一条。
	Lines []LineRecord `json:"lines" yaml:"lines"`
	// Chars 只包含带链接/图片标记的行中的字符。
	Chars map[CharKey]CharRecord `json:"chars" yaml:"chars"`
	// Images 以（行号，图片名）标识每一次图片引用。
	Images      map[ImageKey]ImageRecord `json:"images" yaml:"images"`
	CodeBlocks  map[int]BlockRegion      `json:"codeBlocks" yaml:"codeBlocks"`
	QuoteBlocks map[int]BlockRegion      `json:"quoteBlocks" yaml:"quoteBlocks"`
	// CodeBlockWidth 是所有代码行共用的高亮右边界，由最长代码行决定。
	CodeBlockWidth float64 `json:"codeBlockWidth" yaml:"codeBlockWidth"`

	// Cursor 是排版结束时的游标，可用于计算文档总范围。
	Cursor   Cursor    `json:"cursor" yaml:"cursor"`
	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Cursor 是横向/纵向的排版游标。
type Cursor struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// FontRole 是字体选择器，渲染器据此从 FontSet 中取字体。
type FontRole int

const (
	FontRegular FontRole = iota
	FontItalic
	FontBold
	FontCode
)

func (f FontRole) String() string {
	switch f {
	case FontRegular:
		return "regular"
	case FontItalic:
		return "italic"
	case FontBold:
		return "bold"
	case FontCode:
		return "code"
	default:
		return "regular"
	}
}

// MarshalText 让字体选择器在调试输出中以名称出现。
func (f FontRole) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// LineRecord 是一行排版后的结果。
type LineRecord struct {
	Index    int               `json:"index" yaml:"index"`
	Text     string            `json:"text" yaml:"text"`
	Category markdown.Category `json:"category" yaml:"category"`
	Level    int               `json:"level,omitempty" yaml:"level,omitempty"`
	Font     FontRole          `json:"font" yaml:"font"`
	Size     float64           `json:"size" yaml:"size"`
	Color    theme.Color       `json:"color" yaml:"color"`
	X        float64           `json:"x" yaml:"x"`
	Y        float64           `json:"y" yaml:"y"`
	// Span 为真时渲染器逐字符绘制 Chars 中该行的记录。
	Span bool `json:"span" yaml:"span"`
	// Image 为真时该行只显示图片，文本为空。
	Image bool `json:"image" yaml:"image"`
	// Link 是链接色的字符区间；一行有多个链接时只保留最后一个。
	Link markdown.Range `json:"link" yaml:"link"`
}

// CharKey 是字符记录的复合键。
type CharKey struct {
	Line int
	Char int
}

// MarshalText 输出 "line_char" 形式，便于 JSON/YAML 作为 map 键。
func (k CharKey) MarshalText() ([]byte, error) {
	return []byte(strconv.Itoa(k.Line) + "_" + strconv.Itoa(k.Char)), nil
}

// CharRecord 是链接/图片行中单个字符的绘制信息。
type CharRecord struct {
	Glyph string      `json:"glyph" yaml:"glyph"`
	Font  FontRole    `json:"font" yaml:"font"`
	Size  float64     `json:"size" yaml:"size"`
	Color theme.Color `json:"color" yaml:"color"`
	X     float64     `json:"x" yaml:"x"`
	Y     float64     `json:"y" yaml:"y"`
}

// ImageKey 标识一次图片引用。
type ImageKey struct {
	Line int
	Name string
}

// MarshalText 输出 "line:name" 形式。
func (k ImageKey) MarshalText() ([]byte, error) {
	return []byte(strconv.Itoa(k.Line) + ":" + k.Name), nil
}

// ImageRecord 描述一张已放置的图片。宽高为源像素尺寸乘以 base/24。
type ImageRecord struct {
	Name    string      `json:"name" yaml:"name"`
	Path    string      `json:"path" yaml:"path"`
	Texture image.Image `json:"-" yaml:"-"`
	Width   float64     `json:"width" yaml:"width"`
	Height  float64     `json:"height" yaml:"height"`
	X       float64     `json:"x" yaml:"x"`
	Y       float64     `json:"y" yaml:"y"`
}

// BlockRegion 标记代码行或引用行的位置；Length 仅对代码行有效（按字符计）。
type BlockRegion struct {
	X         float64 `json:"x" yaml:"x"`
	Y         float64 `json:"y" yaml:"y"`
	Length    int     `json:"length,omitempty" yaml:"length,omitempty"`
	Highlight Rect    `json:"highlight" yaml:"highlight"`
}

// Rect 表示一个轴对齐矩形。
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Warning 记录某一行中可恢复的问题（例如图片无法加载）。
type Warning struct {
	Line    int    `json:"line" yaml:"line"`
	Target  string `json:"target,omitempty" yaml:"target,omitempty"`
	Message string `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	if w.Target != "" {
		return fmt.Sprintf("第 %d 行 %s: %s", w.Line+1, w.Target, w.Message)
	}
	return fmt.Sprintf("第 %d 行: %s", w.Line+1, w.Message)
}

// LineChars 按字符顺序返回某一行的字符记录。
func (r *Result) LineChars(line int) []CharRecord {
	var out []CharRecord
	for i := 0; ; i++ {
		rec, ok := r.Chars[CharKey{Line: line, Char: i}]
		if !ok {
			return out
		}
		out = append(out, rec)
	}
}
