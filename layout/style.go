package layout

import (
	"strings"
	"unicode"

	"github.com/ByLCY/docview/markdown"
	"github.com/ByLCY/docview/theme"
)

// bulletGlyphs 按层级给出列表符号。
var bulletGlyphs = [...]string{"◦", "•", "∙"}

// Style 是一行的字体、字号与颜色。
type Style struct {
	Font  FontRole
	Size  float64
	Color theme.Color
}

// ResolveStyle 将行类别映射为样式。标题全部使用粗体，其余类别使用基准字号。
func ResolveStyle(c markdown.Classification, m Metrics, th theme.Theme) Style {
	st := Style{Font: FontRegular, Size: m.Base, Color: th.Text}
	switch c.Category {
	case markdown.Header:
		st.Font = FontBold
		st.Size = m.HeaderSize(c.Level)
	case markdown.Italic:
		st.Font = FontItalic
	case markdown.Bold:
		st.Font = FontBold
	case markdown.Code:
		st.Font = FontCode
	}
	return st
}

// DisplayText 去掉语法标记得到显示文本；列表把行首的 "-" 替换为层级符号并按层级缩进。
func DisplayText(c markdown.Classification, line string, m Metrics) string {
	switch c.Category {
	case markdown.Header:
		return strings.ReplaceAll(line, "#", "")
	case markdown.Italic:
		return strings.NewReplacer("_", "", "*", "").Replace(line)
	case markdown.Bold:
		// 先去 "__" 再去 "**"，前者去掉后露出的 "**" 也一并去掉
		return strings.ReplaceAll(strings.ReplaceAll(line, "__", ""), "**", "")
	case markdown.Bullet:
		body := strings.TrimLeftFunc(line, unicode.IsSpace)
		body = strings.Replace(body, "-", BulletGlyph(c.Depth), 1)
		return strings.Repeat(" ", m.BulletIndent(c.Depth)) + body
	case markdown.Code:
		return " " + strings.ReplaceAll(line, "`", "")
	case markdown.Quote:
		return "  " + strings.ReplaceAll(line, ">", "")
	default:
		return line
	}
}

// BulletGlyph 返回某一层级的列表符号。
func BulletGlyph(depth int) string {
	if depth < 0 || depth >= len(bulletGlyphs) {
		return bulletGlyphs[0]
	}
	return bulletGlyphs[depth]
}
