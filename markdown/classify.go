// Package markdown 负责逐行识别类 Markdown 语法：行类别（标题、列表、斜体、粗体、代码、引用）
// 以及行内的链接/图片标记。识别完全基于行首前缀，行与行之间没有状态。
package markdown

import (
	"strings"
)

// Category 是一行的语法类别。
type Category int

const (
	Plain Category = iota
	Header
	Bullet
	Italic
	Bold
	Code
	Quote
)

func (c Category) String() string {
	switch c {
	case Plain:
		return "plain"
	case Header:
		return "header"
	case Bullet:
		return "bullet"
	case Italic:
		return "italic"
	case Bold:
		return "bold"
	case Code:
		return "code"
	case Quote:
		return "quote"
	default:
		return "unknown"
	}
}

// MarshalText 让类别在调试 JSON/YAML 中以名称输出。
func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Classification 是单行的分类结果。
type Classification struct {
	Category Category `json:"category"`
	// Level 为标题级别 1-6；以 # 开头但没有匹配任何级别前缀时为 0。
	Level int `json:"level,omitempty"`
	// Depth 为列表层级 0-2。
	Depth int `json:"depth,omitempty"`
	// Prefix 记录命中的前缀写法，例如 "## "、"  -"、"**"。
	Prefix string `json:"prefix,omitempty"`
}

// headerPrefixes 按级别列出标题前缀。第 6 级沿用 7 个井号的写法，"###### " 不对应任何级别。
var headerPrefixes = []struct {
	hashes int
	level  int
}{
	{1, 1},
	{2, 2},
	{3, 3},
	{4, 4},
	{5, 5},
	{7, 6},
}

// bulletDepths 将缩进空格数映射为列表层级。
var bulletDepths = map[int]int{0: 0, 2: 1, 4: 2}

// Classify 按固定优先级判断一行的类别：标题 > 列表 > 斜体 > 粗体 > 代码 > 引用 > 普通文本。
func Classify(line string) Classification {
	toks, err := scanPrefix(line)
	if err != nil || len(toks) == 0 {
		return Classification{Category: Plain}
	}
	first := toks[0]

	if first.Type == hashesTokenType {
		return classifyHeader(toks)
	}
	if c, ok := classifyBullet(toks); ok {
		return c
	}
	switch first.Type {
	case emphasisTokenType:
		return Classification{Category: Italic, Prefix: first.Value}
	case strongTokenType:
		return Classification{Category: Bold, Prefix: first.Value}
	case backtickTokenType:
		return Classification{Category: Code, Prefix: first.Value}
	case quoteTokenType:
		return Classification{Category: Quote, Prefix: first.Value}
	}
	return Classification{Category: Plain}
}

func classifyHeader(toks []token) Classification {
	hashes := len(toks[0].Value)
	spaced := len(toks) > 1 && toks[1].Type == indentTokenType && strings.HasPrefix(toks[1].Value, " ")
	c := Classification{Category: Header}
	if !spaced {
		return c
	}
	for _, hp := range headerPrefixes {
		if hp.hashes == hashes {
			c.Level = hp.level
			c.Prefix = strings.Repeat("#", hashes) + " "
			break
		}
	}
	return c
}

// classifyBullet 识别去掉前导空白后以 "-" 开头的行；层级只由前导空格数（0/2/4）决定，
// 其他缩进不算列表，交给后续规则。
func classifyBullet(toks []token) (Classification, bool) {
	indent := ""
	i := 0
	if toks[0].Type == indentTokenType {
		indent = toks[0].Value
		i = 1
	}
	if i >= len(toks) || toks[i].Type != dashTokenType {
		return Classification{}, false
	}
	if strings.Trim(indent, " ") != "" {
		return Classification{}, false
	}
	depth, ok := bulletDepths[len(indent)]
	if !ok {
		return Classification{}, false
	}
	return Classification{Category: Bullet, Depth: depth, Prefix: indent + "-"}, true
}
