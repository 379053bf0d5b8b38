package markdown

import (
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

// linkPattern 匹配 [label](target)，均为非贪婪；label 中不允许出现 "["。
var linkPattern = regexp.MustCompile(`\[([^\[]*?)\]\((.*?)\)`)

// ImageExtensions 是被视为图片目标的扩展名（小写比较）。
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".tiff", ".bmp", ".gif"}

// Span 描述行内的一处链接或图片标记。Start/End 为整段标记在原文中的字节区间。
type Span struct {
	Label  string `json:"label"`
	Target string `json:"target"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Image  bool   `json:"image"`
}

// Range 是按字符（rune）计数的半开区间 [Start, End)。
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains 判断字符下标 i 是否落在区间内。
func (r Range) Contains(i int) bool { return i >= r.Start && i < r.End }

// ExtractSpans 找出文本中的所有 [label](target) 标记。label 为空的标记视为格式错误并跳过，
// 整行按没有链接处理。
func ExtractSpans(text string) []Span {
	matches := linkPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	spans := make([]Span, 0, len(matches))
	for _, m := range matches {
		label := text[m[2]:m[3]]
		if label == "" {
			continue
		}
		target := text[m[4]:m[5]]
		spans = append(spans, Span{
			Label:  label,
			Target: target,
			Start:  m[0],
			End:    m[1],
			Image:  IsImageTarget(target),
		})
	}
	return spans
}

// IsImageTarget 根据扩展名判断链接目标是否为图片。
func IsImageTarget(target string) bool {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(target)))
	if ext == "" {
		return false
	}
	for _, known := range ImageExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// Rewrite 把每处标记替换为其 label，并返回各 label 在替换后文本中的字符区间（与 spans 同序）。
// spans 必须来自 ExtractSpans(text)。
func Rewrite(text string, spans []Span) (string, []Range) {
	if len(spans) == 0 {
		return text, nil
	}
	var b strings.Builder
	b.Grow(len(text))
	ranges := make([]Range, 0, len(spans))
	cursor := 0
	runes := 0
	for _, sp := range spans {
		if sp.Start < cursor || sp.End > len(text) {
			continue
		}
		before := text[cursor:sp.Start]
		b.WriteString(before)
		runes += utf8.RuneCountInString(before)

		start := runes
		b.WriteString(sp.Label)
		runes += utf8.RuneCountInString(sp.Label)
		ranges = append(ranges, Range{Start: start, End: runes})
		cursor = sp.End
	}
	b.WriteString(text[cursor:])
	return b.String(), ranges
}

// LastRange 返回最后一处标记的区间；一行有多个链接时只保留最后一个的着色范围。
func LastRange(ranges []Range) (Range, bool) {
	if len(ranges) == 0 {
		return Range{}, false
	}
	return ranges[len(ranges)-1], true
}
