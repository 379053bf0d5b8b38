// Package theme 定义文档配色：背景、块高亮、正文、链接四种颜色，以及按名称查找的主题表。
package theme

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownTheme 表示主题表中没有该名称。
var ErrUnknownTheme = errors.New("未知主题")

// Color 采用 0-255 的 RGBA 数值。
type Color struct {
	R int `json:"r" yaml:"r"`
	G int `json:"g" yaml:"g"`
	B int `json:"b" yaml:"b"`
	A int `json:"a" yaml:"a"`
}

// Hex 返回 #RRGGBB 形式（忽略透明度）。
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", clamp(c.R), clamp(c.G), clamp(c.B))
}

// Floats 返回 0-1 范围的 r, g, b, a。
func (c Color) Floats() (float64, float64, float64, float64) {
	return float64(clamp(c.R)) / 255.0, float64(clamp(c.G)) / 255.0, float64(clamp(c.B)) / 255.0, float64(clamp(c.A)) / 255.0
}

// Theme 是一组完整的四色配置。
type Theme struct {
	Name       string `json:"name" yaml:"name"`
	Background Color  `json:"background" yaml:"background"`
	Block      Color  `json:"block" yaml:"block"`
	Text       Color  `json:"text" yaml:"text"`
	Link       Color  `json:"link" yaml:"link"`
}

// Spec 以十六进制字符串描述主题，用于配置文件。
type Spec struct {
	Background string `mapstructure:"background" yaml:"background"`
	Block      string `mapstructure:"block" yaml:"block"`
	Text       string `mapstructure:"text" yaml:"text"`
	Link       string `mapstructure:"link" yaml:"link"`
}

// Parse 将 Spec 转为 Theme，四种颜色缺一不可。
func (s Spec) Parse(name string) (Theme, error) {
	th := Theme{Name: name}
	fields := []struct {
		key string
		val string
		dst *Color
	}{
		{"background", s.Background, &th.Background},
		{"block", s.Block, &th.Block},
		{"text", s.Text, &th.Text},
		{"link", s.Link, &th.Link},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.val) == "" {
			return Theme{}, fmt.Errorf("主题 %s 缺少 %s 颜色", name, f.key)
		}
		c, err := ParseColor(f.val)
		if err != nil {
			return Theme{}, fmt.Errorf("主题 %s 的 %s 颜色: %w", name, f.key, err)
		}
		*f.dst = c
	}
	return th, nil
}

// builtins 对应原插件中与宿主无关的五套主题。
var builtins = map[string]Spec{
	"light":     {Background: "#CCCCCC", Block: "#999999", Text: "#000000", Link: "#0000FF"},
	"dark":      {Background: "#1A1A1A", Block: "#000000", Text: "#999999", Link: "#0000FF"},
	"paperback": {Background: "#B3B399", Block: "#CCCC4D", Text: "#333333", Link: "#0000B3"},
	"c64":       {Background: "#0000A8", Block: "#000054", Text: "#0087FF", Link: "#CCCCCC"},
	"github":    {Background: "#0D1117", Block: "#161B22", Text: "#E6EDF3", Link: "#2F81F7"},
}

// DefaultName 是未配置时使用的主题。
const DefaultName = "light"

// Registry 是按名称索引的主题表。每个查看器持有自己的实例，不存在全局可变状态。
type Registry struct {
	themes map[string]Theme
}

// NewRegistry 返回预置内建主题的主题表。
func NewRegistry() *Registry {
	r := &Registry{themes: make(map[string]Theme, len(builtins))}
	for name, spec := range builtins {
		th, err := spec.Parse(name)
		if err != nil {
			panic(fmt.Sprintf("内建主题 %s 无效: %v", name, err))
		}
		r.themes[name] = th
	}
	return r
}

// Register 添加或覆盖一个主题。
func (r *Registry) Register(th Theme) error {
	name := strings.ToLower(strings.TrimSpace(th.Name))
	if name == "" {
		return fmt.Errorf("主题名称不能为空")
	}
	th.Name = name
	r.themes[name] = th
	return nil
}

// Lookup 按名称（不区分大小写）查找主题。
func (r *Registry) Lookup(name string) (Theme, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultName
	}
	th, ok := r.themes[key]
	if !ok {
		return Theme{}, fmt.Errorf("%w: %s", ErrUnknownTheme, name)
	}
	return th, nil
}

// Names 返回排序后的主题名称。
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.themes))
	for name := range r.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin 直接返回内建主题。
func Builtin(name string) (Theme, error) {
	return NewRegistry().Lookup(name)
}

// ParseColor 解析 #RGB、#RRGGBB、#RRGGBBAA 形式的颜色。
func ParseColor(value string) (Color, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(value) {
	case 3:
		r, err1 := parseHex(strings.Repeat(string(value[0]), 2))
		g, err2 := parseHex(strings.Repeat(string(value[1]), 2))
		b, err3 := parseHex(strings.Repeat(string(value[2]), 2))
		if err := errors.Join(err1, err2, err3); err != nil {
			return Color{}, fmt.Errorf("颜色值 #%s 无法解析: %w", value, err)
		}
		return Color{R: r, G: g, B: b, A: 255}, nil
	case 6, 8:
		r, err1 := parseHex(value[0:2])
		g, err2 := parseHex(value[2:4])
		b, err3 := parseHex(value[4:6])
		a := 255
		var err4 error
		if len(value) == 8 {
			a, err4 = parseHex(value[6:8])
		}
		if err := errors.Join(err1, err2, err3, err4); err != nil {
			return Color{}, fmt.Errorf("颜色值 #%s 无法解析: %w", value, err)
		}
		return Color{R: r, G: g, B: b, A: a}, nil
	default:
		return Color{}, fmt.Errorf("颜色值 #%s 无法解析", value)
	}
}

func parseHex(s string) (int, error) {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
