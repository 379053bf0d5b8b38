package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EncodeDebug 将排版结果编码为 JSON 或 YAML，便于调试或可视化。
// map 键在两种格式下都按排序输出，同一输入得到字节一致的结果。
func EncodeDebug(w io.Writer, res *Result, format string) error {
	if res == nil {
		return nil
	}
	switch strings.ToLower(format) {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newYAMLView(res)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("不支持的调试输出格式: %s", format)
	}
}

// WriteDebug 将排版结果写入文件。
func WriteDebug(res *Result, path, format string) error {
	if res == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeDebug(f, res, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// yamlView 把复合键 map 换成字符串键，yaml 编码器只对字符串键做排序。
type yamlView struct {
	BaseSize       float64                `yaml:"baseSize"`
	Theme          themeView              `yaml:"theme"`
	Fonts          FontSet                `yaml:"fonts"`
	Lines          []LineRecord           `yaml:"lines"`
	Chars          map[string]CharRecord  `yaml:"chars"`
	Images         map[string]ImageRecord `yaml:"images"`
	CodeBlocks     map[int]BlockRegion    `yaml:"codeBlocks"`
	QuoteBlocks    map[int]BlockRegion    `yaml:"quoteBlocks"`
	CodeBlockWidth float64                `yaml:"codeBlockWidth"`
	Cursor         Cursor                 `yaml:"cursor"`
	Warnings       []Warning              `yaml:"warnings,omitempty"`
}

type themeView struct {
	Name       string `yaml:"name"`
	Background string `yaml:"background"`
	Block      string `yaml:"block"`
	Text       string `yaml:"text"`
	Link       string `yaml:"link"`
}

func newYAMLView(res *Result) yamlView {
	v := yamlView{
		BaseSize: res.BaseSize,
		Theme: themeView{
			Name:       res.Theme.Name,
			Background: res.Theme.Background.Hex(),
			Block:      res.Theme.Block.Hex(),
			Text:       res.Theme.Text.Hex(),
			Link:       res.Theme.Link.Hex(),
		},
		Fonts:          res.Fonts,
		Lines:          res.Lines,
		Chars:          make(map[string]CharRecord, len(res.Chars)),
		Images:         make(map[string]ImageRecord, len(res.Images)),
		CodeBlocks:     res.CodeBlocks,
		QuoteBlocks:    res.QuoteBlocks,
		CodeBlockWidth: res.CodeBlockWidth,
		Cursor:         res.Cursor,
		Warnings:       res.Warnings,
	}
	for k, c := range res.Chars {
		key, _ := k.MarshalText()
		v.Chars[string(key)] = c
	}
	for k, img := range res.Images {
		key, _ := k.MarshalText()
		v.Images[string(key)] = img
	}
	return v
}
