package layout

import (
	"errors"
	"image"

	"github.com/charmbracelet/log"
)

var (
	// ErrInvalidBaseSize 表示基准字号不是正数。
	ErrInvalidBaseSize = errors.New("layout: 基准字号必须为正数")
	// ErrNoTypesetter 表示缺少字形度量后端。
	ErrNoTypesetter = errors.New("layout: 缺少排版后端 Typesetter")
)

// Config 是一次排版的输入配置：基准字号、字体与图片资源目录。
// 所有派生尺寸都由 BaseSize 按固定比例计算。
type Config struct {
	BaseSize float64 `json:"baseSize"`
	Fonts    FontSet `json:"fonts"`
	// AssetDir 是解析相对图片路径的根目录。
	AssetDir string `json:"assetDir"`
}

// FontSet 是四种字体角色对应的字体资源。
type FontSet struct {
	Regular FontResource `json:"regular" yaml:"regular"`
	Italic  FontResource `json:"italic" yaml:"italic"`
	Bold    FontResource `json:"bold" yaml:"bold"`
	Code    FontResource `json:"code" yaml:"code"`
}

// Resource 返回某个字体角色的资源。
func (s FontSet) Resource(role FontRole) FontResource {
	switch role {
	case FontItalic:
		return s.Italic
	case FontBold:
		return s.Bold
	case FontCode:
		return s.Code
	default:
		return s.Regular
	}
}

// FontResource 描述字体资源，src 可以是文件路径或 builtin:<name>。
type FontResource struct {
	Name  string `json:"name" yaml:"name"`
	Src   string `json:"src" yaml:"src"`
	Style string `json:"style" yaml:"style"`
}

// BuildOptions 配置排版阶段所需的外部协作者。
type BuildOptions struct {
	Typesetter Typesetter
	// Images 为空时所有图片引用都按加载失败处理。
	Images ImageLoader
	// Logger 为空时不输出日志，问题仍会记录在 Result.Warnings 中。
	Logger *log.Logger
}

// Bounds 是单个字形渲染后的包围盒，单位与字号一致。
type Bounds struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// Typesetter 负责度量单个字形，只用于链接/图片行的逐字符推进。
type Typesetter interface {
	MeasureGlyph(glyph string, font FontResource, size float64) (Bounds, error)
}

// ImageAsset 是图片资源加载后的句柄与像素尺寸。
type ImageAsset struct {
	Name    string
	Path    string
	Width   int
	Height  int
	Texture image.Image
}

// ImageLoader 根据规范化后的文件路径加载图片。
type ImageLoader interface {
	LoadImage(path string) (ImageAsset, error)
}
