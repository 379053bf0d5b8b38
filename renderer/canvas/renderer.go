package canvasrenderer

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/ByLCY/docview/fonts"
	"github.com/ByLCY/docview/layout"
	"github.com/ByLCY/docview/renderer"
	"github.com/ByLCY/docview/theme"
)

// ErrUnsupportedImage 表示图片格式无法解码。
var ErrUnsupportedImage = errors.New("不支持的图片格式")

// DefaultImageTTL 是解码后图片在缓存中的保留时间。
const DefaultImageTTL = 10 * time.Minute

// Renderer draws layout results via github.com/tdewolff/canvas. It also serves as the
// glyph measurement oracle and the image loader of the layout pass, so fonts and decoded
// images are loaded once per view rather than once per pass.
type Renderer struct {
	baseDir string

	// injected resources
	fontBlobs map[string][]byte // by unique name

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily

	images *cache.Cache
}

var (
	_ renderer.Renderer  = (*Renderer)(nil)
	_ layout.Typesetter  = (*Renderer)(nil)
	_ layout.ImageLoader = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	// BaseDir resolves relative font paths.
	BaseDir string
	// Fonts are injected font blobs, addressed as builtin:<name>; they shadow the bundled fonts.
	Fonts map[string]Resource
	// ImageTTL is how long a decoded image stays cached; zero means DefaultImageTTL.
	ImageTTL time.Duration
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// New creates a canvas-based renderer rooted at baseDir for resolving font paths.
func New(baseDir string) *Renderer { return NewWithOptions(Options{BaseDir: baseDir}) }

// NewWithOptions creates a renderer with injected resources.
func NewWithOptions(opts Options) *Renderer {
	ttl := opts.ImageTTL
	if ttl <= 0 {
		ttl = DefaultImageTTL
	}
	r := &Renderer{
		baseDir:      opts.BaseDir,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*fontFamilyEntry{},
		images:       cache.New(ttl, 2*ttl),
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // 读取失败时在实际使用处回退
			if len(data) > 0 {
				r.fontBlobs[name] = data
			}
		}
	}
	return r
}

// MeasureGlyph 实现 layout.Typesetter。size 与返回的包围盒均以 pt 为单位，
// 字体系统内部使用 mm，在边界做换算。
func (r *Renderer) MeasureGlyph(glyph string, font layout.FontResource, size float64) (layout.Bounds, error) {
	face, err := r.fontFace(font, size, theme.Color{A: 255})
	if err != nil {
		return layout.Bounds{}, err
	}
	metrics := face.Metrics()
	return layout.Bounds{
		Left:   0,
		Top:    -toPt(metrics.Ascent),
		Right:  toPt(face.TextWidth(glyph)),
		Bottom: toPt(metrics.Descent),
	}, nil
}

// LoadImage 实现 layout.ImageLoader：按路径解码图片并缓存。
func (r *Renderer) LoadImage(path string) (layout.ImageAsset, error) {
	if cached, ok := r.images.Get(path); ok {
		return cached.(layout.ImageAsset), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return layout.ImageAsset{}, fmt.Errorf("读取图片 %s 失败: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return layout.ImageAsset{}, fmt.Errorf("解码图片 %s 失败: %w", path, ErrUnsupportedImage)
		}
		return layout.ImageAsset{}, fmt.Errorf("解码图片 %s 失败: %w", path, err)
	}
	bounds := img.Bounds()
	asset := layout.ImageAsset{
		Name:    filepath.Base(path),
		Path:    path,
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Texture: img,
	}
	r.images.SetDefault(path, asset)
	return asset, nil
}

// ReleaseImages 清空图片缓存，在文档视图关闭时调用。
func (r *Renderer) ReleaseImages() {
	r.images.Flush()
}

// Extent 返回排版结果的整体范围（pt），用于决定输出页面或可滚动区域大小。
func (r *Renderer) Extent(result *layout.Result) (float64, float64, error) {
	if result == nil {
		return 0, 0, fmt.Errorf("排版结果为空")
	}
	m := layout.NewMetrics(result.BaseSize)
	width := result.CodeBlockWidth
	height := result.Cursor.Y
	for _, line := range result.Lines {
		if line.Image || line.Text == "" {
			continue
		}
		right := line.X
		if line.Span {
			right = math.Max(right, result.Cursor.X)
			for _, c := range result.LineChars(line.Index) {
				right = math.Max(right, c.X+c.Size)
			}
		} else {
			face, err := r.fontFace(result.Fonts.Resource(line.Font), line.Size, line.Color)
			if err != nil {
				return 0, 0, err
			}
			right += toPt(face.TextWidth(line.Text))
		}
		width = math.Max(width, right)
	}
	for _, img := range result.Images {
		width = math.Max(width, img.X+img.Width)
		height = math.Max(height, img.Y+img.Height)
	}
	return width + m.Half, height, nil
}

// Render renders the result into a PDF byte slice. Every stored offset is translated by
// the viewport scroll at draw time.
func (r *Renderer) Render(result *layout.Result, vp renderer.Viewport) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("排版结果为空")
	}
	width, height := vp.Width, vp.Height
	if width <= 0 || height <= 0 {
		w, h, err := r.Extent(result)
		if err != nil {
			return nil, err
		}
		if width <= 0 {
			width = w
		}
		if height <= 0 {
			height = h
		}
	}
	width, height = math.Max(width, 1), math.Max(height, 1)

	var buf bytes.Buffer
	writer := pdf.New(&buf, toMm(width), toMm(height), nil)
	c := canvas.New(toMm(width), toMm(height))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与排版保持左上角为原点

	d := &drawer{r: r, ctx: ctx, res: result, vp: vp, height: height}
	if err := d.draw(width); err != nil {
		return nil, err
	}
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

type drawer struct {
	r      *Renderer
	ctx    *canvas.Context
	res    *layout.Result
	vp     renderer.Viewport
	height float64
}

func (d *drawer) draw(width float64) error {
	th := d.res.Theme
	d.ctx.SetStrokeColor(canvas.Transparent)
	d.ctx.SetFillColor(colorFromTheme(th.Background))
	d.ctx.DrawPath(0, 0, canvas.Rectangle(toMm(width), toMm(d.height)))

	// 块高亮在文字之前绘制
	d.ctx.SetFillColor(colorFromTheme(th.Block))
	for _, k := range slices.Sorted(maps.Keys(d.res.CodeBlocks)) {
		d.drawRect(d.res.CodeBlocks[k].Highlight)
	}
	for _, k := range slices.Sorted(maps.Keys(d.res.QuoteBlocks)) {
		d.drawRect(d.res.QuoteBlocks[k].Highlight)
	}

	if err := d.drawImages(); err != nil {
		return err
	}
	for _, line := range d.res.Lines {
		if line.Image || !d.visible(line.Y, line.Size) {
			continue
		}
		if line.Span {
			if err := d.drawChars(line.Index); err != nil {
				return err
			}
			continue
		}
		if strings.TrimSpace(line.Text) == "" {
			continue
		}
		if err := d.drawText(line.Text, line.Font, line.Size, line.Color, line.X, line.Y); err != nil {
			return err
		}
	}
	return nil
}

func (d *drawer) drawRect(rc layout.Rect) {
	if rc.Width <= 0 || rc.Height <= 0 {
		return
	}
	d.ctx.DrawPath(d.x(rc.X), d.y(rc.Y), canvas.Rectangle(toMm(rc.Width), toMm(rc.Height)))
}

func (d *drawer) drawImages() error {
	keys := slices.SortedFunc(maps.Keys(d.res.Images), func(a, b layout.ImageKey) int {
		return cmp.Or(cmp.Compare(a.Line, b.Line), strings.Compare(a.Name, b.Name))
	})
	for _, k := range keys {
		img := d.res.Images[k]
		if !d.visible(img.Y+img.Height, img.Height) {
			continue
		}
		tex := img.Texture
		if tex == nil {
			asset, err := d.r.LoadImage(img.Path)
			if err != nil {
				return err
			}
			tex = asset.Texture
		}
		px := tex.Bounds().Dx()
		if px <= 0 || img.Width <= 0 {
			continue
		}
		dpmm := float64(px) / toMm(img.Width)
		d.ctx.DrawImage(d.x(img.X), d.y(img.Y), tex, canvas.DPMM(dpmm))
	}
	return nil
}

func (d *drawer) drawChars(line int) error {
	for _, ch := range d.res.LineChars(line) {
		if strings.TrimSpace(ch.Glyph) == "" {
			continue
		}
		if err := d.drawText(ch.Glyph, ch.Font, ch.Size, ch.Color, ch.X, ch.Y); err != nil {
			return err
		}
	}
	return nil
}

// drawText 以 y 为基线绘制一段文字。
func (d *drawer) drawText(text string, role layout.FontRole, size float64, col theme.Color, x, y float64) error {
	face, err := d.r.fontFace(d.res.Fonts.Resource(role), size, col)
	if err != nil {
		return err
	}
	d.ctx.DrawText(d.x(x), d.y(y), canvas.NewTextLine(face, text, canvas.Left))
	return nil
}

// visible 判断基线为 y、高度为 size 的内容是否落在视口内；视口高度为 0 时全部绘制。
func (d *drawer) visible(y, size float64) bool {
	if d.vp.Height <= 0 {
		return true
	}
	top := y - d.vp.ScrollY - size
	return top < d.vp.Height && y-d.vp.ScrollY+size > 0
}

func (d *drawer) x(v float64) float64 { return toMm(v - d.vp.ScrollX) }
func (d *drawer) y(v float64) float64 { return toMm(v - d.vp.ScrollY) }

func (r *Renderer) fontFace(font layout.FontResource, size float64, col theme.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(size, colorFromTheme(col), style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	familyName := font.Name
	if familyName == "" {
		familyName = "Body"
	}
	family := canvas.NewFontFamily(familyName)

	if err := r.loadFontIntoFamily(family, font, style); err != nil {
		fallback, fbStyle, fbErr := r.fallback()
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: fbStyle}
		return fallback, fbStyle, nil
	}

	entry := &fontFamilyEntry{family: family, style: style}
	r.fontFamilies[key] = entry
	return family, style, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, font layout.FontResource, style canvas.FontStyle) error {
	data, err := r.loadFontBytes(font)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func (r *Renderer) loadFontBytes(font layout.FontResource) ([]byte, error) {
	if font.Src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", font.Name)
	}
	src := font.Src
	if fonts.IsBuiltin(src) {
		if blob, ok := r.fontBlobs[strings.TrimPrefix(src, fonts.BuiltinPrefix)]; ok {
			return blob, nil
		}
		return fonts.Load(src)
	}
	path := src
	if !filepath.IsAbs(path) && r.baseDir != "" {
		path = filepath.Join(r.baseDir, path)
	}
	return fonts.Load(path)
}

func (r *Renderer) fallback() (*canvas.FontFamily, canvas.FontStyle, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, canvas.FontRegular, nil
	}
	data, err := fonts.Load(fonts.BuiltinPrefix + "regular")
	if err != nil {
		return nil, canvas.FontRegular, err
	}
	family := canvas.NewFontFamily("docview-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, canvas.FontRegular, err
	}
	r.fallbackFamily = family
	return family, canvas.FontRegular, nil
}

func parseFontStyle(style string) canvas.FontStyle {
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s|%s", font.Name, font.Src, font.Style)
}

func colorFromTheme(c theme.Color) color.Color {
	r, g, b, a := c.Floats()
	return canvas.RGBA(r, g, b, a)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
