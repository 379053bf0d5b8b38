package renderer

import "github.com/ByLCY/docview/layout"

// Viewport 是绘制时的可视窗口：滚动偏移与窗口大小，单位与排版坐标一致（pt）。
// 排版结果中从不包含滚动偏移，只在绘制时叠加。
type Viewport struct {
	ScrollX float64 `json:"scrollX"`
	ScrollY float64 `json:"scrollY"`
	// Width/Height 为 0 时按整篇文档的范围输出。
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Renderer 将排版结果输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result, vp Viewport) ([]byte, error)
}
