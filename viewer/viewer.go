// Package viewer 持有文档最近一次的排版结果，并在文档或设置变化时整体重新排版。
package viewer

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/docview/document"
	"github.com/ByLCY/docview/layout"
	"github.com/ByLCY/docview/logging"
	"github.com/ByLCY/docview/theme"
)

// Viewer 每次重新排版都生成全新的 Result 并整体替换，读者不会看到半成品。
// Reload 之间互斥，Current 可在任意 goroutine 中无锁调用。
type Viewer struct {
	path string

	mu    sync.Mutex
	cfg   layout.Config
	theme theme.Theme
	opts  layout.BuildOptions

	current atomic.Pointer[layout.Result]
}

// New 创建查看器。cfg.AssetDir 为空时使用文档所在目录。
func New(path string, cfg layout.Config, th theme.Theme, opts layout.BuildOptions) *Viewer {
	return &Viewer{path: path, cfg: cfg, theme: th, opts: opts}
}

// Path 返回文档路径。
func (v *Viewer) Path() string { return v.path }

// Current 返回最近一次成功的排版结果，尚未排版时为 nil。
func (v *Viewer) Current() *layout.Result {
	return v.current.Load()
}

// Reload 重新读取文档并从头排版。失败时保留上一次的结果。
func (v *Viewer) Reload() (*layout.Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rebuild(v.cfg, v.theme)
}

// SetTheme 切换主题并重新排版。排版失败时主题不变。
func (v *Viewer) SetTheme(th theme.Theme) (*layout.Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	res, err := v.rebuild(v.cfg, th)
	if err != nil {
		return nil, err
	}
	v.theme = th
	return res, nil
}

// SetBaseSize 修改基准字号并重新排版。字号无效或排版失败时保持原设置。
func (v *Viewer) SetBaseSize(size float64) (*layout.Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !layout.ValidBaseSize(size) {
		return nil, fmt.Errorf("%w: %g", layout.ErrInvalidBaseSize, size)
	}
	cfg := v.cfg
	cfg.BaseSize = size
	res, err := v.rebuild(cfg, v.theme)
	if err != nil {
		return nil, err
	}
	v.cfg = cfg
	return res, nil
}

// rebuild 用给定设置排版并发布结果，不修改 v.cfg 与 v.theme。调用方须持有 v.mu。
func (v *Viewer) rebuild(cfg layout.Config, th theme.Theme) (*layout.Result, error) {
	start := time.Now()
	doc, err := document.Load(v.path)
	if err != nil {
		return nil, err
	}
	if cfg.AssetDir == "" {
		cfg.AssetDir = doc.Dir
	}
	res, err := layout.Build(doc.Lines, cfg, th, v.opts)
	if err != nil {
		return nil, fmt.Errorf("排版 %s 失败: %w", v.path, err)
	}
	v.current.Store(res)

	v.logger().Debug("排版完成",
		logging.FieldPath, v.path,
		logging.FieldLines, len(res.Lines),
		logging.FieldChars, len(res.Chars),
		logging.FieldImages, len(res.Images),
		logging.FieldWarnings, len(res.Warnings),
		logging.FieldDuration, time.Since(start),
	)
	return res, nil
}

func (v *Viewer) logger() *log.Logger {
	if v.opts.Logger != nil {
		return v.opts.Logger
	}
	return logging.Default()
}
