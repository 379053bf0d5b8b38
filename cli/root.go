// Package cli provides the cobra command structure for docview.
package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ByLCY/docview/config"
	"github.com/ByLCY/docview/layout"
	"github.com/ByLCY/docview/logging"
	canvasrenderer "github.com/ByLCY/docview/renderer/canvas"
	"github.com/ByLCY/docview/theme"
	"github.com/ByLCY/docview/viewer"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
}

type rootFlags struct {
	configPath string
	debug      bool
}

// NewRootCommand creates the root docview command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	rf := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "docview",
		Short: "Lay out and render Markdown-like documents",
		Long: `docview classifies each line of a Markdown-like document (headers, bullets,
emphasis, code and quote lines, inline links and images), lays it out on an
unbounded canvas and renders the result to PDF.`,
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&rf.configPath, "config", "c", "", "config file (default: ./docview.yaml or ~/.config/docview/config.yaml)")
	pf.BoolVar(&rf.debug, "debug", false, "enable debug logging")
	pf.Float64("base-size", 0, "base font size in pt")
	pf.String("theme", "", "theme name (see the themes command)")
	pf.String("assets", "", "folder for relative image paths (default: document folder)")
	pf.String("log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newRenderCommand(rf))
	rootCmd.AddCommand(newLayoutCommand(rf))
	rootCmd.AddCommand(newWatchCommand(rf))
	rootCmd.AddCommand(newThemesCommand(rf))

	return rootCmd
}

// session 是一次命令执行所需的配置、主题、logger 与渲染器。
type session struct {
	cfg      *config.Config
	theme    theme.Theme
	logger   *log.Logger
	renderer *canvasrenderer.Renderer

	// 以下字段用于运行中重新读取配置
	configPath string
	flags      *pflag.FlagSet
	debug      bool
}

func newSession(cmd *cobra.Command, rf *rootFlags) (*session, error) {
	cfg, err := config.Load(rf.configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if rf.debug {
		level = "debug"
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), level)
	logging.SetDefault(logger)
	cmd.SetContext(logging.WithLogger(cmd.Context(), logger))

	th, err := resolveSettings(cfg)
	if err != nil {
		return nil, err
	}

	// 配置文件中的相对字体路径相对于配置文件所在目录
	baseDir := ""
	if cfg.File != "" {
		baseDir = filepath.Dir(cfg.File)
	}
	logger.Debug("配置已加载",
		logging.FieldPath, cfg.File,
		logging.FieldTheme, th.Name,
		logging.FieldBaseSize, cfg.BaseSize,
	)
	return &session{
		cfg:        cfg,
		theme:      th,
		logger:     logger,
		renderer:   canvasrenderer.NewWithOptions(canvasrenderer.Options{BaseDir: baseDir}),
		configPath: rf.configPath,
		flags:      cmd.Flags(),
		debug:      rf.debug,
	}, nil
}

// resolveSettings 校验配置并解析当前主题。
func resolveSettings(cfg *config.Config) (theme.Theme, error) {
	if err := cfg.Validate(); err != nil {
		return theme.Theme{}, fmt.Errorf("配置无效: %w", err)
	}
	return cfg.ResolveTheme()
}

// applyConfig 重新读取配置，把主题、基准字号与日志级别的变化应用到查看器。
// 字体与资源目录只在启动时读取。
func (s *session) applyConfig(v *viewer.Viewer) (*layout.Result, error) {
	cfg, err := config.Load(s.configPath, s.flags)
	if err != nil {
		return nil, err
	}
	th, err := resolveSettings(cfg)
	if err != nil {
		return nil, err
	}
	if !s.debug {
		logging.SetLevel(cfg.LogLevel)
	}

	var res *layout.Result
	if th != s.theme {
		if res, err = v.SetTheme(th); err != nil {
			return nil, err
		}
		s.theme = th
	}
	if cfg.BaseSize != s.cfg.BaseSize {
		if res, err = v.SetBaseSize(cfg.BaseSize); err != nil {
			return nil, err
		}
	}
	s.cfg = cfg
	s.logger.Info("配置已重新加载", logging.FieldTheme, th.Name, logging.FieldBaseSize, cfg.BaseSize)
	if res == nil {
		return v.Reload()
	}
	return res, nil
}

func (s *session) viewer(path string) *viewer.Viewer {
	return viewer.New(path, s.cfg.LayoutConfig(), s.theme, layout.BuildOptions{
		Typesetter: s.renderer,
		Images:     s.renderer,
		Logger:     s.logger,
	})
}

// defaultOutput 将 doc.md 映射为 doc.pdf。
func defaultOutput(input, ext string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}
