package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ByLCY/docview/logging"
	"github.com/ByLCY/docview/viewer"
	"github.com/ByLCY/docview/watch"
)

func newWatchCommand(rf *rootFlags) *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-render a document every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, rf)
			if err != nil {
				return err
			}
			output := flags.output
			if output == "" {
				output = defaultOutput(args[0], ".pdf")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return s.watch(ctx, s.viewer(args[0]), output, flags)
		},
	}

	addRenderFlags(cmd, flags)
	cmd.Flags().Duration("debounce", 0, "delay before re-rendering after a change (default from config)")
	return cmd
}

// watch 先完整渲染一次，之后每次文档变化都整体重新排版并渲染，直到 ctx 结束。
// 存在配置文件时同时监听它，主题、字号与日志级别的修改无需重启即可生效。
// 单次失败只记录日志，继续监听。
func (s *session) watch(ctx context.Context, v *viewer.Viewer, output string, flags *renderFlags) error {
	logger := logging.FromContext(ctx)
	defer s.renderer.ReleaseImages()

	if _, err := v.Reload(); err != nil {
		return err
	}
	if err := s.render(v, output, flags); err != nil {
		return err
	}

	docChanges, stopDoc, err := s.watchFile(v.Path(), logger)
	if err != nil {
		return fmt.Errorf("监听文档失败: %w", err)
	}
	defer stopDoc()

	// 为 nil 时 select 永远不会选中
	var cfgChanges <-chan struct{}
	if s.cfg.File != "" {
		changes, stopCfg, err := s.watchFile(s.cfg.File, logger)
		if err != nil {
			return fmt.Errorf("监听配置文件失败: %w", err)
		}
		defer stopCfg()
		cfgChanges = changes
	}
	logger.Info("正在监听文档变化", logging.FieldPath, v.Path(), logging.FieldOutput, output)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-docChanges:
			if _, err := v.Reload(); err != nil {
				logger.Error("重新排版失败", logging.FieldPath, v.Path(), logging.FieldError, err)
				continue
			}
		case <-cfgChanges:
			if _, err := s.applyConfig(v); err != nil {
				logger.Error("重新加载配置失败", logging.FieldPath, s.cfg.File, logging.FieldError, err)
				continue
			}
		}
		if err := s.render(v, output, flags); err != nil {
			logger.Error("重新渲染失败", logging.FieldOutput, output, logging.FieldError, err)
		}
	}
}

func (s *session) watchFile(path string, logger *log.Logger) (<-chan struct{}, func(), error) {
	w, err := watch.New(watch.Config{Path: path, Debounce: s.cfg.Watch.Debounce, Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return nil, nil, err
	}
	return changes, func() { _ = w.Stop() }, nil
}
