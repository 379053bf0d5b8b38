package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ByLCY/docview/layout"
	"github.com/ByLCY/docview/logging"
	"github.com/ByLCY/docview/renderer"
	"github.com/ByLCY/docview/viewer"
)

type renderFlags struct {
	output      string
	debugOut    string
	debugFormat string
	viewport    renderer.Viewport
}

func newRenderCommand(rf *rootFlags) *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a document to PDF",
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
			v := s.viewer(args[0])
			if _, err := v.Reload(); err != nil {
				return err
			}
			if err := s.render(v, output, flags); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已生成 PDF：%s\n", output)
			return nil
		},
	}

	addRenderFlags(cmd, flags)
	return cmd
}

func addRenderFlags(cmd *cobra.Command, flags *renderFlags) {
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "PDF output path (default: <file>.pdf)")
	cmd.Flags().StringVar(&flags.debugOut, "debug-out", "", "also write the layout dump to this path")
	cmd.Flags().StringVar(&flags.debugFormat, "debug-format", "json", "layout dump format: json or yaml")
	cmd.Flags().Float64Var(&flags.viewport.ScrollX, "scroll-x", 0, "horizontal scroll offset in pt")
	cmd.Flags().Float64Var(&flags.viewport.ScrollY, "scroll-y", 0, "vertical scroll offset in pt")
	cmd.Flags().Float64Var(&flags.viewport.Width, "width", 0, "viewport width in pt (default: whole document)")
	cmd.Flags().Float64Var(&flags.viewport.Height, "height", 0, "viewport height in pt (default: whole document)")
}

// render 输出查看器当前的排版结果。
func (s *session) render(v *viewer.Viewer, output string, flags *renderFlags) error {
	result := v.Current()
	if result == nil {
		return fmt.Errorf("文档 %s 尚未排版", v.Path())
	}
	for _, w := range result.Warnings {
		s.logger.Warn(w.String())
	}

	if flags.debugOut != "" {
		if err := s.writeDebug(result, flags.debugOut, flags.debugFormat); err != nil {
			return err
		}
	}

	pdfBytes, err := s.renderer.Render(result, flags.viewport)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(output, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	s.logger.Info("已渲染", logging.FieldOutput, output, logging.FieldLines, len(result.Lines))
	return nil
}

func (s *session) writeDebug(result *layout.Result, path, format string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebug(result, path, format); err != nil {
		return fmt.Errorf("输出排版调试信息失败: %w", err)
	}
	s.logger.Debug("已写出排版调试信息", logging.FieldPath, path, logging.FieldFormat, format)
	return nil
}
