package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ByLCY/docview/theme"
)

func newThemesCommand(rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List available themes",
		Long: `List built-in and configured themes with swatches of their background,
block highlight, text and link colors.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd, rf)
			if err != nil {
				return err
			}
			reg, err := s.cfg.Registry()
			if err != nil {
				return err
			}
			return printThemes(cmd.OutOrStdout(), reg, s.theme.Name)
		},
	}
}

func printThemes(w io.Writer, reg *theme.Registry, active string) error {
	names := reg.Names()
	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}
	nameStyle := lipgloss.NewStyle().Width(width + 2)
	activeStyle := nameStyle.Bold(true)

	for _, name := range names {
		th, err := reg.Lookup(name)
		if err != nil {
			return err
		}
		label := nameStyle.Render(name)
		marker := "  "
		if name == active {
			label = activeStyle.Render(name)
			marker = "* "
		}
		if _, err := fmt.Fprintf(w, "%s%s %s  %s\n", marker, label, swatches(th), sample(th)); err != nil {
			return err
		}
	}
	return nil
}

func swatches(th theme.Theme) string {
	parts := make([]string, 0, 4)
	for _, c := range []theme.Color{th.Background, th.Block, th.Text, th.Link} {
		parts = append(parts, lipgloss.NewStyle().Background(lipgloss.Color(c.Hex())).Render("  "))
	}
	return strings.Join(parts, " ")
}

func sample(th theme.Theme) string {
	bg := lipgloss.Color(th.Background.Hex())
	text := lipgloss.NewStyle().Background(bg).Foreground(lipgloss.Color(th.Text.Hex())).Render(" Text ")
	link := lipgloss.NewStyle().Background(bg).Foreground(lipgloss.Color(th.Link.Hex())).Underline(true).Render("link ")
	return text + link + "  " + strings.Join([]string{th.Background.Hex(), th.Block.Hex(), th.Text.Hex(), th.Link.Hex()}, " ")
}
