package cli

import (
	"github.com/spf13/cobra"

	"github.com/ByLCY/docview/layout"
)

type layoutFlags struct {
	format string
	output string
}

func newLayoutCommand(rf *rootFlags) *cobra.Command {
	flags := &layoutFlags{}

	cmd := &cobra.Command{
		Use:   "layout <file>",
		Short: "Print the computed layout of a document",
		Long: `Lay out a document and print every line, character, image and block record
as JSON or YAML. Coordinates are canvas coordinates in pt with the origin at
the top left.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, rf)
			if err != nil {
				return err
			}
			result, err := s.viewer(args[0]).Reload()
			if err != nil {
				return err
			}
			if flags.output != "" {
				return s.writeDebug(result, flags.output, flags.format)
			}
			return layout.EncodeDebug(cmd.OutOrStdout(), result, flags.format)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}
