package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/devflow/internal/ux"
	"github.com/felixgeelhaar/devflow/internal/version"
)

func newVersionCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print version information including version number, git commit,
build date, Go version, and platform.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			info := version.GetInfo()

			if flags.Format != ux.FormatText && flags.Format != "" {
				f, err := ux.NewFormatter(flags.Format, &ux.FormatterOptions{Writer: out})
				if err != nil {
					return err
				}
				return f.Format(info)
			}

			if verbose {
				fmt.Fprintln(out, info.String())
				return nil
			}
			fmt.Fprintf(out, "devflow %s\n", info.Short())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed version information")
	return cmd
}
