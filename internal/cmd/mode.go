package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/devflow/internal/mode"
	"github.com/felixgeelhaar/devflow/internal/scope"
	"github.com/felixgeelhaar/devflow/internal/ux"
)

func newModeCmd() *cobra.Command {
	var check []string

	cmd := &cobra.Command{
		Use:       "mode <feature|fix|design-engineering> [issue...]",
		Short:     "Activate a command mode and print its agent context",
		ValidArgs: mode.Names,
		Long: `Activate a command mode. The mode's banner and prompt context are
printed for the coding agent; fix determines its scope from the issue
description.

Examples:
  devflow mode feature
  devflow mode fix "Button color is wrong on the settings page"
  devflow mode design-engineering --check src/components/Button.tsx
  devflow mode feature --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}

			m, err := mode.ByName(args[0], rt.config.Scopes, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			if rt.flags.Format == ux.FormatText || rt.flags.Format == "" {
				m.WriteBanner(rt.out)
			}
			if err := rt.print(m.Context); err != nil {
				return err
			}

			if len(check) == 0 {
				return nil
			}

			results := m.ValidateChanges(check)
			fmt.Fprintln(rt.out)
			scope.Report(rt.out, results)
			if results.HasBlocked() {
				return reported(&scopeViolationError{scope: m.Name, blocked: len(results.Blocked)})
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&check, "check", nil, "files to validate against the mode's scope")
	return cmd
}
