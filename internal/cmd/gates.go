package cmd

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/devflow/internal/gates"
)

func newGatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gates",
		Short: "Run quality gate checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	run := &cobra.Command{
		Use:   "run <set> <pre|post>",
		Short: "Run the pre or post checks of a gate set",
		Long: `Run the checks of a quality gate set. Each check is a shell command; a
failing required check stops the run and exits with code 4. Optional
failures are reported and the run continues.

Examples:
  devflow gates run feature pre
  devflow gates run fix post`,
		Args: cobra.ExactArgs(2),
		RunE: runGates,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the configured gate sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(rt.config.QualityGates))
			for n := range rt.config.QualityGates {
				names = append(names, n)
			}
			sort.Strings(names)
			return rt.print(names)
		},
	}

	cmd.AddCommand(run, list)
	return cmd
}

func runGates(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	set, err := gates.Lookup(rt.config.QualityGates, args[0])
	if err != nil {
		return err
	}
	phase, err := gates.ParsePhase(args[1])
	if err != nil {
		return err
	}

	checker := gates.NewChecker(set, rt.config.Gates(), rt.out, rt.logger)
	results, runErr := checker.Run(cmd.Context(), phase)

	if rt.flags.Format == "text" || rt.flags.Format == "" {
		gates.Report(rt.out, results)
	} else if err := rt.print(results); err != nil {
		return err
	}

	if runErr != nil {
		return reported(runErr)
	}
	return nil
}
