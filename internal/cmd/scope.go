package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/devflow/internal/scope"
)

func newScopeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scope",
		Short: "Check changed files against a command scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	validate := &cobra.Command{
		Use:   "validate <scope> <file>...",
		Short: "Report which files a scope allows and blocks",
		Long: `Validate files against the include and exclude globs of a scope.
Exits with code 3 when any file is blocked.

Examples:
  devflow scope validate design-engineering src/components/Button.tsx
  git diff --name-only | xargs devflow scope validate fix`,
		Args: cobra.MinimumNArgs(2),
		RunE: runScopeValidate,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the configured scopes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			return rt.print(scope.Names(rt.config.Scopes))
		},
	}

	cmd.AddCommand(validate, list)
	return cmd
}

func runScopeValidate(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	name, files := args[0], args[1:]
	cfg, err := scope.Lookup(rt.config.Scopes, name)
	if err != nil {
		return err
	}
	v, err := scope.New(cfg)
	if err != nil {
		return err
	}

	results := v.ValidateChanges(files)
	if rt.flags.Format == "text" || rt.flags.Format == "" {
		scope.Report(rt.out, results)
	} else if err := rt.print(results); err != nil {
		return err
	}

	rt.logger.Debug("scope validated", "scope", name, "allowed", len(results.Allowed), "blocked", len(results.Blocked))
	if results.HasBlocked() {
		return reported(&scopeViolationError{scope: name, blocked: len(results.Blocked)})
	}
	return nil
}
