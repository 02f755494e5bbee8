package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the devflow command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "devflow",
		Short: "Feature discovery and scoped development workflow",
		Long: `devflow turns a large feature description into a dependency-ordered
ticket plan and publishes it to a project tracker. It also carries the
scoped development workflow around it: command modes with file scopes,
quality gates and code templates.

Discovery progress is saved after every step; an interrupted run resumes
where it stopped.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is .devflow/config.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text, json")
	flags.StringP("format", "o", "text", "output format: text, json, yaml")
	flags.Bool("no-color", false, "disable colored output")

	root.AddCommand(
		newDiscoCmd(),
		newSessionCmd(),
		newPlanCmd(),
		newScopeCmd(),
		newGatesCmd(),
		newTemplateCmd(),
		newModeCmd(),
		newConfigCmd(),
		newVersionCmd(),
		newCompletionCmd(),
	)

	return root
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with a context that cancels
// blocking operations
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
