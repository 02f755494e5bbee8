package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/devflow/internal/config"
	"github.com/felixgeelhaar/devflow/internal/session"
	"github.com/felixgeelhaar/devflow/internal/ux"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or initialize devflow configuration",
		Long: `Manage the project configuration stored at .devflow/config.yaml

Configuration includes:
  • Session directory
  • Tracker backend (MCP command or HTTP endpoint, tool names, rate limit)
  • Command scopes and quality gates
  • Template overrides and hooks
  • Logging and telemetry settings

Examples:
  # View the effective configuration
  devflow config view

  # Write the defaults to .devflow/config.yaml
  devflow config init

  # Show configuration file path
  devflow config path
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "view",
			Short: "Display the effective configuration",
			Long:  `Display the configuration after defaults and the config file are merged.`,
			Args:  cobra.NoArgs,
			RunE:  runConfigView,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show configuration file path",
			Args:  cobra.NoArgs,
			RunE:  runConfigPath,
		},
		initCmd,
	)

	return cmd
}

func runConfigView(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	if rt.flags.Format == ux.FormatText || rt.flags.Format == "" {
		f, err := ux.NewFormatter(ux.FormatYAML, &ux.FormatterOptions{Writer: rt.out})
		if err != nil {
			return err
		}
		return f.Format(rt.config)
	}
	return rt.print(rt.config)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintln(rt.out, rt.configPath)
	if err := rt.paths.ValidateSetup(); err != nil {
		fmt.Fprintf(rt.out, "(%v)\n", err)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	path := rt.flags.ConfigPath
	if path == "" {
		path = rt.paths.ConfigFile()
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}

	if err := ux.EnsureDir(rt.paths.Dir); err != nil {
		return ux.FormatError(err, "create "+rt.paths.Dir)
	}
	if err := config.Save(config.Default(), path); err != nil {
		return err
	}

	fmt.Fprintf(rt.out, "✓ Wrote default configuration to %s\n", path)
	sessionPath := session.NewStore(rt.config.SessionStore(), rt.logger).Path()
	fmt.Fprintf(rt.out, "Next: %s\n", rt.paths.SuggestNextSteps(sessionPath))
	return nil
}
