package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/devflow/internal/errors"
	"github.com/felixgeelhaar/devflow/internal/hooks"
	"github.com/felixgeelhaar/devflow/internal/interview"
	"github.com/felixgeelhaar/devflow/internal/orchestrator"
	"github.com/felixgeelhaar/devflow/internal/prompt"
	"github.com/felixgeelhaar/devflow/internal/session"
	"github.com/felixgeelhaar/devflow/internal/tracker"
	"github.com/felixgeelhaar/devflow/internal/tui"
)

type discoOptions struct {
	useTUI    bool
	noTracker bool
	dryRun    bool
}

func newDiscoCmd() *cobra.Command {
	opts := &discoOptions{}

	cmd := &cobra.Command{
		Use:   "disco [input.json]",
		Short: "Plan a large feature as dependency-ordered tracker tickets",
		Long: `Run feature discovery: collect a feature description, review the
clarification questions, generate the ticket breakdown and publish it to the
configured tracker.

The description comes from a JSON file when one is given, otherwise it is
collected interactively. Progress is saved after every step; running the
command again offers to resume.

Examples:
  # Interactive discovery
  devflow disco

  # Start from a file and publish to an in-memory tracker
  devflow disco feature.json --dry-run

  # Plan only, never touch the tracker
  devflow disco feature.json --no-tracker`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDisco(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.useTUI, "tui", false, "use interactive forms and the ticket review UI")
	cmd.Flags().BoolVar(&opts.noTracker, "no-tracker", false, "skip tracker integration and save the plan locally")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "publish to an in-memory tracker instead of the configured one")

	return cmd
}

func runDisco(cmd *cobra.Command, args []string, opts *discoOptions) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	stopTelemetry := rt.startTelemetry(ctx)
	defer stopTelemetry()

	forms := opts.useTUI && tui.Available()
	if opts.useTUI && !forms {
		rt.logger.Warn("no interactive terminal, using line prompts")
	}

	// huh owns the terminal while forms run; a line editor would race it for stdin.
	reader, closeReader, err := rt.lineReader(!forms)
	if err != nil {
		return err
	}
	defer closeReader()
	prompter := prompt.NewPrompter(reader, rt.out)

	registry, err := hooks.Load(rt.config.HookRegistry(), rt.logger)
	if err != nil {
		return err
	}

	ocfg := orchestrator.Config{
		Store:     session.NewStore(rt.config.SessionStore(), rt.logger),
		Prompter:  prompter,
		Collector: interview.NewLineCollector(reader, rt.out),
		Hooks:     registry,
		Logger:    rt.logger,
		Out:       rt.out,
	}
	if len(args) == 1 {
		ocfg.InputFile = args[0]
	}

	if rt.config.Tracker.Enabled && !opts.noTracker {
		tc := rt.config.TrackerBackend()
		if opts.dryRun {
			tc.Transport = tracker.TransportMemory
		}

		t, closeTracker, err := tracker.Open(ctx, tc)
		if err != nil {
			rt.logger.WithError(err).Warn("tracker unavailable", "tracker", tc.Name, "code", string(errors.CodeOf(err)))
			fmt.Fprintf(rt.out, "⚠️  %s is unavailable; the plan will be saved locally\n\n", tc.Name)
		} else {
			defer func() {
				if err := closeTracker(); err != nil {
					rt.logger.WithError(err).Debug("tracker close failed")
				}
			}()
			ocfg.Tracker = t
		}
	}

	if forms {
		ocfg.Collector = tui.NewFormCollector()
		if ocfg.Tracker != nil {
			ocfg.Review = tui.Reviewer(ocfg.Tracker.Name())
		}
	}

	o, err := orchestrator.New(ocfg)
	if err != nil {
		return err
	}

	res := o.Run(ctx)
	rt.logger.Debug("discovery result", "run_id", res.RunID, "state", res.State.String())

	if res.State == orchestrator.StateFailedRecoverable {
		return reported(res.Err)
	}
	return nil
}
