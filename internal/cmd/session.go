package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/devflow/internal/session"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or clear the saved discovery session",
		Long: `Inspect or clear the discovery session saved by 'devflow disco'.

Commands:
  show      Show the saved session
  clear     Archive the session and start fresh
  path      Print the session file path
  archives  List archived sessions

Examples:
  devflow session show
  devflow session show --format json
  devflow session clear`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the saved session",
			Args:  cobra.NoArgs,
			RunE:  runSessionShow,
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Archive the saved session and replace it with an empty one",
			Args:  cobra.NoArgs,
			RunE:  runSessionClear,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the session file path",
			Args:  cobra.NoArgs,
			RunE:  runSessionPath,
		},
		&cobra.Command{
			Use:   "archives",
			Short: "List archived sessions, oldest first",
			Args:  cobra.NoArgs,
			RunE:  runSessionArchives,
		},
	)

	return cmd
}

func openStore(cmd *cobra.Command) (*runtime, *session.Store, error) {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return nil, nil, err
	}
	return rt, session.NewStore(rt.config.SessionStore(), rt.logger), nil
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	rt, store, err := openStore(cmd)
	if err != nil {
		return err
	}

	s := store.Load()
	if !s.HasProgress() {
		fmt.Fprintln(rt.out, "No saved session.")
		fmt.Fprintln(rt.out, rt.paths.SuggestNextSteps(store.Path()))
		return nil
	}

	if rt.flags.Format == "text" || rt.flags.Format == "" {
		return sessionView{s}.WriteText(rt.out)
	}
	return rt.print(s)
}

func runSessionClear(cmd *cobra.Command, args []string) error {
	rt, store, err := openStore(cmd)
	if err != nil {
		return err
	}

	if !store.HasProgress() {
		fmt.Fprintln(rt.out, "No saved session.")
		return nil
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(rt.out, "✓ Session archived and cleared")
	return nil
}

func runSessionPath(cmd *cobra.Command, args []string) error {
	rt, store, err := openStore(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintln(rt.out, store.Path())
	return nil
}

func runSessionArchives(cmd *cobra.Command, args []string) error {
	rt, store, err := openStore(cmd)
	if err != nil {
		return err
	}

	archives, err := store.Archives()
	if err != nil {
		return err
	}
	if len(archives) == 0 && (rt.flags.Format == "text" || rt.flags.Format == "") {
		fmt.Fprintln(rt.out, "No archived sessions.")
		return nil
	}
	return rt.print(archives)
}

// sessionView renders a session summary for the terminal
type sessionView struct {
	s *session.Session
}

func (v sessionView) WriteText(w io.Writer) error {
	s := v.s
	fmt.Fprintf(w, "Saved: %s\n", s.Timestamp)

	if s.Input != nil {
		fmt.Fprintf(w, "Business context: %s\n", s.Input.BusinessContext)
		fmt.Fprintf(w, "In scope: %d item(s), out of scope: %d item(s), user flows: %d\n",
			len(s.Input.InScope), len(s.Input.OutOfScope), len(s.Input.UserFlows))
	}

	if len(s.Clarifications) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "📋 Clarification Questions:")
		for i, q := range s.Clarifications {
			fmt.Fprintf(w, "%d. %s\n", i+1, q)
		}
	}

	if s.ProjectPlan != nil {
		fmt.Fprintln(w)
		if err := (planView{s.ProjectPlan}).WriteText(w); err != nil {
			return err
		}
	}
	return nil
}
