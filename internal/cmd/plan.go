package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/devflow/internal/feature"
	"github.com/felixgeelhaar/devflow/internal/plan"
	"github.com/felixgeelhaar/devflow/internal/session"
	"github.com/felixgeelhaar/devflow/internal/tui"
	"github.com/felixgeelhaar/devflow/internal/ux"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate, export and review ticket plans",
		Long: `Work with ticket plans outside the interactive discovery.

Examples:
  # Print the plan for a feature description without saving anything
  devflow plan generate feature.json

  # Write the plan from the saved session to a file
  devflow plan export --out plan.json

  # Review a plan in the terminal UI
  devflow plan review --in plan.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newPlanGenerateCmd(), newPlanExportCmd(), newPlanReviewCmd())
	return cmd
}

func newPlanGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <input.json>",
		Short: "Print the ticket plan for a feature description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}

			d, err := feature.LoadFile(args[0])
			if err != nil {
				return err
			}
			p, err := plan.Generate(*d)
			if err != nil {
				return err
			}
			return rt.print(planView{p})
		},
	}
}

func newPlanExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the saved session's plan to a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}

			p, err := sessionPlan(rt)
			if err != nil {
				return err
			}
			if err := plan.SavePlan(p, out); err != nil {
				return ux.FormatError(err, "export plan")
			}
			fmt.Fprintf(rt.out, "✓ Exported %d tickets to %s\n", len(p.Tickets), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", ux.NewPathDefaults().PlanFile(), "output file")
	return cmd
}

func newPlanReviewCmd() *cobra.Command {
	var in string

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review a plan in the terminal UI",
		Long: `Open the ticket review UI for the saved session's plan, or for a plan
file exported earlier with --in.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}

			var p *plan.Plan
			if in != "" {
				if err := ux.ValidateRequiredFile(in, "plan file", "devflow plan export --out "+in); err != nil {
					return err
				}
				p, err = plan.LoadPlan(in)
			} else {
				p, err = sessionPlan(rt)
			}
			if err != nil {
				return err
			}

			if !tui.Available() {
				return fmt.Errorf("plan review needs an interactive terminal")
			}

			res, err := tui.RunPlanReview(p)
			if err != nil {
				return err
			}
			if res.Approved {
				fmt.Fprintln(rt.out, "✓ Plan approved")
				return nil
			}
			fmt.Fprintf(rt.out, "✗ Plan rejected: %s\n", res.Reason)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "plan file to review instead of the saved session")
	return cmd
}

func sessionPlan(rt *runtime) (*plan.Plan, error) {
	s := session.NewStore(rt.config.SessionStore(), rt.logger).Load()
	if s == nil || s.ProjectPlan == nil {
		return nil, fmt.Errorf("no plan in the saved session; run 'devflow disco' first")
	}
	return s.ProjectPlan, nil
}

// planView prints a plan as the numbered breakdown with its dependency
// map; structured formats get the plan itself.
type planView struct {
	p *plan.Plan
}

func (v planView) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "📊 %s (%d tickets)\n\n", v.p.ProjectName, len(v.p.Tickets))
	fmt.Fprintln(w, v.p.FormatTickets())
	fmt.Fprintln(w, "🗺️  Dependency Map:")
	_, err := fmt.Fprintln(w, v.p.DependencyMap)
	return err
}

func (v planView) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.p)
}

func (v planView) MarshalYAML() (any, error) {
	return v.p, nil
}
