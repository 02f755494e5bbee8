package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/devflow/internal/feature"
	"github.com/felixgeelhaar/devflow/internal/plan"
)

// FlowAnswers are the raw form values for one user flow
type FlowAnswers struct {
	Name        string
	Description string
	Success     string
	Failure     string
}

// FormAnswers are the raw form values, list fields one item per line
type FormAnswers struct {
	BusinessContext string
	InScope         string
	OutOfScope      string
	Flows           []FlowAnswers
}

// Description converts the answers into a feature description
func (a FormAnswers) Description() *feature.Description {
	d := &feature.Description{
		BusinessContext: strings.TrimSpace(a.BusinessContext),
		InScope:         SplitLines(a.InScope),
		OutOfScope:      SplitLines(a.OutOfScope),
		UserFlows:       []feature.UserFlow{},
	}
	for _, f := range a.Flows {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		d.UserFlows = append(d.UserFlows, feature.UserFlow{
			Name:         name,
			Description:  strings.TrimSpace(f.Description),
			SuccessPath:  SplitLines(f.Success),
			FailurePaths: SplitLines(f.Failure),
		})
	}
	return d
}

// SplitLines returns the trimmed non-empty lines of s
func SplitLines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

// FormCollector gathers the feature description through huh forms
type FormCollector struct{}

// NewFormCollector creates a FormCollector
func NewFormCollector() *FormCollector { return &FormCollector{} }

// Collect runs the scope form, then one form per user flow until the
// operator declines to add another.
func (c *FormCollector) Collect(ctx context.Context) (*feature.Description, error) {
	var a FormAnswers

	scope := huh.NewForm(huh.NewGroup(
		huh.NewText().
			Title("Business Context").
			Description("Describe the business problem this feature solves").
			Value(&a.BusinessContext).
			Validate(required("business context")),
		huh.NewText().
			Title("In Scope").
			Description("One item per line").
			Value(&a.InScope),
		huh.NewText().
			Title("Out of Scope").
			Description("One item per line").
			Value(&a.OutOfScope),
	))
	if err := scope.RunWithContext(ctx); err != nil {
		return nil, fmt.Errorf("feature form: %w", err)
	}

	for {
		addFlow := len(a.Flows) == 0
		confirm := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Add user flow %d?", len(a.Flows)+1)).
				Value(&addFlow),
		))
		if err := confirm.RunWithContext(ctx); err != nil {
			return nil, fmt.Errorf("flow form: %w", err)
		}
		if !addFlow {
			break
		}

		var f FlowAnswers
		flow := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Flow name").Value(&f.Name).Validate(required("flow name")),
			huh.NewInput().Title("Description").Value(&f.Description),
			huh.NewText().Title("Success path").Description("One step per line").Value(&f.Success),
			huh.NewText().Title("Failure paths").Description("One step per line").Value(&f.Failure),
		))
		if err := flow.RunWithContext(ctx); err != nil {
			return nil, fmt.Errorf("flow form: %w", err)
		}
		a.Flows = append(a.Flows, f)
	}

	return a.Description(), nil
}

// ConfirmPublish asks whether to create the plan in the tracker
func ConfirmPublish(ctx context.Context, trackerName string, p *plan.Plan) (bool, error) {
	ok := false
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Proceed with %s creation?", trackerName)).
			Description(fmt.Sprintf("%s: %d tickets", p.ProjectName, len(p.Tickets))).
			Affirmative("Create").
			Negative("Keep local").
			Value(&ok),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return false, fmt.Errorf("confirm form: %w", err)
	}
	return ok, nil
}

// Reviewer returns a review function for the orchestrator: the bubbletea
// ticket review followed by the publish confirmation.
func Reviewer(trackerName string) func(ctx context.Context, p *plan.Plan) (bool, error) {
	return func(ctx context.Context, p *plan.Plan) (bool, error) {
		res, err := RunPlanReview(p)
		if err != nil {
			return false, err
		}
		if !res.Approved {
			return false, nil
		}
		return ConfirmPublish(ctx, trackerName, p)
	}
}
