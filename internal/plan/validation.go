package plan

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/devflow/internal/analysis"
	"github.com/felixgeelhaar/devflow/internal/errors"
)

// Validate checks if the Ticket is well formed on its own
func (t *Ticket) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("ticket ID must be positive, got %d", t.ID)
	}

	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("title cannot be empty")
	}

	for _, dep := range t.DependsOn {
		if dep == t.ID {
			return fmt.Errorf("ticket %d depends on itself", t.ID)
		}
	}

	switch t.Size {
	case analysis.SizeSmall, analysis.SizeMedium, analysis.SizeLarge:
	default:
		return fmt.Errorf("invalid size %q", t.Size)
	}

	switch t.Kind {
	case KindFeature, KindBug, KindTechDebt, KindResearch:
	default:
		return fmt.Errorf("invalid kind %q", t.Kind)
	}

	return nil
}

// Validate checks the plan's ticket graph. An empty plan is valid.
func (p *Plan) Validate() error {
	ids := make(map[int]bool, len(p.Tickets))
	titles := make(map[string]int, len(p.Tickets))

	for i, t := range p.Tickets {
		if err := t.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodePlanInvalid,
				fmt.Sprintf("ticket at index %d is invalid", i), err)
		}

		if ids[t.ID] {
			return errors.New(errors.ErrCodePlanInvalid,
				fmt.Sprintf("duplicate ticket ID %d at index %d", t.ID, i))
		}
		ids[t.ID] = true

		if prev, ok := titles[t.Title]; ok {
			return errors.New(errors.ErrCodePlanDuplicateTitle,
				fmt.Sprintf("tickets %d and %d share the title %q", prev, t.ID, t.Title)).
				WithSuggestion("Give every ticket a distinct title")
		}
		titles[t.Title] = t.ID
	}

	for _, t := range p.Tickets {
		for _, dep := range t.DependsOn {
			if !ids[dep] {
				return errors.New(errors.ErrCodePlanDanglingDep,
					fmt.Sprintf("ticket %d (%s) depends on %d, which is not in the plan", t.ID, t.Title, dep))
			}
		}
	}

	if _, err := topoOrder(p.Tickets); err != nil {
		return err
	}

	return nil
}
