package plan

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/devflow/internal/analysis"
)

// Kind classifies the work a ticket represents
type Kind string

const (
	KindFeature  Kind = "feature"
	KindBug      Kind = "bug"
	KindTechDebt Kind = "tech-debt"
	KindResearch Kind = "research"
)

// Plan is the ticket breakdown for one feature description
type Plan struct {
	ProjectName   string   `json:"projectName"`
	Summary       string   `json:"summary"`
	Tickets       []Ticket `json:"tickets"`
	DependencyMap string   `json:"dependencyMap"`
	InputDigest   string   `json:"inputDigest,omitempty"` // BLAKE3 of the canonical input
}

// Ticket represents a single unit of work in the plan
type Ticket struct {
	ID          int           `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	DependsOn   []int         `json:"dependsOn"`
	Size        analysis.Size `json:"size"`
	Kind        Kind          `json:"kind"`
}

// Ticket returns the ticket with the given ID
func (p *Plan) Ticket(id int) (Ticket, bool) {
	for _, t := range p.Tickets {
		if t.ID == id {
			return t, true
		}
	}
	return Ticket{}, false
}

// DependencyTitles resolves the titles of a ticket's prerequisites, in order.
// Unknown IDs are skipped.
func (p *Plan) DependencyTitles(t Ticket) []string {
	titles := make([]string, 0, len(t.DependsOn))
	for _, id := range t.DependsOn {
		if dep, ok := p.Ticket(id); ok {
			titles = append(titles, dep.Title)
		}
	}
	return titles
}

// FormatTickets renders the numbered ticket list shown to the operator
func (p *Plan) FormatTickets() string {
	var b strings.Builder
	for i, t := range p.Tickets {
		fmt.Fprintf(&b, "%d. %s [%s]\n", i+1, t.Title, t.Size)
		fmt.Fprintf(&b, "   %s\n", t.Description)
		if deps := p.DependencyTitles(t); len(deps) > 0 {
			fmt.Fprintf(&b, "   Dependencies: %s\n", strings.Join(deps, ", "))
		}
	}
	return b.String()
}
