package plan

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/devflow/internal/analysis"
	"github.com/felixgeelhaar/devflow/internal/feature"
)

// Ticket titles of the fixed catalog
const (
	TitleDiscovery = "Technical Discovery & Architecture Planning"
	TitleDatabase  = "Database Schema & Migration"
	TitleBackend   = "Backend Service Implementation"
	TitleAPI       = "API Endpoints & Authentication"
	TitleFrontend  = "Frontend Components & UI"
	TitleQA        = "Integration Testing & QA"
)

const projectNameWords = 3

// Generate creates a Plan from a feature description. The result depends only
// on the input: calling it twice yields equal plans.
func Generate(d feature.Description) (*Plan, error) {
	c := analysis.Classify(d)

	tickets := buildTickets(d, c)

	depMap, err := RenderDependencyMap(tickets)
	if err != nil {
		return nil, fmt.Errorf("render dependency map: %w", err)
	}

	digest, err := InputDigest(d)
	if err != nil {
		return nil, err
	}

	return &Plan{
		ProjectName:   ProjectName(d.BusinessContext),
		Summary:       d.BusinessContext,
		Tickets:       tickets,
		DependencyMap: depMap,
		InputDigest:   digest,
	}, nil
}

// ProjectName derives the tracker project name from the first three
// space-separated words of the business context.
func ProjectName(businessContext string) string {
	words := strings.Split(businessContext, " ")
	if len(words) > projectNameWords {
		words = words[:projectNameWords]
	}
	return "Feature: " + strings.Join(words, " ")
}

// ticketBuilder assigns sequential IDs as tickets are appended
type ticketBuilder struct {
	tickets []Ticket
}

func (b *ticketBuilder) add(title, description string, size analysis.Size, kind Kind, deps ...int) int {
	id := len(b.tickets) + 1
	if deps == nil {
		deps = []int{}
	}
	b.tickets = append(b.tickets, Ticket{
		ID:          id,
		Title:       title,
		Description: description,
		DependsOn:   deps,
		Size:        size,
		Kind:        kind,
	})
	return id
}

// buildTickets walks the catalog in order. Each step depends only on
// tickets already appended, so the list is topologically ordered.
func buildTickets(d feature.Description, c analysis.Classification) []Ticket {
	b := &ticketBuilder{tickets: []Ticket{}}

	// zero means "not produced"; IDs start at 1
	var discovery, database, backend, api int

	if c.Complexity == analysis.ComplexityHigh {
		discovery = b.add(TitleDiscovery,
			"Research technical approach, define architecture, and create implementation plan for: "+d.BusinessContext,
			analysis.SizeMedium, KindResearch)
	}

	if c.NeedsDatabase {
		database = b.add(TitleDatabase,
			"Design and implement database schema changes, create migrations, update models",
			c.DatabaseSize, KindFeature, present(discovery)...)
	}

	if c.NeedsBackend {
		prereq := database
		if prereq == 0 {
			prereq = discovery
		}
		backend = b.add(TitleBackend,
			"Implement business logic, service layer, validation, and error handling",
			c.BackendSize, KindFeature, present(prereq)...)
	}

	if c.NeedsAPI {
		api = b.add(TitleAPI,
			"Create REST API endpoints with proper authentication, validation, and error responses",
			c.APISize, KindFeature, present(backend)...)
	}

	if c.NeedsFrontend {
		b.add(TitleFrontend,
			"Build user interface components, forms, interactions, and responsive design",
			c.FrontendSize, KindFeature, present(api)...)
	}

	if n := len(b.tickets); n > 0 {
		b.add(TitleQA,
			"End-to-end testing, quality assurance, performance validation, and bug fixes",
			analysis.SizeSmall, KindFeature, b.tickets[n-1].ID)
	}

	return b.tickets
}

func present(id int) []int {
	if id == 0 {
		return nil
	}
	return []int{id}
}
