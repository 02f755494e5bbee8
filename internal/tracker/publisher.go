package tracker

import (
	"context"
	"fmt"
	"io"

	"github.com/felixgeelhaar/devflow/internal/errors"
	"github.com/felixgeelhaar/devflow/internal/log"
	"github.com/felixgeelhaar/devflow/internal/plan"
	"github.com/felixgeelhaar/devflow/internal/prompt"
	"github.com/felixgeelhaar/devflow/internal/telemetry"
)

// PublishedIssue links a plan ticket to the issue created for it
type PublishedIssue struct {
	TicketID int    `json:"ticketId"`
	Title    string `json:"title"`
	Issue    Issue  `json:"issue"`
}

// Publication is the outcome of publishing a plan
type Publication struct {
	Team    Team             `json:"team"`
	Project Project          `json:"project"`
	Issues  []PublishedIssue `json:"issues"`
}

// Publisher creates a tracker project and issues from a plan
type Publisher struct {
	tracker  Tracker
	prompter *prompt.Prompter
	out      io.Writer
	logger   *log.Logger
}

// NewPublisher creates a Publisher. The prompter is only used when more
// than one team is available.
func NewPublisher(t Tracker, p *prompt.Prompter, out io.Writer, logger *log.Logger) *Publisher {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Publisher{tracker: t, prompter: p, out: out, logger: logger}
}

// SelectTeam auto-selects the only team or asks the operator to pick one
func (p *Publisher) SelectTeam(ctx context.Context) (*Team, error) {
	name := p.tracker.Name()
	fmt.Fprintf(p.out, "🔍 Detecting %s teams...\n", name)

	teams, err := p.tracker.ListTeams(ctx)
	if err != nil {
		if errors.CodeOf(err) == "" {
			err = errors.NewTrackerCallError(name, "list_teams", err)
		}
		return nil, err
	}

	switch len(teams) {
	case 0:
		return nil, errors.New(errors.ErrCodeTrackerNoTeams, fmt.Sprintf("no %s teams available", name)).
			WithSuggestion("Create a team in the tracker or check the account the MCP server uses")
	case 1:
		fmt.Fprintf(p.out, "✓ Auto-selected %s team: %s\n", name, teams[0].Name)
		return &teams[0], nil
	}

	if p.prompter == nil {
		return nil, errors.New(errors.ErrCodeTrackerTeamSelection,
			fmt.Sprintf("%d teams available and no prompt to choose one", len(teams)))
	}

	options := make([]string, len(teams))
	for i, t := range teams {
		options[i] = t.Name
		if t.Key != "" {
			options[i] = fmt.Sprintf("%s (%s)", t.Name, t.Key)
		}
	}

	fmt.Fprintf(p.out, "🎯 Available %s teams:\n", name)
	idx, answer, ok, err := p.prompter.Choose("Select team number", options)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewTeamSelectionError(answer, len(teams))
	}
	return &teams[idx], nil
}

// Publish selects a team, creates the project, then creates the tickets:
// those without prerequisites first, the rest in plan order, each followed
// by one comment per prerequisite. Remote calls run one at a time. A
// creation failure stops publishing without rolling back; the partial
// Publication is returned with the error.
func (p *Publisher) Publish(ctx context.Context, pl *plan.Plan) (*Publication, error) {
	team, err := p.SelectTeam(ctx)
	if err != nil {
		return nil, err
	}

	pub := &Publication{Team: *team, Issues: []PublishedIssue{}}

	fmt.Fprintf(p.out, "✓ Creating project: %s\n", pl.ProjectName)
	project, err := p.tracker.CreateProject(ctx, ProjectInput{
		Name:    pl.ProjectName,
		Summary: pl.Summary,
		TeamID:  team.ID,
	})
	if err != nil {
		return pub, errors.Wrap(errors.ErrCodeTrackerProject,
			fmt.Sprintf("failed to create project %q", pl.ProjectName), err)
	}
	pub.Project = *project
	fmt.Fprintf(p.out, "✓ Created project: %s (%s)\n", project.Name, project.ID)

	created := make(map[int]Issue, len(pl.Tickets))

	for _, t := range pl.Tickets {
		if len(t.DependsOn) > 0 {
			continue
		}
		if err := p.createTicket(ctx, pub, created, t, team.ID, project.ID); err != nil {
			return pub, err
		}
	}

	for _, t := range pl.Tickets {
		if len(t.DependsOn) == 0 {
			continue
		}
		if err := p.createTicket(ctx, pub, created, t, team.ID, project.ID); err != nil {
			return pub, err
		}
		p.linkDependencies(ctx, pl, t, created)
	}

	telemetry.RecordTicketsPublished(ctx, p.tracker.Name(), len(pub.Issues))
	return pub, nil
}

func (p *Publisher) createTicket(ctx context.Context, pub *Publication, created map[int]Issue, t plan.Ticket, teamID, projectID string) error {
	fmt.Fprintf(p.out, "✓ Creating ticket: %s\n", t.Title)

	issue, err := p.tracker.CreateIssue(ctx, IssueInput{
		Title:       t.Title,
		Description: t.Description,
		TeamID:      teamID,
		ProjectID:   projectID,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeTrackerIssue,
			fmt.Sprintf("failed to create ticket %q", t.Title), err)
	}

	created[t.ID] = *issue
	pub.Issues = append(pub.Issues, PublishedIssue{TicketID: t.ID, Title: t.Title, Issue: *issue})
	return nil
}

// linkDependencies comments on the new issue once per prerequisite that was
// already created. Comment failures only warn.
func (p *Publisher) linkDependencies(ctx context.Context, pl *plan.Plan, t plan.Ticket, created map[int]Issue) {
	issue := created[t.ID]

	for _, depID := range t.DependsOn {
		depIssue, ok := created[depID]
		if !ok {
			continue
		}
		dep, _ := pl.Ticket(depID)

		body := fmt.Sprintf("This issue depends on: %s (%s)", dep.Title, depIssue.ID)
		if err := p.tracker.CreateComment(ctx, CommentInput{IssueID: issue.ID, Body: body}); err != nil {
			p.logger.WithError(err).Warn("dependency comment failed", "ticket", t.Title, "dependency", dep.Title)
			fmt.Fprintf(p.out, "⚠️  Could not add dependency comment for %s\n", t.Title)
		}
	}
}
