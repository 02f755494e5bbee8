package tracker

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryTracker keeps projects, issues and comments in process. It backs
// dry runs and tests. Set a Fail* field to make that operation fail.
type MemoryTracker struct {
	mu   sync.Mutex
	name string

	Teams    []Team
	Projects []ProjectRecord
	Issues   []IssueRecord
	Comments []CommentInput

	FailListTeams     error
	FailCreateProject error
	FailCreateIssue   error
	FailCreateComment error
}

// ProjectRecord is a project created in a MemoryTracker
type ProjectRecord struct {
	Project
	Input ProjectInput
}

// IssueRecord is an issue created in a MemoryTracker
type IssueRecord struct {
	Issue
	Input IssueInput
}

// DefaultMemoryTeams is the single team a dry run publishes to
func DefaultMemoryTeams() []Team {
	return []Team{{ID: "local", Name: "Local", Key: "LOC"}}
}

// NewMemoryTracker creates an in-memory tracker with the given teams
func NewMemoryTracker(name string, teams []Team) *MemoryTracker {
	if name == "" {
		name = "memory"
	}
	return &MemoryTracker{name: name, Teams: teams}
}

// Name implements Tracker
func (m *MemoryTracker) Name() string { return m.name }

// ListTeams implements Tracker
func (m *MemoryTracker) ListTeams(ctx context.Context) ([]Team, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailListTeams != nil {
		return nil, m.FailListTeams
	}
	return append([]Team(nil), m.Teams...), nil
}

// CreateProject implements Tracker
func (m *MemoryTracker) CreateProject(ctx context.Context, in ProjectInput) (*Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCreateProject != nil {
		return nil, m.FailCreateProject
	}

	p := Project{ID: uuid.New().String(), Name: in.Name}
	m.Projects = append(m.Projects, ProjectRecord{Project: p, Input: in})
	return &p, nil
}

// CreateIssue implements Tracker
func (m *MemoryTracker) CreateIssue(ctx context.Context, in IssueInput) (*Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCreateIssue != nil {
		return nil, m.FailCreateIssue
	}

	id := uuid.New().String()
	issue := Issue{ID: id, URL: fmt.Sprintf("memory://issues/%s", id)}
	m.Issues = append(m.Issues, IssueRecord{Issue: issue, Input: in})
	return &issue, nil
}

// CreateComment implements Tracker
func (m *MemoryTracker) CreateComment(ctx context.Context, in CommentInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCreateComment != nil {
		return m.FailCreateComment
	}
	m.Comments = append(m.Comments, in)
	return nil
}
