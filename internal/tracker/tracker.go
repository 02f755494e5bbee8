// Package tracker publishes ticket plans to an external project tracker.
// The Tracker interface is the remote contract; MCPTracker speaks it over
// the Model Context Protocol, MemoryTracker keeps everything in process.
package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/devflow/internal/errors"
)

// Team is a tracker team that can own projects
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Key  string `json:"key,omitempty"`
}

// ProjectInput describes a project to create
type ProjectInput struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
	TeamID  string `json:"teamId"`
}

// Project is a created tracker project
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IssueInput describes an issue to create
type IssueInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TeamID      string `json:"teamId"`
	ProjectID   string `json:"projectId"`
}

// Issue is a created tracker issue
type Issue struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

// CommentInput describes a comment on an existing issue
type CommentInput struct {
	IssueID string `json:"issueId"`
	Body    string `json:"body"`
}

// Tracker is the remote project tracker contract
type Tracker interface {
	Name() string
	ListTeams(ctx context.Context) ([]Team, error)
	CreateProject(ctx context.Context, in ProjectInput) (*Project, error)
	CreateIssue(ctx context.Context, in IssueInput) (*Issue, error)
	CreateComment(ctx context.Context, in CommentInput) error
}

// Transports
const (
	TransportCommand = "command"
	TransportHTTP    = "http"
	TransportMemory  = "memory"
)

// ToolNames maps tracker operations to MCP tool names
type ToolNames struct {
	ListTeams     string `yaml:"list_teams" json:"list_teams"`
	CreateProject string `yaml:"create_project" json:"create_project"`
	CreateIssue   string `yaml:"create_issue" json:"create_issue"`
	CreateComment string `yaml:"create_comment" json:"create_comment"`
}

// DefaultToolNames are the tool names exposed by the Linear MCP server
func DefaultToolNames() ToolNames {
	return ToolNames{
		ListTeams:     "list_teams",
		CreateProject: "create_project",
		CreateIssue:   "create_issue",
		CreateComment: "create_comment",
	}
}

// Config selects and tunes the tracker backend
type Config struct {
	Enabled       bool
	Name          string
	Transport     string
	Command       string
	Args          []string
	Endpoint      string
	Tools         ToolNames
	RatePerSecond float64
	Burst         int
	Timeout       time.Duration
}

// DefaultConfig targets a Linear MCP server launched through npx
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		Name:          "Linear",
		Transport:     TransportCommand,
		Command:       "npx",
		Args:          []string{"-y", "mcp-remote", "https://mcp.linear.app/sse"},
		Tools:         DefaultToolNames(),
		RatePerSecond: 2,
		Burst:         1,
		Timeout:       30 * time.Second,
	}
}

// Open connects the configured backend and applies rate limiting. The
// returned close function releases the connection.
func Open(ctx context.Context, cfg Config) (Tracker, func() error, error) {
	var (
		t       Tracker
		closeFn = func() error { return nil }
	)

	switch cfg.Transport {
	case TransportMemory:
		t = NewMemoryTracker(cfg.Name, DefaultMemoryTeams())
	case TransportCommand, TransportHTTP:
		m, err := Connect(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		t, closeFn = m, m.Close
	default:
		return nil, nil, errors.New(errors.ErrCodeTrackerUnavailable,
			fmt.Sprintf("unknown tracker transport %q", cfg.Transport)).
			WithSuggestion("Use one of: command, http, memory")
	}

	if cfg.RatePerSecond > 0 {
		t = NewRateLimited(t, cfg.RatePerSecond, cfg.Burst)
	}

	return t, closeFn, nil
}
