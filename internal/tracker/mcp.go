package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/felixgeelhaar/devflow/internal/errors"
	"github.com/felixgeelhaar/devflow/internal/telemetry"
	"github.com/felixgeelhaar/devflow/internal/version"
)

// toolCaller is the part of an MCP client session the tracker uses
type toolCaller interface {
	CallTool(ctx context.Context, params *mcp.CallToolParams) (*mcp.CallToolResult, error)
	Close() error
}

// MCPTracker talks to a tracker's MCP server
type MCPTracker struct {
	name    string
	session toolCaller
	tools   ToolNames
	timeout time.Duration
}

// Connect starts or dials the MCP server described by cfg
func Connect(ctx context.Context, cfg Config) (*MCPTracker, error) {
	var transport mcp.Transport
	switch cfg.Transport {
	case TransportCommand:
		if cfg.Command == "" {
			return nil, errors.New(errors.ErrCodeTrackerUnavailable, "tracker command is not configured").
				WithSuggestion("Set tracker.command in .devflow/config.yaml")
		}
		transport = &mcp.CommandTransport{Command: exec.Command(cfg.Command, cfg.Args...)}
	case TransportHTTP:
		if cfg.Endpoint == "" {
			return nil, errors.New(errors.ErrCodeTrackerUnavailable, "tracker endpoint is not configured").
				WithSuggestion("Set tracker.endpoint in .devflow/config.yaml")
		}
		transport = &mcp.StreamableClientTransport{
			Endpoint:   cfg.Endpoint,
			HTTPClient: &http.Client{Transport: userAgentTransport{next: http.DefaultTransport}},
		}
	default:
		return nil, errors.New(errors.ErrCodeTrackerUnavailable,
			fmt.Sprintf("transport %q is not an MCP transport", cfg.Transport))
	}

	client := mcp.NewClient(&mcp.Implementation{Name: version.Name, Version: version.Version}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTrackerUnavailable,
			fmt.Sprintf("failed to connect to %s MCP server", cfg.Name), err).
			WithSuggestion("Check that the MCP server is installed and authenticated").
			WithSuggestion("Run with --no-tracker to keep the plan local")
	}

	return newMCPTracker(cfg, session), nil
}

// userAgentTransport stamps tracker HTTP requests with the devflow version
type userAgentTransport struct {
	next http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", version.UserAgent())
	return t.next.RoundTrip(req)
}

func newMCPTracker(cfg Config, session toolCaller) *MCPTracker {
	tools := cfg.Tools
	defaults := DefaultToolNames()
	if tools.ListTeams == "" {
		tools.ListTeams = defaults.ListTeams
	}
	if tools.CreateProject == "" {
		tools.CreateProject = defaults.CreateProject
	}
	if tools.CreateIssue == "" {
		tools.CreateIssue = defaults.CreateIssue
	}
	if tools.CreateComment == "" {
		tools.CreateComment = defaults.CreateComment
	}

	name := cfg.Name
	if name == "" {
		name = "Linear"
	}

	return &MCPTracker{name: name, session: session, tools: tools, timeout: cfg.Timeout}
}

// Name implements Tracker
func (m *MCPTracker) Name() string { return m.name }

// Close ends the MCP session
func (m *MCPTracker) Close() error {
	return m.session.Close()
}

// ListTeams implements Tracker
func (m *MCPTracker) ListTeams(ctx context.Context) ([]Team, error) {
	text, err := m.call(ctx, "list_teams", m.tools.ListTeams, map[string]any{})
	if err != nil {
		return nil, err
	}

	var teams []Team
	if err := json.Unmarshal([]byte(text), &teams); err == nil {
		return teams, nil
	}

	// some servers wrap the list
	var wrapped struct {
		Teams []Team `json:"teams"`
		Nodes []Team `json:"nodes"`
	}
	if err := json.Unmarshal([]byte(text), &wrapped); err != nil {
		return nil, errors.NewTrackerCallError(m.name, "list_teams", fmt.Errorf("decode teams: %w", err))
	}
	if wrapped.Teams != nil {
		return wrapped.Teams, nil
	}
	return wrapped.Nodes, nil
}

// CreateProject implements Tracker
func (m *MCPTracker) CreateProject(ctx context.Context, in ProjectInput) (*Project, error) {
	text, err := m.call(ctx, "create_project", m.tools.CreateProject, map[string]any{
		"name":    in.Name,
		"summary": in.Summary,
		"teamId":  in.TeamID,
	})
	if err != nil {
		return nil, err
	}

	var p Project
	if err := json.Unmarshal([]byte(text), &p); err != nil || p.ID == "" {
		return nil, errors.NewTrackerCallError(m.name, "create_project", fmt.Errorf("unexpected response: %s", truncate(text)))
	}
	return &p, nil
}

// CreateIssue implements Tracker
func (m *MCPTracker) CreateIssue(ctx context.Context, in IssueInput) (*Issue, error) {
	text, err := m.call(ctx, "create_issue", m.tools.CreateIssue, map[string]any{
		"title":       in.Title,
		"description": in.Description,
		"teamId":      in.TeamID,
		"projectId":   in.ProjectID,
	})
	if err != nil {
		return nil, err
	}

	var issue Issue
	if err := json.Unmarshal([]byte(text), &issue); err != nil || issue.ID == "" {
		return nil, errors.NewTrackerCallError(m.name, "create_issue", fmt.Errorf("unexpected response: %s", truncate(text)))
	}
	return &issue, nil
}

// CreateComment implements Tracker
func (m *MCPTracker) CreateComment(ctx context.Context, in CommentInput) error {
	_, err := m.call(ctx, "create_comment", m.tools.CreateComment, map[string]any{
		"issueId": in.IssueID,
		"body":    in.Body,
	})
	return err
}

// call invokes one tool and returns the text content of the result
func (m *MCPTracker) call(ctx context.Context, op, tool string, args map[string]any) (string, error) {
	ctx, span := telemetry.StartTrackerSpan(ctx, m.name, op)
	defer span.End()

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := m.invoke(ctx, op, tool, args)
	telemetry.RecordTrackerCall(ctx, m.name, op, time.Since(start), err)

	if err != nil {
		telemetry.RecordError(span, err)
		return "", err
	}
	telemetry.RecordSuccess(span)
	return text, nil
}

func (m *MCPTracker) invoke(ctx context.Context, op, tool string, args map[string]any) (string, error) {
	res, err := m.session.CallTool(ctx, &mcp.CallToolParams{Name: tool, Arguments: args})
	if err != nil {
		return "", errors.NewTrackerCallError(m.name, op, err)
	}

	text := resultText(res)
	if res.IsError {
		return "", errors.NewTrackerCallError(m.name, op, fmt.Errorf("tool error: %s", truncate(text)))
	}

	if text == "" && res.StructuredContent != nil {
		data, err := json.Marshal(res.StructuredContent)
		if err != nil {
			return "", errors.NewTrackerCallError(m.name, op, err)
		}
		text = string(data)
	}

	return text, nil
}

func resultText(res *mcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func truncate(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
