package tracker

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/devflow/internal/errors"
	"github.com/felixgeelhaar/devflow/internal/version"
)

type fakeSession struct {
	calls   []*mcp.CallToolParams
	results map[string]*mcp.CallToolResult
	err     error
	closed  bool
}

func (f *fakeSession) CallTool(_ context.Context, params *mcp.CallToolParams) (*mcp.CallToolResult, error) {
	f.calls = append(f.calls, params)
	if f.err != nil {
		return nil, f.err
	}
	if res, ok := f.results[params.Name]; ok {
		return res, nil
	}
	return &mcp.CallToolResult{}, nil
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func textResult(s string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: s}}}
}

func TestMCPTracker_ListTeams(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"array", `[{"id":"t1","name":"Eng","key":"ENG"}]`},
		{"teams wrapper", `{"teams":[{"id":"t1","name":"Eng","key":"ENG"}]}`},
		{"nodes wrapper", `{"nodes":[{"id":"t1","name":"Eng","key":"ENG"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeSession{results: map[string]*mcp.CallToolResult{"list_teams": textResult(tt.body)}}
			m := newMCPTracker(Config{}, fs)

			teams, err := m.ListTeams(context.Background())
			require.NoError(t, err)
			assert.Equal(t, []Team{{ID: "t1", Name: "Eng", Key: "ENG"}}, teams)
		})
	}
}

func TestMCPTracker_DefaultsAndCustomTools(t *testing.T) {
	fs := &fakeSession{results: map[string]*mcp.CallToolResult{
		"linear_create_issue": textResult(`{"id":"ISS-1","url":"https://linear.app/i/1"}`),
	}}
	m := newMCPTracker(Config{Tools: ToolNames{CreateIssue: "linear_create_issue"}}, fs)
	assert.Equal(t, "Linear", m.Name())

	issue, err := m.CreateIssue(context.Background(), IssueInput{Title: "T", Description: "D", TeamID: "t", ProjectID: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ISS-1", issue.ID)

	require.Len(t, fs.calls, 1)
	assert.Equal(t, "linear_create_issue", fs.calls[0].Name)
	args := fs.calls[0].Arguments.(map[string]any)
	assert.Equal(t, "T", args["title"])
	assert.Equal(t, "p", args["projectId"])
	assert.Equal(t, "list_teams", m.tools.ListTeams)
}

func TestMCPTracker_CreateProject(t *testing.T) {
	fs := &fakeSession{results: map[string]*mcp.CallToolResult{
		"create_project": textResult(`{"id":"P1","name":"Feature: x"}`),
	}}
	m := newMCPTracker(Config{Name: "Linear"}, fs)

	p, err := m.CreateProject(context.Background(), ProjectInput{Name: "Feature: x", TeamID: "t"})
	require.NoError(t, err)
	assert.Equal(t, &Project{ID: "P1", Name: "Feature: x"}, p)
}

func TestMCPTracker_StructuredContentFallback(t *testing.T) {
	fs := &fakeSession{results: map[string]*mcp.CallToolResult{
		"create_project": {StructuredContent: map[string]any{"id": "P2", "name": "n"}},
	}}
	m := newMCPTracker(Config{}, fs)

	p, err := m.CreateProject(context.Background(), ProjectInput{Name: "n"})
	require.NoError(t, err)
	assert.Equal(t, "P2", p.ID)
}

func TestMCPTracker_Errors(t *testing.T) {
	t.Run("tool error", func(t *testing.T) {
		res := textResult("team not found")
		res.IsError = true
		fs := &fakeSession{results: map[string]*mcp.CallToolResult{"create_issue": res}}
		m := newMCPTracker(Config{}, fs)

		_, err := m.CreateIssue(context.Background(), IssueInput{Title: "T"})
		assert.Equal(t, errors.ErrCodeTrackerCall, errors.CodeOf(err))
		assert.ErrorContains(t, err, "team not found")
	})

	t.Run("transport error", func(t *testing.T) {
		boom := stderrors.New("pipe closed")
		m := newMCPTracker(Config{}, &fakeSession{err: boom})

		err := m.CreateComment(context.Background(), CommentInput{IssueID: "i", Body: "b"})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, errors.ErrCodeTrackerCall, errors.CodeOf(err))
	})

	t.Run("missing id", func(t *testing.T) {
		fs := &fakeSession{results: map[string]*mcp.CallToolResult{"create_issue": textResult(`{"ok":true}`)}}
		m := newMCPTracker(Config{}, fs)

		_, err := m.CreateIssue(context.Background(), IssueInput{Title: "T"})
		assert.Equal(t, errors.ErrCodeTrackerCall, errors.CodeOf(err))
	})

	t.Run("undecodable teams", func(t *testing.T) {
		fs := &fakeSession{results: map[string]*mcp.CallToolResult{"list_teams": textResult("not json")}}
		m := newMCPTracker(Config{}, fs)

		_, err := m.ListTeams(context.Background())
		assert.Equal(t, errors.ErrCodeTrackerCall, errors.CodeOf(err))
	})
}

func TestMCPTracker_Close(t *testing.T) {
	fs := &fakeSession{}
	m := newMCPTracker(Config{}, fs)
	require.NoError(t, m.Close())
	assert.True(t, fs.closed)
}

func TestTruncate(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, truncate(string(long)), 203)
	assert.Equal(t, "short", truncate("short"))
}

func TestUserAgentTransport(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	client := &http.Client{Transport: userAgentTransport{next: http.DefaultTransport}}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, version.UserAgent(), got)
	assert.True(t, strings.HasPrefix(got, "devflow/"))
}
