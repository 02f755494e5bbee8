package tracker

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/devflow/internal/errors"
)

func TestMemoryTracker_RecordsCalls(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryTracker("", DefaultMemoryTeams())
	assert.Equal(t, "memory", mem.Name())

	teams, err := mem.ListTeams(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultMemoryTeams(), teams)

	p, err := mem.CreateProject(ctx, ProjectInput{Name: "P", TeamID: "local"})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "P", p.Name)

	issue, err := mem.CreateIssue(ctx, IssueInput{Title: "T", ProjectID: p.ID})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(issue.URL, "memory://issues/"))

	require.NoError(t, mem.CreateComment(ctx, CommentInput{IssueID: issue.ID, Body: "hi"}))
	assert.Len(t, mem.Projects, 1)
	assert.Len(t, mem.Issues, 1)
	assert.Len(t, mem.Comments, 1)
}

func TestMemoryTracker_HonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mem := NewMemoryTracker("x", DefaultMemoryTeams())
	_, err := mem.CreateIssue(ctx, IssueInput{Title: "T"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mem.Issues)
}

func TestMemoryTracker_ListTeamsReturnsCopy(t *testing.T) {
	mem := NewMemoryTracker("x", DefaultMemoryTeams())
	teams, _ := mem.ListTeams(context.Background())
	teams[0].Name = "changed"
	assert.Equal(t, "Local", mem.Teams[0].Name)
}

func TestRateLimited_Delegates(t *testing.T) {
	mem := NewMemoryTracker("Linear", DefaultMemoryTeams())
	rl := NewRateLimited(mem, 1000, 0)

	assert.Equal(t, "Linear", rl.Name())
	assert.Same(t, mem, rl.Unwrap())

	_, err := rl.CreateIssue(context.Background(), IssueInput{Title: "T"})
	require.NoError(t, err)
	assert.Len(t, mem.Issues, 1)
}

func TestRateLimited_WaitRespectsContext(t *testing.T) {
	mem := NewMemoryTracker("Linear", DefaultMemoryTeams())
	rl := NewRateLimited(mem, 0.001, 1)

	_, err := rl.ListTeams(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = rl.ListTeams(ctx)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	t.Run("memory with rate limit", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Transport = TransportMemory
		tr, closeFn, err := Open(context.Background(), cfg)
		require.NoError(t, err)
		defer closeFn()

		rl, ok := tr.(*RateLimited)
		require.True(t, ok)
		_, ok = rl.Unwrap().(*MemoryTracker)
		assert.True(t, ok)
	})

	t.Run("memory without rate limit", func(t *testing.T) {
		cfg := Config{Transport: TransportMemory, Name: "Local"}
		tr, _, err := Open(context.Background(), cfg)
		require.NoError(t, err)
		_, ok := tr.(*MemoryTracker)
		assert.True(t, ok)
		assert.Equal(t, "Local", tr.Name())
	})

	t.Run("unknown transport", func(t *testing.T) {
		_, _, err := Open(context.Background(), Config{Transport: "carrier-pigeon"})
		assert.Equal(t, errors.ErrCodeTrackerUnavailable, errors.CodeOf(err))
	})

	t.Run("command without command", func(t *testing.T) {
		_, _, err := Open(context.Background(), Config{Transport: TransportCommand})
		assert.Equal(t, errors.ErrCodeTrackerUnavailable, errors.CodeOf(err))
	})

	t.Run("http without endpoint", func(t *testing.T) {
		_, _, err := Open(context.Background(), Config{Transport: TransportHTTP})
		assert.Equal(t, errors.ErrCodeTrackerUnavailable, errors.CodeOf(err))
	})
}

func TestMemoryTracker_FailureInjection(t *testing.T) {
	mem := NewMemoryTracker("x", DefaultMemoryTeams())
	boom := stderrors.New("boom")
	mem.FailCreateComment = boom
	assert.ErrorIs(t, mem.CreateComment(context.Background(), CommentInput{}), boom)
}
