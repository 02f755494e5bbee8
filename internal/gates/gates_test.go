package gates

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/devflow/internal/errors"
)

func init() {
	color.NoColor = true
}

func TestRunPre_AllPass(t *testing.T) {
	var out bytes.Buffer
	c := NewChecker(Set{PreChecks: []Check{
		{Name: "echo", Description: "prints", Command: "echo hello", Required: true},
		{Name: "true", Description: "succeeds", Command: "true"},
	}}, Config{Dir: t.TempDir()}, &out, nil)

	results, err := c.RunPre(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.Equal(t, "hello", results[0].Output)
	assert.Contains(t, out.String(), "🔍 Running pre-checks...")
	assert.Contains(t, out.String(), "  → echo: prints")
	assert.Contains(t, out.String(), "✅ echo passed")
}

func TestRun_OptionalFailureContinues(t *testing.T) {
	c := NewChecker(Set{PostChecks: []Check{
		{Name: "lint", Command: "echo bad >&2; exit 1"},
		{Name: "test", Command: "true", Required: true},
	}}, DefaultConfig(), nil, nil)

	results, err := c.RunPost(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "bad")
	assert.Len(t, Failed(results), 1)
}

func TestRun_RequiredFailureStops(t *testing.T) {
	c := NewChecker(Set{PreChecks: []Check{
		{Name: "typecheck", Command: "exit 2", Required: true},
		{Name: "never", Command: "true"},
	}}, DefaultConfig(), nil, nil)

	results, err := c.Run(context.Background(), PhasePre)
	assert.Equal(t, errors.ErrCodeGateRequiredFailed, errors.CodeOf(err))
	assert.ErrorContains(t, err, "required pre-check failed: typecheck")
	assert.Len(t, results, 1)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewChecker(Set{PreChecks: []Check{{Name: "x", Command: "true"}}}, DefaultConfig(), nil, nil)
	results, err := c.RunPre(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	Report(&buf, []Result{
		{Name: "a", Success: true},
		{Name: "b", Error: "exit status 1"},
		{Name: "c", Success: true},
	})
	assert.Equal(t, "✅ Passed checks (2):\n  - a\n  - c\n\n❌ Failed checks (1):\n  - b: exit status 1\n", buf.String())
}

func TestParsePhase(t *testing.T) {
	p, err := ParsePhase("POST")
	require.NoError(t, err)
	assert.Equal(t, PhasePost, p)

	_, err = ParsePhase("during")
	assert.Equal(t, errors.ErrCodeGateUnknown, errors.CodeOf(err))
}

func TestLookup(t *testing.T) {
	_, err := Lookup(map[string]Set{"fix": {}}, "feature")
	assert.Equal(t, errors.ErrCodeGateUnknown, errors.CodeOf(err))
}
