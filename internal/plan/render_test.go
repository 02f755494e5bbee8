package plan

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/devflow/internal/errors"
)

func tk(id int, title string, deps ...int) Ticket {
	if deps == nil {
		deps = []int{}
	}
	return Ticket{ID: id, Title: title, DependsOn: deps, Size: "small", Kind: KindFeature}
}

func bodyLines(t *testing.T, rendered string) []string {
	t.Helper()
	lines := strings.Split(strings.TrimSuffix(rendered, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	return lines[3 : len(lines)-1]
}

func TestRenderDependencyMapEmpty(t *testing.T) {
	out, err := RenderDependencyMap(nil)
	require.NoError(t, err)

	rule := strings.Repeat("─", 37)
	assert.Equal(t,
		"┌"+rule+"┐\n│           Dependency Flow           │\n├"+rule+"┤\n└"+rule+"┘\n",
		out)
}

func TestRenderDependencyMapDiamond(t *testing.T) {
	tickets := []Ticket{
		tk(1, "Root"),
		tk(2, "Left", 1),
		tk(3, "Right", 1),
		tk(4, "Join", 2, 3),
	}

	out, err := RenderDependencyMap(tickets)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"│ • Root",
		"│   • Left",
		"│   • Right",
		"│     • Join",
	}, bodyLines(t, out))
}

func TestRenderDependencyMapDepthIsLongestPath(t *testing.T) {
	tickets := []Ticket{
		tk(1, "A"),
		tk(2, "B", 1),
		tk(3, "C", 1, 2),
	}

	depths, err := Depths(tickets)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 0, 2: 1, 3: 2}, depths)
}

func TestRenderDependencyMapBreadthFirstOrder(t *testing.T) {
	// B appears before its prerequisite in the list
	tickets := []Ticket{
		tk(1, "A"),
		tk(2, "B", 3),
		tk(3, "C"),
	}

	out, err := RenderDependencyMap(tickets)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"│ • A",
		"│ • C",
		"│   • B",
	}, bodyLines(t, out))
}

func TestRenderDependencyMapIgnoresUnknownDependencies(t *testing.T) {
	out, err := RenderDependencyMap([]Ticket{tk(1, "Orphan", 99)})
	require.NoError(t, err)
	assert.Equal(t, []string{"│ • Orphan"}, bodyLines(t, out))
}

func TestRenderDependencyMapCycle(t *testing.T) {
	tickets := []Ticket{
		tk(1, "Free"),
		tk(2, "Ping", 3),
		tk(3, "Pong", 2),
	}

	_, err := RenderDependencyMap(tickets)
	require.Error(t, err)

	var cycle *CycleError
	require.True(t, stderrors.As(err, &cycle))
	assert.Equal(t, []string{"Ping", "Pong"}, titles(cycle.Tickets))
	assert.Equal(t, errors.ErrCodePlanCyclicDep, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "2 (Ping)")
}

func TestRenderDependencyMapSelfLoop(t *testing.T) {
	_, err := RenderDependencyMap([]Ticket{tk(1, "Loop", 1)})
	var cycle *CycleError
	assert.True(t, stderrors.As(err, &cycle))
}
