package cmd

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/devflow/internal/errors"
	"github.com/felixgeelhaar/devflow/internal/prompt"
	"github.com/felixgeelhaar/devflow/internal/session"
)

const featureJSON = `{
  "businessContext": "Add account export for admins",
  "inScope": ["Export account data to CSV through the api"],
  "outOfScope": ["Scheduled exports"],
  "userFlows": [
    {"name": "Export", "description": "Admin downloads a CSV", "successPath": ["Open settings", "Click export"], "failurePaths": ["Export times out"]}
  ]
}`

func init() {
	color.NoColor = true
}

// workspace is a temp directory with a config file pointing all state into it
type workspace struct {
	dir    string
	config string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()

	cfg := `session:
  dir: ` + dir + `
tracker:
  enabled: true
  name: Linear
  transport: command
  command: devflow-test-missing-tracker
templates:
  dir: ` + filepath.Join(dir, "templates") + `
logging:
  level: error
quality_gates:
  demo:
    pre_checks:
      - name: ok
        description: always passes
        command: "true"
        required: true
      - name: optional
        description: optional failure
        command: "false"
        required: false
    post_checks:
      - name: broken
        description: required failure
        command: "exit 1"
        required: true
      - name: never
        description: skipped after the failure
        command: "true"
        required: true
`
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return &workspace{dir: dir, config: path}
}

func (w *workspace) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(w.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (w *workspace) run(stdin string, args ...string) (string, error) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", w.config, "--no-color"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	root := NewRootCmd()

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"disco", "session", "plan", "scope", "gates", "template", "mode", "config", "version", "completion"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}

	for _, flag := range []string{"config", "log-level", "log-format", "format", "no-color"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "missing flag --%s", flag)
	}
}

func TestDisco_NoTrackerSavesLocally(t *testing.T) {
	w := newWorkspace(t)
	input := w.write(t, "feature.json", featureJSON)

	out, err := w.run("continue\n", "disco", input, "--no-tracker")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Loaded input from file")
	assert.Contains(t, out, "📊 Proposed Ticket Breakdown:")
	assert.Contains(t, out, "💾 Project plan created and saved locally.")

	s := session.NewStore(session.Config{Dir: w.dir}, nil).Load()
	require.True(t, s.HasProgress())
	require.NotNil(t, s.ProjectPlan)
	assert.NotEmpty(t, s.ProjectPlan.Tickets)
}

func TestDisco_DryRunPublishesToMemoryTracker(t *testing.T) {
	w := newWorkspace(t)
	input := w.write(t, "feature.json", featureJSON)

	out, err := w.run("\ncontinue\ny\n", "disco", input, "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, "🎉 Successfully created Linear project and tickets!")

	store := session.NewStore(session.Config{Dir: w.dir}, nil)
	assert.False(t, store.HasProgress())
	archives, err := store.Archives()
	require.NoError(t, err)
	assert.Len(t, archives, 1)
}

func TestDisco_HaltKeepsSession(t *testing.T) {
	w := newWorkspace(t)
	input := w.write(t, "feature.json", featureJSON)

	out, err := w.run("not yet\n", "disco", input, "--no-tracker")
	require.NoError(t, err)
	assert.NotContains(t, out, "📊 Proposed Ticket Breakdown:")

	s := session.NewStore(session.Config{Dir: w.dir}, nil).Load()
	require.True(t, s.HasProgress())
	assert.NotEmpty(t, s.Clarifications)
	assert.Nil(t, s.ProjectPlan)
}

func TestSessionCommands(t *testing.T) {
	w := newWorkspace(t)

	out, err := w.run("", "session", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved session.")

	out, err = w.run("", "session", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(w.dir, session.FileName), strings.TrimSpace(out))

	input := w.write(t, "feature.json", featureJSON)
	_, err = w.run("continue\n", "disco", input, "--no-tracker")
	require.NoError(t, err)

	out, err = w.run("", "session", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Business context: Add account export for admins")
	assert.Contains(t, out, "📋 Clarification Questions:")
	assert.Contains(t, out, "🗺️  Dependency Map:")

	out, err = w.run("", "--format", "json", "session", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"projectPlan"`)

	out, err = w.run("", "session", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Session archived and cleared")

	out, err = w.run("", "session", "archives")
	require.NoError(t, err)
	assert.Contains(t, out, "disco-progress-")
}

func TestPlanGenerate_JSON(t *testing.T) {
	w := newWorkspace(t)
	input := w.write(t, "feature.json", featureJSON)

	out, err := w.run("", "--format", "json", "plan", "generate", input)
	require.NoError(t, err)
	assert.Contains(t, out, `"projectName": "Feature: Add account export"`)
	assert.Contains(t, out, `"tickets"`)
}

func TestPlanExport_WithoutSession(t *testing.T) {
	w := newWorkspace(t)

	_, err := w.run("", "plan", "export", "--out", filepath.Join(w.dir, "plan.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no plan in the saved session")
}

func TestPlanExport_WritesSessionPlan(t *testing.T) {
	w := newWorkspace(t)
	input := w.write(t, "feature.json", featureJSON)
	_, err := w.run("continue\n", "disco", input, "--no-tracker")
	require.NoError(t, err)

	dest := filepath.Join(w.dir, "plan.json")
	out, err := w.run("", "plan", "export", "--out", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Exported")
	assert.FileExists(t, dest)
}

func TestScopeValidate(t *testing.T) {
	w := newWorkspace(t)

	out, err := w.run("", "scope", "validate", "design-engineering", "src/components/Button.tsx")
	require.NoError(t, err)
	assert.Contains(t, out, "src/components/Button.tsx")

	_, err = w.run("", "scope", "validate", "design-engineering", "src/components/Button.tsx", "src/app/api/users/route.ts")
	require.Error(t, err)
	assert.True(t, Reported(err))

	var violation interface{ ScopeViolation() bool }
	require.True(t, stderrors.As(err, &violation))
	assert.True(t, violation.ScopeViolation())

	_, err = w.run("", "scope", "validate", "ops", "a.go")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeScopeUnknown, errors.CodeOf(err))
}

func TestGatesRun(t *testing.T) {
	w := newWorkspace(t)

	out, err := w.run("", "gates", "run", "demo", "pre")
	require.NoError(t, err)
	assert.Contains(t, out, "✅ Passed checks (1):")
	assert.Contains(t, out, "❌ Failed checks (1):")

	out, err = w.run("", "gates", "run", "demo", "post")
	require.Error(t, err)
	assert.True(t, Reported(err))
	assert.Equal(t, errors.ErrCodeGateRequiredFailed, errors.CodeOf(err))
	assert.NotContains(t, out, "never")

	_, err = w.run("", "gates", "run", "demo", "during")
	assert.Error(t, err)
}

func TestTemplateComponent(t *testing.T) {
	w := newWorkspace(t)
	dest := filepath.Join(w.dir, "src", "components", "Button.tsx")

	out, err := w.run("", "template", "component", "Button", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "✅ Generated "+dest+" from component template")

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Button")

	out, err = w.run("", "template", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Available templates:")
	assert.Contains(t, out, "  - component")
}

func TestModeFix(t *testing.T) {
	w := newWorkspace(t)

	out, err := w.run("", "mode", "fix", "button", "styling", "is", "off")
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, err = w.run("", "mode", "design-engineering", "--check", "src/app/api/users/route.ts")
	require.Error(t, err)
	assert.True(t, Reported(err))

	_, err = w.run("", "mode", "ops")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeScopeUnknown, errors.CodeOf(err))
}

func TestConfigInitAndPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".devflow", "config.yaml")

	run := func(args ...string) (string, error) {
		root := NewRootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(io.Discard)
		root.SetArgs(append([]string{"--config", path}, args...))
		err := root.ExecuteContext(context.Background())
		return out.String(), err
	}

	out, err := run("config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.Contains(t, out, "not found")

	out, err = run("config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Wrote default configuration")
	assert.FileExists(t, path)
	assert.DirExists(t, filepath.Join(dir, ".devflow", "templates"))

	_, err = run("config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	_, err = run("config", "init", "--force")
	require.NoError(t, err)

	out, err = run("config", "view")
	require.NoError(t, err)
	assert.Contains(t, out, "quality_gates:")
	assert.Contains(t, out, "transport: command")
}

func TestVersion(t *testing.T) {
	w := newWorkspace(t)

	out, err := w.run("", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "devflow "))

	out, err = w.run("", "--format", "json", "version")
	require.NoError(t, err)
	assert.Contains(t, out, `"version"`)
}

func TestLineReader_FormsModeScansStdin(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	_, err = f.WriteString("continue\n")
	require.NoError(t, err)
	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)
	defer f.Close()

	var out bytes.Buffer
	rt := &runtime{in: f, out: &out}

	reader, closeReader, err := rt.lineReader(false)
	require.NoError(t, err)
	defer closeReader()

	_, ok := reader.(*prompt.ScannerReader)
	require.True(t, ok, "expected a scanner reader, got %T", reader)

	line, err := reader.ReadLine("> ")
	require.NoError(t, err)
	assert.Equal(t, "continue", line)
}
