package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/devflow/internal/errors"
	"github.com/felixgeelhaar/devflow/internal/log"
	"github.com/felixgeelhaar/devflow/internal/tracker"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	for _, name := range []string{"feature", "fix", "design-engineering", "backend"} {
		assert.Contains(t, cfg.Scopes, name)
		assert.Contains(t, cfg.QualityGates, name)
	}
	assert.Equal(t, tracker.TransportCommand, cfg.Tracker.Transport)
	assert.Equal(t, ".", cfg.SessionStore().Dir)
}

func TestLoad_MissingFileGivesDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
session:
  dir: .devflow/sessions
tracker:
  transport: memory
  name: Local
  timeout: 5s
  tools:
    create_issue: linear_create_issue
scopes:
  docs:
    include: ["docs/**"]
    exclude: []
hooks:
  - name: notify
    type: webhook
    events: [plan_published]
    enabled: true
    failure_mode: warn
    config:
      url: http://localhost:9000/hook
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ".devflow/sessions", cfg.SessionStore().Dir)

	tc := cfg.TrackerBackend()
	assert.Equal(t, tracker.TransportMemory, tc.Transport)
	assert.Equal(t, "Local", tc.Name)
	assert.Equal(t, 5*time.Second, tc.Timeout)
	assert.Equal(t, "linear_create_issue", tc.Tools.CreateIssue)
	assert.Equal(t, 2.0, tc.RatePerSecond)

	assert.Contains(t, cfg.Scopes, "docs")
	assert.Contains(t, cfg.Scopes, "feature")

	require.Len(t, cfg.HookRegistry().Hooks, 1)
	assert.Equal(t, "http://localhost:9000/hook", cfg.Hooks[0].Config["url"])

	assert.Equal(t, log.LevelDebug, cfg.Logger("", "").Level)
	assert.Equal(t, log.LevelWarn, cfg.Logger("warn", "").Level)
	assert.Equal(t, log.FormatJSON, cfg.Logger("", "json").Format)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{"syntax", "tracker: [unclosed"},
		{"unknown key", "trackr:\n  name: x\n"},
		{"bad transport", "tracker:\n  transport: smoke-signal\n"},
		{"negative rate", "tracker:\n  rate_per_second: -1\n"},
		{"bad sample rate", "telemetry:\n  sample_rate: 2\n"},
		{"bad hook mode", "hooks:\n  - name: h\n    type: script\n    failure_mode: explode\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yml), 0o644))

			_, err := Load(path)
			assert.Equal(t, errors.ErrCodeConfigParse, errors.CodeOf(err))
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Tracker.Transport = tracker.TransportHTTP
	cfg.Tracker.Endpoint = "https://mcp.example.com/mcp"

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.TrackerBackend(), loaded.TrackerBackend())
	assert.Equal(t, cfg.QualityGates, loaded.QualityGates)
}

func TestTelemetryProvider(t *testing.T) {
	cfg := Default()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Endpoint = "localhost:4318"

	tc := cfg.TelemetryProvider()
	assert.True(t, tc.Enabled)
	assert.Equal(t, "devflow", tc.ServiceName)
	assert.Equal(t, "localhost:4318", tc.Endpoint)
}
