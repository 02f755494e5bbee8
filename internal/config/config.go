// Package config loads .devflow/config.yaml and slices it into the
// per-component configs the rest of devflow is built from.
package config

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/devflow/internal/gates"
	"github.com/felixgeelhaar/devflow/internal/hooks"
	"github.com/felixgeelhaar/devflow/internal/log"
	"github.com/felixgeelhaar/devflow/internal/scope"
	"github.com/felixgeelhaar/devflow/internal/session"
	"github.com/felixgeelhaar/devflow/internal/telemetry"
	"github.com/felixgeelhaar/devflow/internal/template"
	"github.com/felixgeelhaar/devflow/internal/tracker"
	"github.com/felixgeelhaar/devflow/internal/version"
)

// Config is the whole configuration file
type Config struct {
	Session      SessionConfig           `yaml:"session" json:"session"`
	Tracker      TrackerConfig           `yaml:"tracker" json:"tracker"`
	Scopes       map[string]scope.Config `yaml:"scopes" json:"scopes"`
	QualityGates map[string]gates.Set    `yaml:"quality_gates" json:"qualityGates"`
	Templates    TemplatesConfig         `yaml:"templates" json:"templates"`
	Hooks        []hooks.HookConfig      `yaml:"hooks,omitempty" json:"hooks,omitempty"`
	Logging      LoggingConfig           `yaml:"logging" json:"logging"`
	Telemetry    TelemetryConfig         `yaml:"telemetry" json:"telemetry"`
}

// SessionConfig locates the session file
type SessionConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

// TrackerConfig selects the project tracker backend
type TrackerConfig struct {
	Enabled       bool              `yaml:"enabled" json:"enabled"`
	Name          string            `yaml:"name" json:"name"`
	Transport     string            `yaml:"transport" json:"transport"`
	Command       string            `yaml:"command,omitempty" json:"command,omitempty"`
	Args          []string          `yaml:"args,omitempty" json:"args,omitempty"`
	Endpoint      string            `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	Tools         tracker.ToolNames `yaml:"tools" json:"tools"`
	RatePerSecond float64           `yaml:"rate_per_second" json:"ratePerSecond"`
	Burst         int               `yaml:"burst" json:"burst"`
	Timeout       time.Duration     `yaml:"timeout" json:"timeout"`
}

// TemplatesConfig points at template overrides
type TemplatesConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

// LoggingConfig sets the default log level and format
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// TelemetryConfig controls OpenTelemetry export
type TelemetryConfig struct {
	Enabled    bool    `yaml:"enabled" json:"enabled"`
	Endpoint   string  `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	SampleRate float64 `yaml:"sample_rate" json:"sampleRate"`
}

// Default returns the built-in configuration
func Default() *Config {
	tc := tracker.DefaultConfig()
	return &Config{
		Session: SessionConfig{Dir: session.DefaultConfig().Dir},
		Tracker: TrackerConfig{
			Enabled:       tc.Enabled,
			Name:          tc.Name,
			Transport:     tc.Transport,
			Command:       tc.Command,
			Args:          tc.Args,
			Tools:         tc.Tools,
			RatePerSecond: tc.RatePerSecond,
			Burst:         tc.Burst,
			Timeout:       tc.Timeout,
		},
		Scopes:       DefaultScopes(),
		QualityGates: DefaultQualityGates(),
		Templates:    TemplatesConfig{Dir: ".devflow/templates"},
		Logging:      LoggingConfig{Level: "info", Format: "text"},
		Telemetry:    TelemetryConfig{SampleRate: 1.0},
	}
}

// Validate checks values a typo would silently break
func (c *Config) Validate() error {
	switch c.Tracker.Transport {
	case tracker.TransportCommand, tracker.TransportHTTP, tracker.TransportMemory:
	default:
		return fmt.Errorf("tracker.transport must be one of command, http, memory (got %q)", c.Tracker.Transport)
	}
	if c.Tracker.RatePerSecond < 0 {
		return fmt.Errorf("tracker.rate_per_second must be non-negative")
	}
	if c.Tracker.Burst < 0 {
		return fmt.Errorf("tracker.burst must be non-negative")
	}
	if c.Tracker.Timeout < 0 {
		return fmt.Errorf("tracker.timeout must be non-negative")
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("telemetry.sample_rate must be between 0 and 1")
	}
	for _, h := range c.Hooks {
		if err := h.Validate(); err != nil {
			return fmt.Errorf("hooks: %w", err)
		}
	}
	for name, s := range c.Scopes {
		if _, err := scope.New(s); err != nil {
			return fmt.Errorf("scopes.%s: %w", name, err)
		}
	}
	return nil
}

// SessionStore returns the session store config
func (c *Config) SessionStore() session.Config {
	return session.Config{Dir: c.Session.Dir}
}

// TrackerBackend returns the tracker config
func (c *Config) TrackerBackend() tracker.Config {
	return tracker.Config{
		Enabled:       c.Tracker.Enabled,
		Name:          c.Tracker.Name,
		Transport:     c.Tracker.Transport,
		Command:       c.Tracker.Command,
		Args:          c.Tracker.Args,
		Endpoint:      c.Tracker.Endpoint,
		Tools:         c.Tracker.Tools,
		RatePerSecond: c.Tracker.RatePerSecond,
		Burst:         c.Tracker.Burst,
		Timeout:       c.Tracker.Timeout,
	}
}

// TemplateGenerator returns the template config
func (c *Config) TemplateGenerator() template.Config {
	return template.Config{Dir: c.Templates.Dir}
}

// HookRegistry returns the hooks config
func (c *Config) HookRegistry() hooks.Config {
	hc := hooks.DefaultConfig()
	hc.Hooks = c.Hooks
	return hc
}

// Gates returns the gate runner config
func (c *Config) Gates() gates.Config {
	return gates.DefaultConfig()
}

// TelemetryProvider returns the telemetry config
func (c *Config) TelemetryProvider() telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.ServiceVersion = version.Version
	tc.Enabled = c.Telemetry.Enabled
	tc.Endpoint = c.Telemetry.Endpoint
	tc.SampleRate = c.Telemetry.SampleRate
	return tc
}

// Logger returns the logger config. Empty flag values fall back to the file.
func (c *Config) Logger(levelFlag, formatFlag string) log.Config {
	lc := log.DefaultConfig()
	lc.ServiceVersion = version.Version

	level, format := c.Logging.Level, c.Logging.Format
	if levelFlag != "" {
		level = levelFlag
	}
	if formatFlag != "" {
		format = formatFlag
	}
	lc.Level = log.ParseLevel(level)
	lc.Format = log.ParseFormat(format)
	return lc
}
