// Package hooks runs user-configured scripts and webhooks on discovery
// lifecycle events.
package hooks

import (
	"context"
	"fmt"
	"time"
)

// EventType names a discovery lifecycle event
type EventType string

const (
	EventDiscoveryStarted EventType = "discovery_started"
	EventInputCollected   EventType = "input_collected"
	EventPlanCreated      EventType = "plan_created"
	EventPlanPublished    EventType = "plan_published"
	EventDiscoveryHalted  EventType = "discovery_halted"
	EventDiscoveryFailed  EventType = "discovery_failed"
)

// AllEvents lists every event in lifecycle order
var AllEvents = []EventType{
	EventDiscoveryStarted,
	EventInputCollected,
	EventPlanCreated,
	EventPlanPublished,
	EventDiscoveryHalted,
	EventDiscoveryFailed,
}

// IsValidEvent reports whether e is a known event
func IsValidEvent(e EventType) bool {
	for _, known := range AllEvents {
		if e == known {
			return true
		}
	}
	return false
}

// Event is passed to every hook registered for its type
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	RunID     string         `json:"runId"`
	Data      map[string]any `json:"data"`
}

// NewEvent creates an event stamped with the current time
func NewEvent(eventType EventType, runID string, data map[string]any) *Event {
	if data == nil {
		data = map[string]any{}
	}
	return &Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		Data:      data,
	}
}

// GetString gets a string value from event data
func (e *Event) GetString(key string) string {
	if s, ok := e.Data[key].(string); ok {
		return s
	}
	return ""
}

// GetInt gets an int value from event data
func (e *Event) GetInt(key string) int {
	if i, ok := e.Data[key].(int); ok {
		return i
	}
	return 0
}

// Hook reacts to events
type Hook interface {
	Name() string
	EventTypes() []EventType
	FailureMode() FailureMode
	Execute(ctx context.Context, event *Event) error
}

// FailureMode decides how a failed hook is reported
type FailureMode string

const (
	FailureIgnore FailureMode = "ignore"
	FailureWarn   FailureMode = "warn"
	FailureFail   FailureMode = "fail"
)

// IsValid reports whether m is a known failure mode. Empty means warn.
func (m FailureMode) IsValid() bool {
	switch m {
	case "", FailureIgnore, FailureWarn, FailureFail:
		return true
	}
	return false
}

// HookConfig is one entry of the hooks list in the config file
type HookConfig struct {
	Name        string         `yaml:"name" json:"name"`
	Type        string         `yaml:"type" json:"type"`
	Events      []EventType    `yaml:"events" json:"events"`
	Enabled     bool           `yaml:"enabled" json:"enabled"`
	FailureMode FailureMode    `yaml:"failure_mode,omitempty" json:"failureMode,omitempty"`
	Timeout     time.Duration  `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Config      map[string]any `yaml:"config,omitempty" json:"config,omitempty"`
}

// Validate checks the entry without building the hook
func (c HookConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("hook name is required")
	}
	if c.Type == "" {
		return fmt.Errorf("hook %s: type is required", c.Name)
	}
	if !c.FailureMode.IsValid() {
		return fmt.Errorf("hook %s: invalid failure mode %q (use ignore, warn or fail)", c.Name, c.FailureMode)
	}
	for _, e := range c.Events {
		if !IsValidEvent(e) {
			return fmt.Errorf("hook %s: unknown event %q", c.Name, e)
		}
	}
	return nil
}

// Config configures the registry
type Config struct {
	Hooks          []HookConfig
	MaxConcurrency int64
	Timeout        time.Duration
}

// DefaultTimeout bounds a single hook execution
const DefaultTimeout = 30 * time.Second

// DefaultConfig has no hooks
func DefaultConfig() Config {
	return Config{MaxConcurrency: 4, Timeout: DefaultTimeout}
}

// ExecutionResult records one hook run
type ExecutionResult struct {
	HookName    string        `json:"hookName"`
	EventType   EventType     `json:"eventType"`
	FailureMode FailureMode   `json:"failureMode"`
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// Factory builds a hook from its config entry
type Factory func(cfg HookConfig) (Hook, error)
