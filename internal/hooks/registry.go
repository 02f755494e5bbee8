package hooks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/felixgeelhaar/devflow/internal/log"
)

// Registry maps events to hooks and fires them
type Registry struct {
	mu        sync.RWMutex
	hooks     map[EventType][]Hook
	factories map[string]Factory
	executor  *Executor
	logger    *log.Logger
}

// NewRegistry creates an empty registry with the built-in factories
func NewRegistry(cfg Config, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Discard()
	}
	r := &Registry{
		hooks:     make(map[EventType][]Hook),
		factories: make(map[string]Factory),
		executor:  NewExecutor(cfg.MaxConcurrency, cfg.Timeout),
		logger:    logger.WithGroup("hooks"),
	}
	r.RegisterFactory("script", NewScriptHook)
	r.RegisterFactory("webhook", NewWebhookHook)
	r.RegisterFactory("slack", NewSlackHook)
	return r
}

// Load builds a registry and registers every enabled entry of cfg.Hooks
func Load(cfg Config, logger *log.Logger) (*Registry, error) {
	r := NewRegistry(cfg, logger)
	for _, hc := range cfg.Hooks {
		if err := r.RegisterFromConfig(hc); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// RegisterFactory adds or replaces the factory for a hook type
func (r *Registry) RegisterFactory(hookType string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[hookType] = f
}

// Register adds h for each of its event types
func (r *Registry) Register(h Hook) error {
	if h == nil {
		return fmt.Errorf("hook cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range h.EventTypes() {
		r.hooks[e] = append(r.hooks[e], h)
	}
	return nil
}

// RegisterFromConfig builds a hook from its config entry. Disabled entries
// are skipped.
func (r *Registry) RegisterFromConfig(cfg HookConfig) error {
	if !cfg.Enabled {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.RLock()
	factory, ok := r.factories[cfg.Type]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown hook type: %s", cfg.Type)
	}

	h, err := factory(cfg)
	if err != nil {
		return fmt.Errorf("failed to create hook %s: %w", cfg.Name, err)
	}
	return r.Register(h)
}

// HasHooksFor reports whether any hook listens for e
func (r *Registry) HasHooksFor(e EventType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks[e]) > 0
}

// Names returns the sorted unique names of registered hooks
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, hs := range r.hooks {
		for _, h := range hs {
			seen[h.Name()] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Trigger runs all hooks for the event and returns their results
func (r *Registry) Trigger(ctx context.Context, event *Event) []ExecutionResult {
	r.mu.RLock()
	hs := append([]Hook(nil), r.hooks[event.Type]...)
	r.mu.RUnlock()

	return r.executor.ExecuteAll(ctx, hs, event)
}

// Fire triggers the event and logs failures by failure mode. It returns an
// error when a hook in fail mode failed.
func (r *Registry) Fire(ctx context.Context, event *Event) error {
	if r == nil || !r.HasHooksFor(event.Type) {
		return nil
	}
	return r.handle(r.Trigger(ctx, event))
}

func (r *Registry) handle(results []ExecutionResult) error {
	var firstFatal error
	for _, res := range results {
		if res.Success {
			r.logger.Debug("hook ran", "hook", res.HookName, "event", res.EventType, "duration", res.Duration)
			continue
		}

		args := []any{"hook", res.HookName, "event", res.EventType, "error", res.Error}
		switch res.FailureMode {
		case FailureIgnore:
			r.logger.Debug("hook failed", args...)
		case FailureFail:
			r.logger.Error("hook failed", args...)
			if firstFatal == nil {
				firstFatal = fmt.Errorf("hook %s failed: %s", res.HookName, res.Error)
			}
		default:
			r.logger.Warn("hook failed", args...)
		}
	}
	return firstFatal
}
