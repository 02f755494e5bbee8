package hooks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type stubHook struct {
	name   string
	events []EventType
	mode   FailureMode
	err    error
	delay  time.Duration
	calls  atomic.Int32
}

func (h *stubHook) Name() string             { return h.name }
func (h *stubHook) EventTypes() []EventType  { return h.events }
func (h *stubHook) FailureMode() FailureMode { return h.mode }
func (h *stubHook) Execute(ctx context.Context, _ *Event) error {
	h.calls.Add(1)
	if h.delay > 0 {
		select {
		case <-time.After(h.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return h.err
}

func TestHookConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     HookConfig
		wantErr bool
	}{
		{"valid", HookConfig{Name: "n", Type: "script", Events: []EventType{EventPlanCreated}}, false},
		{"missing name", HookConfig{Type: "script"}, true},
		{"missing type", HookConfig{Name: "n"}, true},
		{"bad mode", HookConfig{Name: "n", Type: "script", FailureMode: "explode"}, true},
		{"bad event", HookConfig{Name: "n", Type: "script", Events: []EventType{"on_step_before"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExecutorBoundsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	hooks := make([]Hook, 6)
	for i := range hooks {
		hooks[i] = &funcHook{name: "h", fn: func(ctx context.Context) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return nil
		}}
	}

	results := NewExecutor(2, time.Second).ExecuteAll(context.Background(), hooks, NewEvent(EventPlanCreated, "r", nil))
	if len(results) != 6 {
		t.Fatalf("got %d results, want 6", len(results))
	}
	if peak.Load() > 2 {
		t.Errorf("peak concurrency %d exceeds 2", peak.Load())
	}
}

type funcHook struct {
	name string
	fn   func(ctx context.Context) error
}

func (h *funcHook) Name() string             { return h.name }
func (h *funcHook) EventTypes() []EventType  { return []EventType{EventPlanCreated} }
func (h *funcHook) FailureMode() FailureMode { return "" }
func (h *funcHook) Execute(ctx context.Context, _ *Event) error {
	return h.fn(ctx)
}

func TestExecutorTimeout(t *testing.T) {
	slow := &stubHook{name: "slow", delay: time.Second}
	res := NewExecutor(1, 10*time.Millisecond).Execute(context.Background(), slow, NewEvent(EventPlanCreated, "r", nil))

	if res.Success {
		t.Fatal("expected timeout failure")
	}
	if res.FailureMode != FailureWarn {
		t.Errorf("FailureMode = %q, want warn default", res.FailureMode)
	}
}

func TestRegistryFire(t *testing.T) {
	ok := &stubHook{name: "ok", events: []EventType{EventPlanCreated}}
	ignored := &stubHook{name: "ignored", events: []EventType{EventPlanCreated}, mode: FailureIgnore, err: errors.New("x")}
	warned := &stubHook{name: "warned", events: []EventType{EventPlanCreated}, mode: FailureWarn, err: errors.New("x")}

	r := NewRegistry(DefaultConfig(), nil)
	for _, h := range []Hook{ok, ignored, warned} {
		if err := r.Register(h); err != nil {
			t.Fatal(err)
		}
	}

	if err := r.Fire(context.Background(), NewEvent(EventPlanCreated, "r", nil)); err != nil {
		t.Errorf("Fire() = %v, want nil for ignore/warn failures", err)
	}
	if ok.calls.Load() != 1 || ignored.calls.Load() != 1 || warned.calls.Load() != 1 {
		t.Error("every hook should run once")
	}

	if err := r.Fire(context.Background(), NewEvent(EventPlanPublished, "r", nil)); err != nil {
		t.Errorf("Fire() with no hooks = %v", err)
	}

	fatal := &stubHook{name: "fatal", events: []EventType{EventDiscoveryFailed}, mode: FailureFail, err: errors.New("boom")}
	_ = r.Register(fatal)
	err := r.Fire(context.Background(), NewEvent(EventDiscoveryFailed, "r", nil))
	if err == nil || !strings.Contains(err.Error(), "fatal") {
		t.Errorf("Fire() = %v, want fatal hook error", err)
	}
}

func TestRegistryFireSkipsUnmatchedEvents(t *testing.T) {
	created := &stubHook{name: "created", events: []EventType{EventPlanCreated}, mode: FailureFail, err: errors.New("boom")}

	r := NewRegistry(DefaultConfig(), nil)
	if err := r.Register(created); err != nil {
		t.Fatal(err)
	}
	if r.HasHooksFor(EventPlanPublished) {
		t.Fatal("HasHooksFor(plan_published) = true, want false")
	}

	if err := r.Fire(context.Background(), NewEvent(EventPlanPublished, "r", nil)); err != nil {
		t.Errorf("Fire() = %v, want nil", err)
	}
	if got := created.calls.Load(); got != 0 {
		t.Errorf("created hook ran %d times, want 0", got)
	}
}

func TestNilRegistryFire(t *testing.T) {
	var r *Registry
	if err := r.Fire(context.Background(), NewEvent(EventPlanCreated, "r", nil)); err != nil {
		t.Errorf("nil registry Fire() = %v", err)
	}
}

func TestLoad(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hooks = []HookConfig{
		{Name: "notify", Type: "webhook", Enabled: true, Events: []EventType{EventPlanPublished}, Config: map[string]any{"url": "http://localhost:1"}},
		{Name: "off", Type: "script", Enabled: false},
		{Name: "chat", Type: "slack", Enabled: true, Events: []EventType{EventDiscoveryFailed}, Config: map[string]any{"webhook_url": "http://localhost:1"}},
	}

	r, err := Load(cfg, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := strings.Join(r.Names(), ","); got != "chat,notify" {
		t.Errorf("Names() = %s", got)
	}
	if !r.HasHooksFor(EventPlanPublished) || r.HasHooksFor(EventPlanCreated) {
		t.Error("hooks registered for the wrong events")
	}

	cfg.Hooks = []HookConfig{{Name: "x", Type: "carrier-pigeon", Enabled: true}}
	if _, err := Load(cfg, nil); err == nil {
		t.Error("expected unknown type error")
	}

	cfg.Hooks = []HookConfig{{Name: "x", Type: "script", Enabled: true}}
	if _, err := Load(cfg, nil); err == nil {
		t.Error("expected missing script error")
	}
}

func TestScriptHookReceivesEventEnv(t *testing.T) {
	dir := t.TempDir()
	outFile := filepath.Join(dir, "env.txt")
	script := filepath.Join(dir, "hook.sh")
	body := "#!/bin/sh\necho \"$HOOK_EVENT_TYPE $HOOK_RUN_ID $HOOK_PROJECT $HOOK_TICKETS $1\" > \"" + outFile + "\"\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}

	h, err := NewScriptHook(HookConfig{Name: "s", Config: map[string]any{"script": script, "args": []any{"extra"}}})
	if err != nil {
		t.Fatal(err)
	}

	event := NewEvent(EventPlanCreated, "run-1", map[string]any{"project": "Feature: x", "tickets": 4})
	if err := h.Execute(context.Background(), event); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	got, _ := os.ReadFile(outFile)
	if want := "plan_created run-1 Feature: x 4 extra\n"; string(got) != want {
		t.Errorf("script saw %q, want %q", got, want)
	}
}

func TestScriptHookFailure(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fail.sh")
	_ = os.WriteFile(script, []byte("#!/bin/sh\necho nope >&2\nexit 3\n"), 0o755)

	h, _ := NewScriptHook(HookConfig{Name: "s", Config: map[string]any{"script": script}})
	err := h.Execute(context.Background(), NewEvent(EventPlanCreated, "r", nil))
	if err == nil || !strings.Contains(err.Error(), "nope") {
		t.Errorf("Execute() = %v, want stderr in error", err)
	}
}

func TestWebhookHook(t *testing.T) {
	var got Event
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	h, err := NewWebhookHook(HookConfig{
		Name:    "w",
		Timeout: time.Second,
		Config:  map[string]any{"url": srv.URL, "headers": map[string]any{"Authorization": "Bearer t"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := h.Execute(context.Background(), NewEvent(EventPlanPublished, "run-9", map[string]any{"tracker": "Linear"})); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got.Type != EventPlanPublished || got.RunID != "run-9" || got.Data["tracker"] != "Linear" {
		t.Errorf("unexpected payload %+v", got)
	}
	if auth != "Bearer t" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestWebhookHookStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	h, _ := NewWebhookHook(HookConfig{Name: "w", Config: map[string]any{"url": srv.URL}})
	if err := h.Execute(context.Background(), NewEvent(EventPlanCreated, "r", nil)); err == nil {
		t.Error("expected error for 502")
	}
}

func TestSlackText(t *testing.T) {
	e := NewEvent(EventPlanCreated, "r", map[string]any{"project": "Feature: x", "tickets": 3})
	if got := SlackText(e); got != "📋 Plan created: Feature: x, 3 tickets" {
		t.Errorf("SlackText() = %q", got)
	}
}

func TestEnvKey(t *testing.T) {
	for in, want := range map[string]string{
		"project":         "PROJECT",
		"businessContext": "BUSINESS_CONTEXT",
		"input-file":      "INPUT_FILE",
	} {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}
