package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"sort"
	"strings"
)

type base struct {
	name   string
	events []EventType
	mode   FailureMode
}

func newBase(cfg HookConfig) base {
	return base{name: cfg.Name, events: cfg.Events, mode: cfg.FailureMode}
}

func (b base) Name() string             { return b.name }
func (b base) EventTypes() []EventType  { return b.events }
func (b base) FailureMode() FailureMode { return b.mode }

// ScriptHook runs "shell script args..." with the event in HOOK_* variables
type ScriptHook struct {
	base
	script string
	args   []string
	shell  string
}

// NewScriptHook reads config keys script (required), args and shell
func NewScriptHook(cfg HookConfig) (Hook, error) {
	script, _ := cfg.Config["script"].(string)
	if script == "" {
		return nil, fmt.Errorf("script path required")
	}

	h := &ScriptHook{base: newBase(cfg), script: script, shell: "/bin/sh"}
	if list, ok := cfg.Config["args"].([]any); ok {
		for _, a := range list {
			if s, ok := a.(string); ok {
				h.args = append(h.args, s)
			}
		}
	}
	if shell, ok := cfg.Config["shell"].(string); ok && shell != "" {
		h.shell = shell
	}
	return h, nil
}

// Execute implements Hook
func (h *ScriptHook) Execute(ctx context.Context, event *Event) error {
	cmd := exec.CommandContext(ctx, h.shell, append([]string{h.script}, h.args...)...)
	cmd.Env = append(os.Environ(), eventEnv(event)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("script failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// eventEnv flattens scalar event data into HOOK_<KEY> variables, sorted by key
func eventEnv(event *Event) []string {
	env := []string{
		"HOOK_EVENT_TYPE=" + string(event.Type),
		"HOOK_RUN_ID=" + event.RunID,
	}

	keys := make([]string, 0, len(event.Data))
	for k := range event.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := event.Data[k].(type) {
		case string, int, int64, float64, bool:
			env = append(env, fmt.Sprintf("HOOK_%s=%v", envKey(k), v))
		}
	}
	return env
}

func envKey(k string) string {
	var b strings.Builder
	for i, r := range k {
		switch {
		case r >= 'A' && r <= 'Z' && i > 0:
			b.WriteByte('_')
			b.WriteRune(r)
		case r == '-' || r == '.':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return strings.ToUpper(b.String())
}

// WebhookHook POSTs the event as JSON
type WebhookHook struct {
	base
	url     string
	headers map[string]string
	client  *http.Client
}

// NewWebhookHook reads config keys url (required) and headers
func NewWebhookHook(cfg HookConfig) (Hook, error) {
	url, _ := cfg.Config["url"].(string)
	if url == "" {
		return nil, fmt.Errorf("webhook URL required")
	}

	h := &WebhookHook{
		base:    newBase(cfg),
		url:     url,
		headers: map[string]string{},
		client:  &http.Client{Timeout: cfg.Timeout},
	}
	if m, ok := cfg.Config["headers"].(map[string]any); ok {
		for k, v := range m {
			if s, ok := v.(string); ok {
				h.headers[k] = s
			}
		}
	}
	return h, nil
}

// Execute implements Hook
func (h *WebhookHook) Execute(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return post(ctx, h.client, h.url, payload, h.headers)
}

// SlackHook posts a one-line summary of the event to a Slack webhook
type SlackHook struct {
	base
	url      string
	channel  string
	username string
	client   *http.Client
}

// NewSlackHook reads config keys webhook_url (required), channel and username
func NewSlackHook(cfg HookConfig) (Hook, error) {
	url, _ := cfg.Config["webhook_url"].(string)
	if url == "" {
		return nil, fmt.Errorf("slack webhook_url required")
	}

	h := &SlackHook{
		base:     newBase(cfg),
		url:      url,
		username: "devflow",
		client:   &http.Client{Timeout: cfg.Timeout},
	}
	if c, ok := cfg.Config["channel"].(string); ok {
		h.channel = c
	}
	if u, ok := cfg.Config["username"].(string); ok && u != "" {
		h.username = u
	}
	return h, nil
}

// Execute implements Hook
func (h *SlackHook) Execute(ctx context.Context, event *Event) error {
	msg := map[string]any{"text": SlackText(event), "username": h.username}
	if h.channel != "" {
		msg["channel"] = h.channel
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal slack payload: %w", err)
	}
	return post(ctx, h.client, h.url, payload, nil)
}

// SlackText formats an event for chat
func SlackText(event *Event) string {
	project := event.GetString("project")
	switch event.Type {
	case EventDiscoveryStarted:
		return fmt.Sprintf("🚀 Discovery started (%s)", event.RunID)
	case EventInputCollected:
		return fmt.Sprintf("📝 Feature input collected: %s", event.GetString("businessContext"))
	case EventPlanCreated:
		return fmt.Sprintf("📋 Plan created: %s, %d tickets", project, event.GetInt("tickets"))
	case EventPlanPublished:
		return fmt.Sprintf("✅ Plan published to %s: %s", event.GetString("tracker"), project)
	case EventDiscoveryHalted:
		return "⏸️ Discovery halted by operator"
	case EventDiscoveryFailed:
		return fmt.Sprintf("❌ Discovery failed: %s", event.GetString("error"))
	default:
		return fmt.Sprintf("Event %s (%s)", event.Type, event.RunID)
	}
}

func post(ctx context.Context, client *http.Client, url string, payload []byte, headers map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
