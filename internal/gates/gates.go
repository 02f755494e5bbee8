// Package gates runs the pre and post quality checks configured for a mode.
package gates

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/felixgeelhaar/devflow/internal/errors"
	"github.com/felixgeelhaar/devflow/internal/log"
)

// Check is one quality gate command
type Check struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Command     string `yaml:"command" json:"command"`
	Required    bool   `yaml:"required" json:"required"`
}

// Set is the gate configuration for one mode
type Set struct {
	PreChecks  []Check `yaml:"pre_checks" json:"preChecks"`
	PostChecks []Check `yaml:"post_checks" json:"postChecks"`
}

// Phase selects pre or post checks
type Phase string

const (
	PhasePre  Phase = "pre"
	PhasePost Phase = "post"
)

// ParsePhase accepts "pre" or "post"
func ParsePhase(s string) (Phase, error) {
	switch Phase(strings.ToLower(s)) {
	case PhasePre:
		return PhasePre, nil
	case PhasePost:
		return PhasePost, nil
	}
	return "", errors.New(errors.ErrCodeGateUnknown, fmt.Sprintf("unknown check phase %q", s)).
		WithSuggestion("Use pre or post")
}

// Result is the outcome of one check
type Result struct {
	Name     string        `json:"name"`
	Success  bool          `json:"success"`
	Output   string        `json:"output,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Config locates the working directory and shell checks run in
type Config struct {
	Dir   string
	Shell string
}

// DefaultConfig runs checks through sh in the current directory
func DefaultConfig() Config {
	return Config{Dir: ".", Shell: "sh"}
}

// Lookup returns the named gate set
func Lookup(sets map[string]Set, name string) (Set, error) {
	s, ok := sets[name]
	if !ok {
		names := make([]string, 0, len(sets))
		for n := range sets {
			names = append(names, n)
		}
		sort.Strings(names)
		return Set{}, errors.NewGateUnknownError(name, names)
	}
	return s, nil
}

// Checker runs a gate set
type Checker struct {
	set    Set
	cfg    Config
	out    io.Writer
	logger *log.Logger
}

// NewChecker creates a Checker. Progress lines go to out.
func NewChecker(set Set, cfg Config, out io.Writer, logger *log.Logger) *Checker {
	if cfg.Shell == "" {
		cfg.Shell = "sh"
	}
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Checker{set: set, cfg: cfg, out: out, logger: logger}
}

// RunPre runs the pre-checks
func (c *Checker) RunPre(ctx context.Context) ([]Result, error) {
	fmt.Fprintln(c.out, "🔍 Running pre-checks...")
	return c.run(ctx, PhasePre, c.set.PreChecks)
}

// RunPost runs the post-checks
func (c *Checker) RunPost(ctx context.Context) ([]Result, error) {
	fmt.Fprintln(c.out, "🔍 Running post-checks...")
	return c.run(ctx, PhasePost, c.set.PostChecks)
}

// Run dispatches on phase
func (c *Checker) Run(ctx context.Context, phase Phase) ([]Result, error) {
	if phase == PhasePost {
		return c.RunPost(ctx)
	}
	return c.RunPre(ctx)
}

// run executes checks in order. A failing required check stops the run and
// returns the results so far with GATE-001.
func (c *Checker) run(ctx context.Context, phase Phase, checks []Check) ([]Result, error) {
	results := make([]Result, 0, len(checks))
	for _, check := range checks {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res := c.runCheck(ctx, check)
		results = append(results, res)

		if check.Required && !res.Success {
			return results, errors.New(errors.ErrCodeGateRequiredFailed,
				fmt.Sprintf("required %s-check failed: %s", phase, check.Name)).
				WithSuggestion(fmt.Sprintf("Run %q locally and fix the reported problems", check.Command))
		}
	}
	return results, nil
}

func (c *Checker) runCheck(ctx context.Context, check Check) Result {
	fmt.Fprintf(c.out, "  → %s: %s\n", check.Name, check.Description)

	cmd := exec.CommandContext(ctx, c.cfg.Shell, "-c", check.Command)
	cmd.Dir = c.cfg.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{Name: check.Name, Output: strings.TrimSpace(stdout.String()), Duration: time.Since(start)}

	if err != nil {
		res.Error = err.Error()
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			res.Error = fmt.Sprintf("%s: %s", err, msg)
		}
		c.logger.Debug("check failed", "check", check.Name, "command", check.Command, "error", res.Error)
		fmt.Fprintf(c.out, "    %s %s failed\n", color.RedString("❌"), check.Name)
		return res
	}

	res.Success = true
	fmt.Fprintf(c.out, "    %s %s passed\n", color.GreenString("✅"), check.Name)
	return res
}

// Failed returns the failed results
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Success {
			out = append(out, r)
		}
	}
	return out
}

// Report writes the passed and failed sections
func Report(w io.Writer, results []Result) {
	var passed, failed []Result
	for _, r := range results {
		if r.Success {
			passed = append(passed, r)
		} else {
			failed = append(failed, r)
		}
	}

	if len(passed) > 0 {
		fmt.Fprintln(w, color.GreenString("✅ Passed checks (%d):", len(passed)))
		for _, r := range passed {
			fmt.Fprintf(w, "  - %s\n", r.Name)
		}
	}
	if len(failed) > 0 {
		if len(passed) > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, color.RedString("❌ Failed checks (%d):", len(failed)))
		for _, r := range failed {
			fmt.Fprintf(w, "  - %s: %s\n", r.Name, r.Error)
		}
	}
}
