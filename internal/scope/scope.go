// Package scope checks changed files against a scope's include and exclude
// globs.
package scope

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/felixgeelhaar/devflow/internal/errors"
)

// Rule lists the issue keywords that select a scope
type Rule struct {
	Triggers []string `yaml:"triggers" json:"triggers"`
}

// Scoping rule names, checked in this order
const (
	RuleFrontendOnly = "frontend-only"
	RuleBackendOnly  = "backend-only"
	RuleFullStack    = "full-stack"
)

// Config is one named scope
type Config struct {
	Include             []string        `yaml:"include" json:"include"`
	Exclude             []string        `yaml:"exclude" json:"exclude"`
	AllowedDependencies []string        `yaml:"allowed_dependencies,omitempty" json:"allowedDependencies,omitempty"`
	ScopingRules        map[string]Rule `yaml:"scoping_rules,omitempty" json:"scopingRules,omitempty"`
}

// Result is the verdict for one file
type Result struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// Blocked is a file outside the scope
type Blocked struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// Results groups the verdicts for a change set
type Results struct {
	Allowed  []string  `json:"allowed"`
	Blocked  []Blocked `json:"blocked"`
	Warnings []string  `json:"warnings"`
}

// HasBlocked reports whether any file was rejected
func (r Results) HasBlocked() bool { return len(r.Blocked) > 0 }

// Validator matches paths against a compiled scope
type Validator struct {
	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

// New compiles the scope's patterns
func New(cfg Config) (*Validator, error) {
	inc, err := compileAll(cfg.Include)
	if err != nil {
		return nil, err
	}
	exc, err := compileAll(cfg.Exclude)
	if err != nil {
		return nil, err
	}
	return &Validator{include: inc, exclude: exc}, nil
}

// Lookup returns the named scope from scopes
func Lookup(scopes map[string]Config, name string) (Config, error) {
	cfg, ok := scopes[name]
	if !ok {
		return Config{}, errors.NewScopeUnknownError(name, Names(scopes))
	}
	return cfg, nil
}

// Names returns the sorted scope names
func Names(scopes map[string]Config) []string {
	names := make([]string, 0, len(scopes))
	for n := range scopes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// GlobToRegexp converts a scope glob: "**" spans directories, "*" stays
// within one path segment, everything else is literal.
func GlobToRegexp(pattern string) string {
	var b strings.Builder
	b.WriteByte('^')
	for i := 0; i < len(pattern); i++ {
		switch {
		case strings.HasPrefix(pattern[i:], "**"):
			b.WriteString(".*")
			i++
		case pattern[i] == '*':
			b.WriteString("[^/]*")
		default:
			b.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
		}
	}
	b.WriteByte('$')
	return b.String()
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(GlobToRegexp(p))
		if err != nil {
			return nil, fmt.Errorf("invalid scope pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func matchAny(res []*regexp.Regexp, path string) bool {
	for _, re := range res {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// ValidateFile reports whether path is included and not excluded
func (v *Validator) ValidateFile(path string) Result {
	included := matchAny(v.include, path)
	excluded := matchAny(v.exclude, path)

	switch {
	case !included:
		return Result{Reason: fmt.Sprintf("File %s is not in the allowed scope", path)}
	case excluded:
		return Result{Reason: fmt.Sprintf("File %s is explicitly excluded from this scope", path)}
	default:
		return Result{Allowed: true, Reason: "File is within allowed scope"}
	}
}

// ValidateChanges sorts files into allowed and blocked, keeping input order
func (v *Validator) ValidateChanges(files []string) Results {
	res := Results{Allowed: []string{}, Blocked: []Blocked{}, Warnings: []string{}}
	for _, f := range files {
		r := v.ValidateFile(f)
		if r.Allowed {
			res.Allowed = append(res.Allowed, f)
			continue
		}
		res.Blocked = append(res.Blocked, Blocked{File: f, Reason: r.Reason})
	}
	return res
}

// Report writes the allowed, blocked and warning sections. Empty sections
// are omitted.
func Report(w io.Writer, r Results) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	sep := ""
	if len(r.Allowed) > 0 {
		fmt.Fprintln(w, green("✅ Allowed files:"))
		for _, f := range r.Allowed {
			fmt.Fprintf(w, "  - %s\n", f)
		}
		sep = "\n"
	}
	if len(r.Blocked) > 0 {
		fmt.Fprint(w, sep)
		fmt.Fprintln(w, red("❌ Blocked files:"))
		for _, b := range r.Blocked {
			fmt.Fprintf(w, "  - %s: %s\n", b.File, b.Reason)
		}
		sep = "\n"
	}
	if len(r.Warnings) > 0 {
		fmt.Fprint(w, sep)
		fmt.Fprintln(w, yellow("⚠️ Warnings:"))
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  - %s\n", warn)
		}
	}
}

// Determine picks a scope name for an issue description. The
// frontend-only, backend-only and full-stack trigger lists are checked in
// that order against the lowercased description; the first hit selects
// design-engineering, backend or feature. No hit means "contextual".
func Determine(rules map[string]Rule, issue string) string {
	text := strings.ToLower(issue)
	for _, step := range []struct{ rule, scope string }{
		{RuleFrontendOnly, "design-engineering"},
		{RuleBackendOnly, "backend"},
		{RuleFullStack, "feature"},
	} {
		for _, trigger := range rules[step.rule].Triggers {
			if trigger != "" && strings.Contains(text, strings.ToLower(trigger)) {
				return step.scope
			}
		}
	}
	return "contextual"
}
