// Package mode builds the scoped prompt context an AI coding agent works
// under for feature, fix and design-engineering sessions.
package mode

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/felixgeelhaar/devflow/internal/errors"
	"github.com/felixgeelhaar/devflow/internal/scope"
)

// Mode names
const (
	NameFeature           = "feature"
	NameFix               = "fix"
	NameDesignEngineering = "design-engineering"
)

// Names lists the available modes
var Names = []string{NameFeature, NameFix, NameDesignEngineering}

// PromptContext is the context handed to the agent
type PromptContext struct {
	Role                 string            `json:"role" yaml:"role"`
	Focus                string            `json:"focus" yaml:"focus"`
	Scope                scope.Config      `json:"scope" yaml:"scope"`
	Workflow             []string          `json:"workflow,omitempty" yaml:"workflow,omitempty"`
	TechStack            []string          `json:"techStack" yaml:"techStack"`
	ArchitecturePatterns []string          `json:"architecturePatterns,omitempty" yaml:"architecturePatterns,omitempty"`
	Restrictions         []string          `json:"restrictions,omitempty" yaml:"restrictions,omitempty"`
	QualityRequirements  []string          `json:"qualityRequirements" yaml:"qualityRequirements"`
	ScopingGuidance      map[string]string `json:"scopingGuidance,omitempty" yaml:"scopingGuidance,omitempty"`
	DeterminedScope      string            `json:"determinedScope,omitempty" yaml:"determinedScope,omitempty"`
	IssueDescription     string            `json:"issueDescription,omitempty" yaml:"issueDescription,omitempty"`
}

// Mode is an activated command mode
type Mode struct {
	Name    string
	Banner  []string
	Context PromptContext

	validator *scope.Validator
}

var webStack = []string{
	"Next.js 15",
	"React 19",
	"TypeScript",
	"PostgreSQL",
	"NeonDB",
	"pgvector",
	"Tailwind CSS",
	"shadcn/ui",
	"NextAuth.js",
	"OpenAI API",
}

func newMode(name string, scopes map[string]scope.Config, banner []string, ctx PromptContext) (*Mode, error) {
	cfg, err := scope.Lookup(scopes, name)
	if err != nil {
		return nil, err
	}
	v, err := scope.New(cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeScopeUnknown, fmt.Sprintf("scope %s has an invalid pattern", name), err)
	}
	ctx.Scope = cfg
	return &Mode{Name: name, Banner: banner, Context: ctx, validator: v}, nil
}

// Feature is full-stack development with access to the whole codebase
func Feature(scopes map[string]scope.Config) (*Mode, error) {
	return newMode(NameFeature, scopes, []string{
		"🚀 Feature Development Mode Activated",
		"📁 Scope: Full-stack implementation",
		"🔧 Access: Complete codebase",
	}, PromptContext{
		Role:  "feature-development",
		Focus: "Full-stack feature implementation",
		Workflow: []string{
			"1. Database schema changes (if needed)",
			"2. Model/type definitions",
			"3. Database layer functions",
			"4. Service layer implementation",
			"5. API route creation",
			"6. Frontend components",
			"7. Integration and testing",
		},
		TechStack: webStack,
		ArchitecturePatterns: []string{
			"Service-oriented architecture",
			"Multi-tenant organization scoping",
			"Type-safe database queries",
			"Parameterized SQL queries",
			"Error boundary handling",
			"Authentication middleware",
		},
		QualityRequirements: []string{
			"Organization-scoped queries",
			"Authentication checks",
			"Input validation with Zod",
			"Error handling with createErrorResponse",
			"TypeScript strict compliance",
			"Database transaction safety",
		},
	})
}

// Fix is a targeted bug fix. The issue description selects the scope
// through the fix scope's scoping rules.
func Fix(scopes map[string]scope.Config, issue string) (*Mode, error) {
	cfg, err := scope.Lookup(scopes, NameFix)
	if err != nil {
		return nil, err
	}
	determined := scope.Determine(cfg.ScopingRules, issue)

	return newMode(NameFix, scopes, []string{
		"🐛 Bug Fix Mode Activated",
		"📁 Determined scope: " + determined,
		"🔧 Focus: Minimal, targeted fixes",
	}, PromptContext{
		Role:             "bug-fixing",
		Focus:            "Context-aware bug resolution",
		DeterminedScope:  determined,
		IssueDescription: strings.ToLower(issue),
		Workflow: []string{
			"1. Analyze issue context and scope",
			"2. Identify root cause",
			"3. Implement minimal fix",
			"4. Verify fix resolves issue",
			"5. Check for regression risks",
			"6. Run quality gates",
		},
		ScopingGuidance: map[string]string{
			"design-engineering": "UI/UX bugs, styling issues, component errors",
			"backend":            "API errors, database issues, server-side problems",
			"feature":            "Integration issues, workflow problems, end-to-end bugs",
			"contextual":         "Analyze the specific error to determine appropriate scope",
		},
		TechStack: webStack,
		QualityRequirements: []string{
			"Minimal change principle",
			"Regression risk assessment",
			"Error boundary considerations",
			"Type safety preservation",
			"Performance impact analysis",
		},
	})
}

// DesignEngineering is frontend-only work on components and styling
func DesignEngineering(scopes map[string]scope.Config) (*Mode, error) {
	return newMode(NameDesignEngineering, scopes, []string{
		"🎨 Design Engineering Mode Activated",
		"📁 Scope: Frontend components and client-side logic",
		"🚫 Restrictions: No API/DB/Service changes",
	}, PromptContext{
		Role:  "design-engineering",
		Focus: "Frontend UI/UX components and client-side logic",
		Restrictions: []string{
			"No API route modifications",
			"No database schema changes",
			"No service layer changes",
			"Focus on React components and styling",
		},
		TechStack: []string{"Next.js 15", "React 19", "TypeScript", "Tailwind CSS", "shadcn/ui", "Radix UI"},
		QualityRequirements: []string{
			"TypeScript strict mode compliance",
			"Tailwind CSS best practices",
			"Responsive design",
			"Component reusability",
			"Props interface definitions",
		},
	})
}

// ByName activates a mode. issue is only used by fix.
func ByName(name string, scopes map[string]scope.Config, issue string) (*Mode, error) {
	switch name {
	case NameFeature:
		return Feature(scopes)
	case NameFix:
		return Fix(scopes, issue)
	case NameDesignEngineering:
		return DesignEngineering(scopes)
	}
	known := append([]string(nil), Names...)
	sort.Strings(known)
	return nil, errors.NewScopeUnknownError(name, known)
}

// ValidateFile checks path against the mode's scope
func (m *Mode) ValidateFile(path string) scope.Result {
	return m.validator.ValidateFile(path)
}

// ValidateChanges checks a change set against the mode's scope
func (m *Mode) ValidateChanges(files []string) scope.Results {
	return m.validator.ValidateChanges(files)
}

// WriteBanner prints the activation banner followed by a blank line
func (m *Mode) WriteBanner(w io.Writer) {
	for _, line := range m.Banner {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
}
