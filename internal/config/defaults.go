package config

import (
	"github.com/felixgeelhaar/devflow/internal/gates"
	"github.com/felixgeelhaar/devflow/internal/scope"
)

// DefaultScopes are the scopes of the built-in modes plus backend, which
// fix can select.
func DefaultScopes() map[string]scope.Config {
	return map[string]scope.Config{
		"feature": {
			Include: []string{"src/**", "app/**", "lib/**", "components/**", "db/**", "migrations/**", "tests/**", "*.json", "*.ts"},
			Exclude: []string{"node_modules/**", ".next/**", "dist/**"},
		},
		"fix": {
			Include: []string{"src/**", "app/**", "lib/**", "components/**", "tests/**"},
			Exclude: []string{"node_modules/**", ".next/**", "migrations/**"},
			ScopingRules: map[string]scope.Rule{
				scope.RuleFrontendOnly: {Triggers: []string{"ui", "button", "styling", "css", "layout", "component", "display", "responsive"}},
				scope.RuleBackendOnly:  {Triggers: []string{"api", "database", "query", "server", "endpoint", "500", "timeout"}},
				scope.RuleFullStack:    {Triggers: []string{"workflow", "integration", "end-to-end", "flow", "sync"}},
			},
		},
		"design-engineering": {
			Include:             []string{"src/components/**", "components/**", "src/app/**/page.tsx", "app/**/page.tsx", "src/styles/**", "*.css"},
			Exclude:             []string{"src/app/api/**", "app/api/**", "src/lib/db/**", "src/services/**"},
			AllowedDependencies: []string{"react", "tailwindcss", "@radix-ui/*", "lucide-react"},
		},
		"backend": {
			Include: []string{"src/app/api/**", "app/api/**", "src/lib/**", "lib/**", "src/services/**", "db/**", "migrations/**"},
			Exclude: []string{"src/components/**", "components/**", "node_modules/**"},
		},
	}
}

var (
	typecheck = gates.Check{Name: "typecheck", Description: "TypeScript compiles", Command: "pnpm tsc --noEmit", Required: true}
	lint      = gates.Check{Name: "lint", Description: "Lint passes", Command: "pnpm lint", Required: true}
	test      = gates.Check{Name: "test", Description: "Unit tests pass", Command: "pnpm test", Required: true}
	build     = gates.Check{Name: "build", Description: "Production build succeeds", Command: "pnpm build", Required: false}
	gitClean  = gates.Check{Name: "git-status", Description: "Working tree state", Command: "git status --short", Required: false}
)

// DefaultQualityGates has one gate set per default scope
func DefaultQualityGates() map[string]gates.Set {
	return map[string]gates.Set{
		"feature": {
			PreChecks:  []gates.Check{gitClean, typecheck},
			PostChecks: []gates.Check{typecheck, lint, test, build},
		},
		"fix": {
			PreChecks:  []gates.Check{gitClean},
			PostChecks: []gates.Check{typecheck, lint, test},
		},
		"design-engineering": {
			PreChecks:  []gates.Check{gitClean},
			PostChecks: []gates.Check{typecheck, lint, build},
		},
		"backend": {
			PreChecks:  []gates.Check{gitClean, typecheck},
			PostChecks: []gates.Check{typecheck, test},
		},
	}
}
