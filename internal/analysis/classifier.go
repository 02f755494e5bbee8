// Package analysis derives a deterministic complexity and area assessment
// from a feature description using fixed keyword rules.
package analysis

import (
	"strings"

	"github.com/felixgeelhaar/devflow/internal/feature"
)

// Complexity is the overall complexity bucket of a feature
type Complexity string

const (
	ComplexityHigh   Complexity = "high"
	ComplexityMedium Complexity = "medium"
	// ComplexityLow is part of the vocabulary but Classify never produces it;
	// medium is the floor.
	ComplexityLow Complexity = "low"
)

// Size is a rough effort estimate
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Classification is the derived assessment of a feature description.
// It is recomputed on every run and never persisted.
type Classification struct {
	Complexity Complexity `json:"complexity"`

	NeedsDatabase bool `json:"needsDatabase"`
	NeedsAPI      bool `json:"needsApi"`
	NeedsBackend  bool `json:"needsBackend"`
	NeedsFrontend bool `json:"needsFrontend"`

	DatabaseSize Size `json:"databaseSize"`
	BackendSize  Size `json:"backendSize"`
	APISize      Size `json:"apiSize"`
	FrontendSize Size `json:"frontendSize"`
}

var (
	complexityKeywords = []string{
		"integration", "real-time", "ai", "machine learning", "analytics",
		"reporting", "multi-tenant", "oauth", "webhook", "streaming",
	}
	databaseKeywords = []string{"store", "save", "persist", "database", "record", "track", "data"}
	apiKeywords      = []string{"api", "endpoint", "request", "response", "integration", "webhook"}
	backendKeywords  = []string{"logic", "process", "calculate", "validate", "service"}
	frontendKeywords = []string{"ui", "interface", "form", "display", "show", "user", "component"}

	databaseAreaKeywords = []string{"data", "model", "schema", "table"}
	backendAreaKeywords  = []string{"service", "logic", "process", "business"}
	apiAreaKeywords      = []string{"endpoint", "api", "request", "integration"}
	frontendAreaKeywords = []string{"ui", "component", "form", "interface"}
)

const (
	maxInScopeItems = 5
	maxUserFlows    = 3

	largeAreaThreshold  = 3
	mediumAreaThreshold = 1
)

// Classify maps a feature description to its classification. It is pure and total.
func Classify(d feature.Description) Classification {
	text := corpus(d)

	c := Classification{Complexity: ComplexityMedium}
	if containsAny(text, complexityKeywords) || len(d.InScope) > maxInScopeItems || len(d.UserFlows) > maxUserFlows {
		c.Complexity = ComplexityHigh
	}

	c.NeedsDatabase = containsAny(text, databaseKeywords)
	c.NeedsAPI = containsAny(text, apiKeywords) || c.NeedsDatabase
	c.NeedsBackend = c.NeedsAPI || c.NeedsDatabase || containsAny(text, backendKeywords)
	c.NeedsFrontend = containsAny(text, frontendKeywords)

	c.DatabaseSize = areaSize(d.InScope, databaseAreaKeywords)
	c.BackendSize = areaSize(d.InScope, backendAreaKeywords)
	c.APISize = areaSize(d.InScope, apiAreaKeywords)
	c.FrontendSize = areaSize(d.InScope, frontendAreaKeywords)

	return c
}

// corpus joins scope items, business context and flow descriptions into one lowercase string
func corpus(d feature.Description) string {
	flows := make([]string, 0, len(d.UserFlows))
	for _, f := range d.UserFlows {
		flows = append(flows, f.Description)
	}

	return strings.ToLower(strings.Join([]string{
		strings.Join(d.InScope, " "),
		d.BusinessContext,
		strings.Join(flows, " "),
	}, " "))
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func areaSize(items []string, keywords []string) Size {
	count := 0
	for _, item := range items {
		if containsAny(strings.ToLower(item), keywords) {
			count++
		}
	}

	switch {
	case count > largeAreaThreshold:
		return SizeLarge
	case count > mediumAreaThreshold:
		return SizeMedium
	default:
		return SizeSmall
	}
}
