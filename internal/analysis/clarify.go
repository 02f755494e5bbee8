package analysis

import (
	"strings"

	"github.com/felixgeelhaar/devflow/internal/feature"
)

var baseClarifications = []string{
	"Should this feature support real-time updates or batch processing?",
	"What are the performance requirements (concurrent users, response time)?",
	"Are there any specific compliance or security requirements?",
	"Should this integrate with existing authentication/authorization?",
	"What level of audit logging is required?",
}

// conditional questions are keyed on the in-scope text only
var conditionalClarifications = []struct {
	triggers []string
	question string
}{
	{[]string{"api", "integration"}, "What external systems need to be integrated?"},
	{[]string{"user", "interface"}, "Are there specific accessibility requirements?"},
	{[]string{"data", "store"}, "What are the data retention and backup requirements?"},
}

// Clarifications returns the questions the operator should answer before
// tickets are planned.
func Clarifications(d feature.Description) []string {
	questions := make([]string, len(baseClarifications), len(baseClarifications)+len(conditionalClarifications))
	copy(questions, baseClarifications)

	scope := strings.ToLower(strings.Join(d.InScope, " "))
	for _, c := range conditionalClarifications {
		if containsAny(scope, c.triggers) {
			questions = append(questions, c.question)
		}
	}
	return questions
}
