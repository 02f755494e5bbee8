package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Input errors (INPUT-001 to INPUT-099)
	ErrCodeInputNotFound        ErrorCode = "INPUT-001"
	ErrCodeInputInvalid         ErrorCode = "INPUT-002"
	ErrCodeInputCollection      ErrorCode = "INPUT-003"
	ErrCodeInputUnsupportedType ErrorCode = "INPUT-004"

	// Session errors (SESSION-001 to SESSION-099)
	ErrCodeSessionRead    ErrorCode = "SESSION-001"
	ErrCodeSessionWrite   ErrorCode = "SESSION-002"
	ErrCodeSessionArchive ErrorCode = "SESSION-003"

	// Plan errors (PLAN-001 to PLAN-099)
	ErrCodePlanInvalid        ErrorCode = "PLAN-001"
	ErrCodePlanCyclicDep      ErrorCode = "PLAN-002"
	ErrCodePlanDanglingDep    ErrorCode = "PLAN-003"
	ErrCodePlanDuplicateTitle ErrorCode = "PLAN-004"

	// Tracker errors (TRACKER-001 to TRACKER-099)
	ErrCodeTrackerUnavailable   ErrorCode = "TRACKER-001"
	ErrCodeTrackerNoTeams       ErrorCode = "TRACKER-002"
	ErrCodeTrackerTeamSelection ErrorCode = "TRACKER-003"
	ErrCodeTrackerProject       ErrorCode = "TRACKER-004"
	ErrCodeTrackerIssue         ErrorCode = "TRACKER-005"
	ErrCodeTrackerCall          ErrorCode = "TRACKER-006"

	// Scope errors (SCOPE-001 to SCOPE-099)
	ErrCodeScopeUnknown ErrorCode = "SCOPE-001"

	// Quality gate errors (GATE-001 to GATE-099)
	ErrCodeGateRequiredFailed ErrorCode = "GATE-001"
	ErrCodeGateUnknown        ErrorCode = "GATE-002"

	// Template errors (TEMPLATE-001 to TEMPLATE-099)
	ErrCodeTemplateNotFound ErrorCode = "TEMPLATE-001"
	ErrCodeTemplateWrite    ErrorCode = "TEMPLATE-002"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigRead  ErrorCode = "CONFIG-001"
	ErrCodeConfigParse ErrorCode = "CONFIG-002"
)

const docsBase = "https://github.com/felixgeelhaar/devflow"

// DevflowError represents an enhanced error with code, suggestions, and documentation
type DevflowError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *DevflowError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *DevflowError) Unwrap() error {
	return e.Cause
}

// New creates a new DevflowError
func New(code ErrorCode, message string) *DevflowError {
	return &DevflowError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new DevflowError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *DevflowError {
	return &DevflowError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *DevflowError) WithSuggestion(suggestion string) *DevflowError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *DevflowError) WithSuggestions(suggestions ...string) *DevflowError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *DevflowError) WithDocs(url string) *DevflowError {
	e.DocsURL = url
	return e
}

// CodeOf returns the code of the first DevflowError in err's chain, or ""
func CodeOf(err error) ErrorCode {
	for err != nil {
		if de, ok := err.(*DevflowError); ok {
			return de.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

// HasPrefix reports whether err carries a code in the given category, e.g. "TRACKER".
func HasPrefix(err error, category string) bool {
	return strings.HasPrefix(string(CodeOf(err)), category+"-")
}

// Common error constructors for frequently used errors

// NewInputNotFoundError creates an input file not found error
func NewInputNotFoundError(path string) *DevflowError {
	return New(ErrCodeInputNotFound, fmt.Sprintf("input file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Run 'devflow disco' without arguments to enter the description interactively")
}

// NewInputInvalidError creates a feature description validation error
func NewInputInvalidError(details string) *DevflowError {
	return New(ErrCodeInputInvalid, fmt.Sprintf("invalid feature description: %s", details)).
		WithSuggestion("The file must contain businessContext, inScope, outOfScope and userFlows").
		WithDocs(docsBase + "#input-file-format")
}

// NewUnsupportedInputError creates an error for input files that are not JSON
func NewUnsupportedInputError(path string) *DevflowError {
	return New(ErrCodeInputUnsupportedType, fmt.Sprintf("unsupported input file: %s", path)).
		WithSuggestion("Provide the feature description as a .json file")
}

// NewCycleDetectedError creates a dependency cycle error
func NewCycleDetectedError(path string) *DevflowError {
	return New(ErrCodePlanCyclicDep, fmt.Sprintf("circular dependency detected: %s", path)).
		WithSuggestion("Remove one of the dependencies in the cycle")
}

// NewTeamSelectionError creates an invalid team selection error
func NewTeamSelectionError(selection string, teams int) *DevflowError {
	return New(ErrCodeTrackerTeamSelection, fmt.Sprintf("invalid team selection: %q", selection)).
		WithSuggestion(fmt.Sprintf("Enter a number between 1 and %d", teams))
}

// NewTrackerCallError creates an error for a failed remote tracker call
func NewTrackerCallError(tracker, operation string, cause error) *DevflowError {
	return Wrap(ErrCodeTrackerCall, fmt.Sprintf("%s %s failed", tracker, operation), cause).
		WithSuggestion("Check that the tracker MCP server is configured and authenticated").
		WithSuggestion("Run 'devflow config view' to inspect the tracker settings").
		WithDocs(docsBase + "#tracker-configuration")
}

// NewScopeUnknownError creates an unknown scope error
func NewScopeUnknownError(name string, known []string) *DevflowError {
	return New(ErrCodeScopeUnknown, fmt.Sprintf("unknown scope: %s", name)).
		WithSuggestion(fmt.Sprintf("Use one of: %s", strings.Join(known, ", ")))
}

// NewGateUnknownError creates an unknown quality gate set error
func NewGateUnknownError(name string, known []string) *DevflowError {
	return New(ErrCodeGateUnknown, fmt.Sprintf("unknown quality gate set: %s", name)).
		WithSuggestion(fmt.Sprintf("Use one of: %s", strings.Join(known, ", ")))
}

// NewTemplateNotFoundError creates a missing template error
func NewTemplateNotFoundError(name string) *DevflowError {
	return New(ErrCodeTemplateNotFound, fmt.Sprintf("template %s not found", name)).
		WithSuggestion("Run 'devflow template list' to see available templates")
}

// NewConfigParseError creates a configuration parse error
func NewConfigParseError(path string, cause error) *DevflowError {
	return Wrap(ErrCodeConfigParse, fmt.Sprintf("failed to parse config file: %s", path), cause).
		WithSuggestion("Check the YAML syntax").
		WithSuggestion("Run 'devflow config init' to write a fresh default configuration")
}
