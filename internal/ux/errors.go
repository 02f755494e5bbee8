package ux

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/devflow/internal/errors"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\n💡 Suggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError adds a suggestion to errors that did not come with one.
// Coded devflow errors already carry their own and are returned unchanged.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	if errors.CodeOf(err) != "" {
		return err
	}
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "executable file not found"):
		return NewErrorWithSuggestion(err,
			"Install the tracker MCP server or set tracker.command in .devflow/config.yaml")

	case strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no route to host"):
		return NewErrorWithSuggestion(err,
			"Check that the tracker endpoint is reachable and tracker.endpoint is correct")

	case strings.Contains(errMsg, "unauthorized") || strings.Contains(errMsg, "authentication"):
		return NewErrorWithSuggestion(err,
			"Re-authenticate the tracker MCP server, then run 'devflow disco' again to resume")

	case strings.Contains(errMsg, "permission denied"):
		return NewErrorWithSuggestion(err,
			"Check file permissions on the session directory and .devflow/")

	case strings.Contains(errMsg, "yaml:"):
		return NewErrorWithSuggestion(err,
			"Fix the YAML syntax, or print the effective configuration with 'devflow config view'")
	}

	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
