package cmd

import (
	stderrors "errors"
	"fmt"
)

// reportedError marks a failure whose details were already printed by the
// command, so main only sets the exit code.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// Reported reports whether err was already shown to the operator
func Reported(err error) bool {
	var r *reportedError
	return stderrors.As(err, &r)
}

// scopeViolationError is returned when scope validation blocks files
type scopeViolationError struct {
	scope   string
	blocked int
}

func (e *scopeViolationError) Error() string {
	return fmt.Sprintf("%d file(s) outside scope %s", e.blocked, e.scope)
}

// ScopeViolation marks the error for exit code mapping
func (e *scopeViolationError) ScopeViolation() bool { return true }
