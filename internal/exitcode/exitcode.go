package exitcode

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/felixgeelhaar/devflow/internal/errors"
	"github.com/felixgeelhaar/devflow/internal/prompt"
)

// Exit codes for consistent error handling across the CLI
const (
	Success = 0

	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// ScopeViolation indicates files outside the allowed scope
	ScopeViolation = 3

	// GateFailed indicates a required quality gate failed
	GateFailed = 4

	// AuthError indicates the tracker rejected our credentials
	AuthError = 5

	// TrackerError indicates the tracker could not be reached or a call failed
	TrackerError = 6

	// Interrupted follows the shell convention for SIGINT
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode maps an error to an exit code. Coded errors are
// classified by category; anything else falls back to message inspection.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, prompt.ErrInterrupted) {
		return Interrupted
	}

	switch {
	case errors.HasPrefix(err, "SCOPE"):
		return UsageError
	case errors.HasPrefix(err, "GATE"):
		if errors.CodeOf(err) == errors.ErrCodeGateRequiredFailed {
			return GateFailed
		}
		return UsageError
	case errors.HasPrefix(err, "TRACKER"):
		if isAuthMessage(strings.ToLower(err.Error())) {
			return AuthError
		}
		return TrackerError
	}

	var violation interface{ ScopeViolation() bool }
	if stderrors.As(err, &violation) && violation.ScopeViolation() {
		return ScopeViolation
	}

	errMsg := strings.ToLower(err.Error())

	if isAuthMessage(errMsg) {
		return AuthError
	}
	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "timeout") {
		return TrackerError
	}
	if strings.Contains(errMsg, "unknown command") || strings.Contains(errMsg, "unknown flag") ||
		strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "accepts ") {
		return UsageError
	}

	return GeneralError
}

func isAuthMessage(msg string) bool {
	return strings.Contains(msg, "unauthorized") || strings.Contains(msg, "authentication") ||
		strings.Contains(msg, "401")
}

// Description returns a human-readable description of an exit code
func Description(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case ScopeViolation:
		return "Files outside the allowed scope"
	case GateFailed:
		return "Required quality gate failed"
	case AuthError:
		return "Tracker authentication error"
	case TrackerError:
		return "Tracker communication error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
