package exitcode

import (
	"context"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/devflow/internal/errors"
	"github.com/felixgeelhaar/devflow/internal/prompt"
)

type scopeErr struct{}

func (scopeErr) Error() string        { return "2 file(s) outside scope feature" }
func (scopeErr) ScopeViolation() bool { return true }

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, Success},
		{"cancelled", fmt.Errorf("prompt: %w", context.Canceled), Interrupted},
		{"prompt interrupted", fmt.Errorf("read business-context: %w", prompt.ErrInterrupted), Interrupted},
		{"unknown scope", errors.NewScopeUnknownError("ops", []string{"feature"}), UsageError},
		{"scope violation", fmt.Errorf("validate: %w", scopeErr{}), ScopeViolation},
		{"required gate", errors.New(errors.ErrCodeGateRequiredFailed, "Required pre-check failed: lint"), GateFailed},
		{"unknown gate", errors.NewGateUnknownError("ops", nil), UsageError},
		{"tracker call", errors.NewTrackerCallError("linear", "list_teams", fmt.Errorf("connection refused")), TrackerError},
		{"tracker auth", errors.NewTrackerCallError("linear", "list_teams", fmt.Errorf("401 Unauthorized")), AuthError},
		{"plain timeout", fmt.Errorf("i/o timeout"), TrackerError},
		{"usage", fmt.Errorf("unknown command \"foo\" for \"devflow\""), UsageError},
		{"general", fmt.Errorf("something broke"), GeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineExitCode(tt.err); got != tt.want {
				t.Errorf("DetermineExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDescription(t *testing.T) {
	for _, code := range []int{Success, GeneralError, UsageError, ScopeViolation, GateFailed, AuthError, TrackerError, Interrupted} {
		if Description(code) == "Unknown error" {
			t.Errorf("Description(%d) should be known", code)
		}
	}
	if Description(42) != "Unknown error" {
		t.Error("unmapped codes should be described as unknown")
	}
}
