// Package feature defines the structured feature description that drives
// discovery, and the validation applied when it is loaded from a file.
package feature

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/devflow/internal/errors"
)

// UserFlow describes one way a user moves through the feature
type UserFlow struct {
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	SuccessPath  []string `json:"successPath" yaml:"successPath"`
	FailurePaths []string `json:"failurePaths" yaml:"failurePaths"`
}

// Description is the operator's account of a feature. It is immutable once collected.
type Description struct {
	BusinessContext string     `json:"businessContext" yaml:"businessContext"`
	InScope         []string   `json:"inScope" yaml:"inScope"`
	OutOfScope      []string   `json:"outOfScope" yaml:"outOfScope"`
	UserFlows       []UserFlow `json:"userFlows" yaml:"userFlows"`
}

// Normalize replaces nil lists with empty ones so the description always
// serializes with arrays rather than nulls.
func (d *Description) Normalize() {
	if d.InScope == nil {
		d.InScope = []string{}
	}
	if d.OutOfScope == nil {
		d.OutOfScope = []string{}
	}
	if d.UserFlows == nil {
		d.UserFlows = []UserFlow{}
	}
	for i := range d.UserFlows {
		if d.UserFlows[i].SuccessPath == nil {
			d.UserFlows[i].SuccessPath = []string{}
		}
		if d.UserFlows[i].FailurePaths == nil {
			d.UserFlows[i].FailurePaths = []string{}
		}
	}
}

// Parse decodes and validates a JSON feature description. Every top-level
// field must be present; the three list fields must be arrays and the
// business context a non-empty string.
func Parse(data []byte) (*Description, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInputInvalid, "input is not a JSON object", err)
	}

	var context string
	if err := json.Unmarshal(raw["businessContext"], &context); err != nil || strings.TrimSpace(context) == "" {
		return nil, errors.NewInputInvalidError("Business context is required")
	}

	for _, field := range []struct{ key, label string }{
		{"inScope", "In scope"},
		{"outOfScope", "Out of scope"},
		{"userFlows", "User flows"},
	} {
		if !isArray(raw[field.key]) {
			return nil, errors.NewInputInvalidError(field.label + " must be an array")
		}
	}

	var d Description
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInputInvalid, "malformed feature description", err)
	}
	d.Normalize()
	return &d, nil
}

func isArray(msg json.RawMessage) bool {
	trimmed := bytes.TrimSpace(msg)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// LoadFile reads a feature description from a .json file
func LoadFile(path string) (*Description, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return nil, errors.NewUnsupportedInputError(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputNotFoundError(path)
		}
		return nil, fmt.Errorf("read input file: %w", err)
	}

	return Parse(data)
}
