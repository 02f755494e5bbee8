package plan

import (
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/devflow/internal/feature"
)

// Canonicalize returns the JSON form of a feature description used for
// hashing. Nil lists encode as empty arrays so equivalent inputs hash equally.
func Canonicalize(d feature.Description) ([]byte, error) {
	d.InScope = append([]string{}, d.InScope...)
	d.OutOfScope = append([]string{}, d.OutOfScope...)
	d.UserFlows = append([]feature.UserFlow{}, d.UserFlows...)
	d.Normalize()

	// struct field order is fixed, so encoding/json output is stable
	return json.Marshal(d)
}

// InputDigest computes the blake3 hash of a canonicalized feature description
func InputDigest(d feature.Description) (string, error) {
	canonical, err := Canonicalize(d)
	if err != nil {
		return "", fmt.Errorf("canonicalize input: %w", err)
	}

	hasher := blake3.New()
	if _, err := hasher.Write(canonical); err != nil {
		return "", fmt.Errorf("hash input: %w", err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
