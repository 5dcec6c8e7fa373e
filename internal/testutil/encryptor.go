package testutil

import (
	"hamstercal-go/internal/encryption"
	"hamstercal-go/internal/hamstercal"
)

// NewTestSealer creates a new test sealer for testing.
func NewTestSealer() hamstercal.TokenSealer {
	return encryption.NewTestSealer()
}
