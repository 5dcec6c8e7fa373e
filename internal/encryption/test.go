package encryption

import (
	"fmt"
	"strings"

	"hamstercal-go/internal/hamstercal"
)

// testPrefix marks tokens sealed by TestSealer.
const testPrefix = "test-sealed:"

// TestSealer is a simple, deterministic sealer for testing. It prepends a
// fixed prefix so sealed values differ from plaintext while remaining
// trivially reversible and requiring no crypto.
type TestSealer struct{}

var _ hamstercal.TokenSealer = (*TestSealer)(nil)

// NewTestSealer creates a new TestSealer.
func NewTestSealer() *TestSealer {
	return &TestSealer{}
}

func (s *TestSealer) Seal(plaintext string) (string, error) {
	return testPrefix + plaintext, nil
}

func (s *TestSealer) Open(sealed string) (string, error) {
	if !strings.HasPrefix(sealed, testPrefix) {
		return "", fmt.Errorf("invalid test seal prefix")
	}
	return strings.TrimPrefix(sealed, testPrefix), nil
}

// PlainSealer stores tokens as-is.
type PlainSealer struct{}

var _ hamstercal.TokenSealer = PlainSealer{}

func (PlainSealer) Seal(plaintext string) (string, error) { return plaintext, nil }
func (PlainSealer) Open(sealed string) (string, error)    { return sealed, nil }
