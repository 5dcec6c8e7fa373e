package hamstercal

// TokenSealer protects the stored token at rest.
// Open(Seal(x)) must return x.
type TokenSealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}
