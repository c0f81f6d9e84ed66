package hash

// Hash abstracts one-way hashing of secrets.
type Hash interface {
	// Hash hashes plaintext and returns the encoded digest.
	Hash(plaintext string) ([]byte, error)
	// Verify reports whether plaintext matches the stored hashed value.
	Verify(hashed, plaintext string) bool
}
