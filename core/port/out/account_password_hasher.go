package out

// PasswordHasher is the one-way credential hashing capability.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}
