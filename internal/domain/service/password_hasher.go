// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher hashes and verifies passwords.
//
// Digests are self-describing: they embed the algorithm, its parameters and
// the salt, so a digest produced under one algorithm stays verifiable after
// the preferred algorithm changes.
type PasswordHasher interface {
	// Hash generates a salted digest of a plaintext password.
	Hash(password string) (string, error)

	// Check compares a plaintext password against a digest in constant time.
	Check(password, digest string) bool

	// NeedsRehash reports whether the digest was produced with other than the preferred settings.
	NeedsRehash(digest string) bool
}
