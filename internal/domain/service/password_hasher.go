// Package service declares the domain services the usecases depend on.
// Implementations live under internal/infra.
package service

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	// Hash returns a salted hash of password.
	Hash(password string) (string, error)

	// Check reports whether password matches hash. The comparison takes the
	// same time whether or not it matches.
	Check(password, hash string) bool
}
