// Package service provides technical services for session token handling.
//
// This package implements reusable services for session secret generation,
// hashing and comparison, plus user-agent parsing for device descriptions.
package service

// TokenService defines operations for session secret generation and hashing.
// Implementations must use cryptographically secure random generation; only
// SHA-256 digests of secrets are ever persisted.
type TokenService interface {
	// GenerateSecret creates a new cryptographically secure random secret.
	// Returns both the plain secret (embedded in the bearer token handed to
	// the client) and its SHA-256 hash (to be stored).
	GenerateSecret() (plainSecret string, secretHash string, err error)

	// HashToken hashes a plain secret using SHA-256.
	// Used for token validation by comparing hashes.
	HashToken(plainSecret string) string

	// CompareHashes compares two token digests in constant time, never
	// short-circuiting equality, to avoid timing side channels.
	CompareHashes(a string, b string) bool
}

// DeviceService turns a stored user-agent string into a human description.
type DeviceService interface {
	// DescribeDevice returns "{browser} on {os}", falling back to
	// "Unknown Client on Unknown OS" when the user agent is unparseable.
	DescribeDevice(userAgent string) string
}
