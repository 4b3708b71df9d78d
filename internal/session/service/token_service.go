package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"

	apperrors "github.com/allisson/accounts/internal/errors"
)

// tokenService implements TokenService using SHA-256 for secret hashing.
type tokenService struct{}

// GenerateSecret creates a new cryptographically secure 32-byte random secret.
// The secret is base64 URL-encoded for embedding in the bearer token string.
// Returns the plain secret and its SHA-256 hash.
func (t *tokenService) GenerateSecret() (string, string, error) {
	// Generate 32 random bytes (256 bits)
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random secret")
	}

	plainSecret := base64.URLEncoding.EncodeToString(randomBytes)
	secretHash := t.HashToken(plainSecret)

	return plainSecret, secretHash, nil
}

// HashToken hashes a plain secret using SHA-256.
// Returns the hash as a hexadecimal string.
func (t *tokenService) HashToken(plainSecret string) string {
	hash := sha256.Sum256([]byte(plainSecret))
	return hex.EncodeToString(hash[:])
}

// CompareHashes compares two digests with subtle.ConstantTimeCompare.
func (t *tokenService) CompareHashes(a string, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// NewTokenService creates a new TokenService instance using SHA-256 hashing.
func NewTokenService() TokenService {
	return &tokenService{}
}
