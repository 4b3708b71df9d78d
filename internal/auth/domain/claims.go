package domain

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the claim set of cross-service JWTs. PwHash binds the token
// to the account's current encrypted password so a password change invalidates
// every outstanding token.
type TokenClaims struct {
	UserUUID string `json:"user_uuid"`
	PwHash   string `json:"pw_hash,omitempty"`
	jwt.RegisteredClaims
}

// PasswordDigest returns the hex SHA-256 digest of an account's encrypted
// password, the value a valid PwHash claim must carry.
func PasswordDigest(encryptedPassword string) string {
	sum := sha256.Sum256([]byte(encryptedPassword))
	return hex.EncodeToString(sum[:])
}
