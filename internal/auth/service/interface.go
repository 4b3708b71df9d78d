// Package service provides token encoding and decoding for the auth context.
package service

import (
	"github.com/allisson/accounts/internal/auth/domain"
)

// JWTCodec encodes and decodes cross-service HS256 tokens.
type JWTCodec interface {
	// Encode signs the claims with the primary secret.
	Encode(claims *domain.TokenClaims) (string, error)

	// Decode validates a token against the primary secret, falling back to the
	// legacy secret so outstanding tokens survive a key rotation. Failure under
	// both secrets yields domain.ErrTokenDecode.
	Decode(token string) (*domain.TokenClaims, error)
}
