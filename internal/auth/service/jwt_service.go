package service

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/allisson/accounts/internal/auth/domain"
	apperrors "github.com/allisson/accounts/internal/errors"
)

// jwtCodec implements JWTCodec with HS256 signing.
type jwtCodec struct {
	primarySecret []byte
	legacySecret  []byte
}

// NewJWTCodec creates a JWTCodec. The legacy secret may be empty when no key
// rotation is in flight.
func NewJWTCodec(primarySecret, legacySecret string) JWTCodec {
	return &jwtCodec{
		primarySecret: []byte(primarySecret),
		legacySecret:  []byte(legacySecret),
	}
}

// Encode signs the claims with the primary secret.
func (c *jwtCodec) Encode(claims *domain.TokenClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.primarySecret)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

// Decode validates a token against the primary secret, then the legacy one.
func (c *jwtCodec) Decode(token string) (*domain.TokenClaims, error) {
	claims, err := c.decodeWith(token, c.primarySecret)
	if err == nil {
		return claims, nil
	}

	if len(c.legacySecret) > 0 {
		if claims, legacyErr := c.decodeWith(token, c.legacySecret); legacyErr == nil {
			return claims, nil
		}
	}

	return nil, domain.ErrTokenDecode
}

func (c *jwtCodec) decodeWith(token string, secret []byte) (*domain.TokenClaims, error) {
	claims := &domain.TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, domain.ErrTokenDecode
	}
	return claims, nil
}
