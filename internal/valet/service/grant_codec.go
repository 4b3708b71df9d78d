// Package service provides signing and verification of valet token grants.
package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/allisson/accounts/internal/errors"
	"github.com/allisson/accounts/internal/valet/domain"
)

// GrantCodec signs grants into expiring bearer strings and verifies them back.
type GrantCodec interface {
	// Encode signs the grant and returns the token with its expiration.
	Encode(grant *domain.Grant) (token string, expiresAt time.Time, err error)

	// Decode verifies the signature and expiration and returns the grant.
	Decode(token string) (*domain.Grant, error)
}

// grantClaims is the JWT claim set wrapping a grant.
type grantClaims struct {
	Grant *domain.Grant `json:"grant"`
	jwt.RegisteredClaims
}

type grantCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewGrantCodec creates a GrantCodec signing HS256 tokens with a fixed TTL.
func NewGrantCodec(secret string, ttl time.Duration) GrantCodec {
	return &grantCodec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Encode signs the grant.
func (c *grantCodec) Encode(grant *domain.Grant) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(c.ttl)

	claims := &grantClaims{
		Grant: grant,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   grant.UserUUID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(err, "failed to sign valet token")
	}
	return token, expiresAt, nil
}

// Decode verifies and unpacks a grant token.
func (c *grantCodec) Decode(token string) (*domain.Grant, error) {
	claims := &grantClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnauthorized, "invalid valet token")
	}
	if !parsed.Valid || claims.Grant == nil {
		return nil, apperrors.Wrap(apperrors.ErrUnauthorized, "invalid valet token")
	}
	return claims.Grant, nil
}
