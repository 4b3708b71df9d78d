// Package domain defines the session domain entities and the bearer token format.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/accounts/internal/errors"
)

// Session represents an authenticated device session. Only SHA-256 digests of
// the random token secrets are stored, never the secrets themselves.
type Session struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	APIVersion         string
	UserAgent          string
	HashedAccessToken  string
	HashedRefreshToken string
	AccessExpiration   time.Time
	RefreshExpiration  time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AccessExpired reports whether the access token is past its expiration.
func (s *Session) AccessExpired(now time.Time) bool {
	return now.After(s.AccessExpiration)
}

// RefreshExpired reports whether the refresh token is past its expiration.
// A session with an expired refresh token is fully dead.
func (s *Session) RefreshExpired(now time.Time) bool {
	return now.After(s.RefreshExpiration)
}

// RevokedSession marks a session that was explicitly invalidated rather than
// deleted, so a bearer still holding the old token gets a distinct "revoked"
// signal instead of a generic "invalid" one. Received flags that the holder
// has already been informed once.
type RevokedSession struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Received  bool
	CreatedAt time.Time
}

// SessionBody is the client-facing result of session creation or refresh.
// It carries the only plaintext copies of the bearer tokens that ever exist.
type SessionBody struct {
	AccessToken       string    `json:"access_token"`
	RefreshToken      string    `json:"refresh_token"`
	AccessExpiration  time.Time `json:"access_expiration"`
	RefreshExpiration time.Time `json:"refresh_expiration"`
	ReadonlyAccess    bool      `json:"readonly_access"`
}

// Domain-specific errors for session operations.
var (
	// ErrSessionNotFound indicates the requested session does not exist.
	ErrSessionNotFound = errors.Wrap(errors.ErrNotFound, "session not found")

	// ErrRevokedSessionNotFound indicates no revocation marker exists for the session.
	ErrRevokedSessionNotFound = errors.Wrap(errors.ErrNotFound, "revoked session not found")

	// ErrInvalidTokenFormat indicates a bearer token does not match the
	// version:sessionID:secret triple.
	ErrInvalidTokenFormat = errors.Wrap(errors.ErrInvalidInput, "invalid session token format")
)
