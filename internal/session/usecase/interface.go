// Package usecase implements the session lifecycle state machine: creation,
// refresh, resolution from bearer tokens, revocation and expiry cleanup.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/accounts/internal/session/domain"
	userDomain "github.com/allisson/accounts/internal/user/domain"
)

// SessionRepository defines persistence operations for long-lived sessions.
// Lookups return domain.ErrSessionNotFound so callers can distinguish
// "no session" from a transport failure.
type SessionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Session, error)
	Create(ctx context.Context, session *domain.Session) error

	// UpdateTokens re-persists hashed tokens and expirations for an existing
	// session, keeping the same identity. The row update is atomic so
	// concurrent refreshes settle last-writer-wins without partial token pairs.
	UpdateTokens(ctx context.Context, session *domain.Session) error

	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteExpired removes sessions whose refresh expiration has passed.
	DeleteExpired(ctx context.Context) (int64, error)

	// CountExpired counts sessions whose refresh expiration has passed
	// without deleting them.
	CountExpired(ctx context.Context) (int64, error)
}

// EphemeralSessionRepository stores sessions whose owning client requested no
// long-term persistence. Same shape as SessionRepository but rows are also
// pruned by age independently of token expiry.
type EphemeralSessionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	Create(ctx context.Context, session *domain.Session) error
	UpdateTokens(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteOlderThan prunes ephemeral sessions created before the cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// CountOlderThan counts ephemeral sessions created before the cutoff
	// without deleting them.
	CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RevokedSessionRepository stores revocation markers.
type RevokedSessionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RevokedSession, error)
	Create(ctx context.Context, revoked *domain.RevokedSession) error

	// MarkReceived persists that the token holder has been informed of the
	// revocation. Idempotent.
	MarkReceived(ctx context.Context, id uuid.UUID) error
}

// SessionManager owns the session state machine.
type SessionManager interface {
	// CreateSession issues a new session for the user. Two independent random
	// secrets are generated; only their SHA-256 digests are persisted.
	// Ephemeral sessions go to the ephemeral store instead of the primary one.
	CreateSession(
		ctx context.Context,
		user *userDomain.User,
		apiVersion string,
		userAgent string,
		ephemeral bool,
	) (*domain.Session, *domain.SessionBody, error)

	// RefreshTokens regenerates both secrets and expirations in place and
	// re-persists them wherever the session is stored. The session identity
	// never changes.
	RefreshTokens(ctx context.Context, session *domain.Session) (*domain.SessionBody, error)

	// ValidateRefreshToken checks a presented refresh bearer token against the
	// session's stored digest using constant-time comparison.
	ValidateRefreshToken(session *domain.Session, presentedToken string) bool

	// GetSession looks a session up by identity, ephemeral store first, then
	// the primary store. No token digest is checked.
	GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// ListSessions returns the user's long-lived sessions.
	ListSessions(ctx context.Context, userID uuid.UUID) ([]*domain.Session, error)

	// ResolveSessionFromToken parses a bearer token and looks the session up,
	// ephemeral store first, then constant-time-compares the access digest.
	// Any mismatch yields domain.ErrSessionNotFound.
	ResolveSessionFromToken(ctx context.Context, token string) (*domain.Session, error)

	// RevokeAndRecord writes a revocation marker carrying the session identity
	// and removes the session from its stores. Future presentations of the old
	// token resolve as "revoked" rather than "unknown".
	RevokeAndRecord(ctx context.Context, session *domain.Session) (*domain.RevokedSession, error)

	// RevokeAllForUser revokes every long-lived session the user holds.
	// Used on password change.
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error

	// DeleteSession removes a session without leaving a revocation marker.
	// Used for explicit sign-out.
	DeleteSession(ctx context.Context, session *domain.Session) error

	// DescribeDevice renders the session's user agent as "{browser} on {os}".
	DescribeDevice(session *domain.Session) string

	// CleanupExpired prunes dead sessions from both stores and returns the
	// number of rows removed. Use dryRun=true to preview the count without
	// deletion.
	CleanupExpired(ctx context.Context, dryRun bool) (int64, error)
}
