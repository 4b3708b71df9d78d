package domain

import (
	sessionDomain "github.com/allisson/accounts/internal/session/domain"
	userDomain "github.com/allisson/accounts/internal/user/domain"
)

// FailureType is the typed reason an authentication attempt was denied. The
// three-way split tells the client whether a silent refresh can recover the
// session or interactive re-authentication is required.
type FailureType string

const (
	// FailureInvalidAuth covers every non-recoverable denial: unknown token,
	// unknown user, dead session, stale JWT.
	FailureInvalidAuth FailureType = "invalid_auth"

	// FailureRevokedSession means the session was explicitly revoked and cannot
	// be resurrected.
	FailureRevokedSession FailureType = "revoked_session"

	// FailureExpiredToken means the access token expired but the refresh token
	// is still valid, so the client should refresh instead of re-authenticating.
	FailureExpiredToken FailureType = "expired_token"
)

// Decision is the final allow/deny verdict for a resolved method.
type Decision struct {
	Success     bool
	User        *userDomain.User
	Session     *sessionDomain.Session
	FailureType FailureType
}

// Allow builds a successful decision. Session is nil for JWT authentication.
func Allow(user *userDomain.User, session *sessionDomain.Session) Decision {
	return Decision{Success: true, User: user, Session: session}
}

// Deny builds a failed decision with a typed reason.
func Deny(failureType FailureType) Decision {
	return Decision{Success: false, FailureType: failureType}
}
