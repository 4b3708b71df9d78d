// Package domain defines the authentication method sum type, token claims and
// the final authentication decision produced by the auth use cases.
package domain

import (
	sessionDomain "github.com/allisson/accounts/internal/session/domain"
	userDomain "github.com/allisson/accounts/internal/user/domain"
)

// MethodType identifies the authentication strategy a bearer token resolved to.
type MethodType string

const (
	// MethodJWT is a cross-service HS256 token carried by accounts that never
	// adopted session-based authentication.
	MethodJWT MethodType = "jwt"

	// MethodSessionToken is a live session bearer token.
	MethodSessionToken MethodType = "session_token"

	// MethodRevoked is a token whose session was explicitly revoked. The holder
	// gets a distinct signal instead of a generic "invalid".
	MethodRevoked MethodType = "revoked"

	// MethodNone means the token matched no strategy.
	MethodNone MethodType = "none"
)

// Method is the resolver output. Exactly the fields implied by Type are set:
// JWT carries User and Claims, SessionToken carries User and Session, Revoked
// carries only RevokedSession, None carries nothing.
type Method struct {
	Type           MethodType
	User           *userDomain.User
	Claims         *TokenClaims
	Session        *sessionDomain.Session
	RevokedSession *sessionDomain.RevokedSession
}

// NewJWTMethod builds a jwt method. The user may be nil when the claims point
// at an account that no longer exists.
func NewJWTMethod(user *userDomain.User, claims *TokenClaims) Method {
	return Method{Type: MethodJWT, User: user, Claims: claims}
}

// NewSessionTokenMethod builds a session_token method.
func NewSessionTokenMethod(user *userDomain.User, session *sessionDomain.Session) Method {
	return Method{Type: MethodSessionToken, User: user, Session: session}
}

// NewRevokedMethod builds a revoked method. No user is resolvable for it.
func NewRevokedMethod(revoked *sessionDomain.RevokedSession) Method {
	return Method{Type: MethodRevoked, RevokedSession: revoked}
}

// NoMethod is the unresolvable variant.
func NoMethod() Method {
	return Method{Type: MethodNone}
}
