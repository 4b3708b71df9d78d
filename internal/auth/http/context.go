// Package http provides HTTP middleware and handlers for authentication.
package http

import (
	"context"

	sessionDomain "github.com/allisson/accounts/internal/session/domain"
	userDomain "github.com/allisson/accounts/internal/user/domain"
)

// userKey is a context key type for storing authenticated users.
type userKey struct{}

// sessionKey is a context key type for storing the authenticated session.
type sessionKey struct{}

// WithUser stores an authenticated user in the context.
func WithUser(ctx context.Context, user *userDomain.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUser retrieves the authenticated user from the context.
// Returns (user, true) if present, or (nil, false) if no user was set.
func GetUser(ctx context.Context) (*userDomain.User, bool) {
	user, ok := ctx.Value(userKey{}).(*userDomain.User)
	return user, ok
}

// WithSession stores the authenticated session in the context. JWT-based
// requests carry no session, so handlers must tolerate its absence.
func WithSession(ctx context.Context, session *sessionDomain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSession retrieves the authenticated session from the context.
// Returns (session, true) if present, or (nil, false) if no session was set.
func GetSession(ctx context.Context) (*sessionDomain.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(*sessionDomain.Session)
	return session, ok
}
