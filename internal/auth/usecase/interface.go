// Package usecase implements bearer token resolution, the final
// authentication decision and the sign-in, refresh and password flows.
package usecase

import (
	"context"

	"github.com/allisson/accounts/internal/auth/domain"
	sessionDomain "github.com/allisson/accounts/internal/session/domain"
	userDomain "github.com/allisson/accounts/internal/user/domain"
)

// Resolver determines which authentication strategy a bearer token belongs to.
// The returned error is reserved for dependency failures; an unrecognized
// token resolves to the none method without error.
type Resolver interface {
	Resolve(ctx context.Context, token string) (domain.Method, error)
}

// SignInInput contains the credentials and session parameters for sign-in.
type SignInInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	APIVersion string `json:"api_version"`
	UserAgent  string `json:"-"`
	Ephemeral  bool   `json:"ephemeral"`
}

// ChangePasswordInput carries the current and replacement passwords.
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UseCase defines the authentication business operations.
type UseCase interface {
	// SignIn verifies credentials and creates a session. Unknown email and
	// wrong password both yield domain.ErrInvalidCredentials.
	SignIn(ctx context.Context, input SignInInput) (*sessionDomain.SessionBody, error)

	// Authenticate resolves a bearer token and evaluates the decision rules.
	// The error is reserved for dependency failures; denials are expressed in
	// the decision itself.
	Authenticate(ctx context.Context, token string) (domain.Decision, error)

	// RefreshSession rotates both secrets of the session named by a valid
	// refresh token and returns the new token pair.
	RefreshSession(ctx context.Context, refreshToken string) (*sessionDomain.SessionBody, error)

	// SignOut revokes the session and leaves a revocation marker.
	SignOut(ctx context.Context, session *sessionDomain.Session) error

	// ChangePassword verifies the current password, persists the new hash and
	// revokes every session the user holds.
	ChangePassword(ctx context.Context, user *userDomain.User, input ChangePasswordInput) error
}
