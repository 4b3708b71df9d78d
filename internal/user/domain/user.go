// Package domain defines the core user domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/accounts/internal/errors"
)

// Account protocol versions. Accounts at ProtocolVersionSessions or later
// authenticate with session tokens; older accounts still hold long-lived JWTs.
const (
	ProtocolVersionLegacy   = "003"
	ProtocolVersionSessions = "004"
)

// User represents an account in the system. EncryptedPassword holds the
// Argon2id hash produced at registration, never the plaintext.
type User struct {
	ID                uuid.UUID
	Email             string
	EncryptedPassword string
	ProtocolVersion   string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SupportsSessions reports whether the account has adopted session-based
// authentication. JWTs are only honored for accounts that never upgraded.
func (u *User) SupportsSessions() bool {
	return u.ProtocolVersion >= ProtocolVersionSessions
}

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same email already exists.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")

	// ErrEmailRequired indicates the email field is required.
	ErrEmailRequired = errors.Wrap(errors.ErrInvalidInput, "email is required")

	// ErrPasswordRequired indicates the password field is required.
	ErrPasswordRequired = errors.Wrap(errors.ErrInvalidInput, "password is required")
)
