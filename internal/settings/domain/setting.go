// Package domain defines versioned settings stored per user or per
// subscription.
package domain

import (
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/accounts/internal/crypto/domain"
	"github.com/allisson/accounts/internal/errors"
)

// Well-known setting names consumed by valet token issuance. Both are scoped
// to the regular subscription whose quota they describe.
const (
	NameUploadBytesUsed  = "upload-bytes-used"
	NameUploadBytesLimit = "upload-bytes-limit"
)

// Setting is a named value owned by a user, optionally scoped to one of their
// subscriptions. The value is a versioned envelope; the version alone decides
// how reads decode it.
type Setting struct {
	ID             uuid.UUID                   `json:"id"`
	UserID         uuid.UUID                   `json:"user_id"`
	SubscriptionID *uuid.UUID                  `json:"subscription_id,omitempty"`
	Name           string                      `json:"name"`
	Value          cryptoDomain.EncryptedValue `json:"value"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}

// Scope selects the rows a lookup applies to. SubscriptionID narrows the
// lookup to one subscription; UserID is always the owning principal whose data
// key decrypts the value.
type Scope struct {
	UserID         uuid.UUID
	SubscriptionID *uuid.UUID
}

// Domain errors for settings operations.
var (
	// ErrSettingNotFound indicates no setting row exists for the scope and name.
	ErrSettingNotFound = errors.Wrap(errors.ErrNotFound, "setting not found")
)
