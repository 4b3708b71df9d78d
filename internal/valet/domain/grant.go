// Package domain defines valet token grants: short-lived capability tokens
// authorizing a single file-storage operation.
package domain

import (
	"fmt"

	"github.com/google/uuid"

	apperrors "github.com/allisson/accounts/internal/errors"
)

// Operation is the storage operation a grant authorizes.
type Operation string

const (
	OperationRead  Operation = "read"
	OperationWrite Operation = "write"
)

// KnownOperation reports whether op is a supported operation.
func KnownOperation(op Operation) bool {
	return op == OperationRead || op == OperationWrite
}

// Resource names one storage item covered by a grant. Write operations must
// declare the unencrypted size up front or the quota check is meaningless.
type Resource struct {
	Path            string `json:"path"`
	UnencryptedSize *int64 `json:"unencrypted_size,omitempty"`
}

// Grant is the payload of a signed valet token. It carries the performer's
// subscription for audit and the regular subscription that owns the quota,
// together with the usage snapshot at issuance time. Enforcement of the quota
// happens in the storage tier consuming the token.
type Grant struct {
	UserUUID                  uuid.UUID  `json:"user_uuid"`
	PerformerSubscriptionUUID uuid.UUID  `json:"performer_subscription_uuid"`
	RegularSubscriptionUUID   uuid.UUID  `json:"regular_subscription_uuid"`
	Operation                 Operation  `json:"operation"`
	Resources                 []Resource `json:"resources"`
	UploadBytesUsed           int64      `json:"upload_bytes_used"`
	UploadBytesLimit          int64      `json:"upload_bytes_limit"`
}

// DenialReason is the typed reason valet token issuance was refused.
type DenialReason string

const (
	// DenialNoSubscription means the user holds no subscription, or a shared
	// membership with no backing regular subscription.
	DenialNoSubscription DenialReason = "no-subscription"

	// DenialExpiredSubscription means the backing regular subscription's paid
	// period has passed.
	DenialExpiredSubscription DenialReason = "expired-subscription"

	// DenialInvalidParameters means the request itself was malformed, e.g. a
	// write resource without a declared size.
	DenialInvalidParameters DenialReason = "invalid-parameters"
)

// DenialError refuses issuance with a reason the client can act on.
type DenialError struct {
	Reason DenialReason
}

func (e *DenialError) Error() string {
	return fmt.Sprintf("valet token denied: %s", e.Reason)
}

// Unwrap maps parameter problems to invalid input and everything else to
// forbidden, so HTTP adapters pick the right status without inspecting reasons.
func (e *DenialError) Unwrap() error {
	if e.Reason == DenialInvalidParameters {
		return apperrors.ErrInvalidInput
	}
	return apperrors.ErrForbidden
}
