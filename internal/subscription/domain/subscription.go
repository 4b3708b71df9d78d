// Package domain defines subscription entities consumed by valet token
// issuance.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/accounts/internal/errors"
)

// Kind distinguishes paying subscriptions from memberships granted through
// another account.
type Kind string

const (
	// KindRegular is a paying subscription that owns its own quota.
	KindRegular Kind = "regular"

	// KindShared is a membership granted via another account. Quota accounting
	// always happens on the regular subscription that backs it.
	KindShared Kind = "shared"
)

// Subscription is an account's plan membership. Shared subscriptions carry the
// id of the regular subscription backing them.
type Subscription struct {
	ID                    uuid.UUID  `json:"id"`
	UserID                uuid.UUID  `json:"user_id"`
	Kind                  Kind       `json:"kind"`
	RegularSubscriptionID *uuid.UUID `json:"regular_subscription_id,omitempty"`
	EndsAt                time.Time  `json:"ends_at"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// IsShared reports whether the subscription is a shared membership.
func (s *Subscription) IsShared() bool {
	return s.Kind == KindShared
}

// Expired reports whether the subscription's paid period has passed.
func (s *Subscription) Expired(now time.Time) bool {
	return s.EndsAt.Before(now)
}

// Domain errors for subscription operations.
var (
	// ErrSubscriptionNotFound indicates the user holds no subscription, or a
	// shared membership points at a regular subscription that no longer exists.
	ErrSubscriptionNotFound = errors.Wrap(errors.ErrNotFound, "subscription not found")
)
