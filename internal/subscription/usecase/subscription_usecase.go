// Package usecase implements subscription resolution for quota-gated
// operations.
package usecase

import (
	"context"

	"github.com/google/uuid"

	apperrors "github.com/allisson/accounts/internal/errors"
	"github.com/allisson/accounts/internal/subscription/domain"
)

// SubscriptionRepository interface defines subscription repository operations.
type SubscriptionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error)
	Create(ctx context.Context, subscription *domain.Subscription) error
}

// UseCase defines the subscription business operations.
type UseCase interface {
	// ResolveRegularSubscription resolves the user's subscription together
	// with the regular subscription that backs it. For regular holders both
	// values are the same row; for shared memberships the second value is the
	// paying subscription whose quota the user consumes.
	ResolveRegularSubscription(
		ctx context.Context,
		userID uuid.UUID,
	) (performer *domain.Subscription, regular *domain.Subscription, err error)
}

// SubscriptionUseCase handles subscription-related business logic.
type SubscriptionUseCase struct {
	subscriptionRepo SubscriptionRepository
}

// NewSubscriptionUseCase creates a new SubscriptionUseCase.
func NewSubscriptionUseCase(subscriptionRepo SubscriptionRepository) UseCase {
	return &SubscriptionUseCase{subscriptionRepo: subscriptionRepo}
}

// ResolveRegularSubscription resolves the user's subscription and its backing
// regular subscription.
func (uc *SubscriptionUseCase) ResolveRegularSubscription(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.Subscription, *domain.Subscription, error) {
	performer, err := uc.subscriptionRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if !performer.IsShared() {
		return performer, performer, nil
	}

	// A shared membership without a backing subscription grants nothing.
	if performer.RegularSubscriptionID == nil {
		return performer, nil, domain.ErrSubscriptionNotFound
	}

	regular, err := uc.subscriptionRepo.GetByID(ctx, *performer.RegularSubscriptionID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return performer, nil, domain.ErrSubscriptionNotFound
		}
		return nil, nil, err
	}

	return performer, regular, nil
}
