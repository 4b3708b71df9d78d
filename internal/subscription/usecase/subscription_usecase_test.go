package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/accounts/internal/errors"
	"github.com/allisson/accounts/internal/subscription/domain"
)

// MockSubscriptionRepository is a mock implementation of SubscriptionRepository.
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) GetByUserID(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Create(
	ctx context.Context,
	subscription *domain.Subscription,
) error {
	args := m.Called(ctx, subscription)
	return args.Error(0)
}

func regularSubscription(userID uuid.UUID) *domain.Subscription {
	now := time.Now().UTC()
	return &domain.Subscription{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    userID,
		Kind:      domain.KindRegular,
		EndsAt:    now.Add(30 * 24 * time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func sharedSubscription(userID uuid.UUID, regularID uuid.UUID) *domain.Subscription {
	subscription := regularSubscription(userID)
	subscription.Kind = domain.KindShared
	subscription.RegularSubscriptionID = &regularID
	return subscription
}

func TestSubscriptionUseCase_ResolveRegularSubscription(t *testing.T) {
	t.Run("regular holder backs itself", func(t *testing.T) {
		repo := &MockSubscriptionRepository{}
		useCase := NewSubscriptionUseCase(repo)
		userID := uuid.Must(uuid.NewV7())
		subscription := regularSubscription(userID)

		repo.On("GetByUserID", mock.Anything, userID).Return(subscription, nil)

		performer, regular, err := useCase.ResolveRegularSubscription(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, subscription, performer)
		assert.Equal(t, subscription, regular)

		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("shared membership resolves its backing subscription", func(t *testing.T) {
		repo := &MockSubscriptionRepository{}
		useCase := NewSubscriptionUseCase(repo)
		payerID := uuid.Must(uuid.NewV7())
		memberID := uuid.Must(uuid.NewV7())
		backing := regularSubscription(payerID)
		shared := sharedSubscription(memberID, backing.ID)

		repo.On("GetByUserID", mock.Anything, memberID).Return(shared, nil)
		repo.On("GetByID", mock.Anything, backing.ID).Return(backing, nil)

		performer, regular, err := useCase.ResolveRegularSubscription(context.Background(), memberID)
		require.NoError(t, err)
		assert.Equal(t, shared, performer)
		assert.Equal(t, backing, regular)
	})

	t.Run("no subscription at all", func(t *testing.T) {
		repo := &MockSubscriptionRepository{}
		useCase := NewSubscriptionUseCase(repo)
		userID := uuid.Must(uuid.NewV7())

		repo.On("GetByUserID", mock.Anything, userID).
			Return(nil, domain.ErrSubscriptionNotFound)

		_, _, err := useCase.ResolveRegularSubscription(context.Background(), userID)
		assert.True(t, apperrors.Is(err, domain.ErrSubscriptionNotFound))
	})

	t.Run("shared membership without backing subscription", func(t *testing.T) {
		repo := &MockSubscriptionRepository{}
		useCase := NewSubscriptionUseCase(repo)
		memberID := uuid.Must(uuid.NewV7())
		shared := sharedSubscription(memberID, uuid.Nil)
		shared.RegularSubscriptionID = nil

		repo.On("GetByUserID", mock.Anything, memberID).Return(shared, nil)

		performer, regular, err := useCase.ResolveRegularSubscription(context.Background(), memberID)
		assert.Equal(t, shared, performer)
		assert.Nil(t, regular)
		assert.True(t, apperrors.Is(err, domain.ErrSubscriptionNotFound))
	})

	t.Run("dangling backing reference", func(t *testing.T) {
		repo := &MockSubscriptionRepository{}
		useCase := NewSubscriptionUseCase(repo)
		memberID := uuid.Must(uuid.NewV7())
		missingID := uuid.Must(uuid.NewV7())
		shared := sharedSubscription(memberID, missingID)

		repo.On("GetByUserID", mock.Anything, memberID).Return(shared, nil)
		repo.On("GetByID", mock.Anything, missingID).
			Return(nil, domain.ErrSubscriptionNotFound)

		_, regular, err := useCase.ResolveRegularSubscription(context.Background(), memberID)
		assert.Nil(t, regular)
		assert.True(t, apperrors.Is(err, domain.ErrSubscriptionNotFound))
	})

	t.Run("transport error propagates", func(t *testing.T) {
		repo := &MockSubscriptionRepository{}
		useCase := NewSubscriptionUseCase(repo)
		userID := uuid.Must(uuid.NewV7())
		transportErr := apperrors.Wrap(apperrors.ErrUnavailable, "subscription store timeout")

		repo.On("GetByUserID", mock.Anything, userID).Return(nil, transportErr)

		_, _, err := useCase.ResolveRegularSubscription(context.Background(), userID)
		assert.True(t, apperrors.Is(err, apperrors.ErrUnavailable))
		assert.False(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}
