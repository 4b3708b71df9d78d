package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/accounts/internal/database"
	apperrors "github.com/allisson/accounts/internal/errors"
	"github.com/allisson/accounts/internal/subscription/domain"
)

// MySQLSubscriptionRepository handles subscription persistence for MySQL.
type MySQLSubscriptionRepository struct {
	db *sql.DB
}

// NewMySQLSubscriptionRepository creates a new MySQLSubscriptionRepository.
func NewMySQLSubscriptionRepository(db *sql.DB) *MySQLSubscriptionRepository {
	return &MySQLSubscriptionRepository{db: db}
}

// GetByID retrieves a subscription by its identifier.
func (r *MySQLSubscriptionRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.Subscription, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, kind, regular_subscription_id, ends_at, created_at, updated_at
			  FROM subscriptions WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	return scanMySQLSubscription(querier.QueryRowContext(ctx, query, idBytes))
}

// GetByUserID retrieves the user's current subscription. When multiple rows
// exist the most recent one wins.
func (r *MySQLSubscriptionRepository) GetByUserID(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.Subscription, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, kind, regular_subscription_id, ends_at, created_at, updated_at
			  FROM subscriptions WHERE user_id = ? ORDER BY created_at DESC LIMIT 1`

	userIDBytes, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	return scanMySQLSubscription(querier.QueryRowContext(ctx, query, userIDBytes))
}

// Create stores a new subscription.
func (r *MySQLSubscriptionRepository) Create(
	ctx context.Context,
	subscription *domain.Subscription,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO subscriptions (id, user_id, kind, regular_subscription_id, ends_at, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, NOW(), NOW())`

	idBytes, err := subscription.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	userIDBytes, err := subscription.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	var regularIDBytes interface{}
	if subscription.RegularSubscriptionID != nil {
		regularIDBytes, err = subscription.RegularSubscriptionID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal UUID")
		}
	}

	_, err = querier.ExecContext(ctx, query,
		idBytes,
		userIDBytes,
		string(subscription.Kind),
		regularIDBytes,
		subscription.EndsAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create subscription")
	}
	return nil
}

func scanMySQLSubscription(row *sql.Row) (*domain.Subscription, error) {
	var subscription domain.Subscription
	var kind string
	var rowID, rowUserID, rowRegularID []byte

	err := row.Scan(
		&rowID,
		&rowUserID,
		&kind,
		&rowRegularID,
		&subscription.EndsAt,
		&subscription.CreatedAt,
		&subscription.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get subscription")
	}

	if err := subscription.ID.UnmarshalBinary(rowID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal subscription UUID")
	}
	if err := subscription.UserID.UnmarshalBinary(rowUserID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user UUID")
	}
	if len(rowRegularID) > 0 {
		var regularID uuid.UUID
		if err := regularID.UnmarshalBinary(rowRegularID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal regular subscription UUID")
		}
		subscription.RegularSubscriptionID = &regularID
	}

	subscription.Kind = domain.Kind(kind)
	return &subscription, nil
}
