// Package repository provides subscription persistence implementations.
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

// PostgreSQLSubscriptionRepository handles subscription persistence for PostgreSQL.
type PostgreSQLSubscriptionRepository struct {
	db *sql.DB
}

// NewPostgreSQLSubscriptionRepository creates a new PostgreSQLSubscriptionRepository.
func NewPostgreSQLSubscriptionRepository(db *sql.DB) *PostgreSQLSubscriptionRepository {
	return &PostgreSQLSubscriptionRepository{db: db}
}

// GetByID retrieves a subscription by its identifier.
func (r *PostgreSQLSubscriptionRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.Subscription, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, kind, regular_subscription_id, ends_at, created_at, updated_at
			  FROM subscriptions WHERE id = $1`

	return scanPostgreSQLSubscription(querier.QueryRowContext(ctx, query, id))
}

// GetByUserID retrieves the user's current subscription. When multiple rows
// exist the most recent one wins.
func (r *PostgreSQLSubscriptionRepository) GetByUserID(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.Subscription, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, kind, regular_subscription_id, ends_at, created_at, updated_at
			  FROM subscriptions WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`

	return scanPostgreSQLSubscription(querier.QueryRowContext(ctx, query, userID))
}

// Create stores a new subscription.
func (r *PostgreSQLSubscriptionRepository) Create(
	ctx context.Context,
	subscription *domain.Subscription,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO subscriptions (id, user_id, kind, regular_subscription_id, ends_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`

	var regularID interface{}
	if subscription.RegularSubscriptionID != nil {
		regularID = *subscription.RegularSubscriptionID
	}

	_, err := querier.ExecContext(ctx, query,
		subscription.ID,
		subscription.UserID,
		string(subscription.Kind),
		regularID,
		subscription.EndsAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create subscription")
	}
	return nil
}

func scanPostgreSQLSubscription(row *sql.Row) (*domain.Subscription, error) {
	var subscription domain.Subscription
	var kind string
	var regularID uuid.NullUUID

	err := row.Scan(
		&subscription.ID,
		&subscription.UserID,
		&kind,
		&regularID,
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

	subscription.Kind = domain.Kind(kind)
	if regularID.Valid {
		id := regularID.UUID
		subscription.RegularSubscriptionID = &id
	}
	return &subscription, nil
}
