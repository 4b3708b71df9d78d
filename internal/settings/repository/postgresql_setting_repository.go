// Package repository provides setting persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/accounts/internal/crypto/domain"
	"github.com/allisson/accounts/internal/database"
	apperrors "github.com/allisson/accounts/internal/errors"
	"github.com/allisson/accounts/internal/settings/domain"
)

// PostgreSQLSettingRepository handles setting persistence for PostgreSQL.
type PostgreSQLSettingRepository struct {
	db *sql.DB
}

// NewPostgreSQLSettingRepository creates a new PostgreSQLSettingRepository.
func NewPostgreSQLSettingRepository(db *sql.DB) *PostgreSQLSettingRepository {
	return &PostgreSQLSettingRepository{db: db}
}

// Get retrieves a setting by scope and name.
func (r *PostgreSQLSettingRepository) Get(
	ctx context.Context,
	scope domain.Scope,
	name string,
) (*domain.Setting, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, subscription_id, name, value_version, value_payload, created_at, updated_at
			  FROM settings WHERE user_id = $1 AND name = $2 AND subscription_id IS NULL`
	args := []interface{}{scope.UserID, name}
	if scope.SubscriptionID != nil {
		query = `SELECT id, user_id, subscription_id, name, value_version, value_payload, created_at, updated_at
				 FROM settings WHERE user_id = $1 AND name = $2 AND subscription_id = $3`
		args = append(args, *scope.SubscriptionID)
	}

	var setting domain.Setting
	var subscriptionID uuid.NullUUID
	var version int
	err := querier.QueryRowContext(ctx, query, args...).Scan(
		&setting.ID,
		&setting.UserID,
		&subscriptionID,
		&setting.Name,
		&version,
		&setting.Value.Payload,
		&setting.CreatedAt,
		&setting.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSettingNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get setting")
	}

	setting.Value.Version = cryptoDomain.EncryptionVersion(version)
	if subscriptionID.Valid {
		id := subscriptionID.UUID
		setting.SubscriptionID = &id
	}
	return &setting, nil
}

// Create stores a new setting.
func (r *PostgreSQLSettingRepository) Create(ctx context.Context, setting *domain.Setting) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO settings (id, user_id, subscription_id, name, value_version, value_payload, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`

	var subscriptionID interface{}
	if setting.SubscriptionID != nil {
		subscriptionID = *setting.SubscriptionID
	}

	_, err := querier.ExecContext(ctx, query,
		setting.ID,
		setting.UserID,
		subscriptionID,
		setting.Name,
		int(setting.Value.Version),
		setting.Value.Payload,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create setting")
	}
	return nil
}

// UpdateValue replaces the stored envelope of an existing setting.
func (r *PostgreSQLSettingRepository) UpdateValue(ctx context.Context, setting *domain.Setting) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE settings SET value_version = $1, value_payload = $2, updated_at = NOW() WHERE id = $3`

	result, err := querier.ExecContext(ctx, query,
		int(setting.Value.Version),
		setting.Value.Payload,
		setting.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update setting")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return domain.ErrSettingNotFound
	}
	return nil
}
