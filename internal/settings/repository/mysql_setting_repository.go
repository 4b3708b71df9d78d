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

// MySQLSettingRepository handles setting persistence for MySQL.
type MySQLSettingRepository struct {
	db *sql.DB
}

// NewMySQLSettingRepository creates a new MySQLSettingRepository.
func NewMySQLSettingRepository(db *sql.DB) *MySQLSettingRepository {
	return &MySQLSettingRepository{db: db}
}

// Get retrieves a setting by scope and name.
func (r *MySQLSettingRepository) Get(
	ctx context.Context,
	scope domain.Scope,
	name string,
) (*domain.Setting, error) {
	querier := database.GetTx(ctx, r.db)

	userIDBytes, err := scope.UserID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT id, user_id, subscription_id, name, value_version, value_payload, created_at, updated_at
			  FROM settings WHERE user_id = ? AND name = ? AND subscription_id IS NULL`
	args := []interface{}{userIDBytes, name}
	if scope.SubscriptionID != nil {
		subscriptionIDBytes, marshalErr := scope.SubscriptionID.MarshalBinary()
		if marshalErr != nil {
			return nil, apperrors.Wrap(marshalErr, "failed to marshal UUID")
		}
		query = `SELECT id, user_id, subscription_id, name, value_version, value_payload, created_at, updated_at
				 FROM settings WHERE user_id = ? AND name = ? AND subscription_id = ?`
		args = append(args, subscriptionIDBytes)
	}

	var setting domain.Setting
	var rowID, rowUserID, rowSubscriptionID []byte
	var version int
	err = querier.QueryRowContext(ctx, query, args...).Scan(
		&rowID,
		&rowUserID,
		&rowSubscriptionID,
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

	if err := setting.ID.UnmarshalBinary(rowID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal setting UUID")
	}
	if err := setting.UserID.UnmarshalBinary(rowUserID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user UUID")
	}
	if len(rowSubscriptionID) > 0 {
		var subscriptionID uuid.UUID
		if err := subscriptionID.UnmarshalBinary(rowSubscriptionID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal subscription UUID")
		}
		setting.SubscriptionID = &subscriptionID
	}
	setting.Value.Version = cryptoDomain.EncryptionVersion(version)
	return &setting, nil
}

// Create stores a new setting.
func (r *MySQLSettingRepository) Create(ctx context.Context, setting *domain.Setting) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO settings (id, user_id, subscription_id, name, value_version, value_payload, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())`

	idBytes, err := setting.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	userIDBytes, err := setting.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	var subscriptionIDBytes interface{}
	if setting.SubscriptionID != nil {
		subscriptionIDBytes, err = setting.SubscriptionID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal UUID")
		}
	}

	_, err = querier.ExecContext(ctx, query,
		idBytes,
		userIDBytes,
		subscriptionIDBytes,
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
// MySQL reports zero affected rows when the value is unchanged, so the result
// is not used to detect a missing row.
func (r *MySQLSettingRepository) UpdateValue(ctx context.Context, setting *domain.Setting) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE settings SET value_version = ?, value_payload = ?, updated_at = NOW() WHERE id = ?`

	idBytes, err := setting.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(ctx, query,
		int(setting.Value.Version),
		setting.Value.Payload,
		idBytes,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update setting")
	}
	return nil
}
