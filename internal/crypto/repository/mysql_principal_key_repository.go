package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/accounts/internal/crypto/domain"
	"github.com/allisson/accounts/internal/database"
	apperrors "github.com/allisson/accounts/internal/errors"
)

// MySQLPrincipalKeyRepository handles wrapped data key persistence for MySQL.
type MySQLPrincipalKeyRepository struct {
	db *sql.DB
}

// NewMySQLPrincipalKeyRepository creates a new MySQLPrincipalKeyRepository.
func NewMySQLPrincipalKeyRepository(db *sql.DB) *MySQLPrincipalKeyRepository {
	return &MySQLPrincipalKeyRepository{db: db}
}

// Get retrieves the wrapped data key for a principal.
func (r *MySQLPrincipalKeyRepository) Get(
	ctx context.Context,
	userUUID uuid.UUID,
) (*cryptoDomain.PrincipalKey, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT user_id, key_version, wrapped_key FROM principal_keys WHERE user_id = ?`

	userIDBytes, err := userUUID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	var key cryptoDomain.PrincipalKey
	var rowUserID []byte
	var version int
	var payload []byte
	err = querier.QueryRowContext(ctx, query, userIDBytes).Scan(&rowUserID, &version, &payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cryptoDomain.ErrPrincipalKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get principal key")
	}

	if err := key.UserUUID.UnmarshalBinary(rowUserID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user UUID")
	}
	key.WrappedKey = cryptoDomain.EncryptedValue{
		Version: cryptoDomain.EncryptionVersion(version),
		Payload: payload,
	}
	return &key, nil
}

// CreateIfAbsent stores a wrapped key only when the principal has none yet.
func (r *MySQLPrincipalKeyRepository) CreateIfAbsent(
	ctx context.Context,
	key *cryptoDomain.PrincipalKey,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT IGNORE INTO principal_keys (user_id, key_version, wrapped_key, created_at)
			  VALUES (?, ?, ?, NOW())`

	userIDBytes, err := key.UserUUID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(ctx, query, userIDBytes, int(key.WrappedKey.Version), key.WrappedKey.Payload)
	if err != nil {
		return apperrors.Wrap(err, "failed to create principal key")
	}
	return nil
}
