// Package repository implements persistence for wrapped per-principal data keys.
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

// PostgreSQLPrincipalKeyRepository handles wrapped data key persistence for PostgreSQL.
type PostgreSQLPrincipalKeyRepository struct {
	db *sql.DB
}

// NewPostgreSQLPrincipalKeyRepository creates a new PostgreSQLPrincipalKeyRepository.
func NewPostgreSQLPrincipalKeyRepository(db *sql.DB) *PostgreSQLPrincipalKeyRepository {
	return &PostgreSQLPrincipalKeyRepository{db: db}
}

// Get retrieves the wrapped data key for a principal.
func (r *PostgreSQLPrincipalKeyRepository) Get(
	ctx context.Context,
	userUUID uuid.UUID,
) (*cryptoDomain.PrincipalKey, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT user_id, key_version, wrapped_key FROM principal_keys WHERE user_id = $1`

	var key cryptoDomain.PrincipalKey
	var version int
	var payload []byte
	err := querier.QueryRowContext(ctx, query, userUUID).Scan(&key.UserUUID, &version, &payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cryptoDomain.ErrPrincipalKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get principal key")
	}

	key.WrappedKey = cryptoDomain.EncryptedValue{
		Version: cryptoDomain.EncryptionVersion(version),
		Payload: payload,
	}
	return &key, nil
}

// CreateIfAbsent stores a wrapped key only when the principal has none yet.
// Two concurrent first uses both issue this insert; the conflict clause keeps
// one winner and the loser proceeds by re-reading.
func (r *PostgreSQLPrincipalKeyRepository) CreateIfAbsent(
	ctx context.Context,
	key *cryptoDomain.PrincipalKey,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO principal_keys (user_id, key_version, wrapped_key, created_at)
			  VALUES ($1, $2, $3, NOW())
			  ON CONFLICT (user_id) DO NOTHING`

	_, err := querier.ExecContext(ctx, query, key.UserUUID, int(key.WrappedKey.Version), key.WrappedKey.Payload)
	if err != nil {
		return apperrors.Wrap(err, "failed to create principal key")
	}
	return nil
}
