package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/accounts/internal/database"
	apperrors "github.com/allisson/accounts/internal/errors"
	"github.com/allisson/accounts/internal/session/domain"
)

// MySQLRevokedSessionRepository handles revocation marker persistence for MySQL.
type MySQLRevokedSessionRepository struct {
	db *sql.DB
}

// NewMySQLRevokedSessionRepository creates a new MySQLRevokedSessionRepository.
func NewMySQLRevokedSessionRepository(db *sql.DB) *MySQLRevokedSessionRepository {
	return &MySQLRevokedSessionRepository{db: db}
}

// GetByID retrieves a revocation marker by session ID.
func (r *MySQLRevokedSessionRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.RevokedSession, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, received, created_at FROM revoked_sessions WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	var revoked domain.RevokedSession
	var rowID, rowUserID []byte
	err = querier.QueryRowContext(ctx, query, idBytes).Scan(
		&rowID,
		&rowUserID,
		&revoked.Received,
		&revoked.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRevokedSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get revoked session by id")
	}

	if err := revoked.ID.UnmarshalBinary(rowID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal session UUID")
	}
	if err := revoked.UserID.UnmarshalBinary(rowUserID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user UUID")
	}

	return &revoked, nil
}

// Create inserts a revocation marker, idempotent on conflict.
func (r *MySQLRevokedSessionRepository) Create(
	ctx context.Context,
	revoked *domain.RevokedSession,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT IGNORE INTO revoked_sessions (id, user_id, received, created_at)
			  VALUES (?, ?, ?, ?)`

	idBytes, err := revoked.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	userIDBytes, err := revoked.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(ctx, query, idBytes, userIDBytes, revoked.Received, revoked.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create revoked session")
	}
	return nil
}

// MarkReceived flags that the token holder has been informed of the revocation.
func (r *MySQLRevokedSessionRepository) MarkReceived(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	// MySQL reports zero affected rows when the value is unchanged, so a
	// repeat MarkReceived is indistinguishable from a missing marker here.
	// The operation is idempotent either way.
	_, err = querier.ExecContext(ctx, `UPDATE revoked_sessions SET received = TRUE WHERE id = ?`, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark revoked session as received")
	}
	return nil
}
