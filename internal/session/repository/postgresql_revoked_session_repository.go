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

// PostgreSQLRevokedSessionRepository handles revocation marker persistence for PostgreSQL.
type PostgreSQLRevokedSessionRepository struct {
	db *sql.DB
}

// NewPostgreSQLRevokedSessionRepository creates a new PostgreSQLRevokedSessionRepository.
func NewPostgreSQLRevokedSessionRepository(db *sql.DB) *PostgreSQLRevokedSessionRepository {
	return &PostgreSQLRevokedSessionRepository{db: db}
}

// GetByID retrieves a revocation marker by session ID.
func (r *PostgreSQLRevokedSessionRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.RevokedSession, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, received, created_at FROM revoked_sessions WHERE id = $1`

	var revoked domain.RevokedSession
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&revoked.ID,
		&revoked.UserID,
		&revoked.Received,
		&revoked.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRevokedSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get revoked session by id")
	}

	return &revoked, nil
}

// Create inserts a revocation marker. Revoking an already-revoked session is
// idempotent: a conflicting insert leaves the existing marker untouched.
func (r *PostgreSQLRevokedSessionRepository) Create(
	ctx context.Context,
	revoked *domain.RevokedSession,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO revoked_sessions (id, user_id, received, created_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (id) DO NOTHING`

	_, err := querier.ExecContext(ctx, query, revoked.ID, revoked.UserID, revoked.Received, revoked.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create revoked session")
	}
	return nil
}

// MarkReceived flags that the token holder has been informed of the revocation.
func (r *PostgreSQLRevokedSessionRepository) MarkReceived(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `UPDATE revoked_sessions SET received = TRUE WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark revoked session as received")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to mark revoked session as received")
	}
	if rows == 0 {
		return domain.ErrRevokedSessionNotFound
	}
	return nil
}
