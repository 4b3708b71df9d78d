package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/accounts/internal/database"
	apperrors "github.com/allisson/accounts/internal/errors"
	"github.com/allisson/accounts/internal/session/domain"
)

// PostgreSQLEphemeralSessionRepository stores short-retention sessions in a
// dedicated table, identical in shape to sessions but pruned by age.
type PostgreSQLEphemeralSessionRepository struct {
	db *sql.DB
}

// NewPostgreSQLEphemeralSessionRepository creates a new PostgreSQLEphemeralSessionRepository.
func NewPostgreSQLEphemeralSessionRepository(db *sql.DB) *PostgreSQLEphemeralSessionRepository {
	return &PostgreSQLEphemeralSessionRepository{db: db}
}

// GetByID retrieves an ephemeral session by ID.
func (r *PostgreSQLEphemeralSessionRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.Session, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, api_version, user_agent, hashed_access_token, hashed_refresh_token,
					 access_expiration, refresh_expiration, created_at, updated_at
			  FROM ephemeral_sessions WHERE id = $1`

	var session domain.Session
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.APIVersion,
		&session.UserAgent,
		&session.HashedAccessToken,
		&session.HashedRefreshToken,
		&session.AccessExpiration,
		&session.RefreshExpiration,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get ephemeral session by id")
	}

	return &session, nil
}

// Create inserts a new ephemeral session.
func (r *PostgreSQLEphemeralSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO ephemeral_sessions (id, user_id, api_version, user_agent, hashed_access_token,
				  hashed_refresh_token, access_expiration, refresh_expiration, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		session.ID,
		session.UserID,
		session.APIVersion,
		session.UserAgent,
		session.HashedAccessToken,
		session.HashedRefreshToken,
		session.AccessExpiration,
		session.RefreshExpiration,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create ephemeral session")
	}
	return nil
}

// UpdateTokens re-persists hashed tokens and expirations atomically.
func (r *PostgreSQLEphemeralSessionRepository) UpdateTokens(
	ctx context.Context,
	session *domain.Session,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE ephemeral_sessions
			  SET hashed_access_token = $1, hashed_refresh_token = $2,
				  access_expiration = $3, refresh_expiration = $4, updated_at = $5
			  WHERE id = $6`

	result, err := querier.ExecContext(
		ctx,
		query,
		session.HashedAccessToken,
		session.HashedRefreshToken,
		session.AccessExpiration,
		session.RefreshExpiration,
		session.UpdatedAt,
		session.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update ephemeral session tokens")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update ephemeral session tokens")
	}
	if rows == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Delete removes an ephemeral session.
func (r *PostgreSQLEphemeralSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM ephemeral_sessions WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete ephemeral session")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete ephemeral session")
	}
	if rows == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// DeleteOlderThan prunes ephemeral sessions created before the cutoff.
func (r *PostgreSQLEphemeralSessionRepository) DeleteOlderThan(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM ephemeral_sessions WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to prune ephemeral sessions")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to prune ephemeral sessions")
	}
	return rows, nil
}

// CountOlderThan counts ephemeral sessions created before the cutoff without deleting them.
func (r *PostgreSQLEphemeralSessionRepository) CountOlderThan(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var count int64
	query := `SELECT COUNT(*) FROM ephemeral_sessions WHERE created_at < $1`
	if err := querier.QueryRowContext(ctx, query, cutoff).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count stale ephemeral sessions")
	}
	return count, nil
}
