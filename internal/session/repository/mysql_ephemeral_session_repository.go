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

// MySQLEphemeralSessionRepository stores short-retention sessions for MySQL.
type MySQLEphemeralSessionRepository struct {
	db *sql.DB
}

// NewMySQLEphemeralSessionRepository creates a new MySQLEphemeralSessionRepository.
func NewMySQLEphemeralSessionRepository(db *sql.DB) *MySQLEphemeralSessionRepository {
	return &MySQLEphemeralSessionRepository{db: db}
}

// GetByID retrieves an ephemeral session by ID.
func (r *MySQLEphemeralSessionRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.Session, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, api_version, user_agent, hashed_access_token, hashed_refresh_token,
					 access_expiration, refresh_expiration, created_at, updated_at
			  FROM ephemeral_sessions WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	session, err := scanSessionRow(querier.QueryRowContext(ctx, query, idBytes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get ephemeral session by id")
	}
	return session, nil
}

// Create inserts a new ephemeral session.
func (r *MySQLEphemeralSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO ephemeral_sessions (id, user_id, api_version, user_agent, hashed_access_token,
				  hashed_refresh_token, access_expiration, refresh_expiration, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	idBytes, err := session.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	userIDBytes, err := session.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
		userIDBytes,
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
func (r *MySQLEphemeralSessionRepository) UpdateTokens(
	ctx context.Context,
	session *domain.Session,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE ephemeral_sessions
			  SET hashed_access_token = ?, hashed_refresh_token = ?,
				  access_expiration = ?, refresh_expiration = ?, updated_at = ?
			  WHERE id = ?`

	idBytes, err := session.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(
		ctx,
		query,
		session.HashedAccessToken,
		session.HashedRefreshToken,
		session.AccessExpiration,
		session.RefreshExpiration,
		session.UpdatedAt,
		idBytes,
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
func (r *MySQLEphemeralSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM ephemeral_sessions WHERE id = ?`, idBytes)
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
func (r *MySQLEphemeralSessionRepository) DeleteOlderThan(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM ephemeral_sessions WHERE created_at < ?`, cutoff)
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
func (r *MySQLEphemeralSessionRepository) CountOlderThan(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var count int64
	query := `SELECT COUNT(*) FROM ephemeral_sessions WHERE created_at < ?`
	if err := querier.QueryRowContext(ctx, query, cutoff).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count stale ephemeral sessions")
	}
	return count, nil
}
