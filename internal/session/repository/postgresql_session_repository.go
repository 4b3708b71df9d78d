// Package repository implements data persistence for sessions, ephemeral
// sessions and revoked-session markers. Repositories support both PostgreSQL
// and MySQL.
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

// PostgreSQLSessionRepository handles session persistence for PostgreSQL.
type PostgreSQLSessionRepository struct {
	db *sql.DB
}

// NewPostgreSQLSessionRepository creates a new PostgreSQLSessionRepository.
func NewPostgreSQLSessionRepository(db *sql.DB) *PostgreSQLSessionRepository {
	return &PostgreSQLSessionRepository{db: db}
}

// GetByID retrieves a session by ID.
func (r *PostgreSQLSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, api_version, user_agent, hashed_access_token, hashed_refresh_token,
					 access_expiration, refresh_expiration, created_at, updated_at
			  FROM sessions WHERE id = $1`

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
		return nil, apperrors.Wrap(err, "failed to get session by id")
	}

	return &session, nil
}

// ListByUserID retrieves all sessions belonging to a user.
func (r *PostgreSQLSessionRepository) ListByUserID(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Session, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, api_version, user_agent, hashed_access_token, hashed_refresh_token,
					 access_expiration, refresh_expiration, created_at, updated_at
			  FROM sessions WHERE user_id = $1
			  ORDER BY created_at`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list sessions by user id")
	}
	defer func() { _ = rows.Close() }()

	var sessions []*domain.Session
	for rows.Next() {
		var session domain.Session
		err := rows.Scan(
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
			return nil, apperrors.Wrap(err, "failed to scan session row")
		}
		sessions = append(sessions, &session)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate session rows")
	}

	return sessions, nil
}

// Create inserts a new session.
func (r *PostgreSQLSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO sessions (id, user_id, api_version, user_agent, hashed_access_token,
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
		return apperrors.Wrap(err, "failed to create session")
	}
	return nil
}

// UpdateTokens re-persists hashed tokens and expirations in a single atomic
// row update, so concurrent refreshes settle last-writer-wins without ever
// exposing a mixed token pair.
func (r *PostgreSQLSessionRepository) UpdateTokens(ctx context.Context, session *domain.Session) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sessions
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
		return apperrors.Wrap(err, "failed to update session tokens")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update session tokens")
	}
	if rows == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Delete removes a session.
func (r *PostgreSQLSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete session")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete session")
	}
	if rows == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// DeleteExpired removes sessions whose refresh expiration has passed.
func (r *PostgreSQLSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_expiration < NOW()`)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired sessions")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired sessions")
	}
	return rows, nil
}

// CountExpired counts sessions whose refresh expiration has passed without deleting them.
func (r *PostgreSQLSessionRepository) CountExpired(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var count int64
	query := `SELECT COUNT(*) FROM sessions WHERE refresh_expiration < NOW()`
	if err := querier.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired sessions")
	}
	return count, nil
}
