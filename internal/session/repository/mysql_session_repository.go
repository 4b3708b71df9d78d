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

// MySQLSessionRepository handles session persistence for MySQL.
type MySQLSessionRepository struct {
	db *sql.DB
}

// NewMySQLSessionRepository creates a new MySQLSessionRepository.
func NewMySQLSessionRepository(db *sql.DB) *MySQLSessionRepository {
	return &MySQLSessionRepository{db: db}
}

// scanSessionRow scans a session row with BINARY(16) UUID columns.
func scanSessionRow(row interface{ Scan(...interface{}) error }) (*domain.Session, error) {
	var session domain.Session
	var idBytes, userIDBytes []byte

	err := row.Scan(
		&idBytes,
		&userIDBytes,
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
		return nil, err
	}

	if err := session.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal session UUID")
	}
	if err := session.UserID.UnmarshalBinary(userIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user UUID")
	}
	return &session, nil
}

// GetByID retrieves a session by ID.
func (r *MySQLSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, api_version, user_agent, hashed_access_token, hashed_refresh_token,
					 access_expiration, refresh_expiration, created_at, updated_at
			  FROM sessions WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	session, err := scanSessionRow(querier.QueryRowContext(ctx, query, idBytes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get session by id")
	}
	return session, nil
}

// ListByUserID retrieves all sessions belonging to a user.
func (r *MySQLSessionRepository) ListByUserID(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Session, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, api_version, user_agent, hashed_access_token, hashed_refresh_token,
					 access_expiration, refresh_expiration, created_at, updated_at
			  FROM sessions WHERE user_id = ?
			  ORDER BY created_at`

	userIDBytes, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	rows, err := querier.QueryContext(ctx, query, userIDBytes)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list sessions by user id")
	}
	defer func() { _ = rows.Close() }()

	var sessions []*domain.Session
	for rows.Next() {
		session, err := scanSessionRow(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan session row")
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate session rows")
	}

	return sessions, nil
}

// Create inserts a new session.
func (r *MySQLSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO sessions (id, user_id, api_version, user_agent, hashed_access_token,
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
		return apperrors.Wrap(err, "failed to create session")
	}
	return nil
}

// UpdateTokens re-persists hashed tokens and expirations atomically.
func (r *MySQLSessionRepository) UpdateTokens(ctx context.Context, session *domain.Session) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sessions
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
func (r *MySQLSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, idBytes)
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
func (r *MySQLSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
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
func (r *MySQLSessionRepository) CountExpired(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var count int64
	query := `SELECT COUNT(*) FROM sessions WHERE refresh_expiration < NOW()`
	if err := querier.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired sessions")
	}
	return count, nil
}
