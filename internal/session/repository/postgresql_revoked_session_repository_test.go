package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/accounts/internal/errors"
	"github.com/allisson/accounts/internal/session/domain"
)

func TestPostgreSQLRevokedSessionRepository_GetByID(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLRevokedSessionRepository(db)
	sessionID := uuid.Must(uuid.NewV7())
	userID := uuid.Must(uuid.NewV7())
	createdAt := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "user_id", "received", "created_at"}).
		AddRow(sessionID, userID, false, createdAt)

	dbMock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, user_id, received, created_at FROM revoked_sessions WHERE id = $1`,
	)).WithArgs(sessionID).WillReturnRows(rows)

	revoked, err := repo.GetByID(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, sessionID, revoked.ID)
	assert.Equal(t, userID, revoked.UserID)
	assert.False(t, revoked.Received)

	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestPostgreSQLRevokedSessionRepository_GetByID_NotFound(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLRevokedSessionRepository(db)
	sessionID := uuid.Must(uuid.NewV7())

	dbMock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, user_id, received, created_at FROM revoked_sessions WHERE id = $1`,
	)).WithArgs(sessionID).WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "received", "created_at"}))

	revoked, err := repo.GetByID(context.Background(), sessionID)
	assert.Nil(t, revoked)
	assert.True(t, apperrors.Is(err, domain.ErrRevokedSessionNotFound))
}

func TestPostgreSQLRevokedSessionRepository_Create(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLRevokedSessionRepository(db)
	revoked := &domain.RevokedSession{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    uuid.Must(uuid.NewV7()),
		Received:  false,
		CreatedAt: time.Now().UTC(),
	}

	t.Run("first revocation inserts", func(t *testing.T) {
		dbMock.ExpectExec(regexp.QuoteMeta(`INSERT INTO revoked_sessions`)).
			WithArgs(revoked.ID, revoked.UserID, revoked.Received, revoked.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(context.Background(), revoked))
	})

	t.Run("repeat revocation is idempotent", func(t *testing.T) {
		dbMock.ExpectExec(regexp.QuoteMeta(`INSERT INTO revoked_sessions`)).
			WithArgs(revoked.ID, revoked.UserID, revoked.Received, revoked.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.Create(context.Background(), revoked))
	})

	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestPostgreSQLRevokedSessionRepository_MarkReceived(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLRevokedSessionRepository(db)
	sessionID := uuid.Must(uuid.NewV7())

	t.Run("marks existing marker", func(t *testing.T) {
		dbMock.ExpectExec(regexp.QuoteMeta(
			`UPDATE revoked_sessions SET received = TRUE WHERE id = $1`,
		)).WithArgs(sessionID).WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.MarkReceived(context.Background(), sessionID))
	})

	t.Run("missing marker yields not found", func(t *testing.T) {
		dbMock.ExpectExec(regexp.QuoteMeta(
			`UPDATE revoked_sessions SET received = TRUE WHERE id = $1`,
		)).WithArgs(sessionID).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkReceived(context.Background(), sessionID)
		assert.True(t, apperrors.Is(err, domain.ErrRevokedSessionNotFound))
	})

	assert.NoError(t, dbMock.ExpectationsWereMet())
}
