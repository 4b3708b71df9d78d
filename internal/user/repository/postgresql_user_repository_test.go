package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/accounts/internal/errors"
	"github.com/allisson/accounts/internal/testutil"
	"github.com/allisson/accounts/internal/user/domain"
)

func TestNewPostgreSQLUserRepository(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewPostgreSQLUserRepository(db)
	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestPostgreSQLUserRepository_Create(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLUserRepository(db)
	ctx := context.Background()

	uuid1 := uuid.Must(uuid.NewV7())
	user := &domain.User{
		ID:                uuid1,
		Email:             "john@example.com",
		EncryptedPassword: "argon2id-hash",
		ProtocolVersion:   domain.ProtocolVersionSessions,
	}

	err := repo.Create(ctx, user)
	assert.NoError(t, err)

	createdUser, err := repo.GetByID(ctx, uuid1)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, createdUser.ID)
	assert.Equal(t, user.Email, createdUser.Email)
	assert.Equal(t, user.EncryptedPassword, createdUser.EncryptedPassword)
	assert.Equal(t, user.ProtocolVersion, createdUser.ProtocolVersion)
	assert.False(t, createdUser.CreatedAt.IsZero())
	assert.False(t, createdUser.UpdatedAt.IsZero())
}

func TestPostgreSQLUserRepository_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLUserRepository(db)
	ctx := context.Background()

	user := &domain.User{
		ID:                uuid.Must(uuid.NewV7()),
		Email:             "dup@example.com",
		EncryptedPassword: "argon2id-hash",
		ProtocolVersion:   domain.ProtocolVersionSessions,
	}
	require.NoError(t, repo.Create(ctx, user))

	duplicate := &domain.User{
		ID:                uuid.Must(uuid.NewV7()),
		Email:             "dup@example.com",
		EncryptedPassword: "other-hash",
		ProtocolVersion:   domain.ProtocolVersionSessions,
	}
	err := repo.Create(ctx, duplicate)
	assert.True(t, apperrors.Is(err, domain.ErrUserAlreadyExists))
}

func TestPostgreSQLUserRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLUserRepository(db)
	ctx := context.Background()

	notFoundUUID := uuid.Must(uuid.NewV7())
	user, err := repo.GetByID(ctx, notFoundUUID)
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.True(t, apperrors.Is(err, domain.ErrUserNotFound))
}

func TestPostgreSQLUserRepository_GetByEmail(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLUserRepository(db)
	ctx := context.Background()

	uuid1 := uuid.Must(uuid.NewV7())
	expectedUser := &domain.User{
		ID:                uuid1,
		Email:             "john@example.com",
		EncryptedPassword: "argon2id-hash",
		ProtocolVersion:   domain.ProtocolVersionLegacy,
	}
	require.NoError(t, repo.Create(ctx, expectedUser))

	user, err := repo.GetByEmail(ctx, "john@example.com")
	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, expectedUser.ID, user.ID)
	assert.Equal(t, expectedUser.Email, user.Email)
	assert.Equal(t, expectedUser.ProtocolVersion, user.ProtocolVersion)
}

func TestPostgreSQLUserRepository_GetByEmail_NotFound(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLUserRepository(db)
	ctx := context.Background()

	user, err := repo.GetByEmail(ctx, "notfound@example.com")
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.True(t, apperrors.Is(err, domain.ErrUserNotFound))
}

func TestPostgreSQLUserRepository_UpdatePassword(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLUserRepository(db)
	ctx := context.Background()

	uuid1 := uuid.Must(uuid.NewV7())
	user := &domain.User{
		ID:                uuid1,
		Email:             "john@example.com",
		EncryptedPassword: "old-hash",
		ProtocolVersion:   domain.ProtocolVersionSessions,
	}
	require.NoError(t, repo.Create(ctx, user))

	err := repo.UpdatePassword(ctx, uuid1, "new-hash")
	assert.NoError(t, err)

	updated, err := repo.GetByID(ctx, uuid1)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", updated.EncryptedPassword)
}

func TestPostgreSQLUserRepository_UpdatePassword_NotFound(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLUserRepository(db)
	ctx := context.Background()

	err := repo.UpdatePassword(ctx, uuid.Must(uuid.NewV7()), "new-hash")
	assert.True(t, apperrors.Is(err, domain.ErrUserNotFound))
}
