package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	sessionDomain "github.com/allisson/accounts/internal/session/domain"
	userDomain "github.com/allisson/accounts/internal/user/domain"
	userUsecase "github.com/allisson/accounts/internal/user/usecase"
)

// MockSessionManager is a mock implementation of sessionUsecase.SessionManager.
type MockSessionManager struct {
	mock.Mock
}

func (m *MockSessionManager) CreateSession(
	ctx context.Context,
	user *userDomain.User,
	apiVersion string,
	userAgent string,
	ephemeral bool,
) (*sessionDomain.Session, *sessionDomain.SessionBody, error) {
	args := m.Called(ctx, user, apiVersion, userAgent, ephemeral)
	var session *sessionDomain.Session
	var body *sessionDomain.SessionBody
	if args.Get(0) != nil {
		session = args.Get(0).(*sessionDomain.Session)
	}
	if args.Get(1) != nil {
		body = args.Get(1).(*sessionDomain.SessionBody)
	}
	return session, body, args.Error(2)
}

func (m *MockSessionManager) RefreshTokens(
	ctx context.Context,
	session *sessionDomain.Session,
) (*sessionDomain.SessionBody, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.SessionBody), args.Error(1)
}

func (m *MockSessionManager) ValidateRefreshToken(
	session *sessionDomain.Session,
	presentedToken string,
) bool {
	args := m.Called(session, presentedToken)
	return args.Bool(0)
}

func (m *MockSessionManager) GetSession(
	ctx context.Context,
	id uuid.UUID,
) (*sessionDomain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.Session), args.Error(1)
}

func (m *MockSessionManager) ListSessions(
	ctx context.Context,
	userID uuid.UUID,
) ([]*sessionDomain.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sessionDomain.Session), args.Error(1)
}

func (m *MockSessionManager) ResolveSessionFromToken(
	ctx context.Context,
	token string,
) (*sessionDomain.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.Session), args.Error(1)
}

func (m *MockSessionManager) RevokeAndRecord(
	ctx context.Context,
	session *sessionDomain.Session,
) (*sessionDomain.RevokedSession, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.RevokedSession), args.Error(1)
}

func (m *MockSessionManager) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockSessionManager) DeleteSession(
	ctx context.Context,
	session *sessionDomain.Session,
) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionManager) DescribeDevice(session *sessionDomain.Session) string {
	args := m.Called(session)
	return args.String(0)
}

func (m *MockSessionManager) CleanupExpired(ctx context.Context, dryRun bool) (int64, error) {
	args := m.Called(ctx, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserUseCase is a mock implementation of userUsecase.UseCase.
type MockUserUseCase struct {
	mock.Mock
}

func (m *MockUserUseCase) RegisterUser(
	ctx context.Context,
	input userUsecase.RegisterUserInput,
) (*userDomain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *MockUserUseCase) GetUserByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *MockUserUseCase) GetUserByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *MockUserUseCase) VerifyPassword(user *userDomain.User, password string) bool {
	args := m.Called(user, password)
	return args.Bool(0)
}

func (m *MockUserUseCase) HashPassword(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockUserUseCase) UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	args := m.Called(ctx, id, newPassword)
	return args.Error(0)
}

// MockRevokedSessionRepository is a mock implementation of
// sessionUsecase.RevokedSessionRepository.
type MockRevokedSessionRepository struct {
	mock.Mock
}

func (m *MockRevokedSessionRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*sessionDomain.RevokedSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.RevokedSession), args.Error(1)
}

func (m *MockRevokedSessionRepository) Create(
	ctx context.Context,
	revoked *sessionDomain.RevokedSession,
) error {
	args := m.Called(ctx, revoked)
	return args.Error(0)
}

func (m *MockRevokedSessionRepository) MarkReceived(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestUser(protocolVersion string) *userDomain.User {
	now := time.Now().UTC()
	return &userDomain.User{
		ID:                uuid.Must(uuid.NewV7()),
		Email:             "alice@example.com",
		EncryptedPassword: "argon2id-hash",
		ProtocolVersion:   protocolVersion,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func newTestSession(userID uuid.UUID) *sessionDomain.Session {
	now := time.Now().UTC()
	return &sessionDomain.Session{
		ID:                 uuid.Must(uuid.NewV7()),
		UserID:             userID,
		APIVersion:         "20240101",
		UserAgent:          "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0",
		HashedAccessToken:  "access-digest",
		HashedRefreshToken: "refresh-digest",
		AccessExpiration:   now.Add(time.Hour),
		RefreshExpiration:  now.Add(24 * time.Hour),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
