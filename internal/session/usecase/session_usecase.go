package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/accounts/internal/database"
	apperrors "github.com/allisson/accounts/internal/errors"
	"github.com/allisson/accounts/internal/session/domain"
	"github.com/allisson/accounts/internal/session/service"
	userDomain "github.com/allisson/accounts/internal/user/domain"
)

// sessionManager implements SessionManager.
type sessionManager struct {
	txManager     database.TxManager
	sessionRepo   SessionRepository
	ephemeralRepo EphemeralSessionRepository
	revokedRepo   RevokedSessionRepository
	tokenService  service.TokenService
	deviceService service.DeviceService
	accessTTL     time.Duration
	refreshTTL    time.Duration
	ephemeralTTL  time.Duration
	logger        *slog.Logger
}

// CreateSession issues a new session for the user.
func (s *sessionManager) CreateSession(
	ctx context.Context,
	user *userDomain.User,
	apiVersion string,
	userAgent string,
	ephemeral bool,
) (*domain.Session, *domain.SessionBody, error) {
	accessSecret, accessHash, err := s.tokenService.GenerateSecret()
	if err != nil {
		return nil, nil, err
	}
	refreshSecret, refreshHash, err := s.tokenService.GenerateSecret()
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:                 uuid.Must(uuid.NewV7()),
		UserID:             user.ID,
		APIVersion:         apiVersion,
		UserAgent:          userAgent,
		HashedAccessToken:  accessHash,
		HashedRefreshToken: refreshHash,
		AccessExpiration:   now.Add(s.accessTTL),
		RefreshExpiration:  now.Add(s.refreshTTL),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if ephemeral {
		err = s.ephemeralRepo.Create(ctx, session)
	} else {
		err = s.sessionRepo.Create(ctx, session)
	}
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("session created",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", user.ID.String()),
		slog.Bool("ephemeral", ephemeral),
	)

	return session, s.sessionBody(session, accessSecret, refreshSecret), nil
}

// RefreshTokens regenerates both secrets and expirations in place. The new
// hashed pair is re-persisted to the primary store and, when the session also
// lives in the ephemeral store, to that store too.
func (s *sessionManager) RefreshTokens(
	ctx context.Context,
	session *domain.Session,
) (*domain.SessionBody, error) {
	accessSecret, accessHash, err := s.tokenService.GenerateSecret()
	if err != nil {
		return nil, err
	}
	refreshSecret, refreshHash, err := s.tokenService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session.HashedAccessToken = accessHash
	session.HashedRefreshToken = refreshHash
	session.AccessExpiration = now.Add(s.accessTTL)
	session.RefreshExpiration = now.Add(s.refreshTTL)
	session.UpdatedAt = now

	updated := false
	if err := s.sessionRepo.UpdateTokens(ctx, session); err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	} else {
		updated = true
	}
	if err := s.ephemeralRepo.UpdateTokens(ctx, session); err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	} else {
		updated = true
	}
	if !updated {
		return nil, domain.ErrSessionNotFound
	}

	s.logger.Info("session refreshed", slog.String("session_id", session.ID.String()))

	return s.sessionBody(session, accessSecret, refreshSecret), nil
}

// ValidateRefreshToken checks a presented refresh token against the session.
func (s *sessionManager) ValidateRefreshToken(session *domain.Session, presentedToken string) bool {
	token, err := domain.ParseBearerToken(presentedToken)
	if err != nil {
		return false
	}
	if token.SessionID != session.ID {
		return false
	}
	return s.tokenService.CompareHashes(s.tokenService.HashToken(token.Secret), session.HashedRefreshToken)
}

// GetSession looks a session up by identity in either store.
func (s *sessionManager) GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return s.lookupSession(ctx, id)
}

// ListSessions returns the user's long-lived sessions.
func (s *sessionManager) ListSessions(ctx context.Context, userID uuid.UUID) ([]*domain.Session, error) {
	return s.sessionRepo.ListByUserID(ctx, userID)
}

// ResolveSessionFromToken parses a bearer token and resolves the live session.
func (s *sessionManager) ResolveSessionFromToken(
	ctx context.Context,
	token string,
) (*domain.Session, error) {
	parsed, err := domain.ParseBearerToken(token)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}

	session, err := s.lookupSession(ctx, parsed.SessionID)
	if err != nil {
		return nil, err
	}

	if !s.tokenService.CompareHashes(s.tokenService.HashToken(parsed.Secret), session.HashedAccessToken) {
		return nil, domain.ErrSessionNotFound
	}

	return session, nil
}

// lookupSession checks the ephemeral store first, then the primary store.
// Transport errors propagate untouched so callers never mistake an outage for
// a missing session.
func (s *sessionManager) lookupSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	session, err := s.ephemeralRepo.GetByID(ctx, id)
	if err == nil {
		return session, nil
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	session, err = s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// RevokeAndRecord writes a revocation marker and removes the session. Both
// writes happen in one transaction so a crash can't leave a revoked session
// still resolvable.
func (s *sessionManager) RevokeAndRecord(
	ctx context.Context,
	session *domain.Session,
) (*domain.RevokedSession, error) {
	revoked := &domain.RevokedSession{
		ID:        session.ID,
		UserID:    session.UserID,
		Received:  false,
		CreatedAt: time.Now().UTC(),
	}

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := s.revokedRepo.Create(ctx, revoked); err != nil {
			return err
		}
		return s.DeleteSession(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("session revoked",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", session.UserID.String()),
	)

	return revoked, nil
}

// RevokeAllForUser revokes every long-lived session the user holds.
func (s *sessionManager) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	sessions, err := s.sessionRepo.ListByUserID(ctx, userID)
	if err != nil {
		return err
	}
	for _, session := range sessions {
		if _, err := s.RevokeAndRecord(ctx, session); err != nil {
			return err
		}
	}
	return nil
}

// DeleteSession removes the session from both stores. Not-found is tolerated
// on either store since the session only lives in one of them.
func (s *sessionManager) DeleteSession(ctx context.Context, session *domain.Session) error {
	if err := s.sessionRepo.Delete(ctx, session.ID); err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if err := s.ephemeralRepo.Delete(ctx, session.ID); err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return nil
}

// DescribeDevice renders the session's user agent as a human description.
func (s *sessionManager) DescribeDevice(session *domain.Session) string {
	return s.deviceService.DescribeDevice(session.UserAgent)
}

// CleanupExpired prunes dead sessions from both stores. With dryRun the rows
// are only counted, never deleted.
func (s *sessionManager) CleanupExpired(ctx context.Context, dryRun bool) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.ephemeralTTL)

	if dryRun {
		expired, err := s.sessionRepo.CountExpired(ctx)
		if err != nil {
			return 0, err
		}
		stale, err := s.ephemeralRepo.CountOlderThan(ctx, cutoff)
		if err != nil {
			return expired, err
		}
		return expired + stale, nil
	}

	removed, err := s.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}

	pruned, err := s.ephemeralRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return removed, err
	}

	return removed + pruned, nil
}

func (s *sessionManager) sessionBody(
	session *domain.Session,
	accessSecret string,
	refreshSecret string,
) *domain.SessionBody {
	return &domain.SessionBody{
		AccessToken:       domain.FormatBearerToken(session.ID, accessSecret),
		RefreshToken:      domain.FormatBearerToken(session.ID, refreshSecret),
		AccessExpiration:  session.AccessExpiration,
		RefreshExpiration: session.RefreshExpiration,
		ReadonlyAccess:    false,
	}
}

// NewSessionManager creates a SessionManager.
func NewSessionManager(
	txManager database.TxManager,
	sessionRepo SessionRepository,
	ephemeralRepo EphemeralSessionRepository,
	revokedRepo RevokedSessionRepository,
	tokenService service.TokenService,
	deviceService service.DeviceService,
	accessTTL time.Duration,
	refreshTTL time.Duration,
	ephemeralTTL time.Duration,
	logger *slog.Logger,
) SessionManager {
	return &sessionManager{
		txManager:     txManager,
		sessionRepo:   sessionRepo,
		ephemeralRepo: ephemeralRepo,
		revokedRepo:   revokedRepo,
		tokenService:  tokenService,
		deviceService: deviceService,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		ephemeralTTL:  ephemeralTTL,
		logger:        logger,
	}
}
