package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/allisson/accounts/internal/auth/domain"
	"github.com/allisson/accounts/internal/auth/service"
	apperrors "github.com/allisson/accounts/internal/errors"
	sessionDomain "github.com/allisson/accounts/internal/session/domain"
	sessionUsecase "github.com/allisson/accounts/internal/session/usecase"
	userDomain "github.com/allisson/accounts/internal/user/domain"
	userUsecase "github.com/allisson/accounts/internal/user/usecase"
)

// resolver implements Resolver. Strategies run in strict order: JWT decode
// first since it needs no store round-trip, then live session lookup, then the
// revoked-session check. The revoked check is last and never skipped so a user
// who changed credentials gets "revoked" instead of an ambiguous "invalid".
type resolver struct {
	jwtCodec    service.JWTCodec
	sessions    sessionUsecase.SessionManager
	revokedRepo sessionUsecase.RevokedSessionRepository
	users       userUsecase.UseCase
	logger      *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(
	jwtCodec service.JWTCodec,
	sessions sessionUsecase.SessionManager,
	revokedRepo sessionUsecase.RevokedSessionRepository,
	users userUsecase.UseCase,
	logger *slog.Logger,
) Resolver {
	return &resolver{
		jwtCodec:    jwtCodec,
		sessions:    sessions,
		revokedRepo: revokedRepo,
		users:       users,
		logger:      logger,
	}
}

// Resolve maps a bearer token to an authentication method, first match wins.
func (r *resolver) Resolve(ctx context.Context, token string) (domain.Method, error) {
	if claims, err := r.jwtCodec.Decode(token); err == nil {
		user, err := r.lookupUserByClaims(ctx, claims)
		if err != nil {
			return domain.NoMethod(), err
		}
		return domain.NewJWTMethod(user, claims), nil
	}

	session, err := r.sessions.ResolveSessionFromToken(ctx, token)
	if err == nil {
		user, err := r.lookupUser(ctx, session.UserID)
		if err != nil {
			return domain.NoMethod(), err
		}
		return domain.NewSessionTokenMethod(user, session), nil
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return domain.NoMethod(), err
	}

	if bearer, parseErr := sessionDomain.ParseBearerToken(token); parseErr == nil {
		revoked, err := r.revokedRepo.GetByID(ctx, bearer.SessionID)
		if err == nil {
			r.markReceived(ctx, revoked)
			return domain.NewRevokedMethod(revoked), nil
		}
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			return domain.NoMethod(), err
		}
	}

	return domain.NoMethod(), nil
}

// lookupUserByClaims resolves the user_uuid claim. A malformed or unknown
// identity leaves the method without a user rather than failing resolution.
func (r *resolver) lookupUserByClaims(
	ctx context.Context,
	claims *domain.TokenClaims,
) (*userDomain.User, error) {
	userID, err := uuid.Parse(claims.UserUUID)
	if err != nil {
		return nil, nil
	}
	return r.lookupUser(ctx, userID)
}

func (r *resolver) lookupUser(ctx context.Context, userID uuid.UUID) (*userDomain.User, error) {
	user, err := r.users.GetUserByID(ctx, userID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// markReceived persists that the token holder has seen the revocation signal.
// The revoked verdict does not depend on this write, so a failure is logged
// and resolution continues.
func (r *resolver) markReceived(ctx context.Context, revoked *sessionDomain.RevokedSession) {
	if revoked.Received {
		return
	}
	if err := r.revokedRepo.MarkReceived(ctx, revoked.ID); err != nil {
		r.logger.Warn("failed to mark revoked session as received",
			slog.String("session_id", revoked.ID.String()),
			slog.String("error", err.Error()),
		)
		return
	}
	revoked.Received = true
}
