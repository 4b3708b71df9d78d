package usecase

import (
	"context"
	"log/slog"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/allisson/accounts/internal/auth/domain"
	apperrors "github.com/allisson/accounts/internal/errors"
	sessionDomain "github.com/allisson/accounts/internal/session/domain"
	sessionUsecase "github.com/allisson/accounts/internal/session/usecase"
	userDomain "github.com/allisson/accounts/internal/user/domain"
	userUsecase "github.com/allisson/accounts/internal/user/usecase"
	appValidation "github.com/allisson/accounts/internal/validation"
)

// authUseCase implements UseCase.
type authUseCase struct {
	resolver Resolver
	sessions sessionUsecase.SessionManager
	users    userUsecase.UseCase
	logger   *slog.Logger
}

// NewAuthUseCase creates a UseCase.
func NewAuthUseCase(
	resolver Resolver,
	sessions sessionUsecase.SessionManager,
	users userUsecase.UseCase,
	logger *slog.Logger,
) UseCase {
	return &authUseCase{
		resolver: resolver,
		sessions: sessions,
		users:    users,
		logger:   logger,
	}
}

func (uc *authUseCase) validateSignInInput(input SignInInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// SignIn verifies credentials and creates a session.
func (uc *authUseCase) SignIn(
	ctx context.Context,
	input SignInInput,
) (*sessionDomain.SessionBody, error) {
	if err := uc.validateSignInInput(input); err != nil {
		return nil, err
	}

	user, err := uc.users.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !uc.users.VerifyPassword(user, input.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	_, body, err := uc.sessions.CreateSession(ctx, user, input.APIVersion, input.UserAgent, input.Ephemeral)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("user signed in",
		slog.String("user_id", user.ID.String()),
		slog.Bool("ephemeral", input.Ephemeral),
	)

	return body, nil
}

// Authenticate resolves a bearer token and evaluates the decision rules.
func (uc *authUseCase) Authenticate(ctx context.Context, token string) (domain.Decision, error) {
	method, err := uc.resolver.Resolve(ctx, token)
	if err != nil {
		return domain.Decision{}, err
	}
	return Evaluate(method), nil
}

// RefreshSession rotates the secrets of the session named by the refresh
// token. The presented token must match the stored refresh digest; any
// mismatch collapses to the generic credentials error.
func (uc *authUseCase) RefreshSession(
	ctx context.Context,
	refreshToken string,
) (*sessionDomain.SessionBody, error) {
	bearer, err := sessionDomain.ParseBearerToken(refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	session, err := uc.sessions.GetSession(ctx, bearer.SessionID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !uc.sessions.ValidateRefreshToken(session, refreshToken) {
		return nil, domain.ErrInvalidCredentials
	}
	if session.RefreshExpired(time.Now().UTC()) {
		return nil, domain.ErrInvalidCredentials
	}

	return uc.sessions.RefreshTokens(ctx, session)
}

// SignOut revokes the session and records a revocation marker so other
// devices presenting the old token learn the session was revoked instead of
// seeing it vanish.
func (uc *authUseCase) SignOut(ctx context.Context, session *sessionDomain.Session) error {
	if _, err := uc.sessions.RevokeAndRecord(ctx, session); err != nil {
		return err
	}

	uc.logger.Info("user signed out",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", session.UserID.String()),
	)

	return nil
}

// ChangePassword verifies the current password, persists the new hash and
// revokes every session the user holds so stale credentials die immediately.
func (uc *authUseCase) ChangePassword(
	ctx context.Context,
	user *userDomain.User,
	input ChangePasswordInput,
) error {
	if !uc.users.VerifyPassword(user, input.CurrentPassword) {
		return domain.ErrInvalidCredentials
	}

	if err := uc.users.UpdatePassword(ctx, user.ID, input.NewPassword); err != nil {
		return err
	}

	if err := uc.sessions.RevokeAllForUser(ctx, user.ID); err != nil {
		return err
	}

	uc.logger.Info("password changed", slog.String("user_id", user.ID.String()))

	return nil
}
