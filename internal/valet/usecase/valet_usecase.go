// Package usecase implements valet token issuance: subscription resolution,
// quota snapshot and grant signing.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/accounts/internal/errors"
	settingsDomain "github.com/allisson/accounts/internal/settings/domain"
	settingsUsecase "github.com/allisson/accounts/internal/settings/usecase"
	subscriptionDomain "github.com/allisson/accounts/internal/subscription/domain"
	subscriptionUsecase "github.com/allisson/accounts/internal/subscription/usecase"
	"github.com/allisson/accounts/internal/valet/domain"
	"github.com/allisson/accounts/internal/valet/service"
)

// IssuedToken is a signed grant together with its payload and expiration.
type IssuedToken struct {
	Token     string        `json:"token"`
	Grant     *domain.Grant `json:"grant"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// UseCase defines the valet token business operations.
type UseCase interface {
	// IssueToken checks subscription validity and request shape, snapshots the
	// quota settings of the backing regular subscription and signs a grant.
	// Refusals are *domain.DenialError values.
	IssueToken(
		ctx context.Context,
		userID uuid.UUID,
		operation domain.Operation,
		resources []domain.Resource,
	) (*IssuedToken, error)
}

// ValetUseCase handles valet token issuance.
type ValetUseCase struct {
	subscriptions           subscriptionUsecase.UseCase
	settings                settingsUsecase.UseCase
	grantCodec              service.GrantCodec
	defaultUploadBytesLimit int64
	logger                  *slog.Logger
}

// NewValetUseCase creates a new ValetUseCase.
func NewValetUseCase(
	subscriptions subscriptionUsecase.UseCase,
	settings settingsUsecase.UseCase,
	grantCodec service.GrantCodec,
	defaultUploadBytesLimit int64,
	logger *slog.Logger,
) UseCase {
	return &ValetUseCase{
		subscriptions:           subscriptions,
		settings:                settings,
		grantCodec:              grantCodec,
		defaultUploadBytesLimit: defaultUploadBytesLimit,
		logger:                  logger,
	}
}

// IssueToken issues a signed, time-boxed capability grant.
func (uc *ValetUseCase) IssueToken(
	ctx context.Context,
	userID uuid.UUID,
	operation domain.Operation,
	resources []domain.Resource,
) (*IssuedToken, error) {
	// Request shape problems never reach the stores.
	if err := validateRequest(operation, resources); err != nil {
		return nil, err
	}

	performer, regular, err := uc.subscriptions.ResolveRegularSubscription(ctx, userID)
	if err != nil {
		if apperrors.Is(err, subscriptionDomain.ErrSubscriptionNotFound) {
			return nil, &domain.DenialError{Reason: domain.DenialNoSubscription}
		}
		return nil, err
	}

	if regular.Expired(time.Now().UTC()) {
		return nil, &domain.DenialError{Reason: domain.DenialExpiredSubscription}
	}

	// The quota belongs to the regular subscription: a shared member's writes
	// count against the paying account, never against a quota of their own.
	scope := settingsDomain.Scope{
		UserID:         regular.UserID,
		SubscriptionID: &regular.ID,
	}
	used, err := uc.settings.FindInt64(ctx, scope, settingsDomain.NameUploadBytesUsed, 0)
	if err != nil {
		return nil, err
	}
	limit, err := uc.settings.FindInt64(ctx, scope, settingsDomain.NameUploadBytesLimit, uc.defaultUploadBytesLimit)
	if err != nil {
		return nil, err
	}

	grant := &domain.Grant{
		UserUUID:                  userID,
		PerformerSubscriptionUUID: performer.ID,
		RegularSubscriptionUUID:   regular.ID,
		Operation:                 operation,
		Resources:                 resources,
		UploadBytesUsed:           used,
		UploadBytesLimit:          limit,
	}

	token, expiresAt, err := uc.grantCodec.Encode(grant)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("valet token issued",
		slog.String("user_id", userID.String()),
		slog.String("regular_subscription_id", regular.ID.String()),
		slog.String("operation", string(operation)),
		slog.Int("resources", len(resources)),
	)

	return &IssuedToken{Token: token, Grant: grant, ExpiresAt: expiresAt}, nil
}

func validateRequest(operation domain.Operation, resources []domain.Resource) error {
	if !domain.KnownOperation(operation) || len(resources) == 0 {
		return &domain.DenialError{Reason: domain.DenialInvalidParameters}
	}

	if operation == domain.OperationWrite {
		for _, resource := range resources {
			if resource.UnencryptedSize == nil {
				return &domain.DenialError{Reason: domain.DenialInvalidParameters}
			}
		}
	}

	return nil
}
