// Package usecase implements versioned setting reads and writes. The stored
// envelope version alone decides how a value is decoded on the way out.
package usecase

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/accounts/internal/crypto/domain"
	cryptoUsecase "github.com/allisson/accounts/internal/crypto/usecase"
	apperrors "github.com/allisson/accounts/internal/errors"
	"github.com/allisson/accounts/internal/settings/domain"
)

// SettingRepository interface defines setting repository operations.
type SettingRepository interface {
	Get(ctx context.Context, scope domain.Scope, name string) (*domain.Setting, error)
	Create(ctx context.Context, setting *domain.Setting) error
	UpdateValue(ctx context.Context, setting *domain.Setting) error
}

// UseCase defines the settings business operations.
type UseCase interface {
	// FindDecryptedValue loads a setting and decodes it per its envelope
	// version: Unencrypted values pass through verbatim without touching the
	// vault, encrypted versions route through the principal's data key, and an
	// unrecognized version is a hard error.
	FindDecryptedValue(ctx context.Context, scope domain.Scope, name string) ([]byte, error)

	// FindInt64 reads a decimal setting, returning fallback when the setting
	// does not exist.
	FindInt64(ctx context.Context, scope domain.Scope, name string, fallback int64) (int64, error)

	// SetEncryptedValue stores a value encrypted under the scope owner's data
	// key, creating the setting row when absent.
	SetEncryptedValue(ctx context.Context, scope domain.Scope, name string, plaintext []byte) error
}

// SettingsUseCase handles settings business logic.
type SettingsUseCase struct {
	settingRepo SettingRepository
	vault       cryptoUsecase.VaultUseCase
}

// NewSettingsUseCase creates a new SettingsUseCase.
func NewSettingsUseCase(settingRepo SettingRepository, vault cryptoUsecase.VaultUseCase) UseCase {
	return &SettingsUseCase{
		settingRepo: settingRepo,
		vault:       vault,
	}
}

// FindDecryptedValue loads and decodes a setting value.
func (uc *SettingsUseCase) FindDecryptedValue(
	ctx context.Context,
	scope domain.Scope,
	name string,
) ([]byte, error) {
	setting, err := uc.settingRepo.Get(ctx, scope, name)
	if err != nil {
		return nil, err
	}

	switch setting.Value.Version {
	case cryptoDomain.Unencrypted:
		return setting.Value.Payload, nil
	case cryptoDomain.ServerEncrypted, cryptoDomain.ClientEncodedAndServerEncrypted:
		// For client-encoded values the decrypted bytes stay opaque; the
		// client owns their interpretation.
		return uc.vault.DecryptForPrincipal(ctx, setting.Value, scope.UserID)
	}

	return nil, &cryptoDomain.UnknownVersionError{Version: setting.Value.Version}
}

// FindInt64 reads a decimal setting with a fallback for absent rows.
func (uc *SettingsUseCase) FindInt64(
	ctx context.Context,
	scope domain.Scope,
	name string,
	fallback int64,
) (int64, error) {
	value, err := uc.FindDecryptedValue(ctx, scope, name)
	if err != nil {
		if apperrors.Is(err, domain.ErrSettingNotFound) {
			return fallback, nil
		}
		return 0, err
	}

	parsed, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "setting "+name+" is not a decimal value")
	}
	return parsed, nil
}

// SetEncryptedValue stores a value as a ServerEncrypted envelope.
func (uc *SettingsUseCase) SetEncryptedValue(
	ctx context.Context,
	scope domain.Scope,
	name string,
	plaintext []byte,
) error {
	value, err := uc.vault.EncryptForPrincipal(ctx, plaintext, scope.UserID)
	if err != nil {
		return err
	}

	setting, err := uc.settingRepo.Get(ctx, scope, name)
	if err != nil {
		if !apperrors.Is(err, domain.ErrSettingNotFound) {
			return err
		}
		return uc.settingRepo.Create(ctx, &domain.Setting{
			ID:             uuid.Must(uuid.NewV7()),
			UserID:         scope.UserID,
			SubscriptionID: scope.SubscriptionID,
			Name:           name,
			Value:          value,
		})
	}

	setting.Value = value
	return uc.settingRepo.UpdateValue(ctx, setting)
}
