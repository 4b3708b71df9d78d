// Package usecase implements the crypto vault: versioned field-level
// encryption of per-principal secrets under lazily generated data keys.
package usecase

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/accounts/internal/crypto/domain"
)

// PrincipalKeyRepository persists wrapped per-principal data keys.
type PrincipalKeyRepository interface {
	// Get returns the principal's wrapped data key.
	// Returns cryptoDomain.ErrPrincipalKeyNotFound if none exists.
	Get(ctx context.Context, userUUID uuid.UUID) (*cryptoDomain.PrincipalKey, error)

	// CreateIfAbsent stores the wrapped key only when the principal has none
	// yet (conditional insert). Losing the race to a concurrent writer is not
	// an error; the caller re-reads to observe the winner.
	CreateIfAbsent(ctx context.Context, key *cryptoDomain.PrincipalKey) error
}

// VaultUseCase encrypts and decrypts secret values under a per-principal data
// key that is itself wrapped by the process master key.
type VaultUseCase interface {
	// EncryptForPrincipal encrypts plaintext for the principal, lazily
	// generating and persisting a wrapped data key on first use.
	EncryptForPrincipal(ctx context.Context, plaintext []byte, userUUID uuid.UUID) (cryptoDomain.EncryptedValue, error)

	// DecryptForPrincipal decrypts a ServerEncrypted (or
	// ClientEncodedAndServerEncrypted) envelope for the principal. Decrypt
	// failures are hard errors, never plaintext-looking output.
	DecryptForPrincipal(ctx context.Context, value cryptoDomain.EncryptedValue, userUUID uuid.UUID) ([]byte, error)

	// WrapNewPrincipalKey generates a fresh random data key and wraps it under
	// the master key. Used for lazy first-use generation and key rotation.
	WrapNewPrincipalKey() (cryptoDomain.EncryptedValue, error)
}
