package usecase

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/accounts/internal/crypto/domain"
	cryptoService "github.com/allisson/accounts/internal/crypto/service"
	apperrors "github.com/allisson/accounts/internal/errors"
)

// vaultUseCase implements VaultUseCase with a two-tier key hierarchy:
// master key -> per-principal data key -> secret values.
type vaultUseCase struct {
	masterKey        *cryptoDomain.MasterKey
	algorithm        cryptoDomain.Algorithm
	aeadManager      cryptoService.AEADManager
	principalKeyRepo PrincipalKeyRepository
}

// EncryptForPrincipal encrypts plaintext under the principal's data key.
//
// The data key is resolved with read-check-generate-store semantics: a
// principal's wrapped key is generated at most once, and a lost conditional
// insert race is settled by re-reading the stored winner. The principal UUID
// is bound as AAD so a ciphertext cannot be replayed for another principal.
func (v *vaultUseCase) EncryptForPrincipal(
	ctx context.Context,
	plaintext []byte,
	userUUID uuid.UUID,
) (cryptoDomain.EncryptedValue, error) {
	dataKey, err := v.dataKeyFor(ctx, userUUID)
	if err != nil {
		return cryptoDomain.EncryptedValue{}, err
	}
	defer cryptoDomain.Zero(dataKey)

	aead, err := v.aeadManager.CreateCipher(dataKey, v.algorithm)
	if err != nil {
		return cryptoDomain.EncryptedValue{}, err
	}

	ciphertext, nonce, err := aead.Encrypt(plaintext, userUUID[:])
	if err != nil {
		return cryptoDomain.EncryptedValue{}, apperrors.Wrap(err, "failed to encrypt value")
	}

	return cryptoDomain.EncryptedValue{
		Version: cryptoDomain.ServerEncrypted,
		Payload: append(nonce, ciphertext...),
	}, nil
}

// DecryptForPrincipal decrypts an encrypted envelope under the principal's data key.
// Only server-encrypted versions are accepted here; Unencrypted values never
// reach the vault, and unknown versions are rejected with a typed error.
func (v *vaultUseCase) DecryptForPrincipal(
	ctx context.Context,
	value cryptoDomain.EncryptedValue,
	userUUID uuid.UUID,
) ([]byte, error) {
	switch value.Version {
	case cryptoDomain.ServerEncrypted, cryptoDomain.ClientEncodedAndServerEncrypted:
	case cryptoDomain.Unencrypted:
		return nil, cryptoDomain.ErrInvalidEnvelope
	default:
		return nil, &cryptoDomain.UnknownVersionError{Version: value.Version}
	}

	dataKey, err := v.dataKeyFor(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(dataKey)

	aead, err := v.aeadManager.CreateCipher(dataKey, v.algorithm)
	if err != nil {
		return nil, err
	}

	return openEnvelope(aead, value, userUUID[:])
}

// WrapNewPrincipalKey generates a random 32-byte data key and wraps it under
// the master key. The plaintext key is zeroed before returning.
func (v *vaultUseCase) WrapNewPrincipalKey() (cryptoDomain.EncryptedValue, error) {
	dataKey := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(dataKey); err != nil {
		return cryptoDomain.EncryptedValue{}, apperrors.Wrap(err, "failed to generate data key")
	}
	defer cryptoDomain.Zero(dataKey)

	aead, err := v.aeadManager.CreateCipher(v.masterKey.Key, v.algorithm)
	if err != nil {
		return cryptoDomain.EncryptedValue{}, err
	}

	ciphertext, nonce, err := aead.Encrypt(dataKey, nil)
	if err != nil {
		return cryptoDomain.EncryptedValue{}, apperrors.Wrap(err, "failed to wrap data key")
	}

	return cryptoDomain.EncryptedValue{
		Version: cryptoDomain.ServerEncrypted,
		Payload: append(nonce, ciphertext...),
	}, nil
}

// dataKeyFor returns the principal's plaintext data key, generating and
// persisting a wrapped key on first use. Two concurrent first uses both
// generate valid keys; the conditional insert keeps one winner and both
// requests proceed with whichever key the store retained.
func (v *vaultUseCase) dataKeyFor(ctx context.Context, userUUID uuid.UUID) ([]byte, error) {
	principalKey, err := v.principalKeyRepo.Get(ctx, userUUID)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}

		wrapped, err := v.WrapNewPrincipalKey()
		if err != nil {
			return nil, err
		}

		newKey := &cryptoDomain.PrincipalKey{UserUUID: userUUID, WrappedKey: wrapped}
		if err := v.principalKeyRepo.CreateIfAbsent(ctx, newKey); err != nil {
			return nil, err
		}

		// Re-read so both sides of a concurrent generation observe the winner.
		principalKey, err = v.principalKeyRepo.Get(ctx, userUUID)
		if err != nil {
			return nil, err
		}
	}

	return v.unwrap(principalKey.WrappedKey)
}

// unwrap decrypts a wrapped data key under the master key.
func (v *vaultUseCase) unwrap(wrapped cryptoDomain.EncryptedValue) ([]byte, error) {
	if wrapped.Version != cryptoDomain.ServerEncrypted {
		return nil, fmt.Errorf("%w: wrapped key has version %d", cryptoDomain.ErrInvalidEnvelope, wrapped.Version)
	}

	aead, err := v.aeadManager.CreateCipher(v.masterKey.Key, v.algorithm)
	if err != nil {
		return nil, err
	}

	dataKey, err := openEnvelope(aead, wrapped, nil)
	if err != nil {
		return nil, err
	}
	if len(dataKey) != cryptoDomain.KeySize {
		cryptoDomain.Zero(dataKey)
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	return dataKey, nil
}

// openEnvelope splits a payload into nonce and ciphertext and decrypts it.
// Any failure collapses to ErrDecryptionFailed or ErrInvalidEnvelope so the
// cause is not disclosed to callers.
func openEnvelope(aead cryptoService.AEAD, value cryptoDomain.EncryptedValue, aad []byte) ([]byte, error) {
	if len(value.Payload) <= cryptoDomain.NonceSize {
		return nil, cryptoDomain.ErrInvalidEnvelope
	}

	nonce := value.Payload[:cryptoDomain.NonceSize]
	ciphertext := value.Payload[cryptoDomain.NonceSize:]

	plaintext, err := aead.Decrypt(ciphertext, nonce, aad)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}

// NewVaultUseCase creates a VaultUseCase. The master key must already be
// validated (32 bytes); algorithm selects the process-wide AEAD backend.
func NewVaultUseCase(
	masterKey *cryptoDomain.MasterKey,
	algorithm cryptoDomain.Algorithm,
	aeadManager cryptoService.AEADManager,
	principalKeyRepo PrincipalKeyRepository,
) VaultUseCase {
	return &vaultUseCase{
		masterKey:        masterKey,
		algorithm:        algorithm,
		aeadManager:      aeadManager,
		principalKeyRepo: principalKeyRepo,
	}
}
