package domain

import (
	"fmt"

	"github.com/allisson/accounts/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// to provide context for cryptographic failures. Integrity failures are always
// fatal to the operation and are never degraded to plaintext passthrough.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates a decryption operation failed: wrong key,
	// tampered ciphertext (authentication failure), or a corrupted envelope.
	// The specific cause is not disclosed to prevent information leakage.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrInvalidEnvelope indicates an EncryptedValue payload is malformed
	// (too short to carry a nonce, or not decodable).
	ErrInvalidEnvelope = errors.Wrap(errors.ErrInvalidInput, "invalid encrypted envelope")

	// ErrPrincipalKeyNotFound indicates no wrapped data key exists for the principal.
	ErrPrincipalKeyNotFound = errors.Wrap(errors.ErrNotFound, "principal key not found")
)

// UnknownVersionError is returned when an EncryptedValue declares an encryption
// version this build does not recognize. Unknown versions are a hard error at
// read time, never a warning and never a plaintext passthrough.
type UnknownVersionError struct {
	Version EncryptionVersion
}

// Error implements the error interface.
func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("unknown encryption version %d", e.Version)
}

// Unwrap makes the error match errors.ErrInvalidInput for HTTP mapping.
func (e *UnknownVersionError) Unwrap() error {
	return errors.ErrInvalidInput
}
