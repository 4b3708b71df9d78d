// Package domain defines the cryptographic domain models for the account
// service's key hierarchy: a process-wide master key wraps one data key per
// principal, and data keys encrypt that principal's secret values.
package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// EncryptionVersion tags an EncryptedValue with the procedure required to
// decode it. The version fully determines decoding; unknown versions are a
// hard error (see UnknownVersionError).
type EncryptionVersion int

const (
	// Unencrypted values are stored and returned verbatim. The vault is never
	// invoked for them.
	Unencrypted EncryptionVersion = 0

	// ServerEncrypted values are encrypted under the principal's data key.
	ServerEncrypted EncryptionVersion = 1

	// ClientEncodedAndServerEncrypted values are server-decrypted and then
	// treated as an opaque client-defined encoding the server does not
	// interpret further.
	ClientEncodedAndServerEncrypted EncryptionVersion = 2
)

// KnownVersion reports whether v is an encryption version this build decodes.
func KnownVersion(v EncryptionVersion) bool {
	switch v {
	case Unencrypted, ServerEncrypted, ClientEncodedAndServerEncrypted:
		return true
	}
	return false
}

// EncryptedValue is the versioned envelope for a stored secret value.
//
// The wire format is JSON-tagged: {"version": <int>, "payload": <base64>}.
// For encrypted versions the payload is the AEAD nonce concatenated with the
// ciphertext (which carries the authentication tag). For Unencrypted the
// payload is the raw value bytes.
type EncryptedValue struct {
	Version EncryptionVersion `json:"version"`
	Payload []byte            `json:"payload"`
}

// NewEncryptedValue parses the JSON envelope serialization.
// Returns ErrInvalidEnvelope if the content is not a valid envelope, and
// UnknownVersionError if the declared version is not recognized.
func NewEncryptedValue(content []byte) (EncryptedValue, error) {
	var value EncryptedValue
	if err := json.Unmarshal(content, &value); err != nil {
		return EncryptedValue{}, ErrInvalidEnvelope
	}
	if !KnownVersion(value.Version) {
		return EncryptedValue{}, &UnknownVersionError{Version: value.Version}
	}
	return value, nil
}

// Encode serializes the envelope to its JSON wire format.
func (v EncryptedValue) Encode() ([]byte, error) {
	return json.Marshal(v)
}

// PrincipalKey is a principal's wrapped data key row. The plaintext data key
// is never persisted; WrappedKey is a ServerEncrypted envelope under the
// master key.
type PrincipalKey struct {
	UserUUID   uuid.UUID
	WrappedKey EncryptedValue
}
