package domain

import (
	"encoding/base64"
	"fmt"

	"github.com/allisson/accounts/internal/errors"
)

// Master key configuration errors.
var (
	// ErrMasterKeyNotSet indicates the MASTER_KEY environment variable is missing.
	ErrMasterKeyNotSet = errors.New("MASTER_KEY not set")

	// ErrInvalidMasterKeyBase64 indicates the master key is not valid base64.
	ErrInvalidMasterKeyBase64 = errors.New("invalid base64 in MASTER_KEY")
)

// MasterKey is the process-wide root key that wraps per-principal data keys.
//
// It is supplied externally at process start (environment variable, optionally
// KMS-encrypted), is read-only for the process lifetime, and is never rotated
// by this service. The component refuses to start unless the key material is
// exactly 32 bytes.
type MasterKey struct {
	Key []byte
}

// NewMasterKey validates raw key material and returns a MasterKey.
// The temporary input slice remains owned by the caller.
func NewMasterKey(key []byte) (*MasterKey, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: master key must be %d bytes, got %d", ErrInvalidKeySize, KeySize, len(key))
	}
	material := make([]byte, KeySize)
	copy(material, key)
	return &MasterKey{Key: material}, nil
}

// LoadMasterKey decodes a base64-encoded master key.
func LoadMasterKey(encoded string) (*MasterKey, error) {
	if encoded == "" {
		return nil, ErrMasterKeyNotSet
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMasterKeyBase64, err)
	}

	masterKey, err := NewMasterKey(key)
	Zero(key)
	if err != nil {
		return nil, err
	}
	return masterKey, nil
}

// Close zeroes the key material. Call during application shutdown.
func (m *MasterKey) Close() {
	Zero(m.Key)
	m.Key = nil
}
