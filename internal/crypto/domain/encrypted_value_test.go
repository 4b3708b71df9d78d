package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/accounts/internal/errors"
)

func TestNewEncryptedValue(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		original := EncryptedValue{
			Version: ServerEncrypted,
			Payload: []byte("nonce-and-ciphertext"),
		}

		encoded, err := original.Encode()
		require.NoError(t, err)

		parsed, err := NewEncryptedValue(encoded)
		require.NoError(t, err)
		assert.Equal(t, original, parsed)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := NewEncryptedValue([]byte("not-json"))
		assert.ErrorIs(t, err, ErrInvalidEnvelope)
	})

	t.Run("unknown version is a hard error", func(t *testing.T) {
		_, err := NewEncryptedValue([]byte(`{"version":99,"payload":"aGVsbG8="}`))
		require.Error(t, err)

		var versionErr *UnknownVersionError
		require.ErrorAs(t, err, &versionErr)
		assert.Equal(t, EncryptionVersion(99), versionErr.Version)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestKnownVersion(t *testing.T) {
	assert.True(t, KnownVersion(Unencrypted))
	assert.True(t, KnownVersion(ServerEncrypted))
	assert.True(t, KnownVersion(ClientEncodedAndServerEncrypted))
	assert.False(t, KnownVersion(EncryptionVersion(3)))
	assert.False(t, KnownVersion(EncryptionVersion(-1)))
}
