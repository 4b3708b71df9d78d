package domain

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMasterKey(t *testing.T) {
	t.Run("valid 32-byte key", func(t *testing.T) {
		raw := make([]byte, 32)
		for i := range raw {
			raw[i] = byte(i)
		}
		encoded := base64.StdEncoding.EncodeToString(raw)

		masterKey, err := LoadMasterKey(encoded)
		require.NoError(t, err)
		assert.Len(t, masterKey.Key, 32)
		assert.Equal(t, raw, masterKey.Key)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := LoadMasterKey("")
		assert.ErrorIs(t, err, ErrMasterKeyNotSet)
	})

	t.Run("invalid base64", func(t *testing.T) {
		_, err := LoadMasterKey("%%%not-base64%%%")
		assert.ErrorIs(t, err, ErrInvalidMasterKeyBase64)
	})

	t.Run("wrong size refuses to start", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte("short"))
		_, err := LoadMasterKey(encoded)
		assert.ErrorIs(t, err, ErrInvalidKeySize)
	})
}

func TestMasterKeyClose(t *testing.T) {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = 0xff
	}
	masterKey, err := NewMasterKey(raw)
	require.NoError(t, err)

	held := masterKey.Key
	masterKey.Close()

	assert.Nil(t, masterKey.Key)
	for _, b := range held {
		assert.Zero(t, b)
	}
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3}
	Zero(b)
	assert.Equal(t, []byte{0, 0, 0}, b)

	// nil must not panic
	Zero(nil)
}
