package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/accounts/internal/crypto/domain"
)

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestAEADManager_CreateCipher(t *testing.T) {
	manager := NewAEADManager()

	t.Run("aes-gcm", func(t *testing.T) {
		aead, err := manager.CreateCipher(randomKey(t), cryptoDomain.AESGCM)
		require.NoError(t, err)
		assert.IsType(t, &AESGCMCipher{}, aead)
	})

	t.Run("chacha20-poly1305", func(t *testing.T) {
		aead, err := manager.CreateCipher(randomKey(t), cryptoDomain.ChaCha20)
		require.NoError(t, err)
		assert.IsType(t, &ChaCha20Poly1305Cipher{}, aead)
	})

	t.Run("invalid key size", func(t *testing.T) {
		_, err := manager.CreateCipher([]byte("short"), cryptoDomain.AESGCM)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		_, err := manager.CreateCipher(randomKey(t), cryptoDomain.Algorithm("des"))
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
	})
}

func TestAEADRoundTrip(t *testing.T) {
	manager := NewAEADManager()

	algorithms := []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20}
	for _, alg := range algorithms {
		t.Run(string(alg), func(t *testing.T) {
			aead, err := manager.CreateCipher(randomKey(t), alg)
			require.NoError(t, err)

			plaintext := []byte("per-user secret value")
			aad := []byte("user-uuid")

			ciphertext, nonce, err := aead.Encrypt(plaintext, aad)
			require.NoError(t, err)
			assert.NotEqual(t, plaintext, ciphertext)

			decrypted, err := aead.Decrypt(ciphertext, nonce, aad)
			require.NoError(t, err)
			assert.Equal(t, plaintext, decrypted)
		})
	}
}

func TestAEADTamperDetection(t *testing.T) {
	manager := NewAEADManager()

	algorithms := []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20}
	for _, alg := range algorithms {
		t.Run(string(alg), func(t *testing.T) {
			aead, err := manager.CreateCipher(randomKey(t), alg)
			require.NoError(t, err)

			ciphertext, nonce, err := aead.Encrypt([]byte("payload"), nil)
			require.NoError(t, err)

			// Flipping any single bit must fail authentication.
			for i := range ciphertext {
				tampered := make([]byte, len(ciphertext))
				copy(tampered, ciphertext)
				tampered[i] ^= 0x01

				_, err := aead.Decrypt(tampered, nonce, nil)
				assert.Error(t, err)
			}
		})
	}
}

func TestAEADWrongAAD(t *testing.T) {
	manager := NewAEADManager()
	aead, err := manager.CreateCipher(randomKey(t), cryptoDomain.AESGCM)
	require.NoError(t, err)

	ciphertext, nonce, err := aead.Encrypt([]byte("payload"), []byte("user-a"))
	require.NoError(t, err)

	_, err = aead.Decrypt(ciphertext, nonce, []byte("user-b"))
	assert.Error(t, err)
}
