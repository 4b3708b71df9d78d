package domain

// Algorithm represents the AEAD algorithm used for data-key and value encryption.
//
// Exactly one algorithm is active per process, selected at startup from
// configuration. Values are never mixed: every stored envelope for a principal
// is encrypted under that principal's data key with the active algorithm.
type Algorithm string

const (
	// AESGCM is AES-256-GCM, the canonical algorithm.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305, selectable for hosts without AES-NI.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// KeySize is the required size in bytes for the master key and all data keys.
const KeySize = 32

// NonceSize is the AEAD nonce size in bytes. Both supported algorithms use
// 96-bit nonces, so envelope payloads always begin with a 12-byte nonce.
const NonceSize = 12
