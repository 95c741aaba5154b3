package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
)

// randReader is the random source for keys and nonces.
// It defaults to nil (which uses crypto/rand) but can be overridden for testing.
var randReader io.Reader

func random() io.Reader {
	if randReader != nil {
		return randReader
	}
	return rand.Reader
}

// MasterKey recovers the per-document session key from its wrapped form
// (the DataCheckF entry).
type MasterKey interface {
	UnwrapKey(wrapped []byte) ([]byte, error)
}

// SymmetricMasterKey unwraps session keys with an AES-256-GCM key derived
// from a shared master secret.
type SymmetricMasterKey struct {
	wrapKey []byte
}

// NewSymmetricMasterKey derives the wrapping key from secret with
// HKDF-SHA-512 and SessionKeyInfo.
func NewSymmetricMasterKey(secret []byte) (*SymmetricMasterKey, error) {
	if len(secret) < SessionKeySize {
		return nil, fmt.Errorf("%w: master secret has %d bytes, need at least %d",
			ErrInvalidKeySize, len(secret), SessionKeySize)
	}

	wrapKey, err := DeriveKey(secret, nil, []byte(SessionKeyInfo), AESKeySize)
	if err != nil {
		return nil, err
	}
	return &SymmetricMasterKey{wrapKey: wrapKey}, nil
}

// UnwrapKey implements MasterKey.
func (m *SymmetricMasterKey) UnwrapKey(wrapped []byte) ([]byte, error) {
	key, err := DecryptAES(m.wrapKey, wrapped)
	if err != nil {
		return nil, err
	}
	if len(key) != SessionKeySize {
		return nil, fmt.Errorf("%w: unwrapped %d bytes, want %d", ErrInvalidKeySize, len(key), SessionKeySize)
	}
	return key, nil
}

// WrapKey wraps a session key the way the producer does.
func (m *SymmetricMasterKey) WrapKey(sessionKey []byte) ([]byte, error) {
	return Seal(m.wrapKey, sessionKey)
}

// NewSessionKey returns a fresh random session key.
func NewSessionKey() ([]byte, error) {
	key := make([]byte, SessionKeySize)
	if _, err := io.ReadFull(random(), key); err != nil {
		return nil, fmt.Errorf("generate session key: %w", err)
	}
	return key, nil
}

// Seal encrypts plaintext under key with a fresh random nonce.
func Seal(key, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, AESNonceSize)
	if _, err := io.ReadFull(random(), nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return EncryptAES(key, plaintext, nonce)
}
