package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// ValidKeySize reports whether n is an AES-128, AES-192 or AES-256 key length.
func ValidKeySize(n int) bool {
	return n == 16 || n == 24 || n == 32
}

// decryptAESGCM decrypts data using AES-GCM.
func decryptAESGCM(key, nonce, aad, ciphertext []byte) ([]byte, error) {
	if !ValidKeySize(len(key)) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKeySize, len(key))
	}

	if len(nonce) != AESNonceSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(nonce), AESNonceSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}

// DecryptAES decrypts data using AES-GCM with a 16, 24 or 32 byte key.
// The ciphertext format is: nonce (12 bytes) || ciphertext || tag (16 bytes)
//
// A nil key yields ErrMissingKey so that fields decrypted after a failed
// key unwrap fail cleanly.
func DecryptAES(key, ciphertext []byte) ([]byte, error) {
	if key == nil {
		return nil, ErrMissingKey
	}
	if !ValidKeySize(len(key)) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKeySize, len(key))
	}

	if len(ciphertext) < AESNonceSize+AESTagSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrCiphertextTooShort, len(ciphertext))
	}

	nonce := ciphertext[:AESNonceSize]
	ciphertextWithTag := ciphertext[AESNonceSize:]

	return decryptAESGCM(key, nonce, nil, ciphertextWithTag)
}

// EncryptAES encrypts data using AES-GCM.
// Returns: nonce (12 bytes) || ciphertext || tag (16 bytes)
func EncryptAES(key, plaintext, nonce []byte) ([]byte, error) {
	if !ValidKeySize(len(key)) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKeySize, len(key))
	}

	if len(nonce) != AESNonceSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(nonce), AESNonceSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	out := make([]byte, 0, len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}
