package crypto

import "errors"

var (
	// ErrInvalidEncoding is returned when a text-encoded field is not valid hex.
	ErrInvalidEncoding = errors.New("invalid text encoding")

	// ErrDecryptionFailed is returned when decryption or authentication fails.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrMissingKey is returned when a decrypt is attempted without a key.
	ErrMissingKey = errors.New("missing key")

	// ErrInvalidKeySize is returned when an AES key size is invalid.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidNonceSize is returned when the nonce size is invalid.
	ErrInvalidNonceSize = errors.New("invalid nonce size")

	// ErrCiphertextTooShort is returned when a ciphertext cannot hold a nonce and tag.
	ErrCiphertextTooShort = errors.New("ciphertext too short")

	// ErrInvalidSecretKeySize is returned when the ML-KEM secret key size is invalid.
	ErrInvalidSecretKeySize = errors.New("invalid secret key size")

	// ErrInvalidPublicKeySize is returned when the ML-KEM public key size is invalid.
	ErrInvalidPublicKeySize = errors.New("invalid public key size")

	// ErrSignatureVerificationFailed is returned when signature verification fails.
	ErrSignatureVerificationFailed = errors.New("signature verification failed")

	// ErrInvalidCiphertextSize is returned when a wrapped key is too short to
	// carry an ML-KEM ciphertext.
	ErrInvalidCiphertextSize = errors.New("invalid ciphertext size")
)
