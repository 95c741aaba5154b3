package crypto

const (
	// SessionKeyInfo is the HKDF info string used to derive the wrapping key
	// from a symmetric master secret.
	SessionKeyInfo = "passcheck:session-key:v1"

	// KEMKeyInfo is the HKDF info string used to derive the wrapping key
	// from an ML-KEM-768 shared secret.
	KEMKeyInfo = "passcheck:kem-session-key:v1"

	// ExportSignatureContext prefixes the message signed over a submission
	// log export.
	ExportSignatureContext = "passcheck:export:v1"

	// SessionKeySize is the size of the per-document session key in bytes.
	// The producer generates AES-128 session keys.
	SessionKeySize = 16

	// MasterKeySize is the size of a symmetric master secret in bytes.
	MasterKeySize = 32

	// MLKEMPublicKeySize is the size of an ML-KEM-768 public key in bytes.
	MLKEMPublicKeySize = 1184
	// MLKEMSecretKeySize is the size of an ML-KEM-768 secret key in bytes.
	MLKEMSecretKeySize = 2400
	// MLKEMCiphertextSize is the size of an ML-KEM-768 ciphertext in bytes.
	MLKEMCiphertextSize = 1088
	// MLKEMSharedKeySize is the size of the shared secret from ML-KEM-768 in bytes.
	MLKEMSharedKeySize = 32

	// MLDSAPublicKeySize is the size of an ML-DSA-65 public key in bytes.
	MLDSAPublicKeySize = 1952
	// MLDSASignatureSize is the size of an ML-DSA-65 signature in bytes.
	MLDSASignatureSize = 3309

	// AESKeySize is the size of an AES-256 key in bytes.
	AESKeySize = 32
	// AESNonceSize is the size of an AES-GCM nonce in bytes.
	AESNonceSize = 12
	// AESTagSize is the size of an AES-GCM authentication tag in bytes.
	AESTagSize = 16

	// PublicKeyOffset is the byte offset where the public key is embedded
	// within an ML-KEM-768 secret key.
	PublicKeyOffset = 1152
)
