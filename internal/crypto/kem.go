package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
)

// Keypair represents an ML-KEM-768 keypair used as a post-quantum master key.
type Keypair struct {
	// PublicKey is the raw ML-KEM-768 public key bytes, handed to producers.
	PublicKey []byte
	// SecretKey is the raw ML-KEM-768 secret key bytes, kept by the checker.
	SecretKey []byte
}

// GenerateKeypair creates a new ML-KEM-768 keypair.
func GenerateKeypair() (*Keypair, error) {
	pub, priv, err := mlkem768.GenerateKeyPair(random())
	if err != nil {
		return nil, err
	}

	// MarshalBinary never fails for valid keys from GenerateKeyPair
	pubBytes, _ := pub.MarshalBinary()
	privBytes, _ := priv.MarshalBinary()

	return &Keypair{PublicKey: pubBytes, SecretKey: privBytes}, nil
}

// KeypairFromSecretKey reconstructs a keypair from the secret key.
// The public key is embedded in the secret key at offset 1152.
func KeypairFromSecretKey(secretKey []byte) (*Keypair, error) {
	if len(secretKey) != MLKEMSecretKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidSecretKeySize, len(secretKey), MLKEMSecretKeySize)
	}

	publicKey := make([]byte, MLKEMPublicKeySize)
	copy(publicKey, secretKey[PublicKeyOffset:PublicKeyOffset+MLKEMPublicKeySize])

	return &Keypair{PublicKey: publicKey, SecretKey: secretKey}, nil
}

// KEMMasterKey unwraps session keys that were wrapped for an ML-KEM-768
// public key. The wrapped form is:
//
//	ct_kem (1088 bytes) || nonce (12 bytes) || ciphertext || tag (16 bytes)
//
// The AES key is HKDF-SHA-512(shared secret, salt = SHA-256(ct_kem), info = KEMKeyInfo).
type KEMMasterKey struct {
	priv mlkem768.PrivateKey
}

// NewKEMMasterKey prepares kp's secret key for decapsulation.
func NewKEMMasterKey(kp *Keypair) (*KEMMasterKey, error) {
	if kp == nil || len(kp.SecretKey) != MLKEMSecretKeySize {
		return nil, ErrInvalidSecretKeySize
	}

	m := &KEMMasterKey{}
	if err := m.priv.Unpack(kp.SecretKey); err != nil {
		return nil, fmt.Errorf("unmarshal private key: %w", err)
	}
	return m, nil
}

// UnwrapKey implements MasterKey.
func (m *KEMMasterKey) UnwrapKey(wrapped []byte) ([]byte, error) {
	if len(wrapped) < MLKEMCiphertextSize+AESNonceSize+AESTagSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidCiphertextSize, len(wrapped))
	}

	ctKem := wrapped[:MLKEMCiphertextSize]
	sharedSecret := make([]byte, MLKEMSharedKeySize)
	m.priv.DecapsulateTo(sharedSecret, ctKem)

	aesKey, err := deriveKEMKey(sharedSecret, ctKem)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	key, err := DecryptAES(aesKey, wrapped[MLKEMCiphertextSize:])
	if err != nil {
		return nil, err
	}
	if len(key) != SessionKeySize {
		return nil, fmt.Errorf("%w: unwrapped %d bytes, want %d", ErrInvalidKeySize, len(key), SessionKeySize)
	}
	return key, nil
}

// WrapKeyKEM wraps sessionKey for the holder of the ML-KEM-768 secret key
// matching publicKey.
func WrapKeyKEM(publicKey, sessionKey []byte) ([]byte, error) {
	if len(publicKey) != MLKEMPublicKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidPublicKeySize, len(publicKey), MLKEMPublicKeySize)
	}

	var pub mlkem768.PublicKey
	if err := pub.Unpack(publicKey); err != nil {
		return nil, fmt.Errorf("unmarshal public key: %w", err)
	}

	seed := make([]byte, mlkem768.EncapsulationSeedSize)
	if _, err := io.ReadFull(random(), seed); err != nil {
		return nil, fmt.Errorf("generate seed: %w", err)
	}

	ctKem := make([]byte, MLKEMCiphertextSize)
	sharedSecret := make([]byte, MLKEMSharedKeySize)
	pub.EncapsulateTo(ctKem, sharedSecret, seed)

	aesKey, err := deriveKEMKey(sharedSecret, ctKem)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	sealed, err := Seal(aesKey, sessionKey)
	if err != nil {
		return nil, err
	}
	return append(ctKem, sealed...), nil
}

func deriveKEMKey(sharedSecret, ctKem []byte) ([]byte, error) {
	salt := sha256.Sum256(ctKem)
	return DeriveKey(sharedSecret, salt[:], []byte(KEMKeyInfo), AESKeySize)
}
