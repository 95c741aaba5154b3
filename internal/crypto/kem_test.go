package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestGenerateKeypair(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}

	if len(kp.PublicKey) != MLKEMPublicKeySize {
		t.Errorf("PublicKey size = %d, want %d", len(kp.PublicKey), MLKEMPublicKeySize)
	}
	if len(kp.SecretKey) != MLKEMSecretKeySize {
		t.Errorf("SecretKey size = %d, want %d", len(kp.SecretKey), MLKEMSecretKeySize)
	}
}

func TestKeypairFromSecretKey(t *testing.T) {
	original, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}

	reconstructed, err := KeypairFromSecretKey(original.SecretKey)
	if err != nil {
		t.Fatalf("KeypairFromSecretKey() error = %v", err)
	}

	if !bytes.Equal(original.PublicKey, reconstructed.PublicKey) {
		t.Error("Reconstructed public key does not match original")
	}
}

func TestKeypairFromSecretKey_InvalidSize(t *testing.T) {
	for _, size := range []int{0, 100, MLKEMSecretKeySize - 1, MLKEMSecretKeySize + 1} {
		_, err := KeypairFromSecretKey(make([]byte, size))
		if !errors.Is(err, ErrInvalidSecretKeySize) {
			t.Errorf("size %d: error = %v, want ErrInvalidSecretKeySize", size, err)
		}
	}
}

func TestKEMMasterKey_RoundTrip(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	mk, err := NewKEMMasterKey(kp)
	if err != nil {
		t.Fatalf("NewKEMMasterKey() error = %v", err)
	}

	sessionKey, err := NewSessionKey()
	if err != nil {
		t.Fatal(err)
	}

	wrapped, err := WrapKeyKEM(kp.PublicKey, sessionKey)
	if err != nil {
		t.Fatalf("WrapKeyKEM() error = %v", err)
	}
	wantLen := MLKEMCiphertextSize + AESNonceSize + SessionKeySize + AESTagSize
	if len(wrapped) != wantLen {
		t.Errorf("wrapped length = %d, want %d", len(wrapped), wantLen)
	}

	got, err := mk.UnwrapKey(wrapped)
	if err != nil {
		t.Fatalf("UnwrapKey() error = %v", err)
	}
	if !bytes.Equal(got, sessionKey) {
		t.Errorf("UnwrapKey() = %x, want %x", got, sessionKey)
	}
}

func TestKEMMasterKey_WrongKeypair(t *testing.T) {
	producer, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	other, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	mk, err := NewKEMMasterKey(other)
	if err != nil {
		t.Fatal(err)
	}

	wrapped, err := WrapKeyKEM(producer.PublicKey, make([]byte, SessionKeySize))
	if err != nil {
		t.Fatal(err)
	}

	// Implicit rejection yields an unrelated shared secret, so GCM fails.
	if _, err := mk.UnwrapKey(wrapped); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("UnwrapKey() error = %v, want ErrDecryptionFailed", err)
	}
}

func TestKEMMasterKey_ShortInput(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	mk, err := NewKEMMasterKey(kp)
	if err != nil {
		t.Fatal(err)
	}

	_, err = mk.UnwrapKey(make([]byte, MLKEMCiphertextSize))
	if !errors.Is(err, ErrInvalidCiphertextSize) {
		t.Errorf("UnwrapKey() error = %v, want ErrInvalidCiphertextSize", err)
	}
}

func TestWrapKeyKEM_InvalidPublicKey(t *testing.T) {
	_, err := WrapKeyKEM(make([]byte, 10), make([]byte, SessionKeySize))
	if !errors.Is(err, ErrInvalidPublicKeySize) {
		t.Errorf("WrapKeyKEM() error = %v, want ErrInvalidPublicKeySize", err)
	}
}

func TestNewKEMMasterKey_Invalid(t *testing.T) {
	if _, err := NewKEMMasterKey(nil); !errors.Is(err, ErrInvalidSecretKeySize) {
		t.Errorf("nil keypair: error = %v", err)
	}
	if _, err := NewKEMMasterKey(&Keypair{SecretKey: make([]byte, 5)}); !errors.Is(err, ErrInvalidSecretKeySize) {
		t.Errorf("short key: error = %v", err)
	}
}
