package crypto

import (
	"bytes"
	"testing"
)

func TestDeriveKey(t *testing.T) {
	secret := bytes.Repeat([]byte{0x42}, MasterKeySize)

	k1, err := DeriveKey(secret, nil, []byte(SessionKeyInfo), AESKeySize)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	if len(k1) != AESKeySize {
		t.Fatalf("len = %d, want %d", len(k1), AESKeySize)
	}

	k2, err := DeriveKey(secret, nil, []byte(SessionKeyInfo), AESKeySize)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(k1, k2) {
		t.Error("DeriveKey is not deterministic")
	}

	k3, err := DeriveKey(secret, nil, []byte(KEMKeyInfo), AESKeySize)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(k1, k3) {
		t.Error("different info strings produced the same key")
	}

	k4, err := DeriveKey(secret, []byte("salt"), []byte(SessionKeyInfo), AESKeySize)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(k1, k4) {
		t.Error("salt did not change the derived key")
	}
}
