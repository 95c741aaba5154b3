package passcheck

import (
	"fmt"
	"os"

	"github.com/passverify/passcheck/internal/crypto"
)

// MasterKey unwraps the per-document session key.
type MasterKey = crypto.MasterKey

// NewSymmetricMasterKey returns a MasterKey for a shared master secret.
func NewSymmetricMasterKey(secret []byte) (MasterKey, error) {
	mk, err := crypto.NewSymmetricMasterKey(secret)
	if err != nil {
		return nil, err
	}
	return mk, nil
}

// NewKEMMasterKey returns a MasterKey for an ML-KEM-768 secret key.
func NewKEMMasterKey(secretKey []byte) (MasterKey, error) {
	kp, err := crypto.KeypairFromSecretKey(secretKey)
	if err != nil {
		return nil, err
	}
	mk, err := crypto.NewKEMMasterKey(kp)
	if err != nil {
		return nil, err
	}
	return mk, nil
}

// ParseMasterKey decodes base64 key material. A decoded ML-KEM-768 secret
// key yields a KEM master key; anything else is taken as a symmetric
// master secret.
func ParseMasterKey(text string) (MasterKey, error) {
	raw, err := crypto.DecodeBase64(text)
	if err != nil {
		return nil, fmt.Errorf("decode master key: %w", err)
	}
	if len(raw) == crypto.MLKEMSecretKeySize {
		return NewKEMMasterKey(raw)
	}
	return NewSymmetricMasterKey(raw)
}

// LoadMasterKey reads base64 key material from path.
func LoadMasterKey(path string) (MasterKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read master key: %w", err)
	}
	mk, err := ParseMasterKey(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mk, nil
}
