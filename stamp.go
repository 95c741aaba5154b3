package passcheck

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/passverify/passcheck/internal/crypto"
)

// KeyWrapper wraps a fresh session key for the holder of a master key.
type KeyWrapper func(sessionKey []byte) ([]byte, error)

// SymmetricWrapper wraps session keys under a shared master secret.
func SymmetricWrapper(secret []byte) (KeyWrapper, error) {
	mk, err := crypto.NewSymmetricMasterKey(secret)
	if err != nil {
		return nil, err
	}
	return mk.WrapKey, nil
}

// KEMWrapper wraps session keys for an ML-KEM-768 public key.
func KEMWrapper(publicKey []byte) KeyWrapper {
	return func(sessionKey []byte) ([]byte, error) {
		return crypto.WrapKeyKEM(publicKey, sessionKey)
	}
}

// Stamp holds the values a submission client seals into a PDF's info
// dictionary.
type Stamp struct {
	Checksum        string
	Date            time.Time
	Version         string
	DueDate         time.Time
	Author          string
	ApplicationName string
	// SubmissionDate is omitted when zero.
	SubmissionDate time.Time
}

// Seal encrypts s under a fresh session key and returns the info entries
// to store, keyed by KeyChecksum and friends.
func (s Stamp) Seal(wrap KeyWrapper) (map[string]string, error) {
	sessionKey, err := crypto.NewSessionKey()
	if err != nil {
		return nil, err
	}
	wrapped, err := wrap(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("wrap session key: %w", err)
	}

	entries := map[string]string{
		KeySessionKey: crypto.EncodeText(wrapped),
	}
	type field struct {
		key   string
		plain []byte
	}
	fields := []field{
		{KeyChecksum, []byte(s.Checksum)},
		{KeyDate, encodeTimestamp(s.Date)},
		{KeyVersion, []byte(s.Version)},
		{KeyDueDate, encodeTimestamp(s.DueDate)},
		{KeyAuthor, []byte(s.Author)},
		{KeyApplicationName, []byte(s.ApplicationName)},
	}
	if !s.SubmissionDate.IsZero() {
		fields = append(fields, field{KeySubmissionDate, encodeTimestamp(s.SubmissionDate)})
	}

	for _, f := range fields {
		ct, err := crypto.Seal(sessionKey, f.plain)
		if err != nil {
			return nil, fmt.Errorf("seal %s: %w", f.key, err)
		}
		entries[f.key] = crypto.EncodeText(ct)
	}
	return entries, nil
}

// AttachmentChecksum returns the checksum a producer records for an
// attachment's bytes: base64 of the SHA-256 digest.
func AttachmentChecksum(data []byte) string {
	sum := sha256.Sum256(data)
	return crypto.ToBase64(sum[:])
}
