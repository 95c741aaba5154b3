package crypto

import (
	"encoding/base64"
	"strings"
)

// ToBase64 encodes bytes to standard base64 with padding.
// Attachment checksums are recorded in this form by the producer.
func ToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// ToBase64URL encodes bytes to URL-safe base64 without padding.
func ToBase64URL(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeBase64 decodes key material written as base64 in any of the common
// variants (standard or URL-safe, padded or not). Surrounding whitespace,
// as left by editors in key files, is ignored.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)

	data, err := base64.RawURLEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}

	data, err = base64.URLEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}

	data, err = base64.RawStdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}

	return base64.StdEncoding.DecodeString(s)
}
