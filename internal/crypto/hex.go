package crypto

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// DecodeText converts a text-encoded field back to cipher bytes.
// The producer writes every encrypted info entry as upper-case hex; lower
// case is accepted too.
func DecodeText(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty value", ErrInvalidEncoding)
	}

	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return data, nil
}

// EncodeText is the inverse of DecodeText, matching the producer's output.
func EncodeText(data []byte) string {
	return strings.ToUpper(hex.EncodeToString(data))
}
