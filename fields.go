package passcheck

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/passverify/passcheck/internal/crypto"
)

// Field names used in FieldError and diagnostics.
const (
	FieldSessionKey      = "key"
	FieldChecksum        = "checksum"
	FieldDate            = "date"
	FieldVersion         = "version"
	FieldDueDate         = "due-date"
	FieldAuthor          = "author"
	FieldApplicationName = "application"
	FieldSubmissionDate  = "submission-date"
)

// timestampSize is the length of a stored timestamp: big-endian int64
// milliseconds since the Unix epoch.
const timestampSize = 8

// unwrapSessionKey recovers the per-document session key. An absent entry
// yields no key and no error.
func unwrapSessionKey(raw string, present bool, mk crypto.MasterKey) ([]byte, error) {
	if !present {
		return nil, nil
	}

	wrapped, err := crypto.DecodeText(raw)
	if err != nil {
		return nil, &FieldError{Field: FieldSessionKey, Kind: KindDecode, Err: err}
	}
	if mk == nil {
		return nil, &FieldError{Field: FieldSessionKey, Kind: KindDecrypt, Err: ErrMissingMasterKey}
	}

	key, err := mk.UnwrapKey(wrapped)
	if err != nil {
		return nil, &FieldError{Field: FieldSessionKey, Kind: KindDecrypt, Err: err}
	}
	return key, nil
}

// decryptField recovers the plaintext of one stored field. A nil key fails
// like a wrong one.
func decryptField(field, raw string, present bool, key []byte) ([]byte, error) {
	if !present {
		return nil, &FieldError{Field: field, Kind: KindMissingValue, Err: ErrMissingValue}
	}

	ct, err := crypto.DecodeText(raw)
	if err != nil {
		return nil, &FieldError{Field: field, Kind: KindDecode, Err: err}
	}

	plain, err := crypto.DecryptAES(key, ct)
	if err != nil {
		return nil, &FieldError{Field: field, Kind: KindDecrypt, Err: err}
	}
	return plain, nil
}

// decryptString recovers a text field. The plaintext is taken as UTF-8
// without further checks.
func decryptString(field, raw string, present bool, key []byte) (*string, error) {
	plain, err := decryptField(field, raw, present, key)
	if err != nil {
		return nil, err
	}
	s := string(plain)
	return &s, nil
}

// decryptTimestamp recovers a timestamp field.
func decryptTimestamp(field, raw string, present bool, key []byte) (*time.Time, error) {
	plain, err := decryptField(field, raw, present, key)
	if err != nil {
		return nil, err
	}

	t, err := decodeTimestamp(plain)
	if err != nil {
		return nil, &FieldError{Field: field, Kind: KindMalformedTimestamp, Err: err}
	}
	return &t, nil
}

func decodeTimestamp(b []byte) (time.Time, error) {
	if len(b) != timestampSize {
		return time.Time{}, fmt.Errorf("%w: %d bytes, want %d", ErrMalformedTimestamp, len(b), timestampSize)
	}
	ms := int64(binary.BigEndian.Uint64(b))
	return time.UnixMilli(ms).UTC(), nil
}

func encodeTimestamp(t time.Time) []byte {
	b := make([]byte, timestampSize)
	binary.BigEndian.PutUint64(b, uint64(t.UnixMilli()))
	return b
}
