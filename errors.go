package passcheck

import (
	"errors"
	"fmt"

	"github.com/passverify/passcheck/internal/crypto"
)

// Sentinel errors for errors.Is() checks. Each ErrorKind maps to one of them.
var (
	// ErrDecode is returned when a stored field is not valid text encoding.
	ErrDecode = errors.New("text decode failed")

	// ErrDecrypt is returned when a field or the session key fails to decrypt.
	ErrDecrypt = errors.New("decryption failed")

	// ErrMalformedTimestamp is returned when a decrypted timestamp is not 8 bytes.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrMissingValue is returned when a required entry is absent.
	ErrMissingValue = errors.New("missing value")

	// ErrIO is returned when a document or attachment cannot be read.
	ErrIO = errors.New("i/o failure")

	// ErrFormat is returned when a server export file is malformed.
	ErrFormat = errors.New("invalid export format")

	// ErrAmbiguousMatch marks matcher warnings about several candidate submissions.
	ErrAmbiguousMatch = errors.New("ambiguous submission match")

	// ErrSignature is returned when a signed export does not verify.
	ErrSignature = crypto.ErrSignatureVerificationFailed

	// ErrMissingMasterKey is returned by New when no master key is configured.
	ErrMissingMasterKey = errors.New("master key is required")

	// ErrMissingOpener is returned by Check when no document opener is configured.
	ErrMissingOpener = errors.New("document opener is required")
)

// ErrorKind classifies a failure or diagnostic.
type ErrorKind int

const (
	// KindCheck tags findings of the consistency checks that are not
	// caused by a failed operation.
	KindCheck ErrorKind = iota
	KindDecode
	KindDecrypt
	KindMalformedTimestamp
	KindMissingValue
	KindIO
	KindFormat
	KindAmbiguousMatch
)

var kindNames = [...]string{
	KindCheck:              "check",
	KindDecode:             "decode",
	KindDecrypt:            "decrypt",
	KindMalformedTimestamp: "malformed-timestamp",
	KindMissingValue:       "missing-value",
	KindIO:                 "io",
	KindFormat:             "format",
	KindAmbiguousMatch:     "ambiguous-match",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Sentinel returns the sentinel error for k, or nil for KindCheck.
func (k ErrorKind) Sentinel() error {
	switch k {
	case KindDecode:
		return ErrDecode
	case KindDecrypt:
		return ErrDecrypt
	case KindMalformedTimestamp:
		return ErrMalformedTimestamp
	case KindMissingValue:
		return ErrMissingValue
	case KindIO:
		return ErrIO
	case KindFormat:
		return ErrFormat
	case KindAmbiguousMatch:
		return ErrAmbiguousMatch
	}
	return nil
}

// KindOf reports the ErrorKind of err. Errors without a kind are KindIO,
// since anything else surfacing from a document read is an I/O failure.
func KindOf(err error) ErrorKind {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	for _, k := range []ErrorKind{KindDecode, KindDecrypt, KindMalformedTimestamp, KindMissingValue, KindFormat, KindAmbiguousMatch} {
		if errors.Is(err, k.Sentinel()) {
			return k
		}
	}
	return KindIO
}

// CheckError is implemented by all errors of this package.
type CheckError interface {
	error
	CheckError() // marker method
}

// FieldError reports the failure to recover one stored field.
type FieldError struct {
	Field string
	Kind  ErrorKind
	Err   error
}

func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("field %s: %s: %v", e.Field, e.Kind, e.Err)
	}
	return fmt.Sprintf("field %s: %s", e.Field, e.Kind)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *FieldError) Is(target error) bool {
	return target != nil && target == e.Kind.Sentinel()
}

// CheckError implements the CheckError interface.
func (e *FieldError) CheckError() {}

// FormatError reports a malformed line in a server export file.
type FormatError struct {
	File    string
	Line    int
	Message string
	Err     error
}

func (e *FormatError) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg != "" {
			msg += ": " + e.Err.Error()
		} else {
			msg = e.Err.Error()
		}
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, msg)
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// CheckError implements the CheckError interface.
func (e *FormatError) CheckError() {}

// FileError reports that a document could not be opened or read.
type FileError struct {
	File string
	Op   string // "open", "read"
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.File, e.Err)
}

// Unwrap returns the underlying error.
func (e *FileError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *FileError) Is(target error) bool {
	return target == ErrIO
}

// CheckError implements the CheckError interface.
func (e *FileError) CheckError() {}
