package passcheck

import (
	"context"
	"io"
	"time"
)

// Info dictionary keys written by the submission client.
const (
	KeyChecksum        = "DataCheckA"
	KeyDate            = "DataCheckB"
	KeyVersion         = "DataCheckC"
	KeyDueDate         = "DataCheckD"
	KeyAuthor          = "DataCheckE"
	KeySessionKey      = "DataCheckF"
	KeyApplicationName = "DataCheckG"
	KeySubmissionDate  = "DataCheckH"

	// KeyLegacyChecksum is the unencrypted checksum entry of older clients.
	KeyLegacyChecksum = "CheckSum"
)

// ZipMIMEType is the only attachment type considered for the checksum.
const ZipMIMEType = "application/zip"

// Document is a parsed submission PDF.
type Document interface {
	// Name is the file name used in records and warnings.
	Name() string

	// Metadata returns a custom info dictionary entry.
	Metadata(key string) (string, bool)

	Author() (string, bool)
	CreationDate() (time.Time, bool)
	ModDate() (time.Time, bool)

	// FirstPageAttachments lists the file attachment annotations of the
	// first page in document order.
	FirstPageAttachments() []Attachment

	// Open returns the raw bytes of the whole file.
	Open() (io.ReadCloser, error)

	Close() error
}

// Attachment is an embedded file referenced from the first page.
type Attachment struct {
	Name         string
	MIMEType     string
	DeclaredSize int64
	Open         func() (io.ReadCloser, error)
}

// Opener turns a path into a Document.
type Opener interface {
	Open(ctx context.Context, path string) (Document, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, path string) (Document, error)

// Open implements Opener.
func (f OpenerFunc) Open(ctx context.Context, path string) (Document, error) {
	return f(ctx, path)
}
