package passcheck

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	testSecret  = bytes.Repeat([]byte{0x5a}, 32)
	otherSecret = bytes.Repeat([]byte{0xa5}, 32)

	// baseTime has a non-zero millisecond part on purpose.
	baseTime = time.Date(2024, time.March, 1, 14, 30, 15, 250*int(time.Millisecond), time.UTC)
)

type fakeDoc struct {
	name        string
	info        map[string]string
	author      *string
	created     *time.Time
	modified    *time.Time
	attachments []Attachment
	content     []byte
	openErr     error
	closed      bool
}

func (d *fakeDoc) Name() string { return d.name }

func (d *fakeDoc) Metadata(key string) (string, bool) {
	v, ok := d.info[key]
	return v, ok
}

func (d *fakeDoc) Author() (string, bool) {
	if d.author == nil {
		return "", false
	}
	return *d.author, true
}

func (d *fakeDoc) CreationDate() (time.Time, bool) {
	if d.created == nil {
		return time.Time{}, false
	}
	return *d.created, true
}

func (d *fakeDoc) ModDate() (time.Time, bool) {
	if d.modified == nil {
		return time.Time{}, false
	}
	return *d.modified, true
}

func (d *fakeDoc) FirstPageAttachments() []Attachment { return d.attachments }

func (d *fakeDoc) Open() (io.ReadCloser, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	return io.NopCloser(bytes.NewReader(d.content)), nil
}

func (d *fakeDoc) Close() error {
	d.closed = true
	return nil
}

// zipAttachment serves data and declares size bytes.
func zipAttachment(name string, data []byte, size int64) Attachment {
	return Attachment{
		Name:         name,
		MIMEType:     ZipMIMEType,
		DeclaredSize: size,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

type failingReader struct{ after int }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.after <= 0 {
		return 0, errors.New("disk on fire")
	}
	n := min(len(p), r.after)
	for i := range p[:n] {
		p[i] = 'x'
	}
	r.after -= n
	return n, nil
}

func ptr[T any](v T) *T { return &v }

func validStamp(zip []byte) Stamp {
	return Stamp{
		Checksum:        AttachmentChecksum(zip),
		Date:            baseTime,
		Version:         "1.4",
		DueDate:         baseTime.Add(24 * time.Hour),
		Author:          "alice",
		ApplicationName: DefaultTrustedProducer,
		SubmissionDate:  baseTime.Add(time.Minute),
	}
}

// stampedDoc builds a document the way the submission client writes it.
func stampedDoc(t *testing.T, name string, s Stamp, zip []byte) *fakeDoc {
	t.Helper()

	wrap, err := SymmetricWrapper(testSecret)
	require.NoError(t, err)
	info, err := s.Seal(wrap)
	require.NoError(t, err)

	created := s.Date.Truncate(time.Second)
	modified := created.Add(2 * time.Second)

	return &fakeDoc{
		name:        name,
		info:        info,
		author:      ptr(s.Author),
		created:     &created,
		modified:    &modified,
		attachments: []Attachment{zipAttachment("project.zip", zip, int64(len(zip)))},
		content:     []byte("%PDF-1.7 " + name),
	}
}

func testMasterKey(t *testing.T) MasterKey {
	t.Helper()
	mk, err := NewSymmetricMasterKey(testSecret)
	require.NoError(t, err)
	return mk
}

func newTestChecker(t *testing.T, opts ...Option) (*Checker, *WarningCollector) {
	t.Helper()
	warnings := &WarningCollector{}
	base := []Option{WithMasterKey(testMasterKey(t)), WithWarner(warnings)}
	c, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return c, warnings
}

// docOpener serves fake documents by path.
func docOpener(docs map[string]*fakeDoc) Opener {
	return OpenerFunc(func(_ context.Context, path string) (Document, error) {
		d, ok := docs[path]
		if !ok {
			return nil, errors.New("no such file")
		}
		return d, nil
	})
}

func warningCodes(ws []Warning) []string {
	codes := make([]string, len(ws))
	for i, w := range ws {
		codes[i] = w.Code
	}
	return codes
}
