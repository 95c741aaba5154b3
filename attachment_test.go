package passcheck

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runAttachment(t *testing.T, atts []Attachment, lenient bool) (*Record, []Warning) {
	t.Helper()
	warnings := &WarningCollector{}
	b := newBuilder("a.pdf", warnings)
	attachmentChecksum(&fakeDoc{name: "a.pdf", attachments: atts}, b, lenient)
	return b.finish(), warnings.Warnings()
}

func TestAttachmentChecksum_Exact(t *testing.T) {
	data := bytes.Repeat([]byte{7}, 1000)
	for _, lenient := range []bool{false, true} {
		rec, warnings := runAttachment(t, []Attachment{zipAttachment("p.zip", data, 1000)}, lenient)

		require.NotNil(t, rec.ZipChecksum)
		assert.Equal(t, AttachmentChecksum(data), *rec.ZipChecksum)
		assert.Empty(t, rec.Notes)
		assert.Empty(t, warnings)
	}
}

// Scenario: declared 1000 bytes, stream holds 800.
func TestAttachmentChecksum_Shorter(t *testing.T) {
	data := bytes.Repeat([]byte{7}, 800)
	att := zipAttachment("p.zip", data, 1000)

	rec, warnings := runAttachment(t, []Attachment{att}, false)
	require.NotNil(t, rec.ZipChecksum)
	assert.Equal(t, "", *rec.ZipChecksum)
	assert.Equal(t, []string{CodeAttachmentSizeMismatch}, warningCodes(warnings))
	assert.Contains(t, warnings[0].Message, "800")
	assert.Contains(t, warnings[0].Message, "1000")

	rec, warnings = runAttachment(t, []Attachment{att}, true)
	require.NotNil(t, rec.ZipChecksum)
	assert.Equal(t, AttachmentChecksum(data), *rec.ZipChecksum)
	assert.Equal(t, []string{CodeAttachmentSizeMismatch}, warningCodes(warnings))
}

func TestAttachmentChecksum_Longer(t *testing.T) {
	data := bytes.Repeat([]byte{7}, 1200)
	att := zipAttachment("p.zip", data, 1000)

	rec, warnings := runAttachment(t, []Attachment{att}, false)
	require.NotNil(t, rec.ZipChecksum)
	assert.Equal(t, "", *rec.ZipChecksum)
	assert.Equal(t, []string{CodeAttachmentSizeMismatch}, warningCodes(warnings))

	rec, warnings = runAttachment(t, []Attachment{att}, true)
	require.NotNil(t, rec.ZipChecksum)
	assert.Equal(t, AttachmentChecksum(data), *rec.ZipChecksum)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "1200")
}

func TestAttachmentChecksum_StrictDoesNotDrain(t *testing.T) {
	r := bytes.NewReader(bytes.Repeat([]byte{7}, 5000))
	att := Attachment{
		Name:         "p.zip",
		MIMEType:     ZipMIMEType,
		DeclaredSize: 10,
		Open:         func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}

	_, _ = runAttachment(t, []Attachment{att}, false)
	assert.Equal(t, 5000-11, r.Len())
}

func TestAttachmentChecksum_SizeMismatchNeverSetInStrictMode(t *testing.T) {
	for _, actual := range []int{1, 999, 1001, 4096} {
		data := bytes.Repeat([]byte{1}, actual)
		rec, _ := runAttachment(t, []Attachment{zipAttachment("p.zip", data, 1000)}, false)
		require.NotNil(t, rec.ZipChecksum)
		assert.Equal(t, "", *rec.ZipChecksum, "actual size %d", actual)
	}
}

func TestAttachmentChecksum_Empty(t *testing.T) {
	for _, lenient := range []bool{false, true} {
		rec, warnings := runAttachment(t, []Attachment{zipAttachment("p.zip", nil, 1000)}, lenient)
		require.NotNil(t, rec.ZipChecksum)
		assert.Equal(t, "", *rec.ZipChecksum)
		assert.Equal(t, []string{CodeEmptyAttachment}, warningCodes(warnings))
	}
}

func TestAttachmentChecksum_ZeroDeclaredSize(t *testing.T) {
	for _, lenient := range []bool{false, true} {
		rec, warnings := runAttachment(t, []Attachment{zipAttachment("p.zip", nil, 0)}, lenient)
		require.NotNil(t, rec.ZipChecksum)
		assert.Equal(t, AttachmentChecksum(nil), *rec.ZipChecksum)
		assert.Equal(t, "47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=", *rec.ZipChecksum)
		assert.Empty(t, warnings)
		assert.Empty(t, rec.Notes)
	}
}

func TestAttachmentChecksum_Selection(t *testing.T) {
	data := []byte("zip")
	pdf := Attachment{Name: "notes.pdf", MIMEType: "application/pdf", DeclaredSize: 3}

	t.Run("non-zip skipped and not counted", func(t *testing.T) {
		rec, warnings := runAttachment(t, []Attachment{pdf, zipAttachment("p.zip", data, 3)}, false)
		assert.Empty(t, rec.Notes)
		assert.Equal(t, AttachmentChecksum(data), *rec.ZipChecksum)
		assert.Equal(t, []string{CodeSkippedAttachment}, warningCodes(warnings))
	})

	t.Run("only non-zip", func(t *testing.T) {
		rec, warnings := runAttachment(t, []Attachment{pdf}, false)
		assert.Nil(t, rec.ZipChecksum)
		assert.Equal(t, []string{CodeNoAttachment}, rec.Codes())
		assert.Equal(t, []string{CodeSkippedAttachment, CodeNoAttachment}, warningCodes(warnings))
		assert.Equal(t, SeverityError, warnings[1].Severity)
	})

	t.Run("multiple uses first", func(t *testing.T) {
		other := []byte("other")
		rec, warnings := runAttachment(t, []Attachment{
			zipAttachment("first.zip", data, 3),
			zipAttachment("second.zip", other, 5),
		}, false)
		assert.Equal(t, []string{CodeMultipleAttachments}, rec.Codes())
		assert.Equal(t, AttachmentChecksum(data), *rec.ZipChecksum)
		assert.Equal(t, []string{CodeMultipleAttachments}, warningCodes(warnings))
		assert.Equal(t, SeverityError, warnings[0].Severity)
	})

	t.Run("mime type case", func(t *testing.T) {
		att := zipAttachment("p.zip", data, 3)
		att.MIMEType = "Application/ZIP"
		rec, _ := runAttachment(t, []Attachment{att}, false)
		assert.Equal(t, AttachmentChecksum(data), *rec.ZipChecksum)
	})
}

func TestAttachmentChecksum_ReadFailure(t *testing.T) {
	tests := []struct {
		name string
		att  Attachment
	}{
		{"open fails", Attachment{
			Name: "p.zip", MIMEType: ZipMIMEType, DeclaredSize: 10,
			Open: func() (io.ReadCloser, error) { return nil, errors.New("corrupt stream") },
		}},
		{"read fails", Attachment{
			Name: "p.zip", MIMEType: ZipMIMEType, DeclaredSize: 10,
			Open: func() (io.ReadCloser, error) { return io.NopCloser(&failingReader{after: 4}), nil },
		}},
		{"no stream", Attachment{Name: "p.zip", MIMEType: ZipMIMEType, DeclaredSize: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := runAttachment(t, []Attachment{tt.att}, true)
			require.NotNil(t, rec.ZipChecksum)
			assert.Equal(t, "", *rec.ZipChecksum)
			assert.Equal(t, []string{CodeAttachmentReadFailed}, rec.Codes())
			assert.Equal(t, KindIO, rec.Notes[0].Kind)
		})
	}
}
