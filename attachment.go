package passcheck

import (
	"crypto/sha256"
	"errors"
	"hash"
	"io"
	"strings"

	"github.com/passverify/passcheck/internal/crypto"
)

// selectAttachment picks the zip attachment of the first page. Other MIME
// types are skipped with a warning and not counted.
func selectAttachment(doc Document, b *builder) (Attachment, bool) {
	var zips []Attachment
	for _, att := range doc.FirstPageAttachments() {
		if !strings.EqualFold(att.MIMEType, ZipMIMEType) {
			b.warn(SeverityWarn, CodeSkippedAttachment,
				"Page 1: skipping attachment %q with MIME type %q", att.Name, att.MIMEType)
			continue
		}
		zips = append(zips, att)
	}

	switch len(zips) {
	case 0:
		b.note(CodeNoAttachment, KindMissingValue, "No zip attachment found on page 1")
		b.warn(SeverityError, CodeNoAttachment, "No zip attachment found on page 1")
		return Attachment{}, false
	case 1:
	default:
		b.note(CodeMultipleAttachments, KindCheck, "%d zip attachments found on page 1, using the first", len(zips))
		b.warn(SeverityError, CodeMultipleAttachments,
			"%d zip attachments found on page 1, using %q", len(zips), zips[0].Name)
	}
	return zips[0], true
}

// attachmentChecksum sets rec.ZipChecksum to base64(SHA-256) of the
// selected attachment. When the stream does not hold exactly the declared
// number of bytes the checksum is left empty, unless lenient is set, in
// which case whatever the stream holds is hashed.
func attachmentChecksum(doc Document, b *builder, lenient bool) {
	att, ok := selectAttachment(doc, b)
	if !ok {
		return
	}

	empty := ""
	b.rec.ZipChecksum = &empty

	sum, err := hashAttachment(att, b, lenient)
	if err != nil {
		b.note(CodeAttachmentReadFailed, KindIO, "Failed to read attachment %q: %v", att.Name, err)
		return
	}
	if sum != nil {
		s := crypto.ToBase64(sum)
		b.rec.ZipChecksum = &s
	}
}

// hashAttachment returns the digest to record, or nil when none should be
// recorded.
func hashAttachment(att Attachment, b *builder, lenient bool) ([]byte, error) {
	if att.Open == nil {
		return nil, errors.New("attachment has no content stream")
	}
	rc, err := att.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	h := sha256.New()
	n, err := io.CopyN(h, rc, att.DeclaredSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if n < att.DeclaredSize {
		if n == 0 {
			b.warn(SeverityWarn, CodeEmptyAttachment,
				"Attachment %q is empty, declared size %d", att.Name, att.DeclaredSize)
			return nil, nil
		}
		b.warn(SeverityWarn, CodeAttachmentSizeMismatch,
			"Attachment %q: read %d bytes, declared size %d", att.Name, n, att.DeclaredSize)
		if !lenient {
			return nil, nil
		}
		return h.Sum(nil), nil
	}

	// The declared size has been read; anything left makes the stream longer.
	var one [1]byte
	m, err := io.ReadFull(rc, one[:])
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if m == 0 {
		return h.Sum(nil), nil
	}

	if !lenient {
		b.warn(SeverityWarn, CodeAttachmentSizeMismatch,
			"Attachment %q is larger than its declared size %d", att.Name, att.DeclaredSize)
		return nil, nil
	}
	return drain(att, rc, h, n, one[:], b)
}

// drain hashes the rest of an overlong stream.
func drain(att Attachment, rc io.Reader, h hash.Hash, n int64, pending []byte, b *builder) ([]byte, error) {
	h.Write(pending)
	rest, err := io.Copy(h, rc)
	if err != nil {
		return nil, err
	}
	b.warn(SeverityWarn, CodeAttachmentSizeMismatch,
		"Attachment %q: read %d bytes, declared size %d", att.Name, n+int64(len(pending))+rest, att.DeclaredSize)
	return h.Sum(nil), nil
}
