package passcheck

import (
	"context"
	"log/slog"
	"time"

	"github.com/passverify/passcheck/internal/crypto"
)

// assembler fills a Record from a document's visible metadata and its
// encrypted fields.
type assembler struct {
	masterKey crypto.MasterKey
	log       *slog.Logger
}

// readVisible copies the metadata any PDF viewer shows.
func (a *assembler) readVisible(doc Document, b *builder) {
	rec := b.rec
	if author, ok := doc.Author(); ok {
		rec.PDFAuthor = &author
	}
	if t, ok := doc.CreationDate(); ok {
		rec.PDFCreationDate = &t
	}
	if t, ok := doc.ModDate(); ok {
		rec.PDFModDate = &t
	}
}

// decrypt recovers the encrypted fields. Each field is decrypted on its
// own and every failure becomes exactly one diagnostic.
func (a *assembler) decrypt(ctx context.Context, doc Document, b *builder) {
	rec := b.rec
	meta := doc.Metadata

	raw, ok := meta(KeySessionKey)
	key, err := unwrapSessionKey(raw, ok, a.masterKey)
	if err != nil {
		a.failed(ctx, b, CodeInvalidKey, "Invalid session key", err)
	}

	raw, ok = meta(KeyChecksum)
	if rec.DecryptedChecksum, err = decryptString(FieldChecksum, raw, ok, key); err != nil {
		a.failed(ctx, b, CodeInvalidChecksum, "Invalid or missing encrypted checksum", err)
	}

	raw, ok = meta(KeyDate)
	if rec.DecryptedDate, err = decryptTimestamp(FieldDate, raw, ok, key); err != nil {
		a.failed(ctx, b, CodeInvalidDate, "Invalid or missing encrypted date stamp", err)
	}

	raw, ok = meta(KeyVersion)
	if rec.DecryptedVersion, err = decryptString(FieldVersion, raw, ok, key); err != nil {
		a.failed(ctx, b, CodeInvalidVersion, "Invalid or missing encrypted version", err)
	}

	if rec.DecryptedChecksum == nil && rec.DecryptedVersion == nil {
		if legacy, ok := meta(KeyLegacyChecksum); ok {
			rec.DecryptedChecksum = &legacy
			b.note(CodeLegacyFormat, KindCheck, "Old version of the submission client probably used")
		}
	}

	raw, ok = meta(KeyDueDate)
	if rec.DecryptedDueDate, err = decryptTimestamp(FieldDueDate, raw, ok, key); err != nil {
		a.failed(ctx, b, CodeInvalidDueDate, "Invalid or missing encrypted due date", err)
	}

	raw, ok = meta(KeyAuthor)
	if rec.DecryptedAuthor, err = decryptString(FieldAuthor, raw, ok, key); err != nil {
		a.failed(ctx, b, CodeInvalidAuthor, "Invalid or missing encrypted author", err)
	}

	raw, ok = meta(KeyApplicationName)
	if rec.DecryptedApplicationName, err = decryptString(FieldApplicationName, raw, ok, key); err != nil {
		a.failed(ctx, b, CodeInvalidApplication, "Invalid or missing encrypted application name", err)
	}

	// The submission date is only written by newer clients.
	if raw, ok = meta(KeySubmissionDate); ok {
		if rec.DecryptedSubmissionDate, err = decryptTimestamp(FieldSubmissionDate, raw, ok, key); err != nil {
			a.failed(ctx, b, CodeInvalidSubmissionDate, "Invalid encrypted submission date", err)
		}
	}
}

func (a *assembler) failed(ctx context.Context, b *builder, code, msg string, err error) {
	a.log.DebugContext(ctx, "field decrypt failed",
		"file", b.rec.File,
		"code", code,
		"error", err,
	)
	b.note(code, KindOf(err), "%s", msg)
}

// secs truncates t to whole seconds since the epoch. Truncation is floor,
// so 999ms and 0ms of the same second compare equal.
func secs(t time.Time) int64 {
	return t.Unix()
}
