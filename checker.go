package passcheck

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/passverify/passcheck"

// Checker verifies submission documents.
//
// A Checker holds no per-document state; Check and CheckDocument may be
// called concurrently.
type Checker struct {
	cfg     *checkerConfig
	asm     *assembler
	val     *validator
	matcher *Matcher

	runID  string
	log    *slog.Logger
	warner Warner
	tracer trace.Tracer
}

// New creates a Checker. WithMasterKey is required.
func New(opts ...Option) (*Checker, error) {
	cfg := &checkerConfig{
		maxTimeDiff:     DefaultMaxTimeDiff,
		trustedProducer: DefaultTrustedProducer,
		concurrency:     1,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.masterKey == nil {
		return nil, ErrMissingMasterKey
	}
	if cfg.concurrency < 1 {
		cfg.concurrency = 1
	}

	runID := uuid.NewString()

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run_id", runID)

	warner := cfg.warner
	if warner == nil {
		warner = slogWarner{log: logger}
	}

	tp := cfg.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	c := &Checker{
		cfg: cfg,
		asm: &assembler{masterKey: cfg.masterKey, log: logger},
		val: &validator{
			maxTimeDiff:     cfg.maxTimeDiff,
			trustedProducer: cfg.trustedProducer,
		},
		runID:  runID,
		log:    logger,
		warner: warner,
		tracer: tp.Tracer(tracerName),
	}
	if cfg.events != nil {
		c.matcher = NewMatcher(cfg.events)
	}
	return c, nil
}

// RunID identifies this checker's batch in logs and reports.
func (c *Checker) RunID() string {
	return c.runID
}

// Matching reports whether a submission log is configured.
func (c *Checker) Matching() bool {
	return c.matcher != nil
}

// Check opens and verifies the document at path. Only a failure to open
// the document is returned as an error; every other problem is a
// diagnostic on the record.
func (c *Checker) Check(ctx context.Context, path string) (*Record, error) {
	if c.cfg.opener == nil {
		return nil, ErrMissingOpener
	}

	doc, err := c.cfg.opener.Open(ctx, path)
	if err != nil {
		c.cfg.metrics.failed()
		return nil, &FileError{File: path, Op: "open", Err: err}
	}
	defer doc.Close()

	return c.CheckDocument(ctx, doc), nil
}

// CheckDocument verifies an already opened document. The caller keeps
// ownership of doc.
func (c *Checker) CheckDocument(ctx context.Context, doc Document) *Record {
	ctx, span := c.tracer.Start(ctx, "passcheck.CheckDocument",
		trace.WithAttributes(
			attribute.String("passcheck.file", doc.Name()),
			attribute.String("passcheck.run_id", c.runID),
		),
	)
	defer span.End()

	start := time.Now()
	b := newBuilder(doc.Name(), c.warner)
	if m := c.cfg.metrics; m != nil {
		b.notes = m.diagnostic
		b.warns = m.warning
	}

	c.stage(ctx, "decrypt", func(ctx context.Context) {
		c.asm.readVisible(doc, b)
		c.asm.decrypt(ctx, doc, b)
	})
	c.stage(ctx, "attachment", func(context.Context) {
		attachmentChecksum(doc, b, c.cfg.lenient)
	})
	c.stage(ctx, "validate", func(context.Context) {
		c.val.validate(b)
	})

	rec := b.rec
	if c.matcher != nil && rec.DecryptedSubmissionDate != nil && rec.DecryptedAuthor != nil {
		c.stage(ctx, "match", func(context.Context) {
			c.match(doc, b)
		})
	}

	rec = b.finish()
	span.SetAttributes(attribute.Int("passcheck.diagnostics", len(rec.Notes)))
	c.cfg.metrics.checked(rec, time.Since(start))
	c.log.DebugContext(ctx, "document checked",
		"file", rec.File,
		"diagnostics", len(rec.Notes),
		"elapsed", time.Since(start),
	)
	return rec
}

func (c *Checker) stage(ctx context.Context, name string, fn func(ctx context.Context)) {
	ctx, span := c.tracer.Start(ctx, "passcheck."+name)
	defer span.End()
	fn(ctx)
}

// match reconciles the record with the submission log.
func (c *Checker) match(doc Document, b *builder) {
	rec := b.rec

	sum, err := pdfChecksum(doc)
	if err != nil {
		b.note(CodePDFChecksumFailed, KindIO, "Failed to compute PDF checksum: %v", err)
		return
	}
	rec.PDFChecksum = sum

	ev, warnings := c.matcher.Match(*rec.DecryptedAuthor, *rec.DecryptedSubmissionDate, sum)
	for _, w := range warnings {
		b.emit(w)
	}
	rec.MatchedEvent = ev
	c.cfg.metrics.matched(ev)
}

// pdfChecksum returns the MD5 hex of the whole file, as recorded by the
// server on upload.
func pdfChecksum(doc Document) (string, error) {
	rc, err := doc.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	h := md5.New()
	if _, err := io.Copy(h, rc); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// CheckAll verifies every path and returns one record per path, in input
// order. A document that cannot be opened yields a record whose only note
// is that failure. Once ctx is done no further documents are started and
// the remaining paths get failure records; the context error is returned
// alongside the records.
func (c *Checker) CheckAll(ctx context.Context, paths []string) ([]*Record, error) {
	ctx, span := c.tracer.Start(ctx, "passcheck.CheckAll",
		trace.WithAttributes(
			attribute.Int("passcheck.files", len(paths)),
			attribute.String("passcheck.run_id", c.runID),
		),
	)
	defer span.End()

	c.log.InfoContext(ctx, "checking documents",
		"files", len(paths),
		"concurrency", c.cfg.concurrency,
		"matching", c.Matching(),
	)

	records := make([]*Record, len(paths))

	var g errgroup.Group
	g.SetLimit(c.cfg.concurrency)
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			records[i] = c.skipped(path, err)
			continue
		}
		g.Go(func() error {
			records[i] = c.checkOrFail(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	if c.cfg.flagIdentical {
		flagIdenticalChecksums(records)
	}

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return records, err
	}
	return records, nil
}

func (c *Checker) checkOrFail(ctx context.Context, path string) *Record {
	if err := ctx.Err(); err != nil {
		return c.skipped(path, err)
	}

	rec, err := c.Check(ctx, path)
	if err != nil {
		c.log.ErrorContext(ctx, "document unreadable", "file", path, "error", err)
		c.warner.Warn(Warning{
			File:     filepath.Base(path),
			Code:     CodeDocumentUnreadable,
			Kind:     KindIO,
			Severity: SeverityError,
			Message:  err.Error(),
		})
		return failureRecord(filepath.Base(path), err)
	}
	return rec
}

// skipped is the failure record of a document never checked because ctx
// was done. It counts as failed.
func (c *Checker) skipped(path string, err error) *Record {
	c.cfg.metrics.failed()
	return failureRecord(filepath.Base(path), err)
}

// flagIdenticalChecksums notes every pair of records that share a
// decrypted checksum or a computed attachment checksum. Both records of a
// pair get a note naming the other.
func flagIdenticalChecksums(records []*Record) {
	for i, a := range records {
		for _, b := range records[i+1:] {
			if sameValue(a.DecryptedChecksum, b.DecryptedChecksum) {
				noteIdentical(a, b, CodeIdenticalChecksum, "Decrypted checksum identical to %s")
			}
			if sameValue(a.ZipChecksum, b.ZipChecksum) {
				noteIdentical(a, b, CodeIdenticalAttachment, "Attachment checksum identical to %s")
			}
		}
	}
}

func noteIdentical(a, b *Record, code, format string) {
	a.Notes = append(a.Notes, Diagnostic{Code: code, Kind: KindCheck, Message: fmt.Sprintf(format, b.File)})
	b.Notes = append(b.Notes, Diagnostic{Code: code, Kind: KindCheck, Message: fmt.Sprintf(format, a.File)})
}

func sameValue(a, b *string) bool {
	return a != nil && b != nil && *a != "" && *a == *b
}
