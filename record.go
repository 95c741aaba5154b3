package passcheck

import (
	"fmt"
	"time"
)

// Codes of diagnostics and warnings.
const (
	CodeInvalidKey              = "invalid-key"
	CodeInvalidChecksum         = "invalid-or-missing-checksum"
	CodeInvalidDate             = "invalid-or-missing-date"
	CodeInvalidVersion          = "invalid-or-missing-version"
	CodeLegacyFormat            = "legacy-format"
	CodeInvalidDueDate          = "invalid-or-missing-due-date"
	CodeInvalidAuthor           = "invalid-or-missing-author"
	CodeInvalidApplication      = "invalid-or-missing-application"
	CodeInvalidSubmissionDate   = "invalid-or-missing-submission-date"
	CodeNoAttachment            = "no-attachment"
	CodeMultipleAttachments     = "multiple-attachments"
	CodeAttachmentReadFailed    = "attachment-read-failed"
	CodeMissingAuthor           = "missing-decrypted-author"
	CodeMissingChecksum         = "missing-decrypted-checksum"
	CodeMissingVersion          = "missing-decrypted-version"
	CodeMissingDate             = "missing-decrypted-date"
	CodeMissingDueDate          = "missing-decrypted-due-date"
	CodeMissingPDFAuthor        = "missing-pdf-author"
	CodeMismatchedAuthor        = "mismatched-author"
	CodeChecksumNotCalculated   = "checksum-not-calculated"
	CodeMismatchedChecksum      = "mismatched-checksum"
	CodeMissingPDFCreationDate  = "missing-pdf-creation-date"
	CodeMissingPDFModDate       = "missing-pdf-mod-date"
	CodeMismatchedCreationDate  = "mismatched-creation-date"
	CodeModBeforeCreation       = "mod-before-creation"
	CodeModExceedsTolerance     = "mod-exceeds-tolerance"
	CodeUntrustedSubmissionDate = "untrusted-submission-date"
	CodeLateSubmission          = "late-submission"
	CodePDFChecksumFailed       = "pdf-checksum-failed"
	CodeIdenticalChecksum       = "identical-checksum"
	CodeIdenticalAttachment     = "identical-attachment-checksum"
	CodeDocumentUnreadable      = "document-unreadable"
	CodeSkippedAttachment       = "skipped-attachment"
	CodeEmptyAttachment         = "empty-attachment"
	CodeAttachmentSizeMismatch  = "attachment-size-mismatch"
	CodeNoMatchingSubmission    = "no-matching-submission"
	CodeMatchDateMismatch       = "date-mismatch"
	CodeMatchGroupMember        = "group-member"
	CodeMatchChecksumOnly       = "checksum-only"
)

// Diagnostic is one finding recorded on a Record.
type Diagnostic struct {
	Code    string
	Kind    ErrorKind
	Message string
}

func (d Diagnostic) String() string {
	return d.Message
}

// Severity grades an operator-visible warning.
type Severity int

const (
	SeverityWarn Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warn"
}

// Warning is an operator-visible message emitted while a file is checked.
// Warnings are not part of the Record.
type Warning struct {
	File     string
	Code     string
	Kind     ErrorKind
	Severity Severity
	Message  string
}

// Record is the verification result for one document.
//
// Pointer fields are nil when the value is absent or could not be
// recovered. ZipChecksum is nil when the document has no zip attachment and
// the empty string when an attachment exists but its checksum was not
// computed.
type Record struct {
	File string

	PDFAuthor       *string
	PDFCreationDate *time.Time
	PDFModDate      *time.Time

	ZipChecksum *string

	DecryptedChecksum        *string
	DecryptedDate            *time.Time
	DecryptedVersion         *string
	DecryptedDueDate         *time.Time
	DecryptedAuthor          *string
	DecryptedApplicationName *string
	DecryptedSubmissionDate  *time.Time

	// PDFChecksum is the MD5 hex of the whole file, set when matching ran.
	PDFChecksum string

	Notes []Diagnostic

	// MatchedEvent is nil when no match was attempted, the sentinel event
	// (JobID == SentinelJobID) when nothing in the table matched, or the
	// matching table entry.
	MatchedEvent *Event
}

// HasNote reports whether r carries a diagnostic with the given code.
func (r *Record) HasNote(code string) bool {
	for _, d := range r.Notes {
		if d.Code == code {
			return true
		}
	}
	return false
}

// Codes returns the diagnostic codes of r in order.
func (r *Record) Codes() []string {
	codes := make([]string, len(r.Notes))
	for i, d := range r.Notes {
		codes[i] = d.Code
	}
	return codes
}

// Clean reports whether r has no diagnostics and, when matching ran, was
// matched to a real submission.
func (r *Record) Clean() bool {
	if len(r.Notes) > 0 {
		return false
	}
	return r.MatchedEvent == nil || !r.MatchedEvent.IsSentinel()
}

// failureRecord is the record substituted for a document that could not be
// opened or read.
func failureRecord(file string, err error) *Record {
	return &Record{
		File: file,
		Notes: []Diagnostic{{
			Code:    CodeDocumentUnreadable,
			Kind:    KindIO,
			Message: fmt.Sprintf("Could not read document: %v", err),
		}},
	}
}

// builder assembles one Record. It owns the record's diagnostics sink and
// is never shared between files.
type builder struct {
	rec    *Record
	warner Warner
	notes  func(code string)
	warns  func(w Warning)
}

func newBuilder(file string, warner Warner) *builder {
	return &builder{
		rec:    &Record{File: file},
		warner: warner,
	}
}

// note appends a diagnostic.
func (b *builder) note(code string, kind ErrorKind, format string, args ...any) {
	b.rec.Notes = append(b.rec.Notes, Diagnostic{
		Code:    code,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	})
	if b.notes != nil {
		b.notes(code)
	}
}

// warn emits an operator-visible warning for the file being built.
func (b *builder) warn(sev Severity, code string, format string, args ...any) {
	b.emit(Warning{
		Code:     code,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (b *builder) emit(w Warning) {
	w.File = b.rec.File
	if b.warns != nil {
		b.warns(w)
	}
	if b.warner != nil {
		b.warner.Warn(w)
	}
}

// finish hands over the record. The builder must not be used afterwards.
func (b *builder) finish() *Record {
	rec := b.rec
	b.rec = nil
	return rec
}
