package passcheck

import "time"

// validator runs the consistency checks over an assembled record. The
// checks run in a fixed order and none of them stops the others.
type validator struct {
	maxTimeDiff     time.Duration
	trustedProducer string
}

func (v *validator) validate(b *builder) {
	rec := b.rec

	if rec.DecryptedAuthor == nil {
		b.note(CodeMissingAuthor, KindMissingValue, "Invalid or missing author")
	}
	if rec.PDFAuthor == nil {
		b.note(CodeMissingPDFAuthor, KindMissingValue, "Missing PDF author")
	}
	if rec.PDFAuthor != nil && rec.DecryptedAuthor != nil && *rec.PDFAuthor != *rec.DecryptedAuthor {
		b.note(CodeMismatchedAuthor, KindCheck, "Mismatched author")
	}

	switch {
	case rec.DecryptedChecksum == nil:
		b.note(CodeMissingChecksum, KindMissingValue, "Invalid or missing checksum")
	case rec.ZipChecksum == nil || *rec.ZipChecksum == "":
		b.note(CodeChecksumNotCalculated, KindCheck, "Attachment checksum not calculated")
	case *rec.DecryptedChecksum != *rec.ZipChecksum:
		b.warn(SeverityError, CodeMismatchedChecksum, "Mismatched checksum")
		b.note(CodeMismatchedChecksum, KindCheck, "Mismatched checksum")
	}

	if rec.DecryptedVersion == nil {
		b.note(CodeMissingVersion, KindMissingValue, "Invalid or missing version")
	}
	if rec.DecryptedDate == nil {
		b.note(CodeMissingDate, KindMissingValue, "Invalid or missing date stamp")
	}
	if rec.PDFCreationDate == nil {
		b.note(CodeMissingPDFCreationDate, KindMissingValue, "Missing PDF creation date")
	}
	if rec.PDFModDate == nil {
		b.note(CodeMissingPDFModDate, KindMissingValue, "Missing PDF modification date")
	}
	if rec.DecryptedDueDate == nil {
		b.note(CodeMissingDueDate, KindMissingValue, "Invalid or missing due date")
	}

	if rec.DecryptedDate != nil {
		v.checkDates(b)
	}
	if rec.DecryptedDueDate != nil {
		v.checkLate(b)
	}
}

func (v *validator) checkDates(b *builder) {
	rec := b.rec
	stamp := secs(*rec.DecryptedDate)

	if rec.PDFCreationDate != nil && secs(*rec.PDFCreationDate) != stamp {
		b.note(CodeMismatchedCreationDate, KindCheck, "Encrypted date stamp does not match PDF creation date")
	}

	if rec.PDFModDate != nil {
		mod := secs(*rec.PDFModDate)
		switch {
		case mod < stamp:
			b.note(CodeModBeforeCreation, KindCheck, "PDF modification date before creation date")
		case time.Duration(mod-stamp)*time.Second > v.maxTimeDiff:
			b.note(CodeModExceedsTolerance, KindCheck,
				"PDF modification date more than %v after creation date", v.maxTimeDiff)
		}
	}
}

// checkLate compares the due date with the submission time. The
// submission date is only trusted when the trusted producer wrote it;
// otherwise the encrypted date stamp stands in for it.
func (v *validator) checkLate(b *builder) {
	rec := b.rec

	var submitted *time.Time
	if rec.DecryptedSubmissionDate != nil {
		if rec.DecryptedApplicationName != nil && *rec.DecryptedApplicationName == v.trustedProducer {
			submitted = rec.DecryptedSubmissionDate
		} else {
			b.note(CodeUntrustedSubmissionDate, KindCheck,
				"Submission date not set by %s, using the date stamp instead", v.trustedProducer)
		}
	}
	if submitted == nil {
		submitted = rec.DecryptedDate
	}
	if submitted == nil {
		return
	}

	if secs(*rec.DecryptedDueDate) < secs(*submitted) {
		b.note(CodeLateSubmission, KindCheck, "Late submission")
	}
}
