// Package report writes check results as a tab-separated table.
package report

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/passverify/passcheck"
)

// Missing stands in for absent values.
const Missing = "―"

// DateLayout formats every date column.
const DateLayout = "2006-01-02 15:04:05"

// Options configures a Writer.
type Options struct {
	// RunID, if set, is written as a "# run" comment before the header.
	RunID string
	// Matching adds the submission ID column.
	Matching bool
	// Location for date columns. Defaults to UTC.
	Location *time.Location
}

// Writer writes one row per record.
type Writer struct {
	w    *bufio.Writer
	opts Options
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer, opts Options) *Writer {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Writer{w: bufio.NewWriter(w), opts: opts}
}

// Header returns the column names.
func (w *Writer) Header() []string {
	cols := []string{
		"File", "Author", "Author Check", "Date Check", "Creation Date",
		"Modification Date", "Version", "Application", "Submission Date",
	}
	if w.opts.Matching {
		cols = append(cols, "Submission ID")
	}
	return append(cols, "Notes")
}

// WriteHeader writes the run comment and the header line.
func (w *Writer) WriteHeader() error {
	if w.opts.RunID != "" {
		if _, err := w.w.WriteString("# run " + w.opts.RunID + "\n"); err != nil {
			return err
		}
	}
	return w.writeRow(w.Header())
}

// Write writes rec as one row.
func (w *Writer) Write(rec *passcheck.Record) error {
	row := []string{
		orMissing(rec.File),
		str(rec.PDFAuthor),
		str(rec.DecryptedAuthor),
		w.date(rec.DecryptedDate),
		w.date(rec.PDFCreationDate),
		w.date(rec.PDFModDate),
		str(rec.DecryptedVersion),
		str(rec.DecryptedApplicationName),
		w.date(rec.DecryptedSubmissionDate),
	}
	if w.opts.Matching {
		row = append(row, jobID(rec.MatchedEvent))
	}
	return w.writeRow(append(row, notes(rec.Notes)))
}

// Flush writes buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

func (w *Writer) writeRow(cols []string) error {
	_, err := w.w.WriteString(strings.Join(cols, "\t") + "\n")
	return err
}

func (w *Writer) date(t *time.Time) string {
	if t == nil {
		return Missing
	}
	return t.In(w.opts.Location).Format(DateLayout)
}

// Write writes a header and all records to w.
func Write(w io.Writer, records []*passcheck.Record, opts Options) error {
	rw := NewWriter(w, opts)
	if err := rw.WriteHeader(); err != nil {
		return err
	}
	for _, rec := range records {
		if err := rw.Write(rec); err != nil {
			return err
		}
	}
	return rw.Flush()
}

func str(s *string) string {
	if s == nil {
		return Missing
	}
	return orMissing(*s)
}

func orMissing(s string) string {
	if s == "" {
		return Missing
	}
	return s
}

func jobID(ev *passcheck.Event) string {
	if ev == nil || ev.IsSentinel() {
		return Missing
	}
	return strconv.Itoa(ev.JobID)
}

// notes joins the diagnostic messages into one quoted cell. Quotes inside
// messages are doubled.
func notes(ds []passcheck.Diagnostic) string {
	if len(ds) == 0 {
		return ""
	}
	msgs := make([]string, len(ds))
	for i, d := range ds {
		msgs[i] = strings.ReplaceAll(d.Message, `"`, `""`)
	}
	return `"` + strings.Join(msgs, "\n") + `"`
}
