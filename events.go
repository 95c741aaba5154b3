package passcheck

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/passverify/passcheck/internal/crypto"
)

// Server export format: a header line followed by one tab-separated line
// per submission.
const (
	exportFields = 8

	// ExportTimeLayout is the upload time layout of the server export.
	// The server also writes it without the dot before the milliseconds.
	ExportTimeLayout = "2006-01-02T150405.000-0700"

	// SignatureSuffix names the detached signature of an export file.
	SignatureSuffix = ".sig"
)

// ExportHeader is the header line written by the server.
var ExportHeader = []string{
	"Submission ID", "Upload Time", "Course", "Assignment",
	"Exit Code", "Uploaded By", "Project Group", "PDF MD5",
}

type exportLine struct {
	event Event
	line  int
}

// LoadEvents reads one or more server export files into a single table.
// A malformed line or a job ID repeated in any file aborts the load with a
// *FormatError.
func LoadEvents(paths ...string) (*EventTable, error) {
	return loadEvents(nil, paths)
}

// LoadSignedEvents is LoadEvents for exports that carry a detached
// ML-DSA-65 signature in "<file>.sig" (base64). Every file must verify
// under publicKey before any of it is parsed.
func LoadSignedEvents(publicKey []byte, paths ...string) (*EventTable, error) {
	return loadEvents(func(path string, data []byte) error {
		return verifyExport(publicKey, path, data)
	}, paths)
}

func loadEvents(verify func(path string, data []byte) error, paths []string) (*EventTable, error) {
	type origin struct {
		file string
		line int
	}
	seen := make(map[int]origin)
	var events []Event

	for _, path := range paths {
		lines, err := readExportFile(path, verify)
		if err != nil {
			return nil, err
		}
		for _, l := range lines {
			if prev, dup := seen[l.event.JobID]; dup {
				return nil, &FormatError{
					File:    path,
					Line:    l.line,
					Message: fmt.Sprintf("duplicate job ID %d (first seen at %s:%d)", l.event.JobID, prev.file, prev.line),
				}
			}
			seen[l.event.JobID] = origin{file: path, line: l.line}
			events = append(events, l.event)
		}
	}

	return NewEventTable(events)
}

func readExportFile(path string, verify func(path string, data []byte) error) ([]exportLine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{File: path, Op: "open", Err: err}
	}

	if verify != nil {
		if err := verify(path, data); err != nil {
			return nil, err
		}
	}

	return parseExport(bytes.NewReader(data), path)
}

func verifyExport(publicKey []byte, path string, data []byte) error {
	sigPath := path + SignatureSuffix
	text, err := os.ReadFile(sigPath)
	if err != nil {
		return &FileError{File: sigPath, Op: "open", Err: err}
	}

	sig, err := crypto.DecodeBase64(string(text))
	if err != nil {
		return fmt.Errorf("%s: decode signature: %w", sigPath, err)
	}

	if err := crypto.VerifyExport(publicKey, data, sig); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadExportPublicKey reads the server's base64 ML-DSA-65 public key.
func LoadExportPublicKey(path string) ([]byte, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export key: %w", err)
	}

	key, err := crypto.DecodeBase64(string(text))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(key) != crypto.MLDSAPublicKeySize {
		return nil, fmt.Errorf("%s: %w: got %d, want %d", path, crypto.ErrInvalidPublicKeySize, len(key), crypto.MLDSAPublicKeySize)
	}
	return key, nil
}

// ParseEvents parses a single server export read from r. name is used in
// error messages.
func ParseEvents(r io.Reader, name string) ([]Event, error) {
	lines, err := parseExport(r, name)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]int, len(lines))
	events := make([]Event, 0, len(lines))
	for _, l := range lines {
		if first, dup := seen[l.event.JobID]; dup {
			return nil, &FormatError{
				File:    name,
				Line:    l.line,
				Message: fmt.Sprintf("duplicate job ID %d (first seen at line %d)", l.event.JobID, first),
			}
		}
		seen[l.event.JobID] = l.line
		events = append(events, l.event)
	}
	return events, nil
}

func parseExport(r io.Reader, name string) ([]exportLine, error) {
	var out []exportLine

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if lineNo == 1 {
			continue // header
		}
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}

		e, err := parseExportLine(text)
		if err != nil {
			return nil, &FormatError{File: name, Line: lineNo, Err: err}
		}
		out = append(out, exportLine{event: e, line: lineNo})
	}
	if err := sc.Err(); err != nil {
		return nil, &FileError{File: name, Op: "read", Err: err}
	}
	return out, nil
}

func parseExportLine(text string) (Event, error) {
	fields := strings.Split(text, "\t")
	if len(fields) != exportFields {
		return Event{}, fmt.Errorf("expected %d tab-separated fields, got %d", exportFields, len(fields))
	}

	jobID, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return Event{}, fmt.Errorf("invalid submission ID %q", fields[0])
	}
	if jobID == SentinelJobID {
		return Event{}, fmt.Errorf("submission ID %d is reserved", SentinelJobID)
	}

	ts, err := ParseExportTime(fields[1])
	if err != nil {
		return Event{}, err
	}

	uploader := strings.TrimSpace(fields[5])

	// An empty last column is a short line to the server's own reader.
	checksum := strings.TrimSpace(fields[7])
	if checksum == "" {
		return Event{}, fmt.Errorf("empty checksum")
	}

	return Event{
		JobID:        jobID,
		Timestamp:    ts,
		Course:       strings.TrimSpace(fields[2]),
		Assignment:   strings.TrimSpace(fields[3]),
		ExitCode:     parseExitCode(fields[4]),
		Uploader:     uploader,
		GroupMembers: parseGroup(fields[6], uploader),
		Checksum:     checksum,
	}, nil
}

// parseExitCode reads the informational exit code column. The server
// leaves it empty while a job is queued or running; anything that is not
// an integer reads as NoExitCode.
func parseExitCode(field string) int {
	code, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil {
		return NoExitCode
	}
	return code
}

// parseGroup splits the comma-separated group column. The server repeats
// the uploader there for solo submissions, which yields nil.
func parseGroup(field, uploader string) []string {
	field = strings.TrimSpace(field)
	if field == "" || field == uploader {
		return nil
	}
	var members []string
	for _, m := range strings.Split(field, ",") {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}
	if len(members) == 1 && members[0] == uploader {
		return nil
	}
	return members
}

// ParseExportTime parses an upload time of the server export, with or
// without the dot before the milliseconds.
func ParseExportTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(ExportTimeLayout, s); err == nil {
		return t, nil
	}

	// 2006-01-02T150405000-0700: insert the dot after the seconds.
	const secondsEnd = len("2006-01-02T150405")
	if len(s) > secondsEnd && s[secondsEnd] != '.' {
		if t, err := time.Parse(ExportTimeLayout, s[:secondsEnd]+"."+s[secondsEnd:]); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid upload time %q", s)
}

// FormatExportTime formats t the way the server writes upload times.
func FormatExportTime(t time.Time) string {
	return t.Format(ExportTimeLayout)
}
