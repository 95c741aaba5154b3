package passcheck

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Bucket classifies a near miss found while matching a submission.
type Bucket int

const (
	// BucketDateMismatch holds events by the same uploader at another time.
	BucketDateMismatch Bucket = iota
	// BucketGroupMember holds events where the author is a group member.
	BucketGroupMember
	// BucketChecksumOnly holds events that only share the checksum.
	BucketChecksumOnly

	numBuckets
)

func (b Bucket) String() string {
	switch b {
	case BucketDateMismatch:
		return CodeMatchDateMismatch
	case BucketGroupMember:
		return CodeMatchGroupMember
	case BucketChecksumOnly:
		return CodeMatchChecksumOnly
	}
	return "bucket(" + strconv.Itoa(int(b)) + ")"
}

var bucketMessages = [numBuckets]string{
	BucketDateMismatch: "submissions by %s with matching checksum but different upload time: %s",
	BucketGroupMember:  "group submissions including %s with matching checksum: %s",
	BucketChecksumOnly: "submissions by others with matching checksum (author %s): %s",
}

// Matcher reconciles checked documents with the server's submission log.
// It only reads the event table and is safe for concurrent use.
type Matcher struct {
	table *EventTable
}

// NewMatcher returns a Matcher over table.
func NewMatcher(table *EventTable) *Matcher {
	return &Matcher{table: table}
}

// Match looks for the event recording this submission. Timestamps are
// compared at second precision.
//
// The first event with the same uploader and time is returned at once,
// with no warnings. Otherwise every candidate sharing the checksum is
// sorted into a bucket, one warning is produced per non-empty bucket, and
// a sentinel event carrying author, submitted and md5 is returned followed
// by a no-matching-submission warning. Ambiguity never causes an error.
func (m *Matcher) Match(author string, submitted time.Time, md5 string) (*Event, []Warning) {
	var buckets [numBuckets][]int
	var exact *Event

	m.table.withChecksum(md5, func(e *Event) bool {
		switch {
		case e.Uploader == author && secs(e.Timestamp) == secs(submitted):
			exact = e
			return false
		case e.Uploader == author:
			buckets[BucketDateMismatch] = append(buckets[BucketDateMismatch], e.JobID)
		case e.HasMember(author):
			buckets[BucketGroupMember] = append(buckets[BucketGroupMember], e.JobID)
		default:
			buckets[BucketChecksumOnly] = append(buckets[BucketChecksumOnly], e.JobID)
		}
		return true
	})

	if exact != nil {
		found := *exact
		return &found, nil
	}

	var warnings []Warning
	for b, ids := range buckets {
		if len(ids) == 0 {
			continue
		}
		bucket := Bucket(b)
		warnings = append(warnings, Warning{
			Code:     bucket.String(),
			Kind:     KindAmbiguousMatch,
			Severity: SeverityWarn,
			Message:  fmt.Sprintf(bucketMessages[bucket], author, joinIDs(ids)),
		})
	}

	sentinel := &Event{
		JobID:     SentinelJobID,
		Uploader:  author,
		Timestamp: submitted,
		Checksum:  md5,
	}
	warnings = append(warnings, Warning{
		Code:     CodeNoMatchingSubmission,
		Kind:     KindAmbiguousMatch,
		Severity: SeverityWarn,
		Message: fmt.Sprintf("No matching submission found for %s at %s with PDF MD5 %s",
			author, submitted.Format(time.DateTime), md5),
	})
	return sentinel, warnings
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}
