package passcheck

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// SentinelJobID marks the event returned when no submission matched.
const SentinelJobID = -1

// NoExitCode is the ExitCode of an event whose job has not finished.
const NoExitCode = -1

// Event is one submission recorded by the server.
type Event struct {
	JobID     int
	Uploader  string
	Timestamp time.Time
	// Checksum is the MD5 hex of the uploaded PDF.
	Checksum string
	// GroupMembers is nil for solo submissions.
	GroupMembers []string

	Course     string
	Assignment string
	// ExitCode is NoExitCode when the server had not recorded one.
	ExitCode int
}

// IsSentinel reports whether e stands for "no matching submission".
func (e *Event) IsSentinel() bool {
	return e != nil && e.JobID == SentinelJobID
}

// HasMember reports whether name is one of the group members.
func (e *Event) HasMember(name string) bool {
	return slices.Contains(e.GroupMembers, name)
}

// EventTable is an immutable set of server events. It is safe for
// concurrent reads.
type EventTable struct {
	events     []Event
	byID       map[int]int
	byChecksum map[string][]int
}

// NewEventTable builds a table from events, keeping their order.
// Job IDs must be unique and must not be SentinelJobID.
func NewEventTable(events []Event) (*EventTable, error) {
	t := &EventTable{
		events:     make([]Event, len(events)),
		byID:       make(map[int]int, len(events)),
		byChecksum: make(map[string][]int),
	}
	copy(t.events, events)

	for i, e := range t.events {
		if e.JobID == SentinelJobID {
			return nil, fmt.Errorf("%w: job ID %d is reserved", ErrFormat, SentinelJobID)
		}
		if _, dup := t.byID[e.JobID]; dup {
			return nil, fmt.Errorf("%w: duplicate job ID %d", ErrFormat, e.JobID)
		}
		t.byID[e.JobID] = i
		key := checksumKey(e.Checksum)
		t.byChecksum[key] = append(t.byChecksum[key], i)
	}
	return t, nil
}

// Len returns the number of events.
func (t *EventTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.events)
}

// Events returns a copy of the events in table order.
func (t *EventTable) Events() []Event {
	if t == nil {
		return nil
	}
	return slices.Clone(t.events)
}

// Lookup returns the event with the given job ID.
func (t *EventTable) Lookup(jobID int) (Event, bool) {
	if t == nil {
		return Event{}, false
	}
	i, ok := t.byID[jobID]
	if !ok {
		return Event{}, false
	}
	return t.events[i], true
}

// withChecksum calls fn for every event whose checksum equals md5, in
// table order, until fn returns false.
func (t *EventTable) withChecksum(md5 string, fn func(e *Event) bool) {
	if t == nil {
		return
	}
	for _, i := range t.byChecksum[checksumKey(md5)] {
		if !fn(&t.events[i]) {
			return
		}
	}
}

func checksumKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
