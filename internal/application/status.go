package application

import (
	"encoding/json"
	"strings"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusReviewed  Status = "reviewed"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

var Statuses = []Status{
	StatusPending,
	StatusReviewed,
	StatusAccepted,
	StatusRejected,
	StatusCompleted,
}

// NormalizeStatus maps any backend spelling onto the canonical lower case
// value. Unknown and empty values are pending.
func NormalizeStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusReviewed:
		return StatusReviewed
	case StatusAccepted:
		return StatusAccepted
	case StatusRejected:
		return StatusRejected
	case StatusCompleted:
		return StatusCompleted
	}
	return StatusPending
}

// ParseStatus is NormalizeStatus for user input, it rejects unknown values
// instead of defaulting them.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Statuses {
		if st == known {
			return st, true
		}
	}
	return "", false
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		*s = StatusPending
		return nil
	}
	*s = NormalizeStatus(raw)
	return nil
}

// Backend is the capitalised spelling the backend expects on writes.
func (s Status) Backend() string {
	n := NormalizeStatus(string(s))
	return strings.ToUpper(string(n[:1])) + string(n[1:])
}

func (s Status) Label() string {
	return NormalizeStatus(string(s)).Backend()
}

// StatusCounts is a tally of applications per status.
type StatusCounts map[Status]int

func (c StatusCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

func (c *StatusCounts) UnmarshalJSON(b []byte) error {
	raw := map[string]int{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := newStatusCounts()
	for k, v := range raw {
		if st, ok := ParseStatus(k); ok {
			out[st] += v
		}
	}
	*c = out
	return nil
}

func newStatusCounts() StatusCounts {
	out := make(StatusCounts, len(Statuses))
	for _, st := range Statuses {
		out[st] = 0
	}
	return out
}

// CountStatuses tallies every application, the list is expected to be
// unfiltered.
func CountStatuses(list []Application) StatusCounts {
	out := newStatusCounts()
	for _, a := range list {
		out[NormalizeStatus(string(a.Status))]++
	}
	return out
}
