package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/agentstation/birthsync/pkg/errors"
)

// State is the lifecycle state of an entry. Exactly one state holds at any
// time; Done and Removed are terminal.
type State int

// Entry lifecycle states.
const (
	// Pending means the entry still awaits reconciliation.
	Pending State = iota
	// Done means the entry was successfully applied to the directory.
	Done
	// Removed means the entry was dismissed without a directory call.
	Removed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Done:
		return "done"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no transition leaves this state.
func (s State) Terminal() bool {
	return s == Done || s == Removed
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Date is a calendar date with an optional year. The external directory only
// persists month and day; the year is carried for display and exact-duplicate
// detection but never sent downstream.
type Date struct {
	Year  int // 0 means the year is absent
	Month time.Month
	Day   int
}

// ParseDate parses an ISO-ish date string. Accepted forms are "2006-01-02"
// and the year-less "--01-02" used by vCard-style birthday fields.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
	}
	if t, err := time.Parse("--01-02", s); err == nil {
		return Date{Month: t.Month(), Day: t.Day()}, nil
	}
	return Date{}, fmt.Errorf("%w: unrecognized date %q", errors.ErrInvalidInput, s)
}

// String renders the date back into the persisted form.
func (d Date) String() string {
	if d.Year == 0 {
		return fmt.Sprintf("--%02d-%02d", d.Month, d.Day)
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Month == 0 && d.Day == 0
}

// MarshalText implements encoding.TextMarshaler so dates serialize as their
// persisted string form in JSON and YAML output.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Equal reports exact equality, including the year (or its absence).
func (d Date) Equal(other Date) bool {
	return d == other
}

// Entry is one calendar-derived birthday fact awaiting reconciliation.
// Entries are never physically deleted; State is the deletion marker, so the
// persisted file stays an append-friendly log of every event ever seen.
type Entry struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Date  Date   `json:"date" yaml:"date"`
	State State  `json:"state" yaml:"state"`
}

// dedupKey is the exact (title, date) identity used for duplicate-skipping
// on import. Comparison is case-sensitive.
func (e Entry) dedupKey() string {
	return e.Title + "\x00" + e.Date.String()
}

// contentID derives a stable identity from the entry's content. Collisions
// between distinct entries are resolved by the store with an ordinal suffix.
func contentID(title string, date Date) string {
	sum := sha256.Sum256([]byte(title + "\x00" + date.String()))
	return hex.EncodeToString(sum[:])[:12]
}
