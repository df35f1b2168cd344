// Package store owns the authoritative set of calendar-derived entries and
// their lifecycle state. It persists the full set to a tabular CSV file with
// columns Title,Start,done,removed (the same file the calendar export
// feeds) and rewrites it atomically after every committed mutation.
package store

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/rs/zerolog"

	"github.com/agentstation/birthsync/pkg/errors"
	"github.com/agentstation/birthsync/pkg/logging"
)

// csvHeader is the persisted column layout.
var csvHeader = []string{"Title", "Start", "done", "removed"}

// Store holds all entries ever seen, in insertion order. All mutating
// operations are serialized: Save performs a full-state rewrite, and two
// concurrent rewrites could interleave, so at most one save is in flight.
type Store struct {
	mu      sync.Mutex
	path    string
	entries []*Entry
	byID    map[string]*Entry
	logger  *zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load warnings and save diagnostics.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Load parses the persisted entry file at path. A missing file yields an
// empty store (the file is created on first save). Rows whose title or date
// cannot be parsed are skipped with a warning; they never abort the load.
func Load(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:   path,
		byID:   make(map[string]*Entry),
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug().Str("store", path).Msg("no persisted store, starting empty")
			return s, nil
		}
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	if err := s.read(f); err != nil {
		return nil, err
	}
	s.logger.Debug().Str("store", path).Int("entries", len(s.entries)).Msg("store loaded")
	return s, nil
}

// read consumes CSV rows from r into the store. Column positions are taken
// from the header; files written before the state columns existed load with
// every entry Pending.
func (s *Store) read(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil // empty file, nothing persisted yet
		}
		return errors.WrapParse("csv", s.path, err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	titleIdx, ok := col["Title"]
	if !ok {
		return errors.WrapParse("csv", s.path, fmt.Errorf("missing Title column"))
	}
	startIdx, ok := col["Start"]
	if !ok {
		return errors.WrapParse("csv", s.path, fmt.Errorf("missing Start column"))
	}
	doneIdx, hasDone := col["done"]
	removedIdx, hasRemoved := col["removed"]

	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			s.warnCorrupt(line, err.Error())
			continue
		}

		field := func(idx int) string {
			if idx < len(record) {
				return record[idx]
			}
			return ""
		}

		title := field(titleIdx)
		if title == "" {
			s.warnCorrupt(line, "empty title")
			continue
		}
		date, err := ParseDate(field(startIdx))
		if err != nil {
			s.warnCorrupt(line, fmt.Sprintf("unparsable date %q", field(startIdx)))
			continue
		}

		done := hasDone && parseBool(field(doneIdx))
		removed := hasRemoved && parseBool(field(removedIdx))

		state := Pending
		switch {
		case done && removed:
			// Both flags set is inconsistent; Removed takes precedence.
			s.logger.Warn().
				Str("store", s.path).
				Int("line", line).
				Str("title", title).
				Msg("entry marked both done and removed, treating as removed")
			state = Removed
		case removed:
			state = Removed
		case done:
			state = Done
		}

		s.insert(&Entry{Title: title, Date: date, State: state})
	}
	return nil
}

// warnCorrupt reports a skipped row. The row is lost from the in-memory set
// (and from the next save), but the load itself continues.
func (s *Store) warnCorrupt(line int, reason string) {
	err := errors.NewCorruptRowError(s.path, line, reason)
	s.logger.Warn().Err(err).Msg("skipping corrupt store row")
}

// insert assigns a stable ID and appends the entry. Identical content gets
// an ordinal suffix so IDs stay unique within one store.
func (s *Store) insert(e *Entry) {
	id := contentID(e.Title, e.Date)
	if _, taken := s.byID[id]; taken {
		for n := 2; ; n++ {
			candidate := fmt.Sprintf("%s-%d", id, n)
			if _, taken := s.byID[candidate]; !taken {
				id = candidate
				break
			}
		}
	}
	e.ID = id
	s.entries = append(s.entries, e)
	s.byID[id] = e
}

// Path returns the persisted file location.
func (s *Store) Path() string {
	return s.path
}

// Save atomically rewrites the entire persisted state. Exposed so callers
// can retry after a PersistenceError; committed mutations call it internally.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// saveLocked writes all entries, regardless of state, under the held lock.
func (s *Store) saveLocked() error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return errors.NewPersistenceError(s.path, err)
	}
	for _, e := range s.entries {
		record := []string{
			e.Title,
			e.Date.String(),
			strconv.FormatBool(e.State == Done),
			strconv.FormatBool(e.State == Removed),
		}
		if err := w.Write(record); err != nil {
			return errors.NewPersistenceError(s.path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.NewPersistenceError(s.path, err)
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(buf.Bytes())); err != nil {
		return errors.NewPersistenceError(s.path, err)
	}
	return nil
}

// Entries returns a copy of all entries in insertion order.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filtered(func(Entry) bool { return true })
}

// Pending returns all entries still awaiting reconciliation, in insertion order.
func (s *Store) Pending() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filtered(func(e Entry) bool { return e.State == Pending })
}

// Done returns all successfully applied entries, in insertion order.
func (s *Store) Done() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filtered(func(e Entry) bool { return e.State == Done })
}

func (s *Store) filtered(keep func(Entry) bool) []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if keep(*e) {
			out = append(out, *e)
		}
	}
	return out
}

// Get returns the entry with the given ID.
func (s *Store) Get(id string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	if !ok {
		return Entry{}, errors.NewUnknownEntryError(id)
	}
	return *e, nil
}

// MarkDone transitions the entry to Done and commits. Idempotent if the entry
// is already Done; marking a Removed entry is forbidden.
func (s *Store) MarkDone(id string) error {
	return s.transition(id, Done)
}

// MarkRemoved transitions the entry to Removed and commits. Idempotent if the
// entry is already Removed; marking a Done entry is forbidden.
func (s *Store) MarkRemoved(id string) error {
	return s.transition(id, Removed)
}

func (s *Store) transition(id string, to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok {
		return errors.NewUnknownEntryError(id)
	}
	if e.State == to {
		return nil
	}
	if e.State.Terminal() {
		return errors.NewTransitionError(id, e.State.String(), to.String())
	}

	e.State = to
	if err := s.saveLocked(); err != nil {
		// The mutation is kept in memory; the caller may retry Save.
		s.logger.Error().Err(err).Str("entry_id", id).Msg("state change not persisted")
		return err
	}
	return nil
}

// Append adds new entries, skipping any whose exact (title, date) pair
// already exists, and commits once if anything was added. It returns the
// count actually appended. Incoming state is normalized to Pending.
func (s *Store) Append(entries []Entry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.entries))
	for _, e := range s.entries {
		seen[e.dedupKey()] = struct{}{}
	}

	appended := 0
	for _, e := range entries {
		e.State = Pending
		if _, dup := seen[e.dedupKey()]; dup {
			s.logger.Debug().Str("title", e.Title).Stringer("date", e.Date).Msg("skipping duplicate event")
			continue
		}
		seen[e.dedupKey()] = struct{}{}
		s.insert(&Entry{Title: e.Title, Date: e.Date, State: Pending})
		appended++
	}

	if appended == 0 {
		return 0, nil
	}
	if err := s.saveLocked(); err != nil {
		return appended, err
	}
	return appended, nil
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}
