// Package reconcile proposes directory candidates for pending entries and
// tracks, per entry, which candidate the user has chosen to apply.
package reconcile

import (
	"fmt"
	"sort"
	"sync"

	"github.com/agentstation/birthsync/pkg/directory"
	"github.com/agentstation/birthsync/pkg/errors"
	"github.com/agentstation/birthsync/pkg/match"
	"github.com/agentstation/birthsync/pkg/store"
)

// Defaults carried over as configuration rather than constants; both were
// unexplained magic numbers in earlier tooling.
const (
	// DefaultThreshold is the minimum score a candidate must strictly exceed.
	DefaultThreshold = 60.0
	// DefaultLimit caps the ranked candidate list per entry.
	DefaultLimit = 10
)

// Candidate is a directory contact proposed as the match for an entry. The
// sentinel "create new contact" candidate carries directory.CreateRef.
type Candidate struct {
	Name string `json:"name" yaml:"name"`
	Ref  string `json:"ref" yaml:"ref"`
}

// IsCreate reports whether applying this candidate creates a new contact
// rather than updating an existing one.
func (c Candidate) IsCreate() bool {
	return c.Ref == directory.CreateRef
}

// Engine computes ranked candidate lists for pending entries against the
// contact-name universe supplied at construction. Candidate lists are
// computed lazily and cached until Invalidate.
type Engine struct {
	mu         sync.Mutex
	store      *store.Store
	scorer     *match.Scorer
	threshold  float64
	limit      int
	names      []string
	refByName  map[string]string
	candidates map[string][]Candidate
	chosen     map[string]string
}

// Option configures an Engine.
type Option func(*Engine)

// WithThreshold sets the minimum candidate score.
func WithThreshold(threshold float64) Option {
	return func(e *Engine) {
		e.threshold = threshold
	}
}

// WithLimit caps the candidate list length.
func WithLimit(limit int) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.limit = limit
		}
	}
}

// WithScorer replaces the default scorer.
func WithScorer(scorer *match.Scorer) Option {
	return func(e *Engine) {
		if scorer != nil {
			e.scorer = scorer
		}
	}
}

// NewEngine creates an engine over the given store and contact universe.
// The contact list is a flat snapshot; the engine never live-queries the
// directory per entry.
func NewEngine(s *store.Store, contacts []directory.Contact, opts ...Option) *Engine {
	e := &Engine{
		store:      s,
		scorer:     match.NewScorer(),
		threshold:  DefaultThreshold,
		limit:      DefaultLimit,
		refByName:  make(map[string]string, len(contacts)),
		candidates: make(map[string][]Candidate),
		chosen:     make(map[string]string),
	}
	for _, c := range contacts {
		if c.DisplayName == "" {
			continue
		}
		e.names = append(e.names, c.DisplayName)
		if _, dup := e.refByName[c.DisplayName]; !dup {
			e.refByName[c.DisplayName] = c.Ref
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Candidates returns the ranked candidate list for the entry, computing and
// caching it on first use. The list always has at least one element: when no
// contact qualifies it holds the single "create new contact" sentinel.
func (e *Engine) Candidates(entryID string) ([]Candidate, error) {
	entry, err := e.store.Get(entryID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if cached, ok := e.candidates[entryID]; ok {
		return append([]Candidate(nil), cached...), nil
	}

	names := e.scorer.TopCandidates(entry.Title, e.names, e.threshold, e.limit)
	list := make([]Candidate, 0, len(names))
	for _, name := range names {
		list = append(list, e.candidate(name))
	}
	e.candidates[entryID] = list
	return append([]Candidate(nil), list...), nil
}

// Chosen returns the entry's currently chosen candidate, defaulting to the
// top-ranked one.
func (e *Engine) Chosen(entryID string) (Candidate, error) {
	list, err := e.Candidates(entryID)
	if err != nil {
		return Candidate{}, err
	}

	e.mu.Lock()
	name, overridden := e.chosen[entryID]
	e.mu.Unlock()

	if overridden {
		return e.candidate(name), nil
	}
	return list[0], nil
}

// SetChosen overrides the chosen candidate for an entry. The name must be a
// known contact display name or the create-new sentinel; anything else came
// from a stale contact list and is rejected.
func (e *Engine) SetChosen(entryID, name string) error {
	if _, err := e.store.Get(entryID); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if name != match.CreateNewContact {
		if _, known := e.refByName[name]; !known {
			return fmt.Errorf("%w: unknown contact %q", errors.ErrInvalidInput, name)
		}
	}
	e.chosen[entryID] = name
	return nil
}

// DuplicateTitles reports titles that appear on at least two pending entries
// with distinct dates. Advisory only: a duplicate never blocks an apply, it
// just flags the entries for extra attention. Recomputed per call.
func (e *Engine) DuplicateTitles() []string {
	dates := make(map[string]map[string]struct{})
	for _, entry := range e.store.Pending() {
		set, ok := dates[entry.Title]
		if !ok {
			set = make(map[string]struct{})
			dates[entry.Title] = set
		}
		set[entry.Date.String()] = struct{}{}
	}

	var titles []string
	for title, set := range dates {
		if len(set) > 1 {
			titles = append(titles, title)
		}
	}
	sort.Strings(titles)
	return titles
}

// Invalidate drops all cached candidate lists, e.g. after an import added
// new pending entries. Chosen overrides survive; their entries still exist.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.candidates = make(map[string][]Candidate)
}

// candidate resolves a name into a Candidate with its directory reference.
// The sentinel and unknown names map to the create path.
func (e *Engine) candidate(name string) Candidate {
	if name == match.CreateNewContact {
		return Candidate{Name: name, Ref: directory.CreateRef}
	}
	return Candidate{Name: name, Ref: e.refByName[name]}
}
