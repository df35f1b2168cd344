// Package match computes similarity scores between event titles and contact
// display names, producing the ranked candidate lists the reconciliation
// engine presents for human confirmation.
package match

import (
	"sort"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CreateNewContact is the sentinel candidate proposing a new contact
// instead of an update to an existing one.
const CreateNewContact = "<Create new contact>"

// Match is one scored candidate name. Scores are on a 0..100 scale.
type Match struct {
	Name  string  `json:"name" yaml:"name"`
	Score float64 `json:"score" yaml:"score"`
}

// Scorer ranks contact names against an event title. It is pure and
// deterministic: no I/O, no side effects, safe for concurrent use.
//
// Comparison is always case-insensitive (Unicode case folding). Accents are
// significant unless WithFoldAccents is set.
type Scorer struct {
	foldAccents bool
	jaro        *metrics.JaroWinkler
	dice        *metrics.SorensenDice
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithFoldAccents makes the scorer strip combining marks before comparing,
// so e.g. "José" and "Jose" score as identical.
func WithFoldAccents(enabled bool) Option {
	return func(s *Scorer) {
		s.foldAccents = enabled
	}
}

// NewScorer creates a Scorer with the given options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		jaro: metrics.NewJaroWinkler(),
		dice: metrics.NewSorensenDice(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rank scores every candidate name against the title and returns them sorted
// by descending score. Ties keep input order (stable sort).
func (s *Scorer) Rank(title string, names []string) []Match {
	folded := s.fold(title)
	out := make([]Match, 0, len(names))
	for _, name := range names {
		out = append(out, Match{Name: name, Score: s.score(folded, s.fold(name))})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// TopCandidates returns up to limit names scoring strictly above threshold,
// best first. When nothing qualifies (including an empty candidate list) it
// returns the single CreateNewContact sentinel.
func (s *Scorer) TopCandidates(title string, names []string, threshold float64, limit int) []string {
	ranked := s.Rank(title, names)
	out := make([]string, 0, limit)
	for _, m := range ranked {
		if m.Score <= threshold {
			break // sorted descending, nothing further qualifies
		}
		out = append(out, m.Name)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if len(out) == 0 {
		return []string{CreateNewContact}
	}
	return out
}

// score combines a token-order-tolerant bigram metric with Jaro-Winkler,
// which rewards matching prefixes the way people abbreviate names.
func (s *Scorer) score(a, b string) float64 {
	if a == b {
		return 100
	}
	jw := strutil.Similarity(a, b, s.jaro)
	sd := strutil.Similarity(a, b, s.dice)
	best := jw
	if sd > best {
		best = sd
	}
	return best * 100
}

// fold normalizes a string for comparison. Casers and transformers are
// stateful, so they are constructed per call to keep the Scorer
// concurrency-safe.
func (s *Scorer) fold(v string) string {
	v = cases.Fold().String(v)
	if s.foldAccents {
		t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
		if stripped, _, err := transform.String(t, v); err == nil {
			v = stripped
		}
	}
	return v
}
