package match_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/birthsync/pkg/match"
)

func TestRankOrdersByScore(t *testing.T) {
	s := match.NewScorer()

	ranked := s.Rank("Anna Lee", []string{"Bob Kim", "Ann Lee", "Anna Lee"})
	require.Len(t, ranked, 3)

	assert.Equal(t, "Anna Lee", ranked[0].Name)
	assert.Equal(t, 100.0, ranked[0].Score)
	assert.Equal(t, "Ann Lee", ranked[1].Name)
	assert.Equal(t, "Bob Kim", ranked[2].Name)
	assert.Greater(t, ranked[1].Score, ranked[2].Score)
}

func TestRankIsCaseInsensitive(t *testing.T) {
	s := match.NewScorer()

	ranked := s.Rank("anna lee", []string{"ANNA LEE"})
	require.Len(t, ranked, 1)
	assert.Equal(t, 100.0, ranked[0].Score)
}

func TestRankStableOnTies(t *testing.T) {
	s := match.NewScorer()

	// Identical candidates score identically; input order must hold.
	ranked := s.Rank("Anna", []string{"Anna", "Anna"})
	require.Len(t, ranked, 2)
	assert.Equal(t, ranked[0].Score, ranked[1].Score)
	assert.Equal(t, "Anna", ranked[0].Name)
}

func TestTopCandidatesThresholdIsStrict(t *testing.T) {
	s := match.NewScorer()

	// An exact match scores 100; a threshold of 100 excludes it.
	got := s.TopCandidates("Anna Lee", []string{"Anna Lee"}, 100, 10)
	assert.Equal(t, []string{match.CreateNewContact}, got)

	got = s.TopCandidates("Anna Lee", []string{"Anna Lee"}, 99.9, 10)
	assert.Equal(t, []string{"Anna Lee"}, got)
}

func TestTopCandidatesEmptyUniverse(t *testing.T) {
	s := match.NewScorer()

	got := s.TopCandidates("Anna Lee", nil, 60, 10)
	assert.Equal(t, []string{match.CreateNewContact}, got)
}

func TestTopCandidatesLimit(t *testing.T) {
	s := match.NewScorer()

	names := []string{"Anna Lee", "Anna Leigh", "Anna Le", "Ana Lee"}
	got := s.TopCandidates("Anna Lee", names, 60, 2)
	assert.Len(t, got, 2)
	assert.Equal(t, "Anna Lee", got[0])
}

func TestFoldAccents(t *testing.T) {
	plain := match.NewScorer()
	folding := match.NewScorer(match.WithFoldAccents(true))

	exact := folding.Rank("José García", []string{"Jose Garcia"})
	require.Len(t, exact, 1)
	assert.Equal(t, 100.0, exact[0].Score)

	kept := plain.Rank("José García", []string{"Jose Garcia"})
	require.Len(t, kept, 1)
	assert.Less(t, kept[0].Score, 100.0)
}

func TestScorerConcurrentUse(t *testing.T) {
	s := match.NewScorer(match.WithFoldAccents(true))
	names := []string{"Anna Lee", "Bob Kim", "José García"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				got := s.Rank("Anna Lee", names)
				assert.Equal(t, "Anna Lee", got[0].Name)
			}
		}()
	}
	wg.Wait()
}
