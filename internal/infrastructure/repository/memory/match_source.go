package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/match-predictor/internal/domain/match"
)

// MatchSource serves a snapshot set in process. It backs local runs without a
// provider token and drives listener tests.
type MatchSource struct {
	mu      sync.RWMutex
	matches []match.Match
	err     error
	calls   int
}

func NewMatchSource(matches ...match.Match) *MatchSource {
	return &MatchSource{matches: append([]match.Match(nil), matches...)}
}

func (s *MatchSource) FetchSnapshot(ctx context.Context) ([]match.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return append([]match.Match(nil), s.matches...), nil
}

// Set replaces the snapshot and clears any injected failure.
func (s *MatchSource) Set(matches ...match.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.matches = append([]match.Match(nil), matches...)
	s.err = nil
}

// Fail makes subsequent fetches return err until Set is called.
func (s *MatchSource) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = err
}

func (s *MatchSource) Calls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.calls
}
