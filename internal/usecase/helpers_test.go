package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/riskibarqy/match-predictor/internal/domain/match"
	"github.com/riskibarqy/match-predictor/internal/domain/notification"
	"github.com/riskibarqy/match-predictor/internal/domain/prediction"
	"github.com/riskibarqy/match-predictor/internal/domain/userstats"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []notification.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event notification.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.Name)
	}
	return out
}

func (p *recordingPublisher) count(name string) int {
	n := 0
	for _, got := range p.names() {
		if got == name {
			n++
		}
	}
	return n
}

// countingScorer records every match it is asked to score.
type countingScorer struct {
	mu    sync.Mutex
	calls []match.Match
	err   error
}

func (s *countingScorer) ScoreIfUnscored(_ context.Context, m match.Match) (ScoreReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, m)
	return ScoreReport{MatchID: m.ID, HomeScore: m.HomeScore, AwayScore: m.AwayScore}, s.err
}

func (s *countingScorer) matchIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, 0, len(s.calls))
	for _, m := range s.calls {
		out = append(out, m.ID)
	}
	return out
}

// failingStats fails ApplyScore for one user and delegates everything else.
type failingStats struct {
	userstats.Repository
	failUser string
}

func (s failingStats) ApplyScore(ctx context.Context, username string, d userstats.Delta) (userstats.Aggregate, error) {
	if username == s.failUser {
		return userstats.Aggregate{}, errors.New("stats store unavailable")
	}
	return s.Repository.ApplyScore(ctx, username, d)
}

// failingMark fails MarkScored for one prediction id and delegates everything else.
type failingMark struct {
	prediction.Repository
	failID string
}

func (r failingMark) MarkScored(ctx context.Context, id string, outcome prediction.Outcome) (bool, error) {
	if id == r.failID {
		return false, errors.New("prediction store unavailable")
	}
	return r.Repository.MarkScored(ctx, id, outcome)
}

func finished(id int64, home, away int) match.Match {
	return match.Match{ID: id, Status: match.StatusFinished, HomeScore: home, AwayScore: away, HomeTeam: "Home FC", AwayTeam: "Away FC"}
}

// blockingScorer parks every call until release is closed.
type blockingScorer struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingScorer() *blockingScorer {
	return &blockingScorer{entered: make(chan struct{}), release: make(chan struct{})}
}

func (s *blockingScorer) ScoreIfUnscored(_ context.Context, m match.Match) (ScoreReport, error) {
	s.once.Do(func() { close(s.entered) })
	<-s.release
	return ScoreReport{MatchID: m.ID}, nil
}
