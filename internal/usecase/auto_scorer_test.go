package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/match-predictor/internal/domain/match"
	"github.com/riskibarqy/match-predictor/internal/domain/notification"
	"github.com/riskibarqy/match-predictor/internal/domain/prediction"
	"github.com/riskibarqy/match-predictor/internal/domain/userstats"
	"github.com/riskibarqy/match-predictor/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/match-predictor/internal/platform/logging"
)

func seedPredictions(t *testing.T, repo prediction.Repository, items ...prediction.Prediction) {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, item := range items {
		if item.CreatedAt.IsZero() {
			item.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		}
		if err := repo.Create(context.Background(), item); err != nil {
			t.Fatalf("seed prediction %s: %v", item.ID, err)
		}
	}
}

func newTestAutoScorer(predictions prediction.Repository, stats userstats.Repository, pub notification.Publisher) *AutoScorer {
	return NewAutoScorer(predictions, stats, pub, nil, AutoScorerConfig{Workers: 4}, logging.NewNop())
}

func TestAutoScorer_ScoreIfUnscored_AwardsPointsAndEvents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	predictions := memory.NewPredictionRepository()
	stats := memory.NewUserStatsRepository()
	pub := &recordingPublisher{}
	seedPredictions(t, predictions,
		prediction.Prediction{ID: "p-alice", User: "alice", MatchID: 100, HomeScore: 2, AwayScore: 1},
		prediction.Prediction{ID: "p-bob", User: "bob", MatchID: 100, HomeScore: 1, AwayScore: 0},
		prediction.Prediction{ID: "p-carol", User: "carol", MatchID: 100, HomeScore: 1, AwayScore: 1},
	)

	scorer := newTestAutoScorer(predictions, stats, pub)
	report, err := scorer.ScoreIfUnscored(ctx, finished(100, 2, 1))
	if err != nil {
		t.Fatalf("score match: %v", err)
	}
	if report.Pending != 3 || report.Scored != 3 || report.Failed != 0 || report.AlreadyScored {
		t.Fatalf("unexpected report: %+v", report)
	}

	want := map[string]userstats.Aggregate{
		"alice": {TotalScore: 10, TotalPredictions: 1, CorrectPredictions: 1, ExactScorePredictions: 1},
		"bob":   {TotalScore: 3, TotalPredictions: 1, CorrectPredictions: 1},
		"carol": {TotalScore: 0, TotalPredictions: 1},
	}
	for user, expected := range want {
		got, ok, err := stats.Get(ctx, user)
		if err != nil || !ok {
			t.Fatalf("get %s: ok=%v err=%v", user, ok, err)
		}
		if got.TotalScore != expected.TotalScore ||
			got.TotalPredictions != expected.TotalPredictions ||
			got.CorrectPredictions != expected.CorrectPredictions ||
			got.ExactScorePredictions != expected.ExactScorePredictions {
			t.Fatalf("unexpected aggregate for %s: got=%+v want=%+v", user, got, expected)
		}
	}

	stored, err := predictions.ListByMatch(ctx, 100)
	if err != nil {
		t.Fatalf("list by match: %v", err)
	}
	for _, item := range stored {
		if !item.IsScored || item.ActualHomeScore == nil || *item.ActualHomeScore != 2 || item.ScoredAt == nil {
			t.Fatalf("prediction %s not written back: %+v", item.ID, item)
		}
	}

	names := pub.names()
	if pub.count(notification.EventPredictionScored) != 3 || pub.count(notification.EventUserStatsUpdated) != 3 {
		t.Fatalf("unexpected events: %v", names)
	}
	if len(names) != 8 || names[6] != notification.EventLeaderboardChanged || names[7] != notification.EventMatchScored {
		t.Fatalf("leaderboard and match scored events must close the batch: %v", names)
	}
}

func TestAutoScorer_ScoreIfUnscored_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	predictions := memory.NewPredictionRepository()
	stats := memory.NewUserStatsRepository()
	pub := &recordingPublisher{}
	seedPredictions(t, predictions,
		prediction.Prediction{ID: "p1", User: "alice", MatchID: 7, HomeScore: 0, AwayScore: 0},
	)
	scorer := newTestAutoScorer(predictions, stats, pub)

	if _, err := scorer.ScoreIfUnscored(ctx, finished(7, 0, 0)); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	firstEvents := len(pub.names())
	before, _, _ := stats.Get(ctx, "alice")

	report, err := scorer.ScoreIfUnscored(ctx, finished(7, 0, 0))
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if !report.AlreadyScored || report.Scored != 0 {
		t.Fatalf("expected second pass to be a guarded no-op: %+v", report)
	}

	after, _, _ := stats.Get(ctx, "alice")
	if after != before {
		t.Fatalf("aggregate changed on second pass: before=%+v after=%+v", before, after)
	}
	if len(pub.names()) != firstEvents {
		t.Fatalf("second pass published events: %v", pub.names())
	}
}

func TestAutoScorer_ScoreIfUnscored_ConcurrentPassesCountOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	predictions := memory.NewPredictionRepository()
	stats := memory.NewUserStatsRepository()
	items := make([]prediction.Prediction, 0, 20)
	for i := 0; i < 20; i++ {
		items = append(items, prediction.Prediction{
			ID:        "p" + string(rune('a'+i)),
			User:      "user-" + string(rune('a'+i%4)),
			MatchID:   42,
			HomeScore: i % 3,
			AwayScore: 1,
		})
	}
	seedPredictions(t, predictions, items...)
	scorer := newTestAutoScorer(predictions, stats, nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := scorer.ScoreIfUnscored(ctx, finished(42, 1, 1)); err != nil {
				t.Errorf("score match: %v", err)
			}
		}()
	}
	wg.Wait()

	all, err := stats.List(ctx)
	if err != nil {
		t.Fatalf("list stats: %v", err)
	}
	total := 0
	for _, agg := range all {
		total += agg.TotalPredictions
	}
	if total != len(items) {
		t.Fatalf("predictions counted more than once: got=%d want=%d", total, len(items))
	}
}

func TestAutoScorer_ScoreIfUnscored_NoPredictionsIsNoop(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	scorer := newTestAutoScorer(memory.NewPredictionRepository(), memory.NewUserStatsRepository(), pub)

	report, err := scorer.ScoreIfUnscored(context.Background(), finished(9, 3, 0))
	if err != nil {
		t.Fatalf("score match: %v", err)
	}
	if report.Pending != 0 || report.Scored != 0 || report.AlreadyScored {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(pub.names()) != 0 {
		t.Fatalf("expected no events, got=%v", pub.names())
	}
}

func TestAutoScorer_ScoreIfUnscored_PartialFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	predictions := memory.NewPredictionRepository()
	stats := memory.NewUserStatsRepository()
	seedPredictions(t, predictions,
		prediction.Prediction{ID: "p-alice", User: "alice", MatchID: 5, HomeScore: 1, AwayScore: 0},
		prediction.Prediction{ID: "p-bob", User: "bob", MatchID: 5, HomeScore: 1, AwayScore: 0},
	)
	scorer := newTestAutoScorer(failingMark{Repository: predictions, failID: "p-bob"}, stats, &recordingPublisher{})

	report, err := scorer.ScoreIfUnscored(ctx, finished(5, 1, 0))
	if err == nil {
		t.Fatalf("expected batch error")
	}
	if report.Scored != 1 || report.Failed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	unscored, _ := predictions.ListUnscoredByMatch(ctx, 5)
	if len(unscored) != 1 || unscored[0].ID != "p-bob" {
		t.Fatalf("failed prediction must stay unscored: %+v", unscored)
	}
	if agg, _, _ := stats.Get(ctx, "alice"); agg.TotalScore != 10 {
		t.Fatalf("successful prediction must stay scored: %+v", agg)
	}
	if _, ok, _ := stats.Get(ctx, "bob"); ok {
		t.Fatalf("bob must have no aggregate")
	}
}

func TestAutoScorer_ScoreIfUnscored_AggregateFailureReported(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	predictions := memory.NewPredictionRepository()
	seedPredictions(t, predictions,
		prediction.Prediction{ID: "p-bob", User: "bob", MatchID: 5, HomeScore: 1, AwayScore: 0},
	)
	scorer := newTestAutoScorer(predictions, failingStats{Repository: memory.NewUserStatsRepository(), failUser: "bob"}, nil)

	report, err := scorer.ScoreIfUnscored(ctx, finished(5, 1, 0))
	if !errors.Is(err, errAggregateNotApplied) {
		t.Fatalf("expected aggregate error, got=%v", err)
	}
	if report.Failed != 1 || report.Scored != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestAutoScorer_ScoreIfUnscored_RejectsInvalidMatch(t *testing.T) {
	t.Parallel()

	scorer := newTestAutoScorer(memory.NewPredictionRepository(), memory.NewUserStatsRepository(), nil)

	cases := []match.Match{
		{ID: 0, Status: match.StatusFinished},
		{ID: 1, Status: match.StatusFinished, HomeScore: -1},
	}
	for _, m := range cases {
		if _, err := scorer.ScoreIfUnscored(context.Background(), m); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got=%v", m, err)
		}
	}
}

func TestAutoScorer_ScoreMatchManually(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	predictions := memory.NewPredictionRepository()
	stats := memory.NewUserStatsRepository()
	seedPredictions(t, predictions,
		prediction.Prediction{ID: "p1", User: "alice", MatchID: 3, HomeScore: 0, AwayScore: 2},
	)
	scorer := newTestAutoScorer(predictions, stats, nil)

	report, err := scorer.ScoreMatchManually(ctx, 3, 1, 3)
	if err != nil {
		t.Fatalf("manual score: %v", err)
	}
	if report.Scored != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if agg, _, _ := stats.Get(ctx, "alice"); agg.TotalScore != 3 {
		t.Fatalf("expected outcome points, got=%+v", agg)
	}

	if _, err := scorer.ScoreMatchManually(ctx, 3, -1, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got=%v", err)
	}
}

func TestAutoScorer_ScoreMatchManually_RecoversPartialFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	predictions := memory.NewPredictionRepository()
	stats := memory.NewUserStatsRepository()
	seedPredictions(t, predictions,
		prediction.Prediction{ID: "p-alice", User: "alice", MatchID: 9, HomeScore: 1, AwayScore: 0},
		prediction.Prediction{ID: "p-bob", User: "bob", MatchID: 9, HomeScore: 1, AwayScore: 0},
	)

	flaky := newTestAutoScorer(failingMark{Repository: predictions, failID: "p-bob"}, stats, nil)
	if _, err := flaky.ScoreIfUnscored(ctx, finished(9, 1, 0)); err == nil {
		t.Fatalf("expected batch error on first pass")
	}

	scorer := newTestAutoScorer(predictions, stats, nil)
	report, err := scorer.ScoreIfUnscored(ctx, finished(9, 1, 0))
	if err != nil || !report.AlreadyScored {
		t.Fatalf("automatic pass must respect the match guard: report=%+v err=%v", report, err)
	}

	report, err = scorer.ScoreMatchManually(ctx, 9, 1, 0)
	if err != nil {
		t.Fatalf("manual rescore: %v", err)
	}
	if report.AlreadyScored || report.Pending != 1 || report.Scored != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	unscored, _ := predictions.ListUnscoredByMatch(ctx, 9)
	if len(unscored) != 0 {
		t.Fatalf("expected every prediction scored, got=%+v", unscored)
	}
	alice, _, _ := stats.Get(ctx, "alice")
	bob, ok, _ := stats.Get(ctx, "bob")
	if !ok || bob.TotalScore != 10 || bob.TotalPredictions != 1 {
		t.Fatalf("unexpected bob aggregate: %+v", bob)
	}
	if alice.TotalScore != 10 || alice.TotalPredictions != 1 {
		t.Fatalf("alice must not be scored twice: %+v", alice)
	}

	report, err = scorer.ScoreMatchManually(ctx, 9, 1, 0)
	if err != nil || report.Pending != 0 || report.Scored != 0 {
		t.Fatalf("repeat manual pass must be a no-op: report=%+v err=%v", report, err)
	}
}
