package userstats

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/riskibarqy/match-predictor/internal/domain/scoring"
)

func TestAggregateAccuracy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		agg  Aggregate
		want int
	}{
		{agg: Aggregate{}, want: 0},
		{agg: Aggregate{TotalPredictions: 3, CorrectPredictions: 2}, want: 67},
		{agg: Aggregate{TotalPredictions: 8, CorrectPredictions: 1}, want: 13},
		{agg: Aggregate{TotalPredictions: 4, CorrectPredictions: 4}, want: 100},
	}

	for _, tc := range tests {
		if got := tc.agg.Accuracy(); got != tc.want {
			t.Fatalf("unexpected accuracy for %+v: got=%d want=%d", tc.agg, got, tc.want)
		}
	}
}

func TestAggregateAdd(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	agg := Aggregate{Username: "alice"}
	agg = agg.Add(Delta{Points: 10, IsExact: true, IsCorrect: true, OccurredAt: at})
	agg = agg.Add(Delta{Points: 3, IsCorrect: true, OccurredAt: at.Add(time.Hour)})
	agg = agg.Add(Delta{Points: 0, OccurredAt: at.Add(-time.Hour)})

	if agg.TotalScore != 13 {
		t.Fatalf("unexpected total score: got=%d want=13", agg.TotalScore)
	}
	if agg.TotalPredictions != 3 || agg.CorrectPredictions != 2 || agg.ExactScorePredictions != 1 {
		t.Fatalf("unexpected counters: %+v", agg)
	}
	if !agg.LastActive.Equal(at.Add(time.Hour)) {
		t.Fatalf("unexpected last active: %s", agg.LastActive)
	}
}

func TestAggregateCounterInvariant(t *testing.T) {
	properties := gopter.NewProperties(nil)

	scoreline := gen.SliceOf(gen.IntRange(0, 6))

	properties.Property("total = correct + zero-point predictions and correct >= exact", prop.ForAll(
		func(goals []int) bool {
			agg := Aggregate{Username: "alice"}
			zeroPoint := 0
			for i := 0; i+3 < len(goals); i += 4 {
				r := scoring.Classify(goals[i], goals[i+1], goals[i+2], goals[i+3])
				if r.Points == 0 {
					zeroPoint++
				}
				agg = agg.Add(Delta{Points: r.Points, IsExact: r.IsExactScore, IsCorrect: r.IsCorrectResult})
			}
			return agg.TotalPredictions == agg.CorrectPredictions+zeroPoint &&
				agg.CorrectPredictions >= agg.ExactScorePredictions &&
				agg.ExactScorePredictions >= 0
		},
		scoreline,
	))

	properties.TestingRun(t)
}
