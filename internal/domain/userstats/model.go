package userstats

import (
	"math"
	"time"
)

// Aggregate is the running per-user scoring record.
type Aggregate struct {
	Username              string
	TotalScore            int
	TotalPredictions      int
	CorrectPredictions    int
	ExactScorePredictions int
	LastActive            time.Time
}

// Delta is the increment contributed by one scored prediction.
type Delta struct {
	Points     int
	IsExact    bool
	IsCorrect  bool
	OccurredAt time.Time
}

// Accuracy is the rounded percentage of correct predictions, 0 with no predictions.
func (a Aggregate) Accuracy() int {
	if a.TotalPredictions <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(a.CorrectPredictions) / float64(a.TotalPredictions)))
}

// Add applies d to a. An exact score always counts as a correct prediction.
func (a Aggregate) Add(d Delta) Aggregate {
	a.TotalScore += d.Points
	a.TotalPredictions++
	if d.IsExact || d.IsCorrect {
		a.CorrectPredictions++
	}
	if d.IsExact {
		a.ExactScorePredictions++
	}
	if d.OccurredAt.After(a.LastActive) {
		a.LastActive = d.OccurredAt
	}
	return a
}
