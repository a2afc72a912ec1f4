package notification

import (
	"context"
	"time"
)

const (
	EventMatchStatusChanged  = "matchStatusChanged"
	EventMatchScoreChanged   = "matchScoreChanged"
	EventPredictionScored    = "predictionScored"
	EventUserStatsUpdated    = "userStatsUpdated"
	EventLeaderboardChanged  = "leaderboardChanged"
	EventMatchScored         = "matchScored"
	EventPredictionSubmitted = "predictionSubmitted"
)

// Event is a change hint fanned out to subscribers. Consumers re-fetch
// authoritative state instead of trusting the payload.
type Event struct {
	Name       string    `json:"event"`
	MatchID    int64     `json:"matchId,omitempty"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher delivers events at most once, best effort.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error {
	return nil
}

type MatchStatusChanged struct {
	MatchID   int64  `json:"matchId"`
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
}

type MatchScoreChanged struct {
	MatchID   int64 `json:"matchId"`
	HomeScore int   `json:"homeScore"`
	AwayScore int   `json:"awayScore"`
}

type PredictionScored struct {
	MatchID         int64  `json:"matchId"`
	User            string `json:"user"`
	Points          int    `json:"points"`
	IsExactScore    bool   `json:"isExactScore"`
	IsCorrectResult bool   `json:"isCorrectResult"`
	ActualHomeScore int    `json:"actualHomeScore"`
	ActualAwayScore int    `json:"actualAwayScore"`
}

type UserStatsUpdated struct {
	User                  string `json:"user"`
	TotalScore            int    `json:"totalScore"`
	TotalPredictions      int    `json:"totalPredictions"`
	CorrectPredictions    int    `json:"correctPredictions"`
	ExactScorePredictions int    `json:"exactScorePredictions"`
	Accuracy              int    `json:"accuracy"`
}

type LeaderboardChanged struct{}

type MatchScored struct {
	MatchID     int64 `json:"matchId"`
	HomeScore   int   `json:"homeScore"`
	AwayScore   int   `json:"awayScore"`
	ScoredCount int   `json:"scoredCount"`
}

type PredictionSubmitted struct {
	MatchID int64  `json:"matchId"`
	User    string `json:"user"`
}
