package prediction

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/match-predictor/internal/domain/match"
	"github.com/riskibarqy/match-predictor/internal/domain/scoring"
)

var (
	ErrDuplicate     = errors.New("prediction already exists for user and match")
	ErrNegativeScore = errors.New("predicted score must be non-negative")
)

// MatchInfo is the denormalized match snapshot captured when a prediction is made.
type MatchInfo struct {
	HomeTeam    string
	AwayTeam    string
	Competition string
	MatchDate   time.Time
	Status      match.Status
}

// Outcome is filled in exactly once, when the match is scored.
type Outcome struct {
	Points          int
	IsExactScore    bool
	IsCorrectResult bool
	ActualHomeScore int
	ActualAwayScore int
	ScoredAt        time.Time
}

// Prediction is one user's guess for one match. (User, MatchID) is unique.
type Prediction struct {
	ID              string
	User            string
	MatchID         int64
	HomeScore       int
	AwayScore       int
	MatchInfo       MatchInfo
	Points          int
	IsExactScore    bool
	IsCorrectResult bool
	ActualHomeScore *int
	ActualAwayScore *int
	IsScored        bool
	ScoredAt        *time.Time
	CreatedAt       time.Time
}

func (p Prediction) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("prediction id is required")
	}
	if strings.TrimSpace(p.User) == "" {
		return fmt.Errorf("user is required")
	}
	if p.MatchID <= 0 {
		return fmt.Errorf("match id must be greater than zero")
	}
	if p.HomeScore < 0 || p.AwayScore < 0 {
		return ErrNegativeScore
	}
	return nil
}

// Score classifies the prediction against a final scoreline.
func (p Prediction) Score(actualHome, actualAway int, at time.Time) Outcome {
	result := scoring.Classify(p.HomeScore, p.AwayScore, actualHome, actualAway)
	return Outcome{
		Points:          result.Points,
		IsExactScore:    result.IsExactScore,
		IsCorrectResult: result.IsCorrectResult,
		ActualHomeScore: actualHome,
		ActualAwayScore: actualAway,
		ScoredAt:        at,
	}
}

// Apply returns a copy of p with the outcome fields set and IsScored true.
func (p Prediction) Apply(outcome Outcome) Prediction {
	home := outcome.ActualHomeScore
	away := outcome.ActualAwayScore
	scoredAt := outcome.ScoredAt

	p.Points = outcome.Points
	p.IsExactScore = outcome.IsExactScore
	p.IsCorrectResult = outcome.IsCorrectResult
	p.ActualHomeScore = &home
	p.ActualAwayScore = &away
	p.ScoredAt = &scoredAt
	p.IsScored = true
	return p
}
