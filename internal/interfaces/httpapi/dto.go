package httpapi

import (
	"time"

	"github.com/riskibarqy/match-predictor/internal/domain/prediction"
	"github.com/riskibarqy/match-predictor/internal/usecase"
)

type submitPredictionRequest struct {
	User        string    `json:"user" validate:"required,max=64"`
	MatchID     int64     `json:"matchId" validate:"required,gt=0"`
	HomeScore   *int      `json:"homeScore" validate:"required,gte=0,lte=99"`
	AwayScore   *int      `json:"awayScore" validate:"required,gte=0,lte=99"`
	HomeTeam    string    `json:"homeTeam" validate:"omitempty,max=100"`
	AwayTeam    string    `json:"awayTeam" validate:"omitempty,max=100"`
	Competition string    `json:"competition" validate:"omitempty,max=100"`
	MatchDate   time.Time `json:"matchDate"`
	MatchStatus string    `json:"matchStatus" validate:"omitempty,max=32"`
}

type scoreMatchRequest struct {
	HomeScore *int `json:"homeScore" validate:"required,gte=0"`
	AwayScore *int `json:"awayScore" validate:"required,gte=0"`
}

type matchInfoDTO struct {
	HomeTeam    string    `json:"homeTeam"`
	AwayTeam    string    `json:"awayTeam"`
	Competition string    `json:"competition"`
	MatchDate   time.Time `json:"matchDate"`
	Status      string    `json:"status"`
}

type predictionDTO struct {
	ID              string       `json:"id"`
	User            string       `json:"user"`
	MatchID         int64        `json:"matchId"`
	HomeScore       int          `json:"homeScore"`
	AwayScore       int          `json:"awayScore"`
	MatchInfo       matchInfoDTO `json:"matchInfo"`
	Points          int          `json:"points"`
	IsExactScore    bool         `json:"isExactScore"`
	IsCorrectResult bool         `json:"isCorrectResult"`
	ActualHomeScore *int         `json:"actualHomeScore"`
	ActualAwayScore *int         `json:"actualAwayScore"`
	IsScored        bool         `json:"isScored"`
	ScoredAt        *time.Time   `json:"scoredAt"`
	CreatedAt       time.Time    `json:"createdAt"`
}

type listenerStatusDTO struct {
	Status  usecase.ListenerStatus     `json:"status"`
	Matches []usecase.MatchStatusEntry `json:"matches"`
}

type purgeResultDTO struct {
	MatchID int64 `json:"matchId"`
	Deleted int   `json:"deleted"`
}

func predictionFromDomain(item prediction.Prediction) predictionDTO {
	return predictionDTO{
		ID:        item.ID,
		User:      item.User,
		MatchID:   item.MatchID,
		HomeScore: item.HomeScore,
		AwayScore: item.AwayScore,
		MatchInfo: matchInfoDTO{
			HomeTeam:    item.MatchInfo.HomeTeam,
			AwayTeam:    item.MatchInfo.AwayTeam,
			Competition: item.MatchInfo.Competition,
			MatchDate:   item.MatchInfo.MatchDate,
			Status:      string(item.MatchInfo.Status),
		},
		Points:          item.Points,
		IsExactScore:    item.IsExactScore,
		IsCorrectResult: item.IsCorrectResult,
		ActualHomeScore: item.ActualHomeScore,
		ActualAwayScore: item.ActualAwayScore,
		IsScored:        item.IsScored,
		ScoredAt:        item.ScoredAt,
		CreatedAt:       item.CreatedAt,
	}
}

func predictionsFromDomain(items []prediction.Prediction) []predictionDTO {
	out := make([]predictionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, predictionFromDomain(item))
	}
	return out
}
