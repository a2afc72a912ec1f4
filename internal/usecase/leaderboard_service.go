package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/match-predictor/internal/domain/userstats"
)

const (
	defaultLeaderboardLimit = 20
	maxLeaderboardLimit     = 500
)

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	Rank                  int       `json:"rank"`
	Username              string    `json:"username"`
	TotalScore            int       `json:"totalScore"`
	TotalPredictions      int       `json:"totalPredictions"`
	CorrectPredictions    int       `json:"correctPredictions"`
	ExactScorePredictions int       `json:"exactScorePredictions"`
	Accuracy              int       `json:"accuracy"`
	LastActive            time.Time `json:"lastActive"`
}

// UserStats is the read model for a single user's aggregate.
type UserStats struct {
	Username              string    `json:"username"`
	TotalScore            int       `json:"totalScore"`
	TotalPredictions      int       `json:"totalPredictions"`
	CorrectPredictions    int       `json:"correctPredictions"`
	ExactScorePredictions int       `json:"exactScorePredictions"`
	Accuracy              int       `json:"accuracy"`
	LastActive            time.Time `json:"lastActive"`
}

type LeaderboardService struct {
	stats userstats.Repository
}

func NewLeaderboardService(stats userstats.Repository) *LeaderboardService {
	return &LeaderboardService{stats: stats}
}

// Rank orders users by total score, then username, and truncates to limit.
// A non-positive limit falls back to the default page size.
func (s *LeaderboardService) Rank(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Rank")
	defer span.End()

	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	items, err := s.stats.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list user aggregates: %w", err)
	}

	sorted := append([]userstats.Aggregate(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalScore != sorted[j].TotalScore {
			return sorted[i].TotalScore > sorted[j].TotalScore
		}
		return sorted[i].Username < sorted[j].Username
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]LeaderboardEntry, 0, len(sorted))
	for i, agg := range sorted {
		out = append(out, LeaderboardEntry{
			Rank:                  i + 1,
			Username:              agg.Username,
			TotalScore:            agg.TotalScore,
			TotalPredictions:      agg.TotalPredictions,
			CorrectPredictions:    agg.CorrectPredictions,
			ExactScorePredictions: agg.ExactScorePredictions,
			Accuracy:              agg.Accuracy(),
			LastActive:            agg.LastActive,
		})
	}

	return out, nil
}

func (s *LeaderboardService) StatsFor(ctx context.Context, username string) (UserStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.StatsFor")
	defer span.End()

	username = strings.TrimSpace(username)
	if username == "" {
		return UserStats{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}

	agg, exists, err := s.stats.Get(ctx, username)
	if err != nil {
		return UserStats{}, fmt.Errorf("get user aggregate: %w", err)
	}
	if !exists {
		return UserStats{}, fmt.Errorf("%w: user stats for %q", ErrNotFound, username)
	}

	return UserStats{
		Username:              agg.Username,
		TotalScore:            agg.TotalScore,
		TotalPredictions:      agg.TotalPredictions,
		CorrectPredictions:    agg.CorrectPredictions,
		ExactScorePredictions: agg.ExactScorePredictions,
		Accuracy:              agg.Accuracy(),
		LastActive:            agg.LastActive,
	}, nil
}
