package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/riskibarqy/match-predictor/internal/domain/prediction"
)

type PredictionRepository struct {
	mu     sync.RWMutex
	items  map[string]prediction.Prediction
	byPair map[string]string
}

func NewPredictionRepository() *PredictionRepository {
	return &PredictionRepository{
		items:  make(map[string]prediction.Prediction),
		byPair: make(map[string]string),
	}
}

func (r *PredictionRepository) Create(_ context.Context, item prediction.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := predictionKey(item.User, item.MatchID)
	if _, exists := r.byPair[key]; exists {
		return prediction.ErrDuplicate
	}

	r.items[item.ID] = clonePrediction(item)
	r.byPair[key] = item.ID
	return nil
}

func (r *PredictionRepository) ListByMatch(_ context.Context, matchID int64) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.filterLocked(func(item prediction.Prediction) bool { return item.MatchID == matchID })
	sortByCreatedAt(out, false)
	return out, nil
}

func (r *PredictionRepository) ListUnscoredByMatch(_ context.Context, matchID int64) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.filterLocked(func(item prediction.Prediction) bool {
		return item.MatchID == matchID && !item.IsScored
	})
	sortByCreatedAt(out, false)
	return out, nil
}

func (r *PredictionRepository) CountScoredByMatch(_ context.Context, matchID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, item := range r.items {
		if item.MatchID == matchID && item.IsScored {
			count++
		}
	}
	return count, nil
}

func (r *PredictionRepository) ListByUser(_ context.Context, user string, limit int) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.filterLocked(func(item prediction.Prediction) bool { return item.User == user })
	sortByCreatedAt(out, true)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *PredictionRepository) MarkScored(_ context.Context, predictionID string, outcome prediction.Outcome) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[predictionID]
	if !ok || item.IsScored {
		return false, nil
	}

	r.items[predictionID] = item.Apply(outcome)
	return true, nil
}

func (r *PredictionRepository) DeleteByMatch(_ context.Context, matchID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for id, item := range r.items {
		if item.MatchID != matchID {
			continue
		}
		delete(r.items, id)
		delete(r.byPair, predictionKey(item.User, item.MatchID))
		deleted++
	}
	return deleted, nil
}

func (r *PredictionRepository) filterLocked(keep func(prediction.Prediction) bool) []prediction.Prediction {
	out := make([]prediction.Prediction, 0)
	for _, item := range r.items {
		if keep(item) {
			out = append(out, clonePrediction(item))
		}
	}
	return out
}

func sortByCreatedAt(items []prediction.Prediction, newestFirst bool) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			if newestFirst {
				return items[i].CreatedAt.After(items[j].CreatedAt)
			}
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}

func predictionKey(user string, matchID int64) string {
	return user + "::" + strconv.FormatInt(matchID, 10)
}

func clonePrediction(item prediction.Prediction) prediction.Prediction {
	copied := item
	if item.ActualHomeScore != nil {
		home := *item.ActualHomeScore
		copied.ActualHomeScore = &home
	}
	if item.ActualAwayScore != nil {
		away := *item.ActualAwayScore
		copied.ActualAwayScore = &away
	}
	if item.ScoredAt != nil {
		scoredAt := *item.ScoredAt
		copied.ScoredAt = &scoredAt
	}
	return copied
}
