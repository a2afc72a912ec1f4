package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/match-predictor/internal/domain/userstats"
)

type UserStatsRepository struct {
	mu    sync.RWMutex
	items map[string]userstats.Aggregate
}

func NewUserStatsRepository() *UserStatsRepository {
	return &UserStatsRepository{items: make(map[string]userstats.Aggregate)}
}

func (r *UserStatsRepository) ApplyScore(_ context.Context, username string, d userstats.Delta) (userstats.Aggregate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[username]
	if !ok {
		current = userstats.Aggregate{Username: username}
	}
	updated := current.Add(d)
	r.items[username] = updated
	return updated, nil
}

func (r *UserStatsRepository) Get(_ context.Context, username string) (userstats.Aggregate, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[username]
	return item, ok, nil
}

func (r *UserStatsRepository) List(_ context.Context) ([]userstats.Aggregate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]userstats.Aggregate, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}
