package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/match-predictor/internal/domain/userstats"
	basecache "github.com/riskibarqy/match-predictor/internal/platform/cache"
)

const (
	userStatsListKey       = "user_stats:list"
	userStatsUserKeyPrefix = "user_stats:user:"
)

type cachedUserStats struct {
	list   []userstats.Aggregate
	value  userstats.Aggregate
	exists bool
}

// UserStatsRepository caches leaderboard and per-user reads. ApplyScore drops
// the list and writes the fresh aggregate through to the user's entry, so reads
// never trail a write made through this instance.
type UserStatsRepository struct {
	next  userstats.Repository
	cache *basecache.Store[cachedUserStats]
}

func NewUserStatsRepository(next userstats.Repository, ttl time.Duration) *UserStatsRepository {
	return &UserStatsRepository{next: next, cache: basecache.NewStore[cachedUserStats](ttl)}
}

func (r *UserStatsRepository) ApplyScore(ctx context.Context, username string, d userstats.Delta) (userstats.Aggregate, error) {
	updated, err := r.next.ApplyScore(ctx, username, d)
	r.cache.Delete(userStatsListKey)
	if err != nil {
		r.cache.Delete(userStatsUserKeyPrefix + username)
		return updated, err
	}
	r.cache.Set(userStatsUserKeyPrefix+username, cachedUserStats{value: updated, exists: true})
	return updated, nil
}

func (r *UserStatsRepository) Get(ctx context.Context, username string) (userstats.Aggregate, bool, error) {
	cached, err := r.cache.GetOrLoad(ctx, userStatsUserKeyPrefix+username, func(ctx context.Context) (cachedUserStats, error) {
		item, exists, err := r.next.Get(ctx, username)
		if err != nil {
			return cachedUserStats{}, err
		}
		return cachedUserStats{value: item, exists: exists}, nil
	})
	if err != nil {
		return userstats.Aggregate{}, false, err
	}
	return cached.value, cached.exists, nil
}

func (r *UserStatsRepository) List(ctx context.Context) ([]userstats.Aggregate, error) {
	cached, err := r.cache.GetOrLoad(ctx, userStatsListKey, func(ctx context.Context) (cachedUserStats, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return cachedUserStats{}, err
		}
		return cachedUserStats{list: append([]userstats.Aggregate(nil), items...)}, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]userstats.Aggregate(nil), cached.list...), nil
}
