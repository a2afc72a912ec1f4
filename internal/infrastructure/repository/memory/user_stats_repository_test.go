package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/match-predictor/internal/domain/userstats"
)

func TestUserStatsRepository_ApplyScoreConcurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewUserStatsRepository()
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d := userstats.Delta{Points: 3, IsCorrect: true, OccurredAt: at.Add(time.Duration(i) * time.Minute)}
			if _, err := repo.ApplyScore(ctx, "alice", d); err != nil {
				t.Errorf("apply score: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, ok, err := repo.Get(ctx, "alice")
	if err != nil || !ok {
		t.Fatalf("get alice: ok=%v err=%v", ok, err)
	}
	if got.TotalScore != 150 || got.TotalPredictions != 50 || got.CorrectPredictions != 50 {
		t.Fatalf("lost update: %+v", got)
	}
	if !got.LastActive.Equal(at.Add(49 * time.Minute)) {
		t.Fatalf("unexpected last active: %v", got.LastActive)
	}
}

func TestUserStatsRepository_GetMissingAndList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewUserStatsRepository()

	if _, ok, err := repo.Get(ctx, "nobody"); err != nil || ok {
		t.Fatalf("expected missing user, ok=%v err=%v", ok, err)
	}

	for _, name := range []string{"carol", "alice", "bob"} {
		if _, err := repo.ApplyScore(ctx, name, userstats.Delta{}); err != nil {
			t.Fatalf("apply score %s: %v", name, err)
		}
	}

	items, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 || items[0].Username != "alice" || items[2].Username != "carol" {
		t.Fatalf("unexpected list: %+v", items)
	}
}
