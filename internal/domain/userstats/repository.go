package userstats

import "context"

// Repository stores per-user aggregates.
type Repository interface {
	// ApplyScore atomically adds d to the user's aggregate, creating it if absent,
	// and returns the updated aggregate.
	ApplyScore(ctx context.Context, username string, d Delta) (Aggregate, error)
	Get(ctx context.Context, username string) (Aggregate, bool, error)
	List(ctx context.Context) ([]Aggregate, error)
}
