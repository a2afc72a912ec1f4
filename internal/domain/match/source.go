package match

import "context"

// Source returns the current snapshot of matches known to the data provider.
type Source interface {
	FetchSnapshot(ctx context.Context) ([]Match, error)
}
