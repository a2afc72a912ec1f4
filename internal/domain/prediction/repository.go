package prediction

import "context"

// Repository is the durable store for predictions.
type Repository interface {
	// Create fails with ErrDuplicate when (User, MatchID) already exists.
	Create(ctx context.Context, p Prediction) error
	ListByMatch(ctx context.Context, matchID int64) ([]Prediction, error)
	ListUnscoredByMatch(ctx context.Context, matchID int64) ([]Prediction, error)
	CountScoredByMatch(ctx context.Context, matchID int64) (int, error)
	ListByUser(ctx context.Context, user string, limit int) ([]Prediction, error)
	// MarkScored writes the outcome only if the prediction is still unscored.
	// It reports false when another pass already scored it.
	MarkScored(ctx context.Context, predictionID string, outcome Outcome) (bool, error)
	DeleteByMatch(ctx context.Context, matchID int64) (int, error)
}
