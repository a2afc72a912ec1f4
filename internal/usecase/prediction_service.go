package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/match-predictor/internal/domain/match"
	"github.com/riskibarqy/match-predictor/internal/domain/notification"
	"github.com/riskibarqy/match-predictor/internal/domain/prediction"
	idgen "github.com/riskibarqy/match-predictor/internal/platform/id"
	"github.com/riskibarqy/match-predictor/internal/platform/logging"
	"github.com/riskibarqy/match-predictor/internal/platform/tracing"
)

const defaultUserPredictionLimit = 50

type SubmitPredictionInput struct {
	User        string
	MatchID     int64
	HomeScore   int
	AwayScore   int
	HomeTeam    string
	AwayTeam    string
	Competition string
	MatchDate   time.Time
	MatchStatus string
}

type PredictionService struct {
	predictions prediction.Repository
	publisher   notification.Publisher
	idGen       idgen.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewPredictionService(
	predictions prediction.Repository,
	publisher notification.Publisher,
	idGen idgen.Generator,
	logger *logging.Logger,
) *PredictionService {
	if publisher == nil {
		publisher = notification.NopPublisher{}
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &PredictionService{
		predictions: predictions,
		publisher:   publisher,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

// Submit records a new prediction. Matches that are live, paused or finished
// are closed, and a user may predict each match only once.
func (s *PredictionService) Submit(ctx context.Context, input SubmitPredictionInput) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Submit", tracing.MatchID(input.MatchID), tracing.Username(input.User))
	defer span.End()

	user := strings.TrimSpace(input.User)
	if user == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: user is required", ErrInvalidInput)
	}
	if input.MatchID <= 0 {
		return prediction.Prediction{}, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return prediction.Prediction{}, fmt.Errorf("%w: %v", ErrInvalidInput, prediction.ErrNegativeScore)
	}

	status := match.NormalizeStatus(input.MatchStatus)
	if status.IsClosed() {
		return prediction.Prediction{}, fmt.Errorf("%w: match_id=%d status=%s", ErrMatchClosed, input.MatchID, status)
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("generate prediction id: %w", err)
	}

	item := prediction.Prediction{
		ID:        id,
		User:      user,
		MatchID:   input.MatchID,
		HomeScore: input.HomeScore,
		AwayScore: input.AwayScore,
		MatchInfo: prediction.MatchInfo{
			HomeTeam:    strings.TrimSpace(input.HomeTeam),
			AwayTeam:    strings.TrimSpace(input.AwayTeam),
			Competition: strings.TrimSpace(input.Competition),
			MatchDate:   input.MatchDate.UTC(),
			Status:      status,
		},
		CreatedAt: s.now().UTC(),
	}
	if err := item.Validate(); err != nil {
		return prediction.Prediction{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.predictions.Create(ctx, item); err != nil {
		if errors.Is(err, prediction.ErrDuplicate) {
			return prediction.Prediction{}, fmt.Errorf("%w: user %q already predicted match %d", ErrConflict, user, input.MatchID)
		}
		return prediction.Prediction{}, fmt.Errorf("create prediction: %w", err)
	}

	if err := s.publisher.Publish(ctx, notification.Event{
		Name:       notification.EventPredictionSubmitted,
		MatchID:    item.MatchID,
		Payload:    notification.PredictionSubmitted{MatchID: item.MatchID, User: item.User},
		OccurredAt: item.CreatedAt,
	}); err != nil {
		s.logger.WarnContext(ctx, "publish prediction submitted failed", "match_id", item.MatchID, "error", err)
	}

	s.logger.InfoContext(ctx, "prediction submitted", "prediction_id", item.ID, "user", user, "match_id", item.MatchID)
	return item, nil
}

func (s *PredictionService) ListByMatch(ctx context.Context, matchID int64) ([]prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.ListByMatch", tracing.MatchID(matchID))
	defer span.End()

	if matchID <= 0 {
		return nil, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}

	items, err := s.predictions.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list predictions by match: %w", err)
	}
	return items, nil
}

// ListByUser returns the user's most recent predictions first.
func (s *PredictionService) ListByUser(ctx context.Context, user string, limit int) ([]prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.ListByUser", tracing.Username(user))
	defer span.End()

	user = strings.TrimSpace(user)
	if user == "" {
		return nil, fmt.Errorf("%w: user is required", ErrInvalidInput)
	}
	if limit <= 0 || limit > defaultUserPredictionLimit {
		limit = defaultUserPredictionLimit
	}

	items, err := s.predictions.ListByUser(ctx, user, limit)
	if err != nil {
		return nil, fmt.Errorf("list predictions by user: %w", err)
	}
	return items, nil
}

// PurgeByMatch deletes every prediction of a match. User aggregates are not
// rolled back.
func (s *PredictionService) PurgeByMatch(ctx context.Context, matchID int64) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.PurgeByMatch", tracing.MatchID(matchID))
	defer span.End()

	if matchID <= 0 {
		return 0, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}

	deleted, err := s.predictions.DeleteByMatch(ctx, matchID)
	if err != nil {
		return 0, fmt.Errorf("delete predictions by match: %w", err)
	}

	s.logger.WarnContext(ctx, "predictions purged", "match_id", matchID, "deleted", deleted)
	return deleted, nil
}
