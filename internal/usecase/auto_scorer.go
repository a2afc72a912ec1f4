package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/match-predictor/internal/domain/match"
	"github.com/riskibarqy/match-predictor/internal/domain/notification"
	"github.com/riskibarqy/match-predictor/internal/domain/prediction"
	"github.com/riskibarqy/match-predictor/internal/domain/userstats"
	"github.com/riskibarqy/match-predictor/internal/platform/logging"
	"github.com/riskibarqy/match-predictor/internal/platform/tracing"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/trace"
)

const defaultScoringWorkers = 4

type AutoScorerConfig struct {
	Workers int
}

// ScoreReport summarizes one scoring pass over a finished match.
type ScoreReport struct {
	MatchID       int64    `json:"matchId"`
	HomeScore     int      `json:"homeScore"`
	AwayScore     int      `json:"awayScore"`
	AlreadyScored bool     `json:"alreadyScored"`
	Pending       int      `json:"pending"`
	Scored        int      `json:"scored"`
	Skipped       int      `json:"skipped"`
	Failed        int      `json:"failed"`
	Users         []string `json:"users,omitempty"`
}

// AutoScorer awards points for a finished match at most once per prediction.
type AutoScorer struct {
	predictions prediction.Repository
	stats       userstats.Repository
	publisher   notification.Publisher
	metrics     PipelineMetrics
	logger      *logging.Logger
	cfg         AutoScorerConfig
	now         func() time.Time
}

func NewAutoScorer(
	predictions prediction.Repository,
	stats userstats.Repository,
	publisher notification.Publisher,
	metrics PipelineMetrics,
	cfg AutoScorerConfig,
	logger *logging.Logger,
) *AutoScorer {
	if publisher == nil {
		publisher = notification.NopPublisher{}
	}
	if metrics == nil {
		metrics = nopPipelineMetrics{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultScoringWorkers
	}

	return &AutoScorer{
		predictions: predictions,
		stats:       stats,
		publisher:   publisher,
		metrics:     metrics,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// ScoreIfUnscored scores every pending prediction of m. A match that already has
// a scored prediction is treated as processed and left alone.
func (s *AutoScorer) ScoreIfUnscored(ctx context.Context, m match.Match) (ScoreReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AutoScorer.ScoreIfUnscored", tracing.MatchID(m.ID))
	defer span.End()

	report := ScoreReport{MatchID: m.ID, HomeScore: m.HomeScore, AwayScore: m.AwayScore}
	if err := validateFinalScore(m); err != nil {
		return report, err
	}

	alreadyScored, err := s.predictions.CountScoredByMatch(ctx, m.ID)
	if err != nil {
		return report, fmt.Errorf("count scored predictions match_id=%d: %w", m.ID, err)
	}
	if alreadyScored > 0 {
		report.AlreadyScored = true
		return report, nil
	}

	return s.scorePending(ctx, m, report)
}

// scorePending scores every unscored prediction of m. MarkScored is the only
// guard here, so a prediction is never awarded twice.
func (s *AutoScorer) scorePending(ctx context.Context, m match.Match, report ScoreReport) (ScoreReport, error) {
	pending, err := s.predictions.ListUnscoredByMatch(ctx, m.ID)
	if err != nil {
		return report, fmt.Errorf("list unscored predictions match_id=%d: %w", m.ID, err)
	}
	report.Pending = len(pending)
	if len(pending) == 0 {
		return report, nil
	}

	started := s.now()
	scoredAt := started.UTC()
	s.logger.InfoContext(ctx, "scoring finished match",
		"match_id", m.ID,
		"home_team", m.HomeTeam,
		"away_team", m.AwayTeam,
		"home_score", m.HomeScore,
		"away_score", m.AwayScore,
		"pending", len(pending),
	)

	var (
		mu     sync.Mutex
		latest = make(map[string]userstats.Aggregate, len(pending))
	)

	workers := pool.New().WithMaxGoroutines(s.cfg.Workers).WithErrors()
	for _, item := range pending {
		item := item
		workers.Go(func() error {
			agg, won, err := s.scoreOne(ctx, m, item, scoredAt)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed++
				s.metrics.ObserveScoringFailure()
				return err
			case !won:
				report.Skipped++
			default:
				report.Scored++
				if prev, ok := latest[agg.Username]; !ok || agg.TotalPredictions > prev.TotalPredictions {
					latest[agg.Username] = agg
				}
			}
			return nil
		})
	}
	batchErr := workers.Wait()
	s.metrics.ObserveScoringDuration(s.now().Sub(started))
	trace.SpanFromContext(ctx).SetAttributes(
		tracing.AttrPending.Int(report.Pending),
		tracing.AttrScored.Int(report.Scored),
		tracing.AttrFailed.Int(report.Failed),
	)

	report.Users = make([]string, 0, len(latest))
	for username := range latest {
		report.Users = append(report.Users, username)
	}
	sort.Strings(report.Users)

	if report.Scored > 0 {
		for _, username := range report.Users {
			agg := latest[username]
			s.publish(ctx, notification.Event{
				Name: notification.EventUserStatsUpdated,
				Payload: notification.UserStatsUpdated{
					User:                  agg.Username,
					TotalScore:            agg.TotalScore,
					TotalPredictions:      agg.TotalPredictions,
					CorrectPredictions:    agg.CorrectPredictions,
					ExactScorePredictions: agg.ExactScorePredictions,
					Accuracy:              agg.Accuracy(),
				},
			})
		}
		s.publish(ctx, notification.Event{
			Name:    notification.EventLeaderboardChanged,
			Payload: notification.LeaderboardChanged{},
		})
		s.publish(ctx, notification.Event{
			Name:    notification.EventMatchScored,
			MatchID: m.ID,
			Payload: notification.MatchScored{
				MatchID:     m.ID,
				HomeScore:   m.HomeScore,
				AwayScore:   m.AwayScore,
				ScoredCount: report.Scored,
			},
		})
	}

	if batchErr != nil {
		s.logger.ErrorContext(ctx, "scoring finished with failures",
			"match_id", m.ID,
			"scored", report.Scored,
			"failed", report.Failed,
			"error", batchErr,
		)
		return report, fmt.Errorf("score match_id=%d: %d of %d predictions failed: %w", m.ID, report.Failed, report.Pending, batchErr)
	}

	s.logger.InfoContext(ctx, "match scoring completed",
		"match_id", m.ID,
		"scored", report.Scored,
		"skipped", report.Skipped,
	)
	return report, nil
}

// ScoreMatchManually scores an operator-supplied final score. It skips the
// per-match guard, so predictions left unscored by a partially failed pass are
// picked up here.
func (s *AutoScorer) ScoreMatchManually(ctx context.Context, matchID int64, homeScore, awayScore int) (ScoreReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AutoScorer.ScoreMatchManually", tracing.MatchID(matchID))
	defer span.End()

	m := match.Match{
		ID:          matchID,
		Status:      match.StatusFinished,
		HomeScore:   homeScore,
		AwayScore:   awayScore,
		LastUpdated: s.now().UTC(),
	}
	report := ScoreReport{MatchID: m.ID, HomeScore: m.HomeScore, AwayScore: m.AwayScore}
	if err := validateFinalScore(m); err != nil {
		return report, err
	}

	s.logger.InfoContext(ctx, "manual scoring requested", "match_id", matchID, "home_score", homeScore, "away_score", awayScore)
	return s.scorePending(ctx, m, report)
}

func validateFinalScore(m match.Match) error {
	if m.ID <= 0 {
		return fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}
	if m.HomeScore < 0 || m.AwayScore < 0 {
		return fmt.Errorf("%w: final score must be non-negative", ErrInvalidInput)
	}
	return nil
}

func (s *AutoScorer) scoreOne(ctx context.Context, m match.Match, item prediction.Prediction, scoredAt time.Time) (userstats.Aggregate, bool, error) {
	outcome := item.Score(m.HomeScore, m.AwayScore, scoredAt)

	won, err := s.predictions.MarkScored(ctx, item.ID, outcome)
	if err != nil {
		return userstats.Aggregate{}, false, fmt.Errorf("mark prediction scored id=%s: %w", item.ID, err)
	}
	if !won {
		return userstats.Aggregate{}, false, nil
	}

	agg, err := s.stats.ApplyScore(ctx, item.User, userstats.Delta{
		Points:     outcome.Points,
		IsExact:    outcome.IsExactScore,
		IsCorrect:  outcome.IsCorrectResult,
		OccurredAt: scoredAt,
	})
	if err != nil {
		// The prediction keeps IsScored=true, so this delta is not retried.
		s.logger.ErrorContext(ctx, "apply user score failed after prediction was marked scored",
			"prediction_id", item.ID,
			"user", item.User,
			"match_id", m.ID,
			"points", outcome.Points,
			"error", err,
		)
		return userstats.Aggregate{}, false, errors.Join(errAggregateNotApplied, fmt.Errorf("apply score user=%s: %w", item.User, err))
	}

	s.metrics.ObservePredictionScored(outcomeLabel(outcome))
	s.publish(ctx, notification.Event{
		Name:    notification.EventPredictionScored,
		MatchID: m.ID,
		Payload: notification.PredictionScored{
			MatchID:         m.ID,
			User:            item.User,
			Points:          outcome.Points,
			IsExactScore:    outcome.IsExactScore,
			IsCorrectResult: outcome.IsCorrectResult,
			ActualHomeScore: outcome.ActualHomeScore,
			ActualAwayScore: outcome.ActualAwayScore,
		},
	})

	return agg, true, nil
}

var errAggregateNotApplied = errors.New("user aggregate not applied")

func (s *AutoScorer) publish(ctx context.Context, event notification.Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "publish notification failed", "event", event.Name, "match_id", event.MatchID, "error", err)
	}
}

func outcomeLabel(outcome prediction.Outcome) string {
	switch {
	case outcome.IsExactScore:
		return "exact"
	case outcome.IsCorrectResult:
		return "correct"
	default:
		return "miss"
	}
}
