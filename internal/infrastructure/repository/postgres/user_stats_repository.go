package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/match-predictor/internal/domain/userstats"
	qb "github.com/riskibarqy/match-predictor/internal/platform/querybuilder"
)

const userStatsTable = "user_stats"

const applyScoreConflictClause = `ON CONFLICT (username) DO UPDATE SET
    total_score = user_stats.total_score + EXCLUDED.total_score,
    total_predictions = user_stats.total_predictions + EXCLUDED.total_predictions,
    correct_predictions = user_stats.correct_predictions + EXCLUDED.correct_predictions,
    exact_score_predictions = user_stats.exact_score_predictions + EXCLUDED.exact_score_predictions,
    last_active = GREATEST(user_stats.last_active, EXCLUDED.last_active),
    updated_at = NOW()`

type UserStatsRepository struct {
	db *sqlx.DB
}

func NewUserStatsRepository(db *sqlx.DB) *UserStatsRepository {
	return &UserStatsRepository{db: db}
}

// ApplyScore increments the aggregate in one statement, so concurrent scoring of
// the same user's predictions cannot lose an update.
func (r *UserStatsRepository) ApplyScore(ctx context.Context, username string, d userstats.Delta) (userstats.Aggregate, error) {
	delta := userstats.Aggregate{Username: username}.Add(d)

	query, args, err := qb.InsertModel(userStatsTable, userStatsDeltaModel{
		Username:              username,
		TotalScore:            delta.TotalScore,
		TotalPredictions:      delta.TotalPredictions,
		CorrectPredictions:    delta.CorrectPredictions,
		ExactScorePredictions: delta.ExactScorePredictions,
		LastActive:            d.OccurredAt.UTC(),
	}, applyScoreConflictClause).
		Returning(qb.Columns(userStatsTableModel{})...).
		ToSQL()
	if err != nil {
		return userstats.Aggregate{}, crerr.Wrap(err, "build apply score query")
	}

	var row userStatsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return userstats.Aggregate{}, crerr.Wrapf(err, "apply score user=%s", username)
	}
	return userStatsFromRow(row), nil
}

func (r *UserStatsRepository) Get(ctx context.Context, username string) (userstats.Aggregate, bool, error) {
	query, args, err := userStatsSelectBuilder().
		Where(qb.Eq("username", username)).
		ToSQL()
	if err != nil {
		return userstats.Aggregate{}, false, crerr.Wrap(err, "build get user stats query")
	}

	var row userStatsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return userstats.Aggregate{}, false, nil
		}
		return userstats.Aggregate{}, false, crerr.Wrapf(err, "get user stats user=%s", username)
	}
	return userStatsFromRow(row), true, nil
}

func (r *UserStatsRepository) List(ctx context.Context) ([]userstats.Aggregate, error) {
	query, args, err := userStatsSelectBuilder().
		OrderBy("total_score DESC", "username ASC").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list user stats query")
	}

	var rows []userStatsTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list user stats")
	}

	out := make([]userstats.Aggregate, 0, len(rows))
	for _, row := range rows {
		out = append(out, userStatsFromRow(row))
	}
	return out, nil
}

func userStatsSelectBuilder() *qb.SelectBuilder {
	return qb.Select(qb.Columns(userStatsTableModel{})...).From(userStatsTable)
}

func userStatsFromRow(row userStatsTableModel) userstats.Aggregate {
	agg := userstats.Aggregate{
		Username:              row.Username,
		TotalScore:            row.TotalScore,
		TotalPredictions:      row.TotalPredictions,
		CorrectPredictions:    row.CorrectPredictions,
		ExactScorePredictions: row.ExactScorePredictions,
	}
	if row.LastActive.Valid {
		agg.LastActive = row.LastActive.Time.UTC()
	}
	return agg
}
