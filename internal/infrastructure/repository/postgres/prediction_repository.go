package postgres

import (
	"context"
	"database/sql"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/match-predictor/internal/domain/match"
	"github.com/riskibarqy/match-predictor/internal/domain/prediction"
	qb "github.com/riskibarqy/match-predictor/internal/platform/querybuilder"
)

const predictionsTable = "predictions"

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Create(ctx context.Context, item prediction.Prediction) error {
	insertModel := predictionInsertModel{
		ID:          item.ID,
		Username:    item.User,
		MatchID:     item.MatchID,
		HomeScore:   item.HomeScore,
		AwayScore:   item.AwayScore,
		HomeTeam:    item.MatchInfo.HomeTeam,
		AwayTeam:    item.MatchInfo.AwayTeam,
		Competition: item.MatchInfo.Competition,
		MatchDate:   sql.NullTime{Time: item.MatchInfo.MatchDate, Valid: !item.MatchInfo.MatchDate.IsZero()},
		MatchStatus: item.MatchInfo.Status.String(),
		CreatedAt:   item.CreatedAt,
	}

	query, args, err := qb.InsertModel(predictionsTable, insertModel, "").ToSQL()
	if err != nil {
		return crerr.Wrap(err, "build insert prediction query")
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return prediction.ErrDuplicate
		}
		return crerr.Wrapf(err, "insert prediction user=%s match_id=%d", item.User, item.MatchID)
	}
	return nil
}

func (r *PredictionRepository) ListByMatch(ctx context.Context, matchID int64) ([]prediction.Prediction, error) {
	return r.list(ctx, "list predictions by match", predictionSelectBuilder().
		Where(qb.Eq("match_id", matchID)).
		OrderBy("created_at ASC", "id ASC"))
}

func (r *PredictionRepository) ListUnscoredByMatch(ctx context.Context, matchID int64) ([]prediction.Prediction, error) {
	return r.list(ctx, "list unscored predictions", predictionSelectBuilder().
		Where(qb.Eq("match_id", matchID), qb.Eq("is_scored", false)).
		OrderBy("created_at ASC", "id ASC"))
}

func (r *PredictionRepository) ListByUser(ctx context.Context, user string, limit int) ([]prediction.Prediction, error) {
	return r.list(ctx, "list predictions by user", predictionSelectBuilder().
		Where(qb.Eq("username", user)).
		OrderBy("created_at DESC", "id ASC").
		Limit(limit))
}

func (r *PredictionRepository) CountScoredByMatch(ctx context.Context, matchID int64) (int, error) {
	query, args, err := qb.Select("COUNT(*)").
		From(predictionsTable).
		Where(qb.Eq("match_id", matchID), qb.Eq("is_scored", true)).
		ToSQL()
	if err != nil {
		return 0, crerr.Wrap(err, "build count scored predictions query")
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, crerr.Wrapf(err, "count scored predictions match_id=%d", matchID)
	}
	return count, nil
}

// MarkScored is a compare-and-set on is_scored; zero affected rows means
// another pass got there first.
func (r *PredictionRepository) MarkScored(ctx context.Context, predictionID string, outcome prediction.Outcome) (bool, error) {
	query, args, err := qb.Update(predictionsTable).
		Set("points", outcome.Points).
		Set("is_exact_score", outcome.IsExactScore).
		Set("is_correct_result", outcome.IsCorrectResult).
		Set("actual_home_score", outcome.ActualHomeScore).
		Set("actual_away_score", outcome.ActualAwayScore).
		Set("is_scored", true).
		Set("scored_at", outcome.ScoredAt).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", predictionID), qb.Eq("is_scored", false)).
		ToSQL()
	if err != nil {
		return false, crerr.Wrap(err, "build mark prediction scored query")
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, crerr.Wrapf(err, "mark prediction scored id=%s", predictionID)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, crerr.Wrap(err, "read mark scored rows affected")
	}
	return affected == 1, nil
}

func (r *PredictionRepository) DeleteByMatch(ctx context.Context, matchID int64) (int, error) {
	query, args, err := qb.DeleteFrom(predictionsTable).
		Where(qb.Eq("match_id", matchID)).
		ToSQL()
	if err != nil {
		return 0, crerr.Wrap(err, "build delete predictions query")
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, crerr.Wrapf(err, "delete predictions match_id=%d", matchID)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, crerr.Wrap(err, "read delete rows affected")
	}
	return int(affected), nil
}

func (r *PredictionRepository) list(ctx context.Context, op string, builder *qb.SelectBuilder) ([]prediction.Prediction, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, crerr.Wrapf(err, "build %s query", op)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, op)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, predictionFromRow(row))
	}
	return out, nil
}

func predictionSelectBuilder() *qb.SelectBuilder {
	return qb.Select(qb.Columns(predictionTableModel{})...).From(predictionsTable)
}

func predictionFromRow(row predictionTableModel) prediction.Prediction {
	item := prediction.Prediction{
		ID:        row.ID,
		User:      row.Username,
		MatchID:   row.MatchID,
		HomeScore: row.HomeScore,
		AwayScore: row.AwayScore,
		MatchInfo: prediction.MatchInfo{
			HomeTeam:    row.HomeTeam,
			AwayTeam:    row.AwayTeam,
			Competition: row.Competition,
			Status:      match.NormalizeStatus(row.MatchStatus),
		},
		Points:          row.Points,
		IsExactScore:    row.IsExactScore,
		IsCorrectResult: row.IsCorrectResult,
		ActualHomeScore: nullIntPtr(row.ActualHomeScore),
		ActualAwayScore: nullIntPtr(row.ActualAwayScore),
		IsScored:        row.IsScored,
		ScoredAt:        nullTimePtr(row.ScoredAt),
		CreatedAt:       row.CreatedAt.UTC(),
	}
	if row.MatchDate.Valid {
		item.MatchInfo.MatchDate = row.MatchDate.Time.UTC()
	}
	return item
}
