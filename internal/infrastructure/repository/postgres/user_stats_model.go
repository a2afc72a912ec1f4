package postgres

import (
	"database/sql"
	"time"
)

type userStatsTableModel struct {
	Username              string       `db:"username"`
	TotalScore            int          `db:"total_score"`
	TotalPredictions      int          `db:"total_predictions"`
	CorrectPredictions    int          `db:"correct_predictions"`
	ExactScorePredictions int          `db:"exact_score_predictions"`
	LastActive            sql.NullTime `db:"last_active"`
	CreatedAt             time.Time    `db:"created_at"`
	UpdatedAt             time.Time    `db:"updated_at"`
}

// userStatsDeltaModel is the row inserted for a new user; on conflict its
// counters are added to the existing row.
type userStatsDeltaModel struct {
	Username              string    `db:"username"`
	TotalScore            int       `db:"total_score"`
	TotalPredictions      int       `db:"total_predictions"`
	CorrectPredictions    int       `db:"correct_predictions"`
	ExactScorePredictions int       `db:"exact_score_predictions"`
	LastActive            time.Time `db:"last_active"`
}
