package postgres

import (
	"database/sql"
	"time"
)

type predictionTableModel struct {
	ID              string        `db:"id"`
	Username        string        `db:"username"`
	MatchID         int64         `db:"match_id"`
	HomeScore       int           `db:"home_score"`
	AwayScore       int           `db:"away_score"`
	HomeTeam        string        `db:"home_team"`
	AwayTeam        string        `db:"away_team"`
	Competition     string        `db:"competition"`
	MatchDate       sql.NullTime  `db:"match_date"`
	MatchStatus     string        `db:"match_status"`
	Points          int           `db:"points"`
	IsExactScore    bool          `db:"is_exact_score"`
	IsCorrectResult bool          `db:"is_correct_result"`
	ActualHomeScore sql.NullInt64 `db:"actual_home_score"`
	ActualAwayScore sql.NullInt64 `db:"actual_away_score"`
	IsScored        bool          `db:"is_scored"`
	ScoredAt        sql.NullTime  `db:"scored_at"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

type predictionInsertModel struct {
	ID          string       `db:"id"`
	Username    string       `db:"username"`
	MatchID     int64        `db:"match_id"`
	HomeScore   int          `db:"home_score"`
	AwayScore   int          `db:"away_score"`
	HomeTeam    string       `db:"home_team"`
	AwayTeam    string       `db:"away_team"`
	Competition string       `db:"competition"`
	MatchDate   sql.NullTime `db:"match_date"`
	MatchStatus string       `db:"match_status"`
	CreatedAt   time.Time    `db:"created_at"`
}
