package footballdata

import (
	"strings"
	"time"

	"github.com/riskibarqy/match-predictor/internal/domain/match"
)

type matchesEnvelope struct {
	Matches []matchItem `json:"matches"`
}

type matchItem struct {
	ID          int64       `json:"id"`
	UTCDate     string      `json:"utcDate"`
	Status      string      `json:"status"`
	LastUpdated string      `json:"lastUpdated"`
	Competition competition `json:"competition"`
	HomeTeam    team        `json:"homeTeam"`
	AwayTeam    team        `json:"awayTeam"`
	Score       score       `json:"score"`
}

type competition struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type team struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

type score struct {
	Winner   *string   `json:"winner"`
	FullTime scoreLine `json:"fullTime"`
	HalfTime scoreLine `json:"halfTime"`
}

type scoreLine struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

func (m matchItem) toDomain() match.Match {
	return match.Match{
		ID:          m.ID,
		Status:      match.NormalizeStatus(m.Status),
		HomeScore:   valueOrZero(m.Score.FullTime.Home),
		AwayScore:   valueOrZero(m.Score.FullTime.Away),
		HomeTeam:    strings.TrimSpace(m.HomeTeam.Name),
		AwayTeam:    strings.TrimSpace(m.AwayTeam.Name),
		Competition: strings.TrimSpace(m.Competition.Name),
		MatchDate:   parseTime(m.UTCDate),
		LastUpdated: parseTime(m.LastUpdated),
	}
}

func valueOrZero(v *int) int {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}

func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}
