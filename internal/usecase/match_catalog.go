package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/match-predictor/internal/domain/match"
)

const (
	MatchViewAll      = "all"
	MatchViewLive     = "live"
	MatchViewUpcoming = "upcoming"

	unknownCompetition = "Other"
)

// MatchSummary is the browse model for one match.
type MatchSummary struct {
	ID        int64        `json:"id"`
	Status    match.Status `json:"status"`
	HomeTeam  string       `json:"homeTeam"`
	AwayTeam  string       `json:"awayTeam"`
	HomeScore int          `json:"homeScore"`
	AwayScore int          `json:"awayScore"`
	MatchDate time.Time    `json:"matchDate"`
}

// CompetitionMatches groups the matches of one competition, earliest first.
type CompetitionMatches struct {
	Competition string         `json:"competition"`
	Count       int            `json:"count"`
	Matches     []MatchSummary `json:"matches"`
}

// MatchCatalog serves read-only views over the current match snapshot.
type MatchCatalog struct {
	source       match.Source
	fetchTimeout time.Duration
}

func NewMatchCatalog(source match.Source, fetchTimeout time.Duration) *MatchCatalog {
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	return &MatchCatalog{source: source, fetchTimeout: fetchTimeout}
}

// ByCompetition fetches a snapshot, keeps the matches selected by view and
// groups them by competition. Larger competitions come first.
func (c *MatchCatalog) ByCompetition(ctx context.Context, view string) ([]CompetitionMatches, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchCatalog.ByCompetition")
	defer span.End()

	keep, err := matchViewFilter(view)
	if err != nil {
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	snapshot, err := c.source.FetchSnapshot(fetchCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch match snapshot: %w", ErrDependencyUnavailable, err)
	}

	groups := make(map[string]*CompetitionMatches)
	for _, m := range match.DedupeByID(snapshot) {
		if !keep(m.Status) {
			continue
		}
		name := strings.TrimSpace(m.Competition)
		if name == "" {
			name = unknownCompetition
		}
		group, ok := groups[name]
		if !ok {
			group = &CompetitionMatches{Competition: name}
			groups[name] = group
		}
		group.Matches = append(group.Matches, MatchSummary{
			ID:        m.ID,
			Status:    m.Status,
			HomeTeam:  m.HomeTeam,
			AwayTeam:  m.AwayTeam,
			HomeScore: m.HomeScore,
			AwayScore: m.AwayScore,
			MatchDate: m.MatchDate.UTC(),
		})
	}

	out := make([]CompetitionMatches, 0, len(groups))
	for _, group := range groups {
		sort.SliceStable(group.Matches, func(i, j int) bool {
			a, b := group.Matches[i], group.Matches[j]
			if !a.MatchDate.Equal(b.MatchDate) {
				return a.MatchDate.Before(b.MatchDate)
			}
			return a.ID < b.ID
		})
		group.Count = len(group.Matches)
		out = append(out, *group)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Competition < out[j].Competition
	})
	return out, nil
}

func matchViewFilter(view string) (func(match.Status) bool, error) {
	switch strings.ToLower(strings.TrimSpace(view)) {
	case "", MatchViewAll:
		return func(match.Status) bool { return true }, nil
	case MatchViewLive:
		return func(s match.Status) bool { return s == match.StatusLive || s == match.StatusPaused }, nil
	case MatchViewUpcoming:
		return func(s match.Status) bool { return s == match.StatusScheduled }, nil
	default:
		return nil, fmt.Errorf("%w: view must be one of %s, %s, %s, got %q", ErrInvalidInput, MatchViewAll, MatchViewLive, MatchViewUpcoming, view)
	}
}
