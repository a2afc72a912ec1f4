package match

import (
	"strings"
	"time"
)

// Status is the normalized lifecycle state of a match.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusLive      Status = "LIVE"
	StatusPaused    Status = "PAUSED"
	StatusFinished  Status = "FINISHED"
)

// Match is a point-in-time view of one fixture as reported by the data provider.
type Match struct {
	ID          int64
	Status      Status
	HomeScore   int
	AwayScore   int
	HomeTeam    string
	AwayTeam    string
	Competition string
	MatchDate   time.Time
	LastUpdated time.Time
}

// NormalizeStatus maps provider status strings onto the four lifecycle states.
// A suspended match has kicked off and may resume, so it counts as paused.
// Unknown, postponed and cancelled variants collapse to StatusScheduled.
func NormalizeStatus(value string) Status {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "LIVE", "IN_PLAY":
		return StatusLive
	case "PAUSED", "HT", "SUSPENDED":
		return StatusPaused
	case "FINISHED", "AWARDED", "FT":
		return StatusFinished
	default:
		return StatusScheduled
	}
}

func (s Status) String() string {
	return string(s)
}

// IsClosed reports whether predictions can no longer be submitted.
func (s Status) IsClosed() bool {
	switch s {
	case StatusLive, StatusPaused, StatusFinished:
		return true
	default:
		return false
	}
}

func (s Status) IsFinished() bool {
	return s == StatusFinished
}

// DedupeByID keeps the first occurrence of every match id, preserving order.
func DedupeByID(items []Match) []Match {
	if len(items) == 0 {
		return nil
	}

	seen := make(map[int64]struct{}, len(items))
	out := make([]Match, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}
