package match

import (
	"strings"
	"time"
)

type Status string

const (
	StatusCreated   Status = "created"
	StatusLive      Status = "live"
	StatusFinished  Status = "finished"
	StatusPostponed Status = "postponed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus maps an upstream status label onto a match status.
func ParseStatus(value string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "created", "scheduled", "not_started", "ns":
		return StatusCreated, true
	case "live", "in_play", "1h", "2h", "ht":
		return StatusLive, true
	case "finished", "ended", "ft", "aet", "pen":
		return StatusFinished, true
	case "postponed":
		return StatusPostponed, true
	case "cancelled", "canceled", "abandoned":
		return StatusCancelled, true
	default:
		return "", false
	}
}

// DeriveStatus guesses a status from kickoff and scores. Only repair syncs use
// it: a running game already carries scores, so a regular feed sync must not
// finish a match on this guess.
func DeriveStatus(kickoff time.Time, homeScore, awayScore *int, now time.Time) Status {
	if homeScore != nil && awayScore != nil && !kickoff.IsZero() && kickoff.Before(now) {
		return StatusFinished
	}
	return StatusCreated
}

// Match is a scheduled game between two teams.
type Match struct {
	ID            int64
	SotaID        string
	SeasonID      int64
	Tour          *int
	Date          time.Time
	KickoffTime   string
	Status        Status
	HomeTeamID    *int64
	AwayTeamID    *int64
	HomeScore     *int
	AwayScore     *int
	HomeFormation string
	AwayFormation string
	HomeKitColor  string
	AwayKitColor  string
	HasLineup     bool
	HasStats      bool
	Stadium       string
	Visitors      *int
	LiveSyncedAt  *time.Time
	UpdatedAt     time.Time
}

// KickoffAt combines the match date and kickoff time in loc. The second value
// is false when the kickoff time is unknown.
func (m Match) KickoffAt(loc *time.Location) (time.Time, bool) {
	if m.Date.IsZero() {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	y, mo, d := m.Date.Date()
	clock, ok := ParseClock(m.KickoffTime)
	if !ok {
		return time.Date(y, mo, d, 0, 0, 0, 0, loc), false
	}
	return time.Date(y, mo, d, 0, 0, 0, 0, loc).Add(clock), true
}

func (m Match) IsFinished() bool {
	return m.Status == StatusFinished
}

func (m Match) TeamIDs() []int64 {
	out := make([]int64, 0, 2)
	if m.HomeTeamID != nil {
		out = append(out, *m.HomeTeamID)
	}
	if m.AwayTeamID != nil {
		out = append(out, *m.AwayTeamID)
	}
	return out
}

// ParseClock reads "HH:MM" or "HH:MM:SS" as an offset from midnight.
func ParseClock(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		t, err := time.Parse(layout, value)
		if err == nil {
			return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, true
		}
	}
	return 0, false
}

// FinishedFilter selects finished matches for repair jobs. MatchIDs takes
// precedence over SeasonID.
type FinishedFilter struct {
	SeasonID *int64
	MatchIDs []int64
	AfterID  int64
	Limit    int
}

// LiveMetadata holds values read from the live documents. Empty fields are
// ignored and only missing stored values are filled.
type LiveMetadata struct {
	HomeFormation string
	AwayFormation string
	Stadium       string
	KickoffTime   string
}

func (m LiveMetadata) IsEmpty() bool {
	return m.HomeFormation == "" && m.AwayFormation == "" && m.Stadium == "" && m.KickoffTime == ""
}
