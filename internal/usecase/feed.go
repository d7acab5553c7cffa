package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/lineup"
)

// Locale selects the language of names returned by the feed.
type Locale string

const (
	LocaleRU Locale = "ru"
	LocaleKZ Locale = "kk"
	LocaleEN Locale = "en"
)

// FeedLocales is the fetch order for multilingual entities. The first locale
// is the canonical one.
var FeedLocales = []Locale{LocaleRU, LocaleKZ, LocaleEN}

// FeedProvider is the authenticated REST side of the upstream feed. Transient
// failures that survive the retry policy are reported as ErrFetchFailed and
// missing resources as ErrNotFound.
type FeedProvider interface {
	FetchTournaments(ctx context.Context, locale Locale) ([]ExternalTournament, error)
	FetchSeasons(ctx context.Context, locale Locale) ([]ExternalSeason, error)
	// FetchTeams lists every team, or the teams of one season when seasonID > 0.
	FetchTeams(ctx context.Context, locale Locale, seasonID int64) ([]ExternalTeam, error)
	FetchPlayers(ctx context.Context, locale Locale, seasonID int64) ([]ExternalPlayer, error)
	FetchGames(ctx context.Context, seasonID int64) ([]ExternalGame, error)
	FetchScoreTable(ctx context.Context, seasonID int64) ([]ExternalStanding, error)
	FetchTeamSeasonStats(ctx context.Context, teamSotaID, seasonID int64) (ExternalStats, error)
	FetchPlayerSeasonStats(ctx context.Context, playerSotaID string, seasonID int64) (ExternalPlayerSeasonStats, error)
	FetchGameTeamStats(ctx context.Context, gameSotaID string) ([]ExternalGameTeamStats, error)
	FetchGamePlayerStats(ctx context.Context, gameSotaID string) ([]ExternalGamePlayerStats, error)
	FetchPreGameLineup(ctx context.Context, gameSotaID string) (ExternalPreGameLineup, error)
}

// LiveFeed reads the static per-match documents.
type LiveFeed interface {
	FetchLiveLineup(ctx context.Context, gameSotaID string, side lineup.Side) (ExternalLineupFeed, error)
	FetchLiveEvents(ctx context.Context, gameSotaID string) ([]ExternalLiveEvent, error)
}

type ExternalTournament struct {
	ID          int64
	Name        string
	CountryCode string
	CountryName string
}

type ExternalSeason struct {
	ID           int64
	TournamentID int64
	Name         string
	DateStart    *time.Time
	DateEnd      *time.Time
}

type ExternalTeam struct {
	ID      int64
	Name    string
	City    string
	LogoURL string
}

type ExternalPlayer struct {
	SotaID      string
	FirstName   string
	LastName    string
	Birthday    *time.Time
	PlayerType  string
	TopRole     string
	CountryName string
	TeamID      int64
	Number      *int
}

type ExternalGame struct {
	SotaID      string
	SeasonID    int64
	Tour        *int
	Date        time.Time
	KickoffTime string
	HomeTeamID  int64
	AwayTeamID  int64
	HomeScore   *int
	AwayScore   *int
	HasStats    bool
	Stadium     string
	Visitors    *int
}

// ExternalStanding is one score table row. Position is the row order.
type ExternalStanding struct {
	TeamID         int64
	Position       int
	GamesPlayed    int
	Wins           int
	Draws          int
	Losses         int
	GoalsScored    int
	GoalsConceded  int
	GoalDifference *int
	Points         int
	Form           string
}

// ExternalStats is a loosely typed metric map as reported by the feed.
type ExternalStats map[string]any

// Int reads an integral metric. Floats are truncated and numeric strings parsed.
func (s ExternalStats) Int(key string) (int, bool) {
	switch v := s[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func (s ExternalStats) IntOrZero(key string) int {
	n, _ := s.Int(key)
	return n
}

func (s ExternalStats) IntPtr(key string) *int {
	n, ok := s.Int(key)
	if !ok {
		return nil
	}
	return &n
}

// Float reads a metric as float64. "54%" style strings are accepted.
func (s ExternalStats) Float(key string) (float64, bool) {
	switch v := s[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "%"), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func (s ExternalStats) FloatPtr(key string) *float64 {
	f, ok := s.Float(key)
	if !ok {
		return nil
	}
	return &f
}

// Extra returns the metrics whose keys are not in known.
func (s ExternalStats) Extra(known map[string]struct{}) map[string]any {
	out := make(map[string]any)
	for k, v := range s {
		if _, ok := known[k]; ok {
			continue
		}
		out[k] = v
	}
	return out
}

type ExternalPlayerSeasonStats struct {
	FirstName string
	LastName  string
	Stats     ExternalStats
}

type ExternalGameTeamStats struct {
	TeamID int64
	Name   string
	Stats  ExternalStats
}

type ExternalGamePlayerStats struct {
	SotaID        string
	FirstName     string
	LastName      string
	TeamID        int64
	TeamName      string
	MinutesPlayed *int
	Started       bool
	Position      string
	Stats         ExternalStats
}

type ExternalPerson struct {
	FirstName string
	LastName  string
}

func (p ExternalPerson) IsZero() bool {
	return strings.TrimSpace(p.FirstName) == "" && strings.TrimSpace(p.LastName) == ""
}

type ExternalPreGameLineup struct {
	// Referees maps the upstream role key to the full name.
	Referees map[string]string
	Home     ExternalPreGameTeam
	Away     ExternalPreGameTeam
}

func (l ExternalPreGameLineup) Side(side lineup.Side) ExternalPreGameTeam {
	if side == lineup.SideAway {
		return l.Away
	}
	return l.Home
}

type ExternalPreGameTeam struct {
	// Staff maps coach keys (coach, first_assistant, second_assistant) to people.
	Staff       map[string]ExternalPerson
	Lineup      []ExternalPreGamePlayer
	Substitutes []ExternalPreGamePlayer
}

// Split returns starters and substitutes. Without an explicit substitutes
// list the first goalkeeper and the first ten outfield players start.
func (t ExternalPreGameTeam) Split() ([]ExternalPreGamePlayer, []ExternalPreGamePlayer) {
	if len(t.Substitutes) > 0 {
		return t.Lineup, t.Substitutes
	}

	var keepers, outfield []ExternalPreGamePlayer
	for _, p := range t.Lineup {
		if p.IsGK {
			keepers = append(keepers, p)
		} else {
			outfield = append(outfield, p)
		}
	}

	starters := make([]ExternalPreGamePlayer, 0, 11)
	subs := make([]ExternalPreGamePlayer, 0, len(t.Lineup))
	if len(keepers) > 0 {
		starters = append(starters, keepers[0])
		subs = append(subs, keepers[1:]...)
	}
	if len(outfield) > 10 {
		starters = append(starters, outfield[:10]...)
		subs = append(subs, outfield[10:]...)
	} else {
		starters = append(starters, outfield...)
	}
	return starters, subs
}

type ExternalPreGamePlayer struct {
	SotaID    string
	FirstName string
	LastName  string
	Number    *int
	IsGK      bool
	IsCaptain bool
}

// ExternalLiveEvent is one row of the live events document.
type ExternalLiveEvent struct {
	Half       int
	Minute     int
	Action     string
	Number1    *int
	FirstName1 string
	LastName1  string
	Team1      string
	Number2    *int
	FirstName2 string
	LastName2  string
	Team2      string
}

// RowKind tags a row of the live lineup document.
type RowKind int

const (
	RowUnknown RowKind = iota
	RowStartersMarker
	RowSubstitutesMarker
	RowFormation
	RowTeam
	RowCoach
	RowAssistant
	RowStadium
	RowKickoff
	RowPlayer
)

func (k RowKind) String() string {
	switch k {
	case RowStartersMarker:
		return "starters_marker"
	case RowSubstitutesMarker:
		return "substitutes_marker"
	case RowFormation:
		return "formation"
	case RowTeam:
		return "team"
	case RowCoach:
		return "coach"
	case RowAssistant:
		return "assistant"
	case RowStadium:
		return "stadium"
	case RowKickoff:
		return "kickoff"
	case RowPlayer:
		return "player"
	default:
		return "unknown"
	}
}

// LineupRow is a parsed row of the live lineup document. Only player rows
// carry a shirt number.
type LineupRow struct {
	Kind          RowKind
	Number        int
	SotaID        string
	FirstName     string
	LastName      string
	FullName      string
	Amplua        lineup.Amplua
	FieldPosition lineup.FieldPosition
	IsGK          bool
	IsCaptain     bool
}

// ExternalLineupFeed is the typed view of one side's live lineup document.
type ExternalLineupFeed struct {
	Rows                  []LineupRow
	TeamName              string
	Formation             string
	KitColor              string
	Stadium               string
	KickoffTime           string
	Coach                 *ExternalPerson
	Assistants            []ExternalPerson
	Starters              []LineupRow
	Substitutes           []LineupRow
	SeenStartersMarker    bool
	SeenSubstitutesMarker bool
}

// IsValidForField reports whether the document is complete enough to place
// players on the pitch.
func (f ExternalLineupFeed) IsValidForField() bool {
	if !f.SeenStartersMarker || !f.SeenSubstitutesMarker || len(f.Starters) < 11 {
		return false
	}
	for _, row := range f.Starters[:11] {
		if row.Amplua == "" || row.FieldPosition == "" {
			return false
		}
	}
	return true
}

// StarterNumbers returns the shirt numbers listed in the starters section.
func (f ExternalLineupFeed) StarterNumbers() map[int]struct{} {
	out := make(map[int]struct{}, len(f.Starters))
	for _, row := range f.Starters {
		out[row.Number] = struct{}{}
	}
	return out
}
