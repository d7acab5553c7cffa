package memory

import "github.com/riskibarqy/matchsync/internal/domain/season"

// Store bundles every in-memory repository so a process can run without a
// database.
type Store struct {
	Seasons     *SeasonRepository
	Teams       *TeamRepository
	Players     *PlayerRepository
	Matches     *MatchRepository
	Lineups     *LineupRepository
	Events      *EventRepository
	Officials   *OfficialRepository
	Standings   *StandingRepository
	TeamStats   *TeamStatsRepository
	PlayerStats *PlayerStatsRepository
}

func NewStore(seasons ...season.Season) *Store {
	matches := NewMatchRepository()
	return &Store{
		Seasons:     NewSeasonRepository(seasons...),
		Teams:       NewTeamRepository(),
		Players:     NewPlayerRepository(),
		Matches:     matches,
		Lineups:     NewLineupRepository(matches),
		Events:      NewEventRepository(),
		Officials:   NewOfficialRepository(),
		Standings:   NewStandingRepository(),
		TeamStats:   NewTeamStatsRepository(),
		PlayerStats: NewPlayerStatsRepository(),
	}
}

// SeedSeasons returns placeholder seasons with sync enabled. Reference sync
// fills in names later without touching the flag.
func SeedSeasons(ids ...int64) []season.Season {
	out := make([]season.Season, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		out = append(out, season.Season{ID: id, SyncEnabled: true})
	}
	return out
}
