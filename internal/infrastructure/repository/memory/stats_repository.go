package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/riskibarqy/matchsync/internal/domain/playerstats"
	"github.com/riskibarqy/matchsync/internal/domain/standing"
	"github.com/riskibarqy/matchsync/internal/domain/teamstats"
)

type pairKey struct {
	a int64
	b int64
}

type StandingRepository struct {
	mu   sync.RWMutex
	rows map[int64]map[int64]standing.Row
}

func NewStandingRepository() *StandingRepository {
	return &StandingRepository{rows: make(map[int64]map[int64]standing.Row)}
}

func (r *StandingRepository) UpsertSeason(_ context.Context, seasonID int64, rows []standing.Row) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	table, ok := r.rows[seasonID]
	if !ok {
		table = make(map[int64]standing.Row, len(rows))
		r.rows[seasonID] = table
	}
	for _, row := range rows {
		row.SeasonID = seasonID
		table[row.TeamID] = row
	}
	return len(rows), nil
}

func (r *StandingRepository) ListTeamIDs(_ context.Context, seasonID int64) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedKeys(r.rows[seasonID]), nil
}

// Row returns the stored line of a team, mostly for assertions.
func (r *StandingRepository) Row(seasonID, teamID int64) (standing.Row, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[seasonID][teamID]
	return row, ok
}

type TeamStatsRepository struct {
	mu     sync.RWMutex
	season map[pairKey]teamstats.SeasonStats
	match  map[pairKey]teamstats.MatchStats
}

func NewTeamStatsRepository() *TeamStatsRepository {
	return &TeamStatsRepository{
		season: make(map[pairKey]teamstats.SeasonStats),
		match:  make(map[pairKey]teamstats.MatchStats),
	}
}

func (r *TeamStatsRepository) UpsertSeasonStats(_ context.Context, items []teamstats.SeasonStats) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		item.Extra = maps.Clone(item.Extra)
		r.season[pairKey{a: item.TeamID, b: item.SeasonID}] = item
	}
	return len(items), nil
}

func (r *TeamStatsRepository) UpsertMatchStats(_ context.Context, items []teamstats.MatchStats) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		item.Extra = maps.Clone(item.Extra)
		r.match[pairKey{a: item.MatchID, b: item.TeamID}] = item
	}
	return len(items), nil
}

func (r *TeamStatsRepository) SeasonStats(teamID, seasonID int64) (teamstats.SeasonStats, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.season[pairKey{a: teamID, b: seasonID}]
	return item, ok
}

func (r *TeamStatsRepository) MatchStats(matchID, teamID int64) (teamstats.MatchStats, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.match[pairKey{a: matchID, b: teamID}]
	return item, ok
}

type PlayerStatsRepository struct {
	mu     sync.RWMutex
	season map[pairKey]playerstats.SeasonStats
	match  map[pairKey]playerstats.MatchStats
}

func NewPlayerStatsRepository() *PlayerStatsRepository {
	return &PlayerStatsRepository{
		season: make(map[pairKey]playerstats.SeasonStats),
		match:  make(map[pairKey]playerstats.MatchStats),
	}
}

func (r *PlayerStatsRepository) UpsertSeasonStats(_ context.Context, items []playerstats.SeasonStats) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		item.Extra = maps.Clone(item.Extra)
		r.season[pairKey{a: item.PlayerID, b: item.SeasonID}] = item
	}
	return len(items), nil
}

func (r *PlayerStatsRepository) UpsertMatchStats(_ context.Context, items []playerstats.MatchStats) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		item.Extra = maps.Clone(item.Extra)
		r.match[pairKey{a: item.MatchID, b: item.PlayerID}] = item
	}
	return len(items), nil
}

func (r *PlayerStatsRepository) SeasonStats(playerID, seasonID int64) (playerstats.SeasonStats, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.season[pairKey{a: playerID, b: seasonID}]
	return item, ok
}

func (r *PlayerStatsRepository) MatchStats(matchID, playerID int64) (playerstats.MatchStats, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.match[pairKey{a: matchID, b: playerID}]
	return item, ok
}
