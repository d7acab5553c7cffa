package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/riskibarqy/matchsync/internal/domain/season"
	"github.com/riskibarqy/matchsync/internal/domain/standing"
	"github.com/riskibarqy/matchsync/internal/domain/team"
	"github.com/riskibarqy/matchsync/internal/domain/teamstats"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
)

var teamSeasonStatKeys = map[string]struct{}{
	"games_played": {}, "win": {}, "draw": {}, "match_loss": {}, "goal": {}, "goals_conceded": {},
	"points": {}, "xg": {}, "shot": {}, "shots_on_goal": {}, "possession_percent_average": {},
	"pass": {}, "pass_ratio": {}, "foul": {}, "yellow_cards": {}, "red_cards": {}, "corner": {}, "offside": {},
}

// StatsSyncService syncs the score table and team season statistics.
type StatsSyncService struct {
	feed       FeedProvider
	standings  standing.Repository
	teams      team.Repository
	teamStats  teamstats.Repository
	teamSource *SeasonTeamSource
	gate       seasonGate
	logger     *logging.Logger
}

func NewStatsSyncService(
	feed FeedProvider,
	standings standing.Repository,
	teams team.Repository,
	teamStats teamstats.Repository,
	seasons season.Repository,
	teamSource *SeasonTeamSource,
	logger *logging.Logger,
) *StatsSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsSyncService{
		feed:       feed,
		standings:  standings,
		teams:      teams,
		teamStats:  teamStats,
		teamSource: teamSource,
		gate:       seasonGate{seasons: seasons},
		logger:     logger,
	}
}

func (s *StatsSyncService) SyncScoreTable(ctx context.Context, seasonID int64) (StatsSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsSyncService.SyncScoreTable", seasonAttr(seasonID))
	defer span.End()

	if seasonID <= 0 {
		return StatsSyncResult{}, fmt.Errorf("%w: season id must be greater than zero", ErrInvalidInput)
	}
	if err := s.gate.check(ctx, seasonID); err != nil {
		return StatsSyncResult{}, err
	}

	table, err := s.feed.FetchScoreTable(ctx, seasonID)
	if err != nil {
		return StatsSyncResult{}, fmt.Errorf("fetch score table season_id=%d: %w", seasonID, err)
	}

	sotaIDs := make([]int64, 0, len(table))
	for _, row := range table {
		sotaIDs = append(sotaIDs, row.TeamID)
	}
	known, err := s.teams.ListBySotaIDs(ctx, sotaIDs)
	if err != nil {
		return StatsSyncResult{}, fmt.Errorf("list teams by sota id: %w", err)
	}
	teamIDs := make(map[int64]int64, len(known))
	for _, t := range known {
		if t.SotaID != nil {
			teamIDs[*t.SotaID] = t.ID
		}
	}

	var result StatsSyncResult
	rows := make([]standing.Row, 0, len(table))
	for _, src := range table {
		teamID, ok := teamIDs[src.TeamID]
		if !ok {
			result.Failed = append(result.Failed, FailedItem{Key: strconv.FormatInt(src.TeamID, 10), Reason: "unknown team"})
			continue
		}
		rows = append(rows, mapStandingRow(seasonID, teamID, src))
	}

	if result.Synced, err = s.standings.UpsertSeason(ctx, seasonID, rows); err != nil {
		return result, fmt.Errorf("upsert score table: %w", err)
	}
	return result, nil
}

// mapStandingRow prefers the difference computed from parsed goals and falls
// back to the upstream value when no goals were reported.
func mapStandingRow(seasonID, teamID int64, src ExternalStanding) standing.Row {
	row := standing.Row{
		SeasonID:      seasonID,
		TeamID:        teamID,
		Position:      src.Position,
		GamesPlayed:   src.GamesPlayed,
		Wins:          src.Wins,
		Draws:         src.Draws,
		Losses:        src.Losses,
		GoalsScored:   src.GoalsScored,
		GoalsConceded: src.GoalsConceded,
		Points:        src.Points,
		Form:          src.Form,
	}
	switch {
	case src.GoalsScored != 0 || src.GoalsConceded != 0:
		row.GoalDifference = src.GoalsScored - src.GoalsConceded
	case src.GoalDifference != nil:
		row.GoalDifference = *src.GoalDifference
	}
	return row
}

// SyncTeamSeasonStats fetches season stats for the union of the season's
// candidate teams.
func (s *StatsSyncService) SyncTeamSeasonStats(ctx context.Context, seasonID int64) (StatsSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsSyncService.SyncTeamSeasonStats", seasonAttr(seasonID))
	defer span.End()

	if seasonID <= 0 {
		return StatsSyncResult{}, fmt.Errorf("%w: season id must be greater than zero", ErrInvalidInput)
	}
	if err := s.gate.check(ctx, seasonID); err != nil {
		return StatsSyncResult{}, err
	}

	teamIDs, err := s.teamSource.TeamIDs(ctx, seasonID)
	if err != nil {
		return StatsSyncResult{}, err
	}
	teams, err := s.teams.GetByIDs(ctx, teamIDs)
	if err != nil {
		return StatsSyncResult{}, fmt.Errorf("get teams: %w", err)
	}

	var result StatsSyncResult
	items := make([]teamstats.SeasonStats, 0, len(teams))
	for _, t := range teams {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		key := strconv.FormatInt(t.ID, 10)
		if t.SotaID == nil {
			result.Failed = append(result.Failed, FailedItem{Key: key, Reason: "team has no upstream id"})
			continue
		}
		stats, err := s.feed.FetchTeamSeasonStats(ctx, *t.SotaID, seasonID)
		if err != nil {
			s.logger.WarnContext(ctx, "team season stats fetch failed", "team_id", t.ID, "season_id", seasonID, "error", err)
			result.Failed = append(result.Failed, FailedItem{Key: key, Reason: err.Error()})
			continue
		}
		if len(stats) == 0 {
			continue
		}
		items = append(items, mapTeamSeasonStats(t.ID, seasonID, stats))
	}

	if result.Synced, err = s.teamStats.UpsertSeasonStats(ctx, items); err != nil {
		return result, fmt.Errorf("upsert team season stats: %w", err)
	}
	return result, nil
}

func mapTeamSeasonStats(teamID, seasonID int64, stats ExternalStats) teamstats.SeasonStats {
	return teamstats.SeasonStats{
		TeamID:        teamID,
		SeasonID:      seasonID,
		GamesPlayed:   stats.IntOrZero("games_played"),
		Wins:          stats.IntOrZero("win"),
		Draws:         stats.IntOrZero("draw"),
		Losses:        stats.IntOrZero("match_loss"),
		Goals:         stats.IntOrZero("goal"),
		GoalsConceded: stats.IntOrZero("goals_conceded"),
		Points:        stats.IntOrZero("points"),
		XG:            stats.FloatPtr("xg"),
		Shots:         stats.IntOrZero("shot"),
		ShotsOnGoal:   stats.IntOrZero("shots_on_goal"),
		Possession:    stats.FloatPtr("possession_percent_average"),
		Passes:        stats.IntOrZero("pass"),
		PassRatio:     stats.FloatPtr("pass_ratio"),
		Fouls:         stats.IntOrZero("foul"),
		YellowCards:   stats.IntOrZero("yellow_cards"),
		RedCards:      stats.IntOrZero("red_cards"),
		Corners:       stats.IntOrZero("corner"),
		Offsides:      stats.IntOrZero("offside"),
		Extra:         stats.Extra(teamSeasonStatKeys),
	}
}
