package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/riskibarqy/matchsync/internal/domain/player"
	"github.com/riskibarqy/matchsync/internal/domain/playerstats"
	"github.com/riskibarqy/matchsync/internal/domain/season"
	"github.com/riskibarqy/matchsync/internal/domain/team"
	"github.com/riskibarqy/matchsync/internal/platform/id"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
)

type PlayerSyncResult struct {
	Players     int          `json:"players"`
	Memberships int          `json:"memberships"`
	Failed      []FailedItem `json:"failed,omitempty"`
}

type StatsSyncResult struct {
	Synced int          `json:"synced"`
	Failed []FailedItem `json:"failed,omitempty"`
}

var playerSeasonStatKeys = map[string]struct{}{
	"games_played":        {},
	"games_starting":      {},
	"time_on_field_total": {},
	"goal":                {},
	"goal_pass":           {},
	"owngoal":             {},
	"shot":                {},
	"shots_on_goal":       {},
	"pass":                {},
	"pass_ratio":          {},
	"xg":                  {},
	"yellow_cards":        {},
	"red_cards":           {},
}

type PlayerSyncService struct {
	feed        FeedProvider
	players     player.Repository
	teams       team.Repository
	playerStats playerstats.Repository
	teamSource  *SeasonTeamSource
	gate        seasonGate
	logger      *logging.Logger
}

func NewPlayerSyncService(
	feed FeedProvider,
	players player.Repository,
	teams team.Repository,
	playerStats playerstats.Repository,
	seasons season.Repository,
	teamSource *SeasonTeamSource,
	logger *logging.Logger,
) *PlayerSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PlayerSyncService{
		feed:        feed,
		players:     players,
		teams:       teams,
		playerStats: playerStats,
		teamSource:  teamSource,
		gate:        seasonGate{seasons: seasons},
		logger:      logger,
	}
}

// SyncPlayers upserts the season's players on their upstream id with names in
// every locale, and the team memberships the feed reports.
func (s *PlayerSyncService) SyncPlayers(ctx context.Context, seasonID int64) (PlayerSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerSyncService.SyncPlayers", seasonAttr(seasonID))
	defer span.End()

	if seasonID <= 0 {
		return PlayerSyncResult{}, fmt.Errorf("%w: season id must be greater than zero", ErrInvalidInput)
	}
	if err := s.gate.check(ctx, seasonID); err != nil {
		return PlayerSyncResult{}, err
	}

	byLocale, err := fetchLocalized(ctx, s.logger, "players", func(ctx context.Context, locale Locale) ([]ExternalPlayer, error) {
		return s.feed.FetchPlayers(ctx, locale, seasonID)
	})
	if err != nil {
		return PlayerSyncResult{}, err
	}

	normalize := func(p ExternalPlayer) string {
		v, _ := id.NormalizeUUID(p.SotaID)
		return v
	}
	kz := indexBy(byLocale[LocaleKZ], normalize)
	en := indexBy(byLocale[LocaleEN], normalize)

	var result PlayerSyncResult
	items := make([]player.Player, 0, len(byLocale[LocaleRU]))
	memberships := make(map[string]ExternalPlayer)
	for _, src := range byLocale[LocaleRU] {
		sotaID, ok := id.NormalizeUUID(src.SotaID)
		if !ok {
			result.Failed = append(result.Failed, FailedItem{Key: src.SotaID, Reason: "invalid player id"})
			continue
		}
		items = append(items, player.Player{
			SotaID:      sotaID,
			FirstName:   src.FirstName,
			LastName:    src.LastName,
			FirstNameKZ: kz[sotaID].FirstName,
			LastNameKZ:  kz[sotaID].LastName,
			FirstNameEN: en[sotaID].FirstName,
			LastNameEN:  en[sotaID].LastName,
			Birthday:    src.Birthday,
			PlayerType:  src.PlayerType,
			TopRole:     src.TopRole,
			TopRoleEN:   en[sotaID].TopRole,
		})
		if src.TeamID > 0 {
			memberships[sotaID] = src
		}
	}

	if result.Players, err = s.players.UpsertFromFeed(ctx, items); err != nil {
		return result, fmt.Errorf("upsert players: %w", err)
	}
	if len(memberships) == 0 {
		return result, nil
	}

	links, err := s.buildMemberships(ctx, seasonID, memberships)
	if err != nil {
		return result, err
	}
	if result.Memberships, err = s.players.UpsertMemberships(ctx, links); err != nil {
		return result, fmt.Errorf("upsert player memberships: %w", err)
	}
	return result, nil
}

func (s *PlayerSyncService) buildMemberships(ctx context.Context, seasonID int64, bySotaID map[string]ExternalPlayer) ([]player.Membership, error) {
	sotaIDs := make([]string, 0, len(bySotaID))
	teamSotaIDs := make([]int64, 0, len(bySotaID))
	for sotaID, p := range bySotaID {
		sotaIDs = append(sotaIDs, sotaID)
		teamSotaIDs = append(teamSotaIDs, p.TeamID)
	}

	stored, err := s.players.ListBySotaIDs(ctx, sotaIDs)
	if err != nil {
		return nil, fmt.Errorf("list players by sota id: %w", err)
	}
	teams, err := s.teams.ListBySotaIDs(ctx, uniqueIDs(teamSotaIDs))
	if err != nil {
		return nil, fmt.Errorf("list teams by sota id: %w", err)
	}
	teamIDs := make(map[int64]int64, len(teams))
	for _, t := range teams {
		if t.SotaID != nil {
			teamIDs[*t.SotaID] = t.ID
		}
	}

	out := make([]player.Membership, 0, len(stored))
	for _, p := range stored {
		src := bySotaID[p.SotaID]
		teamID, ok := teamIDs[src.TeamID]
		if !ok {
			continue
		}
		out = append(out, player.Membership{PlayerID: p.ID, TeamID: teamID, SeasonID: seasonID, Number: src.Number})
	}
	return out, nil
}

// SyncPlayerSeasonStats fetches season stats for every player belonging to
// one of the season's candidate teams.
func (s *PlayerSyncService) SyncPlayerSeasonStats(ctx context.Context, seasonID int64) (StatsSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerSyncService.SyncPlayerSeasonStats", seasonAttr(seasonID))
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
	candidateTeams := make(map[int64]struct{}, len(teamIDs))
	for _, teamID := range teamIDs {
		candidateTeams[teamID] = struct{}{}
	}

	memberships, err := s.players.ListSeasonMemberships(ctx, seasonID)
	if err != nil {
		return StatsSyncResult{}, fmt.Errorf("list season memberships: %w", err)
	}
	teamByPlayer := make(map[int64]int64, len(memberships))
	playerIDs := make([]int64, 0, len(memberships))
	for _, m := range memberships {
		if _, ok := candidateTeams[m.TeamID]; !ok {
			continue
		}
		if _, seen := teamByPlayer[m.PlayerID]; !seen {
			playerIDs = append(playerIDs, m.PlayerID)
		}
		teamByPlayer[m.PlayerID] = m.TeamID
	}
	if len(playerIDs) == 0 {
		return StatsSyncResult{}, nil
	}

	players, err := s.players.ListByIDs(ctx, playerIDs)
	if err != nil {
		return StatsSyncResult{}, fmt.Errorf("list players: %w", err)
	}

	var result StatsSyncResult
	items := make([]playerstats.SeasonStats, 0, len(players))
	for _, p := range players {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		key := strconv.FormatInt(p.ID, 10)
		if p.SotaID == "" {
			result.Failed = append(result.Failed, FailedItem{Key: key, Reason: "player has no upstream id"})
			continue
		}
		stats, err := s.feed.FetchPlayerSeasonStats(ctx, p.SotaID, seasonID)
		if err != nil {
			s.logger.WarnContext(ctx, "player season stats fetch failed", "player_id", p.ID, "season_id", seasonID, "error", err)
			result.Failed = append(result.Failed, FailedItem{Key: key, Reason: err.Error()})
			continue
		}
		if len(stats.Stats) == 0 {
			continue
		}
		items = append(items, mapPlayerSeasonStats(p.ID, seasonID, int64Ptr(teamByPlayer[p.ID]), stats.Stats))
	}

	if result.Synced, err = s.playerStats.UpsertSeasonStats(ctx, items); err != nil {
		return result, fmt.Errorf("upsert player season stats: %w", err)
	}
	return result, nil
}

func mapPlayerSeasonStats(playerID, seasonID int64, teamID *int64, stats ExternalStats) playerstats.SeasonStats {
	return playerstats.SeasonStats{
		PlayerID:      playerID,
		SeasonID:      seasonID,
		TeamID:        teamID,
		GamesPlayed:   stats.IntOrZero("games_played"),
		GamesStarting: stats.IntOrZero("games_starting"),
		MinutesPlayed: stats.IntOrZero("time_on_field_total"),
		Goals:         stats.IntOrZero("goal"),
		Assists:       stats.IntOrZero("goal_pass"),
		OwnGoals:      stats.IntOrZero("owngoal"),
		Shots:         stats.IntOrZero("shot"),
		ShotsOnGoal:   stats.IntOrZero("shots_on_goal"),
		Passes:        stats.IntOrZero("pass"),
		PassRatio:     stats.FloatPtr("pass_ratio"),
		XG:            stats.FloatPtr("xg"),
		YellowCards:   stats.IntOrZero("yellow_cards"),
		RedCards:      stats.IntOrZero("red_cards"),
		Extra:         stats.Extra(playerSeasonStatKeys),
	}
}
