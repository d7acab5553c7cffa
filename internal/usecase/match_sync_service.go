package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/domain/player"
	"github.com/riskibarqy/matchsync/internal/domain/playerstats"
	"github.com/riskibarqy/matchsync/internal/domain/season"
	"github.com/riskibarqy/matchsync/internal/domain/team"
	"github.com/riskibarqy/matchsync/internal/domain/teamstats"
	"github.com/riskibarqy/matchsync/internal/platform/id"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
)

type MatchSyncResult struct {
	Matches      int          `json:"matches"`
	TeamsCreated int          `json:"teams_created"`
	Failed       []FailedItem `json:"failed,omitempty"`
}

type MatchStatsResult struct {
	MatchID        int64        `json:"match_id"`
	TeamRows       int          `json:"team_rows"`
	PlayerRows     int          `json:"player_rows"`
	PlayersCreated int          `json:"players_created"`
	Failed         []FailedItem `json:"failed,omitempty"`
}

var gameTeamStatKeys = map[string]struct{}{
	"possession": {}, "possession_percent": {}, "shot": {}, "shots_on_goal": {}, "shots_off_goal": {},
	"pass": {}, "pass_accuracy": {}, "foul": {}, "yellow_cards": {}, "red_cards": {}, "corner": {}, "offside": {},
}

var gamePlayerStatKeys = map[string]struct{}{
	"shot": {}, "shots_on_goal": {}, "shots_off_goal": {}, "pass": {}, "pass_accuracy": {}, "duel": {},
	"tackle": {}, "corner": {}, "offside": {}, "foul": {}, "yellow_cards": {}, "red_cards": {},
}

type MatchSyncService struct {
	feed        FeedProvider
	matches     match.Repository
	teams       team.Repository
	players     player.Repository
	teamStats   teamstats.Repository
	playerStats playerstats.Repository
	resolver    *Resolver
	gate        seasonGate
	cfg         SyncConfig
	now         func() time.Time
	logger      *logging.Logger
}

func NewMatchSyncService(
	feed FeedProvider,
	matches match.Repository,
	teams team.Repository,
	players player.Repository,
	teamStats teamstats.Repository,
	playerStats playerstats.Repository,
	seasons season.Repository,
	resolver *Resolver,
	cfg SyncConfig,
	logger *logging.Logger,
) *MatchSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchSyncService{
		feed:        feed,
		matches:     matches,
		teams:       teams,
		players:     players,
		teamStats:   teamStats,
		playerStats: playerStats,
		resolver:    resolver,
		gate:        seasonGate{seasons: seasons},
		cfg:         normalizeSyncConfig(cfg),
		now:         time.Now,
		logger:      logger,
	}
}

// SyncMatches upserts the season's games on their upstream id. A regular sync
// writes new matches as created and keeps a stored live or finished status;
// only live tracking finishes a match. Repair derives the status from kickoff
// and scores and overwrites frozen results.
func (s *MatchSyncService) SyncMatches(ctx context.Context, seasonID int64, repair bool) (MatchSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSyncService.SyncMatches", seasonAttr(seasonID))
	defer span.End()

	if seasonID <= 0 {
		return MatchSyncResult{}, fmt.Errorf("%w: season id must be greater than zero", ErrInvalidInput)
	}
	if err := s.gate.check(ctx, seasonID); err != nil {
		return MatchSyncResult{}, err
	}

	games, err := s.feed.FetchGames(ctx, seasonID)
	if err != nil {
		return MatchSyncResult{}, fmt.Errorf("fetch games season_id=%d: %w", seasonID, err)
	}

	var result MatchSyncResult
	teamIDs, created, err := s.resolveGameTeams(ctx, seasonID, games)
	if err != nil {
		return result, err
	}
	result.TeamsCreated = created

	now := s.now()
	items := make([]match.Match, 0, len(games))
	for _, g := range games {
		sotaID, ok := id.NormalizeUUID(g.SotaID)
		if !ok {
			result.Failed = append(result.Failed, FailedItem{Key: g.SotaID, Reason: "invalid game id"})
			continue
		}
		homeID, homeOK := teamIDs[g.HomeTeamID]
		awayID, awayOK := teamIDs[g.AwayTeamID]
		if !homeOK || !awayOK {
			result.Failed = append(result.Failed, FailedItem{Key: sotaID, Reason: "unknown team"})
			continue
		}

		item := match.Match{
			SotaID:      sotaID,
			SeasonID:    seasonID,
			Tour:        g.Tour,
			Date:        g.Date,
			KickoffTime: g.KickoffTime,
			HomeTeamID:  int64Ptr(homeID),
			AwayTeamID:  int64Ptr(awayID),
			HomeScore:   g.HomeScore,
			AwayScore:   g.AwayScore,
			HasStats:    g.HasStats,
			Stadium:     g.Stadium,
			Visitors:    g.Visitors,
		}
		item.Status = match.StatusCreated
		if repair {
			kickoff, _ := item.KickoffAt(s.cfg.Location)
			item.Status = match.DeriveStatus(kickoff, g.HomeScore, g.AwayScore, now)
		}
		items = append(items, item)
	}

	if result.Matches, err = s.matches.UpsertFromFeed(ctx, items, repair); err != nil {
		return result, fmt.Errorf("upsert matches: %w", err)
	}
	s.logger.InfoContext(ctx, "matches synced", "season_id", seasonID, "count", result.Matches, "failed", len(result.Failed))
	return result, nil
}

// resolveGameTeams maps upstream team ids of games to local ids. Teams that
// are unknown locally are created from the season's team list.
func (s *MatchSyncService) resolveGameTeams(ctx context.Context, seasonID int64, games []ExternalGame) (map[int64]int64, int, error) {
	sotaIDs := make([]int64, 0, len(games)*2)
	for _, g := range games {
		sotaIDs = append(sotaIDs, g.HomeTeamID, g.AwayTeamID)
	}
	sotaIDs = uniqueIDs(sotaIDs)

	known, err := s.teams.ListBySotaIDs(ctx, sotaIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("list teams by sota id: %w", err)
	}
	out := make(map[int64]int64, len(sotaIDs))
	for _, t := range known {
		if t.SotaID != nil {
			out[*t.SotaID] = t.ID
		}
	}

	missing := make(map[int64]struct{})
	for _, sotaID := range sotaIDs {
		if _, ok := out[sotaID]; !ok && sotaID > 0 {
			missing[sotaID] = struct{}{}
		}
	}
	if len(missing) == 0 {
		return out, 0, nil
	}

	seasonTeams, err := s.feed.FetchTeams(ctx, FeedLocales[0], seasonID)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch season teams season_id=%d: %w", seasonID, err)
	}
	toCreate := make([]ExternalTeam, 0, len(missing))
	for _, t := range seasonTeams {
		if _, ok := missing[t.ID]; ok {
			toCreate = append(toCreate, t)
		}
	}
	created, err := ensureTeams(ctx, s.teams, toCreate)
	if err != nil {
		return nil, 0, err
	}
	for sotaID, localID := range created {
		out[sotaID] = localID
	}
	return out, len(toCreate), nil
}

// SyncMatchStats stores per-team and per-player numbers of one match and
// flags the match as having stats.
func (s *MatchSyncService) SyncMatchStats(ctx context.Context, matchID int64) (MatchStatsResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSyncService.SyncMatchStats", matchAttr(matchID))
	defer span.End()

	result := MatchStatsResult{MatchID: matchID}
	m, err := loadSyncableMatch(ctx, s.matches, s.gate, matchID)
	if err != nil {
		return result, err
	}

	teamRows, err := s.feed.FetchGameTeamStats(ctx, m.SotaID)
	if err != nil {
		return result, fmt.Errorf("fetch game team stats match_id=%d: %w", matchID, err)
	}
	playerRows, err := s.feed.FetchGamePlayerStats(ctx, m.SotaID)
	if err != nil {
		return result, fmt.Errorf("fetch game player stats match_id=%d: %w", matchID, err)
	}

	matchTeams, err := s.teams.GetByIDs(ctx, m.TeamIDs())
	if err != nil {
		return result, fmt.Errorf("get match teams: %w", err)
	}
	resolveTeam := func(sotaID int64, name string) (int64, bool) {
		for _, t := range matchTeams {
			if sotaID > 0 && t.SotaID != nil && *t.SotaID == sotaID {
				return t.ID, true
			}
		}
		res := s.resolver.ResolveTeam(name, matchTeams)
		return res.TeamID, res.Resolved
	}

	teamItems := make([]teamstats.MatchStats, 0, len(teamRows))
	for _, row := range teamRows {
		teamID, ok := resolveTeam(row.TeamID, row.Name)
		if !ok {
			result.Failed = append(result.Failed, FailedItem{Key: fmt.Sprintf("team:%d:%s", row.TeamID, row.Name), Reason: "team unresolved"})
			continue
		}
		teamItems = append(teamItems, mapGameTeamStats(matchID, teamID, row.Stats))
	}

	playerItems := make([]playerstats.MatchStats, 0, len(playerRows))
	for _, row := range playerRows {
		teamID, ok := resolveTeam(row.TeamID, row.TeamName)
		if !ok {
			result.Failed = append(result.Failed, FailedItem{Key: "player:" + row.SotaID, Reason: "team unresolved"})
			continue
		}
		sotaID, ok := id.NormalizeUUID(row.SotaID)
		if !ok {
			result.Failed = append(result.Failed, FailedItem{Key: "player:" + row.SotaID, Reason: "invalid player id"})
			continue
		}
		res, err := s.resolver.ResolvePlayer(ctx, PlayerQuery{SotaID: sotaID, FirstName: row.FirstName, LastName: row.LastName}, nil, true)
		if err != nil {
			return result, err
		}
		if res.Created {
			result.PlayersCreated++
		}
		item := mapGamePlayerStats(matchID, res.PlayerID, teamID, row.Stats)
		item.MinutesPlayed = row.MinutesPlayed
		item.Started = row.Started
		item.Position = row.Position
		playerItems = append(playerItems, item)
	}

	if result.TeamRows, err = s.teamStats.UpsertMatchStats(ctx, teamItems); err != nil {
		return result, fmt.Errorf("upsert match team stats: %w", err)
	}
	if result.PlayerRows, err = s.playerStats.UpsertMatchStats(ctx, playerItems); err != nil {
		return result, fmt.Errorf("upsert match player stats: %w", err)
	}
	if result.TeamRows > 0 || result.PlayerRows > 0 {
		if err := s.matches.MarkHasStats(ctx, matchID); err != nil {
			return result, fmt.Errorf("mark match has stats: %w", err)
		}
	}
	return result, nil
}

// loadSyncableMatch returns a match that has an upstream id and belongs to a
// season with sync enabled.
func loadSyncableMatch(ctx context.Context, matches match.Repository, gate seasonGate, matchID int64) (match.Match, error) {
	if matchID <= 0 {
		return match.Match{}, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}
	m, ok, err := matches.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !ok {
		return match.Match{}, fmt.Errorf("%w: match_id=%d", ErrNotFound, matchID)
	}
	if m.SotaID == "" {
		return match.Match{}, fmt.Errorf("%w: match_id=%d has no upstream id", ErrInvalidInput, matchID)
	}
	if err := gate.check(ctx, m.SeasonID); err != nil {
		return match.Match{}, err
	}
	return m, nil
}

func mapGameTeamStats(matchID, teamID int64, stats ExternalStats) teamstats.MatchStats {
	return teamstats.MatchStats{
		MatchID:           matchID,
		TeamID:            teamID,
		Possession:        stats.IntPtr("possession"),
		PossessionPercent: stats.FloatPtr("possession_percent"),
		Shots:             stats.IntPtr("shot"),
		ShotsOnGoal:       stats.IntPtr("shots_on_goal"),
		ShotsOffGoal:      stats.IntPtr("shots_off_goal"),
		Passes:            stats.IntPtr("pass"),
		PassAccuracy:      stats.FloatPtr("pass_accuracy"),
		Fouls:             stats.IntPtr("foul"),
		YellowCards:       stats.IntPtr("yellow_cards"),
		RedCards:          stats.IntPtr("red_cards"),
		Corners:           stats.IntPtr("corner"),
		Offsides:          stats.IntPtr("offside"),
		Extra:             stats.Extra(gameTeamStatKeys),
	}
}

func mapGamePlayerStats(matchID, playerID, teamID int64, stats ExternalStats) playerstats.MatchStats {
	return playerstats.MatchStats{
		MatchID:      matchID,
		PlayerID:     playerID,
		TeamID:       teamID,
		Shots:        stats.IntOrZero("shot"),
		ShotsOnGoal:  stats.IntOrZero("shots_on_goal"),
		ShotsOffGoal: stats.IntOrZero("shots_off_goal"),
		Passes:       stats.IntOrZero("pass"),
		PassAccuracy: stats.FloatPtr("pass_accuracy"),
		Duels:        stats.IntOrZero("duel"),
		Tackles:      stats.IntOrZero("tackle"),
		Corners:      stats.IntOrZero("corner"),
		Offsides:     stats.IntOrZero("offside"),
		Fouls:        stats.IntOrZero("foul"),
		YellowCards:  stats.IntOrZero("yellow_cards"),
		RedCards:     stats.IntOrZero("red_cards"),
		Extra:        stats.Extra(gamePlayerStatKeys),
	}
}
