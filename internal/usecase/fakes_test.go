package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/lineup"
	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/domain/player"
	"github.com/riskibarqy/matchsync/internal/domain/season"
	"github.com/riskibarqy/matchsync/internal/domain/team"
	"github.com/riskibarqy/matchsync/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

const (
	enabledSeasonID  int64 = 61
	disabledSeasonID int64 = 62
	homeSotaID       int64 = 101
	awaySotaID       int64 = 102
)

// fakeFeed serves canned REST responses. Methods a test does not stub panic
// through the nil embedded interface.
type fakeFeed struct {
	usecase.FeedProvider

	mu          sync.Mutex
	tournaments []usecase.ExternalTournament
	seasons     []usecase.ExternalSeason
	teams       map[usecase.Locale][]usecase.ExternalTeam
	seasonTeams []usecase.ExternalTeam
	games       []usecase.ExternalGame
	preGame     usecase.ExternalPreGameLineup
	players     map[usecase.Locale][]usecase.ExternalPlayer
	scoreTable  []usecase.ExternalStanding
	teamStats   map[int64]usecase.ExternalStats
	playerStats map[string]usecase.ExternalStats
	failLocale  usecase.Locale
	calls       map[string]int
}

func (f *fakeFeed) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeFeed) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeFeed) localeErr(locale usecase.Locale) error {
	if f.failLocale != "" && locale == f.failLocale {
		return fmt.Errorf("%w: locale %s", usecase.ErrFetchFailed, locale)
	}
	return nil
}

func (f *fakeFeed) FetchTournaments(_ context.Context, locale usecase.Locale) ([]usecase.ExternalTournament, error) {
	f.record("tournaments")
	if err := f.localeErr(locale); err != nil {
		return nil, err
	}
	return f.tournaments, nil
}

func (f *fakeFeed) FetchSeasons(_ context.Context, locale usecase.Locale) ([]usecase.ExternalSeason, error) {
	f.record("seasons")
	if err := f.localeErr(locale); err != nil {
		return nil, err
	}
	return f.seasons, nil
}

func (f *fakeFeed) FetchTeams(_ context.Context, locale usecase.Locale, seasonID int64) ([]usecase.ExternalTeam, error) {
	f.record("teams")
	if err := f.localeErr(locale); err != nil {
		return nil, err
	}
	if seasonID > 0 {
		return f.seasonTeams, nil
	}
	return f.teams[locale], nil
}

func (f *fakeFeed) FetchGames(_ context.Context, _ int64) ([]usecase.ExternalGame, error) {
	f.record("games")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]usecase.ExternalGame(nil), f.games...), nil
}

func (f *fakeFeed) FetchPreGameLineup(_ context.Context, _ string) (usecase.ExternalPreGameLineup, error) {
	f.record("pregame")
	return f.preGame, nil
}

func (f *fakeFeed) FetchPlayers(_ context.Context, locale usecase.Locale, _ int64) ([]usecase.ExternalPlayer, error) {
	f.record("players")
	if err := f.localeErr(locale); err != nil {
		return nil, err
	}
	return f.players[locale], nil
}

func (f *fakeFeed) FetchScoreTable(_ context.Context, _ int64) ([]usecase.ExternalStanding, error) {
	f.record("score_table")
	return f.scoreTable, nil
}

func (f *fakeFeed) FetchTeamSeasonStats(_ context.Context, teamSotaID, _ int64) (usecase.ExternalStats, error) {
	f.record("team_stats")
	stats, ok := f.teamStats[teamSotaID]
	if !ok {
		return nil, fmt.Errorf("%w: team %d", usecase.ErrNotFound, teamSotaID)
	}
	return stats, nil
}

func (f *fakeFeed) FetchPlayerSeasonStats(_ context.Context, playerSotaID string, _ int64) (usecase.ExternalPlayerSeasonStats, error) {
	f.record("player_stats")
	stats, ok := f.playerStats[playerSotaID]
	if !ok {
		return usecase.ExternalPlayerSeasonStats{}, fmt.Errorf("%w: player %s", usecase.ErrNotFound, playerSotaID)
	}
	return usecase.ExternalPlayerSeasonStats{Stats: stats}, nil
}

// fakeLive serves the live documents. Documents of byGame win over lineups.
// A side without a document is reported as not found.
type fakeLive struct {
	mu         sync.Mutex
	lineups    map[lineup.Side]usecase.ExternalLineupFeed
	byGame     map[string]map[lineup.Side]usecase.ExternalLineupFeed
	events     []usecase.ExternalLiveEvent
	eventPolls int
}

func (f *fakeLive) FetchLiveLineup(_ context.Context, gameSotaID string, side lineup.Side) (usecase.ExternalLineupFeed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if docs, ok := f.byGame[gameSotaID]; ok {
		feed, ok := docs[side]
		if !ok {
			return usecase.ExternalLineupFeed{}, fmt.Errorf("%w: %s_%s", usecase.ErrNotFound, gameSotaID, side)
		}
		return feed, nil
	}
	feed, ok := f.lineups[side]
	if !ok {
		return usecase.ExternalLineupFeed{}, fmt.Errorf("%w: %s_%s", usecase.ErrNotFound, gameSotaID, side)
	}
	return feed, nil
}

func (f *fakeLive) FetchLiveEvents(_ context.Context, _ string) ([]usecase.ExternalLiveEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eventPolls++
	return append([]usecase.ExternalLiveEvent(nil), f.events...), nil
}

func (f *fakeLive) polls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.eventPolls
}

// syncFixture is a memory store with season 61 enabled, season 62 disabled
// and two teams.
type syncFixture struct {
	store  *memory.Store
	homeID int64
	awayID int64
}

func newSyncFixture(t *testing.T) syncFixture {
	t.Helper()

	seasons := append(memory.SeedSeasons(enabledSeasonID), season.Season{ID: disabledSeasonID})
	store := memory.NewStore(seasons...)
	teams, err := store.Teams.UpsertFromFeed(context.Background(), []team.Team{
		{SotaID: int64Ptr(homeSotaID), Name: "Кайрат", NameEN: "Kairat"},
		{SotaID: int64Ptr(awaySotaID), Name: "Астана", NameEN: "Astana"},
	})
	if err != nil {
		t.Fatalf("seed teams: %v", err)
	}
	return syncFixture{store: store, homeID: teams[0].ID, awayID: teams[1].ID}
}

func (f syncFixture) addMatch(t *testing.T, sotaID string, seasonID int64, status match.Status, kickoff time.Time) match.Match {
	t.Helper()

	ctx := context.Background()
	kickoff = kickoff.UTC()
	item := match.Match{
		SotaID:      sotaID,
		SeasonID:    seasonID,
		Date:        time.Date(kickoff.Year(), kickoff.Month(), kickoff.Day(), 0, 0, 0, 0, time.UTC),
		KickoffTime: kickoff.Format("15:04"),
		Status:      status,
		HomeTeamID:  int64Ptr(f.homeID),
		AwayTeamID:  int64Ptr(f.awayID),
	}
	if _, err := f.store.Matches.UpsertFromFeed(ctx, []match.Match{item}, true); err != nil {
		t.Fatalf("seed match: %v", err)
	}
	stored, ok, err := f.store.Matches.GetBySotaID(ctx, sotaID)
	if err != nil || !ok {
		t.Fatalf("load seeded match: ok=%t err=%v", ok, err)
	}
	return stored
}

func (f syncFixture) addPlayers(t *testing.T, items ...player.Player) []player.Player {
	t.Helper()

	ctx := context.Background()
	if _, err := f.store.Players.UpsertFromFeed(ctx, items); err != nil {
		t.Fatalf("seed players: %v", err)
	}
	sotaIDs := make([]string, 0, len(items))
	for _, p := range items {
		sotaIDs = append(sotaIDs, p.SotaID)
	}
	stored, err := f.store.Players.ListBySotaIDs(ctx, sotaIDs)
	if err != nil {
		t.Fatalf("load seeded players: %v", err)
	}
	bySotaID := make(map[string]player.Player, len(stored))
	for _, p := range stored {
		bySotaID[p.SotaID] = p
	}
	out := make([]player.Player, 0, len(items))
	for _, p := range items {
		out = append(out, bySotaID[p.SotaID])
	}
	return out
}

func (f syncFixture) resolver() *usecase.Resolver {
	return usecase.NewResolver(f.store.Players, nil)
}

func (f syncFixture) eventService(live usecase.LiveFeed) *usecase.EventSyncService {
	return usecase.NewEventSyncService(
		live, f.store.Matches, f.store.Events, f.store.Lineups, f.store.Players, f.store.Teams,
		f.store.Seasons, f.resolver(), usecase.SyncConfig{Location: time.UTC}, logging.NewNop(),
	)
}

func (f syncFixture) lineupService(feed usecase.FeedProvider, live usecase.LiveFeed) *usecase.LineupSyncService {
	return usecase.NewLineupSyncService(
		feed, live, f.store.Matches, f.store.Lineups, f.store.Players, f.store.Officials,
		f.store.Seasons, f.resolver(), usecase.SyncConfig{Location: time.UTC}, logging.NewNop(),
	)
}

func (f syncFixture) matchService(feed usecase.FeedProvider) *usecase.MatchSyncService {
	return usecase.NewMatchSyncService(
		feed, f.store.Matches, f.store.Teams, f.store.Players, f.store.TeamStats, f.store.PlayerStats,
		f.store.Seasons, f.resolver(), usecase.SyncConfig{Location: time.UTC}, logging.NewNop(),
	)
}

func testUUID(n int) string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
}

func int64Ptr(v int64) *int64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}
