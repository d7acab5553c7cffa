package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

func (f syncFixture) playerService(feed usecase.FeedProvider) *usecase.PlayerSyncService {
	teamSource := usecase.NewSeasonTeamSource(f.store.Standings, f.store.Seasons, f.store.Matches)
	return usecase.NewPlayerSyncService(feed, f.store.Players, f.store.Teams, f.store.PlayerStats, f.store.Seasons, teamSource, logging.NewNop())
}

func TestPlayerSyncService_SyncPlayersMergesLocales(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newSyncFixture(t)
	feed := &fakeFeed{players: map[usecase.Locale][]usecase.ExternalPlayer{
		usecase.LocaleRU: {
			{SotaID: testUUID(1), FirstName: "Иван", LastName: "Петров", TopRole: "Нападающий", TeamID: homeSotaID, Number: intPtr(9)},
			{SotaID: testUUID(2), FirstName: "Пётр", LastName: "Иванов", TeamID: 999},
			{SotaID: testUUID(3), FirstName: "Алан", LastName: "Ким", TeamID: homeSotaID},
			{SotaID: "bad", FirstName: "Нет"},
		},
		usecase.LocaleKZ: {{SotaID: testUUID(1), FirstName: "Иван", LastName: "Петров"}},
		usecase.LocaleEN: {{SotaID: testUUID(1), FirstName: "Ivan", LastName: "Petrov", TopRole: "Forward"}},
	}}

	res, err := f.playerService(feed).SyncPlayers(ctx, enabledSeasonID)
	if err != nil {
		t.Fatalf("sync players: %v", err)
	}
	if res.Players != 3 || res.Memberships != 2 || len(res.Failed) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Failed[0].Key != "bad" {
		t.Fatalf("unexpected failed key: got=%s want=%s", res.Failed[0].Key, "bad")
	}

	stored, ok, err := f.store.Players.GetBySotaID(ctx, testUUID(1))
	if err != nil || !ok {
		t.Fatalf("load player: ok=%t err=%v", ok, err)
	}
	if stored.FirstNameEN != "Ivan" || stored.TopRoleEN != "Forward" || stored.LastNameKZ != "Петров" {
		t.Fatalf("unexpected localized names: %+v", stored)
	}

	memberships, err := f.store.Players.ListSeasonMemberships(ctx, enabledSeasonID)
	if err != nil {
		t.Fatalf("list memberships: %v", err)
	}
	for _, m := range memberships {
		if m.TeamID != f.homeID {
			t.Fatalf("unexpected membership team: got=%d want=%d", m.TeamID, f.homeID)
		}
		if m.PlayerID == stored.ID && (m.Number == nil || *m.Number != 9) {
			t.Fatalf("unexpected shirt number: %v", m.Number)
		}
	}
}

func TestPlayerSyncService_SyncPlayerSeasonStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newSyncFixture(t)
	f.addMatch(t, testUUID(50), enabledSeasonID, match.StatusFinished, time.Now().Add(-24*time.Hour))
	feed := &fakeFeed{
		players: map[usecase.Locale][]usecase.ExternalPlayer{
			usecase.LocaleRU: {
				{SotaID: testUUID(1), FirstName: "Иван", LastName: "Петров", TeamID: homeSotaID},
				{SotaID: testUUID(3), FirstName: "Алан", LastName: "Ким", TeamID: awaySotaID},
			},
		},
		playerStats: map[string]usecase.ExternalStats{
			testUUID(1): {"goal": float64(5), "games_played": "12", "xg": 3.4, "dribbles": float64(7)},
		},
	}
	service := f.playerService(feed)
	if _, err := service.SyncPlayers(ctx, enabledSeasonID); err != nil {
		t.Fatalf("sync players: %v", err)
	}

	res, err := service.SyncPlayerSeasonStats(ctx, enabledSeasonID)
	if err != nil {
		t.Fatalf("sync player stats: %v", err)
	}
	if res.Synced != 1 || len(res.Failed) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	p, _, err := f.store.Players.GetBySotaID(ctx, testUUID(1))
	if err != nil {
		t.Fatalf("load player: %v", err)
	}
	stats, ok := f.store.PlayerStats.SeasonStats(p.ID, enabledSeasonID)
	if !ok {
		t.Fatalf("expected stored season stats")
	}
	if stats.Goals != 5 || stats.GamesPlayed != 12 {
		t.Fatalf("unexpected stats: goals=%d games=%d", stats.Goals, stats.GamesPlayed)
	}
	if stats.XG == nil || *stats.XG != 3.4 {
		t.Fatalf("unexpected xg: %v", stats.XG)
	}
	if stats.TeamID == nil || *stats.TeamID != f.homeID {
		t.Fatalf("unexpected team: %v", stats.TeamID)
	}
	if stats.Extra["dribbles"] != float64(7) {
		t.Fatalf("expected unknown metric in extra, got %v", stats.Extra)
	}
}

func TestPlayerSyncService_DisabledSeason(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t)
	feed := &fakeFeed{}
	service := f.playerService(feed)

	if _, err := service.SyncPlayers(context.Background(), disabledSeasonID); !errors.Is(err, usecase.ErrSyncDisabled) {
		t.Fatalf("expected ErrSyncDisabled, got %v", err)
	}
	if _, err := service.SyncPlayerSeasonStats(context.Background(), 0); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if feed.callCount("players") != 0 {
		t.Fatalf("expected no feed calls")
	}
}
