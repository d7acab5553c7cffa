package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/domain/player"
	"github.com/riskibarqy/matchsync/internal/domain/standing"
	"github.com/riskibarqy/matchsync/internal/domain/team"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

// seasonTeamSources seeds one team per source: home only in the standings,
// a participant-only team and a team seen only in a season match. The away
// team of the fixture is in none of them.
func seasonTeamSources(t *testing.T, f syncFixture) (participantID, matchOnlyID int64) {
	t.Helper()

	ctx := context.Background()
	extra, err := f.store.Teams.UpsertFromFeed(ctx, []team.Team{
		{SotaID: int64Ptr(103), Name: "Тобол"},
		{SotaID: int64Ptr(104), Name: "Ордабасы"},
	})
	if err != nil {
		t.Fatalf("seed teams: %v", err)
	}
	participantID, matchOnlyID = extra[0].ID, extra[1].ID

	if _, err := f.store.Standings.UpsertSeason(ctx, enabledSeasonID, []standing.Row{{SeasonID: enabledSeasonID, TeamID: f.homeID, Position: 1}}); err != nil {
		t.Fatalf("seed standings: %v", err)
	}
	if _, err := f.store.Seasons.UpsertParticipants(ctx, enabledSeasonID, []int64{participantID}); err != nil {
		t.Fatalf("seed participants: %v", err)
	}
	if _, err := f.store.Matches.UpsertFromFeed(ctx, []match.Match{{
		SotaID:      testUUID(900),
		SeasonID:    enabledSeasonID,
		Date:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		KickoffTime: "19:00",
		Status:      match.StatusCreated,
		HomeTeamID:  int64Ptr(matchOnlyID),
	}}, false); err != nil {
		t.Fatalf("seed match: %v", err)
	}
	return participantID, matchOnlyID
}

func TestSeasonTeamSource_TeamIDsIsUnionOfSources(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t)
	participantID, matchOnlyID := seasonTeamSources(t, f)
	source := usecase.NewSeasonTeamSource(f.store.Standings, f.store.Seasons, f.store.Matches)

	got, err := source.TeamIDs(context.Background(), enabledSeasonID)
	if err != nil {
		t.Fatalf("team ids: %v", err)
	}
	want := map[int64]bool{f.homeID: true, participantID: true, matchOnlyID: true}
	if len(got) != len(want) {
		t.Fatalf("unexpected team ids: got=%v want=%v", got, want)
	}
	for _, id := range got {
		if !want[id] {
			t.Fatalf("unexpected team id %d in %v", id, got)
		}
	}
}

func TestSeasonTeamSource_FeedsTeamAndPlayerStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newSyncFixture(t)
	participantID, matchOnlyID := seasonTeamSources(t, f)

	stats := usecase.ExternalStats{"win": float64(1)}
	feed := &fakeFeed{
		teamStats: map[int64]usecase.ExternalStats{
			homeSotaID: stats, awaySotaID: stats, 103: stats, 104: stats,
		},
		playerStats: map[string]usecase.ExternalStats{
			testUUID(1): {"goal": float64(2)},
			testUUID(2): {"goal": float64(3)},
			testUUID(3): {"goal": float64(4)},
		},
	}

	teamRes, err := f.statsService(feed).SyncTeamSeasonStats(ctx, enabledSeasonID)
	if err != nil {
		t.Fatalf("sync team stats: %v", err)
	}
	if teamRes.Synced != 3 || len(teamRes.Failed) != 0 || feed.callCount("team_stats") != 3 {
		t.Fatalf("unexpected team stats result: %+v calls=%d", teamRes, feed.callCount("team_stats"))
	}
	for _, teamID := range []int64{participantID, matchOnlyID} {
		if _, ok := f.store.TeamStats.SeasonStats(teamID, enabledSeasonID); !ok {
			t.Fatalf("expected season stats for team %d", teamID)
		}
	}
	if _, ok := f.store.TeamStats.SeasonStats(f.awayID, enabledSeasonID); ok {
		t.Fatalf("did not expect season stats for a team outside every source")
	}

	players := f.addPlayers(t,
		player.Player{SotaID: testUUID(1), LastName: "Participant"},
		player.Player{SotaID: testUUID(2), LastName: "MatchOnly"},
		player.Player{SotaID: testUUID(3), LastName: "Outside"},
	)
	if _, err := f.store.Players.UpsertMemberships(ctx, []player.Membership{
		{PlayerID: players[0].ID, TeamID: participantID, SeasonID: enabledSeasonID},
		{PlayerID: players[1].ID, TeamID: matchOnlyID, SeasonID: enabledSeasonID},
		{PlayerID: players[2].ID, TeamID: f.awayID, SeasonID: enabledSeasonID},
	}); err != nil {
		t.Fatalf("seed memberships: %v", err)
	}

	playerRes, err := f.playerService(feed).SyncPlayerSeasonStats(ctx, enabledSeasonID)
	if err != nil {
		t.Fatalf("sync player stats: %v", err)
	}
	if playerRes.Synced != 2 || feed.callCount("player_stats") != 2 {
		t.Fatalf("unexpected player stats result: %+v calls=%d", playerRes, feed.callCount("player_stats"))
	}
	for _, p := range players[:2] {
		if _, ok := f.store.PlayerStats.SeasonStats(p.ID, enabledSeasonID); !ok {
			t.Fatalf("expected season stats for player %s", p.LastName)
		}
	}
	if _, ok := f.store.PlayerStats.SeasonStats(players[2].ID, enabledSeasonID); ok {
		t.Fatalf("did not expect season stats for a player outside the season teams")
	}
}
