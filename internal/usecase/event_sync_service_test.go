package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/lineup"
	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/domain/matchevent"
	"github.com/riskibarqy/matchsync/internal/domain/player"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

func seedEventLineup(t *testing.T, f syncFixture, matchID int64) []player.Player {
	t.Helper()

	players := f.addPlayers(t,
		player.Player{SotaID: testUUID(11), FirstName: "Иван", LastName: "Петров"},
		player.Player{SotaID: testUUID(12), FirstName: "Сергей", LastName: "Смирнов"},
		player.Player{SotaID: testUUID(21), FirstName: "Алан", LastName: "Ким"},
	)
	err := f.store.Lineups.SaveMatchLineup(context.Background(), lineup.MatchLineupBatch{
		MatchID: matchID,
		Entries: []lineup.Entry{
			{TeamID: f.homeID, PlayerID: players[0].ID, Role: lineup.RoleStarter},
			{TeamID: f.homeID, PlayerID: players[1].ID, Role: lineup.RoleStarter},
			{TeamID: f.awayID, PlayerID: players[2].ID, Role: lineup.RoleStarter},
		},
		HasLineup: true,
	})
	if err != nil {
		t.Fatalf("seed lineup: %v", err)
	}
	return players
}

func liveEventsPayload() []usecase.ExternalLiveEvent {
	return []usecase.ExternalLiveEvent{
		{Half: 1, Minute: 12, Action: "ГОЛ", FirstName1: "Иван", LastName1: "Петров", Team1: "ФК Кайрат"},
		{Half: 1, Minute: 12, Action: "голевой  пас", FirstName1: "Сергей", LastName1: "Смирнов", Team1: "Кайрат", FirstName2: "Иван", LastName2: "Петров"},
		{Half: 2, Minute: 70, Action: "ЖК", FirstName1: "Алан", LastName1: "Ким", Team1: "Astana"},
		{Half: 2, Minute: 80, Action: "VAR CHECK", Team1: "Astana"},
		{Half: 2, Minute: 70, Action: "ЖК", FirstName1: "Алан", LastName1: "Ким", Team1: "Astana"},
	}
}

func TestEventSyncService_SyncMatchEventsIsIdempotentAcrossPolls(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newSyncFixture(t)
	m := f.addMatch(t, testUUID(900), enabledSeasonID, match.StatusLive, time.Now().Add(-time.Hour))
	players := seedEventLineup(t, f, m.ID)

	live := &fakeLive{events: liveEventsPayload()}
	service := f.eventService(live)

	first, err := service.SyncMatchEvents(ctx, m.ID)
	if err != nil {
		t.Fatalf("first poll: %v", err)
	}
	if first.Fetched != 5 || first.Added != 3 || first.Duplicates != 1 || first.Unknown != 1 {
		t.Fatalf("unexpected first poll: %+v", first)
	}

	second, err := service.SyncMatchEvents(ctx, m.ID)
	if err != nil {
		t.Fatalf("second poll: %v", err)
	}
	if second.Added != 0 || second.Duplicates != 4 || second.Unknown != 1 {
		t.Fatalf("unexpected second poll: %+v", second)
	}

	stored, err := f.store.Events.ListByMatch(ctx, m.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("unexpected stored event count: got=%d want=%d", len(stored), 3)
	}

	var goal, card *matchevent.Event
	for i := range stored {
		switch stored[i].Type {
		case matchevent.TypeGoal:
			goal = &stored[i]
		case matchevent.TypeYellowCard:
			card = &stored[i]
		}
	}
	if goal == nil || card == nil {
		t.Fatalf("expected goal and yellow card, got %+v", stored)
	}
	if goal.PlayerID == nil || *goal.PlayerID != players[0].ID {
		t.Fatalf("unexpected scorer: %v", goal.PlayerID)
	}
	if goal.TeamID == nil || *goal.TeamID != f.homeID {
		t.Fatalf("unexpected goal team: %v", goal.TeamID)
	}
	if goal.AssistPlayerID == nil || *goal.AssistPlayerID != players[1].ID {
		t.Fatalf("unexpected assist player: %v", goal.AssistPlayerID)
	}
	if goal.AssistPlayerName != "Сергей Смирнов" {
		t.Fatalf("unexpected assist name: %q", goal.AssistPlayerName)
	}
	if card.TeamID == nil || *card.TeamID != f.awayID {
		t.Fatalf("unexpected card team: %v", card.TeamID)
	}
}

func TestEventSyncService_UnresolvedParticipantsKeepNames(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newSyncFixture(t)
	m := f.addMatch(t, testUUID(901), enabledSeasonID, match.StatusLive, time.Now().Add(-time.Hour))

	live := &fakeLive{events: []usecase.ExternalLiveEvent{
		{Half: 0, Minute: 30, Action: "ЗАМЕНА", FirstName1: "Марат", LastName1: "Жумабаев", Team1: "Тобол", FirstName2: "Ержан", LastName2: "Оспанов"},
	}}
	res, err := f.eventService(live).SyncMatchEvents(ctx, m.ID)
	if err != nil {
		t.Fatalf("sync events: %v", err)
	}
	if res.Added != 1 {
		t.Fatalf("unexpected added count: got=%d want=%d", res.Added, 1)
	}

	e := res.Events[0]
	if e.Half != 1 {
		t.Fatalf("unexpected half: got=%d want=%d", e.Half, 1)
	}
	if e.TeamID != nil || e.PlayerID != nil || e.Player2ID != nil {
		t.Fatalf("expected unresolved ids, got team=%v player=%v player2=%v", e.TeamID, e.PlayerID, e.Player2ID)
	}
	if e.PlayerName != "Марат Жумабаев" || e.Player2Name != "Ержан Оспанов" || e.Player2TeamName != "Тобол" {
		t.Fatalf("unexpected names: %+v", e)
	}
}

func TestEventSyncService_DisabledSeasonIsNotPolled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newSyncFixture(t)
	m := f.addMatch(t, testUUID(902), disabledSeasonID, match.StatusLive, time.Now().Add(-time.Hour))

	live := &fakeLive{events: liveEventsPayload()}
	_, err := f.eventService(live).SyncMatchEvents(ctx, m.ID)
	if !errors.Is(err, usecase.ErrSyncDisabled) {
		t.Fatalf("expected ErrSyncDisabled, got %v", err)
	}
	if live.polls() != 0 {
		t.Fatalf("unexpected event polls: got=%d want=%d", live.polls(), 0)
	}
}

func TestEventSyncService_InvalidAndMissingMatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newSyncFixture(t)
	service := f.eventService(&fakeLive{})

	if _, err := service.SyncMatchEvents(ctx, 0); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := service.SyncMatchEvents(ctx, 404); !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEventSyncService_SyncSeasonEvents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newSyncFixture(t)
	kickoff := time.Now().Add(-3 * time.Hour)
	live1 := f.addMatch(t, testUUID(903), enabledSeasonID, match.StatusLive, kickoff)
	f.addMatch(t, testUUID(904), enabledSeasonID, match.StatusFinished, kickoff)
	f.addMatch(t, testUUID(905), enabledSeasonID, match.StatusCreated, kickoff)
	seedEventLineup(t, f, live1.ID)

	live := &fakeLive{events: liveEventsPayload()}
	res, err := f.eventService(live).SyncSeasonEvents(ctx, enabledSeasonID)
	if err != nil {
		t.Fatalf("sync season events: %v", err)
	}
	if res.MatchesSynced != 2 || len(res.Errors) != 0 {
		t.Fatalf("unexpected season result: %+v", res)
	}
	if res.EventsAdded != 6 {
		t.Fatalf("unexpected events added: got=%d want=%d", res.EventsAdded, 6)
	}
	if live.polls() != 2 {
		t.Fatalf("unexpected event polls: got=%d want=%d", live.polls(), 2)
	}

	if _, err := f.eventService(live).SyncSeasonEvents(ctx, disabledSeasonID); !errors.Is(err, usecase.ErrSyncDisabled) {
		t.Fatalf("expected ErrSyncDisabled, got %v", err)
	}
}
