package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/matchsync/internal/domain/lineup"
	"github.com/riskibarqy/matchsync/internal/domain/player"
	"github.com/riskibarqy/matchsync/internal/domain/team"
	"github.com/riskibarqy/matchsync/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

func TestParseTeamAliases(t *testing.T) {
	t.Parallel()

	aliases, err := usecase.ParseTeamAliases(" Kairat Almaty = Kairat , ,Tobol Kostanay=Tobol")
	if err != nil {
		t.Fatalf("parse aliases: %v", err)
	}
	if len(aliases) != 2 {
		t.Fatalf("unexpected alias count: got=%d want=%d", len(aliases), 2)
	}
	if aliases["kairat almaty"] != "kairat" {
		t.Fatalf("unexpected canonical name: %q", aliases["kairat almaty"])
	}

	empty, err := usecase.ParseTeamAliases("  ")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty aliases, got=%v err=%v", empty, err)
	}

	for _, raw := range []string{"Kairat", "=Kairat", "Kairat Almaty="} {
		if _, err := usecase.ParseTeamAliases(raw); !errors.Is(err, usecase.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %q, got %v", raw, err)
		}
	}
}

func TestResolver_ResolveTeam(t *testing.T) {
	t.Parallel()

	aliases, err := usecase.ParseTeamAliases("Kairat Almaty=Kairat")
	if err != nil {
		t.Fatalf("parse aliases: %v", err)
	}
	resolver := usecase.NewResolver(nil, aliases)
	candidates := []team.Team{
		{ID: 1, Name: "Кайрат", NameEN: "Kairat"},
		{ID: 2, Name: "Астана", NameEN: "Astana"},
	}

	cases := []struct {
		name     string
		query    string
		teamID   int64
		resolved bool
		strategy string
	}{
		{name: "exact in another locale", query: "ASTANA", teamID: 2, resolved: true, strategy: "exact"},
		{name: "configured alias", query: "Kairat Almaty", teamID: 1, resolved: true, strategy: "alias"},
		{name: "club prefix stripped", query: "ФК Кайрат", teamID: 1, resolved: true, strategy: "alias"},
		{name: "club suffix stripped", query: "Astana FC", teamID: 2, resolved: true, strategy: "alias"},
		{name: "unknown", query: "Tobol", strategy: "no_match"},
		{name: "empty", query: "  ", strategy: "empty"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := resolver.ResolveTeam(tc.query, candidates)
			if got.Resolved != tc.resolved || got.TeamID != tc.teamID || got.Strategy != tc.strategy {
				t.Fatalf("unexpected resolution: got=%+v want id=%d resolved=%t strategy=%s", got, tc.teamID, tc.resolved, tc.strategy)
			}
		})
	}
}

func TestResolver_ResolveTeamAmbiguousIsUnresolved(t *testing.T) {
	t.Parallel()

	resolver := usecase.NewResolver(nil, nil)

	exact := resolver.ResolveTeam("Ordabasy", []team.Team{
		{ID: 1, NameEN: "Ordabasy"},
		{ID: 2, NameEN: "Ordabasy"},
	})
	if exact.Resolved || exact.Strategy != "exact_ambiguous" {
		t.Fatalf("unexpected exact resolution: %+v", exact)
	}

	alias := resolver.ResolveTeam("FC Ordabasy", []team.Team{
		{ID: 1, NameEN: "Ordabasy"},
		{ID: 2, NameEN: "Ordabasy FC"},
	})
	if alias.Resolved || alias.Strategy != "alias_ambiguous" {
		t.Fatalf("unexpected alias resolution: %+v", alias)
	}
	if alias.IDPtr() != nil {
		t.Fatalf("expected nil id for unresolved team")
	}
}

func TestResolver_ResolveEventTeamFallsBackToLineup(t *testing.T) {
	t.Parallel()

	resolver := usecase.NewResolver(nil, nil)
	candidates := []team.Team{{ID: 1, Name: "Кайрат"}, {ID: 2, Name: "Астана"}}
	playerID := int64(7)

	got := resolver.ResolveEventTeam("Unknown XI", &playerID, []lineup.Entry{
		{PlayerID: 7, TeamID: 2},
		{PlayerID: 8, TeamID: 1},
	}, candidates)
	if !got.Resolved || got.TeamID != 2 || got.Strategy != "lineup" {
		t.Fatalf("unexpected lineup fallback: %+v", got)
	}

	ambiguous := resolver.ResolveEventTeam("Unknown XI", &playerID, []lineup.Entry{
		{PlayerID: 7, TeamID: 1},
		{PlayerID: 7, TeamID: 2},
	}, candidates)
	if ambiguous.Resolved || ambiguous.Strategy != "lineup_ambiguous" {
		t.Fatalf("unexpected ambiguous fallback: %+v", ambiguous)
	}

	byName := resolver.ResolveEventTeam("кайрат", nil, nil, candidates)
	if !byName.Resolved || byName.TeamID != 1 {
		t.Fatalf("expected name to win over lineup, got %+v", byName)
	}
}

func TestResolvePlayerByName(t *testing.T) {
	t.Parallel()

	home, away := int64(1), int64(2)
	candidates := []usecase.PlayerCandidate{
		{Player: player.Player{ID: 10, FirstName: "Иван", LastName: "Петров", FirstNameEN: "Ivan", LastNameEN: "Petrov"}, TeamID: home},
		{Player: player.Player{ID: 20, FirstName: "Иван", LastName: "Петров"}, TeamID: away},
	}

	got := usecase.ResolvePlayerByName(" ivan ", "PETROV", nil, candidates)
	if !got.Resolved || got.PlayerID != 10 {
		t.Fatalf("unexpected english match: %+v", got)
	}

	ambiguous := usecase.ResolvePlayerByName("Иван", "Петров", nil, candidates)
	if ambiguous.Resolved {
		t.Fatalf("expected ambiguous name to stay unresolved, got %+v", ambiguous)
	}

	scoped := usecase.ResolvePlayerByName("Иван", "Петров", &away, candidates)
	if !scoped.Resolved || scoped.PlayerID != 20 {
		t.Fatalf("unexpected team scoped match: %+v", scoped)
	}

	if empty := usecase.ResolvePlayerByName("", " ", nil, candidates); empty.Resolved {
		t.Fatalf("expected empty name to stay unresolved")
	}
}

func TestResolver_ResolvePlayerCreatesUnknownSotaID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	players := memory.NewPlayerRepository()
	resolver := usecase.NewResolver(players, nil)
	sotaID := testUUID(1)

	first, err := resolver.ResolvePlayer(ctx, usecase.PlayerQuery{SotaID: sotaID, FirstName: " Алан ", LastName: "Ким"}, nil, true)
	if err != nil {
		t.Fatalf("resolve player: %v", err)
	}
	if !first.Resolved || !first.Created {
		t.Fatalf("expected created player, got %+v", first)
	}

	second, err := resolver.ResolvePlayer(ctx, usecase.PlayerQuery{SotaID: sotaID}, nil, true)
	if err != nil {
		t.Fatalf("resolve player again: %v", err)
	}
	if second.Created || second.PlayerID != first.PlayerID {
		t.Fatalf("unexpected second resolution: got=%+v first=%+v", second, first)
	}

	stored, ok, err := players.GetBySotaID(ctx, sotaID)
	if err != nil || !ok {
		t.Fatalf("load created player: ok=%t err=%v", ok, err)
	}
	if stored.FirstName != "Алан" {
		t.Fatalf("unexpected first name: %q", stored.FirstName)
	}

	missing, err := resolver.ResolvePlayer(ctx, usecase.PlayerQuery{SotaID: testUUID(2)}, nil, false)
	if err != nil {
		t.Fatalf("resolve without create: %v", err)
	}
	if missing.Resolved {
		t.Fatalf("expected unknown player to stay unresolved without create")
	}
}
