//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchsync/internal/domain/lineup"
	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/domain/matchevent"
	"github.com/riskibarqy/matchsync/internal/domain/player"
	"github.com/riskibarqy/matchsync/internal/domain/season"
	"github.com/riskibarqy/matchsync/internal/domain/team"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const integrationMatchSotaID = "00000000-0000-4000-8000-000000000001"

// startPostgres runs a throwaway postgres, applies db/migrations and returns
// a connected pool.
func startPostgres(t *testing.T) *sqlx.DB {
	t.Helper()

	if err := exec.Command("docker", "info").Run(); err != nil {
		t.Skip("docker is not available")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "matchsync",
				"POSTGRES_PASSWORD": "matchsync",
				"POSTGRES_DB":       "matchsync",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://matchsync:matchsync@%s:%s/matchsync?sslmode=disable", host, port.Port())

	_, file, _, _ := runtime.Caller(0)
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "db", "migrations")
	m, err := migrate.New("file://"+filepath.ToSlash(migrationsDir), dsn)
	if err != nil {
		t.Fatalf("create migrator: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("apply migrations: %v", err)
	}
	_, _ = m.Close()

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedMatch(t *testing.T, db *sqlx.DB) (match.Match, []team.Team) {
	t.Helper()

	ctx := context.Background()
	seasons := NewSeasonRepository(db)
	if _, err := seasons.UpsertSeasons(ctx, []season.Season{{ID: 61, Name: "Премьер-лига 2024"}}); err != nil {
		t.Fatalf("seed season: %v", err)
	}
	home, away := int64(101), int64(102)
	teams, err := NewTeamRepository(db).UpsertFromFeed(ctx, []team.Team{
		{SotaID: &home, Name: "Кайрат"},
		{SotaID: &away, Name: "Астана"},
	})
	if err != nil {
		t.Fatalf("seed teams: %v", err)
	}

	score := 1
	matches := NewMatchRepository(db)
	if _, err := matches.UpsertFromFeed(ctx, []match.Match{{
		SotaID:      integrationMatchSotaID,
		SeasonID:    61,
		Date:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		KickoffTime: "18:00",
		Status:      match.StatusFinished,
		HomeTeamID:  &teams[0].ID,
		AwayTeamID:  &teams[1].ID,
		HomeScore:   &score,
		AwayScore:   &score,
	}}, false); err != nil {
		t.Fatalf("seed match: %v", err)
	}
	stored, ok, err := matches.GetBySotaID(ctx, integrationMatchSotaID)
	if err != nil || !ok {
		t.Fatalf("load seeded match: ok=%t err=%v", ok, err)
	}
	return stored, teams
}

func TestPostgresSeasonSyncFlagSurvivesUpsert(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	repo := NewSeasonRepository(db)

	if _, err := repo.UpsertSeasons(ctx, []season.Season{{ID: 61, Name: "2024", SyncEnabled: true}}); err != nil {
		t.Fatalf("upsert season: %v", err)
	}
	created, ok, err := repo.GetByID(ctx, 61)
	if err != nil || !ok {
		t.Fatalf("load season: ok=%t err=%v", ok, err)
	}
	if created.SyncEnabled {
		t.Fatalf("expected new season to start disabled")
	}

	if err := repo.SetSyncEnabled(ctx, 61, true); err != nil {
		t.Fatalf("enable season: %v", err)
	}
	if _, err := repo.UpsertSeasons(ctx, []season.Season{{ID: 61, Name: "Премьер-лига 2024"}}); err != nil {
		t.Fatalf("upsert season again: %v", err)
	}
	kept, _, err := repo.GetByID(ctx, 61)
	if err != nil {
		t.Fatalf("load season: %v", err)
	}
	if !kept.SyncEnabled || kept.Name != "Премьер-лига 2024" {
		t.Fatalf("unexpected season after upsert: %+v", kept)
	}
}

func TestPostgresMatchUpsertFreezesFinished(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	stored, _ := seedMatch(t, db)
	repo := NewMatchRepository(db)

	update := stored
	four := 4
	update.HomeScore = &four
	if _, err := repo.UpsertFromFeed(ctx, []match.Match{update}, false); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	frozen, _, err := repo.GetByID(ctx, stored.ID)
	if err != nil {
		t.Fatalf("load match: %v", err)
	}
	if *frozen.HomeScore != 1 {
		t.Fatalf("expected frozen score, got=%d want=%d", *frozen.HomeScore, 1)
	}

	if _, err := repo.UpsertFromFeed(ctx, []match.Match{update}, true); err != nil {
		t.Fatalf("repair: %v", err)
	}
	repaired, _, err := repo.GetByID(ctx, stored.ID)
	if err != nil {
		t.Fatalf("load match: %v", err)
	}
	if *repaired.HomeScore != 4 || repaired.KickoffTime != "18:00" {
		t.Fatalf("unexpected repaired match: %+v", repaired)
	}
}

func TestPostgresEventInsertBatchIsIdempotent(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	stored, teams := seedMatch(t, db)
	repo := NewEventRepository(db)

	events := []matchevent.Event{
		{Half: 1, Minute: 12, Type: matchevent.TypeGoal, TeamID: &teams[0].ID, PlayerName: "Иван Петров"},
		{Half: 2, Minute: 3, Type: matchevent.TypeYellowCard, TeamID: &teams[1].ID, PlayerName: "Алан Ким"},
		{Half: 2, Minute: 3, Type: matchevent.TypeYellowCard, TeamID: &teams[1].ID, PlayerName: " алан ким "},
	}
	added, err := repo.InsertBatch(ctx, stored.ID, events)
	if err != nil {
		t.Fatalf("insert events: %v", err)
	}
	if added != 2 {
		t.Fatalf("unexpected added count: got=%d want=%d", added, 2)
	}

	added, err = repo.InsertBatch(ctx, stored.ID, events)
	if err != nil {
		t.Fatalf("insert events again: %v", err)
	}
	if added != 0 {
		t.Fatalf("unexpected added count on replay: got=%d want=%d", added, 0)
	}

	listed, err := repo.ListByMatch(ctx, stored.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(listed) != 2 || listed[0].Type != matchevent.TypeGoal {
		t.Fatalf("unexpected events: %+v", listed)
	}
}

func TestPostgresSaveMatchLineupMergesMetadata(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	stored, teams := seedMatch(t, db)

	players := NewPlayerRepository(db)
	playerID, created, err := players.EnsureBySotaID(ctx, playerFixture())
	if err != nil || !created {
		t.Fatalf("ensure player: created=%t err=%v", created, err)
	}

	repo := NewLineupRepository(db)
	formation := "4-2-3-1"
	kit := "#ffffff"
	nine := 9
	batch := lineup.MatchLineupBatch{
		MatchID:       stored.ID,
		HomeFormation: &formation,
		HomeKitColor:  &kit,
		HasLineup:     true,
		Entries: []lineup.Entry{{
			TeamID:        teams[0].ID,
			PlayerID:      playerID,
			Role:          lineup.RoleStarter,
			ShirtNumber:   &nine,
			Amplua:        lineup.AmpluaForward,
			FieldPosition: lineup.PositionCentre,
		}},
	}
	if err := repo.SaveMatchLineup(ctx, batch); err != nil {
		t.Fatalf("save lineup: %v", err)
	}

	if err := repo.SaveMatchLineup(ctx, lineup.MatchLineupBatch{
		MatchID: stored.ID,
		Entries: []lineup.Entry{{TeamID: teams[0].ID, PlayerID: playerID, Role: lineup.RoleSubstitute}},
	}); err != nil {
		t.Fatalf("save lineup again: %v", err)
	}

	entries, err := repo.ListByMatch(ctx, stored.ID)
	if err != nil {
		t.Fatalf("list lineup: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("unexpected entry count: got=%d want=%d", len(entries), 1)
	}
	if entries[0].Role != lineup.RoleSubstitute || entries[0].FieldPosition != lineup.PositionCentre {
		t.Fatalf("unexpected merged entry: %+v", entries[0])
	}

	m, _, err := NewMatchRepository(db).GetByID(ctx, stored.ID)
	if err != nil {
		t.Fatalf("load match: %v", err)
	}
	if m.HomeFormation != formation || m.HomeKitColor != kit || !m.HasLineup {
		t.Fatalf("unexpected match metadata: %+v", m)
	}
}

func playerFixture() player.Player {
	return player.Player{SotaID: "00000000-0000-4000-8000-000000000101", FirstName: "Иван", LastName: "Петров"}
}
