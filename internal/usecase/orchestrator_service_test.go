package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/matchsync/internal/domain/season"
	seasonmock "github.com/riskibarqy/matchsync/internal/mocks/domain/season"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/riskibarqy/matchsync/internal/usecase"
	"github.com/stretchr/testify/mock"
)

type fixedID string

func (f fixedID) NewID() (string, error) {
	return string(f), nil
}

func TestParsePhase(t *testing.T) {
	t.Parallel()

	for _, phase := range usecase.FullSyncOrder {
		got, ok := usecase.ParsePhase(string(phase))
		if !ok || got != phase {
			t.Fatalf("unexpected phase: got=%s ok=%t want=%s", got, ok, phase)
		}
	}
	if _, ok := usecase.ParsePhase("team-stats"); ok {
		t.Fatalf("expected dashed phase name to be rejected")
	}
}

func TestOrchestrator_FullSyncSkipsDisabledSeasonUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seasonRepo := seasonmock.NewRepository(t)
	seasonRepo.
		On("GetByID", mock.Anything, disabledSeasonID).
		Return(season.Season{ID: disabledSeasonID, SyncEnabled: false}, true, nil).
		Once()

	orchestrator := usecase.NewOrchestrator(nil, nil, nil, nil, seasonRepo, fixedID("run-1"), logging.NewNop())
	report, err := orchestrator.FullSync(ctx, disabledSeasonID)
	if err != nil {
		t.Fatalf("full sync: %v", err)
	}
	if report.RunID != "run-1" || report.SeasonID != disabledSeasonID {
		t.Fatalf("unexpected report header: %+v", report)
	}
	if report.Completed {
		t.Fatalf("expected disabled season run to be incomplete")
	}
	if len(report.Phases) != len(usecase.FullSyncOrder) {
		t.Fatalf("unexpected phase count: got=%d want=%d", len(report.Phases), len(usecase.FullSyncOrder))
	}
	for i, phase := range report.Phases {
		if phase.Phase != usecase.FullSyncOrder[i] || !phase.Skipped || phase.Rows != 0 {
			t.Fatalf("unexpected phase report %d: %+v", i, phase)
		}
	}
}

func TestOrchestrator_RunPhaseUnknownSeasonIsSkippedUsingMockery(t *testing.T) {
	t.Parallel()

	seasonRepo := seasonmock.NewRepository(t)
	seasonRepo.
		On("GetByID", mock.Anything, int64(999)).
		Return(season.Season{}, false, nil).
		Once()

	orchestrator := usecase.NewOrchestrator(nil, nil, nil, nil, seasonRepo, nil, logging.NewNop())
	report, err := orchestrator.RunPhase(context.Background(), 999, usecase.PhaseMatches)
	if err != nil {
		t.Fatalf("run phase: %v", err)
	}
	if !report.Skipped || report.Phase != usecase.PhaseMatches {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestOrchestrator_RunPhaseSeasonLookupFailureUsingMockery(t *testing.T) {
	t.Parallel()

	seasonRepo := seasonmock.NewRepository(t)
	seasonRepo.
		On("GetByID", mock.Anything, enabledSeasonID).
		Return(season.Season{}, false, errors.New("connection refused")).
		Once()

	orchestrator := usecase.NewOrchestrator(nil, nil, nil, nil, seasonRepo, nil, logging.NewNop())
	report, err := orchestrator.RunPhase(context.Background(), enabledSeasonID, usecase.PhaseStandings)
	if err == nil {
		t.Fatalf("expected season lookup error")
	}
	if report.Error == "" || report.Skipped {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestOrchestrator_SetSyncEnabledUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seasonRepo := seasonmock.NewRepository(t)
	seasonRepo.
		On("GetByID", mock.Anything, enabledSeasonID).
		Return(season.Season{ID: enabledSeasonID}, true, nil).
		Once()
	seasonRepo.
		On("SetSyncEnabled", mock.Anything, enabledSeasonID, true).
		Return(nil).
		Once()
	seasonRepo.
		On("GetByID", mock.Anything, int64(404)).
		Return(season.Season{}, false, nil).
		Once()

	orchestrator := usecase.NewOrchestrator(nil, nil, nil, nil, seasonRepo, nil, logging.NewNop())
	if err := orchestrator.SetSyncEnabled(ctx, enabledSeasonID, true); err != nil {
		t.Fatalf("enable season: %v", err)
	}
	if err := orchestrator.SetSyncEnabled(ctx, 404, true); !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := orchestrator.SetSyncEnabled(ctx, 0, true); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func newMemoryOrchestrator(f syncFixture, feed usecase.FeedProvider) *usecase.Orchestrator {
	logger := logging.NewNop()
	teamSource := usecase.NewSeasonTeamSource(f.store.Standings, f.store.Seasons, f.store.Matches)
	reference := usecase.NewReferenceSyncService(feed, f.store.Seasons, f.store.Teams, logger)
	players := usecase.NewPlayerSyncService(feed, f.store.Players, f.store.Teams, f.store.PlayerStats, f.store.Seasons, teamSource, logger)
	stats := usecase.NewStatsSyncService(feed, f.store.Standings, f.store.Teams, f.store.TeamStats, f.store.Seasons, teamSource, logger)
	return usecase.NewOrchestrator(reference, players, f.matchService(feed), stats, f.store.Seasons, nil, logger)
}

func TestOrchestrator_RunPhaseReferenceAndMatches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newSyncFixture(t)
	feed := referenceFeed()
	feed.games = []usecase.ExternalGame{
		{SotaID: testUUID(700), HomeTeamID: homeSotaID, AwayTeamID: awaySotaID},
	}
	orchestrator := newMemoryOrchestrator(f, feed)

	ref, err := orchestrator.RunPhase(ctx, enabledSeasonID, usecase.PhaseReference)
	if err != nil {
		t.Fatalf("reference phase: %v", err)
	}
	if ref.Skipped || ref.Rows != 7 {
		t.Fatalf("unexpected reference report: %+v", ref)
	}

	matches, err := orchestrator.RunPhase(ctx, enabledSeasonID, usecase.PhaseMatches)
	if err != nil {
		t.Fatalf("matches phase: %v", err)
	}
	if matches.Rows != 1 || len(matches.Failed) != 0 {
		t.Fatalf("unexpected matches report: %+v", matches)
	}

	enabled, err := orchestrator.IsSyncEnabled(ctx, enabledSeasonID)
	if err != nil || !enabled {
		t.Fatalf("expected reference sync to keep the season enabled, got=%t err=%v", enabled, err)
	}

	skipped, err := orchestrator.RunPhase(ctx, disabledSeasonID, usecase.PhaseReference)
	if err != nil {
		t.Fatalf("disabled reference phase: %v", err)
	}
	if !skipped.Skipped || skipped.Rows != 0 {
		t.Fatalf("unexpected disabled report: %+v", skipped)
	}
	if got := feed.callCount("games"); got != 1 {
		t.Fatalf("unexpected games fetches: got=%d want=%d", got, 1)
	}
}
