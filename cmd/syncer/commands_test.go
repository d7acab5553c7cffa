package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/matchsync/internal/app"
	"github.com/riskibarqy/matchsync/internal/config"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

func TestParseInvocation(t *testing.T) {
	t.Parallel()

	inv, err := parseInvocation([]string{"--memory", "--season", "61", "--repair", "matches"})
	if err != nil {
		t.Fatalf("parse invocation: %v", err)
	}
	if !inv.Memory || !inv.Repair || inv.SeasonID != 61 || inv.Command != "matches" {
		t.Fatalf("unexpected invocation: %+v", inv)
	}
	if inv.Mode != usecase.ModeLiveRead {
		t.Fatalf("unexpected default mode: got=%s want=%s", inv.Mode, usecase.ModeLiveRead)
	}

	inv, err = parseInvocation([]string{"--match", "9", "--mode", "finished_repair", "positions"})
	if err != nil {
		t.Fatalf("parse invocation: %v", err)
	}
	if inv.MatchID != 9 || inv.Mode != usecase.ModeFinishedRepair {
		t.Fatalf("unexpected invocation: %+v", inv)
	}

	inv, err = parseInvocation([]string{"--match-ids", "3, 5,8", "--limit", "2", "backfill"})
	if err != nil {
		t.Fatalf("parse invocation: %v", err)
	}
	if len(inv.MatchIDs) != 3 || inv.MatchIDs[1] != 5 || inv.Limit != 2 {
		t.Fatalf("unexpected backfill invocation: %+v", inv)
	}
}

func TestParseInvocationErrors(t *testing.T) {
	t.Parallel()

	cases := map[string][]string{
		"no command":        {"--memory"},
		"two commands":      {"full", "live"},
		"unknown command":   {"rebuild"},
		"missing match":     {"pregame"},
		"bad mode":          {"--match", "1", "--mode", "strict", "positions"},
		"bad match ids":     {"--match-ids", "1,x", "backfill"},
		"negative match id": {"--match-ids", "-4", "backfill"},
	}
	for name, args := range cases {
		if _, err := parseInvocation(args); err == nil {
			t.Fatalf("expected error for %s", name)
		}
	}
}

func memoryApp(t *testing.T) *app.App {
	t.Helper()

	cfg := config.Config{
		AppEnv:              config.EnvDev,
		SotaBaseURL:         "http://127.0.0.1:1/api",
		SotaLiveBaseURL:     "http://127.0.0.1:1/em",
		SotaMaxAttempts:     1,
		SotaTimeout:         time.Second,
		SotaLiveTimeout:     time.Second,
		SyncDefaultSeasonID: 61,
		SyncLocation:        time.UTC,
	}
	a, err := app.New(context.Background(), cfg, logging.NewNop(), app.Options{Memory: true})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestDispatchSeasonToggle(t *testing.T) {
	t.Parallel()

	a := memoryApp(t)
	ctx := context.Background()

	if _, err := dispatch(ctx, a, invocation{Command: "season-disable", SeasonID: 61}); err != nil {
		t.Fatalf("disable season: %v", err)
	}
	enabled, err := a.Orchestrator.IsSyncEnabled(ctx, 61)
	if err != nil {
		t.Fatalf("is sync enabled: %v", err)
	}
	if enabled {
		t.Fatalf("expected season to be disabled")
	}

	res, err := dispatch(ctx, a, invocation{Command: "full", SeasonID: 61})
	if err != nil {
		t.Fatalf("full sync: %v", err)
	}
	report, ok := res.(usecase.FullSyncReport)
	if !ok {
		t.Fatalf("unexpected result type %T", res)
	}
	if report.Completed || len(report.Phases) != len(usecase.FullSyncOrder) {
		t.Fatalf("unexpected report: %+v", report)
	}
	for _, phase := range report.Phases {
		if !phase.Skipped {
			t.Fatalf("expected phase %s to be skipped", phase.Phase)
		}
	}

	if _, err := dispatch(ctx, a, invocation{Command: "season-enable", SeasonID: 404}); err == nil {
		t.Fatalf("expected error enabling unknown season")
	}
}

func TestDispatchRequiresSeason(t *testing.T) {
	t.Parallel()

	a := memoryApp(t)
	if _, err := dispatch(context.Background(), a, invocation{Command: "events"}); err == nil {
		t.Fatalf("expected error without season")
	}
}

func TestWriteResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := writeResult(&buf, usecase.PhaseReport{Phase: usecase.PhaseMatches, Rows: 12}); err != nil {
		t.Fatalf("write result: %v", err)
	}
	if !strings.Contains(buf.String(), `"rows": 12`) {
		t.Fatalf("unexpected output: %s", buf.String())
	}

	buf.Reset()
	if err := writeResult(&buf, nil); err != nil {
		t.Fatalf("write nil result: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for nil result")
	}
}
