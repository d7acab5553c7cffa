package app

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/matchsync/internal/config"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
)

func testConfig() config.Config {
	return config.Config{
		AppEnv:                config.EnvDev,
		ServiceName:           "matchsync",
		ServiceVersion:        "test",
		SotaBaseURL:           "http://127.0.0.1:1/api",
		SotaLiveBaseURL:       "http://127.0.0.1:1/em",
		SotaMaxAttempts:       1,
		SotaTimeout:           time.Second,
		SotaLiveTimeout:       time.Second,
		SyncDefaultSeasonID:   61,
		SyncMaxWorkers:        2,
		SyncBackfillBatchSize: 10,
		SyncLocation:          time.UTC,
		LivePollInterval:      time.Minute,
		TeamCacheTTL:          time.Minute,
	}
}

func TestNewMemoryAppSeedsDefaultSeason(t *testing.T) {
	t.Parallel()

	a, err := New(context.Background(), testConfig(), logging.NewNop(), Options{Memory: true})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	enabled, err := a.Orchestrator.IsSyncEnabled(context.Background(), 61)
	if err != nil {
		t.Fatalf("is sync enabled: %v", err)
	}
	if !enabled {
		t.Fatalf("expected seeded season to be enabled")
	}

	enabled, err = a.Orchestrator.IsSyncEnabled(context.Background(), 62)
	if err != nil {
		t.Fatalf("is sync enabled: %v", err)
	}
	if enabled {
		t.Fatalf("expected unknown season to be disabled")
	}
}

func TestNewRejectsInvalidTeamAliases(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.SyncTeamAliases = "missing-separator"
	if _, err := New(context.Background(), cfg, logging.NewNop(), Options{Memory: true}); err == nil {
		t.Fatalf("expected error for invalid team aliases")
	}
}
