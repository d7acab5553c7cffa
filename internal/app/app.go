package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchsync/external/sota"
	"github.com/riskibarqy/matchsync/internal/config"
	"github.com/riskibarqy/matchsync/internal/domain/lineup"
	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/domain/matchevent"
	"github.com/riskibarqy/matchsync/internal/domain/official"
	"github.com/riskibarqy/matchsync/internal/domain/player"
	"github.com/riskibarqy/matchsync/internal/domain/playerstats"
	"github.com/riskibarqy/matchsync/internal/domain/season"
	"github.com/riskibarqy/matchsync/internal/domain/standing"
	"github.com/riskibarqy/matchsync/internal/domain/team"
	"github.com/riskibarqy/matchsync/internal/domain/teamstats"
	repocache "github.com/riskibarqy/matchsync/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/matchsync/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchsync/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/matchsync/internal/platform/cache"
	"github.com/riskibarqy/matchsync/internal/platform/id"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/riskibarqy/matchsync/internal/platform/resilience"
	"github.com/riskibarqy/matchsync/internal/usecase"
	"github.com/sony/gobreaker/v2"
)

type Options struct {
	// Memory swaps the postgres repositories for in-memory ones. The default
	// season is seeded with sync enabled.
	Memory bool
}

// Repositories is the persistence surface the services are built on.
type Repositories struct {
	Seasons     season.Repository
	Teams       team.Repository
	Players     player.Repository
	Matches     match.Repository
	Lineups     lineup.Repository
	Events      matchevent.Repository
	Officials   official.Repository
	Standings   standing.Repository
	TeamStats   teamstats.Repository
	PlayerStats playerstats.Repository
}

// App holds the wired services of one syncer process.
type App struct {
	Reference    *usecase.ReferenceSyncService
	Players      *usecase.PlayerSyncService
	Matches      *usecase.MatchSyncService
	Stats        *usecase.StatsSyncService
	Lineups      *usecase.LineupSyncService
	Events       *usecase.EventSyncService
	Live         *usecase.LiveTrackingService
	Orchestrator *usecase.Orchestrator

	db *sqlx.DB
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		repos Repositories
		db    *sqlx.DB
	)
	if opts.Memory {
		repos = memoryRepositories(cfg.SyncDefaultSeasonID)
		logger.Info("using in-memory repositories", "seeded_season_id", cfg.SyncDefaultSeasonID)
	} else {
		var err error
		db, err = openDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		repos = postgresRepositories(db)
	}
	if cfg.TeamCacheTTL > 0 {
		repos.Teams = repocache.NewTeamRepository(repos.Teams, basecache.NewStore[[]team.Team](cfg.TeamCacheTTL))
	}

	aliases, err := usecase.ParseTeamAliases(cfg.SyncTeamAliases)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("parse SYNC_TEAM_ALIASES: %w", err)
	}

	feed, live := newFeedClients(cfg, logger)
	a := wire(repos, feed, live, aliases, cfg, logger)
	a.db = db
	return a, nil
}

func (a *App) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

func memoryRepositories(defaultSeasonID int64) Repositories {
	store := memory.NewStore(memory.SeedSeasons(defaultSeasonID)...)
	return Repositories{
		Seasons:     store.Seasons,
		Teams:       store.Teams,
		Players:     store.Players,
		Matches:     store.Matches,
		Lineups:     store.Lineups,
		Events:      store.Events,
		Officials:   store.Officials,
		Standings:   store.Standings,
		TeamStats:   store.TeamStats,
		PlayerStats: store.PlayerStats,
	}
}

func postgresRepositories(db *sqlx.DB) Repositories {
	return Repositories{
		Seasons:     postgres.NewSeasonRepository(db),
		Teams:       postgres.NewTeamRepository(db),
		Players:     postgres.NewPlayerRepository(db),
		Matches:     postgres.NewMatchRepository(db),
		Lineups:     postgres.NewLineupRepository(db),
		Events:      postgres.NewEventRepository(db),
		Officials:   postgres.NewOfficialRepository(db),
		Standings:   postgres.NewStandingRepository(db),
		TeamStats:   postgres.NewTeamStatsRepository(db),
		PlayerStats: postgres.NewPlayerStatsRepository(db),
	}
}

func newFeedClients(cfg config.Config, logger *logging.Logger) (*sota.Client, *sota.LiveClient) {
	retry := resilience.RetryPolicy{
		MaxAttempts: cfg.SotaMaxAttempts,
		BaseDelay:   cfg.SotaRetryBaseDelay,
	}
	clientLogger := logger.Named("sota")

	client := sota.NewClient(sota.ClientConfig{
		BaseURL:        cfg.SotaBaseURL,
		Email:          cfg.SotaEmail,
		Password:       cfg.SotaPassword,
		Timeout:        cfg.SotaTimeout,
		Retry:          retry,
		RateLimitRPS:   cfg.SotaRateLimitRPS,
		RateLimitBurst: cfg.SotaRateLimitBurst,
		TokenTTL:       cfg.SotaTokenTTL,
		Logger:         clientLogger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SotaCircuitEnabled,
			FailureThreshold: cfg.SotaCircuitFailureCount,
			OpenTimeout:      cfg.SotaCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SotaCircuitHalfOpenMaxReq,
			OnStateChange: func(name string, from, to gobreaker.State) {
				clientLogger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			},
		},
	})
	live := sota.NewLiveClient(sota.LiveClientConfig{
		BaseURL: cfg.SotaLiveBaseURL,
		Timeout: cfg.SotaLiveTimeout,
		Retry:   retry,
		Tokens:  client,
		Logger:  clientLogger,
	})
	return client, live
}

// wire builds every service over repos. It never touches the network.
func wire(
	repos Repositories,
	feed usecase.FeedProvider,
	live usecase.LiveFeed,
	aliases usecase.TeamAliases,
	cfg config.Config,
	logger *logging.Logger,
) *App {
	syncCfg := usecase.SyncConfig{
		MaxWorkers:        cfg.SyncMaxWorkers,
		BackfillBatchSize: cfg.SyncBackfillBatchSize,
		UnitTimeout:       cfg.SyncUnitTimeout,
		Location:          cfg.SyncLocation,
	}
	resolver := usecase.NewResolver(repos.Players, aliases)
	teamSource := usecase.NewSeasonTeamSource(repos.Standings, repos.Seasons, repos.Matches)

	reference := usecase.NewReferenceSyncService(feed, repos.Seasons, repos.Teams, logger.Named("reference_sync"))
	players := usecase.NewPlayerSyncService(feed, repos.Players, repos.Teams, repos.PlayerStats, repos.Seasons, teamSource, logger.Named("player_sync"))
	matches := usecase.NewMatchSyncService(
		feed, repos.Matches, repos.Teams, repos.Players, repos.TeamStats, repos.PlayerStats,
		repos.Seasons, resolver, syncCfg, logger.Named("match_sync"),
	)
	stats := usecase.NewStatsSyncService(feed, repos.Standings, repos.Teams, repos.TeamStats, repos.Seasons, teamSource, logger.Named("stats_sync"))
	lineups := usecase.NewLineupSyncService(
		feed, live, repos.Matches, repos.Lineups, repos.Players, repos.Officials,
		repos.Seasons, resolver, syncCfg, logger.Named("lineup_sync"),
	)
	events := usecase.NewEventSyncService(
		live, repos.Matches, repos.Events, repos.Lineups, repos.Players, repos.Teams,
		repos.Seasons, resolver, syncCfg, logger.Named("event_sync"),
	)
	tracking := usecase.NewLiveTrackingService(
		repos.Matches, repos.Seasons, lineups, events, syncCfg,
		usecase.LiveTrackingConfig{
			PollInterval:   cfg.LivePollInterval,
			UpcomingWindow: cfg.LiveUpcomingWindow,
			MaxDuration:    cfg.LiveMaxDuration,
		},
		logger.Named("live_tracking"),
	)
	orchestrator := usecase.NewOrchestrator(reference, players, matches, stats, repos.Seasons, id.NewUUIDGenerator(), logger.Named("orchestrator"))

	return &App{
		Reference:    reference,
		Players:      players,
		Matches:      matches,
		Stats:        stats,
		Lineups:      lineups,
		Events:       events,
		Live:         tracking,
		Orchestrator: orchestrator,
	}
}
