package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/domain/season"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/sourcegraph/conc/iter"
)

type LiveTrackingConfig struct {
	PollInterval   time.Duration
	UpcomingWindow time.Duration
	MaxDuration    time.Duration
}

func normalizeLiveTrackingConfig(cfg LiveTrackingConfig) LiveTrackingConfig {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	if cfg.UpcomingWindow <= 0 {
		cfg.UpcomingWindow = 30 * time.Minute
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = 2 * time.Hour
	}
	return cfg
}

type StartLiveResult struct {
	MatchID int64                `json:"match_id"`
	Lineup  *PreGameLineupResult `json:"lineup,omitempty"`
	Events  MatchEventsResult    `json:"events"`
}

type TickResult struct {
	Started     []int64      `json:"started"`
	Refreshed   int          `json:"refreshed"`
	EventsAdded int          `json:"events_added"`
	Ended       []int64      `json:"ended"`
	Errors      []FailedItem `json:"errors,omitempty"`
}

// LiveTrackingService drives matches through created, live and finished
// while polling their live documents.
type LiveTrackingService struct {
	matches *matchTimeline
	lineups *LineupSyncService
	events  *EventSyncService
	gate    seasonGate
	cfg     LiveTrackingConfig
	sync    SyncConfig
	logger  *logging.Logger
}

func NewLiveTrackingService(
	matches match.Repository,
	seasons season.Repository,
	lineups *LineupSyncService,
	events *EventSyncService,
	syncCfg SyncConfig,
	cfg LiveTrackingConfig,
	logger *logging.Logger,
) *LiveTrackingService {
	if logger == nil {
		logger = logging.Default()
	}
	syncCfg = normalizeSyncConfig(syncCfg)
	return &LiveTrackingService{
		matches: &matchTimeline{repo: matches, loc: syncCfg.Location, now: time.Now},
		lineups: lineups,
		events:  events,
		gate:    seasonGate{seasons: seasons},
		cfg:     normalizeLiveTrackingConfig(cfg),
		sync:    syncCfg,
		logger:  logger,
	}
}

// matchTimeline answers kickoff questions in the upstream timezone.
type matchTimeline struct {
	repo match.Repository
	loc  *time.Location
	now  func() time.Time
}

func (t *matchTimeline) kickoff(m match.Match) time.Time {
	at, _ := m.KickoffAt(t.loc)
	return at
}

// UpcomingMatches returns created matches of enabled seasons kicking off
// within window. Matches that should have started already, but not longer ago
// than the maximum match duration, are included so a late poll still starts
// them.
func (s *LiveTrackingService) UpcomingMatches(ctx context.Context, window time.Duration) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveTrackingService.UpcomingMatches")
	defer span.End()

	if window <= 0 {
		window = s.cfg.UpcomingWindow
	}
	now := s.matches.now().In(s.matches.loc)
	from := now.Add(-s.cfg.MaxDuration)
	to := now.Add(window)

	dayFrom := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, s.matches.loc)
	items, err := s.matches.repo.ListByDateRange(ctx, dayFrom, to, match.StatusCreated)
	if err != nil {
		return nil, fmt.Errorf("list matches by date: %w", err)
	}

	enabled := make(map[int64]bool)
	out := make([]match.Match, 0, len(items))
	for _, m := range items {
		at, known := m.KickoffAt(s.matches.loc)
		if !known || at.Before(from) || at.After(to) || m.SotaID == "" {
			continue
		}
		ok, seen := enabled[m.SeasonID]
		if !seen {
			if ok, err = s.gate.enabled(ctx, m.SeasonID); err != nil {
				return nil, err
			}
			enabled[m.SeasonID] = ok
		}
		if ok {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.matches.kickoff(out[i]).Before(s.matches.kickoff(out[j]))
	})
	return out, nil
}

func (s *LiveTrackingService) ActiveMatches(ctx context.Context) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveTrackingService.ActiveMatches")
	defer span.End()

	items, err := s.matches.repo.ListByStatus(ctx, match.StatusLive)
	if err != nil {
		return nil, fmt.Errorf("list live matches: %w", err)
	}
	return items, nil
}

// MatchesToEnd returns live matches that kicked off more than maxDuration ago.
func (s *LiveTrackingService) MatchesToEnd(ctx context.Context, maxDuration time.Duration) ([]match.Match, error) {
	if maxDuration <= 0 {
		maxDuration = s.cfg.MaxDuration
	}
	active, err := s.ActiveMatches(ctx)
	if err != nil {
		return nil, err
	}
	deadline := s.matches.now().Add(-maxDuration)
	out := make([]match.Match, 0, len(active))
	for _, m := range active {
		at := s.matches.kickoff(m)
		if !at.IsZero() && at.Before(deadline) {
			out = append(out, m)
		}
	}
	return out, nil
}

// StartLive syncs the pre-game lineup when none is stored yet, marks the
// match live and runs the first events poll. Lineup and events failures are
// logged; only the status change must succeed.
func (s *LiveTrackingService) StartLive(ctx context.Context, matchID int64) (StartLiveResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveTrackingService.StartLive", matchAttr(matchID))
	defer span.End()
	ctx = logging.ContextWith(ctx, "match_id", matchID)

	result := StartLiveResult{MatchID: matchID}
	m, err := loadSyncableMatch(ctx, s.matches.repo, s.gate, matchID)
	if err != nil {
		return result, err
	}

	if !m.HasLineup {
		lineupRes, err := s.lineups.SyncPreGameLineup(ctx, matchID)
		if err != nil {
			s.logger.WarnContext(ctx, "pre-game lineup sync failed", "error", err)
		} else {
			result.Lineup = &lineupRes
		}
	}

	if err := s.matches.repo.UpdateStatus(ctx, matchID, match.StatusLive); err != nil {
		return result, fmt.Errorf("mark match live: %w", err)
	}
	s.logger.InfoContext(ctx, "match went live")

	if result.Events, err = s.events.SyncMatchEvents(ctx, matchID); err != nil {
		s.logger.WarnContext(ctx, "first events poll failed", "error", err)
	}
	return result, nil
}

func (s *LiveTrackingService) StopLive(ctx context.Context, matchID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveTrackingService.StopLive", matchAttr(matchID))
	defer span.End()

	if matchID <= 0 {
		return fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}
	if err := s.matches.repo.UpdateStatus(ctx, matchID, match.StatusFinished); err != nil {
		return fmt.Errorf("mark match finished: %w", err)
	}
	s.logger.InfoContext(ctx, "match finished", "match_id", matchID)
	return nil
}

type refreshOutcome struct {
	matchID int64
	added   int
	err     error
}

// Tick starts upcoming matches, refreshes events and positions of active
// matches and ends stale ones.
func (s *LiveTrackingService) Tick(ctx context.Context) (TickResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveTrackingService.Tick")
	defer span.End()

	var result TickResult
	fail := func(matchID int64, err error) {
		result.Errors = append(result.Errors, FailedItem{Key: strconv.FormatInt(matchID, 10), Reason: err.Error()})
	}

	upcoming, err := s.UpcomingMatches(ctx, s.cfg.UpcomingWindow)
	if err != nil {
		return result, err
	}
	for _, m := range upcoming {
		if _, err := s.StartLive(ctx, m.ID); err != nil {
			fail(m.ID, err)
			continue
		}
		result.Started = append(result.Started, m.ID)
	}

	active, err := s.ActiveMatches(ctx)
	if err != nil {
		return result, err
	}
	outcomes := iter.Mapper[match.Match, refreshOutcome]{MaxGoroutines: s.sync.MaxWorkers}.Map(active, func(m *match.Match) refreshOutcome {
		return s.refresh(ctx, m.ID)
	})
	for _, o := range outcomes {
		switch {
		case errors.Is(o.err, ErrSyncDisabled):
		case o.err != nil:
			fail(o.matchID, o.err)
		default:
			result.Refreshed++
			result.EventsAdded += o.added
		}
	}

	stale, err := s.MatchesToEnd(ctx, s.cfg.MaxDuration)
	if err != nil {
		return result, err
	}
	for _, m := range stale {
		if err := s.StopLive(ctx, m.ID); err != nil {
			fail(m.ID, err)
			continue
		}
		result.Ended = append(result.Ended, m.ID)
	}
	return result, ctx.Err()
}

func (s *LiveTrackingService) refresh(ctx context.Context, matchID int64) refreshOutcome {
	if s.sync.UnitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.sync.UnitTimeout)
		defer cancel()
	}
	res, err := s.events.SyncMatchEvents(ctx, matchID)
	if err != nil {
		return refreshOutcome{matchID: matchID, err: err}
	}
	if _, err := s.lineups.SyncLivePositionsAndKits(ctx, matchID, ModeLiveRead); err != nil {
		s.logger.WarnContext(ctx, "live positions refresh failed", "match_id", matchID, "error", err)
	}
	return refreshOutcome{matchID: matchID, added: res.Added}
}

// Run ticks every poll interval until ctx is cancelled.
func (s *LiveTrackingService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		res, err := s.Tick(ctx)
		switch {
		case errors.Is(err, context.Canceled):
			return nil
		case err != nil:
			s.logger.ErrorContext(ctx, "live tick failed", "error", err)
		default:
			s.logger.InfoContext(ctx, "live tick done",
				"started", len(res.Started),
				"refreshed", res.Refreshed,
				"events_added", res.EventsAdded,
				"ended", len(res.Ended),
				"errors", len(res.Errors),
			)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
