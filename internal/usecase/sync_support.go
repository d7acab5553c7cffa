package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/domain/season"
	"github.com/riskibarqy/matchsync/internal/domain/standing"
)

// SyncConfig carries the knobs shared by the ingestors.
type SyncConfig struct {
	MaxWorkers        int
	BackfillBatchSize int
	// UnitTimeout bounds one per-match unit run from a worker pool. Zero disables it.
	UnitTimeout time.Duration
	// Location is the timezone of upstream dates and kickoff times.
	Location *time.Location
}

func normalizeSyncConfig(cfg SyncConfig) SyncConfig {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 4
	}
	if cfg.BackfillBatchSize <= 0 {
		cfg.BackfillBatchSize = 50
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return cfg
}

var inputValidator = validator.New()

func validateInput(ctx context.Context, input any) error {
	if err := inputValidator.StructCtx(ctx, input); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// seasonGate enforces the per-season sync flag. Unknown seasons count as
// disabled.
type seasonGate struct {
	seasons season.Repository
}

func (g seasonGate) enabled(ctx context.Context, seasonID int64) (bool, error) {
	if g.seasons == nil {
		return false, fmt.Errorf("%w: season repository is not configured", ErrDependencyUnavailable)
	}
	item, ok, err := g.seasons.GetByID(ctx, seasonID)
	if err != nil {
		return false, fmt.Errorf("get season: %w", err)
	}
	return ok && item.SyncEnabled, nil
}

func (g seasonGate) check(ctx context.Context, seasonID int64) error {
	ok, err := g.enabled(ctx, seasonID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: season_id=%d", ErrSyncDisabled, seasonID)
	}
	return nil
}

// SeasonTeamSource computes the candidate teams of a season as the union of
// standings rows, season participants and teams playing the season's matches.
type SeasonTeamSource struct {
	standings standing.Repository
	seasons   season.Repository
	matches   match.Repository
}

func NewSeasonTeamSource(standings standing.Repository, seasons season.Repository, matches match.Repository) *SeasonTeamSource {
	return &SeasonTeamSource{standings: standings, seasons: seasons, matches: matches}
}

func (s *SeasonTeamSource) TeamIDs(ctx context.Context, seasonID int64) ([]int64, error) {
	set := make(map[int64]struct{}, 32)

	fromStandings, err := s.standings.ListTeamIDs(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list standing teams: %w", err)
	}
	fromParticipants, err := s.seasons.ListParticipantTeamIDs(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list season participants: %w", err)
	}
	matches, err := s.matches.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list season matches: %w", err)
	}

	for _, id := range fromStandings {
		set[id] = struct{}{}
	}
	for _, id := range fromParticipants {
		set[id] = struct{}{}
	}
	for _, m := range matches {
		for _, id := range m.TeamIDs() {
			set[id] = struct{}{}
		}
	}

	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// runPerMatch runs fn for every match id on a bounded ants pool. Each call
// gets its own timeout when configured.
func runPerMatch(ctx context.Context, cfg SyncConfig, ids []int64, fn func(ctx context.Context, matchID int64)) error {
	if len(ids) == 0 {
		return nil
	}
	workers := cfg.MaxWorkers
	if workers > len(ids) {
		workers = len(ids)
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		id := id
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			unitCtx := ctx
			if cfg.UnitTimeout > 0 {
				var cancel context.CancelFunc
				unitCtx, cancel = context.WithTimeout(ctx, cfg.UnitTimeout)
				defer cancel()
			}
			fn(unitCtx, id)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	wg.Wait()
	return ctx.Err()
}

func int64Ptr(v int64) *int64 {
	return &v
}

func stringPtr(v string) *string {
	return &v
}
