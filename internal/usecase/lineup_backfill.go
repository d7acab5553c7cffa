package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/riskibarqy/matchsync/internal/domain/lineup"
	"github.com/riskibarqy/matchsync/internal/domain/match"
)

type BackfillInput struct {
	SeasonID   *int64  `validate:"omitempty,gt=0"`
	MatchIDs   []int64 `validate:"omitempty,dive,gt=0"`
	Limit      int     `validate:"gte=0"`
	BatchSize  int     `validate:"gte=0,lte=1000"`
	MaxWorkers int     `validate:"gte=0,lte=64"`
}

type FailedGame struct {
	MatchID int64  `json:"match_id"`
	Reason  string `json:"reason"`
}

type BackfillResult struct {
	Processed        int          `json:"processed"`
	UpdatedGames     int          `json:"updated_games"`
	PositionsUpdated int          `json:"positions_updated"`
	KitColorsUpdated int          `json:"kit_colors_updated"`
	Skipped          int          `json:"skipped"`
	FailedGames      []FailedGame `json:"failed_games,omitempty"`
}

// BackfillFinishedPositions repairs positions and kits of finished matches in
// id order, one batch at a time. A failing match never stops the run. Skipped
// matches are counted and also listed in FailedGames with their skip reason.
func (s *LineupSyncService) BackfillFinishedPositions(ctx context.Context, input BackfillInput) (BackfillResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupSyncService.BackfillFinishedPositions")
	defer span.End()

	var result BackfillResult
	if err := validateInput(ctx, input); err != nil {
		return result, err
	}

	cfg := s.cfg
	if input.MaxWorkers > 0 {
		cfg.MaxWorkers = input.MaxWorkers
	}
	batchSize := cfg.BackfillBatchSize
	if input.BatchSize > 0 {
		batchSize = input.BatchSize
	}

	var (
		mu      sync.Mutex
		afterID int64
	)
	for {
		limit := batchSize
		if input.Limit > 0 {
			if remaining := input.Limit - result.Processed; remaining < limit {
				limit = remaining
			}
		}
		if limit <= 0 {
			break
		}

		batch, err := s.matches.ListFinished(ctx, match.FinishedFilter{
			SeasonID: input.SeasonID,
			MatchIDs: input.MatchIDs,
			AfterID:  afterID,
			Limit:    limit,
		})
		if err != nil {
			return result, fmt.Errorf("list finished matches: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		ids := make([]int64, 0, len(batch))
		for _, m := range batch {
			ids = append(ids, m.ID)
			if m.ID > afterID {
				afterID = m.ID
			}
		}

		err = runPerMatch(ctx, cfg, ids, func(ctx context.Context, matchID int64) {
			res, err := s.SyncLivePositionsAndKits(ctx, matchID, ModeFinishedRepair)

			mu.Lock()
			defer mu.Unlock()
			result.Processed++
			switch {
			case err != nil:
				reason := err.Error()
				if errors.Is(err, ErrSyncDisabled) {
					reason = "sync_disabled"
				}
				result.FailedGames = append(result.FailedGames, FailedGame{MatchID: matchID, Reason: reason})
			case res.Skipped:
				result.Skipped++
				result.FailedGames = append(result.FailedGames, FailedGame{MatchID: matchID, Reason: res.SkipReason})
			default:
				result.PositionsUpdated += res.PositionsUpdated
				result.KitColorsUpdated += res.KitColorsUpdated
				if res.Changed() {
					result.UpdatedGames++
				}
			}
		})
		if err != nil {
			return result, err
		}

		s.logger.InfoContext(ctx, "backfill batch done",
			"after_id", afterID,
			"processed", result.Processed,
			"updated_games", result.UpdatedGames,
			"failed", len(result.FailedGames),
		)
		if len(batch) < limit {
			break
		}
	}
	return result, nil
}

type LiveMetadataResult struct {
	Checked int          `json:"checked"`
	Updated int          `json:"updated"`
	Failed  []FailedItem `json:"failed,omitempty"`
}

// SyncLiveFormations fills missing formations of a season's matches from the
// live lineup documents.
func (s *LineupSyncService) SyncLiveFormations(ctx context.Context, seasonID int64) (LiveMetadataResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupSyncService.SyncLiveFormations", seasonAttr(seasonID))
	defer span.End()

	return s.fillLiveMetadata(ctx, seasonID,
		func(m match.Match) bool { return m.HomeFormation == "" || m.AwayFormation == "" },
		func(ctx context.Context, m match.Match) (match.LiveMetadata, error) {
			var meta match.LiveMetadata
			for _, side := range []lineup.Side{lineup.SideHome, lineup.SideAway} {
				feed, err := s.live.FetchLiveLineup(ctx, m.SotaID, side)
				if err != nil {
					return meta, err
				}
				formation, _ := sideFormation(feed, feedStarterEntries(feed))
				if side == lineup.SideHome {
					meta.HomeFormation = formation
				} else {
					meta.AwayFormation = formation
				}
			}
			return meta, nil
		},
	)
}

// SyncLiveMetadata fills missing stadium and kickoff time from the home live
// lineup document.
func (s *LineupSyncService) SyncLiveMetadata(ctx context.Context, seasonID int64) (LiveMetadataResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupSyncService.SyncLiveMetadata", seasonAttr(seasonID))
	defer span.End()

	return s.fillLiveMetadata(ctx, seasonID,
		func(m match.Match) bool { return m.Stadium == "" || m.KickoffTime == "" },
		func(ctx context.Context, m match.Match) (match.LiveMetadata, error) {
			feed, err := s.live.FetchLiveLineup(ctx, m.SotaID, lineup.SideHome)
			if err != nil {
				return match.LiveMetadata{}, err
			}
			meta := match.LiveMetadata{Stadium: feed.Stadium}
			if _, ok := match.ParseClock(feed.KickoffTime); ok {
				meta.KickoffTime = feed.KickoffTime
			}
			return meta, nil
		},
	)
}

func (s *LineupSyncService) fillLiveMetadata(
	ctx context.Context,
	seasonID int64,
	needs func(match.Match) bool,
	read func(ctx context.Context, m match.Match) (match.LiveMetadata, error),
) (LiveMetadataResult, error) {
	var result LiveMetadataResult
	if seasonID <= 0 {
		return result, fmt.Errorf("%w: season id must be greater than zero", ErrInvalidInput)
	}
	if err := s.gate.check(ctx, seasonID); err != nil {
		return result, err
	}

	matches, err := s.matches.ListBySeason(ctx, seasonID)
	if err != nil {
		return result, fmt.Errorf("list season matches: %w", err)
	}
	byID := make(map[int64]match.Match, len(matches))
	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		if m.SotaID == "" || !needs(m) {
			continue
		}
		byID[m.ID] = m
		ids = append(ids, m.ID)
	}

	var mu sync.Mutex
	fail := func(matchID int64, err error) {
		mu.Lock()
		defer mu.Unlock()
		result.Failed = append(result.Failed, FailedItem{Key: strconv.FormatInt(matchID, 10), Reason: err.Error()})
	}
	err = runPerMatch(ctx, s.cfg, ids, func(ctx context.Context, matchID int64) {
		meta, err := read(ctx, byID[matchID])
		if err != nil {
			fail(matchID, err)
			return
		}
		mu.Lock()
		result.Checked++
		mu.Unlock()
		if meta.IsEmpty() {
			return
		}
		changed, err := s.matches.UpdateLiveMetadata(ctx, matchID, meta)
		if err != nil {
			fail(matchID, err)
			return
		}
		if changed {
			mu.Lock()
			result.Updated++
			mu.Unlock()
		}
	})
	return result, err
}

// feedStarterEntries turns the starters of a live document into entries for
// formation inference.
func feedStarterEntries(feed ExternalLineupFeed) []lineup.Entry {
	out := make([]lineup.Entry, 0, len(feed.Starters))
	for _, row := range feed.Starters {
		out = append(out, lineup.Entry{Role: lineup.RoleStarter, Amplua: row.Amplua})
	}
	return out
}
