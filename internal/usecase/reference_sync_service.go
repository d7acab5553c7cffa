package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/matchsync/internal/domain/season"
	"github.com/riskibarqy/matchsync/internal/domain/team"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

type ReferenceSyncResult struct {
	Tournaments int `json:"tournaments"`
	Seasons     int `json:"seasons"`
	Teams       int `json:"teams"`
}

// ReferenceSyncService syncs tournaments, seasons, teams and season
// participants. Names are fetched in every feed locale and merged by id.
type ReferenceSyncService struct {
	feed    FeedProvider
	seasons season.Repository
	teams   team.Repository
	gate    seasonGate
	logger  *logging.Logger
}

func NewReferenceSyncService(feed FeedProvider, seasons season.Repository, teams team.Repository, logger *logging.Logger) *ReferenceSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReferenceSyncService{
		feed:    feed,
		seasons: seasons,
		teams:   teams,
		gate:    seasonGate{seasons: seasons},
		logger:  logger,
	}
}

type localized[T any] struct {
	locale Locale
	items  []T
	err    error
}

// fetchLocalized fetches all locales concurrently. The canonical locale must
// succeed; failures of the others only drop their names.
func fetchLocalized[T any](ctx context.Context, logger *logging.Logger, resource string, fetch func(ctx context.Context, locale Locale) ([]T, error)) (map[Locale][]T, error) {
	p := pool.NewWithResults[localized[T]]().WithContext(ctx)
	for _, locale := range FeedLocales {
		locale := locale
		p.Go(func(ctx context.Context) (localized[T], error) {
			items, err := fetch(ctx, locale)
			return localized[T]{locale: locale, items: items, err: err}, nil
		})
	}
	results, err := p.Wait()
	if err != nil {
		return nil, err
	}

	out := make(map[Locale][]T, len(results))
	for _, res := range results {
		if res.err != nil {
			if res.locale == FeedLocales[0] {
				return nil, fmt.Errorf("fetch %s locale=%s: %w", resource, res.locale, res.err)
			}
			logger.WarnContext(ctx, "localized fetch failed, names left empty", "resource", resource, "locale", res.locale, "error", res.err)
			continue
		}
		out[res.locale] = res.items
	}
	return out, nil
}

func (s *ReferenceSyncService) SyncTournaments(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReferenceSyncService.SyncTournaments")
	defer span.End()

	byLocale, err := fetchLocalized(ctx, s.logger, "tournaments", s.feed.FetchTournaments)
	if err != nil {
		return 0, err
	}
	kz := indexBy(byLocale[LocaleKZ], func(t ExternalTournament) int64 { return t.ID })
	en := indexBy(byLocale[LocaleEN], func(t ExternalTournament) int64 { return t.ID })

	items := make([]season.Tournament, 0, len(byLocale[LocaleRU]))
	for _, src := range byLocale[LocaleRU] {
		if src.ID <= 0 {
			continue
		}
		items = append(items, season.Tournament{
			ID:            src.ID,
			Name:          src.Name,
			NameKZ:        kz[src.ID].Name,
			NameEN:        en[src.ID].Name,
			CountryCode:   src.CountryCode,
			CountryName:   src.CountryName,
			CountryNameKZ: kz[src.ID].CountryName,
			CountryNameEN: en[src.ID].CountryName,
		})
	}

	count, err := s.seasons.UpsertTournaments(ctx, items)
	if err != nil {
		return 0, fmt.Errorf("upsert tournaments: %w", err)
	}
	s.logger.InfoContext(ctx, "tournaments synced", "count", count)
	return count, nil
}

func (s *ReferenceSyncService) SyncSeasons(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReferenceSyncService.SyncSeasons")
	defer span.End()

	byLocale, err := fetchLocalized(ctx, s.logger, "seasons", s.feed.FetchSeasons)
	if err != nil {
		return 0, err
	}
	kz := indexBy(byLocale[LocaleKZ], func(t ExternalSeason) int64 { return t.ID })
	en := indexBy(byLocale[LocaleEN], func(t ExternalSeason) int64 { return t.ID })

	items := make([]season.Season, 0, len(byLocale[LocaleRU]))
	for _, src := range byLocale[LocaleRU] {
		if src.ID <= 0 {
			continue
		}
		items = append(items, season.Season{
			ID:           src.ID,
			TournamentID: src.TournamentID,
			Name:         src.Name,
			NameKZ:       kz[src.ID].Name,
			NameEN:       en[src.ID].Name,
			DateStart:    src.DateStart,
			DateEnd:      src.DateEnd,
		})
	}

	count, err := s.seasons.UpsertSeasons(ctx, items)
	if err != nil {
		return 0, fmt.Errorf("upsert seasons: %w", err)
	}
	s.logger.InfoContext(ctx, "seasons synced", "count", count)
	return count, nil
}

func (s *ReferenceSyncService) SyncTeams(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReferenceSyncService.SyncTeams")
	defer span.End()

	byLocale, err := fetchLocalized(ctx, s.logger, "teams", func(ctx context.Context, locale Locale) ([]ExternalTeam, error) {
		return s.feed.FetchTeams(ctx, locale, 0)
	})
	if err != nil {
		return 0, err
	}

	stored, err := s.teams.UpsertFromFeed(ctx, mergeTeams(byLocale))
	if err != nil {
		return 0, fmt.Errorf("upsert teams: %w", err)
	}
	s.logger.InfoContext(ctx, "teams synced", "count", len(stored))
	return len(stored), nil
}

// SyncParticipants records which teams play the season, creating teams
// that are unknown locally.
func (s *ReferenceSyncService) SyncParticipants(ctx context.Context, seasonID int64) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReferenceSyncService.SyncParticipants", seasonAttr(seasonID))
	defer span.End()

	if seasonID <= 0 {
		return 0, fmt.Errorf("%w: season id must be greater than zero", ErrInvalidInput)
	}
	if err := s.gate.check(ctx, seasonID); err != nil {
		return 0, err
	}

	external, err := s.feed.FetchTeams(ctx, FeedLocales[0], seasonID)
	if err != nil {
		return 0, fmt.Errorf("fetch season teams season_id=%d: %w", seasonID, err)
	}
	teamIDs, err := ensureTeams(ctx, s.teams, external)
	if err != nil {
		return 0, err
	}

	ids := make([]int64, 0, len(teamIDs))
	for _, id := range teamIDs {
		ids = append(ids, id)
	}
	count, err := s.seasons.UpsertParticipants(ctx, seasonID, uniqueIDs(ids))
	if err != nil {
		return 0, fmt.Errorf("upsert season participants: %w", err)
	}
	return count, nil
}

// SyncAll runs tournaments, seasons and teams in dependency order.
func (s *ReferenceSyncService) SyncAll(ctx context.Context) (ReferenceSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReferenceSyncService.SyncAll")
	defer span.End()

	var (
		result ReferenceSyncResult
		err    error
	)
	if result.Tournaments, err = s.SyncTournaments(ctx); err != nil {
		return result, err
	}
	if result.Seasons, err = s.SyncSeasons(ctx); err != nil {
		return result, err
	}
	if result.Teams, err = s.SyncTeams(ctx); err != nil {
		return result, err
	}
	return result, nil
}

func mergeTeams(byLocale map[Locale][]ExternalTeam) []team.Team {
	kz := indexBy(byLocale[LocaleKZ], func(t ExternalTeam) int64 { return t.ID })
	en := indexBy(byLocale[LocaleEN], func(t ExternalTeam) int64 { return t.ID })

	out := make([]team.Team, 0, len(byLocale[LocaleRU]))
	for _, src := range byLocale[LocaleRU] {
		if src.ID <= 0 {
			continue
		}
		out = append(out, team.Team{
			SotaID:  int64Ptr(src.ID),
			Name:    src.Name,
			NameKZ:  kz[src.ID].Name,
			NameEN:  en[src.ID].Name,
			City:    src.City,
			CityKZ:  kz[src.ID].City,
			CityEN:  en[src.ID].City,
			LogoURL: src.LogoURL,
		})
	}
	return out
}

// ensureTeams maps upstream team ids to local ids, creating missing teams
// from the given feed rows.
func ensureTeams(ctx context.Context, repo team.Repository, external []ExternalTeam) (map[int64]int64, error) {
	sotaIDs := make([]int64, 0, len(external))
	for _, t := range external {
		if t.ID > 0 {
			sotaIDs = append(sotaIDs, t.ID)
		}
	}
	known, err := repo.ListBySotaIDs(ctx, sotaIDs)
	if err != nil {
		return nil, fmt.Errorf("list teams by sota id: %w", err)
	}

	out := make(map[int64]int64, len(sotaIDs))
	for _, t := range known {
		if t.SotaID != nil {
			out[*t.SotaID] = t.ID
		}
	}

	missing := make([]team.Team, 0)
	for _, t := range external {
		if _, ok := out[t.ID]; ok || t.ID <= 0 {
			continue
		}
		missing = append(missing, team.Team{SotaID: int64Ptr(t.ID), Name: t.Name, City: t.City, LogoURL: t.LogoURL})
	}
	if len(missing) == 0 {
		return out, nil
	}

	created, err := repo.UpsertFromFeed(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("create teams: %w", err)
	}
	for _, t := range created {
		if t.SotaID != nil {
			out[*t.SotaID] = t.ID
		}
	}
	return out, nil
}

func indexBy[T any, K comparable](items []T, key func(T) K) map[K]T {
	out := make(map[K]T, len(items))
	for _, item := range items {
		out[key(item)] = item
	}
	return out
}
