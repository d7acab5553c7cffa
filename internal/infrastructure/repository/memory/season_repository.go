package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/matchsync/internal/domain/season"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

type SeasonRepository struct {
	mu           sync.RWMutex
	tournaments  map[int64]season.Tournament
	seasons      map[int64]season.Season
	participants map[int64]map[int64]struct{}
}

func NewSeasonRepository(seasons ...season.Season) *SeasonRepository {
	r := &SeasonRepository{
		tournaments:  make(map[int64]season.Tournament),
		seasons:      make(map[int64]season.Season, len(seasons)),
		participants: make(map[int64]map[int64]struct{}),
	}
	for _, item := range seasons {
		r.seasons[item.ID] = item
	}
	return r
}

func (r *SeasonRepository) GetByID(_ context.Context, id int64) (season.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.seasons[id]
	return item, ok, nil
}

func (r *SeasonRepository) UpsertTournaments(_ context.Context, items []season.Tournament) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		r.tournaments[item.ID] = item
	}
	return len(items), nil
}

func (r *SeasonRepository) UpsertSeasons(_ context.Context, items []season.Season) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		if existing, ok := r.seasons[item.ID]; ok {
			item.SyncEnabled = existing.SyncEnabled
		} else {
			item.SyncEnabled = false
		}
		r.seasons[item.ID] = item
	}
	return len(items), nil
}

func (r *SeasonRepository) SetSyncEnabled(_ context.Context, id int64, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.seasons[id]
	if !ok {
		return fmt.Errorf("%w: season_id=%d", usecase.ErrNotFound, id)
	}
	item.SyncEnabled = enabled
	r.seasons[id] = item
	return nil
}

func (r *SeasonRepository) ListParticipantTeamIDs(_ context.Context, seasonID int64) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedKeys(r.participants[seasonID]), nil
}

func (r *SeasonRepository) UpsertParticipants(_ context.Context, seasonID int64, teamIDs []int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.participants[seasonID]
	if !ok {
		set = make(map[int64]struct{}, len(teamIDs))
		r.participants[seasonID] = set
	}
	for _, id := range teamIDs {
		set[id] = struct{}{}
	}
	return len(teamIDs), nil
}

func sortedKeys[V any](m map[int64]V) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
