package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/team"
)

type TeamRepository struct {
	mu       sync.RWMutex
	teams    map[int64]team.Team
	bySotaID map[int64]int64
	nextID   int64
}

func NewTeamRepository(teams ...team.Team) *TeamRepository {
	r := &TeamRepository{
		teams:    make(map[int64]team.Team, len(teams)),
		bySotaID: make(map[int64]int64, len(teams)),
	}
	for _, item := range teams {
		r.put(item)
	}
	return r
}

func (r *TeamRepository) put(item team.Team) team.Team {
	if item.ID == 0 {
		r.nextID++
		item.ID = r.nextID
	} else if item.ID > r.nextID {
		r.nextID = item.ID
	}
	r.teams[item.ID] = item
	if item.SotaID != nil {
		r.bySotaID[*item.SotaID] = item.ID
	}
	return item
}

func (r *TeamRepository) GetByIDs(_ context.Context, ids []int64) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(ids))
	for _, id := range uniqueSorted(ids) {
		if item, ok := r.teams[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *TeamRepository) ListBySotaIDs(_ context.Context, sotaIDs []int64) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(sotaIDs))
	for _, sotaID := range uniqueSorted(sotaIDs) {
		if id, ok := r.bySotaID[sotaID]; ok {
			out = append(out, r.teams[id])
		}
	}
	return out, nil
}

func (r *TeamRepository) UpsertFromFeed(_ context.Context, items []team.Team) ([]team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]team.Team, 0, len(items))
	for _, item := range items {
		item.ID = 0
		if item.SotaID != nil {
			if id, ok := r.bySotaID[*item.SotaID]; ok {
				item = mergeTeam(r.teams[id], item)
			}
		}
		item.UpdatedAt = time.Now().UTC()
		out = append(out, r.put(item))
	}
	return out, nil
}

// mergeTeam keeps stored values the incoming row leaves empty.
func mergeTeam(stored, incoming team.Team) team.Team {
	stored.Name = keepString(stored.Name, incoming.Name)
	stored.NameKZ = keepString(stored.NameKZ, incoming.NameKZ)
	stored.NameEN = keepString(stored.NameEN, incoming.NameEN)
	stored.City = keepString(stored.City, incoming.City)
	stored.CityKZ = keepString(stored.CityKZ, incoming.CityKZ)
	stored.CityEN = keepString(stored.CityEN, incoming.CityEN)
	stored.LogoURL = keepString(stored.LogoURL, incoming.LogoURL)
	return stored
}

func keepString(stored, incoming string) string {
	if incoming == "" {
		return stored
	}
	return incoming
}

func uniqueSorted(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
