package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/player"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

type membershipKey struct {
	playerID int64
	teamID   int64
	seasonID int64
}

type PlayerRepository struct {
	mu          sync.RWMutex
	players     map[int64]player.Player
	bySotaID    map[string]int64
	memberships map[membershipKey]player.Membership
	nextID      int64
}

func NewPlayerRepository(players ...player.Player) *PlayerRepository {
	r := &PlayerRepository{
		players:     make(map[int64]player.Player, len(players)),
		bySotaID:    make(map[string]int64, len(players)),
		memberships: make(map[membershipKey]player.Membership),
	}
	for _, item := range players {
		r.put(item)
	}
	return r
}

func (r *PlayerRepository) put(item player.Player) player.Player {
	if item.ID == 0 {
		r.nextID++
		item.ID = r.nextID
	} else if item.ID > r.nextID {
		r.nextID = item.ID
	}
	r.players[item.ID] = item
	if item.SotaID != "" {
		r.bySotaID[strings.ToLower(item.SotaID)] = item.ID
	}
	return item
}

func (r *PlayerRepository) GetBySotaID(_ context.Context, sotaID string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySotaID[strings.ToLower(sotaID)]
	if !ok {
		return player.Player{}, false, nil
	}
	return r.players[id], true, nil
}

func (r *PlayerRepository) ListBySotaIDs(_ context.Context, sotaIDs []string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(sotaIDs))
	seen := make(map[int64]struct{}, len(sotaIDs))
	for _, sotaID := range sotaIDs {
		id, ok := r.bySotaID[strings.ToLower(sotaID)]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, r.players[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PlayerRepository) ListByIDs(_ context.Context, ids []int64) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(ids))
	for _, id := range uniqueSorted(ids) {
		if item, ok := r.players[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *PlayerRepository) UpsertFromFeed(_ context.Context, items []player.Player) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, item := range items {
		if item.SotaID == "" {
			continue
		}
		item.ID = r.bySotaID[strings.ToLower(item.SotaID)]
		if item.ID != 0 {
			item = mergePlayer(r.players[item.ID], item)
		}
		item.UpdatedAt = time.Now().UTC()
		r.put(item)
		count++
	}
	return count, nil
}

func (r *PlayerRepository) EnsureBySotaID(_ context.Context, item player.Player) (int64, bool, error) {
	if item.SotaID == "" {
		return 0, false, fmt.Errorf("%w: player sota id is required", usecase.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.bySotaID[strings.ToLower(item.SotaID)]; ok {
		return id, false, nil
	}
	item.ID = 0
	item.UpdatedAt = time.Now().UTC()
	return r.put(item).ID, true, nil
}

func (r *PlayerRepository) UpsertMemberships(_ context.Context, items []player.Membership) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		key := membershipKey{playerID: item.PlayerID, teamID: item.TeamID, seasonID: item.SeasonID}
		if existing, ok := r.memberships[key]; ok && item.Number == nil {
			item.Number = existing.Number
		}
		r.memberships[key] = item
	}
	return len(items), nil
}

func (r *PlayerRepository) ListSeasonMemberships(_ context.Context, seasonID int64) ([]player.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Membership, 0)
	for key, item := range r.memberships {
		if key.seasonID == seasonID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlayerID != out[j].PlayerID {
			return out[i].PlayerID < out[j].PlayerID
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out, nil
}

func mergePlayer(stored, incoming player.Player) player.Player {
	stored.FirstName = keepString(stored.FirstName, incoming.FirstName)
	stored.LastName = keepString(stored.LastName, incoming.LastName)
	stored.FirstNameKZ = keepString(stored.FirstNameKZ, incoming.FirstNameKZ)
	stored.LastNameKZ = keepString(stored.LastNameKZ, incoming.LastNameKZ)
	stored.FirstNameEN = keepString(stored.FirstNameEN, incoming.FirstNameEN)
	stored.LastNameEN = keepString(stored.LastNameEN, incoming.LastNameEN)
	stored.PlayerType = keepString(stored.PlayerType, incoming.PlayerType)
	stored.TopRole = keepString(stored.TopRole, incoming.TopRole)
	stored.TopRoleEN = keepString(stored.TopRoleEN, incoming.TopRoleEN)
	if incoming.Birthday != nil {
		stored.Birthday = incoming.Birthday
	}
	return stored
}
