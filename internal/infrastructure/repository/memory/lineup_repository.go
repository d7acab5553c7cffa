package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/lineup"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

type lineupKey struct {
	matchID  int64
	playerID int64
}

// LineupRepository stores match lineups and writes batch metadata through to
// the match repository.
type LineupRepository struct {
	mu      sync.RWMutex
	items   map[lineupKey]lineup.Entry
	matches *MatchRepository
}

func NewLineupRepository(matches *MatchRepository) *LineupRepository {
	return &LineupRepository{
		items:   make(map[lineupKey]lineup.Entry),
		matches: matches,
	}
}

func (r *LineupRepository) ListByMatch(_ context.Context, matchID int64) ([]lineup.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]lineup.Entry, 0)
	for key, item := range r.items {
		if key.matchID == matchID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TeamID != out[j].TeamID {
			return out[i].TeamID < out[j].TeamID
		}
		if out[i].Role != out[j].Role {
			return out[i].Role == lineup.RoleStarter
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

func (r *LineupRepository) SaveMatchLineup(_ context.Context, batch lineup.MatchLineupBatch) error {
	if batch.MatchID <= 0 {
		return fmt.Errorf("%w: match id must be greater than zero", usecase.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.matches != nil {
		if err := r.matches.applyLineupBatch(batch); err != nil {
			return fmt.Errorf("update match lineup metadata: %w", err)
		}
	}

	now := time.Now().UTC()
	for _, entry := range batch.Entries {
		entry.MatchID = batch.MatchID
		key := lineupKey{matchID: entry.MatchID, playerID: entry.PlayerID}
		if stored, ok := r.items[key]; ok {
			entry = mergeEntry(stored, entry)
		}
		entry.UpdatedAt = now
		r.items[key] = entry
	}
	return nil
}

func mergeEntry(stored, incoming lineup.Entry) lineup.Entry {
	if incoming.Amplua == "" {
		incoming.Amplua = stored.Amplua
	}
	if incoming.FieldPosition == "" {
		incoming.FieldPosition = stored.FieldPosition
	}
	if incoming.ShirtNumber == nil {
		incoming.ShirtNumber = stored.ShirtNumber
	}
	return incoming
}
