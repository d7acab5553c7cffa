package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/matchevent"
)

type EventRepository struct {
	mu     sync.RWMutex
	events map[int64][]matchevent.Event
	nextID int64
}

func NewEventRepository() *EventRepository {
	return &EventRepository{events: make(map[int64][]matchevent.Event)}
}

func (r *EventRepository) ListByMatch(_ context.Context, matchID int64) ([]matchevent.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]matchevent.Event(nil), r.events[matchID]...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Half != out[j].Half {
			return out[i].Half < out[j].Half
		}
		if out[i].Minute != out[j].Minute {
			return out[i].Minute < out[j].Minute
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *EventRepository) InsertBatch(_ context.Context, matchID int64, events []matchevent.Event) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.events[matchID]
	seen := matchevent.NewSignatureSet(stored)
	now := time.Now().UTC()
	added := 0
	for _, e := range events {
		if seen.Contains(e) {
			continue
		}
		r.nextID++
		e.ID = r.nextID
		e.MatchID = matchID
		e.CreatedAt = now
		stored = append(stored, e)
		seen.Add(e)
		added++
	}
	r.events[matchID] = stored
	return added, nil
}
