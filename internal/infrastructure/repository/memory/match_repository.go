package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/lineup"
	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

type MatchRepository struct {
	mu       sync.RWMutex
	matches  map[int64]match.Match
	bySotaID map[string]int64
	nextID   int64
}

func NewMatchRepository(matches ...match.Match) *MatchRepository {
	r := &MatchRepository{
		matches:  make(map[int64]match.Match, len(matches)),
		bySotaID: make(map[string]int64, len(matches)),
	}
	for _, item := range matches {
		r.put(item)
	}
	return r
}

func (r *MatchRepository) put(item match.Match) match.Match {
	if item.ID == 0 {
		r.nextID++
		item.ID = r.nextID
	} else if item.ID > r.nextID {
		r.nextID = item.ID
	}
	r.matches[item.ID] = item
	if item.SotaID != "" {
		r.bySotaID[strings.ToLower(item.SotaID)] = item.ID
	}
	return item
}

func (r *MatchRepository) GetByID(_ context.Context, id int64) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.matches[id]
	return item, ok, nil
}

func (r *MatchRepository) GetBySotaID(_ context.Context, sotaID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySotaID[strings.ToLower(sotaID)]
	if !ok {
		return match.Match{}, false, nil
	}
	return r.matches[id], true, nil
}

func (r *MatchRepository) ListBySeason(_ context.Context, seasonID int64) ([]match.Match, error) {
	return r.filter(func(m match.Match) bool { return m.SeasonID == seasonID }), nil
}

func (r *MatchRepository) ListByStatus(_ context.Context, status match.Status) ([]match.Match, error) {
	return r.filter(func(m match.Match) bool { return m.Status == status }), nil
}

func (r *MatchRepository) ListByDateRange(_ context.Context, from, to time.Time, status match.Status) ([]match.Match, error) {
	fromDay, toDay := dayOf(from), dayOf(to)
	return r.filter(func(m match.Match) bool {
		if m.Status != status || m.Date.IsZero() {
			return false
		}
		day := dayOf(m.Date)
		return !day.Before(fromDay) && !day.After(toDay)
	}), nil
}

func (r *MatchRepository) ListFinished(_ context.Context, filter match.FinishedFilter) ([]match.Match, error) {
	var ids map[int64]struct{}
	if len(filter.MatchIDs) > 0 {
		ids = make(map[int64]struct{}, len(filter.MatchIDs))
		for _, id := range filter.MatchIDs {
			ids[id] = struct{}{}
		}
	}

	out := r.filter(func(m match.Match) bool {
		if m.Status != match.StatusFinished || m.ID <= filter.AfterID {
			return false
		}
		if ids != nil {
			_, ok := ids[m.ID]
			return ok
		}
		return filter.SeasonID == nil || m.SeasonID == *filter.SeasonID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *MatchRepository) filter(keep func(match.Match) bool) []match.Match {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, item := range r.matches {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MatchRepository) UpsertFromFeed(_ context.Context, items []match.Match, repair bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, item := range items {
		if item.SotaID == "" {
			return 0, fmt.Errorf("%w: match sota id is required", usecase.ErrInvalidInput)
		}
		id, ok := r.bySotaID[strings.ToLower(item.SotaID)]
		if ok {
			item = mergeMatch(r.matches[id], item, repair)
		} else {
			item.ID = 0
		}
		item.UpdatedAt = now
		r.put(item)
	}
	return len(items), nil
}

// mergeMatch applies a feed row onto a stored match. Finished results are
// frozen unless repair is set and a live match never falls back to created.
func mergeMatch(stored, incoming match.Match, repair bool) match.Match {
	out := stored
	out.SeasonID = incoming.SeasonID
	out.Tour = incoming.Tour
	out.Date = incoming.Date
	out.KickoffTime = keepString(stored.KickoffTime, incoming.KickoffTime)
	out.HomeTeamID = incoming.HomeTeamID
	out.AwayTeamID = incoming.AwayTeamID
	out.Stadium = keepString(stored.Stadium, incoming.Stadium)
	if incoming.Visitors != nil {
		out.Visitors = incoming.Visitors
	}
	out.HasStats = stored.HasStats || incoming.HasStats

	switch {
	case stored.Status == match.StatusFinished && !repair:
	case stored.Status == match.StatusLive && incoming.Status == match.StatusCreated:
		out.HomeScore = incoming.HomeScore
		out.AwayScore = incoming.AwayScore
	default:
		out.Status = incoming.Status
		out.HomeScore = incoming.HomeScore
		out.AwayScore = incoming.AwayScore
	}
	return out
}

func (r *MatchRepository) UpdateStatus(_ context.Context, id int64, status match.Status) error {
	return r.update(id, func(m *match.Match) { m.Status = status })
}

func (r *MatchRepository) MarkHasStats(_ context.Context, id int64) error {
	return r.update(id, func(m *match.Match) { m.HasStats = true })
}

func (r *MatchRepository) UpdateLiveMetadata(_ context.Context, id int64, meta match.LiveMetadata) (bool, error) {
	changed := false
	fill := func(dst *string, value string) {
		if *dst == "" && value != "" {
			*dst = value
			changed = true
		}
	}
	err := r.update(id, func(m *match.Match) {
		fill(&m.HomeFormation, meta.HomeFormation)
		fill(&m.AwayFormation, meta.AwayFormation)
		fill(&m.Stadium, meta.Stadium)
		fill(&m.KickoffTime, meta.KickoffTime)
	})
	return changed, err
}

func (r *MatchRepository) update(id int64, apply func(*match.Match)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.matches[id]
	if !ok {
		return fmt.Errorf("%w: match_id=%d", usecase.ErrNotFound, id)
	}
	apply(&item)
	item.UpdatedAt = time.Now().UTC()
	r.matches[id] = item
	return nil
}

// applyLineupBatch copies batch metadata onto the match row. Nil pointers
// keep the stored value.
func (r *MatchRepository) applyLineupBatch(batch lineup.MatchLineupBatch) error {
	return r.update(batch.MatchID, func(m *match.Match) {
		setIfPresent(&m.HomeFormation, batch.HomeFormation)
		setIfPresent(&m.AwayFormation, batch.AwayFormation)
		setIfPresent(&m.HomeKitColor, batch.HomeKitColor)
		setIfPresent(&m.AwayKitColor, batch.AwayKitColor)
		m.HasLineup = m.HasLineup || batch.HasLineup
		if batch.LiveSyncedAt != nil {
			at := *batch.LiveSyncedAt
			m.LiveSyncedAt = &at
		}
	})
}

func setIfPresent(dst *string, value *string) {
	if value != nil {
		*dst = *value
	}
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
