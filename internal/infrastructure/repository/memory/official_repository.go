package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/matchsync/internal/domain/official"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

type coachKey struct {
	firstName string
	lastName  string
}

type OfficialRepository struct {
	mu            sync.RWMutex
	referees      map[int64]official.Referee
	matchReferees map[official.MatchReferee]struct{}
	coaches       map[coachKey]int64
	teamCoaches   map[official.TeamCoach]struct{}
	nextID        int64
}

func NewOfficialRepository(referees ...official.Referee) *OfficialRepository {
	r := &OfficialRepository{
		referees:      make(map[int64]official.Referee, len(referees)),
		matchReferees: make(map[official.MatchReferee]struct{}),
		coaches:       make(map[coachKey]int64),
		teamCoaches:   make(map[official.TeamCoach]struct{}),
	}
	for _, item := range referees {
		if item.ID > r.nextID {
			r.nextID = item.ID
		}
		r.referees[item.ID] = item
	}
	return r
}

func (r *OfficialRepository) ListReferees(_ context.Context) ([]official.Referee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]official.Referee, 0, len(r.referees))
	for _, item := range r.referees {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *OfficialRepository) CreateReferee(_ context.Context, item official.Referee) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.referees {
		if existing.FirstName == item.FirstName && existing.LastName == item.LastName {
			return 0, fmt.Errorf("%w: referee %s %s", usecase.ErrAlreadyExists, item.FirstName, item.LastName)
		}
	}
	r.nextID++
	item.ID = r.nextID
	r.referees[item.ID] = item
	return item.ID, nil
}

func (r *OfficialRepository) UpsertMatchReferees(_ context.Context, items []official.MatchReferee) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := 0
	for _, item := range items {
		if _, ok := r.matchReferees[item]; ok {
			continue
		}
		r.matchReferees[item] = struct{}{}
		added++
	}
	return added, nil
}

func (r *OfficialRepository) EnsureCoach(_ context.Context, firstName, lastName string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := coachKey{firstName: firstName, lastName: lastName}
	if id, ok := r.coaches[key]; ok {
		return id, nil
	}
	r.nextID++
	r.coaches[key] = r.nextID
	return r.nextID, nil
}

func (r *OfficialRepository) UpsertTeamCoaches(_ context.Context, items []official.TeamCoach) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := 0
	for _, item := range items {
		if _, ok := r.teamCoaches[item]; ok {
			continue
		}
		r.teamCoaches[item] = struct{}{}
		added++
	}
	return added, nil
}

// MatchReferees returns the assignments of one match.
func (r *OfficialRepository) MatchReferees(matchID int64) []official.MatchReferee {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]official.MatchReferee, 0)
	for item := range r.matchReferees {
		if item.MatchID == matchID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out
}

// TeamCoaches returns the coaching staff linked to a team for a season.
func (r *OfficialRepository) TeamCoaches(teamID, seasonID int64) []official.TeamCoach {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]official.TeamCoach, 0)
	for item := range r.teamCoaches {
		if item.TeamID == teamID && item.SeasonID == seasonID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CoachID < out[j].CoachID })
	return out
}
