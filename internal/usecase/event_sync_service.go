package usecase

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/riskibarqy/matchsync/internal/domain/lineup"
	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/domain/matchevent"
	"github.com/riskibarqy/matchsync/internal/domain/player"
	"github.com/riskibarqy/matchsync/internal/domain/season"
	"github.com/riskibarqy/matchsync/internal/domain/team"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/riskibarqy/matchsync/internal/platform/textnorm"
)

type MatchEventsResult struct {
	MatchID int64 `json:"match_id"`
	Fetched int   `json:"fetched"`
	Added   int   `json:"added"`
	// Duplicates counts rows already stored or repeated within the payload.
	Duplicates int `json:"duplicates"`
	Unknown    int `json:"unknown_actions"`
	// Events are the rows submitted for insert after deduplication.
	Events []matchevent.Event `json:"events,omitempty"`
}

type SeasonEventsResult struct {
	MatchesSynced int          `json:"matches_synced"`
	EventsAdded   int          `json:"events_added"`
	Errors        []FailedItem `json:"errors,omitempty"`
}

// EventSyncService appends live match events. Polling the same feed twice
// never stores an event twice.
type EventSyncService struct {
	live     LiveFeed
	matches  match.Repository
	events   matchevent.Repository
	lineups  lineup.Repository
	players  player.Repository
	teams    team.Repository
	resolver *Resolver
	gate     seasonGate
	cfg      SyncConfig
	logger   *logging.Logger
}

func NewEventSyncService(
	live LiveFeed,
	matches match.Repository,
	events matchevent.Repository,
	lineups lineup.Repository,
	players player.Repository,
	teams team.Repository,
	seasons season.Repository,
	resolver *Resolver,
	cfg SyncConfig,
	logger *logging.Logger,
) *EventSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &EventSyncService{
		live:     live,
		matches:  matches,
		events:   events,
		lineups:  lineups,
		players:  players,
		teams:    teams,
		resolver: resolver,
		gate:     seasonGate{seasons: seasons},
		cfg:      normalizeSyncConfig(cfg),
		logger:   logger,
	}
}

// eventContext is what rows of one match are resolved against.
type eventContext struct {
	teams      []team.Team
	entries    []lineup.Entry
	candidates []PlayerCandidate
}

func (s *EventSyncService) SyncMatchEvents(ctx context.Context, matchID int64) (MatchEventsResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventSyncService.SyncMatchEvents", matchAttr(matchID))
	defer span.End()
	ctx = logging.ContextWith(ctx, "match_id", matchID)

	result := MatchEventsResult{MatchID: matchID}
	m, err := loadSyncableMatch(ctx, s.matches, s.gate, matchID)
	if err != nil {
		return result, err
	}

	rows, err := s.live.FetchLiveEvents(ctx, m.SotaID)
	if err != nil {
		return result, fmt.Errorf("fetch live events match_id=%d: %w", matchID, err)
	}
	result.Fetched = len(rows)
	if len(rows) == 0 {
		return result, nil
	}

	existing, err := s.events.ListByMatch(ctx, matchID)
	if err != nil {
		return result, fmt.Errorf("list match events: %w", err)
	}
	ec, err := s.loadEventContext(ctx, m)
	if err != nil {
		return result, err
	}

	seen := matchevent.NewSignatureSet(existing)
	pending := make([]matchevent.Event, 0, len(rows))
	for _, row := range rows {
		typ, ok := matchevent.TypeFromAction(row.Action)
		if !ok {
			result.Unknown++
			continue
		}
		event := s.buildEvent(matchID, typ, row, ec)
		if seen.Contains(event) {
			result.Duplicates++
			continue
		}
		seen.Add(event)
		pending = append(pending, event)
	}
	if len(pending) == 0 {
		return result, nil
	}

	linkAssists(existing, pending)
	result.Events = pending

	if result.Added, err = s.events.InsertBatch(ctx, matchID, pending); err != nil {
		return result, fmt.Errorf("insert match events: %w", err)
	}
	result.Duplicates += len(pending) - result.Added
	if result.Added > 0 {
		s.logger.InfoContext(ctx, "match events added", "added", result.Added)
	}
	return result, nil
}

func (s *EventSyncService) loadEventContext(ctx context.Context, m match.Match) (eventContext, error) {
	var ec eventContext
	var err error

	if ec.teams, err = s.teams.GetByIDs(ctx, m.TeamIDs()); err != nil {
		return ec, fmt.Errorf("get match teams: %w", err)
	}
	if ec.entries, err = s.lineups.ListByMatch(ctx, m.ID); err != nil {
		return ec, fmt.Errorf("list match lineup: %w", err)
	}

	ids := make([]int64, 0, len(ec.entries))
	for _, e := range ec.entries {
		ids = append(ids, e.PlayerID)
	}
	if len(ids) == 0 {
		return ec, nil
	}
	players, err := s.players.ListByIDs(ctx, ids)
	if err != nil {
		return ec, fmt.Errorf("list lineup players: %w", err)
	}
	byID := indexBy(players, func(p player.Player) int64 { return p.ID })
	for _, e := range ec.entries {
		if p, ok := byID[e.PlayerID]; ok {
			ec.candidates = append(ec.candidates, PlayerCandidate{Player: p, TeamID: e.TeamID})
		}
	}
	return ec, nil
}

func (s *EventSyncService) buildEvent(matchID int64, typ matchevent.Type, row ExternalLiveEvent, ec eventContext) matchevent.Event {
	half := row.Half
	if half <= 0 {
		half = 1
	}
	event := matchevent.Event{
		MatchID:      matchID,
		Half:         half,
		Minute:       row.Minute,
		Type:         typ,
		TeamName:     row.Team1,
		PlayerNumber: row.Number1,
		PlayerName:   textnorm.JoinName(row.FirstName1, row.LastName1),
	}
	event.PlayerID, event.TeamID = s.resolveParticipant(row.Team1, row.FirstName1, row.LastName1, ec)

	if !typ.KeepsSecondPlayer() {
		return event
	}
	team2 := row.Team2
	if textnorm.Lower(team2) == "" {
		team2 = row.Team1
	}
	event.Player2Number = row.Number2
	event.Player2Name = textnorm.JoinName(row.FirstName2, row.LastName2)
	event.Player2TeamName = team2
	event.Player2ID, _ = s.resolveParticipant(team2, row.FirstName2, row.LastName2, ec)
	return event
}

// resolveParticipant resolves a player by name within the named team, then
// falls back to the player's lineup team when the name matches no team.
func (s *EventSyncService) resolveParticipant(teamName, first, last string, ec eventContext) (*int64, *int64) {
	teamRes := s.resolver.ResolveTeam(teamName, ec.teams)
	playerRes := ResolvePlayerByName(first, last, teamRes.IDPtr(), ec.candidates)
	if !teamRes.Resolved {
		teamRes = s.resolver.ResolveEventTeam(teamName, playerRes.IDPtr(), ec.entries, ec.teams)
	}
	return playerRes.IDPtr(), teamRes.IDPtr()
}

type assistKey struct {
	half   int
	minute int
	scorer string
}

type assistRef struct {
	playerID *int64
	name     string
}

// linkAssists attaches the assisting player to pending goals. An assist row
// names the assisting player first and the scorer second.
func linkAssists(existing, pending []matchevent.Event) {
	assists := make(map[assistKey]assistRef)
	collect := func(events []matchevent.Event) {
		for _, e := range events {
			if e.Type != matchevent.TypeAssist {
				continue
			}
			scorer := matchevent.NormalizeName(e.Player2Name)
			if scorer == "" {
				continue
			}
			assists[assistKey{half: e.Half, minute: e.Minute, scorer: scorer}] = assistRef{playerID: e.PlayerID, name: e.PlayerName}
		}
	}
	collect(existing)
	collect(pending)
	if len(assists) == 0 {
		return
	}

	for i := range pending {
		e := &pending[i]
		if e.Type != matchevent.TypeGoal && e.Type != matchevent.TypePenalty {
			continue
		}
		ref, ok := assists[assistKey{half: e.Half, minute: e.Minute, scorer: matchevent.NormalizeName(e.PlayerName)}]
		if !ok {
			continue
		}
		e.AssistPlayerID = ref.playerID
		e.AssistPlayerName = ref.name
	}
}

// SyncSeasonEvents polls events of every live or finished match of a season.
// One failing match is reported and the others continue.
func (s *EventSyncService) SyncSeasonEvents(ctx context.Context, seasonID int64) (SeasonEventsResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventSyncService.SyncSeasonEvents", seasonAttr(seasonID))
	defer span.End()

	var result SeasonEventsResult
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
	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		if m.SotaID == "" || (m.Status != match.StatusLive && m.Status != match.StatusFinished) {
			continue
		}
		ids = append(ids, m.ID)
	}

	var mu sync.Mutex
	err = runPerMatch(ctx, s.cfg, ids, func(ctx context.Context, matchID int64) {
		res, err := s.SyncMatchEvents(ctx, matchID)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			s.logger.WarnContext(ctx, "match events sync failed", "match_id", matchID, "error", err)
			result.Errors = append(result.Errors, FailedItem{Key: strconv.FormatInt(matchID, 10), Reason: err.Error()})
			return
		}
		result.MatchesSynced++
		result.EventsAdded += res.Added
	})
	return result, err
}
