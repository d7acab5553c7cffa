package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/lineup"
	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/domain/official"
	"github.com/riskibarqy/matchsync/internal/domain/player"
	"github.com/riskibarqy/matchsync/internal/domain/season"
	"github.com/riskibarqy/matchsync/internal/platform/id"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/riskibarqy/matchsync/internal/platform/textnorm"
)

const SkipMissingSide = "skipped_missing_side"

type PreGameLineupResult struct {
	MatchID        int64                `json:"match_id"`
	Referees       int                  `json:"referees"`
	Coaches        int                  `json:"coaches"`
	Lineups        int                  `json:"lineups"`
	PlayersCreated int                  `json:"players_created"`
	Positions      *LivePositionsResult `json:"positions,omitempty"`
}

// SidePositions reports what one side's live document contributed.
type SidePositions struct {
	Side              lineup.Side `json:"side"`
	Available         bool        `json:"available"`
	Formation         string      `json:"formation,omitempty"`
	FormationInferred bool        `json:"formation_inferred"`
	KitColor          string      `json:"kit_color,omitempty"`
	PositionsUpdated  int         `json:"positions_updated"`
	PlayersAdded      int         `json:"players_added"`
	PlayersCreated    int         `json:"players_created"`
	Demoted           int         `json:"demoted"`
	Error             string      `json:"error,omitempty"`
}

type LivePositionsResult struct {
	MatchID          int64         `json:"match_id"`
	Mode             SyncMode      `json:"mode"`
	Skipped          bool          `json:"skipped"`
	SkipReason       string        `json:"skip_reason,omitempty"`
	Home             SidePositions `json:"home"`
	Away             SidePositions `json:"away"`
	PositionsUpdated int           `json:"positions_updated"`
	KitColorsUpdated int           `json:"kit_colors_updated"`
}

func (r LivePositionsResult) Changed() bool {
	return r.PositionsUpdated > 0 || r.KitColorsUpdated > 0 || r.Home.Demoted > 0 || r.Away.Demoted > 0 ||
		r.Home.PlayersAdded > 0 || r.Away.PlayersAdded > 0
}

// LineupSyncService owns match lineups: the pre-game lineup with officials,
// positions and kits from the live documents, and the repair backfill.
type LineupSyncService struct {
	feed      FeedProvider
	live      LiveFeed
	matches   match.Repository
	lineups   lineup.Repository
	players   player.Repository
	officials official.Repository
	resolver  *Resolver
	gate      seasonGate
	cfg       SyncConfig
	now       func() time.Time
	logger    *logging.Logger
}

func NewLineupSyncService(
	feed FeedProvider,
	live LiveFeed,
	matches match.Repository,
	lineups lineup.Repository,
	players player.Repository,
	officials official.Repository,
	seasons season.Repository,
	resolver *Resolver,
	cfg SyncConfig,
	logger *logging.Logger,
) *LineupSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LineupSyncService{
		feed:      feed,
		live:      live,
		matches:   matches,
		lineups:   lineups,
		players:   players,
		officials: officials,
		resolver:  resolver,
		gate:      seasonGate{seasons: seasons},
		cfg:       normalizeSyncConfig(cfg),
		now:       time.Now,
		logger:    logger,
	}
}

type matchSide struct {
	side   lineup.Side
	teamID int64
}

func sidesOf(m match.Match) []matchSide {
	out := make([]matchSide, 0, 2)
	if m.HomeTeamID != nil {
		out = append(out, matchSide{side: lineup.SideHome, teamID: *m.HomeTeamID})
	}
	if m.AwayTeamID != nil {
		out = append(out, matchSide{side: lineup.SideAway, teamID: *m.AwayTeamID})
	}
	return out
}

// SyncPreGameLineup stores referees, coaches and the announced lineup of a
// match, then enriches positions from the live documents.
func (s *LineupSyncService) SyncPreGameLineup(ctx context.Context, matchID int64) (PreGameLineupResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupSyncService.SyncPreGameLineup", matchAttr(matchID))
	defer span.End()

	result := PreGameLineupResult{MatchID: matchID}
	m, err := loadSyncableMatch(ctx, s.matches, s.gate, matchID)
	if err != nil {
		return result, err
	}

	data, err := s.feed.FetchPreGameLineup(ctx, m.SotaID)
	if err != nil {
		return result, fmt.Errorf("fetch pre-game lineup match_id=%d: %w", matchID, err)
	}

	if result.Referees, err = s.syncReferees(ctx, matchID, data.Referees); err != nil {
		return result, err
	}
	if result.Coaches, err = s.syncCoaches(ctx, m, data); err != nil {
		return result, err
	}

	entries := make([]lineup.Entry, 0, 40)
	memberships := make([]player.Membership, 0)
	for _, side := range sidesOf(m) {
		starters, subs := data.Side(side.side).Split()
		for _, group := range []struct {
			role    lineup.Role
			players []ExternalPreGamePlayer
		}{
			{role: lineup.RoleStarter, players: starters},
			{role: lineup.RoleSubstitute, players: subs},
		} {
			for _, p := range group.players {
				sotaID, ok := id.NormalizeUUID(p.SotaID)
				if !ok {
					continue
				}
				res, err := s.resolver.ResolvePlayer(ctx, PlayerQuery{SotaID: sotaID, FirstName: p.FirstName, LastName: p.LastName}, nil, true)
				if err != nil {
					return result, err
				}
				if res.Created {
					result.PlayersCreated++
					memberships = append(memberships, player.Membership{PlayerID: res.PlayerID, TeamID: side.teamID, SeasonID: m.SeasonID})
				}
				entries = append(entries, lineup.Entry{
					MatchID:     matchID,
					TeamID:      side.teamID,
					PlayerID:    res.PlayerID,
					Role:        group.role,
					ShirtNumber: p.Number,
					IsCaptain:   p.IsCaptain,
				})
			}
		}
	}

	if len(memberships) > 0 {
		if _, err := s.players.UpsertMemberships(ctx, memberships); err != nil {
			return result, fmt.Errorf("upsert player memberships: %w", err)
		}
	}
	if len(entries) > 0 {
		if err := s.lineups.SaveMatchLineup(ctx, lineup.MatchLineupBatch{MatchID: matchID, Entries: entries, HasLineup: true}); err != nil {
			return result, fmt.Errorf("save match lineup: %w", err)
		}
		result.Lineups = len(entries)
	}

	positions, err := s.SyncLivePositionsAndKits(ctx, matchID, ModeLiveRead)
	if err != nil {
		s.logger.WarnContext(ctx, "live position enrichment failed", "match_id", matchID, "error", err)
		return result, nil
	}
	result.Positions = &positions
	return result, nil
}

func similarReferee(known []official.Referee, first, last string) int64 {
	for _, ref := range known {
		if ref.SimilarTo(first, last) {
			return ref.ID
		}
	}
	return 0
}

func (s *LineupSyncService) syncReferees(ctx context.Context, matchID int64, raw map[string]string) (int, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	known, err := s.officials.ListReferees(ctx)
	if err != nil {
		return 0, fmt.Errorf("list referees: %w", err)
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	items := make([]official.MatchReferee, 0, len(keys))
	for _, key := range keys {
		role, ok := official.RefereeRoleFromKey(key)
		name := raw[key]
		if !ok || textnorm.Lower(name) == "" {
			continue
		}
		first, last := textnorm.SplitFullName(name)

		refereeID := similarReferee(known, first, last)
		if refereeID == 0 {
			created := official.Referee{FirstName: first, LastName: last}
			created.ID, err = s.officials.CreateReferee(ctx, created)
			switch {
			case errors.Is(err, ErrAlreadyExists):
				// Created concurrently by another sync of the same name.
				if known, err = s.officials.ListReferees(ctx); err != nil {
					return 0, fmt.Errorf("list referees: %w", err)
				}
				created.ID = similarReferee(known, first, last)
			case err != nil:
				return 0, fmt.Errorf("create referee: %w", err)
			default:
				known = append(known, created)
			}
			if created.ID == 0 {
				continue
			}
			refereeID = created.ID
		}
		items = append(items, official.MatchReferee{MatchID: matchID, RefereeID: refereeID, Role: role})
	}

	if _, err := s.officials.UpsertMatchReferees(ctx, items); err != nil {
		return 0, fmt.Errorf("upsert match referees: %w", err)
	}
	return len(items), nil
}

func (s *LineupSyncService) syncCoaches(ctx context.Context, m match.Match, data ExternalPreGameLineup) (int, error) {
	items := make([]official.TeamCoach, 0, 6)
	for _, side := range sidesOf(m) {
		staff := data.Side(side.side).Staff
		for _, key := range official.CoachRoleKeys {
			person, ok := staff[key]
			role, known := official.CoachRoleFromKey(key)
			if !ok || !known || textnorm.Lower(person.FirstName) == "" || textnorm.Lower(person.LastName) == "" {
				continue
			}
			coachID, err := s.officials.EnsureCoach(ctx, person.FirstName, person.LastName)
			if err != nil {
				return 0, fmt.Errorf("ensure coach: %w", err)
			}
			items = append(items, official.TeamCoach{TeamID: side.teamID, CoachID: coachID, SeasonID: m.SeasonID, Role: role})
		}
	}
	if len(items) == 0 {
		return 0, nil
	}
	if _, err := s.officials.UpsertTeamCoaches(ctx, items); err != nil {
		return 0, fmt.Errorf("upsert team coaches: %w", err)
	}
	return len(items), nil
}

// SyncLivePositionsAndKits reads both live lineup documents and applies
// categories, slots, formations and kit colours to the stored lineup.
func (s *LineupSyncService) SyncLivePositionsAndKits(ctx context.Context, matchID int64, mode SyncMode) (LivePositionsResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupSyncService.SyncLivePositionsAndKits", matchAttr(matchID))
	defer span.End()

	result := LivePositionsResult{
		MatchID: matchID,
		Mode:    mode,
		Home:    SidePositions{Side: lineup.SideHome},
		Away:    SidePositions{Side: lineup.SideAway},
	}
	if _, ok := ParseSyncMode(string(mode)); !ok {
		return result, fmt.Errorf("%w: unknown sync mode %q", ErrInvalidInput, mode)
	}
	m, err := loadSyncableMatch(ctx, s.matches, s.gate, matchID)
	if err != nil {
		return result, err
	}

	feeds := make(map[lineup.Side]ExternalLineupFeed, 2)
	sides := sidesOf(m)
	for _, side := range sides {
		report := result.side(side.side)
		feed, err := s.live.FetchLiveLineup(ctx, m.SotaID, side.side)
		if err != nil {
			report.Error = err.Error()
			s.logger.WarnContext(ctx, "lineup side unavailable", "match_id", matchID, "side", side.side, "error", err)
			continue
		}
		if len(feed.Starters)+len(feed.Substitutes) == 0 {
			report.Error = "empty lineup document"
			continue
		}
		report.Available = true
		feeds[side.side] = feed
	}

	if mode == ModeFinishedRepair && len(feeds) < 2 {
		result.Skipped = true
		result.SkipReason = SkipMissingSide
		return result, nil
	}
	if len(feeds) == 0 {
		return result, nil
	}

	existing, err := s.lineups.ListByMatch(ctx, matchID)
	if err != nil {
		return result, fmt.Errorf("list match lineup: %w", err)
	}
	known, err := s.lineupPlayers(ctx, existing)
	if err != nil {
		return result, err
	}

	now := s.now().UTC()
	batch := lineup.MatchLineupBatch{MatchID: matchID, LiveSyncedAt: &now}
	for _, side := range sides {
		feed, ok := feeds[side.side]
		if !ok {
			continue
		}
		report := result.side(side.side)
		entries, err := s.applySide(ctx, mode, matchID, side.teamID, feed, existing, known, report)
		if err != nil {
			return result, err
		}
		batch.Entries = append(batch.Entries, entries...)

		if report.Formation != "" {
			batch.SetFormation(side.side, report.Formation)
		}
		if feed.KitColor != "" {
			report.KitColor = feed.KitColor
			batch.SetKitColor(side.side, feed.KitColor)
			if storedKitColor(m, side.side) != feed.KitColor {
				result.KitColorsUpdated++
			}
		}
		result.PositionsUpdated += report.PositionsUpdated
	}

	batch.HasLineup = len(batch.Entries) > 0 || len(existing) > 0
	if err := s.lineups.SaveMatchLineup(ctx, batch); err != nil {
		return result, fmt.Errorf("save match lineup: %w", err)
	}
	return result, nil
}

func (r *LivePositionsResult) side(side lineup.Side) *SidePositions {
	if side == lineup.SideAway {
		return &r.Away
	}
	return &r.Home
}

func storedKitColor(m match.Match, side lineup.Side) string {
	if side == lineup.SideAway {
		return m.AwayKitColor
	}
	return m.HomeKitColor
}

// lineupPlayerIndex holds the players of the stored lineup by id and upstream id.
type lineupPlayerIndex struct {
	byID     map[int64]player.Player
	bySotaID map[string]player.Player
}

func (s *LineupSyncService) lineupPlayers(ctx context.Context, entries []lineup.Entry) (lineupPlayerIndex, error) {
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.PlayerID)
	}
	idx := lineupPlayerIndex{byID: make(map[int64]player.Player, len(ids)), bySotaID: make(map[string]player.Player, len(ids))}
	if len(ids) == 0 {
		return idx, nil
	}
	players, err := s.players.ListByIDs(ctx, ids)
	if err != nil {
		return idx, fmt.Errorf("list lineup players: %w", err)
	}
	for _, p := range players {
		idx.add(p)
	}
	return idx, nil
}

func (idx lineupPlayerIndex) add(p player.Player) {
	idx.byID[p.ID] = p
	if p.SotaID != "" {
		idx.bySotaID[p.SotaID] = p
	}
}

// applySide turns one side's live document into lineup entries. Rows are
// matched to stored entries by shirt number, then by upstream player id.
func (s *LineupSyncService) applySide(
	ctx context.Context,
	mode SyncMode,
	matchID, teamID int64,
	feed ExternalLineupFeed,
	existing []lineup.Entry,
	known lineupPlayerIndex,
	report *SidePositions,
) ([]lineup.Entry, error) {
	byNumber := make(map[int]lineup.Entry)
	byPlayer := make(map[int64]lineup.Entry, len(existing))
	for _, e := range existing {
		byPlayer[e.PlayerID] = e
		if e.TeamID == teamID && e.ShirtNumber != nil {
			byNumber[*e.ShirtNumber] = e
		}
	}

	out := make([]lineup.Entry, 0, len(feed.Starters)+len(feed.Substitutes))
	touched := make(map[int64]struct{}, cap(out))
	section := RowUnknown
	for _, row := range feed.Rows {
		switch row.Kind {
		case RowStartersMarker, RowSubstitutesMarker:
			section = row.Kind
			continue
		case RowPlayer:
		default:
			continue
		}

		entry, found := byNumber[row.Number]
		if !found {
			playerID, created, err := s.resolveLivePlayer(ctx, row, known, mode)
			if err != nil {
				return nil, err
			}
			if playerID == 0 {
				continue
			}
			if created {
				report.PlayersCreated++
			}
			if entry, found = byPlayer[playerID]; !found {
				entry = lineup.Entry{MatchID: matchID, TeamID: teamID, PlayerID: playerID}
				report.PlayersAdded++
			}
		}
		if _, dup := touched[entry.PlayerID]; dup {
			continue
		}
		touched[entry.PlayerID] = struct{}{}

		next := entry
		next.TeamID = teamID
		next.Role = liveRole(mode, section, row, entry)
		number := row.Number
		next.ShirtNumber = &number
		next.IsCaptain = row.IsCaptain
		if row.Amplua != "" {
			next.Amplua = row.Amplua
		}
		if row.FieldPosition != "" {
			next.FieldPosition = row.FieldPosition
		}
		out = append(out, next)
	}

	report.Formation, report.FormationInferred = sideFormation(feed, out)
	s.applyDerivedPositions(mode, report.Formation, out, known)

	if mode == ModeFinishedRepair {
		starterNumbers := feed.StarterNumbers()
		for _, e := range existing {
			if e.TeamID != teamID || !e.IsStarter() {
				continue
			}
			if _, ok := touched[e.PlayerID]; ok {
				continue
			}
			if e.ShirtNumber != nil {
				if _, listed := starterNumbers[*e.ShirtNumber]; listed {
					continue
				}
			}
			demoted := e
			demoted.Role = lineup.RoleSubstitute
			out = append(out, demoted)
			report.Demoted++
		}
	}

	for _, e := range out {
		before, ok := byPlayer[e.PlayerID]
		if e.Amplua == "" && e.FieldPosition == "" {
			continue
		}
		if !ok || before.Amplua != e.Amplua || before.FieldPosition != e.FieldPosition {
			report.PositionsUpdated++
		}
	}
	return out, nil
}

func (s *LineupSyncService) resolveLivePlayer(ctx context.Context, row LineupRow, known lineupPlayerIndex, mode SyncMode) (int64, bool, error) {
	sotaID, ok := id.NormalizeUUID(row.SotaID)
	if !ok {
		return 0, false, nil
	}
	if p, ok := known.bySotaID[sotaID]; ok {
		return p.ID, false, nil
	}
	res, err := s.resolver.ResolvePlayer(ctx, PlayerQuery{SotaID: sotaID, FirstName: row.FirstName, LastName: row.LastName}, nil, mode.CreatesPlayers())
	if err != nil || !res.Resolved {
		return 0, false, err
	}
	stored, err := s.players.ListByIDs(ctx, []int64{res.PlayerID})
	if err != nil {
		return 0, false, fmt.Errorf("list players: %w", err)
	}
	for _, p := range stored {
		known.add(p)
	}
	return res.PlayerID, res.Created, nil
}

// liveRole decides the role of a live row. Section markers are authoritative.
// Outside any section a row with a category starts; a row without one keeps a
// confirmed starter in live_read mode.
func liveRole(mode SyncMode, section RowKind, row LineupRow, stored lineup.Entry) lineup.Role {
	switch section {
	case RowStartersMarker:
		return lineup.RoleStarter
	case RowSubstitutesMarker:
		return lineup.RoleSubstitute
	}
	if row.Amplua != "" {
		return lineup.RoleStarter
	}
	if mode == ModeLiveRead && stored.IsStarter() {
		return lineup.RoleStarter
	}
	return lineup.RoleSubstitute
}

// sideFormation prefers the upstream formation and infers one from the
// starters' categories when it is missing or invalid.
func sideFormation(feed ExternalLineupFeed, entries []lineup.Entry) (string, bool) {
	if f, ok := lineup.ParseFormation(feed.Formation); ok {
		return f.String(), false
	}
	categories := make([]lineup.Amplua, 0, 11)
	for _, e := range entries {
		if e.IsStarter() && e.Amplua != "" {
			categories = append(categories, e.Amplua)
		}
	}
	if inferred, ok := lineup.InferFormation(categories); ok {
		return inferred, true
	}
	return "", false
}

// applyDerivedPositions fills slots of starters from the formation. In
// live_read mode upstream slots win and only gaps are filled. In
// finished_repair mode derived slots replace upstream ones when those leave
// gaps or collide within a category.
func (s *LineupSyncService) applyDerivedPositions(mode SyncMode, formation string, entries []lineup.Entry, known lineupPlayerIndex) {
	if formation == "" {
		return
	}
	starters := make([]lineup.Starter, 0, 11)
	index := make(map[int64]int, 11)
	for i, e := range entries {
		if !e.IsStarter() || e.Amplua == "" {
			continue
		}
		starters = append(starters, lineup.Starter{PlayerID: e.PlayerID, Amplua: e.Amplua, RoleHint: known.byID[e.PlayerID].TopRole})
		index[e.PlayerID] = i
	}
	assignments := lineup.DeriveFieldPositions(formation, starters)
	if len(assignments) == 0 {
		return
	}

	replaceAll := mode == ModeFinishedRepair && !slotsConsistent(entries)
	for _, a := range assignments {
		i := index[a.PlayerID]
		if replaceAll || entries[i].FieldPosition == "" {
			entries[i].FieldPosition = a.FieldPosition
		}
	}
}

// slotsConsistent reports whether every categorised starter has a slot and no
// two share one within a category.
func slotsConsistent(entries []lineup.Entry) bool {
	type slot struct {
		amplua   lineup.Amplua
		position lineup.FieldPosition
	}
	seen := make(map[slot]struct{}, len(entries))
	for _, e := range entries {
		if !e.IsStarter() || e.Amplua == "" {
			continue
		}
		if e.FieldPosition == "" {
			return false
		}
		key := slot{amplua: e.Amplua, position: e.FieldPosition}
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
	}
	return true
}
