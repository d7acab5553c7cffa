package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/matchsync/internal/domain/lineup"
	"github.com/riskibarqy/matchsync/internal/domain/player"
	"github.com/riskibarqy/matchsync/internal/domain/team"
	"github.com/riskibarqy/matchsync/internal/platform/textnorm"
)

// TeamResolution is either a resolved team id or unresolved. Strategy names
// the rule that produced the result.
type TeamResolution struct {
	TeamID   int64
	Resolved bool
	Strategy string
}

func teamResolved(id int64, strategy string) TeamResolution {
	return TeamResolution{TeamID: id, Resolved: true, Strategy: strategy}
}

func teamUnresolved(strategy string) TeamResolution {
	return TeamResolution{Strategy: strategy}
}

// IDPtr returns nil when unresolved.
func (r TeamResolution) IDPtr() *int64 {
	if !r.Resolved {
		return nil
	}
	id := r.TeamID
	return &id
}

type PlayerResolution struct {
	PlayerID int64
	Resolved bool
	Created  bool
}

func (r PlayerResolution) IDPtr() *int64 {
	if !r.Resolved {
		return nil
	}
	id := r.PlayerID
	return &id
}

// TeamAliases maps folded alias keys to folded canonical names.
type TeamAliases map[string]string

// ParseTeamAliases reads "alias=canonical,alias2=canonical2".
func ParseTeamAliases(raw string) (TeamAliases, error) {
	out := make(TeamAliases)
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		alias, canonical, ok := strings.Cut(pair, "=")
		aliasKey := textnorm.TeamKey(alias)
		canonicalKey := textnorm.TeamKey(canonical)
		if !ok || aliasKey == "" || canonicalKey == "" {
			return nil, fmt.Errorf("%w: invalid team alias %q", ErrInvalidInput, pair)
		}
		out[aliasKey] = canonicalKey
	}
	return out, nil
}

// clubAffixes are dropped from either end of a folded team name.
var clubAffixes = map[string]struct{}{
	"фк": {}, "fc": {}, "fk": {}, "кф": {}, "фс": {}, "sc": {}, "club": {}, "клуб": {},
}

func stripClubAffixes(key string) string {
	parts := strings.Fields(key)
	for len(parts) > 1 {
		if _, ok := clubAffixes[parts[0]]; ok {
			parts = parts[1:]
			continue
		}
		if _, ok := clubAffixes[parts[len(parts)-1]]; ok {
			parts = parts[:len(parts)-1]
			continue
		}
		break
	}
	return strings.Join(parts, " ")
}

// teamStrategy returns every candidate id matching key.
type teamStrategy struct {
	name  string
	match func(key string, candidates []team.Team) []int64
}

// Resolver maps upstream identifiers and free-text names to local ids. Team
// strategies run in order; the first strategy matching exactly one team wins
// and one matching several teams ends resolution as unresolved.
type Resolver struct {
	players    player.Repository
	aliases    TeamAliases
	strategies []teamStrategy
}

func NewResolver(players player.Repository, aliases TeamAliases) *Resolver {
	r := &Resolver{players: players, aliases: aliases}
	r.strategies = []teamStrategy{
		{name: "exact", match: matchExactTeam},
		{name: "alias", match: r.matchAliasTeam},
	}
	return r
}

// ResolveTeam matches name against the locale variants of candidates.
func (r *Resolver) ResolveTeam(name string, candidates []team.Team) TeamResolution {
	key := textnorm.TeamKey(name)
	if key == "" {
		return teamUnresolved("empty")
	}
	for _, strategy := range r.strategies {
		ids := uniqueIDs(strategy.match(key, candidates))
		switch len(ids) {
		case 0:
			continue
		case 1:
			return teamResolved(ids[0], strategy.name)
		default:
			return teamUnresolved(strategy.name + "_ambiguous")
		}
	}
	return teamUnresolved("no_match")
}

// ResolveEventTeam resolves the team of a match event. When the name does not
// resolve, the player's lineup entry decides, provided it points at exactly
// one team.
func (r *Resolver) ResolveEventTeam(name string, playerID *int64, entries []lineup.Entry, candidates []team.Team) TeamResolution {
	res := r.ResolveTeam(name, candidates)
	if res.Resolved || playerID == nil {
		return res
	}

	ids := make([]int64, 0, 2)
	for _, e := range entries {
		if e.PlayerID == *playerID {
			ids = append(ids, e.TeamID)
		}
	}
	ids = uniqueIDs(ids)
	switch len(ids) {
	case 1:
		return teamResolved(ids[0], "lineup")
	case 0:
		return res
	default:
		return teamUnresolved("lineup_ambiguous")
	}
}

func matchExactTeam(key string, candidates []team.Team) []int64 {
	var out []int64
	for _, t := range candidates {
		for _, variant := range t.NameVariants() {
			if textnorm.TeamKey(variant) == key {
				out = append(out, t.ID)
				break
			}
		}
	}
	return out
}

func (r *Resolver) matchAliasTeam(key string, candidates []team.Team) []int64 {
	wanted := make(map[string]struct{}, 2)
	if canonical, ok := r.aliases[key]; ok {
		wanted[canonical] = struct{}{}
	}
	if stripped := stripClubAffixes(key); stripped != "" {
		wanted[stripped] = struct{}{}
	}

	var out []int64
	for _, t := range candidates {
		for _, variant := range t.NameVariants() {
			variantKey := textnorm.TeamKey(variant)
			_, direct := wanted[variantKey]
			_, stripped := wanted[stripClubAffixes(variantKey)]
			if direct || stripped {
				out = append(out, t.ID)
				break
			}
		}
	}
	return out
}

// PlayerCandidate is a player eligible for name matching, usually a lineup entry.
type PlayerCandidate struct {
	Player player.Player
	TeamID int64
}

type PlayerQuery struct {
	SotaID    string
	FirstName string
	LastName  string
	// TeamID narrows name matching to one team.
	TeamID *int64
}

// ResolvePlayer looks the player up by upstream id first, then by name among
// candidates. An unknown upstream id creates the player when create is set.
func (r *Resolver) ResolvePlayer(ctx context.Context, q PlayerQuery, candidates []PlayerCandidate, create bool) (PlayerResolution, error) {
	if sotaID := strings.TrimSpace(q.SotaID); sotaID != "" && r.players != nil {
		existing, ok, err := r.players.GetBySotaID(ctx, sotaID)
		if err != nil {
			return PlayerResolution{}, fmt.Errorf("get player by sota id: %w", err)
		}
		if ok {
			return PlayerResolution{PlayerID: existing.ID, Resolved: true}, nil
		}
		if create {
			id, created, err := r.players.EnsureBySotaID(ctx, player.Player{
				SotaID:    sotaID,
				FirstName: strings.TrimSpace(q.FirstName),
				LastName:  strings.TrimSpace(q.LastName),
			})
			if err != nil {
				return PlayerResolution{}, fmt.Errorf("ensure player: %w", err)
			}
			return PlayerResolution{PlayerID: id, Resolved: true, Created: created}, nil
		}
	}
	return ResolvePlayerByName(q.FirstName, q.LastName, q.TeamID, candidates), nil
}

// ResolvePlayerByName matches (first, last) against every locale of the
// candidates. More than one match is unresolved.
func ResolvePlayerByName(first, last string, teamID *int64, candidates []PlayerCandidate) PlayerResolution {
	first, last = textnorm.Lower(first), textnorm.Lower(last)
	if first == "" && last == "" {
		return PlayerResolution{}
	}

	ids := make([]int64, 0, 1)
	for _, c := range candidates {
		if teamID != nil && c.TeamID != *teamID {
			continue
		}
		for _, v := range c.Player.NameVariants() {
			if textnorm.Lower(v.First) == first && textnorm.Lower(v.Last) == last {
				ids = append(ids, c.Player.ID)
				break
			}
		}
	}
	ids = uniqueIDs(ids)
	if len(ids) != 1 {
		return PlayerResolution{}
	}
	return PlayerResolution{PlayerID: ids[0], Resolved: true}
}

func uniqueIDs(ids []int64) []int64 {
	if len(ids) < 2 {
		return ids
	}
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
