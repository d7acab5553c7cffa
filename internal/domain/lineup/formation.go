package lineup

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

const outfieldPlayers = 10

var formationPattern = regexp.MustCompile(`^(\d+(?:-\d+)+)`)

var slotTemplates = map[int][]FieldPosition{
	1: {PositionCentre},
	2: {PositionLeftCentre, PositionRightCentre},
	3: {PositionLeft, PositionCentre, PositionRight},
	4: {PositionLeft, PositionLeftCentre, PositionRightCentre, PositionRight},
	5: {PositionLeft, PositionLeftCentre, PositionCentre, PositionRightCentre, PositionRight},
}

// Lateral hints, lower is further left.
const (
	HintLeft   = 0
	HintCentre = 2
	HintRight  = 4
)

type lateralRule struct {
	// exact holds whole sub-tokens that match, contains is a substring match.
	exact    []string
	contains string
	hint     int
}

// Ordered: the first rule that matches the role code wins.
var lateralRules = []lateralRule{
	{exact: []string{"Л", "ЛЗ", "ЛН", "ЛП", "ЛЦ"}, hint: HintLeft},
	{exact: []string{"L", "LB", "LW", "LD", "LM"}, hint: HintLeft},
	{contains: "ЛЕВ", hint: HintLeft},
	{exact: []string{"П", "ПЗ", "ПН", "ПП"}, hint: HintRight},
	{exact: []string{"R", "RB", "RW", "RD", "RM"}, hint: HintRight},
	{contains: "ПРАВ", hint: HintRight},
}

// Formation is a parsed formation, one count per line from defence to attack.
type Formation []int

func (f Formation) String() string {
	parts := make([]string, 0, len(f))
	for _, n := range f {
		parts = append(parts, strconv.Itoa(n))
	}
	return strings.Join(parts, "-")
}

// ParseFormation reads a leading dash-separated run of positive integers that
// sums to exactly ten outfield players. Trailing text is ignored.
func ParseFormation(value string) (Formation, bool) {
	match := formationPattern.FindStringSubmatch(strings.TrimSpace(value))
	if match == nil {
		return nil, false
	}

	parts := strings.Split(match[1], "-")
	out := make(Formation, 0, len(parts))
	sum := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, false
		}
		sum += n
		out = append(out, n)
	}
	if sum != outfieldPlayers {
		return nil, false
	}
	return out, true
}

// InferFormation counts outfield categories in canonical order. Goalkeepers
// and unknown categories are ignored; anything but ten outfield players is no
// formation.
func InferFormation(amplua []Amplua) (string, bool) {
	counts := make(map[Amplua]int, len(OutfieldOrder))
	total := 0
	for _, a := range amplua {
		if !isOutfield(a) {
			continue
		}
		counts[a]++
		total++
	}
	if total != outfieldPlayers {
		return "", false
	}

	layers := make(Formation, 0, len(counts))
	for _, a := range OutfieldOrder {
		if counts[a] > 0 {
			layers = append(layers, counts[a])
		}
	}
	return layers.String(), true
}

// Starter is the input of the field position derivation.
type Starter struct {
	PlayerID int64
	Amplua   Amplua
	// RoleHint is the free-text role descriptor, typically the player's top role.
	RoleHint string
}

type Assignment struct {
	PlayerID      int64
	Amplua        Amplua
	FieldPosition FieldPosition
}

// DeriveFieldPositions assigns a lateral slot to every starter with a known
// category. The goalkeeper is always centred. Within a category players are
// ordered left to right by their role hint and take the slots of the template
// for the group size. An invalid formation yields no assignments.
func DeriveFieldPositions(formation string, starters []Starter) []Assignment {
	if _, ok := ParseFormation(formation); !ok {
		return nil
	}

	out := make([]Assignment, 0, len(starters))
	groups := make(map[Amplua][]Starter, len(OutfieldOrder))
	for _, s := range starters {
		switch {
		case s.Amplua == AmpluaGoalkeeper:
			out = append(out, Assignment{PlayerID: s.PlayerID, Amplua: s.Amplua, FieldPosition: PositionCentre})
		case isOutfield(s.Amplua):
			groups[s.Amplua] = append(groups[s.Amplua], s)
		}
	}

	for _, a := range OutfieldOrder {
		players := groups[a]
		if len(players) == 0 {
			continue
		}
		slots := slotsFor(len(players))
		sort.SliceStable(players, func(i, j int) bool {
			return LateralHint(players[i].RoleHint) < LateralHint(players[j].RoleHint)
		})
		for i, p := range players {
			slot := PositionCentre
			if i < len(slots) {
				slot = slots[i]
			}
			out = append(out, Assignment{PlayerID: p.PlayerID, Amplua: a, FieldPosition: slot})
		}
	}
	return out
}

func slotsFor(n int) []FieldPosition {
	if template, ok := slotTemplates[n]; ok {
		return template
	}
	if n <= 0 {
		return nil
	}
	slots := []FieldPosition{PositionLeft, PositionLeftCentre}
	for i := 0; i < n-4; i++ {
		slots = append(slots, PositionCentre)
	}
	return append(slots, PositionRightCentre, PositionRight)
}

// LateralHint reads a left/right marker from a role descriptor. The role code
// (first word) is checked against Cyrillic and Latin abbreviations, then the
// whole text against LEFT/RIGHT words. Everything else is centre.
func LateralHint(role string) int {
	role = strings.TrimSpace(role)
	if role == "" {
		return HintCentre
	}

	code := strings.ToUpper(strings.Fields(role)[0])
	words := strings.FieldsFunc(code, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	for _, rule := range lateralRules {
		if rule.contains != "" && strings.Contains(code, rule.contains) {
			return rule.hint
		}
		for _, w := range words {
			for _, candidate := range rule.exact {
				if w == candidate {
					return rule.hint
				}
			}
		}
	}

	upper := strings.ToUpper(role)
	if strings.Contains(upper, "ЛЕВ") || strings.Contains(upper, "LEFT") {
		return HintLeft
	}
	if strings.Contains(upper, "ПРАВ") || strings.Contains(upper, "RIGHT") {
		return HintRight
	}
	return HintCentre
}

func isOutfield(a Amplua) bool {
	for _, candidate := range OutfieldOrder {
		if a == candidate {
			return true
		}
	}
	return false
}
