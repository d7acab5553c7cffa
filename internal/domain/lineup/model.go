package lineup

import (
	"strings"
	"time"
)

type Role string

const (
	RoleStarter    Role = "starter"
	RoleSubstitute Role = "substitute"
)

// Amplua is the tactical category of a player in a match lineup.
type Amplua string

const (
	AmpluaGoalkeeper          Amplua = "Gk"
	AmpluaDefender            Amplua = "D"
	AmpluaDefensiveMidfielder Amplua = "DM"
	AmpluaMidfielder          Amplua = "M"
	AmpluaAttackingMidfielder Amplua = "AM"
	AmpluaForward             Amplua = "F"
)

// OutfieldOrder is the canonical order of outfield categories in a formation.
var OutfieldOrder = []Amplua{
	AmpluaDefender,
	AmpluaDefensiveMidfielder,
	AmpluaMidfielder,
	AmpluaAttackingMidfielder,
	AmpluaForward,
}

// ParseAmplua accepts a category in any case. "GK" maps to Gk.
func ParseAmplua(value string) (Amplua, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "GK":
		return AmpluaGoalkeeper, true
	case "D":
		return AmpluaDefender, true
	case "DM":
		return AmpluaDefensiveMidfielder, true
	case "M":
		return AmpluaMidfielder, true
	case "AM":
		return AmpluaAttackingMidfielder, true
	case "F":
		return AmpluaForward, true
	default:
		return "", false
	}
}

// FieldPosition is the lateral slot of a player on the pitch.
type FieldPosition string

const (
	PositionLeft        FieldPosition = "L"
	PositionLeftCentre  FieldPosition = "LC"
	PositionCentre      FieldPosition = "C"
	PositionRightCentre FieldPosition = "RC"
	PositionRight       FieldPosition = "R"
)

func ParseFieldPosition(value string) (FieldPosition, bool) {
	switch FieldPosition(strings.ToUpper(strings.TrimSpace(value))) {
	case PositionLeft:
		return PositionLeft, true
	case PositionLeftCentre:
		return PositionLeftCentre, true
	case PositionCentre:
		return PositionCentre, true
	case PositionRightCentre:
		return PositionRightCentre, true
	case PositionRight:
		return PositionRight, true
	default:
		return "", false
	}
}

type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Entry is one player's participation in a match.
type Entry struct {
	MatchID       int64
	TeamID        int64
	PlayerID      int64
	Role          Role
	ShirtNumber   *int
	IsCaptain     bool
	Amplua        Amplua
	FieldPosition FieldPosition
	UpdatedAt     time.Time
}

func (e Entry) IsStarter() bool {
	return e.Role == RoleStarter
}

// MatchLineupBatch is the unit persisted for one match: the full set of
// entries plus the per-side metadata derived from the same feed read.
// Nil metadata pointers keep the stored value.
type MatchLineupBatch struct {
	MatchID       int64
	Entries       []Entry
	HomeFormation *string
	AwayFormation *string
	HomeKitColor  *string
	AwayKitColor  *string
	HasLineup     bool
	LiveSyncedAt  *time.Time
}

func (b *MatchLineupBatch) SetFormation(side Side, formation string) {
	if side == SideAway {
		b.AwayFormation = &formation
		return
	}
	b.HomeFormation = &formation
}

func (b *MatchLineupBatch) SetKitColor(side Side, color string) {
	if side == SideAway {
		b.AwayKitColor = &color
		return
	}
	b.HomeKitColor = &color
}
