package matchevent

import (
	"strconv"
	"strings"
	"time"
)

type Type string

const (
	TypeGoal          Type = "goal"
	TypeOwnGoal       Type = "own_goal"
	TypePenalty       Type = "penalty"
	TypeMissedPenalty Type = "missed_penalty"
	TypeAssist        Type = "assist"
	TypeYellowCard    Type = "yellow_card"
	TypeSecondYellow  Type = "second_yellow"
	TypeRedCard       Type = "red_card"
	TypeSubstitution  Type = "substitution"
)

var actionTypes = map[string]Type{
	"ГОЛ":                TypeGoal,
	"АВТОГОЛ":            TypeOwnGoal,
	"ПЕНАЛЬТИ":           TypePenalty,
	"НЕЗАБИТЫЙ ПЕНАЛЬТИ": TypeMissedPenalty,
	"ГОЛЕВОЙ ПАС":        TypeAssist,
	"ЖК":                 TypeYellowCard,
	"ВТОРАЯ ЖК":          TypeSecondYellow,
	"КК":                 TypeRedCard,
	"ЗАМЕНА":             TypeSubstitution,
	"GOAL":               TypeGoal,
	"OWN GOAL":           TypeOwnGoal,
	"PENALTY":            TypePenalty,
	"MISSED PENALTY":     TypeMissedPenalty,
	"ASSIST":             TypeAssist,
	"YELLOW":             TypeYellowCard,
	"YELLOW CARD":        TypeYellowCard,
	"SECOND YELLOW":      TypeSecondYellow,
	"RED":                TypeRedCard,
	"RED CARD":           TypeRedCard,
	"SUBSTITUTION":       TypeSubstitution,
}

// TypeFromAction maps an upstream action label. Unknown labels are rejected.
func TypeFromAction(action string) (Type, bool) {
	t, ok := actionTypes[strings.ToUpper(strings.Join(strings.Fields(action), " "))]
	return t, ok
}

// KeepsSecondPlayer reports whether the second player of the upstream row is
// meaningful for the event type: the incoming player of a substitution or the
// scorer of an assist.
func (t Type) KeepsSecondPlayer() bool {
	return t == TypeSubstitution || t == TypeAssist
}

// Event is one incident of a match.
type Event struct {
	ID               int64
	MatchID          int64
	Half             int
	Minute           int
	Type             Type
	TeamID           *int64
	TeamName         string
	PlayerID         *int64
	PlayerNumber     *int
	PlayerName       string
	Player2ID        *int64
	Player2Number    *int
	Player2Name      string
	Player2TeamName  string
	AssistPlayerID   *int64
	AssistPlayerName string
	CreatedAt        time.Time
}

// Signature identifies an event for deduplication. Key is either the resolved
// player id or the normalized player name.
type Signature struct {
	Half   int
	Minute int
	Type   Type
	Key    string
}

func (e Event) Signatures() []Signature {
	out := make([]Signature, 0, 2)
	if e.PlayerID != nil {
		out = append(out, Signature{Half: e.Half, Minute: e.Minute, Type: e.Type, Key: "id:" + strconv.FormatInt(*e.PlayerID, 10)})
	}
	if name := NormalizeName(e.PlayerName); name != "" {
		out = append(out, Signature{Half: e.Half, Minute: e.Minute, Type: e.Type, Key: "name:" + name})
	}
	if len(out) == 0 {
		out = append(out, Signature{Half: e.Half, Minute: e.Minute, Type: e.Type, Key: "team:" + NormalizeName(e.TeamName)})
	}
	return out
}

func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SignatureSet tracks the signatures of stored and pending events of a match.
type SignatureSet map[Signature]struct{}

func NewSignatureSet(events []Event) SignatureSet {
	set := make(SignatureSet, len(events)*2)
	for _, e := range events {
		set.Add(e)
	}
	return set
}

// Contains reports whether any signature of e was already seen.
func (s SignatureSet) Contains(e Event) bool {
	for _, sig := range e.Signatures() {
		if _, ok := s[sig]; ok {
			return true
		}
	}
	return false
}

func (s SignatureSet) Add(e Event) {
	for _, sig := range e.Signatures() {
		s[sig] = struct{}{}
	}
}
