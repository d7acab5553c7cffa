package sota

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/riskibarqy/matchsync/internal/domain/lineup"
	"github.com/riskibarqy/matchsync/internal/platform/textnorm"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

var (
	hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	keyCleanRegex = regexp.MustCompile(`[^a-z0-9]`)
)

var lineupMarkers = map[string]usecase.RowKind{
	"COACH":     usecase.RowCoach,
	"MAIN":      usecase.RowCoach,
	"ОСНОВНЫЕ":  usecase.RowStartersMarker,
	"STARTING":  usecase.RowStartersMarker,
	"ЗАПАСНЫЕ":  usecase.RowSubstitutesMarker,
	"SUBS":      usecase.RowSubstitutesMarker,
	"FORMATION": usecase.RowFormation,
	"TEAM":      usecase.RowTeam,
	"STADIUM":   usecase.RowStadium,
	"VENUE":     usecase.RowStadium,
	"TIME":      usecase.RowKickoff,
	"DATE":      usecase.RowKickoff,
}

// lineupEntry is one raw row with keys normalized.
type lineupEntry map[string]any

func normalizeKey(key string) string {
	return keyCleanRegex.ReplaceAllString(strings.ToLower(key), "")
}

func newLineupEntry(raw map[string]any) lineupEntry {
	out := make(lineupEntry, len(raw))
	for k, v := range raw {
		out[normalizeKey(k)] = v
	}
	return out
}

func (e lineupEntry) get(aliases ...string) any {
	for _, alias := range aliases {
		if v, ok := e[alias]; ok {
			return v
		}
	}
	return nil
}

func (e lineupEntry) text(aliases ...string) string {
	return stringValue(e.get(aliases...))
}

func (e lineupEntry) flag(aliases ...string) bool {
	return boolValue(e.get(aliases...))
}

// shirtNumber accepts an integer or a digit-only string.
func (e lineupEntry) shirtNumber() (int, bool) {
	switch typed := e.get("number").(type) {
	case float64:
		if typed != math.Trunc(typed) || typed < 0 {
			return 0, false
		}
		return int(typed), true
	case string:
		typed = strings.TrimSpace(typed)
		if typed == "" || strings.TrimLeft(typed, "0123456789") != "" {
			return 0, false
		}
		n, err := strconv.Atoi(typed)
		return n, err == nil
	default:
		return 0, false
	}
}

func (e lineupEntry) person() usecase.ExternalPerson {
	p := usecase.ExternalPerson{FirstName: e.text("firstname"), LastName: e.text("lastname")}
	if p.IsZero() {
		p.FirstName, p.LastName = textnorm.SplitFullName(e.text("fullname"))
	}
	return p
}

func (e lineupEntry) fullName() string {
	return firstNonEmpty(e.text("fullname"), textnorm.JoinName(e.text("firstname"), e.text("lastname")))
}

// ParseLineupFeed tags every row of a live team document and collects the
// team summary. Player rows outside both sections stay in Rows only.
func ParseLineupFeed(rows []map[string]any) usecase.ExternalLineupFeed {
	var feed usecase.ExternalLineupFeed
	section := usecase.RowUnknown

	for _, raw := range rows {
		if raw == nil {
			continue
		}
		entry := newLineupEntry(raw)
		marker := strings.ToUpper(entry.text("number"))

		kind, isMarker := lineupMarkers[marker]
		if !isMarker && strings.HasPrefix(marker, "ASSISTANT") {
			kind, isMarker = usecase.RowAssistant, true
		}

		row := usecase.LineupRow{Kind: kind}
		if isMarker {
			row.FirstName = entry.text("firstname")
			row.LastName = entry.text("lastname")
			row.FullName = entry.fullName()
		}

		switch {
		case kind == usecase.RowCoach:
			if p := entry.person(); !p.IsZero() {
				feed.Coach = &p
			}
		case kind == usecase.RowAssistant:
			if p := entry.person(); !p.IsZero() {
				feed.Assistants = append(feed.Assistants, p)
			}
		case kind == usecase.RowStartersMarker:
			feed.SeenStartersMarker = true
			section = kind
		case kind == usecase.RowSubstitutesMarker:
			feed.SeenSubstitutesMarker = true
			section = kind
		case kind == usecase.RowFormation:
			feed.Formation = entry.text("firstname")
			if color := strings.ToUpper(entry.text("fullname")); hexColorRegex.MatchString(color) {
				feed.KitColor = color
			}
		case kind == usecase.RowTeam:
			feed.TeamName = firstNonEmpty(entry.text("firstname"), entry.fullName())
		case kind == usecase.RowStadium:
			feed.Stadium = firstNonEmpty(entry.text("firstname"), entry.fullName())
		case kind == usecase.RowKickoff:
			feed.KickoffTime = firstNonEmpty(entry.text("firstname"), entry.fullName())
		default:
			number, ok := entry.shirtNumber()
			if !ok {
				continue
			}
			row = playerRow(entry, number)
			switch section {
			case usecase.RowStartersMarker:
				feed.Starters = append(feed.Starters, row)
			case usecase.RowSubstitutesMarker:
				feed.Substitutes = append(feed.Substitutes, row)
			}
		}
		feed.Rows = append(feed.Rows, row)
	}
	return feed
}

func playerRow(entry lineupEntry, number int) usecase.LineupRow {
	row := usecase.LineupRow{
		Kind:      usecase.RowPlayer,
		Number:    number,
		SotaID:    entry.text("id", "playerid"),
		FirstName: entry.text("firstname"),
		LastName:  entry.text("lastname"),
		FullName:  entry.fullName(),
		IsGK:      entry.flag("gk", "isgk"),
		IsCaptain: entry.flag("capitan", "captain", "iscaptain"),
	}
	if amplua, ok := lineup.ParseAmplua(entry.text("amplua")); ok {
		row.Amplua = amplua
	}
	if row.IsGK {
		row.Amplua = lineup.AmpluaGoalkeeper
	}
	if position, ok := lineup.ParseFieldPosition(entry.text("position")); ok {
		row.FieldPosition = position
	}
	return row
}

// ParseEventFeed reads the rows of a live events document. Action names are
// passed through; mapping them to event types is up to the caller.
func ParseEventFeed(rows []map[string]any) []usecase.ExternalLiveEvent {
	out := make([]usecase.ExternalLiveEvent, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		half := getInt(row, "half")
		if half <= 0 {
			half = 1
		}
		out = append(out, usecase.ExternalLiveEvent{
			Half:       half,
			Minute:     parseMinute(row["time"]),
			Action:     getString(row, "action"),
			Number1:    getIntPtr(row, "number1"),
			FirstName1: getString(row, "first_name1"),
			LastName1:  getString(row, "last_name1"),
			Team1:      getString(row, "team1"),
			Number2:    getIntPtr(row, "number2"),
			FirstName2: getString(row, "first_name2"),
			LastName2:  getString(row, "last_name2"),
			Team2:      getString(row, "team2"),
		})
	}
	return out
}
