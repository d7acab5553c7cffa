package sota

import (
	"testing"

	"github.com/riskibarqy/matchsync/internal/domain/lineup"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

func fullTeamDocument() []map[string]any {
	rows := []map[string]any{
		{"number": "TEAM", "first_name": "Кайрат"},
		{"number": "FORMATION", "first_name": "4-2-3-1", "full_name": "#ff0000"},
		{"number": "COACH", "full_name": "Рафаэль Уразбахтин"},
		{"number": "ASSISTANT 1", "first_name": "Али", "last_name": "Алиев"},
		{"number": "STADIUM", "first_name": "Центральный"},
		{"number": "TIME", "first_name": "18:00"},
		{"number": "ОСНОВНЫЕ"},
		{"Number": float64(1), "First_name": "Темирлан", "Last_name": "Анарбеков", "gk": true, "position": "c", "Id": "p1"},
	}
	starters := []struct {
		number   float64
		amplua   string
		position string
	}{
		{2, "D", "L"}, {3, "D", "LC"}, {4, "D", "RC"}, {5, "D", "R"},
		{6, "DM", "LC"}, {8, "DM", "RC"},
		{7, "AM", "L"}, {10, "AM", "C"}, {11, "AM", "R"},
		{9, "F", "C"},
	}
	for _, s := range starters {
		rows = append(rows, map[string]any{"number": s.number, "amplua": s.amplua, "position": s.position, "capitan": s.number == 10})
	}
	rows = append(rows,
		map[string]any{"number": "ЗАПАСНЫЕ"},
		map[string]any{"number": "35", "first_name": []any{"Резервный"}, "last_name": "Вратарь", "amplua": "gk"},
		map[string]any{"number": "12a", "first_name": "Bad"},
		map[string]any{"number": "Реклама"},
	)
	return rows
}

func TestParseLineupFeed_FullDocument(t *testing.T) {
	t.Parallel()

	feed := ParseLineupFeed(fullTeamDocument())

	if feed.TeamName != "Кайрат" {
		t.Fatalf("unexpected team name: got=%q", feed.TeamName)
	}
	if feed.Formation != "4-2-3-1" || feed.KitColor != "#FF0000" {
		t.Fatalf("unexpected formation/kit: got=%q/%q", feed.Formation, feed.KitColor)
	}
	if feed.Coach == nil || feed.Coach.FirstName != "Рафаэль" || feed.Coach.LastName != "Уразбахтин" {
		t.Fatalf("unexpected coach: %+v", feed.Coach)
	}
	if len(feed.Assistants) != 1 || feed.Assistants[0].LastName != "Алиев" {
		t.Fatalf("unexpected assistants: %+v", feed.Assistants)
	}
	if feed.Stadium != "Центральный" || feed.KickoffTime != "18:00" {
		t.Fatalf("unexpected metadata: stadium=%q kickoff=%q", feed.Stadium, feed.KickoffTime)
	}
	if len(feed.Starters) != 11 {
		t.Fatalf("unexpected starters: got=%d want=11", len(feed.Starters))
	}
	if len(feed.Substitutes) != 1 {
		t.Fatalf("unexpected substitutes: got=%d want=1", len(feed.Substitutes))
	}

	keeper := feed.Starters[0]
	if keeper.Amplua != lineup.AmpluaGoalkeeper || keeper.FieldPosition != lineup.PositionCentre || keeper.SotaID != "p1" {
		t.Fatalf("unexpected keeper row: %+v", keeper)
	}
	if sub := feed.Substitutes[0]; sub.Number != 35 || sub.FirstName != "Резервный" || sub.Amplua != lineup.AmpluaGoalkeeper {
		t.Fatalf("unexpected substitute row: %+v", sub)
	}
	if !feed.Starters[8].IsCaptain {
		t.Fatalf("expected number 10 to be captain")
	}
	if !feed.IsValidForField() {
		t.Fatalf("expected document to be valid for field")
	}
}

func TestParseLineupFeed_RejectsInvalidKitColor(t *testing.T) {
	t.Parallel()

	feed := ParseLineupFeed([]map[string]any{
		{"number": "FORMATION", "first_name": "4-4-2", "full_name": "red"},
	})
	if feed.Formation != "4-4-2" {
		t.Fatalf("unexpected formation: got=%q", feed.Formation)
	}
	if feed.KitColor != "" {
		t.Fatalf("unexpected kit colour: got=%q", feed.KitColor)
	}
}

func TestParseLineupFeed_InvalidWithoutSubstitutesMarker(t *testing.T) {
	t.Parallel()

	rows := fullTeamDocument()
	filtered := rows[:0]
	for _, row := range rows {
		if row["number"] == "ЗАПАСНЫЕ" {
			continue
		}
		filtered = append(filtered, row)
	}

	feed := ParseLineupFeed(filtered)
	if feed.SeenSubstitutesMarker {
		t.Fatalf("unexpected substitutes marker")
	}
	if feed.IsValidForField() {
		t.Fatalf("expected document without substitutes marker to be invalid")
	}
}

func TestParseLineupFeed_UnknownValuesAreDropped(t *testing.T) {
	t.Parallel()

	feed := ParseLineupFeed([]map[string]any{
		{"number": "STARTING"},
		{"number": float64(4), "amplua": "CB", "position": "LW"},
	})
	if len(feed.Starters) != 1 {
		t.Fatalf("unexpected starters: got=%d want=1", len(feed.Starters))
	}
	if row := feed.Starters[0]; row.Amplua != "" || row.FieldPosition != "" {
		t.Fatalf("expected empty amplua and position, got=%+v", row)
	}
	if got := feed.Rows[0].Kind; got != usecase.RowStartersMarker {
		t.Fatalf("unexpected first row kind: got=%s", got)
	}
}

func TestParseEventFeed(t *testing.T) {
	t.Parallel()

	events := ParseEventFeed([]map[string]any{
		{"time": "45+2", "action": "ГОЛ", "number1": float64(9), "first_name1": "Иван", "last_name1": "Петров", "team1": "Кайрат"},
		{"half": float64(2), "time": float64(60), "action": "ЗАМЕНА", "number1": "7", "number2": float64(17), "first_name2": "Али", "team2": "Кайрат"},
	})
	if len(events) != 2 {
		t.Fatalf("unexpected events: got=%d want=2", len(events))
	}
	if events[0].Half != 1 || events[0].Minute != 45 {
		t.Fatalf("unexpected first event timing: half=%d minute=%d", events[0].Half, events[0].Minute)
	}
	if events[0].Number1 == nil || *events[0].Number1 != 9 {
		t.Fatalf("unexpected first event number: %+v", events[0].Number1)
	}
	if events[1].Half != 2 || events[1].Minute != 60 || events[1].Number2 == nil || *events[1].Number2 != 17 {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
}
