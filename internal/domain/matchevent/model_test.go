package matchevent

import "testing"

func TestTypeFromAction(t *testing.T) {
	t.Parallel()

	cases := map[string]Type{
		"ГОЛ":           TypeGoal,
		"голевой  пас":  TypeAssist,
		" ЖК ":          TypeYellowCard,
		"Second Yellow": TypeSecondYellow,
		"ЗАМЕНА":        TypeSubstitution,
	}
	for in, want := range cases {
		got, ok := TypeFromAction(in)
		if !ok || got != want {
			t.Fatalf("unexpected type for %q: got=%s ok=%t want=%s", in, got, ok, want)
		}
	}
	if _, ok := TypeFromAction("VAR CHECK"); ok {
		t.Fatalf("expected unknown action to be rejected")
	}
}

func TestSignatureSetMatchesByIDOrName(t *testing.T) {
	t.Parallel()

	playerID := int64(7)
	stored := Event{Half: 1, Minute: 42, Type: TypeGoal, PlayerID: &playerID, PlayerName: "Ivan Petrov"}
	set := NewSignatureSet([]Event{stored})

	sameNameNoID := Event{Half: 1, Minute: 42, Type: TypeGoal, PlayerName: " ivan petrov "}
	if !set.Contains(sameNameNoID) {
		t.Fatalf("expected name signature to match")
	}

	sameIDOtherSpelling := Event{Half: 1, Minute: 42, Type: TypeGoal, PlayerID: &playerID, PlayerName: "I. Petrov"}
	if !set.Contains(sameIDOtherSpelling) {
		t.Fatalf("expected id signature to match")
	}

	otherMinute := Event{Half: 1, Minute: 43, Type: TypeGoal, PlayerName: "Ivan Petrov"}
	if set.Contains(otherMinute) {
		t.Fatalf("unexpected match for a different minute")
	}

	anonymous := Event{Half: 2, Minute: 10, Type: TypeYellowCard, TeamName: "Kairat"}
	if set.Contains(anonymous) {
		t.Fatalf("unexpected match for an unseen anonymous event")
	}
	set.Add(anonymous)
	if !set.Contains(Event{Half: 2, Minute: 10, Type: TypeYellowCard, TeamName: "kairat"}) {
		t.Fatalf("expected anonymous event to match on team name")
	}
}
