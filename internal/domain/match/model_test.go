package match

import (
	"testing"
	"time"
)

func TestKickoffAt(t *testing.T) {
	t.Parallel()

	m := Match{Date: time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC), KickoffTime: "18:30"}
	got, ok := m.KickoffAt(time.UTC)
	if !ok {
		t.Fatalf("expected known kickoff")
	}
	want := time.Date(2025, 4, 12, 18, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected kickoff: got=%s want=%s", got, want)
	}

	m.KickoffTime = "evening"
	if _, ok := m.KickoffAt(time.UTC); ok {
		t.Fatalf("expected unknown kickoff for unparsable time")
	}
}

func TestDeriveStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 4, 12, 20, 0, 0, 0, time.UTC)
	kickoff := now.Add(-3 * time.Hour)
	home, away := 2, 1

	if got := DeriveStatus(kickoff, &home, &away, now); got != StatusFinished {
		t.Fatalf("unexpected status: got=%s want=%s", got, StatusFinished)
	}
	if got := DeriveStatus(kickoff, nil, &away, now); got != StatusCreated {
		t.Fatalf("unexpected status without home score: got=%s want=%s", got, StatusCreated)
	}
	if got := DeriveStatus(now.Add(time.Hour), &home, &away, now); got != StatusCreated {
		t.Fatalf("unexpected status for future kickoff: got=%s want=%s", got, StatusCreated)
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	if got, ok := ParseStatus(" FT "); !ok || got != StatusFinished {
		t.Fatalf("unexpected status: got=%s ok=%t", got, ok)
	}
	if _, ok := ParseStatus("unknown"); ok {
		t.Fatalf("expected unknown status to be rejected")
	}
}
