package logging

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]Level{"": LevelInfo, "DEBUG": LevelDebug, "warning": LevelWarn, "error": LevelError}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("unexpected level for %q: got=%s want=%s", in, got, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLoggerWritesKeyValueFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	logger := FromZap(zap.New(core)).Named("lineup_sync").With("match_id", int64(42))

	logger.WarnContext(context.Background(), "lineup side unavailable", "side", "away", "error", errors.New("status 404"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("unexpected entry count: got=%d want=%d", len(entries), 1)
	}
	fields := entries[0].ContextMap()
	if fields["match_id"] != int64(42) || fields["side"] != "away" || fields["error"] != "status 404" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
	if entries[0].LoggerName != "lineup_sync" {
		t.Fatalf("unexpected logger name: got=%s want=%s", entries[0].LoggerName, "lineup_sync")
	}
}

func TestMirrorReceivesEnabledRecords(t *testing.T) {
	core, _ := observer.New(zap.InfoLevel)
	logger := FromZap(zap.New(core))

	var got []string
	SetMirror(func(_ context.Context, level Level, msg string, args ...any) {
		got = append(got, level.String()+":"+msg)
	})
	t.Cleanup(func() { SetMirror(nil) })

	logger.Debug("dropped")
	logger.InfoContext(context.Background(), "season synced", "season_id", int64(7))
	logger.Error("phase failed")

	if len(got) != 2 {
		t.Fatalf("unexpected mirrored count: got=%d want=%d", len(got), 2)
	}
	if got[0] != "info:season synced" || got[1] != "error:phase failed" {
		t.Fatalf("unexpected mirrored records: %v", got)
	}
}

func TestContextWithAddsScopedFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	logger := FromZap(zap.New(core))

	ctx := ContextWith(context.Background(), "season_id", int64(61), "phase", "reference")
	ctx = ContextWith(ctx, "phase", "matches", "match_id", int64(9))

	logger.InfoContext(ctx, "phase finished", "rows", 3)
	logger.Info("plain record")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("unexpected entry count: got=%d want=%d", len(entries), 2)
	}
	fields := entries[0].ContextMap()
	if fields["season_id"] != int64(61) || fields["phase"] != "matches" || fields["match_id"] != int64(9) || fields["rows"] != int64(3) {
		t.Fatalf("unexpected scoped fields: %+v", fields)
	}
	if _, ok := entries[1].ContextMap()["season_id"]; ok {
		t.Fatalf("expected plain record without scoped fields")
	}
}

func TestCallArgsOverrideScopedFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	logger := FromZap(zap.New(core))

	ctx := ContextWith(context.Background(), "season_id", int64(61))
	logger.WarnContext(ctx, "season override", "season_id", int64(62))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("unexpected entry count: got=%d want=%d", len(entries), 1)
	}
	if got := len(entries[0].Context); got != 1 {
		t.Fatalf("unexpected field count: got=%d want=%d", got, 1)
	}
	if got := entries[0].ContextMap()["season_id"]; got != int64(62) {
		t.Fatalf("unexpected season_id: got=%v want=%d", got, 62)
	}
}

func TestMirrorReceivesBoundArgs(t *testing.T) {
	core, _ := observer.New(zap.InfoLevel)
	logger := FromZap(zap.New(core)).With("command", "live")

	var got []any
	SetMirror(func(_ context.Context, _ Level, _ string, args ...any) {
		got = args
	})
	t.Cleanup(func() { SetMirror(nil) })

	ctx := ContextWith(context.Background(), "match_id", int64(5))
	logger.InfoContext(ctx, "match went live")

	want := []any{"command", "live", "match_id", int64(5)}
	if len(got) != len(want) {
		t.Fatalf("unexpected mirrored args: got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected mirrored arg %d: got=%v want=%v", i, got[i], want[i])
		}
	}
}
