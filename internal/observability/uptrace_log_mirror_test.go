package observability

import (
	"testing"
	"time"

	"github.com/riskibarqy/matchsync/internal/platform/logging"
	otellog "go.opentelemetry.io/otel/log"
)

func TestLogMirrorSkipsChattyDebugRecords(t *testing.T) {
	t.Parallel()

	m := newLogMirror("test")
	if !m.skips(logging.LevelDebug, "sota request") {
		t.Fatalf("expected per-request debug log to be skipped")
	}
	if m.skips(logging.LevelWarn, "sota request") {
		t.Fatalf("did not expect warn level request log to be skipped")
	}
	if m.skips(logging.LevelInfo, "season sync finished") {
		t.Fatalf("did not expect summary log to be skipped")
	}
}

func TestLogAttributes(t *testing.T) {
	t.Parallel()

	attrs := logAttributes([]any{"match_id", int64(901), 7, "home", "payload"})
	if len(attrs) != 3 {
		t.Fatalf("unexpected attribute count: got=%d want=%d", len(attrs), 3)
	}
	if attrs[0].Key != "match_id" || attrs[0].Value.AsInt64() != 901 {
		t.Fatalf("unexpected match_id attribute: %+v", attrs[0])
	}
	if attrs[1].Key != "arg_1" || attrs[1].Value.AsString() != "home" {
		t.Fatalf("unexpected positional attribute: %+v", attrs[1])
	}
	if attrs[2].Key != "payload" || attrs[2].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected payload attribute: %+v", attrs[2])
	}
}

func TestLogValueKinds(t *testing.T) {
	t.Parallel()

	type phaseSummary struct {
		Phase   string `json:"phase"`
		Updated int    `json:"updated"`
	}
	shirt := uint16(9)

	cases := []struct {
		name  string
		value any
		kind  otellog.Kind
	}{
		{name: "int32", value: int32(4), kind: otellog.KindInt64},
		{name: "uint pointer", value: &shirt, kind: otellog.KindInt64},
		{name: "float", value: float32(1.5), kind: otellog.KindFloat64},
		{name: "duration", value: 3 * time.Second, kind: otellog.KindString},
		{name: "ids", value: []int64{1, 2}, kind: otellog.KindSlice},
		{name: "map", value: map[string]any{"positions_updated": 11, "kit_color_updated": true}, kind: otellog.KindMap},
		{name: "struct", value: phaseSummary{Phase: "matches", Updated: 3}, kind: otellog.KindMap},
		{name: "nil pointer", value: (*int)(nil), kind: otellog.KindEmpty},
	}
	for _, tc := range cases {
		if got := logValue(tc.value, 0).Kind(); got != tc.kind {
			t.Fatalf("unexpected kind for %s: got=%s want=%s", tc.name, got, tc.kind)
		}
	}

	summary := logValue(phaseSummary{Phase: "matches", Updated: 3}, 0).AsMap()
	if len(summary) != 2 || summary[0].Key != "phase" || summary[1].Value.AsFloat64() != 3 {
		t.Fatalf("unexpected struct rendering: %+v", summary)
	}
}
