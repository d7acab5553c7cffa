package observability

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	otellog "go.opentelemetry.io/otel/log"
	otelglobal "go.opentelemetry.io/otel/log/global"
)

const maxLogValueDepth = 3

// logMirror copies zap records into the OpenTelemetry log pipeline that
// Uptrace exports.
type logMirror struct {
	logger otellog.Logger
	// chatty lists per-request messages dropped below warn level.
	chatty map[string]struct{}
	now    func() time.Time
}

func newLogMirror(serviceVersion string) *logMirror {
	return &logMirror{
		logger: otelglobal.Logger("matchsync/internal/platform/logging", otellog.WithInstrumentationVersion(serviceVersion)),
		chatty: map[string]struct{}{
			"sota request":      {},
			"live document get": {},
		},
		now: time.Now,
	}
}

func (m *logMirror) emit(ctx context.Context, level logging.Level, msg string, args ...any) {
	if m.skips(level, msg) {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	severity := logSeverity(level)
	if !m.logger.Enabled(ctx, otellog.EnabledParameters{Severity: severity, EventName: msg}) {
		return
	}

	var record otellog.Record
	ts := m.now().UTC()
	record.SetTimestamp(ts)
	record.SetObservedTimestamp(ts)
	record.SetSeverity(severity)
	record.SetSeverityText(strings.ToUpper(level.String()))
	record.SetEventName(msg)
	record.SetBody(otellog.StringValue(msg))
	record.AddAttributes(logAttributes(args)...)
	m.logger.Emit(ctx, record)
}

func (m *logMirror) skips(level logging.Level, msg string) bool {
	if level >= logging.LevelWarn {
		return false
	}
	_, ok := m.chatty[msg]
	return ok
}

// logAttributes pairs args the way the zap logger does. A dangling key is
// kept as an empty attribute.
func logAttributes(args []any) []otellog.KeyValue {
	attrs := make([]otellog.KeyValue, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key, _ := args[i].(string)
		if strings.TrimSpace(key) == "" {
			key = "arg_" + strconv.Itoa(i/2)
		}
		if i+1 == len(args) {
			attrs = append(attrs, otellog.Empty(key))
			break
		}
		attrs = append(attrs, otellog.KeyValue{Key: key, Value: logValue(args[i+1], 0)})
	}
	return attrs
}

func logSeverity(level logging.Level) otellog.Severity {
	switch {
	case level < logging.LevelInfo:
		return otellog.SeverityDebug
	case level == logging.LevelInfo:
		return otellog.SeverityInfo
	case level == logging.LevelWarn:
		return otellog.SeverityWarn
	case level == logging.LevelError:
		return otellog.SeverityError
	default:
		return otellog.SeverityFatal
	}
}

func logValue(value any, depth int) otellog.Value {
	switch v := value.(type) {
	case nil:
		return otellog.Value{}
	case string:
		return otellog.StringValue(v)
	case bool:
		return otellog.BoolValue(v)
	case []byte:
		return otellog.BytesValue(append([]byte(nil), v...))
	case time.Time:
		return otellog.StringValue(v.UTC().Format(time.RFC3339Nano))
	case time.Duration:
		return otellog.StringValue(v.String())
	case error:
		return otellog.StringValue(v.Error())
	case fmt.Stringer:
		return otellog.StringValue(v.String())
	}
	if depth >= maxLogValueDepth {
		return otellog.StringValue(fmt.Sprint(value))
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return otellog.Int64Value(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if u := rv.Uint(); u <= math.MaxInt64 {
			return otellog.Int64Value(int64(u))
		}
		return otellog.StringValue(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		return otellog.Float64Value(rv.Float())
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return otellog.Value{}
		}
		return logValue(rv.Elem().Interface(), depth+1)
	case reflect.Slice, reflect.Array:
		items := make([]otellog.Value, rv.Len())
		for i := range items {
			items[i] = logValue(rv.Index(i).Interface(), depth+1)
		}
		return otellog.SliceValue(items...)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return otellog.StringValue(fmt.Sprint(value))
		}
		return mapLogValue(rv, depth)
	case reflect.Struct:
		return structLogValue(value, depth)
	default:
		return otellog.StringValue(fmt.Sprint(value))
	}
}

func mapLogValue(rv reflect.Value, depth int) otellog.Value {
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	kvs := make([]otellog.KeyValue, 0, len(keys))
	for _, key := range keys {
		kvs = append(kvs, otellog.KeyValue{Key: key.String(), Value: logValue(rv.MapIndex(key).Interface(), depth+1)})
	}
	return otellog.MapValue(kvs...)
}

// structLogValue renders a struct through its JSON form, so result structs
// logged by the sync services keep their json field names.
func structLogValue(value any, depth int) otellog.Value {
	raw, err := sonic.Marshal(value)
	if err != nil {
		return otellog.StringValue(fmt.Sprint(value))
	}
	var fields map[string]any
	if err := sonic.Unmarshal(raw, &fields); err != nil {
		return otellog.StringValue(string(raw))
	}
	return mapLogValue(reflect.ValueOf(fields), depth)
}
