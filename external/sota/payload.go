package sota

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchsync/internal/usecase"
)

var digitsRegex = regexp.MustCompile(`\d+`)

// stringValue renders scalar payload values as text. A list yields its first
// element.
func stringValue(raw any) string {
	switch typed := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case float64:
		if typed == math.Trunc(typed) {
			return strconv.FormatInt(int64(typed), 10)
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case bool:
		return strconv.FormatBool(typed)
	case []any:
		if len(typed) == 0 {
			return ""
		}
		return stringValue(typed[0])
	default:
		return ""
	}
}

func boolValue(raw any) bool {
	switch typed := raw.(type) {
	case bool:
		return typed
	case float64:
		return typed != 0
	case int:
		return typed != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "1", "true", "yes", "y":
			return true
		}
		return false
	case []any:
		if len(typed) == 0 {
			return false
		}
		return boolValue(typed[0])
	default:
		return false
	}
}

func getString(src map[string]any, key string) string {
	if src == nil {
		return ""
	}
	return stringValue(src[key])
}

func getBool(src map[string]any, key string) bool {
	if src == nil {
		return false
	}
	return boolValue(src[key])
}

func getInt(src map[string]any, key string) int {
	return int(getInt64(src, key))
}

func getIntAny(src map[string]any, keys ...string) int {
	for _, key := range keys {
		if value := getInt(src, key); value != 0 {
			return value
		}
	}
	return 0
}

func getInt64(src map[string]any, key string) int64 {
	v, _ := lookupInt64(src, key)
	return v
}

// getIntPtr distinguishes a missing value from zero.
func getIntPtr(src map[string]any, key string) *int {
	v, ok := lookupInt64(src, key)
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}

func lookupInt64(src map[string]any, key string) (int64, bool) {
	if src == nil {
		return 0, false
	}
	raw, ok := src[key]
	if !ok || raw == nil {
		return 0, false
	}
	return asInt64(raw)
}

func asInt64(raw any) (int64, bool) {
	switch typed := raw.(type) {
	case float64:
		return int64(typed), true
	case int:
		return int64(typed), true
	case int64:
		return typed, true
	case string:
		v, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

// idOf reads an id stored either flat (`team_id: 5`) or as a nested object
// (`team: {id: 5}`).
func idOf(src map[string]any, keys ...string) int64 {
	for _, key := range keys {
		if nested := asMap(src[key]); nested != nil {
			if v := getInt64(nested, "id"); v > 0 {
				return v
			}
			continue
		}
		if v := getInt64(src, key); v > 0 {
			return v
		}
	}
	return 0
}

// nameOf reads a name stored flat or as a nested object with a name field.
func nameOf(src map[string]any, key string) string {
	if nested := asMap(src[key]); nested != nil {
		return getString(nested, "name")
	}
	return getString(src, key)
}

func asMap(raw any) map[string]any {
	m, _ := raw.(map[string]any)
	return m
}

func asMaps(raw any) []map[string]any {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m := asMap(item); m != nil {
			out = append(out, m)
		}
	}
	return out
}

// nestedList finds a collection in a document that is either a bare list or
// an object carrying the list under one of paths. A path like "data.players"
// descends into nested objects.
func nestedList(doc any, paths ...string) ([]map[string]any, bool) {
	if _, ok := doc.([]any); ok {
		return asMaps(doc), true
	}
	root := asMap(doc)
	for _, path := range paths {
		var cur any = root
		for _, part := range strings.Split(path, ".") {
			cur = asMap(cur)[part]
		}
		if _, ok := cur.([]any); ok {
			return asMaps(cur), true
		}
	}
	return nil, false
}

// statsValue converts either a list of {key, value} pairs or a plain object
// into a metric map.
func statsValue(raw any) usecase.ExternalStats {
	out := make(usecase.ExternalStats)
	switch typed := raw.(type) {
	case map[string]any:
		for k, v := range typed {
			out[k] = v
		}
	case []any:
		for _, item := range asMaps(typed) {
			key := getString(item, "key")
			if key == "" {
				key = getString(item, "name")
			}
			if key == "" {
				continue
			}
			out[key] = item["value"]
		}
	}
	return out
}

func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05", "02.01.2006"} {
		if t, err := time.Parse(layout, value); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

// parseMinute reads "45", "45'" or "90+3" as the leading minute.
func parseMinute(raw any) int {
	if n, ok := asInt64(raw); ok {
		return int(n)
	}
	match := digitsRegex.FindString(stringValue(raw))
	if match == "" {
		return 0
	}
	n, _ := strconv.Atoi(match)
	return n
}

func firstNonEmpty(values ...string) string {
	for _, item := range values {
		if strings.TrimSpace(item) != "" {
			return strings.TrimSpace(item)
		}
	}
	return ""
}

func redactURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	if query.Has("access_token") {
		query.Set("access_token", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
