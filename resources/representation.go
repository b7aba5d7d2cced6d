package resources

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-cattr/core"
)

// Backend timestamps arrive either as RFC3339 or as the bare datetime the
// legacy API emits.
var timestampLayouts = []string{time.RFC3339, "2006-01-02 15:04:05"}

func decodeList(raw json.RawMessage) []map[string]any {
	unwrapped := core.UnwrapData(raw)
	items := []map[string]any{}
	if err := json.Unmarshal(unwrapped, &items); err != nil {
		return nil
	}
	return items
}

func decodeItem(raw json.RawMessage) map[string]any {
	unwrapped := core.UnwrapData(raw)
	item := map[string]any{}
	if err := json.Unmarshal(unwrapped, &item); err != nil {
		return map[string]any{}
	}
	return item
}

func readString(value any) string {
	typed, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(typed)
}

func readInt64(value any) int64 {
	switch typed := value.(type) {
	case float64:
		return int64(typed)
	case int64:
		return typed
	case int:
		return int64(typed)
	case json.Number:
		parsed, err := typed.Int64()
		if err == nil {
			return parsed
		}
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err == nil {
			return parsed
		}
	}
	return 0
}

func readBool(value any) bool {
	switch typed := value.(type) {
	case bool:
		return typed
	case float64:
		return typed != 0
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(typed))
		return trimmed == "true" || trimmed == "1"
	default:
		return false
	}
}

func readTime(value any) time.Time {
	raw := readString(value)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
