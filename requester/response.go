package requester

import (
	"encoding/json"
	"strings"
)

// parseErrorBody extracts the machine code, human message, and trace id from
// an error response. Primary shape is {code, message, trace_id}; legacy
// backends wrap the same fields under an "error" object.
func parseErrorBody(body []byte) (code string, message string, traceID string) {
	if len(body) == 0 {
		return "", "", ""
	}
	payload := map[string]any{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", strings.TrimSpace(string(body)), ""
	}

	if nested, ok := payload["error"].(map[string]any); ok {
		for key, value := range nested {
			if _, exists := payload[key]; !exists {
				payload[key] = value
			}
		}
	}

	code = readString(payload["code"])
	if code == "" {
		code = readString(payload["error_type"])
	}
	message = readString(payload["message"])
	if message == "" {
		message = readString(payload["error"])
	}
	traceID = readString(payload["trace_id"])
	if traceID == "" {
		traceID = readString(payload["info"])
	}
	return code, message, traceID
}

// isRecoverableAuthCode reports whether a 401 can be recovered by one
// automatic re-authentication. Both the namespaced and bare code spellings
// are accepted.
func isRecoverableAuthCode(code string) bool {
	code = strings.ToLower(strings.TrimSpace(code))
	code = strings.TrimPrefix(code, "authorization.")
	switch code {
	case "unauthorized", "token_expired", "token expired":
		return true
	default:
		return false
	}
}

func readString(value any) string {
	typed, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(typed)
}
