package core

import "strings"

const RedactedValue = "[REDACTED]"

// RedactSensitiveMap returns a copy of the payload with secret-bearing fields
// replaced by the redaction marker. It is applied to every payload before the
// payload is attached to an error context.
func RedactSensitiveMap(payload map[string]any) map[string]any {
	if len(payload) == 0 {
		return map[string]any{}
	}
	return redactSensitiveMap(payload)
}

func redactSensitiveMap(source map[string]any) map[string]any {
	target := make(map[string]any, len(source))
	for key, value := range source {
		if shouldRedactKey(key) {
			target[key] = RedactedValue
			continue
		}
		target[key] = redactSensitiveValue(value)
	}
	return target
}

func redactSensitiveValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return redactSensitiveMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = redactSensitiveValue(typed[i])
		}
		return out
	case Attachment:
		return RedactedValue
	case *Attachment:
		return RedactedValue
	default:
		return value
	}
}

func shouldRedactKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return false
	}
	sensitiveTokens := []string{
		"password",
		"secret",
		"token",
		"api_key",
		"apikey",
		"screenshot",
		"authorization",
	}
	for _, token := range sensitiveTokens {
		if strings.Contains(key, token) {
			return true
		}
	}
	return false
}
