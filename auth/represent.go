package auth

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/goliatone/go-cattr/core"
	"github.com/golang-jwt/jwt/v5"
)

func decodeObject(raw json.RawMessage) map[string]any {
	payload := map[string]any{}
	if err := json.Unmarshal(core.UnwrapData(raw), &payload); err != nil {
		return map[string]any{}
	}
	return payload
}

// tokenFromPayload maps an auth payload into a Token. In strict mode the
// value, type, and expiry must all be present and correctly typed.
func tokenFromPayload(payload map[string]any, strict bool) (core.Token, bool) {
	value := readString(payload["access_token"])
	if value == "" {
		value = readString(payload["token"])
	}
	if value == "" {
		return core.Token{}, false
	}

	tokenType := readString(payload["token_type"])
	if tokenType == "" && !strict {
		tokenType = "Bearer"
	}

	expiresAt, hasExpiry := expiryFromPayload(payload)
	if !hasExpiry {
		// Tokens are opaque to the client, but when the backend hands out a
		// JWT its exp claim carries the expiry the payload omitted.
		expiresAt, hasExpiry = expiryFromJWT(value)
	}

	if strict && (tokenType == "" || !hasExpiry) {
		return core.Token{}, false
	}
	return core.Token{Value: value, Type: tokenType, ExpiresAt: expiresAt}, true
}

func expiryFromPayload(payload map[string]any) (time.Time, bool) {
	if seconds, ok := payload["expires_in"].(float64); ok && seconds > 0 {
		return time.Now().UTC().Add(time.Duration(seconds) * time.Second), true
	}
	raw := readString(payload["expires_at"])
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func expiryFromJWT(value string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(value, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time.UTC(), true
}

func userFromPayload(value any) (core.User, bool) {
	payload, ok := value.(map[string]any)
	if !ok || len(payload) == 0 {
		return core.User{}, false
	}
	id, hasID := payload["id"].(float64)
	email := readString(payload["email"])
	if !hasID || email == "" {
		return core.User{}, false
	}

	fullName := readString(payload["full_name"])
	if fullName == "" {
		fullName = readString(payload["name"])
	}
	isAdmin := false
	switch typed := payload["is_admin"].(type) {
	case bool:
		isAdmin = typed
	case float64:
		isAdmin = typed != 0
	}

	return core.User{
		ID:       int64(id),
		FullName: fullName,
		Email:    email,
		Avatar:   readString(payload["avatar"]),
		IsAdmin:  isAdmin,
		Timezone: readString(payload["timezone"]),
	}, true
}

func readString(value any) string {
	typed, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(typed)
}
