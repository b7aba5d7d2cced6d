package core

import (
	"strings"
	"time"
)

// Token is the bearer session token the backend issues on login, refresh, or
// single-click authentication.
type Token struct {
	Value     string    `json:"value"`
	Type      string    `json:"type"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (t Token) Valid() bool {
	return strings.TrimSpace(t.Value) != ""
}

func (t Token) Expired(now time.Time) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(t.ExpiresAt)
}

// Credentials are the long-lived login credentials the embedding application
// hands to the credentials provider.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Valid() bool {
	return strings.TrimSpace(c.Email) != "" && strings.TrimSpace(c.Password) != ""
}

// Attachment is a binary payload field. A request body containing one or more
// attachments is encoded as multipart/form-data instead of JSON.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// User is the normalized profile record produced by login and me.
type User struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
	IsAdmin  bool   `json:"is_admin"`
	Timezone string `json:"timezone"`
}

// Session couples a freshly issued token with the profile it belongs to.
type Session struct {
	Token Token `json:"token"`
	User  User  `json:"user"`
}
