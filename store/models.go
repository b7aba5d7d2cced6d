package store

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-cattr/core"
)

type tokenRecord struct {
	bun.BaseModel `bun:"table:cattr_tokens,alias:ct"`

	ID        string     `bun:"id,pk"`
	Profile   string     `bun:"profile,notnull"`
	Value     string     `bun:"value,notnull"`
	TokenType string     `bun:"token_type,notnull"`
	ExpiresAt *time.Time `bun:"expires_at,nullzero"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *tokenRecord) toDomain() core.Token {
	if r == nil {
		return core.Token{}
	}
	token := core.Token{
		Value: r.Value,
		Type:  r.TokenType,
	}
	if r.ExpiresAt != nil {
		token.ExpiresAt = r.ExpiresAt.UTC()
	}
	return token
}

type credentialsRecord struct {
	bun.BaseModel `bun:"table:cattr_credentials,alias:cc"`

	ID        string    `bun:"id,pk"`
	Profile   string    `bun:"profile,notnull"`
	Email     string    `bun:"email,notnull"`
	Password  string    `bun:"password,notnull"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *credentialsRecord) toDomain() core.Credentials {
	if r == nil {
		return core.Credentials{}
	}
	return core.Credentials{Email: r.Email, Password: r.Password}
}
