package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-cattr/core"
)

const defaultProfile = "default"

// SQLStore persists the token and credentials in a bun-managed database,
// keyed by profile so several accounts can share one file.
type SQLStore struct {
	db        *bun.DB
	profile   string
	tokenRepo repository.Repository[*tokenRecord]
	credsRepo repository.Repository[*credentialsRecord]
}

// NewSQLStore accepts either a *bun.DB or any persistence client exposing
// DB() *bun.DB (the go-persistence-bun client does).
func NewSQLStore(persistenceClient any, profile string) (*SQLStore, error) {
	db, err := resolveBunDB(persistenceClient)
	if err != nil {
		return nil, err
	}
	profile = strings.TrimSpace(profile)
	if profile == "" {
		profile = defaultProfile
	}

	tokenRepo := repository.NewRepository[*tokenRecord](db, tokenHandlers())
	if validator, ok := tokenRepo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("store: invalid token repository wiring: %w", err)
		}
	}
	credsRepo := repository.NewRepository[*credentialsRecord](db, credentialsHandlers())
	if validator, ok := credsRepo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("store: invalid credentials repository wiring: %w", err)
		}
	}

	return &SQLStore{
		db:        db,
		profile:   profile,
		tokenRepo: tokenRepo,
		credsRepo: credsRepo,
	}, nil
}

// NewSQLStoreFromPersistence wires the store from an application's managed
// go-persistence-bun client.
func NewSQLStoreFromPersistence(client *persistence.Client, profile string) (*SQLStore, error) {
	if client == nil {
		return nil, fmt.Errorf("store: persistence client is required")
	}
	return NewSQLStore(client, profile)
}

// OpenSQLite opens (or creates) an SQLite-backed store at path and ensures
// the schema exists. Use ":memory:" for a throwaway store.
func OpenSQLite(ctx context.Context, path string, profile string) (*SQLStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store: sqlite path is required")
	}
	sqldb, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite database: %w", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())

	s, err := NewSQLStore(db, profile)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.InitSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) InitSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store: sql store is not configured")
	}
	for _, model := range []any{(*tokenRecord)(nil), (*credentialsRecord)(nil)} {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("store: create table: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) TokenProvider() core.TokenProvider {
	return sqlTokenProvider{store: s}
}

func (s *SQLStore) CredentialsProvider() core.CredentialsProvider {
	return sqlCredentialsProvider{store: s}
}

type sqlTokenProvider struct {
	store *SQLStore
}

func (p sqlTokenProvider) Get(ctx context.Context) (core.Token, error) {
	s := p.store
	if s == nil || s.tokenRepo == nil {
		return core.Token{}, fmt.Errorf("store: token store is not configured")
	}
	records, _, err := s.tokenRepo.List(ctx,
		repository.SelectBy("profile", "=", s.profile),
		repository.OrderBy("updated_at DESC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.Token{}, err
	}
	if len(records) == 0 {
		return core.Token{}, nil
	}
	return records[0].toDomain(), nil
}

func (p sqlTokenProvider) Set(ctx context.Context, token core.Token) error {
	s := p.store
	if s == nil || s.db == nil || s.tokenRepo == nil {
		return fmt.Errorf("store: token store is not configured")
	}
	now := time.Now().UTC()
	record := &tokenRecord{
		ID:        uuid.NewString(),
		Profile:   s.profile,
		Value:     token.Value,
		TokenType: token.Type,
		UpdatedAt: now,
	}
	if !token.ExpiresAt.IsZero() {
		expiresAt := token.ExpiresAt.UTC()
		record.ExpiresAt = &expiresAt
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*tokenRecord)(nil)).
			Where("profile = ?", s.profile).
			Exec(ctx); err != nil {
			return err
		}
		_, err := s.tokenRepo.CreateTx(ctx, tx, record)
		return err
	})
}

type sqlCredentialsProvider struct {
	store *SQLStore
}

func (p sqlCredentialsProvider) Get(ctx context.Context) (core.Credentials, error) {
	s := p.store
	if s == nil || s.credsRepo == nil {
		return core.Credentials{}, fmt.Errorf("store: credentials store is not configured")
	}
	records, _, err := s.credsRepo.List(ctx,
		repository.SelectBy("profile", "=", s.profile),
		repository.OrderBy("updated_at DESC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.Credentials{}, err
	}
	if len(records) == 0 {
		return core.Credentials{}, nil
	}
	return records[0].toDomain(), nil
}

func (p sqlCredentialsProvider) Set(ctx context.Context, credentials core.Credentials) error {
	s := p.store
	if s == nil || s.db == nil || s.credsRepo == nil {
		return fmt.Errorf("store: credentials store is not configured")
	}
	record := &credentialsRecord{
		ID:        uuid.NewString(),
		Profile:   s.profile,
		Email:     credentials.Email,
		Password:  credentials.Password,
		UpdatedAt: time.Now().UTC(),
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*credentialsRecord)(nil)).
			Where("profile = ?", s.profile).
			Exec(ctx); err != nil {
			return err
		}
		_, err := s.credsRepo.CreateTx(ctx, tx, record)
		return err
	})
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("store: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("store: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("store: unsupported persistence client type %T", candidate)
	}
}

var (
	_ core.TokenProvider       = sqlTokenProvider{}
	_ core.CredentialsProvider = sqlCredentialsProvider{}
)
