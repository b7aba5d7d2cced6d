package store

import (
	"context"
	"sync"

	"github.com/goliatone/go-cattr/core"
)

// Memory holds the token and credentials in process memory.
type Memory struct {
	mu          sync.RWMutex
	token       core.Token
	credentials core.Credentials
}

func NewMemory() *Memory {
	return &Memory{}
}

type memoryTokenProvider struct {
	store *Memory
}

type memoryCredentialsProvider struct {
	store *Memory
}

func (m *Memory) TokenProvider() core.TokenProvider {
	return memoryTokenProvider{store: m}
}

func (m *Memory) CredentialsProvider() core.CredentialsProvider {
	return memoryCredentialsProvider{store: m}
}

func (p memoryTokenProvider) Get(context.Context) (core.Token, error) {
	p.store.mu.RLock()
	defer p.store.mu.RUnlock()
	return p.store.token, nil
}

func (p memoryTokenProvider) Set(_ context.Context, token core.Token) error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	p.store.token = token
	return nil
}

func (p memoryCredentialsProvider) Get(context.Context) (core.Credentials, error) {
	p.store.mu.RLock()
	defer p.store.mu.RUnlock()
	return p.store.credentials, nil
}

func (p memoryCredentialsProvider) Set(_ context.Context, credentials core.Credentials) error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	p.store.credentials = credentials
	return nil
}

var (
	_ core.TokenProvider       = memoryTokenProvider{}
	_ core.CredentialsProvider = memoryCredentialsProvider{}
)
