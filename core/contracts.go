package core

import (
	"context"
	"encoding/json"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// TokenProvider is the pluggable storage capability for the session token.
// The client reads and writes through this interface and never owns the
// storage medium.
type TokenProvider interface {
	Get(ctx context.Context) (Token, error)
	Set(ctx context.Context, token Token) error
}

// CredentialsProvider is the pluggable storage capability for the long-lived
// login credentials.
type CredentialsProvider interface {
	Get(ctx context.Context) (Credentials, error)
	Set(ctx context.Context, credentials Credentials) error
}

// Providers is the pair of entity providers the embedding application
// supplies once at setup time.
type Providers struct {
	Token       TokenProvider
	Credentials CredentialsProvider
}

// Reauthenticator obtains a fresh token from stored credentials. It is a
// policy helper, not a primary call path: it reports false instead of
// returning an error.
type Reauthenticator interface {
	Reauthenticate(ctx context.Context) bool
}

// Options configure a single request issued through the Requester.
type Options struct {
	// Headers are merged into the request after the defaults.
	Headers map[string]string
	// NoAuth skips attaching a bearer token.
	NoAuth bool
	// NoPaginate asks the backend for the full, unpaginated result set.
	NoPaginate bool
	// NoRelogin suppresses the retry-after-reauthentication behavior.
	NoRelogin bool
}

// Requester is the collaborator surface the resource and authentication
// modules consume. Each verb performs one logical call and returns the raw
// decoded payload, or one of the taxonomy errors.
type Requester interface {
	Get(ctx context.Context, url string, opts Options) (json.RawMessage, error)
	Post(ctx context.Context, url string, body map[string]any, opts Options) (json.RawMessage, error)
	Put(ctx context.Context, url string, body map[string]any, opts Options) (json.RawMessage, error)
	Patch(ctx context.Context, url string, body map[string]any, opts Options) (json.RawMessage, error)
}

type TransportRequest struct {
	Method   string
	URL      string
	Headers  map[string]string
	Query    map[string]string
	Body     []byte
	Metadata map[string]any
	Timeout  time.Duration
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

// TransportAdapter issues one HTTP request. A returned error means no usable
// server response was received; an error status from the server arrives as a
// TransportResponse with the corresponding StatusCode.
type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
