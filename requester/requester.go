// Package requester implements the authenticated HTTP request core: one
// logical call per verb with a single bounded re-authentication retry.
package requester

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-cattr/core"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

const (
	headerAuthorization = "Authorization"
	headerClientVersion = "X-Cattr-Client"
	headerPaginate      = "X-Paginate"
	headerAccept        = "Accept"
	headerContentType   = "Content-Type"
)

const defaultRequestTimeout = 30 * time.Second

// Requester performs authenticated calls against the backend through a
// transport adapter. The base URL is applied explicitly via ApplyBaseURL;
// nothing is rebuilt reactively.
type Requester struct {
	mu        sync.RWMutex
	baseURL   string
	adapter   core.TransportAdapter
	providers core.Providers
	reauth    core.Reauthenticator
	version   string
	timeout   time.Duration
	logger    core.Logger
}

type Option func(*Requester)

func WithLogger(logger core.Logger) Option {
	return func(r *Requester) {
		r.logger = logger
	}
}

func WithBaseURL(baseURL string) Option {
	return func(r *Requester) {
		r.baseURL = normalizeBase(baseURL)
	}
}

func WithClientVersion(version string) Option {
	return func(r *Requester) {
		r.version = strings.TrimSpace(version)
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(r *Requester) {
		r.timeout = timeout
	}
}

func WithReauthenticator(reauth core.Reauthenticator) Option {
	return func(r *Requester) {
		r.reauth = reauth
	}
}

func New(adapter core.TransportAdapter, providers core.Providers, opts ...Option) *Requester {
	r := &Requester{
		adapter:   adapter,
		providers: providers,
		version:   core.Version,
		timeout:   defaultRequestTimeout,
		logger:    glog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = glog.Ensure(r.logger)
	return r
}

// SetReauthenticator wires the authentication module in after construction.
// The auth module itself calls back into this requester, so the two are
// connected in a second step.
func (r *Requester) SetReauthenticator(reauth core.Reauthenticator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reauth = reauth
}

// ApplyBaseURL replaces the configured base URL in one explicit step.
func (r *Requester) ApplyBaseURL(baseURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.baseURL = normalizeBase(baseURL)
}

func (r *Requester) BaseURL() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.baseURL
}

func (r *Requester) Get(ctx context.Context, url string, opts core.Options) (json.RawMessage, error) {
	return r.do(ctx, http.MethodGet, url, nil, opts)
}

func (r *Requester) Post(ctx context.Context, url string, body map[string]any, opts core.Options) (json.RawMessage, error) {
	return r.doWrite(ctx, http.MethodPost, url, body, opts)
}

func (r *Requester) Put(ctx context.Context, url string, body map[string]any, opts core.Options) (json.RawMessage, error) {
	return r.doWrite(ctx, http.MethodPut, url, body, opts)
}

func (r *Requester) Patch(ctx context.Context, url string, body map[string]any, opts core.Options) (json.RawMessage, error) {
	return r.doWrite(ctx, http.MethodPatch, url, body, opts)
}

func (r *Requester) doWrite(ctx context.Context, method string, url string, body map[string]any, opts core.Options) (json.RawMessage, error) {
	if body == nil {
		return nil, core.NewValidationError("body", "a structured body is required for "+method)
	}
	return r.do(ctx, method, url, body, opts)
}

func (r *Requester) do(ctx context.Context, method string, relURL string, body map[string]any, opts core.Options) (json.RawMessage, error) {
	if strings.TrimSpace(relURL) == "" {
		return nil, core.NewValidationError("url", "url is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	r.mu.RLock()
	base := r.baseURL
	adapter := r.adapter
	reauth := r.reauth
	version := r.version
	timeout := r.timeout
	r.mu.RUnlock()

	if base == "" {
		return nil, core.NewValidationError("base_url", "base url is not configured; call SetBaseURL first")
	}
	if adapter == nil {
		return nil, core.NewValidationError("transport", "transport adapter is not configured")
	}

	absoluteURL := joinURL(base, relURL)
	reqCtx := core.RequestContext{
		RequestID: uuid.NewString(),
		Method:    method,
		URL:       absoluteURL,
		Payload:   core.RedactSensitiveMap(body),
	}

	encoded, contentType, err := encodeBody(body)
	if err != nil {
		return nil, core.NewValidationError("body", err.Error())
	}

	// One originating call gets at most one re-authentication, whether it is
	// spent recovering a missing token or recovering a rejected one.
	reloginAvailable := !opts.NoRelogin && reauth != nil

	for attempt := 0; attempt < 2; attempt++ {
		var token core.Token
		if !opts.NoAuth {
			token = r.currentToken(ctx)
			if !token.Valid() {
				if reloginAvailable && reauth.Reauthenticate(ctx) {
					reloginAvailable = false
					token = r.currentToken(ctx)
				}
				if !token.Valid() {
					return nil, core.NewCredentialsError("cattr: no usable token and automatic re-authentication is not possible", reqCtx)
				}
			}
		}

		headers := r.buildHeaders(token, contentType, version, opts)
		res, doErr := adapter.Do(ctx, core.TransportRequest{
			Method:   method,
			URL:      absoluteURL,
			Headers:  headers,
			Body:     encoded,
			Timeout:  timeout,
			Metadata: map[string]any{"request_id": reqCtx.RequestID},
		})
		if doErr != nil {
			err := core.NewNetworkError(doErr, reqCtx)
			r.logFailure(ctx, method, absoluteURL, 0, err)
			return nil, err
		}

		if res.StatusCode >= 200 && res.StatusCode < 300 {
			r.logSuccess(ctx, method, absoluteURL, res.StatusCode)
			if len(res.Body) == 0 {
				return json.RawMessage("null"), nil
			}
			return json.RawMessage(res.Body), nil
		}

		code, message, traceID := parseErrorBody(res.Body)
		if res.StatusCode == http.StatusUnauthorized && isRecoverableAuthCode(code) && reloginAvailable {
			reloginAvailable = false
			if reauth.Reauthenticate(ctx) {
				continue
			}
		}

		err := core.NewAPIError(res.StatusCode, code, message, traceID, reqCtx)
		r.logFailure(ctx, method, absoluteURL, res.StatusCode, err)
		return nil, err
	}

	// The second iteration always returns; kept for structural clarity.
	return nil, core.NewCredentialsError("cattr: re-authentication retry exhausted", reqCtx)
}

func (r *Requester) currentToken(ctx context.Context) core.Token {
	if r.providers.Token == nil {
		return core.Token{}
	}
	token, err := r.providers.Token.Get(ctx)
	if err != nil {
		return core.Token{}
	}
	return token
}

func (r *Requester) buildHeaders(token core.Token, contentType string, version string, opts core.Options) map[string]string {
	headers := map[string]string{
		headerAccept:        "application/json",
		headerClientVersion: "go-cattr/" + version,
	}
	if contentType != "" {
		headers[headerContentType] = contentType
	}
	if !opts.NoAuth && token.Valid() {
		tokenType := strings.TrimSpace(token.Type)
		if tokenType == "" {
			tokenType = "Bearer"
		}
		headers[headerAuthorization] = tokenType + " " + token.Value
	}
	if opts.NoPaginate {
		headers[headerPaginate] = "false"
	}
	for key, value := range opts.Headers {
		if strings.TrimSpace(key) == "" {
			continue
		}
		headers[key] = value
	}
	return headers
}

func (r *Requester) logSuccess(ctx context.Context, method string, url string, status int) {
	logger := r.logger
	if logger == nil {
		return
	}
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	logger.Info("request completed", "method", method, "url", url, "status", status)
}

func (r *Requester) logFailure(ctx context.Context, method string, url string, status int, err error) {
	logger := r.logger
	if logger == nil {
		return
	}
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	logger.Error("request failed", "method", method, "url", url, "status", status, "error", err.Error())
}

func joinURL(base string, rel string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(strings.TrimSpace(rel), "/")
}

func normalizeBase(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	return strings.TrimSuffix(base, "/") + "/"
}

var _ core.Requester = (*Requester)(nil)
