package auth

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-cattr/core"
	"github.com/goliatone/go-cattr/store"
)

type recordedCall struct {
	method string
	url    string
	body   map[string]any
	opts   core.Options
}

type fakeRequester struct {
	responses map[string]json.RawMessage
	failWith  error
	calls     []recordedCall
}

func (f *fakeRequester) Get(_ context.Context, url string, opts core.Options) (json.RawMessage, error) {
	return f.record("GET", url, nil, opts)
}

func (f *fakeRequester) Post(_ context.Context, url string, body map[string]any, opts core.Options) (json.RawMessage, error) {
	return f.record("POST", url, body, opts)
}

func (f *fakeRequester) Put(_ context.Context, url string, body map[string]any, opts core.Options) (json.RawMessage, error) {
	return f.record("PUT", url, body, opts)
}

func (f *fakeRequester) Patch(_ context.Context, url string, body map[string]any, opts core.Options) (json.RawMessage, error) {
	return f.record("PATCH", url, body, opts)
}

func (f *fakeRequester) record(method string, url string, body map[string]any, opts core.Options) (json.RawMessage, error) {
	f.calls = append(f.calls, recordedCall{method: method, url: url, body: body, opts: opts})
	if f.failWith != nil {
		return nil, f.failWith
	}
	if raw, ok := f.responses[url]; ok {
		return raw, nil
	}
	return json.RawMessage("null"), nil
}

func newTestService(req core.Requester, memory *store.Memory, opts ...Option) *Service {
	providers := core.Providers{
		Token:       memory.TokenProvider(),
		Credentials: memory.CredentialsProvider(),
	}
	return New(req, providers, opts...)
}

func TestLoginValidatesBeforeAnyRequest(t *testing.T) {
	req := &fakeRequester{}
	svc := newTestService(req, store.NewMemory())

	if _, err := svc.Login(context.Background(), "", "secret"); !core.IsValidationError(err) {
		t.Fatalf("expected validation error for empty email, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "a@b.com", "  "); err == nil {
		t.Fatal("expected validation error for blank password")
	}
	if len(req.calls) != 0 {
		t.Fatalf("expected no request, got %d", len(req.calls))
	}
}

func TestLoginMapsSessionAndBypassesAuth(t *testing.T) {
	req := &fakeRequester{responses: map[string]json.RawMessage{
		"auth/login": json.RawMessage(`{
			"access_token": "tok_abc",
			"token_type": "bearer",
			"expires_in": 3600,
			"user": {"id": 12, "full_name": "Ada Wong", "email": "ada@example.com", "is_admin": 1}
		}`),
	}}
	svc := newTestService(req, store.NewMemory())

	session, err := svc.Login(context.Background(), "ada@example.com", "secret")
	if err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}
	if session.Token.Value != "tok_abc" || session.Token.Type != "bearer" {
		t.Fatalf("unexpected token %+v", session.Token)
	}
	if session.Token.ExpiresAt.Before(time.Now().Add(30 * time.Minute)) {
		t.Fatalf("expected expiry derived from expires_in, got %v", session.Token.ExpiresAt)
	}
	if session.User.ID != 12 || session.User.FullName != "Ada Wong" || !session.User.IsAdmin {
		t.Fatalf("unexpected user %+v", session.User)
	}

	call := req.calls[0]
	if !call.opts.NoAuth || !call.opts.NoRelogin {
		t.Fatalf("expected login to bypass auth and relogin, got %+v", call.opts)
	}
	if call.body["password"] != "secret" {
		t.Fatalf("expected credentials in body, got %+v", call.body)
	}
}

func TestLoginRejectsPayloadWithoutToken(t *testing.T) {
	req := &fakeRequester{responses: map[string]json.RawMessage{
		"auth/login": json.RawMessage(`{"user": {"id": 1, "email": "a@b.com"}}`),
	}}
	svc := newTestService(req, store.NewMemory())

	_, err := svc.Login(context.Background(), "a@b.com", "secret")
	if !core.IsAPIError(err) {
		t.Fatalf("expected structural error, got %v", err)
	}
}

func TestMeUnwrapsDataEnvelope(t *testing.T) {
	req := &fakeRequester{responses: map[string]json.RawMessage{
		"auth/me": json.RawMessage(`{"data": {"id": 7, "email": "me@example.com", "name": "Me"}}`),
	}}
	svc := newTestService(req, store.NewMemory())

	user, err := svc.Me(context.Background())
	if err != nil {
		t.Fatalf("expected profile, got %v", err)
	}
	if user.ID != 7 || user.Email != "me@example.com" || user.FullName != "Me" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestLogoutPicksEndpointAndSuppressesRelogin(t *testing.T) {
	req := &fakeRequester{}
	svc := newTestService(req, store.NewMemory())

	ok, err := svc.Logout(context.Background(), false)
	if err != nil || !ok {
		t.Fatalf("expected logout to succeed, got ok=%v err=%v", ok, err)
	}
	if _, err := svc.Logout(context.Background(), true); err != nil {
		t.Fatalf("expected logout-from-all to succeed, got %v", err)
	}

	if req.calls[0].url != "auth/logout" || req.calls[1].url != "auth/logout-from-all" {
		t.Fatalf("unexpected endpoints %q %q", req.calls[0].url, req.calls[1].url)
	}
	for _, call := range req.calls {
		if !call.opts.NoRelogin {
			t.Fatalf("expected relogin suppressed on %q", call.url)
		}
	}
}

func TestRefreshRequiresStrictTokenShape(t *testing.T) {
	req := &fakeRequester{responses: map[string]json.RawMessage{
		"auth/refresh": json.RawMessage(`{"access_token": "tok_new"}`),
	}}
	svc := newTestService(req, store.NewMemory())

	_, err := svc.Refresh(context.Background(), false)
	if !core.IsAPIError(err) {
		t.Fatalf("expected structural error for incomplete token, got %v", err)
	}
	if !req.calls[0].opts.NoRelogin {
		t.Fatal("expected relogin suppressed when relogin=false")
	}

	req.responses["auth/refresh"] = json.RawMessage(`{
		"access_token": "tok_new",
		"token_type": "Bearer",
		"expires_at": "2030-06-01T10:00:00Z"
	}`)
	token, err := svc.Refresh(context.Background(), true)
	if err != nil {
		t.Fatalf("expected refresh to succeed, got %v", err)
	}
	if token.Value != "tok_new" || token.ExpiresAt.Year() != 2030 {
		t.Fatalf("unexpected token %+v", token)
	}
	if req.calls[1].opts.NoRelogin {
		t.Fatal("expected relogin allowed when relogin=true")
	}
}

func TestSingleClickRedirectionRejectsBadOriginBeforePosting(t *testing.T) {
	req := &fakeRequester{}
	svc := newTestService(req, store.NewMemory(), WithRedirectionBase(func() string {
		return "file:///etc/passwd"
	}))

	_, err := svc.SingleClickRedirection(context.Background())
	if !core.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(req.calls) != 0 {
		t.Fatalf("expected no request for a rejected origin, got %d", len(req.calls))
	}
}

func TestSingleClickRedirectionBuildsHandoffURL(t *testing.T) {
	req := &fakeRequester{responses: map[string]json.RawMessage{
		"auth/desktop-key": json.RawMessage(`{"token": "one-time-key"}`),
	}}
	svc := newTestService(req, store.NewMemory(), WithRedirectionBase(func() string {
		return "https://tracker.example.com/"
	}))

	redirect, err := svc.SingleClickRedirection(context.Background())
	if err != nil {
		t.Fatalf("expected redirect url, got %v", err)
	}
	if !strings.HasPrefix(redirect, "https://tracker.example.com/auth/desktop-key?") {
		t.Fatalf("unexpected redirect %q", redirect)
	}
	if !strings.Contains(redirect, "token=one-time-key") {
		t.Fatalf("expected handoff key in query, got %q", redirect)
	}
}

func TestAuthenticateViaSSO(t *testing.T) {
	req := &fakeRequester{responses: map[string]json.RawMessage{
		"auth/desktop-key/authenticate": json.RawMessage(`{
			"access_token": "tok_sso",
			"user": {"id": 3, "email": "sso@example.com"}
		}`),
	}}
	svc := newTestService(req, store.NewMemory())

	if _, err := svc.AuthenticateViaSSO(context.Background(), " "); !core.IsValidationError(err) {
		t.Fatalf("expected validation error for blank key, got %v", err)
	}

	session, err := svc.AuthenticateViaSSO(context.Background(), "one-time-key")
	if err != nil {
		t.Fatalf("expected sso login to succeed, got %v", err)
	}
	if session.Token.Value != "tok_sso" || session.User.ID != 3 {
		t.Fatalf("unexpected session %+v", session)
	}

	call := req.calls[len(req.calls)-1]
	if call.body["key"] != "one-time-key" {
		t.Fatalf("expected handoff key in body, got %+v", call.body)
	}
	if !call.opts.NoAuth || !call.opts.NoRelogin {
		t.Fatalf("expected sso login to bypass auth and relogin, got %+v", call.opts)
	}
}

func TestReauthenticateStoresFreshToken(t *testing.T) {
	memory := store.NewMemory()
	if err := memory.CredentialsProvider().Set(context.Background(), core.Credentials{
		Email:    "ada@example.com",
		Password: "secret",
	}); err != nil {
		t.Fatalf("seed credentials: %v", err)
	}
	req := &fakeRequester{responses: map[string]json.RawMessage{
		"auth/login": json.RawMessage(`{"access_token": "tok_fresh", "expires_in": 3600}`),
	}}
	svc := newTestService(req, memory)

	if !svc.Reauthenticate(context.Background()) {
		t.Fatal("expected re-authentication to succeed")
	}
	token, err := memory.TokenProvider().Get(context.Background())
	if err != nil {
		t.Fatalf("read token: %v", err)
	}
	if token.Value != "tok_fresh" {
		t.Fatalf("expected stored fresh token, got %+v", token)
	}
}

func TestReauthenticateNeverPropagatesFailures(t *testing.T) {
	memory := store.NewMemory()
	req := &fakeRequester{failWith: errors.New("backend down")}
	svc := newTestService(req, memory)

	// No stored credentials: a quiet false, no request.
	if svc.Reauthenticate(context.Background()) {
		t.Fatal("expected failure without credentials")
	}
	if len(req.calls) != 0 {
		t.Fatalf("expected no request, got %d", len(req.calls))
	}

	if err := memory.CredentialsProvider().Set(context.Background(), core.Credentials{
		Email:    "ada@example.com",
		Password: "secret",
	}); err != nil {
		t.Fatalf("seed credentials: %v", err)
	}
	// Login failure is swallowed too.
	if svc.Reauthenticate(context.Background()) {
		t.Fatal("expected failure when login fails")
	}
}

func TestTokenExpiryFallsBackToJWTClaim(t *testing.T) {
	// Unsigned token with {"exp": 4102444800} (2100-01-01T00:00:00Z).
	value := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0." +
		"eyJleHAiOjQxMDI0NDQ4MDB9."
	token, ok := tokenFromPayload(map[string]any{"access_token": value}, false)
	if !ok {
		t.Fatal("expected token to be accepted")
	}
	if token.ExpiresAt.Year() != 2100 {
		t.Fatalf("expected expiry from jwt exp claim, got %v", token.ExpiresAt)
	}
	if token.Type != "Bearer" {
		t.Fatalf("expected default token type, got %q", token.Type)
	}
}
