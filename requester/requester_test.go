package requester

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/goliatone/go-cattr/core"
	"github.com/goliatone/go-cattr/devkit"
	"github.com/goliatone/go-cattr/store"
	goerrors "github.com/goliatone/go-errors"
)

func errorMetadata(t *testing.T, err error) map[string]any {
	t.Helper()
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected structured error, got %v", err)
	}
	return richErr.Metadata
}

type scriptedReauth struct {
	outcome bool
	token   core.Token
	tokens  core.TokenProvider
	calls   int
}

func (r *scriptedReauth) Reauthenticate(ctx context.Context) bool {
	r.calls++
	if !r.outcome {
		return false
	}
	if r.tokens != nil {
		_ = r.tokens.Set(ctx, r.token)
	}
	return true
}

func jsonResponse(status int, body string) devkit.TransportScript {
	return devkit.TransportScript{
		Response: core.TransportResponse{
			StatusCode: status,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       []byte(body),
		},
	}
}

func newTestRequester(adapter core.TransportAdapter, memory *store.Memory, opts ...Option) *Requester {
	providers := core.Providers{
		Token:       memory.TokenProvider(),
		Credentials: memory.CredentialsProvider(),
	}
	base := []Option{WithBaseURL("https://tracker.example.com")}
	return New(adapter, providers, append(base, opts...)...)
}

func TestGetAttachesAuthAndVersionHeaders(t *testing.T) {
	adapter := devkit.NewFakeTransportAdapter("rest", jsonResponse(200, `{"ok":true}`))
	memory := store.NewMemory()
	if err := memory.TokenProvider().Set(context.Background(), core.Token{Value: "tok_1", Type: "Bearer"}); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	req := newTestRequester(adapter, memory)

	raw, err := req.Get(context.Background(), "tasks/list", core.Options{NoPaginate: true})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if string(raw) != `{"ok":true}` {
		t.Fatalf("expected verbatim payload, got %s", raw)
	}

	requests := adapter.Requests()
	if len(requests) != 1 {
		t.Fatalf("expected one transport call, got %d", len(requests))
	}
	sent := requests[0]
	if sent.URL != "https://tracker.example.com/tasks/list" {
		t.Fatalf("unexpected request url %q", sent.URL)
	}
	if sent.Headers["Authorization"] != "Bearer tok_1" {
		t.Fatalf("expected bearer header, got %q", sent.Headers["Authorization"])
	}
	if sent.Headers["X-Paginate"] != "false" {
		t.Fatalf("expected pagination opt-out header, got %q", sent.Headers["X-Paginate"])
	}
	if !strings.HasPrefix(sent.Headers["X-Cattr-Client"], "go-cattr/") {
		t.Fatalf("expected client version header, got %q", sent.Headers["X-Cattr-Client"])
	}
}

func TestRecoverable401ReissuesExactlyOnce(t *testing.T) {
	adapter := devkit.NewFakeTransportAdapter("rest",
		jsonResponse(401, `{"code":"authorization.unauthorized","message":"token rejected"}`),
		jsonResponse(200, `{"ok":true}`),
	)
	memory := store.NewMemory()
	if err := memory.TokenProvider().Set(context.Background(), core.Token{Value: "stale"}); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	reauth := &scriptedReauth{
		outcome: true,
		token:   core.Token{Value: "fresh", Type: "Bearer"},
		tokens:  memory.TokenProvider(),
	}
	req := newTestRequester(adapter, memory, WithReauthenticator(reauth))

	if _, err := req.Get(context.Background(), "tasks/list", core.Options{}); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}

	requests := adapter.Requests()
	if len(requests) != 2 {
		t.Fatalf("expected exactly two transport calls, got %d", len(requests))
	}
	if reauth.calls != 1 {
		t.Fatalf("expected exactly one re-authentication, got %d", reauth.calls)
	}
	if requests[1].Headers["Authorization"] != "Bearer fresh" {
		t.Fatalf("expected reissued request to carry the fresh token, got %q", requests[1].Headers["Authorization"])
	}
}

func TestSecond401SurfacesAPIErrorWithoutThirdCall(t *testing.T) {
	adapter := devkit.NewFakeTransportAdapter("rest",
		jsonResponse(401, `{"code":"authorization.token_expired","message":"expired"}`),
		jsonResponse(401, `{"code":"authorization.token_expired","message":"still expired"}`),
	)
	memory := store.NewMemory()
	if err := memory.TokenProvider().Set(context.Background(), core.Token{Value: "stale"}); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	reauth := &scriptedReauth{
		outcome: true,
		token:   core.Token{Value: "fresh"},
		tokens:  memory.TokenProvider(),
	}
	req := newTestRequester(adapter, memory, WithReauthenticator(reauth))

	_, err := req.Get(context.Background(), "tasks/list", core.Options{})
	if !core.IsAPIError(err) {
		t.Fatalf("expected api error, got %v", err)
	}
	if core.ErrorStatus(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401 status, got %d", core.ErrorStatus(err))
	}
	if len(adapter.Requests()) != 2 {
		t.Fatalf("expected two transport calls, got %d", len(adapter.Requests()))
	}
	if reauth.calls != 1 {
		t.Fatalf("expected a single re-authentication, got %d", reauth.calls)
	}
}

func TestNoReloginSuppressesRetry(t *testing.T) {
	adapter := devkit.NewFakeTransportAdapter("rest",
		jsonResponse(401, `{"code":"authorization.unauthorized","message":"nope"}`),
	)
	memory := store.NewMemory()
	if err := memory.TokenProvider().Set(context.Background(), core.Token{Value: "stale"}); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	reauth := &scriptedReauth{outcome: true, token: core.Token{Value: "fresh"}, tokens: memory.TokenProvider()}
	req := newTestRequester(adapter, memory, WithReauthenticator(reauth))

	_, err := req.Get(context.Background(), "tasks/list", core.Options{NoRelogin: true})
	if !core.IsAPIError(err) {
		t.Fatalf("expected api error, got %v", err)
	}
	if reauth.calls != 0 {
		t.Fatalf("expected no re-authentication, got %d", reauth.calls)
	}
	if len(adapter.Requests()) != 1 {
		t.Fatalf("expected one transport call, got %d", len(adapter.Requests()))
	}
}

func TestMissingTokenWithoutReauthResolvesCredentialsError(t *testing.T) {
	adapter := devkit.NewFakeTransportAdapter("rest")
	memory := store.NewMemory()
	req := newTestRequester(adapter, memory)

	_, err := req.Get(context.Background(), "tasks/list", core.Options{})
	if !core.IsCredentialsError(err) {
		t.Fatalf("expected credentials error, got %v", err)
	}
	if len(adapter.Requests()) != 0 {
		t.Fatalf("expected no transport call, got %d", len(adapter.Requests()))
	}

	_, err = req.Post(context.Background(), "tasks/create", map[string]any{"task_name": "x"}, core.Options{})
	if !core.IsCredentialsError(err) {
		t.Fatalf("expected credentials error on post, got %v", err)
	}
	if len(adapter.Requests()) != 0 {
		t.Fatalf("expected still no transport call, got %d", len(adapter.Requests()))
	}
}

func TestMissingTokenRecoversThroughReauthentication(t *testing.T) {
	adapter := devkit.NewFakeTransportAdapter("rest", jsonResponse(200, `[]`))
	memory := store.NewMemory()
	reauth := &scriptedReauth{outcome: true, token: core.Token{Value: "fresh"}, tokens: memory.TokenProvider()}
	req := newTestRequester(adapter, memory, WithReauthenticator(reauth))

	if _, err := req.Get(context.Background(), "tasks/list", core.Options{}); err != nil {
		t.Fatalf("expected success after pre-flight re-authentication, got %v", err)
	}
	if reauth.calls != 1 {
		t.Fatalf("expected one re-authentication, got %d", reauth.calls)
	}
	if len(adapter.Requests()) != 1 {
		t.Fatalf("expected one transport call, got %d", len(adapter.Requests()))
	}
}

func TestWriteBodyIsRequired(t *testing.T) {
	adapter := devkit.NewFakeTransportAdapter("rest")
	req := newTestRequester(adapter, store.NewMemory())

	_, err := req.Post(context.Background(), "tasks/create", nil, core.Options{})
	if !core.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(adapter.Requests()) != 0 {
		t.Fatalf("expected no transport call, got %d", len(adapter.Requests()))
	}
}

func TestErrorContextRedactsSecrets(t *testing.T) {
	adapter := devkit.NewFakeTransportAdapter("rest",
		jsonResponse(422, `{"code":"validation.failed","message":"bad interval"}`),
	)
	memory := store.NewMemory()
	if err := memory.TokenProvider().Set(context.Background(), core.Token{Value: "tok"}); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	req := newTestRequester(adapter, memory)

	_, err := req.Post(context.Background(), "auth/login", map[string]any{
		"email":    "a@b.com",
		"password": "hunter2",
		"api_key":  "key_123",
	}, core.Options{})
	if !core.IsAPIError(err) {
		t.Fatalf("expected api error, got %v", err)
	}

	message := err.Error()
	if strings.Contains(message, "hunter2") || strings.Contains(message, "key_123") {
		t.Fatalf("secret leaked into error: %s", message)
	}
	meta := errorMetadata(t, err)
	payload, ok := meta["payload"].(map[string]any)
	if !ok {
		t.Fatalf("expected redacted payload in error metadata, got %#v", meta["payload"])
	}
	if payload["password"] != core.RedactedValue {
		t.Fatalf("expected redacted password, got %#v", payload["password"])
	}
	if payload["api_key"] != core.RedactedValue {
		t.Fatalf("expected redacted api_key, got %#v", payload["api_key"])
	}
	if payload["email"] != "a@b.com" {
		t.Fatalf("expected email to remain visible, got %#v", payload["email"])
	}
}

func TestTransportFailureReportsNetworkError(t *testing.T) {
	adapter := devkit.NewFakeTransportAdapter("rest", devkit.TransportScript{
		Err: context.DeadlineExceeded,
	})
	memory := store.NewMemory()
	if err := memory.TokenProvider().Set(context.Background(), core.Token{Value: "tok"}); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	req := newTestRequester(adapter, memory)

	_, err := req.Get(context.Background(), "tasks/list", core.Options{})
	if !core.IsNetworkError(err) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestEmptySuccessBodyDecodesAsNull(t *testing.T) {
	adapter := devkit.NewFakeTransportAdapter("rest", jsonResponse(204, ""))
	memory := store.NewMemory()
	if err := memory.TokenProvider().Set(context.Background(), core.Token{Value: "tok"}); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	req := newTestRequester(adapter, memory)

	raw, err := req.Get(context.Background(), "auth/logout", core.Options{})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	var decoded any
	if jsonErr := json.Unmarshal(raw, &decoded); jsonErr != nil || decoded != nil {
		t.Fatalf("expected null payload, got %s", raw)
	}
}

func TestMultipartEncodingForAttachments(t *testing.T) {
	adapter := devkit.NewFakeTransportAdapter("rest", jsonResponse(200, `{"id":1}`))
	memory := store.NewMemory()
	if err := memory.TokenProvider().Set(context.Background(), core.Token{Value: "tok"}); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	req := newTestRequester(adapter, memory)

	_, err := req.Post(context.Background(), "screenshots/create", map[string]any{
		"time_interval_id": int64(7),
		"screenshot": core.Attachment{
			Filename:    "shot.png",
			ContentType: "image/png",
			Data:        []byte{0x89, 0x50, 0x4e, 0x47},
		},
	}, core.Options{})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	sent := adapter.Requests()[0]
	contentType := sent.Headers["Content-Type"]
	if !strings.HasPrefix(contentType, "multipart/form-data; boundary=") {
		t.Fatalf("expected multipart encoding, got %q", contentType)
	}
	body := string(sent.Body)
	if !strings.Contains(body, `filename="shot.png"`) {
		t.Fatalf("expected attachment part in body:\n%s", body)
	}
	if !strings.Contains(body, `name="time_interval_id"`) || !strings.Contains(body, "\r\n\r\n7\r\n") {
		t.Fatalf("expected scalar form field in body:\n%s", body)
	}
}
