// Package auth implements the session lifecycle against the backend: login,
// profile, logout, token refresh, the single-click web handoff, and the
// automatic re-authentication policy the request core relies on.
package auth

import (
	"context"
	"net/url"
	"strings"

	"github.com/goliatone/go-cattr/core"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	endpointLogin          = "auth/login"
	endpointMe             = "auth/me"
	endpointLogout         = "auth/logout"
	endpointLogoutFromAll  = "auth/logout-from-all"
	endpointRefresh        = "auth/refresh"
	endpointDesktopKey     = "auth/desktop-key"
	endpointDesktopKeyAuth = "auth/desktop-key/authenticate"
)

// Service drives the anonymous -> authenticated -> anonymous session state
// machine. It never persists tokens itself; callers and the Reauthenticate
// helper write through the token provider.
type Service struct {
	req             core.Requester
	providers       core.Providers
	logger          core.Logger
	redirectionBase func() string
}

type Option func(*Service)

func WithLogger(logger core.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithRedirectionBase supplies the frontend origin used to build the
// single-click handoff URL. A func is taken so base-URL changes apply without
// rewiring.
func WithRedirectionBase(base func() string) Option {
	return func(s *Service) {
		s.redirectionBase = base
	}
}

func New(req core.Requester, providers core.Providers, opts ...Option) *Service {
	s := &Service{
		req:       req,
		providers: providers,
		logger:    glog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = glog.Ensure(s.logger)
	return s
}

// Login posts credentials unauthenticated and maps the payload into a token
// plus the normalized profile. Nothing is persisted here; handing the token
// to the token provider is the caller's job.
func (s *Service) Login(ctx context.Context, email string, password string) (core.Session, error) {
	if strings.TrimSpace(email) == "" {
		return core.Session{}, core.NewValidationError("email", "email is required")
	}
	if strings.TrimSpace(password) == "" {
		return core.Session{}, core.NewValidationError("password", "password is required")
	}

	raw, err := s.req.Post(ctx, endpointLogin, map[string]any{
		"email":    email,
		"password": password,
	}, core.Options{NoAuth: true, NoRelogin: true})
	if err != nil {
		return core.Session{}, err
	}
	return s.sessionFromPayload(raw, endpointLogin)
}

// Me fetches the profile attached to the current token.
func (s *Service) Me(ctx context.Context) (core.User, error) {
	raw, err := s.req.Get(ctx, endpointMe, core.Options{})
	if err != nil {
		return core.User{}, err
	}
	user, ok := userFromPayload(decodeObject(raw))
	if !ok {
		return core.User{}, core.NewStructureError("cattr: profile payload is malformed", core.RequestContext{
			Method: "GET",
			URL:    endpointMe,
		})
	}
	return user, nil
}

// Logout ends the current session, or every session when fromAll is set. The
// auto-retry is suppressed: silently re-logging in to log out would be
// incoherent.
func (s *Service) Logout(ctx context.Context, fromAll bool) (bool, error) {
	endpoint := endpointLogout
	if fromAll {
		endpoint = endpointLogoutFromAll
	}
	_, err := s.req.Post(ctx, endpoint, map[string]any{}, core.Options{NoRelogin: true})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Refresh requests a new token for the current session. The response shape
// is validated strictly; a token with a missing value, type, or expiry is a
// structural error. relogin controls whether the call itself may recover a
// rejected token through automatic re-authentication.
func (s *Service) Refresh(ctx context.Context, relogin bool) (core.Token, error) {
	raw, err := s.req.Post(ctx, endpointRefresh, map[string]any{}, core.Options{NoRelogin: !relogin})
	if err != nil {
		return core.Token{}, err
	}
	token, ok := tokenFromPayload(decodeObject(raw), true)
	if !ok {
		return core.Token{}, core.NewStructureError("cattr: refresh payload is missing token value, type, or expiry", core.RequestContext{
			Method: "POST",
			URL:    endpointRefresh,
		})
	}
	return token, nil
}

// SingleClickRedirection obtains a one-time desktop-to-web handoff key and
// returns the web URL that consumes it. Only http and https origins are
// trusted; any other scheme is rejected before the URL is constructed.
func (s *Service) SingleClickRedirection(ctx context.Context) (string, error) {
	base := ""
	if s.redirectionBase != nil {
		base = strings.TrimSpace(s.redirectionBase())
	}
	if base == "" {
		return "", core.NewValidationError("redirect_url", "redirection base url is not configured")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return "", core.NewValidationError("redirect_url", "redirection base url is not a valid url")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", core.NewValidationError("redirect_url", "redirection origin must use http or https")
	}

	raw, err := s.req.Post(ctx, endpointDesktopKey, map[string]any{}, core.Options{})
	if err != nil {
		return "", err
	}
	payload := decodeObject(raw)
	key := readString(payload["token"])
	if key == "" {
		key = readString(payload["access_token"])
	}
	if key == "" {
		return "", core.NewStructureError("cattr: desktop key payload is missing the token", core.RequestContext{
			Method: "POST",
			URL:    endpointDesktopKey,
		})
	}

	redirect := *parsed
	redirect.Path = strings.TrimSuffix(redirect.Path, "/") + "/" + endpointDesktopKey
	query := redirect.Query()
	query.Set("token", key)
	redirect.RawQuery = query.Encode()
	return redirect.String(), nil
}

// AuthenticateViaSSO consumes a one-time handoff key and opens a session,
// exactly like Login does for credentials.
func (s *Service) AuthenticateViaSSO(ctx context.Context, token string) (core.Session, error) {
	if strings.TrimSpace(token) == "" {
		return core.Session{}, core.NewValidationError("token", "sso token is required")
	}
	raw, err := s.req.Post(ctx, endpointDesktopKeyAuth, map[string]any{
		"key": token,
	}, core.Options{NoAuth: true, NoRelogin: true})
	if err != nil {
		return core.Session{}, err
	}
	return s.sessionFromPayload(raw, endpointDesktopKeyAuth)
}

// Reauthenticate uses stored credentials to obtain a fresh token and writes
// it through the token provider. It is a policy helper: every failure is
// swallowed and reported as false.
func (s *Service) Reauthenticate(ctx context.Context) bool {
	if s == nil || s.providers.Credentials == nil || s.providers.Token == nil {
		return false
	}
	credentials, err := s.providers.Credentials.Get(ctx)
	if err != nil || !credentials.Valid() {
		return false
	}

	session, err := s.Login(ctx, credentials.Email, credentials.Password)
	if err != nil {
		s.logger.Info("automatic re-authentication failed", "error", err.Error())
		return false
	}
	if err := s.providers.Token.Set(ctx, session.Token); err != nil {
		s.logger.Info("storing re-authenticated token failed", "error", err.Error())
		return false
	}
	return true
}

func (s *Service) sessionFromPayload(raw []byte, endpoint string) (core.Session, error) {
	payload := decodeObject(raw)
	token, ok := tokenFromPayload(payload, false)
	if !ok {
		return core.Session{}, core.NewStructureError("cattr: auth payload is missing the access token", core.RequestContext{
			Method: "POST",
			URL:    endpoint,
		})
	}
	user, _ := userFromPayload(payload["user"])
	return core.Session{Token: token, User: user}, nil
}

var _ core.Reauthenticator = (*Service)(nil)
