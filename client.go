// Package cattr is a Go client SDK for the Cattr time-tracking backend:
// authentication, token refresh, and typed access to tasks, projects, time
// intervals, screenshots, and company settings.
package cattr

import (
	"context"
	"fmt"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-cattr/auth"
	"github.com/goliatone/go-cattr/core"
	"github.com/goliatone/go-cattr/requester"
	"github.com/goliatone/go-cattr/resources"
	"github.com/goliatone/go-cattr/store"
	"github.com/goliatone/go-cattr/transport"
)

// Client is the SDK facade. Construct it with New, point it at a backend
// with SetBaseURL (or a base_url in config), then use the accessors.
type Client struct {
	config    core.Config
	providers core.Providers
	logger    core.Logger
	req       *requester.Requester

	auth        *auth.Service
	tasks       *resources.Tasks
	projects    *resources.Projects
	intervals   *resources.Intervals
	screenshots *resources.Screenshots
	time        *resources.Time
	company     *resources.Company
}

func New(opts ...Option) (*Client, error) {
	builder := defaultClientBuilder()
	for _, opt := range opts {
		opt(&builder)
	}

	_, logger := glog.Resolve("cattr", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)

	defaults := core.DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, fmt.Errorf("cattr: load config: %w", err)
	}
	resolved, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, fmt.Errorf("cattr: resolve config: %w", err)
	}

	providers := builder.providers
	if providers.Token == nil || providers.Credentials == nil {
		memory := store.NewMemory()
		if providers.Token == nil {
			providers.Token = memory.TokenProvider()
		}
		if providers.Credentials == nil {
			providers.Credentials = memory.CredentialsProvider()
		}
	}

	adapter := builder.transportAdapter
	if adapter == nil {
		adapter = transport.NewRESTAdapter(builder.httpClient)
	}

	req := requester.New(adapter, providers,
		requester.WithBaseURL(resolved.BaseURL),
		requester.WithClientVersion(resolved.ClientVersion),
		requester.WithTimeout(resolved.RequestTimeout),
		requester.WithLogger(logger),
	)

	authService := auth.New(req, providers,
		auth.WithLogger(logger),
		auth.WithRedirectionBase(req.BaseURL),
	)
	req.SetReauthenticator(authService)

	return &Client{
		config:      resolved,
		providers:   providers,
		logger:      logger,
		req:         req,
		auth:        authService,
		tasks:       resources.NewTasks(req),
		projects:    resources.NewProjects(req),
		intervals:   resources.NewIntervals(req),
		screenshots: resources.NewScreenshots(req),
		time:        resources.NewTime(req),
		company:     resources.NewCompany(req),
	}, nil
}

// SetBaseURL discovers the API root behind hostOrURL and applies it to the
// request core in one explicit configure/apply step. The resolved base is
// returned.
func (c *Client) SetBaseURL(ctx context.Context, hostOrURL string) (string, error) {
	resolved, err := c.req.ResolveBaseURL(ctx, hostOrURL, requester.ResolveOptions{
		Force:   c.config.ForceBaseURL,
		Timeout: c.config.ProbeTimeout,
	})
	if err != nil {
		return "", err
	}
	c.req.ApplyBaseURL(resolved)
	c.config.BaseURL = resolved
	return resolved, nil
}

func (c *Client) Config() core.Config {
	return c.config
}

func (c *Client) Requester() *requester.Requester {
	return c.req
}

func (c *Client) Auth() *auth.Service {
	return c.auth
}

func (c *Client) Tasks() *resources.Tasks {
	return c.tasks
}

func (c *Client) Projects() *resources.Projects {
	return c.projects
}

func (c *Client) Intervals() *resources.Intervals {
	return c.intervals
}

func (c *Client) Screenshots() *resources.Screenshots {
	return c.screenshots
}

func (c *Client) Time() *resources.Time {
	return c.time
}

func (c *Client) Company() *resources.Company {
	return c.company
}

func (c *Client) TokenProvider() core.TokenProvider {
	return c.providers.Token
}

func (c *Client) CredentialsProvider() core.CredentialsProvider {
	return c.providers.Credentials
}
