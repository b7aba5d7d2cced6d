package cattr

import (
	"github.com/goliatone/go-cattr/core"
	"github.com/goliatone/go-cattr/transport"
)

type clientBuilder struct {
	runtimeConfig    core.Config
	logger           core.Logger
	loggerProvider   core.LoggerProvider
	providers        core.Providers
	transportAdapter core.TransportAdapter
	httpClient       transport.HTTPDoer
	configProvider   ConfigProvider
	optionsResolver  OptionsResolver
}

type Option func(*clientBuilder)

func WithLogger(logger core.Logger) Option {
	return func(b *clientBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider core.LoggerProvider) Option {
	return func(b *clientBuilder) {
		b.loggerProvider = provider
	}
}

func WithTokenProvider(provider core.TokenProvider) Option {
	return func(b *clientBuilder) {
		b.providers.Token = provider
	}
}

func WithCredentialsProvider(provider core.CredentialsProvider) Option {
	return func(b *clientBuilder) {
		b.providers.Credentials = provider
	}
}

func WithProviders(providers core.Providers) Option {
	return func(b *clientBuilder) {
		b.providers = providers
	}
}

func WithTransportAdapter(adapter core.TransportAdapter) Option {
	return func(b *clientBuilder) {
		b.transportAdapter = adapter
	}
}

// WithHTTPClient swaps the underlying HTTP client while keeping the default
// REST adapter. Ignored when a full transport adapter is supplied.
func WithHTTPClient(client transport.HTTPDoer) Option {
	return func(b *clientBuilder) {
		b.httpClient = client
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *clientBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *clientBuilder) {
		b.optionsResolver = resolver
	}
}

// WithRuntimeConfig supplies the highest-precedence config layer.
func WithRuntimeConfig(config core.Config) Option {
	return func(b *clientBuilder) {
		b.runtimeConfig = config
	}
}

func defaultClientBuilder() clientBuilder {
	return clientBuilder{
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
	}
}
