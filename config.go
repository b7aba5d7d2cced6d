package cattr

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	opts "github.com/goliatone/go-options"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/goliatone/go-cattr/core"
)

type ConfigProvider interface {
	Load(ctx context.Context, defaults core.Config) (core.Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults core.Config, loaded core.Config, runtime core.Config) (core.Config, error)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// FileConfigLoader reads a TOML config file. A missing file is not an error;
// it simply contributes nothing to the config stack.
type FileConfigLoader struct {
	Path string
}

func (l FileConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	path := strings.TrimSpace(l.Path)
	if path == "" {
		return map[string]any{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("cattr: read config file %q: %w", path, err)
	}
	values := map[string]any{}
	if err := toml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("cattr: parse config file %q: %w", path, err)
	}
	return values, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults core.Config) (core.Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return core.Config{}, err
	}
	cfg, err := cfgx.Build[core.Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[core.Config]((*core.Config).Validate),
	)
	if err != nil {
		return core.Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults core.Config, loaded core.Config, runtime core.Config) (core.Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return core.Config{}, fmt.Errorf("cattr: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return core.Config{}, fmt.Errorf("cattr: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[core.Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[core.Config]((*core.Config).Validate),
	)
	if err != nil {
		return core.Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return core.Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg core.Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.BaseURL) != "" {
		layer["base_url"] = cfg.BaseURL
	}
	if includeZero || strings.TrimSpace(cfg.ClientVersion) != "" {
		layer["client_version"] = cfg.ClientVersion
	}
	if includeZero || cfg.RequestTimeout != 0 {
		layer["request_timeout"] = cfg.RequestTimeout
	}
	if includeZero || cfg.ProbeTimeout != 0 {
		layer["probe_timeout"] = cfg.ProbeTimeout
	}
	if includeZero || cfg.ForceBaseURL {
		layer["force_base_url"] = cfg.ForceBaseURL
	}
	return layer
}
