package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Version is the SDK's semantic version, reported to the backend through the
// client-identification header.
const Version = "1.0.0"

type Config struct {
	BaseURL        string        `koanf:"base_url" mapstructure:"base_url"`
	ClientVersion  string        `koanf:"client_version" mapstructure:"client_version"`
	RequestTimeout time.Duration `koanf:"request_timeout" mapstructure:"request_timeout"`
	ProbeTimeout   time.Duration `koanf:"probe_timeout" mapstructure:"probe_timeout"`
	ForceBaseURL   bool          `koanf:"force_base_url" mapstructure:"force_base_url"`
}

func DefaultConfig() Config {
	return Config{
		ClientVersion:  Version,
		RequestTimeout: 30 * time.Second,
		ProbeTimeout:   5 * time.Second,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ClientVersion) == "" {
		return fmt.Errorf("core: client_version is required")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("core: request_timeout must not be negative")
	}
	if c.ProbeTimeout < 0 {
		return fmt.Errorf("core: probe_timeout must not be negative")
	}
	if base := strings.TrimSpace(c.BaseURL); base != "" {
		parsed, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("core: base_url is not a valid url: %w", err)
		}
		if parsed.Scheme != "" && parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("core: base_url scheme %q is not supported", parsed.Scheme)
		}
	}
	return nil
}
