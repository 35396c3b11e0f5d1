package clientcli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"
)

// DefaultEndpoint is the default server endpoint URL.
const DefaultEndpoint = "http://localhost:8787"

// DefaultIdentityHeader is the header the server reads the caller identity from.
const DefaultIdentityHeader = "X-User-Id"

// DefaultConfigPath returns the default config file path (~/.bucketgate/config.yaml).
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".bucketgate", "config.yaml")
}

// Config holds resolved client configuration for a single server.
// This is what the Client uses after profile resolution.
type Config struct {
	Endpoint       string
	Token          string
	Identity       string
	IdentityHeader string
	Bucket         string
}

// WithDefaults returns a copy of the config with default values applied.
func (c *Config) WithDefaults() *Config {
	cfg := *c
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.IdentityHeader == "" {
		cfg.IdentityHeader = DefaultIdentityHeader
	}
	return &cfg
}

// ValidateWithAuth checks that a token is set and that the identity header,
// when set, is a valid header name.
func (c *Config) ValidateWithAuth() error {
	if c.Token == "" {
		return ErrTokenRequired
	}
	if c.IdentityHeader != "" && !ValidHeaderName(c.IdentityHeader) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentityHeader, c.IdentityHeader)
	}
	return nil
}

// ConfigFromEnv loads config from environment variables.
func ConfigFromEnv() *Config {
	return &Config{
		Endpoint:       os.Getenv("BUCKETGATE_ENDPOINT"),
		Token:          os.Getenv("BUCKETGATE_TOKEN"),
		Identity:       os.Getenv("BUCKETGATE_IDENTITY"),
		IdentityHeader: os.Getenv("BUCKETGATE_IDENTITY_HEADER"),
		Bucket:         os.Getenv("BUCKETGATE_BUCKET"),
	}
}

// ProfileFromEnv returns the profile name from BUCKETGATE_PROFILE environment variable.
func ProfileFromEnv() string {
	return os.Getenv("BUCKETGATE_PROFILE")
}

// ConfigPathFromEnv returns the config file path from BUCKETGATE_CONFIG environment variable.
func ConfigPathFromEnv() string {
	return os.Getenv("BUCKETGATE_CONFIG")
}

// MergeConfig merges multiple configs, with later configs taking precedence.
// Empty strings in later configs do not override non-empty values in earlier configs.
func MergeConfig(configs ...*Config) *Config {
	result := &Config{}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		result.Endpoint = lo.CoalesceOrEmpty(cfg.Endpoint, result.Endpoint)
		result.Token = lo.CoalesceOrEmpty(cfg.Token, result.Token)
		result.Identity = lo.CoalesceOrEmpty(cfg.Identity, result.Identity)
		result.IdentityHeader = lo.CoalesceOrEmpty(cfg.IdentityHeader, result.IdentityHeader)
		result.Bucket = lo.CoalesceOrEmpty(cfg.Bucket, result.Bucket)
	}
	return result
}
