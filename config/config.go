package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/bucketgate/binding"
	"github.com/sagarc03/bucketgate/keybackend"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for bucketgate.
type Config struct {
	Env            string                    `mapstructure:"env" validate:"required,oneof=development dev production prod"`
	Port           int                       `mapstructure:"port" validate:"required,min=1,max=65535"`
	MaxUploadSize  int64                     `mapstructure:"max_upload_size" validate:"min=0"`
	BackendTimeout time.Duration             `mapstructure:"backend_timeout" validate:"min=0"`
	EnvFile        string                    `mapstructure:"env_file"`
	Auth           keybackend.TokensConfig   `mapstructure:"auth"`
	IdentityHeader string                    `mapstructure:"identity_header" validate:"required"`
	BucketSources  []string                  `mapstructure:"bucket_sources" validate:"min=1,dive,oneof=query form header"`
	DefaultBucket  string                    `mapstructure:"default_bucket_config_name"`
	AllowedOrigins []string                  `mapstructure:"allowed_origins"`
	Log            LogConfig                 `mapstructure:"log"`
	Bindings       map[string]binding.Config `mapstructure:"bindings" validate:"dive"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// IsProduction reports whether the production log format should be used.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"env-file":        "env_file",
	"log-level":       "log.level",
	"max-upload-size": "max_upload_size",
	"default-bucket":  "default_bucket_config_name",
	"identity-header": "identity_header",
	"backend-timeout": "backend_timeout",
	"token-file":      "auth.token_file",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
// Every key needs a default so AutomaticEnv can fill it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("port", 8787)
	v.SetDefault("max_upload_size", 0) // 0 means no limit
	v.SetDefault("backend_timeout", 30*time.Second)
	v.SetDefault("env_file", "")

	v.SetDefault("auth.secret_key", "")
	v.SetDefault("auth.token_file", "")

	v.SetDefault("identity_header", "X-User-Id")
	v.SetDefault("bucket_sources", []string{"query", "form"})
	v.SetDefault("default_bucket_config_name", "")
	v.SetDefault("allowed_origins", []string{})

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Environment variables use the key with dots replaced by underscores and no
// prefix (auth.secret_key is AUTH_SECRET_KEY), so they share the namespace of
// the BUCKET_* bucket declarations.
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.normalize()

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// normalize trims list entries that may come from comma-separated env values.
func (c *Config) normalize() {
	c.BucketSources = lo.Compact(lo.Map(c.BucketSources, func(s string, _ int) string {
		return strings.ToLower(strings.TrimSpace(s))
	}))
	c.AllowedOrigins = lo.Compact(lo.Map(c.AllowedOrigins, func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
}
