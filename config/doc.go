// Package config provides configuration loading and validation for bucketgate.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (no prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// Config keys map to environment variables by upper-casing and replacing dots:
//   - port → PORT
//   - auth.secret_key → AUTH_SECRET_KEY (comma-separated tokens)
//   - default_bucket_config_name → DEFAULT_BUCKET_CONFIG_NAME
//   - allowed_origins → ALLOWED_ORIGINS (comma-separated)
//   - bucket_sources → BUCKET_SOURCES (comma-separated: query, form, header)
//
// Bucket declarations (BUCKET_<name>_<ATTRIBUTE>) are not part of Config; they
// are read from the same environment by the bucket package.
//
// # Bindings
//
// Named bindings for CLOUDFLARE_R2 buckets are declared in the config file:
//
//	bindings:
//	  R2_MAIN:
//	    type: filesystem
//	    path: ./data/main
//	  R2_REMOTE:
//	    type: s3
//	    endpoint: https://<account>.r2.cloudflarestorage.com
//	    region: auto
//	    bucket: remote
//	    access_key_id: ...
//	    secret_access_key: ...
//
// Binding names are case-insensitive.
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Env must be development/dev or production/prod
//   - Bucket sources must be query, form, or header
//   - Log level must be debug, info, warn, or error
//   - Bindings must have a valid type and its required fields
package config
