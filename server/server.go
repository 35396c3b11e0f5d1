// Package server assembles the gateway from a loaded configuration.
// Both the long-running server and the Lambda entry point build their
// http.Handler here.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sagarc03/bucketgate"
	"github.com/sagarc03/bucketgate/access"
	"github.com/sagarc03/bucketgate/binding"
	"github.com/sagarc03/bucketgate/bucket"
	"github.com/sagarc03/bucketgate/config"
	gatehttp "github.com/sagarc03/bucketgate/http"
	"github.com/sagarc03/bucketgate/keybackend"
)

// App is an assembled gateway.
type App struct {
	registry *bucket.Registry
	tokens   *keybackend.TokenSet
	bindings *binding.Table
	handler  http.Handler
}

// Option customizes New.
type Option func(*options)

type options struct {
	namespace bucket.Namespace
	s3Factory binding.S3Factory
}

// WithNamespace uses ns for bucket declarations instead of the env file and
// the process environment.
func WithNamespace(ns bucket.Namespace) Option {
	return func(o *options) { o.namespace = ns }
}

// WithS3Factory replaces the constructor of AWS_S3 bucket stores.
func WithS3Factory(f binding.S3Factory) Option {
	return func(o *options) { o.s3Factory = f }
}

// New builds the gateway described by cfg.
// Missing tokens and invalid buckets are not fatal: they are reported per
// request by the access checks.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ns := o.namespace
	if ns == nil {
		var err error
		ns, err = bucket.LoadNamespace(cfg.EnvFile)
		if err != nil {
			return nil, fmt.Errorf("load bucket declarations: %w", err)
		}
	}

	registry := bucket.NewRegistry(bucket.NewResolver(ns), cfg.DefaultBucket)

	tokens, err := keybackend.NewTokenSetFromConfig(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("load tokens: %w", err)
	}
	if tokens.Len() == 0 {
		slog.Warn("no access tokens configured, all requests will be rejected")
	}

	bindings, err := binding.Open(ctx, cfg.Bindings)
	if err != nil {
		return nil, fmt.Errorf("open bindings: %w", err)
	}

	service := bucketgate.NewUploadService(
		binding.NewSelector(ctx, bindings, registry.Buckets(), o.s3Factory),
		bucketgate.ServiceConfig{BackendTimeout: cfg.BackendTimeout},
	)

	handler := gatehttp.NewHandler(&gatehttp.HandlerConfig{
		IdentityHeader: cfg.IdentityHeader,
		BucketSources:  cfg.BucketSources,
		DefaultBucket:  cfg.DefaultBucket,
		MaxUploadSize:  cfg.MaxUploadSize,
		CORS:           corsConfig(cfg),
	}, access.NewAuthorizer(tokens, registry), registry, service)

	slog.Info("gateway ready",
		"buckets", len(registry.Buckets()),
		"declared", len(registry.Names()),
		"bindings", bindings.Names(),
		"tokens", tokens.Len(),
	)

	return &App{
		registry: registry,
		tokens:   tokens,
		bindings: bindings,
		handler:  handler.Router(),
	}, nil
}

func corsConfig(cfg *config.Config) gatehttp.CORSConfig {
	return gatehttp.CORSConfig{
		Enabled:        len(cfg.AllowedOrigins) > 0,
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", cfg.IdentityHeader, gatehttp.BucketHeader},
		MaxAge:         300,
	}
}

// Handler returns the HTTP handler of the gateway.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Registry returns the bucket snapshot taken at startup.
func (a *App) Registry() *bucket.Registry {
	return a.registry
}

// Tokens returns the number of configured access tokens.
func (a *App) Tokens() int {
	return a.tokens.Len()
}

// Close releases the storage bindings.
func (a *App) Close() error {
	if a.bindings == nil {
		return nil
	}
	if err := a.bindings.Close(); err != nil {
		return errors.Join(errors.New("close bindings"), err)
	}
	return nil
}
