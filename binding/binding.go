// Package binding maps buckets to object stores.
//
// R2-style buckets name a binding (BINDING_NAME) that the operator declares in
// the server configuration. A binding is either a local directory or an
// S3-API endpoint. S3-compatible buckets carry their own credentials; their
// clients are built once, when the Selector is created.
package binding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/sagarc03/bucketgate"
	"github.com/sagarc03/bucketgate/filesystem"
	"github.com/sagarc03/bucketgate/s3store"
)

// Binding types.
const (
	TypeFilesystem = "filesystem"
	TypeS3         = "s3"
)

// Config declares one named binding.
type Config struct {
	Type            string `mapstructure:"type" validate:"required,oneof=filesystem s3"`
	Path            string `mapstructure:"path" validate:"required_if=Type filesystem"`
	Bucket          string `mapstructure:"bucket" validate:"required_if=Type s3"`
	Endpoint        string `mapstructure:"endpoint" validate:"omitempty,url"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PathStyle       bool   `mapstructure:"path_style"`
}

// Table holds the opened bindings by name. Names are case-insensitive.
type Table struct {
	stores  map[string]bucketgate.ObjectStore
	closers []io.Closer
}

// Open opens every configured binding. On error, bindings opened so far are closed.
func Open(ctx context.Context, cfgs map[string]Config) (*Table, error) {
	t := &Table{stores: make(map[string]bucketgate.ObjectStore, len(cfgs))}

	for name, cfg := range cfgs {
		store, err := openBinding(ctx, cfg)
		if err != nil {
			_ = t.Close()
			return nil, fmt.Errorf("open binding %s: %w", name, err)
		}
		if c, ok := store.(io.Closer); ok {
			t.closers = append(t.closers, c)
		}
		t.stores[strings.ToLower(name)] = store
	}

	return t, nil
}

// NewTable wraps already opened stores.
func NewTable(stores map[string]bucketgate.ObjectStore) *Table {
	t := &Table{stores: make(map[string]bucketgate.ObjectStore, len(stores))}
	for name, s := range stores {
		t.stores[strings.ToLower(name)] = s
	}
	return t
}

func openBinding(ctx context.Context, cfg Config) (bucketgate.ObjectStore, error) {
	switch cfg.Type {
	case TypeFilesystem:
		return filesystem.Open(cfg.Path)
	case TypeS3:
		return s3store.New(ctx, s3store.Config{
			Bucket:          cfg.Bucket,
			Region:          cfg.Region,
			Endpoint:        cfg.Endpoint,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			PathStyle:       cfg.PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown binding type %q", cfg.Type)
	}
}

// Lookup returns the store of the named binding.
func (t *Table) Lookup(name string) (bucketgate.ObjectStore, bool) {
	s, ok := t.stores[strings.ToLower(name)]
	return s, ok
}

// Names returns the sorted binding names.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.stores))
	for n := range t.stores {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Close releases every binding that holds resources.
func (t *Table) Close() error {
	var errs []error
	for _, c := range t.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	t.closers = nil
	return errors.Join(errs...)
}

// S3Factory builds the store of an S3-compatible bucket.
type S3Factory func(ctx context.Context, cfg s3store.Config) (bucketgate.ObjectStore, error)

// DefaultS3Factory builds stores with s3store.New.
func DefaultS3Factory(ctx context.Context, cfg s3store.Config) (bucketgate.ObjectStore, error) {
	return s3store.New(ctx, cfg)
}

// Selector picks the store for a resolved bucket. It implements bucketgate.StoreSelector.
// It is read-only after NewSelector returns.
type Selector struct {
	bindings *Table
	s3       map[string]bucketgate.ObjectStore
	s3Errs   map[string]error
}

// NewSelector creates a Selector over bindings and builds the store of every
// S3-compatible bucket in buckets with newS3 (nil: DefaultS3Factory).
// A store that cannot be built is reported by StoreFor as a configuration error.
func NewSelector(ctx context.Context, bindings *Table, buckets []bucketgate.BucketConfig, newS3 S3Factory) *Selector {
	if bindings == nil {
		bindings = NewTable(nil)
	}
	if newS3 == nil {
		newS3 = DefaultS3Factory
	}

	sel := &Selector{
		bindings: bindings,
		s3:       make(map[string]bucketgate.ObjectStore),
		s3Errs:   make(map[string]error),
	}

	for _, cfg := range buckets {
		if cfg.Provider != bucketgate.ProviderS3 {
			continue
		}
		store, err := newS3(ctx, s3Config(cfg))
		if err != nil {
			slog.Warn("s3 store unavailable", "bucket", cfg.Name, "err", err)
			sel.s3Errs[cfg.Name] = &bucketgate.ConfigError{Bucket: cfg.Name, Reason: err.Error()}
			continue
		}
		sel.s3[cfg.Name] = store
	}

	return sel
}

// StoreFor returns the store serving cfg.
// A missing binding or an unusable S3 configuration is a *bucketgate.ConfigError.
func (s *Selector) StoreFor(cfg bucketgate.BucketConfig) (bucketgate.ObjectStore, error) {
	switch cfg.Provider {
	case bucketgate.ProviderR2:
		store, ok := s.bindings.Lookup(cfg.BindingName)
		if !ok {
			return nil, &bucketgate.ConfigError{
				Bucket: cfg.Name,
				Reason: fmt.Sprintf("binding %q is not available", cfg.BindingName),
			}
		}
		return store, nil

	case bucketgate.ProviderS3:
		if store, ok := s.s3[cfg.Name]; ok {
			return store, nil
		}
		if err, ok := s.s3Errs[cfg.Name]; ok {
			return nil, err
		}
		return nil, &bucketgate.ConfigError{Bucket: cfg.Name, Reason: "no store was built for this bucket"}

	default:
		return nil, &bucketgate.ConfigError{
			Bucket:        cfg.Name,
			InvalidFields: []string{"PROVIDER"},
		}
	}
}

func s3Config(cfg bucketgate.BucketConfig) s3store.Config {
	return s3store.Config{
		Bucket:          cfg.BucketName,
		Region:          cfg.Region,
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		PathStyle:       cfg.ForcePathStyle,
	}
}
