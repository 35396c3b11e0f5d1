package bucket

import (
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/sagarc03/bucketgate"
)

// Status is the resolution outcome of one declared bucket.
type Status struct {
	Name   string
	Config bucketgate.BucketConfig
	Err    error
}

// Valid reports whether the bucket resolved without error.
func (s Status) Valid() bool {
	return s.Err == nil
}

// Registry is an immutable snapshot of every declared bucket, resolved once.
// It is safe for concurrent reads.
type Registry struct {
	statuses    map[string]Status
	names       []string
	defaultName string
}

// NewRegistry resolves all buckets known to r.
// Invalid buckets are kept with their error so lookups report a configuration
// error instead of "not found". defaultName may be empty.
func NewRegistry(r *Resolver, defaultName string) *Registry {
	reg := &Registry{
		statuses:    make(map[string]Status),
		names:       r.Names(),
		defaultName: defaultName,
	}

	valid := r.ResolveAll()
	for _, name := range reg.names {
		if cfg, ok := valid[name]; ok {
			reg.statuses[name] = Status{Name: name, Config: cfg}
			continue
		}
		_, err := r.Resolve(name)
		reg.statuses[name] = Status{Name: name, Err: err}
	}

	if defaultName != "" {
		if _, ok := reg.statuses[defaultName]; !ok {
			slog.Warn("default bucket is not declared", "bucket", defaultName)
		}
	}

	return reg
}

// Lookup returns the configuration of the named bucket.
// Errors match bucketgate.ErrBucketNotFound or bucketgate.ErrConfig.
func (r *Registry) Lookup(name string) (bucketgate.BucketConfig, error) {
	s, ok := r.statuses[name]
	if !ok {
		return bucketgate.BucketConfig{}, fmt.Errorf("%w: %s", bucketgate.ErrBucketNotFound, name)
	}
	if s.Err != nil {
		return bucketgate.BucketConfig{}, s.Err
	}
	return s.Config, nil
}

// Buckets returns the valid buckets sorted by name.
func (r *Registry) Buckets() []bucketgate.BucketConfig {
	return lo.FilterMap(r.names, func(name string, _ int) (bucketgate.BucketConfig, bool) {
		s := r.statuses[name]
		return s.Config, s.Valid()
	})
}

// Statuses returns every declared bucket with its resolution outcome, sorted by name.
func (r *Registry) Statuses() []Status {
	return lo.Map(r.names, func(name string, _ int) Status {
		return r.statuses[name]
	})
}

// Names returns the names of all declared buckets, valid or not.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Default returns the configured default bucket name, or "".
func (r *Registry) Default() string {
	return r.defaultName
}
