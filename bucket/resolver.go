package bucket

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/sagarc03/bucketgate"
)

// KeyPrefix starts every bucket attribute key.
const KeyPrefix = "BUCKET_"

var providerKey = regexp.MustCompile(`^BUCKET_(.+)_PROVIDER$`)

// rawBucket mirrors the namespace attributes of one bucket before validation.
// The env tag is the attribute suffix and is also the name reported in errors.
type rawBucket struct {
	Provider        string `env:"PROVIDER" validate:"required,oneof=CLOUDFLARE_R2 AWS_S3"`
	BindingName     string `env:"BINDING_NAME" validate:"required_if=Provider CLOUDFLARE_R2"`
	AccessKeyID     string `env:"ACCESS_KEY_ID" validate:"required_if=Provider AWS_S3"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY" validate:"required_if=Provider AWS_S3"`
	BucketName      string `env:"BUCKET_NAME" validate:"required_if=Provider AWS_S3"`
	Endpoint        string `env:"ENDPOINT" validate:"required_if=Provider AWS_S3,omitempty,url"`
	Region          string `env:"REGION" validate:"required_if=Provider AWS_S3"`
	ForcePathStyle  string `env:"FORCE_PATH_STYLE" validate:"omitempty,boolean"`
	CustomDomain    string `env:"CUSTOM_DOMAIN" validate:"omitempty,url"`
	Alias           string `env:"ALIAS"`
	AllowedPaths    string `env:"ALLOWED_PATHS"`
	IDWhitelist     string `env:"ID_WHITELIST"`
	EmailWhitelist  string `env:"EMAIL_WHITELIST"`
}

// Resolver turns namespace entries into validated bucket configurations.
// It is safe for concurrent use; the namespace is never modified.
type Resolver struct {
	ns       Namespace
	validate *validator.Validate
}

// NewResolver creates a Resolver over ns.
func NewResolver(ns Namespace) *Resolver {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("env")
	})

	return &Resolver{ns: ns, validate: v}
}

// Key returns the namespace key of attr for the named bucket.
func Key(name, attr string) string {
	return KeyPrefix + name + "_" + attr
}

// Names returns the sorted names of all declared buckets.
func (r *Resolver) Names() []string {
	names := lo.FilterMap(lo.Keys(r.ns), func(k string, _ int) (string, bool) {
		m := providerKey.FindStringSubmatch(k)
		if m == nil || !r.ns.Has(k) {
			return "", false
		}
		return m[1], true
	})
	slices.Sort(names)
	return names
}

// Resolve returns the configuration of the named bucket.
//
// It returns an error wrapping bucketgate.ErrBucketNotFound when the bucket has
// no PROVIDER entry, and a *bucketgate.ConfigError naming the missing or invalid
// attributes when the declaration is incomplete. No partial configuration is
// ever returned.
func (r *Resolver) Resolve(name string) (bucketgate.BucketConfig, error) {
	if name == "" || !r.ns.Has(Key(name, "PROVIDER")) {
		return bucketgate.BucketConfig{}, fmt.Errorf("%w: %s", bucketgate.ErrBucketNotFound, name)
	}

	raw := r.read(name)
	if err := r.validate.Struct(&raw); err != nil {
		return bucketgate.BucketConfig{}, configError(name, err)
	}

	cfg := bucketgate.BucketConfig{
		Name:              name,
		Provider:          bucketgate.Provider(raw.Provider),
		BucketName:        raw.BucketName,
		AccessKeyID:       raw.AccessKeyID,
		SecretAccessKey:   raw.SecretAccessKey,
		Region:            raw.Region,
		Endpoint:          raw.Endpoint,
		BindingName:       raw.BindingName,
		CustomDomain:      raw.CustomDomain,
		Alias:             raw.Alias,
		AllowedPaths:      SplitList(raw.AllowedPaths),
		IdentityWhitelist: SplitList(raw.IDWhitelist),
	}

	if raw.ForcePathStyle != "" {
		cfg.ForcePathStyle, _ = strconv.ParseBool(raw.ForcePathStyle)
	}

	if len(cfg.AllowedPaths) == 0 {
		cfg.AllowedPaths = []string{bucketgate.WildcardPath}
	}

	if len(cfg.IdentityWhitelist) == 0 {
		cfg.IdentityWhitelist = SplitList(raw.EmailWhitelist)
	}

	return cfg, nil
}

// ResolveAll resolves every declared bucket, keyed by name.
// Buckets with an incomplete declaration are logged at warn level and left out.
func (r *Resolver) ResolveAll() map[string]bucketgate.BucketConfig {
	all := make(map[string]bucketgate.BucketConfig)
	for _, name := range r.Names() {
		cfg, err := r.Resolve(name)
		if err != nil {
			slog.Warn("skipping bucket", "bucket", name, "err", err)
			continue
		}
		all[name] = cfg
	}
	return all
}

func (r *Resolver) read(name string) rawBucket {
	var raw rawBucket

	v := reflect.ValueOf(&raw).Elem()
	t := v.Type()
	for i := range t.NumField() {
		attr := t.Field(i).Tag.Get("env")
		v.Field(i).SetString(r.ns.Get(Key(name, attr)))
	}

	if p, err := bucketgate.ParseProvider(raw.Provider); err == nil {
		raw.Provider = string(p)
	}

	return raw
}

func configError(name string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &bucketgate.ConfigError{Bucket: name, Reason: err.Error()}
	}

	cerr := &bucketgate.ConfigError{Bucket: name}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_if":
			cerr.MissingFields = append(cerr.MissingFields, fe.Field())
		default:
			cerr.InvalidFields = append(cerr.InvalidFields, fe.Field())
		}
	}
	return cerr
}

// SplitList splits a comma-separated value, trimming every element and
// dropping empty ones.
func SplitList(s string) []string {
	return lo.Compact(lo.Map(strings.Split(s, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	}))
}
