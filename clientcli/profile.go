package clientcli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Profile is one saved gateway connection.
type Profile struct {
	Endpoint       string `yaml:"endpoint" validate:"required,http_url"`
	Token          string `yaml:"token" validate:"required"`
	Identity       string `yaml:"identity,omitempty"`
	IdentityHeader string `yaml:"identity_header,omitempty" validate:"omitempty,header_name"`
	Bucket         string `yaml:"bucket,omitempty"`
}

// Config returns the client configuration of the profile.
func (p Profile) Config() *Config {
	return &Config{
		Endpoint:       p.Endpoint,
		Token:          p.Token,
		Identity:       p.Identity,
		IdentityHeader: p.IdentityHeader,
		Bucket:         p.Bucket,
	}
}

// Validate reports the fields that keep p from reaching a gateway.
// The error wraps ErrInvalidProfile and names fields by their YAML key.
func (p Profile) Validate() error {
	err := profileValidator.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate profile: %w", err)
	}

	fields := lo.Map(verrs, func(fe validator.FieldError, _ int) string { return fe.Field() })
	return fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(fields, ", "))
}

var profileValidator = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		return name
	})
	_ = v.RegisterValidation("header_name", func(fl validator.FieldLevel) bool {
		return ValidHeaderName(fl.Field().String())
	})
	return v
}()

// ValidHeaderName reports whether name is a valid HTTP header field name.
func ValidHeaderName(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.ContainsRune("!#$%&'*+-.^_`|~", c):
		default:
			return false
		}
	}
	return true
}

// NamedProfile is a profile together with its name.
type NamedProfile struct {
	Name    string
	Current bool
	Profile
}

// Profiles is the client configuration file: named profiles and the one used
// when no profile is requested.
type Profiles struct {
	Current string             `yaml:"current,omitempty"`
	Entries map[string]Profile `yaml:"profiles"`
}

// Get returns the named profile. An empty name selects the current profile,
// or the only profile when exactly one exists.
func (ps *Profiles) Get(name string) (NamedProfile, error) {
	if len(ps.Entries) == 0 {
		return NamedProfile{}, ErrNoProfiles
	}

	if name == "" {
		name = ps.Current
	}
	if name == "" && len(ps.Entries) == 1 {
		name = ps.Names()[0]
	}
	if name == "" {
		return NamedProfile{}, ErrNoCurrentProfile
	}

	p, ok := ps.Entries[name]
	if !ok {
		return NamedProfile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return NamedProfile{Name: name, Current: name == ps.Current, Profile: p}, nil
}

// Set validates p and stores it under name, replacing any profile of that
// name. The first profile stored becomes current.
func (ps *Profiles) Set(name string, p Profile) error {
	if name == "" || strings.ContainsAny(name, " \t\n") {
		return fmt.Errorf("%w: %q", ErrInvalidProfileName, name)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	if ps.Entries == nil {
		ps.Entries = make(map[string]Profile)
	}
	ps.Entries[name] = p
	if ps.Current == "" {
		ps.Current = name
	}
	return nil
}

// Use makes name the current profile.
func (ps *Profiles) Use(name string) error {
	if _, ok := ps.Entries[name]; !ok {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	ps.Current = name
	return nil
}

// Remove deletes the named profile. Removing the current profile leaves no
// profile current.
func (ps *Profiles) Remove(name string) error {
	if _, ok := ps.Entries[name]; !ok {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	delete(ps.Entries, name)
	if ps.Current == name {
		ps.Current = ""
	}
	return nil
}

// Names returns the profile names, sorted.
func (ps *Profiles) Names() []string {
	names := lo.Keys(ps.Entries)
	slices.Sort(names)
	return names
}

// List returns every profile sorted by name.
func (ps *Profiles) List() []NamedProfile {
	return lo.Map(ps.Names(), func(name string, _ int) NamedProfile {
		return NamedProfile{Name: name, Current: name == ps.Current, Profile: ps.Entries[name]}
	})
}

// Save writes the profiles to path with owner-only permissions.
func (ps *Profiles) Save(path string) error {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(ps)
	if err != nil {
		return fmt.Errorf("marshal profiles: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write profiles: %w", err)
	}
	return nil
}

// LoadProfiles reads the profiles at path. A missing file yields an empty set.
func LoadProfiles(path string) (*Profiles, error) {
	data, err := os.ReadFile(filepath.Clean(path)) //#nosec G304 -- path is user-provided config file
	if errors.Is(err, fs.ErrNotExist) {
		return &Profiles{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	var ps Profiles
	if err := yaml.Unmarshal(data, &ps); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	return &ps, nil
}
