package bucketgate

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
)

// Provider identifies the backend family a bucket is stored in.
type Provider string

const (
	// ProviderR2 is an R2-style bucket reached through a named binding.
	ProviderR2 Provider = "CLOUDFLARE_R2"
	// ProviderS3 is an S3-compatible service reached with static credentials.
	ProviderS3 Provider = "AWS_S3"
)

// IsValid reports whether p is one of the supported providers.
func (p Provider) IsValid() bool {
	switch p {
	case ProviderR2, ProviderS3:
		return true
	default:
		return false
	}
}

// ParseProvider parses a provider name case-insensitively.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToUpper(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("invalid provider: %s (valid providers: %s, %s)", s, ProviderR2, ProviderS3)
	}
	return p, nil
}

// WildcardPath in AllowedPaths permits uploads to any path.
const WildcardPath = "*"

// BucketConfig is the validated configuration of one logical bucket.
// A BucketConfig is never mutated after resolution.
type BucketConfig struct {
	Name              string
	Provider          Provider
	BucketName        string
	AccessKeyID       string
	SecretAccessKey   string
	Region            string
	Endpoint          string
	ForcePathStyle    bool
	BindingName       string
	CustomDomain      string
	Alias             string
	AllowedPaths      []string
	IdentityWhitelist []string
}

// DisplayName returns the alias, or the logical name when no alias is set.
func (c BucketConfig) DisplayName() string {
	if c.Alias != "" {
		return c.Alias
	}
	return c.Name
}

// HasWhitelist reports whether at least one identity is allowed.
func (c BucketConfig) HasWhitelist() bool {
	return len(c.IdentityWhitelist) > 0
}

// Allows reports whether identity is on the whitelist. Matching is exact and case-sensitive.
func (c BucketConfig) Allows(identity string) bool {
	if identity == "" {
		return false
	}
	return slices.Contains(c.IdentityWhitelist, identity)
}

// ObjectURL builds the public URL of key.
// The custom domain wins; otherwise R2 buckets use the endpoint (or /files),
// and S3 buckets use endpoint/bucket.
func (c BucketConfig) ObjectURL(key string) string {
	if c.CustomDomain != "" {
		return trimTrailingSlashes(c.CustomDomain) + "/" + key
	}

	switch c.Provider {
	case ProviderS3:
		return trimTrailingSlashes(c.Endpoint) + "/" + c.BucketName + "/" + key
	default:
		if c.Endpoint != "" {
			return trimTrailingSlashes(c.Endpoint) + "/" + key
		}
		return "/files/" + key
	}
}

// Public returns the externally visible view of the bucket, without credentials.
func (c BucketConfig) Public() PublicBucket {
	allowed := c.AllowedPaths
	if len(allowed) == 0 {
		allowed = []string{WildcardPath}
	}
	return PublicBucket{
		Name:         c.Name,
		Provider:     c.Provider,
		BucketName:   c.BucketName,
		Region:       c.Region,
		Endpoint:     trimTrailingSlashes(c.Endpoint),
		CustomDomain: trimTrailingSlashes(c.CustomDomain),
		BindingName:  c.BindingName,
		Alias:        c.DisplayName(),
		AllowedPaths: allowed,
	}
}

// LogValue keeps credentials out of structured logs.
func (c BucketConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", c.Name),
		slog.String("provider", string(c.Provider)),
		slog.String("bucket_name", c.BucketName),
		slog.String("binding_name", c.BindingName),
		slog.Any("allowed_paths", c.AllowedPaths),
		slog.Int("whitelist_size", len(c.IdentityWhitelist)),
	)
}

// PublicBucket is the listing shape of a bucket.
type PublicBucket struct {
	Name         string   `json:"name"`
	Provider     Provider `json:"provider"`
	BucketName   string   `json:"bucketName,omitempty"`
	Region       string   `json:"region,omitempty"`
	Endpoint     string   `json:"endpoint,omitempty"`
	CustomDomain string   `json:"customDomain,omitempty"`
	BindingName  string   `json:"bindingName,omitempty"`
	Alias        string   `json:"alias"`
	AllowedPaths []string `json:"allowedPaths"`
}

// File is the uploaded content as received from the caller.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// UploadOptions controls where and how a file is stored.
type UploadOptions struct {
	Path      string
	FileName  string
	Overwrite bool
}

// UploadResult is returned after a successful upload.
type UploadResult struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	Key      string `json:"-"`
}

func trimTrailingSlashes(s string) string {
	return strings.TrimRight(s, "/")
}
