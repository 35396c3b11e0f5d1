// Package bucket resolves logical buckets from a flat key/value namespace.
//
// Every bucket is declared with keys of the form BUCKET_<name>_<ATTRIBUTE>.
// A bucket exists when BUCKET_<name>_PROVIDER is set; the remaining attributes
// are validated per provider with go-playground/validator.
//
// # Attributes
//
//   - PROVIDER: CLOUDFLARE_R2 or AWS_S3 (required)
//   - BINDING_NAME: binding handle (required for CLOUDFLARE_R2)
//   - BUCKET_NAME, ACCESS_KEY_ID, SECRET_ACCESS_KEY, REGION, ENDPOINT: required for AWS_S3
//   - FORCE_PATH_STYLE: boolean, S3 path-style addressing
//   - CUSTOM_DOMAIN: public URL prefix
//   - ALIAS: display name
//   - ALLOWED_PATHS: comma-separated path prefixes (default "*")
//   - ID_WHITELIST: comma-separated identities (EMAIL_WHITELIST is read when absent)
//
// # Usage
//
//	ns, err := bucket.LoadNamespace(".env")
//	if err != nil {
//	    return err
//	}
//
//	registry := bucket.NewRegistry(bucket.NewResolver(ns), ns.Get("DEFAULT_BUCKET_CONFIG_NAME"))
//	cfg, err := registry.Lookup("media")
//
// The Registry resolves every declared bucket once. Lookups never re-read the namespace.
package bucket
