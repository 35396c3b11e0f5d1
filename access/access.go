// Package access decides whether a request may use the gateway and, for
// bucket-scoped requests, which bucket configuration it may use.
//
// Checks run in a fixed order and stop at the first failure:
//
//  1. At least one shared-secret token is configured (503 otherwise)
//  2. The request carries a bearer token from the set (401)
//  3. Without a bucket, the decision is allowed with no bucket attached
//  4. The bucket resolves (500 on configuration error)
//  5. The bucket declares an identity whitelist (503)
//  6. The request carries an identity (401)
//  7. The identity is on the whitelist, exact match (403)
//
// Authenticate runs steps 1 and 2 only. It needs nothing but the Authorization
// header, so callers run it before reading a request body.
//
// An allowed Decision is the only way to obtain a bucket configuration for an upload.
package access

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sagarc03/bucketgate"
)

// Outcome classifies an access decision.
type Outcome int

const (
	Allowed Outcome = iota
	NotConfigured
	Unauthorized
	ConfigError
	WhitelistMissing
	IdentityRequired
	Forbidden
)

// Status returns the HTTP status code for the outcome.
func (o Outcome) Status() int {
	switch o {
	case Allowed:
		return http.StatusOK
	case NotConfigured, WhitelistMissing:
		return http.StatusServiceUnavailable
	case Unauthorized, IdentityRequired:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (o Outcome) String() string {
	switch o {
	case Allowed:
		return "allowed"
	case NotConfigured:
		return "not_configured"
	case Unauthorized:
		return "unauthorized"
	case ConfigError:
		return "config_error"
	case WhitelistMissing:
		return "whitelist_missing"
	case IdentityRequired:
		return "identity_required"
	case Forbidden:
		return "forbidden"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Messages returned to callers.
const (
	MsgNotConfigured    = "Service unavailable: Authentication is not configured."
	MsgMissingToken     = "Unauthorized: Missing or invalid Authorization header."
	MsgInvalidToken     = "Unauthorized: Invalid token."
	MsgWhitelistMissing = "Service unavailable: ID whitelist not configured for this bucket."
	MsgIdentityRequired = "Unauthorized: User ID is required for this bucket."
	MsgForbidden        = "Unauthorized: User ID not in whitelist for this bucket."
)

// Request holds the credentials of one call.
type Request struct {
	Token    string // Bearer token, "" when absent
	Identity string // Caller identity, "" when absent
	Bucket   string // Logical bucket name, "" for token-only routes
}

// Decision is the result of Authorize.
type Decision struct {
	Outcome Outcome
	Reason  string
	Err     error

	bucket    bucketgate.BucketConfig
	hasBucket bool
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d.Outcome == Allowed
}

// Bucket returns the authorized bucket. ok is false for denied decisions and
// for token-only decisions.
func (d Decision) Bucket() (bucketgate.BucketConfig, bool) {
	if !d.Allowed() || !d.hasBucket {
		return bucketgate.BucketConfig{}, false
	}
	return d.bucket, true
}

// TokenChecker is the set of accepted shared-secret tokens.
// Verify returns nil for an accepted token.
type TokenChecker interface {
	Len() int
	Verify(token string) error
}

// BucketLookup resolves a logical bucket name.
type BucketLookup interface {
	Lookup(name string) (bucketgate.BucketConfig, error)
}

// Authorizer evaluates requests against the configured tokens and buckets.
// It holds no mutable state and is safe for concurrent use.
type Authorizer struct {
	tokens  TokenChecker
	buckets BucketLookup
}

// NewAuthorizer creates an Authorizer. A nil or empty token set denies every
// request as not configured.
func NewAuthorizer(tokens TokenChecker, buckets BucketLookup) *Authorizer {
	return &Authorizer{tokens: tokens, buckets: buckets}
}

// Authenticate checks that tokens are configured and that token is one of them.
// An allowed result carries no bucket.
func (a *Authorizer) Authenticate(token string) Decision {
	if a.tokens == nil || a.tokens.Len() == 0 {
		return deny(NotConfigured, MsgNotConfigured, bucketgate.ErrNotConfigured)
	}

	if token == "" {
		return deny(Unauthorized, MsgMissingToken, bucketgate.ErrUnauthorized)
	}

	if err := a.tokens.Verify(token); err != nil {
		return deny(Unauthorized, MsgInvalidToken, fmt.Errorf("%w: %w", bucketgate.ErrUnauthorized, err))
	}

	return Decision{Outcome: Allowed}
}

// Authorize runs the access checks for req.
func (a *Authorizer) Authorize(req Request) Decision {
	if d := a.Authenticate(req.Token); !d.Allowed() || req.Bucket == "" {
		return d
	}

	cfg, err := a.buckets.Lookup(req.Bucket)
	if err != nil {
		return deny(ConfigError, configMessage(req.Bucket, err), err)
	}

	if !cfg.HasWhitelist() {
		return deny(WhitelistMissing, MsgWhitelistMissing,
			fmt.Errorf("bucket %s: %w: identity whitelist", req.Bucket, bucketgate.ErrNotConfigured))
	}

	if req.Identity == "" {
		return deny(IdentityRequired, MsgIdentityRequired, bucketgate.ErrUnauthorized)
	}

	if !cfg.Allows(req.Identity) {
		return deny(Forbidden, MsgForbidden, fmt.Errorf("bucket %s: %w", req.Bucket, bucketgate.ErrForbidden))
	}

	return Decision{Outcome: Allowed, bucket: cfg, hasBucket: true}
}

func deny(o Outcome, reason string, err error) Decision {
	return Decision{Outcome: o, Reason: reason, Err: err}
}

func configMessage(bucket string, err error) string {
	if errors.Is(err, bucketgate.ErrBucketNotFound) {
		return fmt.Sprintf("Internal Server Error: Configuration for bucket '%s' not found.", bucket)
	}
	return fmt.Sprintf("Internal Server Error: Configuration for bucket '%s' is invalid.", bucket)
}

// ParseBearer extracts the token from an Authorization header value.
// The scheme is matched case-insensitively.
func ParseBearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
