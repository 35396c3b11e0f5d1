package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/sagarc03/bucketgate/access"
)

// Bucket name sources, tried in the configured order.
const (
	SourceQuery  = "query"
	SourceForm   = "form"
	SourceHeader = "header"
)

// BucketHeader carries the bucket name when the header source is enabled.
const BucketHeader = "X-Bucket-Name"

// Authorizer decides whether a request may proceed.
// Authenticate covers the token checks only, Authorize covers all of them.
type Authorizer interface {
	Authenticate(token string) access.Decision
	Authorize(req access.Request) access.Decision
}

// BucketFunc extracts the requested bucket name from a request. "" means none.
type BucketFunc func(r *http.Request) string

type decisionKey struct{}

// WithDecision stores an allowed access decision in ctx.
func WithDecision(ctx context.Context, d access.Decision) context.Context {
	return context.WithValue(ctx, decisionKey{}, d)
}

// DecisionFromContext returns the access decision stored by AuthMiddleware.
func DecisionFromContext(ctx context.Context) (access.Decision, bool) {
	d, ok := ctx.Value(decisionKey{}).(access.Decision)
	return d, ok
}

type AuthMiddlewareConfig struct {
	Authorizer     Authorizer
	IdentityHeader string
	Bucket         BucketFunc // nil for token-only routes
}

// AuthMiddleware creates middleware that runs the access checks and rejects
// denied requests with the decision's status and reason.
// Allowed decisions are available to handlers through DecisionFromContext.
func AuthMiddleware(cfg AuthMiddlewareConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := access.Request{
				Identity: strings.TrimSpace(r.Header.Get(cfg.IdentityHeader)),
			}
			if token, ok := access.ParseBearer(r.Header.Get("Authorization")); ok {
				req.Token = token
			}
			if cfg.Bucket != nil {
				req.Bucket = cfg.Bucket(r)
			}

			d := cfg.Authorizer.Authorize(req)
			if !d.Allowed() {
				logDenied(r, req, d)
				WriteError(w, d.Outcome.Status(), d.Outcome.String(), d.Reason)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithDecision(r.Context(), d)))
		})
	}
}

// TokenMiddleware rejects requests without a valid bearer token before
// anything reads the body.
func TokenMiddleware(authz Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _ := access.ParseBearer(r.Header.Get("Authorization"))

			d := authz.Authenticate(token)
			if !d.Allowed() {
				logDenied(r, access.Request{}, d)
				WriteError(w, d.Outcome.Status(), d.Outcome.String(), d.Reason)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func logDenied(r *http.Request, req access.Request, d access.Decision) {
	attrs := []any{
		"request_id", middleware.GetReqID(r.Context()),
		"outcome", d.Outcome.String(),
		"bucket", req.Bucket,
		"err", d.Err,
	}
	if d.Outcome.Status() >= http.StatusInternalServerError {
		slog.Error("access denied", attrs...)
		return
	}
	slog.Warn("access denied", attrs...)
}

// BucketFromSources returns a BucketFunc that tries each source in order and
// falls back to defaultBucket. The first non-empty value wins.
// The form source reads the parsed multipart or urlencoded body only.
func BucketFromSources(sources []string, defaultBucket string) BucketFunc {
	return func(r *http.Request) string {
		for _, src := range sources {
			var v string
			switch strings.ToLower(strings.TrimSpace(src)) {
			case SourceQuery:
				v = r.URL.Query().Get("bucket")
			case SourceForm:
				if r.PostForm != nil {
					v = r.PostForm.Get("bucket")
				}
			case SourceHeader:
				v = r.Header.Get(BucketHeader)
			}
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
		return defaultBucket
	}
}

// MultipartMiddleware caps the body at maxBytes (0: no limit) and parses the
// multipart form so the form can name the bucket. It must run after
// TokenMiddleware.
func MultipartMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}

			if err := r.ParseMultipartForm(multipartMemory); err != nil {
				if isMaxBytes(err) {
					HandleError(w, err)
					return
				}
				WriteError(w, http.StatusBadRequest, "invalid_input", "Expected a multipart/form-data body")
				return
			}
			defer func() {
				if r.MultipartForm != nil {
					_ = r.MultipartForm.RemoveAll()
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// multipartMemory is the part of a multipart body kept in memory; the rest spills to disk.
const multipartMemory = 32 << 20

// RequestLogger logs one line per request with slog.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Info("request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}

func isMaxBytes(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}
