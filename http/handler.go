package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/samber/lo"

	"github.com/sagarc03/bucketgate"
)

// BucketLister returns the valid buckets.
type BucketLister interface {
	Buckets() []bucketgate.BucketConfig
}

// Uploader stores an upload in an authorized bucket.
type Uploader interface {
	Upload(ctx context.Context, cfg bucketgate.BucketConfig, file bucketgate.File, opts bucketgate.UploadOptions) (bucketgate.UploadResult, error)
}

type CORSConfig struct {
	Enabled          bool
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

type HandlerConfig struct {
	IdentityHeader string   // Header carrying the caller identity
	BucketSources  []string // Bucket name sources in precedence order
	DefaultBucket  string   // Used when no source names a bucket
	MaxUploadSize  int64    // Request body limit in bytes (0: no limit)
	CORS           CORSConfig
}

// Handler provides the HTTP API of the gateway.
type Handler struct {
	config   HandlerConfig
	authz    Authorizer
	buckets  BucketLister
	uploader Uploader
}

// NewHandler creates a new Handler with the given configuration and collaborators.
func NewHandler(config *HandlerConfig, authz Authorizer, buckets BucketLister, uploader Uploader) *Handler {
	cfg := *config
	if cfg.IdentityHeader == "" {
		cfg.IdentityHeader = "X-User-Id"
	}
	if len(cfg.BucketSources) == 0 {
		cfg.BucketSources = []string{SourceQuery, SourceForm}
	}

	return &Handler{
		config:   cfg,
		authz:    authz,
		buckets:  buckets,
		uploader: uploader,
	}
}

// Router returns an http.Handler with all routes configured.
//
//	GET  /         health check, no authentication
//	GET  /buckets  buckets whose whitelist contains the caller, token only
//	POST /upload   multipart upload into an authorized bucket
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/", h.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(AuthMiddlewareConfig{
			Authorizer:     h.authz,
			IdentityHeader: h.config.IdentityHeader,
		}))
		r.Get("/buckets", h.handleListBuckets)
	})

	r.Group(func(r chi.Router) {
		r.Use(TokenMiddleware(h.authz))
		r.Use(MultipartMiddleware(h.config.MaxUploadSize))
		r.Use(AuthMiddleware(AuthMiddlewareConfig{
			Authorizer:     h.authz,
			IdentityHeader: h.config.IdentityHeader,
			Bucket:         BucketFromSources(h.config.BucketSources, h.config.DefaultBucket),
		}))
		r.Post("/upload", h.handleUpload)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "not_found", "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handler) handleListBuckets(w http.ResponseWriter, r *http.Request) {
	identity := strings.TrimSpace(r.Header.Get(h.config.IdentityHeader))

	visible := lo.FilterMap(h.buckets.Buckets(), func(b bucketgate.BucketConfig, _ int) (bucketgate.PublicBucket, bool) {
		return b.Public(), b.Allows(identity)
	})

	_ = WriteJSON(w, http.StatusOK, BucketsResponse{Success: true, Buckets: visible})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	d, ok := DecisionFromContext(r.Context())
	if !ok {
		HandleError(w, ErrBucketRequired)
		return
	}

	cfg, ok := d.Bucket()
	if !ok {
		HandleError(w, ErrBucketRequired)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		HandleError(w, ErrFileRequired)
		return
	}
	defer func() { _ = file.Close() }()

	path := r.PostFormValue("path")
	if strings.TrimSpace(path) == "" {
		HandleError(w, ErrPathRequired)
		return
	}

	contentType := header.Header.Get("Content-Type")

	result, err := h.uploader.Upload(r.Context(), cfg, bucketgate.File{
		Name:        header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Content:     file,
	}, bucketgate.UploadOptions{
		Path:      path,
		FileName:  strings.TrimSpace(r.PostFormValue("fileName")),
		Overwrite: r.PostFormValue("overwrite") == "true",
	})
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, UploadResponse{
		Success:  true,
		URL:      result.URL,
		FileName: result.FileName,
	})
}
