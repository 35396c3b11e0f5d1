package bucketgate

import (
	"context"
	"fmt"
	"io"
	"time"
)

// ObjectStore is the capability a storage backend offers to the gateway.
//
// All methods accept a context for cancellation and timeout control.
// Implementations should respect context cancellation and return its error.
type ObjectStore interface {
	// Exists reports whether an object is stored under key.
	// A missing object is (false, nil); any other failure is returned as an error.
	Exists(ctx context.Context, key string) (bool, error)

	// Put stores content under key, replacing any existing object.
	// size is the content length in bytes, or -1 when unknown.
	// contentType is stored as object metadata where the backend supports it.
	Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error
}

// StoreSelector returns the ObjectStore serving a resolved bucket.
// Implementations return a *ConfigError when the bucket's backend is unavailable.
type StoreSelector interface {
	StoreFor(cfg BucketConfig) (ObjectStore, error)
}

// ServiceConfig holds configuration options for UploadService.
type ServiceConfig struct {
	BackendTimeout time.Duration // Timeout for each backend call (0: no extra timeout)
}

// UploadService validates uploads against a bucket's policy and writes them
// through the bucket's ObjectStore.
type UploadService struct {
	stores         StoreSelector
	backendTimeout time.Duration
}

// NewUploadService creates an UploadService that resolves stores with stores.
// A zero cfg.BackendTimeout leaves backend calls bounded only by the request context.
func NewUploadService(stores StoreSelector, cfg ServiceConfig) *UploadService {
	return &UploadService{
		stores:         stores,
		backendTimeout: cfg.BackendTimeout,
	}
}

// Upload stores file in the bucket described by cfg.
//
// The method performs the following steps:
//  1. Validates the input (path required, content present)
//  2. Checks the path against cfg.AllowedPaths (ErrPathNotAllowed)
//  3. Builds the storage key from the sanitized path and either opts.FileName
//     or a generated name that keeps the original extension
//  4. Unless opts.Overwrite is set, asks the backend whether the key exists
//     and fails with a *ConflictError if it does
//  5. Writes the content with its content type
//  6. Returns the public URL built from the custom domain or provider default
//
// The existence check and the write are separate backend calls with no lock
// between them. Concurrent uploads to the same key can both pass the check and
// both write; the backend keeps the last write. Overwrite protection is therefore
// best-effort only.
//
// Backend failures are returned as *BackendError (matching ErrUploadFailed) and
// are not retried. Each backend call runs under the configured backend timeout.
//
// cfg must come from an allowed access decision; Upload does not check identity.
func (s *UploadService) Upload(ctx context.Context, cfg BucketConfig, file File, opts UploadOptions) (UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return UploadResult{}, fmt.Errorf("upload: %w", err)
	}

	if opts.Path == "" {
		return UploadResult{}, fmt.Errorf("upload: %w: path is required", ErrInvalidInput)
	}

	if file.Content == nil {
		return UploadResult{}, fmt.Errorf("upload: %w: no file provided", ErrInvalidInput)
	}

	if !IsPathAllowed(opts.Path, cfg.AllowedPaths) {
		return UploadResult{}, fmt.Errorf("upload to %s: %w: %s", cfg.Name, ErrPathNotAllowed, opts.Path)
	}

	fileName := opts.FileName
	if fileName == "" {
		fileName = GenerateFileName(file.Name)
	} else if SanitizePath(fileName) == "" {
		return UploadResult{}, fmt.Errorf("upload: %w: invalid file name %q", ErrInvalidInput, fileName)
	}

	key := BuildKey(opts.Path, fileName)

	store, err := s.stores.StoreFor(cfg)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload to %s: %w", cfg.Name, err)
	}

	if !opts.Overwrite {
		exists, existsErr := s.exists(ctx, store, key)
		if existsErr != nil {
			return UploadResult{}, &BackendError{Op: "exists", Key: key, Err: existsErr}
		}
		if exists {
			return UploadResult{}, &ConflictError{Key: key}
		}
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if putErr := s.put(ctx, store, key, file, contentType); putErr != nil {
		return UploadResult{}, &BackendError{Op: "put", Key: key, Err: putErr}
	}

	return UploadResult{
		URL:      cfg.ObjectURL(key),
		FileName: fileName,
		Key:      key,
	}, nil
}

func (s *UploadService) exists(ctx context.Context, store ObjectStore, key string) (bool, error) {
	callCtx, cancel := s.backendContext(ctx)
	defer cancel()
	return store.Exists(callCtx, key)
}

func (s *UploadService) put(ctx context.Context, store ObjectStore, key string, file File, contentType string) error {
	callCtx, cancel := s.backendContext(ctx)
	defer cancel()
	return store.Put(callCtx, key, file.Content, file.Size, contentType)
}

func (s *UploadService) backendContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.backendTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.backendTimeout)
}
