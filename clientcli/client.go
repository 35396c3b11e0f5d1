package clientcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 5 * time.Minute

// Client performs operations against a bucketgate server.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()
	cfg.Endpoint = strings.TrimSuffix(cfg.Endpoint, "/")

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Upload uploads file(s) to the server.
// For recursive uploads, walks the directory and keeps relative subdirectories
// under opts.Path; generated names are not used so the layout is preserved.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyPath)
	}
	if strings.TrimSpace(opts.Path) == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyRemotePath)
	}
	if opts.Recursive {
		return c.uploadRecursive(ctx, opts)
	}
	result, err := c.uploadSingle(ctx, opts.LocalPath, opts)
	if err != nil {
		return nil, err
	}
	return []UploadResult{result}, nil
}

// uploadRecursive walks a directory and uploads all files.
func (c *Client) uploadRecursive(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	info, err := os.Stat(opts.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("stat local path: %w", err)
	}

	if !info.IsDir() {
		result, uploadErr := c.uploadSingle(ctx, opts.LocalPath, opts)
		if uploadErr != nil {
			return nil, uploadErr
		}
		return []UploadResult{result}, nil
	}

	var results []UploadResult
	baseDir := opts.LocalPath
	remotePrefix := strings.Trim(opts.Path, "/")

	walkErr := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, fileErr error) error {
		if fileErr != nil {
			return fileErr
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			return nil
		}

		relPath, relErr := filepath.Rel(baseDir, path)
		if relErr != nil {
			results = append(results, UploadResult{
				LocalPath: path,
				Err:       fmt.Errorf("calculate relative path: %w", relErr),
			})
			return nil
		}

		relDir := filepath.ToSlash(filepath.Dir(relPath))
		fileOpts := opts
		fileOpts.Path = remotePrefix
		if relDir != "." {
			fileOpts.Path = remotePrefix + "/" + relDir
		}
		fileOpts.FileName = filepath.Base(relPath)
		fileOpts.ContentType = ""

		result, uploadErr := c.uploadSingle(ctx, path, fileOpts)
		if uploadErr != nil {
			result = UploadResult{
				LocalPath: path,
				Path:      fileOpts.Path,
				FileName:  fileOpts.FileName,
				Err:       uploadErr,
			}
		}
		results = append(results, result)
		return nil
	})

	if walkErr != nil {
		return results, fmt.Errorf("walk directory: %w", walkErr)
	}

	return results, nil
}

// uploadSingle streams one file to POST /upload as multipart/form-data.
func (c *Client) uploadSingle(ctx context.Context, localPath string, opts UploadOptions) (UploadResult, error) {
	file, err := os.Open(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return UploadResult{}, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return UploadResult{}, fmt.Errorf("stat file: %w", err)
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = detectContentType(localPath)
	}

	fields := map[string]string{"path": opts.Path}
	if opts.FileName != "" {
		fields["fileName"] = opts.FileName
	}
	if opts.Overwrite {
		fields["overwrite"] = "true"
	}
	if b := c.bucket(opts.Bucket); b != "" {
		fields["bucket"] = b
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeMultipart(mw, fields, filepath.Base(localPath), contentType, file))
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/upload", pr)
	if err != nil {
		_ = pr.Close()
		return UploadResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out serverUpload
	if err := c.do(req, &out); err != nil {
		return UploadResult{}, err
	}

	return UploadResult{
		LocalPath: localPath,
		Path:      opts.Path,
		URL:       out.URL,
		FileName:  out.FileName,
		Size:      info.Size(),
	}, nil
}

func writeMultipart(mw *multipart.Writer, fields map[string]string, fileName, contentType string, content io.Reader) error {
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("write field %s: %w", k, err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}

	return mw.Close()
}

// ListBuckets returns the buckets whose whitelist contains the configured identity.
func (c *Client) ListBuckets(ctx context.Context) ([]Bucket, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/buckets", http.NoBody)
	if err != nil {
		return nil, err
	}

	var out serverBuckets
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Buckets, nil
}

// Health reports whether the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.Endpoint+"/", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return parseServerError(resp.StatusCode, body)
	}
	return nil
}

func (c *Client) bucket(name string) string {
	if name != "" {
		return name
	}
	return c.config.Bucket
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	u, err := url.JoinPath(c.config.Endpoint, path)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	if c.config.Identity != "" {
		req.Header.Set(c.config.IdentityHeader, c.config.Identity)
	}
	return req, nil
}

// do executes req and decodes a 200 JSON body into out.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return parseServerError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// detectContentType guesses the MIME type from the file extension.
func detectContentType(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return "application/octet-stream"
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return "application/octet-stream"
	}

	return mimeType
}

// parseServerError extracts the error code and message from a server response.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode}

	var se serverError
	if err := json.Unmarshal(body, &se); err == nil && se.Error != "" {
		apiErr.Code = se.Error
		apiErr.Message = se.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}

	return apiErr
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	msg := "server error: " + strconv.Itoa(e.StatusCode)
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Message != "" {
		msg += " - " + e.Message
	}
	return msg
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrUnauthorized is returned when the token or identity is missing or invalid (401).
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized}

	// ErrForbidden is returned when the identity or path is not allowed (403).
	ErrForbidden = &APIError{StatusCode: http.StatusForbidden}

	// ErrConflict is returned when the object exists and overwrite was not requested (409).
	ErrConflict = &APIError{StatusCode: http.StatusConflict}

	// ErrTooLarge is returned when the upload exceeds the server limit (413).
	ErrTooLarge = &APIError{StatusCode: http.StatusRequestEntityTooLarge}

	// ErrUnavailable is returned when authentication or the bucket whitelist is not configured (503).
	ErrUnavailable = &APIError{StatusCode: http.StatusServiceUnavailable}
)
