package bucketgate

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBucketNotFound is returned when no bucket with the given name is declared
	ErrBucketNotFound = errors.New("bucket not found")
	// ErrConfig is returned when a declared bucket is incomplete or invalid
	ErrConfig = errors.New("invalid bucket configuration")
	// ErrInvalidInput is returned when request validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when a credential is missing or invalid
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when a valid caller is not allowed to use a bucket
	ErrForbidden = errors.New("forbidden")
	// ErrNotConfigured is returned when a required security setting is absent
	ErrNotConfigured = errors.New("not configured")
	// ErrPathNotAllowed is returned when an upload path violates the bucket path policy
	ErrPathNotAllowed = errors.New("path not allowed")
	// ErrConflict is returned when the target object exists and overwrite was not requested
	ErrConflict = errors.New("object already exists")
	// ErrUploadFailed is returned when a backend call fails
	ErrUploadFailed = errors.New("upload failed")
)

// ConfigError describes why a declared bucket cannot be used.
// Field names are configuration attribute names; values are never included.
type ConfigError struct {
	Bucket        string
	MissingFields []string
	InvalidFields []string
	Reason        string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "bucket %q: %s", e.Bucket, ErrConfig)
	if len(e.MissingFields) > 0 {
		fmt.Fprintf(&b, ": missing %s", strings.Join(e.MissingFields, ", "))
	}
	if len(e.InvalidFields) > 0 {
		fmt.Fprintf(&b, ": invalid %s", strings.Join(e.InvalidFields, ", "))
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	return b.String()
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// ConflictError is returned when an object already exists at Key.
type ConflictError struct {
	Key string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("file '%s' already exists, use the overwrite option to replace it", e.Key)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// BackendError wraps a failed backend call. Op is "exists" or "put".
type BackendError struct {
	Op  string
	Key string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrUploadFailed, e.Op, e.Key, e.Err)
}

func (e *BackendError) Is(target error) bool {
	return target == ErrUploadFailed
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
