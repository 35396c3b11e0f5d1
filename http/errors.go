package http

import "errors"

var (
	// ErrBucketRequired is returned when an upload names no bucket and no default is configured.
	ErrBucketRequired = errors.New("bucket is required")
	// ErrFileRequired is returned when the multipart form has no file part.
	ErrFileRequired = errors.New("file is required")
	// ErrPathRequired is returned when the multipart form has no path field.
	ErrPathRequired = errors.New("path is required")
)
