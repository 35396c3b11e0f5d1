// Package s3store implements the object store capability on S3-compatible
// services with aws-sdk-go-v2.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// API is the subset of the S3 client used by Store.
type API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds the connection settings of one S3 bucket.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string // Custom endpoint for S3-compatible services (empty: AWS)
	AccessKeyID     string // Empty: default AWS credential chain
	SecretAccessKey string
	PathStyle       bool
}

// Store reads and writes objects of a single bucket.
type Store struct {
	api    API
	bucket string
}

// New creates a Store with a client built from cfg.
// Static credentials are used when both keys are set; otherwise the default
// AWS credential chain (environment, shared config, instance role) applies.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3store: bucket is required")
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
		},
	}

	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, func(o *s3.Options) {
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		})
		return NewWithClient(s3.New(s3.Options{}, opts...), cfg.Bucket), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("s3store: load aws config: %w", err)
	}

	return NewWithClient(s3.NewFromConfig(awsCfg, opts...), cfg.Bucket), nil
}

// NewWithClient creates a Store on an existing client.
func NewWithClient(api API, bucket string) *Store {
	return &Store{api: api, bucket: bucket}
}

// Bucket returns the bucket name the store writes to.
func (s *Store) Bucket() string {
	return s.bucket
}

// Exists issues a HEAD request for key. A missing object is not an error.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, wrapS3Error(err, "head object")
	}
	return true, nil
}

// Put uploads content under key with the given content type.
// Non-seekable readers are buffered so the SDK can compute checksums and retry signing.
func (s *Store) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error {
	body, length, err := seekable(content, size)
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(length),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.api.PutObject(ctx, input); err != nil {
		return wrapS3Error(err, "put object")
	}
	return nil
}

func seekable(r io.Reader, size int64) (io.ReadSeeker, int64, error) {
	if rs, ok := r.(io.ReadSeeker); ok && size >= 0 {
		return rs, size, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read input: %w", err)
	}
	return bytes.NewReader(data), int64(len(data)), nil
}

// wrapS3Error keeps the service error code and message but never request
// parameters, so credentials cannot reach callers.
func wrapS3Error(err error, op string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("s3 %s: %s: %s", op, apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return fmt.Errorf("s3 %s: %w", op, err)
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode() == http.StatusNotFound
	}

	return false
}
