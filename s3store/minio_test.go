package s3store_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sagarc03/bucketgate/s3store"
)

const (
	minioUser     = "minioadmin"
	minioPassword = "minioadmin"
)

// startMinio runs a MinIO container and returns its endpoint.
func startMinio(t *testing.T) string {
	t.Helper()

	ctx := context.Background()
	ctr, err := testcontainers.Run(ctx,
		"minio/minio:RELEASE.2024-08-17T01-24-54Z",
		testcontainers.WithExposedPorts("9000/tcp"),
		testcontainers.WithEnv(map[string]string{
			"MINIO_ROOT_USER":     minioUser,
			"MINIO_ROOT_PASSWORD": minioPassword,
		}),
		testcontainers.WithCmd("server", "/data"),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start minio container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	endpoint, err := ctr.PortEndpoint(ctx, "9000/tcp", "http")
	require.NoError(t, err)

	return endpoint
}

func TestStore_MinIO(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	endpoint := startMinio(t)
	ctx := context.Background()

	admin := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider(minioUser, minioPassword, ""),
	})
	_, err := admin.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String("uploads")})
	require.NoError(t, err)

	store, err := s3store.New(ctx, s3store.Config{
		Bucket:          "uploads",
		Region:          "us-east-1",
		Endpoint:        endpoint,
		AccessKeyID:     minioUser,
		SecretAccessKey: minioPassword,
		PathStyle:       true,
	})
	require.NoError(t, err)

	ok, err := store.Exists(ctx, "images/a.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "images/a.txt", strings.NewReader("hello"), 5, "text/plain"))

	ok, err = store.Exists(ctx, "images/a.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	obj, err := admin.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String("uploads"), Key: aws.String("images/a.txt")})
	require.NoError(t, err)
	defer func() { _ = obj.Body.Close() }()

	body, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, "text/plain", aws.ToString(obj.ContentType))
}
