package bucketgate_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sagarc03/bucketgate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore is a mock implementation of bucketgate.ObjectStore
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, content, size, contentType)
	return args.Error(0)
}

// staticSelector returns the same store for every bucket
type staticSelector struct {
	store bucketgate.ObjectStore
	err   error
}

func (s staticSelector) StoreFor(bucketgate.BucketConfig) (bucketgate.ObjectStore, error) {
	return s.store, s.err
}

func s3Bucket() bucketgate.BucketConfig {
	return bucketgate.BucketConfig{
		Name:         "media",
		Provider:     bucketgate.ProviderS3,
		BucketName:   "media-bucket",
		Endpoint:     "https://s3.example.com",
		Region:       "us-east-1",
		AllowedPaths: []string{"images"},
	}
}

func textFile(content string) bucketgate.File {
	return bucketgate.File{
		Name:        "note.txt",
		ContentType: "text/plain",
		Size:        int64(len(content)),
		Content:     strings.NewReader(content),
	}
}

func TestUploadService_Upload_NewObject(t *testing.T) {
	store := new(MockStore)
	service := bucketgate.NewUploadService(staticSelector{store: store}, bucketgate.ServiceConfig{})

	store.On("Exists", mock.Anything, "images/a.txt").Return(false, nil)
	store.On("Put", mock.Anything, "images/a.txt", mock.Anything, int64(5), "text/plain").Return(nil)

	res, err := service.Upload(context.Background(), s3Bucket(), textFile("hello"), bucketgate.UploadOptions{
		Path:     "/images/",
		FileName: "a.txt",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com/media-bucket/images/a.txt", res.URL)
	assert.Equal(t, "a.txt", res.FileName)
	assert.Equal(t, "images/a.txt", res.Key)
	store.AssertExpectations(t)
}

func TestUploadService_Upload_GeneratedName(t *testing.T) {
	store := new(MockStore)
	service := bucketgate.NewUploadService(staticSelector{store: store}, bucketgate.ServiceConfig{})

	store.On("Exists", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
	store.On("Put", mock.Anything, mock.AnythingOfType("string"), mock.Anything, int64(5), "text/plain").Return(nil)

	res, err := service.Upload(context.Background(), s3Bucket(), textFile("hello"), bucketgate.UploadOptions{Path: "images"})

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.FileName, ".txt"))
	assert.Equal(t, "images/"+res.FileName, res.Key)
}

func TestUploadService_Upload_Conflict(t *testing.T) {
	store := new(MockStore)
	service := bucketgate.NewUploadService(staticSelector{store: store}, bucketgate.ServiceConfig{})

	store.On("Exists", mock.Anything, "images/a.txt").Return(true, nil)

	_, err := service.Upload(context.Background(), s3Bucket(), textFile("hello"), bucketgate.UploadOptions{
		Path:     "images",
		FileName: "a.txt",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, bucketgate.ErrConflict)

	var conflict *bucketgate.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "images/a.txt", conflict.Key)
	assert.Contains(t, err.Error(), "already exists")
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadService_Upload_OverwriteSkipsExistenceCheck(t *testing.T) {
	store := new(MockStore)
	service := bucketgate.NewUploadService(staticSelector{store: store}, bucketgate.ServiceConfig{})

	store.On("Put", mock.Anything, "images/a.txt", mock.Anything, int64(5), "text/plain").Return(nil)

	_, err := service.Upload(context.Background(), s3Bucket(), textFile("hello"), bucketgate.UploadOptions{
		Path:      "images",
		FileName:  "a.txt",
		Overwrite: true,
	})

	require.NoError(t, err)
	store.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestUploadService_Upload_DefaultContentType(t *testing.T) {
	store := new(MockStore)
	service := bucketgate.NewUploadService(staticSelector{store: store}, bucketgate.ServiceConfig{})

	store.On("Exists", mock.Anything, "images/blob").Return(false, nil)
	store.On("Put", mock.Anything, "images/blob", mock.Anything, int64(-1), "application/octet-stream").Return(nil)

	file := bucketgate.File{Name: "blob", Size: -1, Content: strings.NewReader("x")}
	_, err := service.Upload(context.Background(), s3Bucket(), file, bucketgate.UploadOptions{Path: "images", FileName: "blob"})

	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestUploadService_Upload_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    bucketgate.File
		opts    bucketgate.UploadOptions
		wantErr error
	}{
		{
			name:    "missing path",
			file:    textFile("x"),
			opts:    bucketgate.UploadOptions{},
			wantErr: bucketgate.ErrInvalidInput,
		},
		{
			name:    "missing content",
			file:    bucketgate.File{Name: "a.txt"},
			opts:    bucketgate.UploadOptions{Path: "images"},
			wantErr: bucketgate.ErrInvalidInput,
		},
		{
			name:    "path outside allow-list",
			file:    textFile("x"),
			opts:    bucketgate.UploadOptions{Path: "docs"},
			wantErr: bucketgate.ErrPathNotAllowed,
		},
		{
			name:    "traversal outside allow-list",
			file:    textFile("x"),
			opts:    bucketgate.UploadOptions{Path: "../../etc/passwd"},
			wantErr: bucketgate.ErrPathNotAllowed,
		},
		{
			name:    "file name that normalizes away",
			file:    textFile("x"),
			opts:    bucketgate.UploadOptions{Path: "images", FileName: "../.."},
			wantErr: bucketgate.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockStore)
			service := bucketgate.NewUploadService(staticSelector{store: store}, bucketgate.ServiceConfig{})

			_, err := service.Upload(context.Background(), s3Bucket(), tt.file, tt.opts)

			assert.ErrorIs(t, err, tt.wantErr)
			store.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
			store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUploadService_Upload_BackendErrors(t *testing.T) {
	boom := errors.New("connection reset")

	t.Run("exists fails", func(t *testing.T) {
		store := new(MockStore)
		service := bucketgate.NewUploadService(staticSelector{store: store}, bucketgate.ServiceConfig{})
		store.On("Exists", mock.Anything, "images/a.txt").Return(false, boom)

		_, err := service.Upload(context.Background(), s3Bucket(), textFile("x"), bucketgate.UploadOptions{Path: "images", FileName: "a.txt"})

		assert.ErrorIs(t, err, bucketgate.ErrUploadFailed)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("put fails", func(t *testing.T) {
		store := new(MockStore)
		service := bucketgate.NewUploadService(staticSelector{store: store}, bucketgate.ServiceConfig{})
		store.On("Exists", mock.Anything, "images/a.txt").Return(false, nil)
		store.On("Put", mock.Anything, "images/a.txt", mock.Anything, int64(1), "text/plain").Return(boom)

		_, err := service.Upload(context.Background(), s3Bucket(), textFile("x"), bucketgate.UploadOptions{Path: "images", FileName: "a.txt"})

		assert.ErrorIs(t, err, bucketgate.ErrUploadFailed)
		var backendErr *bucketgate.BackendError
		require.ErrorAs(t, err, &backendErr)
		assert.Equal(t, "put", backendErr.Op)
	})

	t.Run("store unavailable", func(t *testing.T) {
		selector := staticSelector{err: &bucketgate.ConfigError{Bucket: "media", Reason: "binding not found"}}
		service := bucketgate.NewUploadService(selector, bucketgate.ServiceConfig{})

		_, err := service.Upload(context.Background(), s3Bucket(), textFile("x"), bucketgate.UploadOptions{Path: "images"})

		assert.ErrorIs(t, err, bucketgate.ErrConfig)
	})
}

func TestUploadService_Upload_BackendTimeout(t *testing.T) {
	store := new(MockStore)
	service := bucketgate.NewUploadService(staticSelector{store: store}, bucketgate.ServiceConfig{BackendTimeout: time.Second})

	store.On("Exists", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), "images/a.txt").Return(false, nil)
	store.On("Put", mock.Anything, "images/a.txt", mock.Anything, int64(1), "text/plain").Return(nil)

	_, err := service.Upload(context.Background(), s3Bucket(), textFile("x"), bucketgate.UploadOptions{Path: "images", FileName: "a.txt"})

	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestUploadService_Upload_CanceledContext(t *testing.T) {
	store := new(MockStore)
	service := bucketgate.NewUploadService(staticSelector{store: store}, bucketgate.ServiceConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.Upload(ctx, s3Bucket(), textFile("x"), bucketgate.UploadOptions{Path: "images"})

	assert.ErrorIs(t, err, context.Canceled)
}
