// Package bucketgate provides the core of an authenticated upload gateway that
// forwards files to S3-compatible object stores or R2-style bucket bindings.
//
// Logical buckets are declared in a flat key/value namespace
// (BUCKET_<name>_<ATTRIBUTE>) and resolved into validated BucketConfig records
// by the bucket package. The access package decides whether a caller may use a
// bucket, and UploadService dispatches the upload to the matching ObjectStore.
//
// # Key Components
//
//   - BucketConfig: Validated per-bucket configuration (provider, credentials, policy)
//   - IsPathAllowed: Path policy check against a bucket's allow-list
//   - UploadService: Path check, overwrite guard and write through an ObjectStore
//   - ObjectStore: Backend capability (Exists, Put) implemented by s3store and filesystem
//
// # Overwrite Protection
//
// Without the overwrite option the service checks for an existing object before
// writing. The check and the write are two separate backend calls, so two
// concurrent uploads to the same key may both pass the check; the last write wins.
// The guard is best-effort and is not an exclusivity guarantee.
//
// # Example Usage
//
//	service := bucketgate.NewUploadService(selector, bucketgate.ServiceConfig{
//	    BackendTimeout: 30 * time.Second,
//	})
//
//	result, err := service.Upload(ctx, cfg, bucketgate.File{
//	    Name:        "photo.png",
//	    ContentType: "image/png",
//	    Size:        size,
//	    Content:     reader,
//	}, bucketgate.UploadOptions{Path: "images"})
package bucketgate
