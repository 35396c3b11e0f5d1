package bucket_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/bucketgate"
	"github.com/sagarc03/bucketgate/bucket"
)

func TestRegistry(t *testing.T) {
	ns := s3Namespace()
	ns["BUCKET_broken_PROVIDER"] = "AWS_S3"
	ns["BUCKET_main_r2_PROVIDER"] = "CLOUDFLARE_R2"
	ns["BUCKET_main_r2_BINDING_NAME"] = "R2_MAIN"

	reg := bucket.NewRegistry(bucket.NewResolver(ns), "main_r2")

	t.Run("lookup valid", func(t *testing.T) {
		cfg, err := reg.Lookup("media")
		require.NoError(t, err)
		assert.Equal(t, "media-bucket", cfg.BucketName)
	})

	t.Run("lookup invalid reports config error", func(t *testing.T) {
		_, err := reg.Lookup("broken")
		assert.ErrorIs(t, err, bucketgate.ErrConfig)
	})

	t.Run("lookup unknown reports not found", func(t *testing.T) {
		_, err := reg.Lookup("nope")
		assert.ErrorIs(t, err, bucketgate.ErrBucketNotFound)
	})

	t.Run("buckets lists only valid ones", func(t *testing.T) {
		names := make([]string, 0)
		for _, b := range reg.Buckets() {
			names = append(names, b.Name)
		}
		assert.Equal(t, []string{"main_r2", "media"}, names)
	})

	t.Run("statuses include invalid ones", func(t *testing.T) {
		statuses := reg.Statuses()
		require.Len(t, statuses, 3)
		assert.Equal(t, "broken", statuses[0].Name)
		assert.False(t, statuses[0].Valid())
		assert.True(t, statuses[1].Valid())
	})

	t.Run("names and default", func(t *testing.T) {
		assert.Equal(t, []string{"broken", "main_r2", "media"}, reg.Names())
		assert.Equal(t, "main_r2", reg.Default())
	})
}

func TestRegistry_SnapshotIsIndependentOfNamespace(t *testing.T) {
	ns := s3Namespace()
	reg := bucket.NewRegistry(bucket.NewResolver(ns), "")

	ns["BUCKET_media_BUCKET_NAME"] = "changed"
	delete(ns, "BUCKET_media_PROVIDER")

	cfg, err := reg.Lookup("media")
	require.NoError(t, err)
	assert.Equal(t, "media-bucket", cfg.BucketName)
}

func TestRegistry_BucketsMatchResolveAll(t *testing.T) {
	ns := s3Namespace()
	ns["BUCKET_broken_PROVIDER"] = "AWS_S3"

	resolver := bucket.NewResolver(ns)
	reg := bucket.NewRegistry(resolver, "")
	all := resolver.ResolveAll()

	require.Len(t, reg.Buckets(), len(all))
	for _, b := range reg.Buckets() {
		assert.Equal(t, all[b.Name], b)
	}

	var cfgErr *bucketgate.ConfigError
	_, err := reg.Lookup("broken")
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "broken", cfgErr.Bucket)
}
