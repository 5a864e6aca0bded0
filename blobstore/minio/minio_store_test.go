package minio

import (
	"context"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecdb/blobstore"
)

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := "localhost:9000"
	accessKey := "minioadmin"
	secretKey := "minioadmin"
	bucket := "test-vecdb"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	// Check if MinIO is reachable
	_, err = client.ListBuckets(ctx)
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	// Ensure bucket exists
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		err = client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
		require.NoError(t, err)
	}

	store := NewStore(client, bucket, "test-prefix/")

	// Put and Get
	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "backups/store.db", data))

	got, err := store.Get(ctx, "backups/store.db")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// List strips the root prefix from returned names.
	names, err := store.List(ctx, "backups/")
	require.NoError(t, err)
	assert.Contains(t, names, "backups/store.db")

	// Overwrite
	require.NoError(t, store.Put(ctx, "backups/store.db", []byte("v2")))
	got, err = store.Get(ctx, "backups/store.db")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	// Delete, then reads report absence.
	require.NoError(t, store.Delete(ctx, "backups/store.db"))
	_, err = store.Get(ctx, "backups/store.db")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	// Deleting an absent blob is not an error.
	assert.NoError(t, store.Delete(ctx, "backups/store.db"))
}
