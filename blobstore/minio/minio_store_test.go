package minio

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/hupe1980/prodsearch/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Keys(t *testing.T) {
	s := NewStore(nil, "bucket", "searches/")
	assert.Equal(t, "searches/LATEST", s.key("LATEST"))
	assert.Equal(t, "searches/snapshots/1", s.key("snapshots/1"))
	assert.Equal(t, "snapshots/1", s.relative("searches/snapshots/1"))

	bare := NewStore(nil, "bucket", "")
	assert.Equal(t, "LATEST", bare.key("LATEST"))
	assert.Equal(t, "LATEST", bare.relative("LATEST"))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NotFound"}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
	assert.False(t, isNotFound(errors.New("boom")))
}

func TestDial(t *testing.T) {
	s, err := Dial("localhost:9000", "minioadmin", "minioadmin", false, "bucket", "p/")
	require.NoError(t, err)
	assert.Equal(t, "bucket", s.bucket)
}

// TestStore_Integration runs against the MinIO server named by MINIO_ENDPOINT.
func TestStore_Integration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_ENDPOINT not set")
	}
	bucket := "test-prodsearch"

	store, err := Dial(endpoint, "minioadmin", "minioadmin", false, bucket, "test-prefix/")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	exists, err := store.client.BucketExists(ctx, bucket)
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}
	if !exists {
		require.NoError(t, store.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	require.NoError(t, store.Put(ctx, "snapshots/1/state.json", strings.NewReader("hello minio")))

	data, err := blobstore.ReadAll(ctx, store, "snapshots/1/state.json")
	require.NoError(t, err)
	assert.Equal(t, "hello minio", string(data))

	names, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	assert.Contains(t, names, "snapshots/1/state.json")

	require.NoError(t, store.Delete(ctx, "snapshots/1/state.json"))
	_, err = store.Get(ctx, "snapshots/1/state.json")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
