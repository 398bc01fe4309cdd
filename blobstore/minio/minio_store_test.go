package minio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/bimgeo/blobstore"
)

var _ blobstore.Store = (*Store)(nil)

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	store, err := Dial(Options{
		Endpoint:  "localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	}, "test-bimgeo", "test-prefix/")
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()
	if _, err := store.client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}
	require.NoError(t, store.EnsureBucket(ctx))

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "snapshots/test.bgix", data))

	got, err := store.Get(ctx, "snapshots/test.bgix")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	assert.Contains(t, names, "snapshots/test.bgix")

	require.NoError(t, store.Delete(ctx, "snapshots/test.bgix"))
	_, err = store.Get(ctx, "snapshots/test.bgix")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestStore_Key(t *testing.T) {
	s := NewStore(nil, "bucket", "/root/")
	assert.Equal(t, "root/CURRENT", s.key("CURRENT"))

	s = NewStore(nil, "bucket", "")
	assert.Equal(t, "CURRENT", s.key("CURRENT"))
}
