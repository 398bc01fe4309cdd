package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "snapshots/b.bgix", []byte("bravo")))
	require.NoError(t, store.Put(ctx, "snapshots/a.bgix", []byte("alpha")))
	require.NoError(t, store.Put(ctx, "CURRENT", []byte("snapshots/a.bgix")))

	data, err := store.Get(ctx, "snapshots/a.bgix")
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	// Overwrite.
	require.NoError(t, store.Put(ctx, "CURRENT", []byte("snapshots/b.bgix")))
	data, err = store.Get(ctx, "CURRENT")
	require.NoError(t, err)
	assert.Equal(t, "snapshots/b.bgix", string(data))

	names, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	assert.Equal(t, []string{"snapshots/a.bgix", "snapshots/b.bgix"}, names)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"CURRENT", "snapshots/a.bgix", "snapshots/b.bgix"}, all)

	require.NoError(t, store.Delete(ctx, "snapshots/a.bgix"))
	require.NoError(t, store.Delete(ctx, "snapshots/a.bgix"))
	_, err = store.Get(ctx, "snapshots/a.bgix")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, NewMemoryStore())
}

func TestMemoryStore_CopiesData(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	in := []byte("abc")
	require.NoError(t, store.Put(ctx, "x", in))
	in[0] = 'z'

	out, err := store.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))

	out[0] = 'q'
	again, err := store.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestMemoryStore_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStore()
	assert.ErrorIs(t, store.Put(ctx, "x", nil), context.Canceled)
	_, err := store.Get(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalStore(t *testing.T) {
	testStoreContract(t, NewLocalStore(t.TempDir()))
}

func TestLocalStore_MissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "not", "yet"))

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestWriteFileAtomic_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "index.bgix")

	require.NoError(t, WriteFileAtomic(path, []byte("one")))
	require.NoError(t, WriteFileAtomic(path, []byte("two")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "index.bgix", entries[0].Name())
}
