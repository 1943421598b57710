package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lexit/blob"
)

func setupStore(t *testing.T) (blob.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := OpenStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, dir
}

func TestStore_PutGet(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	payload := []byte("raw statute bytes")
	require.NoError(t, store.Put(ctx, "raw/2024/2024-0123", payload))

	got, err := store.Get(ctx, "raw/2024/2024-0123")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestStore_GetNotFound(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.Get(context.Background(), "raw/2024/missing")
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

func TestStore_PutLeavesNoTempFiles(t *testing.T) {
	store, dir := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "raw/2024/2024-0123", []byte("payload")))
	require.NoError(t, store.Put(ctx, "raw/2024/2024-0123", []byte("payload v2")))

	entries, err := os.ReadDir(filepath.Join(dir, "raw", "2024"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2024-0123", entries[0].Name())
}

func TestStore_ExistsIgnoresDirectories(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "raw/2024/2024-0123", []byte("x")))

	// The namespace directory itself is not a payload.
	found, err := store.Exists(ctx, "raw/2024")
	require.NoError(t, err)
	assert.False(t, found)

	found, err = store.Exists(ctx, "raw/2024/2024-0123")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestStore_List(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "raw/2024/2024-0002", []byte("b")))
	require.NoError(t, store.Put(ctx, "raw/2024/2024-0001", []byte("a")))
	require.NoError(t, store.Put(ctx, "raw/2023/2023-0009", []byte("c")))
	require.NoError(t, store.Put(ctx, "parsed/2024/2024-0001", []byte("d")))

	keys, err := store.List(ctx, "raw/2024/")
	require.NoError(t, err)
	assert.Equal(t, []string{"raw/2024/2024-0001", "raw/2024/2024-0002"}, keys)

	keys, err = store.List(ctx, "raw/")
	require.NoError(t, err)
	assert.Equal(t, []string{"raw/2023/2023-0009", "raw/2024/2024-0001", "raw/2024/2024-0002"}, keys)

	keys, err = store.List(ctx, "embedded/")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestStore_Delete(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "raw/2024/2024-0001", []byte("a")))
	require.NoError(t, store.Delete(ctx, "raw/2024/2024-0001"))

	found, err := store.Exists(ctx, "raw/2024/2024-0001")
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, store.Delete(ctx, "raw/2024/2024-0001"))
}

func TestStore_Closed(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	ctx := context.Background()
	_, err = store.Get(ctx, "raw/2024/2024-0001")
	assert.ErrorIs(t, err, blob.ErrStoreClosed)

	err = store.Put(ctx, "raw/2024/2024-0001", []byte("x"))
	assert.ErrorIs(t, err, blob.ErrStoreClosed)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := OpenStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "raw/2024/2024-0123", []byte("persisted")))
	require.NoError(t, store.Close())

	store, err = OpenStore(dir)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Get(ctx, "raw/2024/2024-0123")
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), got)
}
