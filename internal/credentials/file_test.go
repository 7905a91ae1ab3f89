package credentials

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestFileStore_UpsertAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	server := &Server{
		ID:         "alpha",
		Name:       "Alpha SMP",
		Address:    "mc.example.com",
		Port:       25565,
		OnlineMode: true,
		APIKey:     "sk_secret",
		CreatedAt:  time.Now(),
	}
	require.NoError(t, store.UpsertServer(ctx, server))

	got, err := store.GetServer(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "Alpha SMP", got.Name)
	assert.Equal(t, "sk_secret", got.APIKey)

	key, err := store.GetAPIKey(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "sk_secret", key)
}

func TestFileStore_NotConfigured(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetAPIKey(ctx, "ghost")
	assert.ErrorIs(t, err, ErrServerNotConfigured)

	_, err = store.GetServer(ctx, "ghost")
	assert.ErrorIs(t, err, ErrServerNotConfigured)
}

func TestFileStore_EmptyKeyIsNotConfigured(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertServer(ctx, &Server{ID: "alpha"}))

	_, err := store.GetAPIKey(ctx, "alpha")
	assert.ErrorIs(t, err, ErrServerNotConfigured)
}

func TestFileStore_List(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	servers, err := store.ListServers(ctx)
	require.NoError(t, err)
	assert.Empty(t, servers)

	require.NoError(t, store.UpsertServer(ctx, &Server{ID: "alpha", APIKey: "sk_a"}))
	require.NoError(t, store.UpsertServer(ctx, &Server{ID: "beta", APIKey: "sk_b"}))

	servers, err = store.ListServers(ctx)
	require.NoError(t, err)
	assert.Len(t, servers, 2)
}

func TestFileStore_UpsertReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertServer(ctx, &Server{ID: "alpha", APIKey: "sk_old"}))
	require.NoError(t, store.UpsertServer(ctx, &Server{ID: "alpha", APIKey: "sk_new"}))

	key, err := store.GetAPIKey(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "sk_new", key)

	servers, err := store.ListServers(ctx)
	require.NoError(t, err)
	assert.Len(t, servers, 1)
}

func TestFileStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertServer(ctx, &Server{ID: "alpha", APIKey: "sk_a"}))

	removed, err := store.DeleteServer(ctx, "alpha")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.DeleteServer(ctx, "alpha")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = store.GetAPIKey(ctx, "alpha")
	assert.ErrorIs(t, err, ErrServerNotConfigured)
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store1, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store1.UpsertServer(ctx, &Server{ID: "alpha", APIKey: "sk_a"}))

	store2, err := NewFileStore(dir)
	require.NoError(t, err)
	key, err := store2.GetAPIKey(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "sk_a", key)
}
