package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pollstore/config"
)

func TestMemoryKV(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, kv.Set(ctx, "pollUser", `{"id":"u1"}`))
	value, err := kv.Get(ctx, "pollUser")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"u1"}`, value)

	// Overwrite.
	require.NoError(t, kv.Set(ctx, "pollUser", `{"id":"u2"}`))
	value, err = kv.Get(ctx, "pollUser")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"u2"}`, value)

	// Del is idempotent.
	require.NoError(t, kv.Del(ctx, "pollUser"))
	require.NoError(t, kv.Del(ctx, "pollUser"))
	_, err = kv.Get(ctx, "pollUser")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestGormKV_SQLite(t *testing.T) {
	// In-memory SQLite keeps the test self-contained.
	cfg := &config.Config{
		StorageBackend: "sqlite",
		SQLitePath:     "file::memory:?cache=shared",
	}
	kv, err := NewGormKV(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	ctx := context.Background()

	_, err = kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, kv.Set(ctx, "polls", "[]"))
	value, err := kv.Get(ctx, "polls")
	require.NoError(t, err)
	assert.Equal(t, "[]", value)

	// Set on an existing key upserts.
	require.NoError(t, kv.Set(ctx, "polls", `[{"id":"p1"}]`))
	value, err = kv.Get(ctx, "polls")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"p1"}]`, value)

	require.NoError(t, kv.Del(ctx, "polls"))
	_, err = kv.Get(ctx, "polls")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestOpen_SelectsBackend(t *testing.T) {
	kv, err := Open(&config.Config{StorageBackend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryKV{}, kv)

	_, err = Open(&config.Config{StorageBackend: "etcd"})
	assert.Error(t, err)
}
