package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tienda-spa/internal/infrastructure/storage"
)

// ──────────────────────────────────────────────────────────────────────────────
// Contrato común de los backends
// ──────────────────────────────────────────────────────────────────────────────

// verificarContrato ejercita Get/Set/Remove sobre cualquier backend.
func verificarContrato(t *testing.T, kv storage.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Get(ctx, "ausente")
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)

	require.NoError(t, kv.Set(ctx, "clave", "valor-1"))
	got, err := kv.Get(ctx, "clave")
	require.NoError(t, err)
	assert.Equal(t, "valor-1", got)

	require.NoError(t, kv.Set(ctx, "clave", "valor-2"), "Set debe sobreescribir")
	got, err = kv.Get(ctx, "clave")
	require.NoError(t, err)
	assert.Equal(t, "valor-2", got)

	require.NoError(t, kv.Remove(ctx, "clave"))
	_, err = kv.Get(ctx, "clave")
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)

	assert.NoError(t, kv.Remove(ctx, "ausente"), "Remove de clave ausente es no-op")
}

func TestMemoryStore_Contrato(t *testing.T) {
	verificarContrato(t, storage.NewMemoryStore())
}

func TestFileStore_Contrato(t *testing.T) {
	kv, err := storage.NewFileStore(filepath.Join(t.TempDir(), "kv.json"))
	require.NoError(t, err)
	verificarContrato(t, kv)
}

func TestRedisStore_Contrato(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	verificarContrato(t, storage.NewRedisStoreFromClient(rdb, "test"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Comportamientos propios de cada backend
// ──────────────────────────────────────────────────────────────────────────────

func TestFileStore_SobreviveReapertura(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.json")
	ctx := context.Background()

	kv, err := storage.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "app-cart", `{"items":[]}`))

	reabierto, err := storage.NewFileStore(path)
	require.NoError(t, err)
	got, err := reabierto.Get(ctx, "app-cart")
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, got)
}

func TestFileStore_ArchivoCorruptoDegradaAVacio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.json")
	require.NoError(t, os.WriteFile(path, []byte("{esto no es json"), 0o600))

	kv, err := storage.NewFileStore(path)
	require.NoError(t, err, "un archivo corrupto no debe impedir arrancar")

	_, err = kv.Get(context.Background(), "cualquiera")
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
}

func TestRedisStore_AislaPorPrefijo(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()

	a := storage.NewRedisStoreFromClient(rdb, "app-a")
	b := storage.NewRedisStoreFromClient(rdb, "app-b")

	require.NoError(t, a.Set(ctx, "clave", "de-a"))
	_, err := b.Get(ctx, "clave")
	assert.ErrorIs(t, err, storage.ErrKeyNotFound, "los prefijos aíslan aplicaciones")
}
