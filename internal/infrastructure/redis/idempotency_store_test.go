//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/jhoicas/ordenes-api/internal/application/ports"
	infraredis "github.com/jhoicas/ordenes-api/internal/infrastructure/redis"
)

func newStore(t *testing.T, ttl time.Duration) *infraredis.IdempotencyStore {
	t.Helper()
	ctx := context.Background()
	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := infraredis.NewClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return infraredis.NewIdempotencyStore(rdb, ttl)
}

func TestIdempotencyStore_GuardaYRepite(t *testing.T) {
	store := newStore(t, time.Minute)
	ctx := context.Background()

	got, err := store.Get(ctx, "co:POST:/api/orders:k1")
	require.NoError(t, err)
	assert.Nil(t, got, "una clave nueva no tiene respuesta")

	saved := ports.StoredResponse{Status: 201, ContentType: "application/json", Body: []byte(`{"orderId":"x"}`)}
	require.NoError(t, store.Save(ctx, "co:POST:/api/orders:k1", saved))

	got, err = store.Get(ctx, "co:POST:/api/orders:k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, saved, *got)
}

func TestIdempotencyStore_LockExclusivo(t *testing.T) {
	store := newStore(t, time.Minute)
	ctx := context.Background()

	release, err := store.Lock(ctx, "k2")
	require.NoError(t, err)

	_, err = store.Lock(ctx, "k2")
	assert.ErrorIs(t, err, ports.ErrRequestInFlight)

	release()
	again, err := store.Lock(ctx, "k2")
	require.NoError(t, err, "tras liberar se puede volver a tomar")
	again()
}

func TestIdempotencyStore_ExpiraConTTL(t *testing.T) {
	store := newStore(t, time.Second)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "k3", ports.StoredResponse{Status: 201}))
	assert.Eventually(t, func() bool {
		got, err := store.Get(ctx, "k3")
		return err == nil && got == nil
	}, 5*time.Second, 100*time.Millisecond)
}
