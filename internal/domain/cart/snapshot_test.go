// internal/domain/cart/snapshot_test.go
package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func sampleSnapshot() Snapshot {
	c := New(testPricing())
	_ = c.AddItem(context.Background(), storeProduct(1, 10, "Gangnam", "Kimbap", 1500, 5), 2, nil, nil)
	_ = c.SetOrderType(OrderTypeDelivery)
	return c.Snapshot()
}

func TestRedisSnapshotStoreRoundTrip(t *testing.T) {
	store := NewRedisSnapshotStore(newTestRedis(t), time.Hour)
	ctx := context.Background()

	snap := sampleSnapshot()
	require.NoError(t, store.Save(ctx, "user:42", snap))

	loaded, err := store.Load(ctx, "user:42")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, snap.StoreID, loaded.StoreID)
	assert.Equal(t, snap.StoreName, loaded.StoreName)
	assert.Equal(t, snap.OrderType, loaded.OrderType)
	assert.Equal(t, snap.TotalAmount, loaded.TotalAmount)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, snap.Items[0].ID, loaded.Items[0].ID)
	assert.Equal(t, snap.Items[0].Quantity, loaded.Items[0].Quantity)
	assert.Equal(t, snap.Items[0].Subtotal, loaded.Items[0].Subtotal)
}

func TestRedisSnapshotStoreAbsentKey(t *testing.T) {
	store := NewRedisSnapshotStore(newTestRedis(t), time.Hour)

	loaded, err := store.Load(context.Background(), "session:nobody")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisSnapshotStoreDelete(t *testing.T) {
	store := NewRedisSnapshotStore(newTestRedis(t), time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "user:42", sampleSnapshot()))
	require.NoError(t, store.Delete(ctx, "user:42"))

	loaded, err := store.Load(ctx, "user:42")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Deleting an absent key is not an error
	require.NoError(t, store.Delete(ctx, "user:42"))
}

func TestRedisSnapshotStoreExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisSnapshotStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "user:42", sampleSnapshot()))

	mr.FastForward(2 * time.Minute)

	loaded, err := store.Load(ctx, "user:42")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisSnapshotStoreCorruptPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisSnapshotStore(client, time.Hour)

	require.NoError(t, mr.Set("cart:snapshot:user:42", "not json"))

	_, err := store.Load(context.Background(), "user:42")
	require.Error(t, err)
}

func TestMemorySnapshotStore(t *testing.T) {
	store := NewMemorySnapshotStore()
	ctx := context.Background()

	loaded, err := store.Load(ctx, "user:1")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	snap := sampleSnapshot()
	require.NoError(t, store.Save(ctx, "user:1", snap))

	loaded, err = store.Load(ctx, "user:1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, snap.TotalAmount, loaded.TotalAmount)

	require.NoError(t, store.Delete(ctx, "user:1"))
	loaded, err = store.Load(ctx, "user:1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
