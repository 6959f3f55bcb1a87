// internal/domain/cart/service_test.go
package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingSnapshotStore errors on every operation
type failingSnapshotStore struct{}

func (failingSnapshotStore) Load(context.Context, string) (*Snapshot, error) {
	return nil, errors.New("snapshot store down")
}

func (failingSnapshotStore) Save(context.Context, string, Snapshot) error {
	return errors.New("snapshot store down")
}

func (failingSnapshotStore) Delete(context.Context, string) error {
	return errors.New("snapshot store down")
}

func newTestService(snapshots SnapshotStore) (*Service, *fakeStock) {
	stock := newFakeStock(
		storeProduct(1, 10, "Gangnam", "Kimbap", 1500, 5),
		storeProduct(1, 11, "Gangnam", "Ramen", 1200, 20),
		storeProduct(2, 20, "Hongdae", "Coffee", 2000, 8),
	)
	return NewService(stock, snapshots, testPricing(), nil), stock
}

func TestServiceAddAndGetCart(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	snap, err := svc.AddItem(ctx, "user:1", 1, 10, 2, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint(1), snap.StoreID)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, int64(3000), snap.Subtotal)

	got, err := svc.GetCart(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, snap.Items, got.Items)
	assert.Equal(t, snap.TotalAmount, got.TotalAmount)
}

func TestServiceUnknownProduct(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.AddItem(context.Background(), "user:1", 1, 999, 1, nil, nil)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestServiceCartsAreIsolatedByOwner(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user:1", 1, 10, 1, nil, nil)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "session:abc", 2, 20, 1, nil, nil)
	require.NoError(t, err)

	one, _ := svc.GetCart(ctx, "user:1")
	two, _ := svc.GetCart(ctx, "session:abc")
	assert.Equal(t, uint(1), one.StoreID)
	assert.Equal(t, uint(2), two.StoreID)
}

func TestServiceUpdateRemoveClear(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user:1", 1, 10, 2, nil, nil)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "user:1", 1, 11, 1, nil, nil)
	require.NoError(t, err)

	snap, err := svc.UpdateQuantity(ctx, "user:1", 10, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4500+1200), snap.Subtotal)

	snap, err = svc.RemoveItem(ctx, "user:1", 11)
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, uint(1), snap.StoreID)

	snap, err = svc.ClearCart(ctx, "user:1")
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
	assert.Zero(t, snap.StoreID)
}

func TestServiceSetOrderType(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user:1", 1, 10, 1, nil, nil)
	require.NoError(t, err)

	snap, err := svc.SetOrderType(ctx, "user:1", OrderTypeDelivery)
	require.NoError(t, err)
	assert.Equal(t, OrderTypeDelivery, snap.OrderType)
	assert.Equal(t, int64(3000), snap.DeliveryFee)

	_, err = svc.SetOrderType(ctx, "user:1", OrderType("teleport"))
	assert.ErrorIs(t, err, ErrInvalidOrderType)
}

func TestServiceValidateStock(t *testing.T) {
	svc, stock := newTestService(nil)
	ctx := context.Background()

	_, err := svc.ValidateStock(ctx, "user:1")
	assert.ErrorIs(t, err, ErrMissingStoreBinding)

	_, err = svc.AddItem(ctx, "user:1", 1, 10, 4, nil, nil)
	require.NoError(t, err)

	shortages, err := svc.ValidateStock(ctx, "user:1")
	require.NoError(t, err)
	assert.Empty(t, shortages)

	// Stock dropped below the cart quantity since the add
	sp := stock.products[1][10]
	sp.StockQuantity = 2
	stock.products[1][10] = sp

	shortages, err = svc.ValidateStock(ctx, "user:1")
	require.NoError(t, err)
	require.Len(t, shortages, 1)
	assert.Equal(t, uint(10), shortages[0].ProductID)
	assert.Equal(t, 4, shortages[0].Requested)
	assert.Equal(t, 2, shortages[0].Available)
}

func TestServiceReorderPersistsOnCommit(t *testing.T) {
	snapshots := NewMemorySnapshotStore()
	svc, _ := newTestService(snapshots)
	ctx := context.Background()

	req := ReorderRequest{
		OrderID:     5,
		OrderNumber: "ORD-20260710-0005",
		StoreID:     1,
		StoreName:   "Gangnam",
		OrderType:   OrderTypePickup,
		Lines:       []OrderLine{{ProductID: 10, ProductName: "Kimbap", Quantity: 2}},
	}

	result, err := svc.Reorder(ctx, "user:7", req, nil)
	require.NoError(t, err)
	assert.Equal(t, ReorderCommitted, result.Status)

	history, err := svc.ReorderHistory(ctx, "user:7")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "ORD-20260710-0005", history[0].OrderNumber)

	// The committed snapshot lands in the store shortly after
	assert.Eventually(t, func() bool {
		snap, err := snapshots.Load(ctx, "user:7")
		return err == nil && snap != nil && len(snap.Items) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServiceRestoresFromSnapshotStore(t *testing.T) {
	snapshots := NewMemorySnapshotStore()
	ctx := context.Background()

	// Seed a persisted cart as a previous session would have left it
	seed := New(testPricing())
	require.NoError(t, seed.AddItem(ctx, storeProduct(1, 10, "Gangnam", "Kimbap", 1500, 5), 2, nil, nil))
	require.NoError(t, snapshots.Save(ctx, "user:9", seed.Snapshot()))

	svc, _ := newTestService(snapshots)
	snap, err := svc.GetCart(ctx, "user:9")
	require.NoError(t, err)

	require.Len(t, snap.Items, 1)
	assert.Equal(t, uint(1), snap.StoreID)
	assert.Equal(t, int64(3000), snap.Subtotal)
}

func TestServiceFailingSnapshotStoreIsNonFatal(t *testing.T) {
	svc, _ := newTestService(failingSnapshotStore{})
	ctx := context.Background()

	// Load failure: start empty instead of erroring
	snap, err := svc.GetCart(ctx, "user:1")
	require.NoError(t, err)
	assert.Empty(t, snap.Items)

	// Save failure: the mutation still succeeds in memory
	snap, err = svc.AddItem(ctx, "user:1", 1, 10, 1, nil, nil)
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)

	got, err := svc.GetCart(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, snap.Items, got.Items)
}
