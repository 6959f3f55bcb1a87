// internal/domain/cart/aggregate_test.go
package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tissue45/convi-backend/internal/domain/catalog"
)

func testPricing() PricingPolicy {
	return PricingPolicy{
		TaxRate:               0.10,
		DeliveryFee:           3000,
		FreeDeliveryThreshold: 20000,
	}
}

func storeProduct(storeID, productID uint, storeName, productName string, price int64, stock int) catalog.StoreProduct {
	return catalog.StoreProduct{
		ID:            storeID*1000 + productID,
		StoreID:       storeID,
		ProductID:     productID,
		Price:         price,
		StockQuantity: stock,
		IsAvailable:   true,
		Store:         catalog.Store{ID: storeID, Name: storeName},
		Product:       catalog.Product{ID: productID, Name: productName},
	}
}

func acceptSwitch() Confirmer {
	return ConfirmerFunc(func(context.Context, ConfirmPrompt) (bool, error) { return true, nil })
}

func declineSwitch() Confirmer {
	return ConfirmerFunc(func(context.Context, ConfirmPrompt) (bool, error) { return false, nil })
}

// assertInvariants checks the derived-correctness, stock-ceiling and
// single-store invariants that must hold after every mutation
func assertInvariants(t *testing.T, c *Cart) {
	t.Helper()

	totals := c.Totals()
	var subtotal int64
	for _, item := range c.Items() {
		subtotal += item.Subtotal
		assert.LessOrEqual(t, item.Quantity, item.StoreProduct.StockQuantity,
			"quantity exceeds last-observed stock for %s", item.Product.Name)
		if !c.IsEmpty() {
			assert.Equal(t, c.StoreID(), item.StoreProduct.StoreID,
				"item %s belongs to a different store", item.Product.Name)
		}
	}
	assert.Equal(t, subtotal, totals.Subtotal)
	assert.Equal(t, totals.Subtotal+totals.TaxAmount+totals.DeliveryFee, totals.TotalAmount)
}

func TestAddItemCreatesLineAndBindsStore(t *testing.T) {
	c := New(testPricing())
	ctx := context.Background()

	sp := storeProduct(1, 10, "Gangnam", "Kimbap", 1500, 5)
	require.NoError(t, c.AddItem(ctx, sp, 2, nil, nil))

	assert.Equal(t, uint(1), c.StoreID())
	assert.Equal(t, "Gangnam", c.StoreName())
	require.Len(t, c.Items(), 1)

	item := c.Items()[0]
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, int64(3000), item.Subtotal)
	assertInvariants(t, c)
}

func TestAddItemSumsQuantitiesForSameProduct(t *testing.T) {
	c := New(testPricing())
	ctx := context.Background()

	sp := storeProduct(1, 10, "Gangnam", "Kimbap", 1500, 5)
	require.NoError(t, c.AddItem(ctx, sp, 2, nil, nil))
	require.NoError(t, c.AddItem(ctx, sp, 3, nil, nil))

	require.Len(t, c.Items(), 1)
	assert.Equal(t, 5, c.Items()[0].Quantity)
	assertInvariants(t, c)

	// Summing past the stock ceiling rejects the mutation and leaves the
	// line unchanged
	err := c.AddItem(ctx, sp, 1, nil, nil)
	var stockErr *StockInsufficientError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 6, stockErr.Requested)
	assert.Equal(t, 5, stockErr.Available)
	assert.Equal(t, 5, c.Items()[0].Quantity)
	assertInvariants(t, c)
}

func TestAddItemRejectsInsufficientStock(t *testing.T) {
	c := New(testPricing())
	ctx := context.Background()

	sp := storeProduct(1, 10, "Gangnam", "Kimbap", 1500, 3)
	err := c.AddItem(ctx, sp, 4, nil, nil)

	var stockErr *StockInsufficientError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Kimbap", stockErr.ProductName)
	assert.True(t, c.IsEmpty())
	assert.Zero(t, c.StoreID())
}

func TestAddItemUnavailableProductCountsAsZeroStock(t *testing.T) {
	c := New(testPricing())
	ctx := context.Background()

	sp := storeProduct(1, 10, "Gangnam", "Kimbap", 1500, 3)
	sp.IsAvailable = false

	err := c.AddItem(ctx, sp, 1, nil, nil)
	var stockErr *StockInsufficientError
	require.ErrorAs(t, err, &stockErr)
	assert.Zero(t, stockErr.Available)
}

func TestAddItemInvalidQuantity(t *testing.T) {
	c := New(testPricing())
	ctx := context.Background()

	sp := storeProduct(1, 10, "Gangnam", "Kimbap", 1500, 3)
	assert.ErrorIs(t, c.AddItem(ctx, sp, 0, nil, nil), ErrInvalidQuantity)
	assert.ErrorIs(t, c.AddItem(ctx, sp, -2, nil, nil), ErrInvalidQuantity)
}

func TestCrossStoreDeclineLeavesCartUntouched(t *testing.T) {
	c := New(testPricing())
	ctx := context.Background()

	require.NoError(t, c.AddItem(ctx, storeProduct(1, 10, "Gangnam", "Kimbap", 1500, 5), 1, nil, nil))
	before := c.Snapshot()

	otherStore := storeProduct(2, 20, "Hongdae", "Ramen", 1200, 9)
	err := c.AddItem(ctx, otherStore, 1, nil, declineSwitch())
	assert.ErrorIs(t, err, ErrStoreSwitchDeclined)

	after := c.Snapshot()
	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, uint(1), c.StoreID())
	assert.Equal(t, "Gangnam", c.StoreName())
}

func TestCrossStoreWithoutConfirmerReportsConflict(t *testing.T) {
	c := New(testPricing())
	ctx := context.Background()

	require.NoError(t, c.AddItem(ctx, storeProduct(1, 10, "Gangnam", "Kimbap", 1500, 5), 1, nil, nil))

	err := c.AddItem(ctx, storeProduct(2, 20, "Hongdae", "Ramen", 1200, 9), 1, nil, nil)
	var conflict *CrossStoreConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, uint(1), conflict.CurrentStoreID)
	assert.Equal(t, uint(2), conflict.TargetStoreID)
	assert.Equal(t, "Hongdae", conflict.TargetStoreName)
	require.Len(t, c.Items(), 1)
}

func TestCrossStoreConfirmClearsAndRebinds(t *testing.T) {
	c := New(testPricing())
	ctx := context.Background()

	require.NoError(t, c.AddItem(ctx, storeProduct(1, 10, "Gangnam", "Kimbap", 1500, 5), 2, nil, nil))
	require.NoError(t, c.AddItem(ctx, storeProduct(2, 20, "Hongdae", "Ramen", 1200, 9), 3, nil, acceptSwitch()))

	assert.Equal(t, uint(2), c.StoreID())
	assert.Equal(t, "Hongdae", c.StoreName())
	require.Len(t, c.Items(), 1)
	assert.Equal(t, uint(20), c.Items()[0].StoreProduct.ProductID)
	assertInvariants(t, c)
}

func TestCrossStoreConfirmerError(t *testing.T) {
	c := New(testPricing())
	ctx := context.Background()

	require.NoError(t, c.AddItem(ctx, storeProduct(1, 10, "Gangnam", "Kimbap", 1500, 5), 1, nil, nil))

	failing := ConfirmerFunc(func(context.Context, ConfirmPrompt) (bool, error) {
		return false, errors.New("dialog channel closed")
	})
	err := c.AddItem(ctx, storeProduct(2, 20, "Hongdae", "Ramen", 1200, 9), 1, nil, failing)
	require.Error(t, err)
	require.Len(t, c.Items(), 1)
	assert.Equal(t, uint(1), c.StoreID())
}

func TestUpdateQuantity(t *testing.T) {
	c := New(testPricing())
	ctx := context.Background()

	sp := storeProduct(1, 10, "Gangnam", "Kimbap", 1500, 5)
	require.NoError(t, c.AddItem(ctx, sp, 2, nil, nil))

	require.NoError(t, c.UpdateQuantity(10, 4))
	assert.Equal(t, 4, c.Items()[0].Quantity)
	assert.Equal(t, int64(6000), c.Items()[0].Subtotal)
	assertInvariants(t, c)

	// Above the stock ceiling: rejected, line unchanged
	err := c.UpdateQuantity(10, 6)
	var stockErr *StockInsufficientError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 4, c.Items()[0].Quantity)

	// Unknown product
	assert.ErrorIs(t, c.UpdateQuantity(99, 1), ErrItemNotFound)

	// Zero delegates to removal
	require.NoError(t, c.UpdateQuantity(10, 0))
	assert.True(t, c.IsEmpty())
}

func TestRemoveItemKeepsStoreBinding(t *testing.T) {
	c := New(testPricing())
	ctx := context.Background()

	require.NoError(t, c.AddItem(ctx, storeProduct(1, 10, "Gangnam", "Kimbap", 1500, 5), 1, nil, nil))
	require.NoError(t, c.RemoveItem(10))

	assert.True(t, c.IsEmpty())
	// Emptying the cart does not unbind the store; only Clear does
	assert.Equal(t, uint(1), c.StoreID())
	assert.Equal(t, "Gangnam", c.StoreName())
	assertInvariants(t, c)
}

func TestClearIsIdempotent(t *testing.T) {
	c := New(testPricing())
	ctx := context.Background()

	require.NoError(t, c.AddItem(ctx, storeProduct(1, 10, "Gangnam", "Kimbap", 1500, 5), 2, nil, nil))
	require.NoError(t, c.SetOrderType(OrderTypeDelivery))

	c.Clear()
	first := c.Snapshot()
	c.Clear()
	second := c.Snapshot()

	assert.Empty(t, first.Items)
	assert.Zero(t, first.StoreID)
	assert.Equal(t, OrderTypePickup, first.OrderType)
	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, first.StoreID, second.StoreID)
	assert.Equal(t, first.OrderType, second.OrderType)
	assert.Equal(t, first.TotalAmount, second.TotalAmount)
}

func TestDeliveryFeeThreshold(t *testing.T) {
	ctx := context.Background()

	t.Run("below threshold pays the fee", func(t *testing.T) {
		c := New(testPricing())
		require.NoError(t, c.AddItem(ctx, storeProduct(1, 10, "Gangnam", "Gift Set", 19999, 3), 1, nil, nil))
		require.NoError(t, c.SetOrderType(OrderTypeDelivery))

		assert.Equal(t, int64(3000), c.Totals().DeliveryFee)
		assertInvariants(t, c)
	})

	t.Run("at threshold ships free", func(t *testing.T) {
		c := New(testPricing())
		require.NoError(t, c.AddItem(ctx, storeProduct(1, 10, "Gangnam", "Gift Set", 20000, 3), 1, nil, nil))
		require.NoError(t, c.SetOrderType(OrderTypeDelivery))

		assert.Zero(t, c.Totals().DeliveryFee)
		assertInvariants(t, c)
	})

	t.Run("pickup never pays the fee", func(t *testing.T) {
		c := New(testPricing())
		require.NoError(t, c.AddItem(ctx, storeProduct(1, 10, "Gangnam", "Gift Set", 500, 3), 1, nil, nil))

		assert.Equal(t, OrderTypePickup, c.OrderType())
		assert.Zero(t, c.Totals().DeliveryFee)
	})

	t.Run("rejects unknown order type", func(t *testing.T) {
		c := New(testPricing())
		assert.ErrorIs(t, c.SetOrderType(OrderType("drone")), ErrInvalidOrderType)
	})
}

func TestTotalsInvariantAcrossMutationSequence(t *testing.T) {
	c := New(testPricing())
	ctx := context.Background()

	kimbap := storeProduct(1, 10, "Gangnam", "Kimbap", 1500, 10)
	kimbap.PromotionTier = catalog.PromotionBuyOneGetOne
	ramen := storeProduct(1, 11, "Gangnam", "Ramen", 1200, 20)
	milk := storeProduct(1, 12, "Gangnam", "Banana Milk", 1700, 8)
	milk.DiscountRate = 0.1

	require.NoError(t, c.AddItem(ctx, kimbap, 3, nil, nil))
	assertInvariants(t, c)
	require.NoError(t, c.AddItem(ctx, ramen, 5, nil, nil))
	assertInvariants(t, c)
	require.NoError(t, c.AddItem(ctx, milk, 2, nil, nil))
	assertInvariants(t, c)
	require.NoError(t, c.SetOrderType(OrderTypeDelivery))
	assertInvariants(t, c)
	require.NoError(t, c.UpdateQuantity(11, 2))
	assertInvariants(t, c)
	require.NoError(t, c.RemoveItem(10))
	assertInvariants(t, c)
	require.NoError(t, c.SetOrderType(OrderTypePickup))
	assertInvariants(t, c)
	c.Clear()
	assertInvariants(t, c)
}

func TestRestoreRecomputesStaleTotals(t *testing.T) {
	sp := storeProduct(1, 10, "Gangnam", "Kimbap", 1500, 5)
	snap := Snapshot{
		Items: []Item{{
			ID:           "line-1",
			Product:      sp.Product,
			StoreProduct: sp,
			Quantity:     2,
			Subtotal:     999999, // Stale persisted value, must not survive
		}},
		StoreID:     1,
		StoreName:   "Gangnam",
		OrderType:   OrderTypeDelivery,
		Subtotal:    999999,
		TotalAmount: 999999,
	}

	c := Restore(snap, testPricing())

	require.Len(t, c.Items(), 1)
	assert.Equal(t, int64(3000), c.Items()[0].Subtotal)
	assert.Equal(t, int64(3000), c.Totals().Subtotal)
	assert.Equal(t, OrderTypeDelivery, c.OrderType())
	assertInvariants(t, c)
}
