// internal/domain/cart/aggregate.go
package cart

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/tissue45/convi-backend/internal/domain/catalog"
)

// PricingPolicy holds the fixed rates the totals calculation runs on
type PricingPolicy struct {
	TaxRate               float64
	DeliveryFee           int64
	FreeDeliveryThreshold int64
}

// DefaultPricingPolicy returns the chain-wide default rates
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		TaxRate:               0.10,
		DeliveryFee:           3000,
		FreeDeliveryThreshold: 20000,
	}
}

// ConfirmPrompt describes a pending cross-store switch
type ConfirmPrompt struct {
	CurrentStoreID   uint   `json:"current_store_id"`
	CurrentStoreName string `json:"current_store_name"`
	TargetStoreID    uint   `json:"target_store_id"`
	TargetStoreName  string `json:"target_store_name"`
}

// Confirmer is the injected yes/no capability invoked before any cross-store
// rebinding. The cart never mutates state before the answer resolves, so the
// implementation may answer immediately or after an asynchronous round trip.
type Confirmer interface {
	Confirm(ctx context.Context, prompt ConfirmPrompt) (bool, error)
}

// ConfirmerFunc adapts a function to the Confirmer interface
type ConfirmerFunc func(ctx context.Context, prompt ConfirmPrompt) (bool, error)

// Confirm implements Confirmer
func (f ConfirmerFunc) Confirm(ctx context.Context, prompt ConfirmPrompt) (bool, error) {
	return f(ctx, prompt)
}

// Cart is the denormalized cart aggregate: the ordered line items, the
// single-store binding, the fulfillment mode and the derived totals. All
// items belong to the bound store, no quantity exceeds the stock level last
// observed for its line, and the totals are fully recomputed after every
// mutation. Methods are not safe for concurrent use; callers serialize.
type Cart struct {
	items     []Item
	storeID   uint
	storeName string
	orderType OrderType
	totals    Totals
	history   []ReorderHistoryEntry
	pricing   PricingPolicy
}

// New creates an empty cart with no store binding
func New(pricing PricingPolicy) *Cart {
	return &Cart{
		orderType: OrderTypePickup,
		pricing:   pricing,
	}
}

// Restore rebuilds a cart from a persisted snapshot. Item subtotals and the
// cart totals are recomputed from the items; the redundant persisted totals
// are only there for cold-start rendering and are discarded here.
func Restore(snap Snapshot, pricing PricingPolicy) *Cart {
	c := New(pricing)
	if snap.OrderType.IsValid() {
		c.orderType = snap.OrderType
	}
	c.storeID = snap.StoreID
	c.storeName = snap.StoreName
	c.history = append(c.history, snap.ReorderHistory...)
	for _, item := range snap.Items {
		item.Subtotal = SubtotalFor(item.StoreProduct, item.Quantity)
		c.items = append(c.items, item)
	}
	c.recalculate()
	return c
}

// IsEmpty reports whether the cart has no items
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// StoreID returns the bound store id, zero when unbound
func (c *Cart) StoreID() uint {
	return c.storeID
}

// StoreName returns the bound store name
func (c *Cart) StoreName() string {
	return c.storeName
}

// OrderType returns the current fulfillment mode
func (c *Cart) OrderType() OrderType {
	return c.orderType
}

// Totals returns the derived monetary totals
func (c *Cart) Totals() Totals {
	return c.totals
}

// Items returns a copy of the cart lines in insertion order
func (c *Cart) Items() []Item {
	items := make([]Item, len(c.items))
	copy(items, c.items)
	return items
}

// ReorderHistory returns a copy of the reorder log, most recent last
func (c *Cart) ReorderHistory() []ReorderHistoryEntry {
	history := make([]ReorderHistoryEntry, len(c.history))
	copy(history, c.history)
	return history
}

// AddItem adds a quantity of a store product to the cart.
//
// When the cart is bound to a different store, the switch must be confirmed
// first: with a nil confirmer a CrossStoreConflictError is returned; with
// one, a declined answer returns ErrStoreSwitchDeclined and the cart is left
// untouched, a confirmed answer clears the cart and rebinds it before the
// add proceeds. Quantities are summed into an existing line for the same
// product; any quantity above the live stock level rejects the mutation with
// a StockInsufficientError.
func (c *Cart) AddItem(ctx context.Context, sp catalog.StoreProduct, quantity int, options map[string]string, confirm Confirmer) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	if !c.IsEmpty() && c.storeID != sp.StoreID {
		conflict := &CrossStoreConflictError{
			CurrentStoreID:   c.storeID,
			CurrentStoreName: c.storeName,
			TargetStoreID:    sp.StoreID,
			TargetStoreName:  sp.Store.Name,
		}
		if confirm == nil {
			return conflict
		}
		ok, err := confirm.Confirm(ctx, ConfirmPrompt{
			CurrentStoreID:   conflict.CurrentStoreID,
			CurrentStoreName: conflict.CurrentStoreName,
			TargetStoreID:    conflict.TargetStoreID,
			TargetStoreName:  conflict.TargetStoreName,
		})
		if err != nil {
			return fmt.Errorf("store switch confirmation failed: %w", err)
		}
		if !ok {
			return ErrStoreSwitchDeclined
		}
		c.Clear()
	}

	available := sp.StockQuantity
	if !sp.IsAvailable {
		available = 0
	}

	// Sum into the existing line for the same product, if any
	for i := range c.items {
		if c.items[i].StoreProduct.ProductID == sp.ProductID {
			newQuantity := c.items[i].Quantity + quantity
			if newQuantity > available {
				return &StockInsufficientError{
					ProductID:   sp.ProductID,
					ProductName: sp.Product.Name,
					Requested:   newQuantity,
					Available:   available,
				}
			}
			c.items[i].Quantity = newQuantity
			c.items[i].StoreProduct = sp // Refresh snapshot, price may have changed
			c.items[i].Product = sp.Product
			c.items[i].Subtotal = SubtotalFor(sp, newQuantity)
			c.recalculate()
			return nil
		}
	}

	if quantity > available {
		return &StockInsufficientError{
			ProductID:   sp.ProductID,
			ProductName: sp.Product.Name,
			Requested:   quantity,
			Available:   available,
		}
	}

	c.items = append(c.items, Item{
		ID:           uuid.NewString(),
		Product:      sp.Product,
		StoreProduct: sp,
		Quantity:     quantity,
		Subtotal:     SubtotalFor(sp, quantity),
		Options:      options,
	})

	if c.storeID == 0 {
		c.storeID = sp.StoreID
		c.storeName = sp.Store.Name
	}

	c.recalculate()
	return nil
}

// UpdateQuantity sets the quantity of the line holding the given product.
// Zero or negative delegates to RemoveItem. A quantity above the stock level
// last observed for the line rejects the mutation with a
// StockInsufficientError.
func (c *Cart) UpdateQuantity(productID uint, quantity int) error {
	if quantity <= 0 {
		return c.RemoveItem(productID)
	}

	for i := range c.items {
		if c.items[i].StoreProduct.ProductID == productID {
			available := c.items[i].StoreProduct.StockQuantity
			if !c.items[i].StoreProduct.IsAvailable {
				available = 0
			}
			if quantity > available {
				return &StockInsufficientError{
					ProductID:   productID,
					ProductName: c.items[i].Product.Name,
					Requested:   quantity,
					Available:   available,
				}
			}
			c.items[i].Quantity = quantity
			c.items[i].Subtotal = SubtotalFor(c.items[i].StoreProduct, quantity)
			c.recalculate()
			return nil
		}
	}

	return ErrItemNotFound
}

// RemoveItem drops the line holding the given product. Emptying the cart
// does not clear the store binding; only Clear does that.
func (c *Cart) RemoveItem(productID uint) error {
	for i := range c.items {
		if c.items[i].StoreProduct.ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.recalculate()
			return nil
		}
	}
	return ErrItemNotFound
}

// Clear resets the cart to its empty state: items, store binding, order type
// and totals. The reorder history is kept, it is a log, not cart state.
func (c *Cart) Clear() {
	c.items = nil
	c.storeID = 0
	c.storeName = ""
	c.orderType = OrderTypePickup
	c.recalculate()
}

// SetOrderType switches between pickup and delivery and recomputes totals
func (c *Cart) SetOrderType(orderType OrderType) error {
	if !orderType.IsValid() {
		return ErrInvalidOrderType
	}
	c.orderType = orderType
	c.recalculate()
	return nil
}

// Snapshot returns the serializable state of the cart
func (c *Cart) Snapshot() Snapshot {
	return Snapshot{
		Items:          c.Items(),
		StoreID:        c.storeID,
		StoreName:      c.storeName,
		OrderType:      c.orderType,
		Subtotal:       c.totals.Subtotal,
		TaxAmount:      c.totals.TaxAmount,
		DeliveryFee:    c.totals.DeliveryFee,
		TotalAmount:    c.totals.TotalAmount,
		ReorderHistory: c.ReorderHistory(),
		UpdatedAt:      time.Now().UTC(),
	}
}

// replaceAll atomically swaps the entire cart contents. Used by the reorder
// reconciler after every line has been validated.
func (c *Cart) replaceAll(storeID uint, storeName string, orderType OrderType, items []Item) {
	c.items = items
	c.storeID = storeID
	c.storeName = storeName
	c.orderType = orderType
	c.recalculate()
}

func (c *Cart) appendHistory(entry ReorderHistoryEntry) {
	c.history = append(c.history, entry)
}

// recalculate recomputes every derived total from scratch. Totals are never
// diffed incrementally; full recomputation is what keeps them from drifting.
func (c *Cart) recalculate() {
	var subtotal int64
	for _, item := range c.items {
		subtotal += item.Subtotal
	}

	taxAmount := int64(math.Round(float64(subtotal) * c.pricing.TaxRate))

	var deliveryFee int64
	if c.orderType == OrderTypeDelivery && len(c.items) > 0 && subtotal < c.pricing.FreeDeliveryThreshold {
		deliveryFee = c.pricing.DeliveryFee
	}

	c.totals = Totals{
		Subtotal:    subtotal,
		TaxAmount:   taxAmount,
		DeliveryFee: deliveryFee,
		TotalAmount: subtotal + taxAmount + deliveryFee,
	}
}
