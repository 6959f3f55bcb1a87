// internal/domain/cart/errors.go
package cart

import (
	"errors"
	"fmt"
)

var (
	// ErrItemNotFound is returned when a mutation targets a product not in the cart
	ErrItemNotFound = errors.New("item not found in cart")

	// ErrMissingStoreBinding is returned when an operation requiring a bound
	// store is invoked on an empty cart, before any inventory I/O happens
	ErrMissingStoreBinding = errors.New("cart is not bound to a store")

	// ErrStoreSwitchDeclined is returned when the user declines a cross-store
	// switch. The cart is untouched; callers treat this as a normal outcome.
	ErrStoreSwitchDeclined = errors.New("store switch declined")

	// ErrInvalidQuantity is returned for zero or negative add quantities
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidOrderType is returned for unknown fulfillment modes
	ErrInvalidOrderType = errors.New("invalid order type")

	// ErrProductNotFound is returned when the targeted store does not carry
	// the requested product
	ErrProductNotFound = errors.New("product not found at store")
)

// StockInsufficientError reports a requested quantity exceeding live stock.
// The offending mutation is rejected; the cart line is left unchanged.
type StockInsufficientError struct {
	ProductID   uint
	ProductName string
	Requested   int
	Available   int
}

func (e *StockInsufficientError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// CrossStoreConflictError reports an attempt to mix items from two stores.
// It is surfaced when no confirmation capability is supplied; with one, the
// conflict is resolved by asking instead.
type CrossStoreConflictError struct {
	CurrentStoreID   uint
	CurrentStoreName string
	TargetStoreID    uint
	TargetStoreName  string
}

func (e *CrossStoreConflictError) Error() string {
	return fmt.Sprintf("cart is bound to store %q, cannot add items from store %q",
		e.CurrentStoreName, e.TargetStoreName)
}
