// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/tissue45/convi-backend/internal/domain/catalog"
)

// OrderType represents how the order will be fulfilled
type OrderType string

const (
	OrderTypePickup   OrderType = "pickup"
	OrderTypeDelivery OrderType = "delivery"
)

// IsValid reports whether the order type is a known fulfillment mode
func (t OrderType) IsValid() bool {
	return t == OrderTypePickup || t == OrderTypeDelivery
}

// Item is a single cart line. The id is the line's own identity, distinct
// from the catalog product id. StoreProduct is the price/stock/promotion
// snapshot observed at the last mutation touching this line. Subtotal is
// always derived from that snapshot and the quantity, never set directly.
type Item struct {
	ID           string               `json:"id"`
	Product      catalog.Product      `json:"product"`
	StoreProduct catalog.StoreProduct `json:"store_product"`
	Quantity     int                  `json:"quantity"`
	Subtotal     int64                `json:"subtotal"`
	Options      map[string]string    `json:"options,omitempty"`
}

// Totals represents the derived monetary totals of a cart
type Totals struct {
	Subtotal    int64 `json:"subtotal"`
	TaxAmount   int64 `json:"tax_amount"`
	DeliveryFee int64 `json:"delivery_fee"`
	TotalAmount int64 `json:"total_amount"`
}

// ReorderHistoryEntry records one successful reorder, for UI recall only.
// It is never interpreted as authoritative order state.
type ReorderHistoryEntry struct {
	OrderID     uint      `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	ReorderedAt time.Time `json:"reordered_at"`
	ItemCount   int       `json:"item_count"`
	TotalAmount int64     `json:"total_amount"`
}

// Snapshot is the serializable state of a cart. Totals are persisted
// redundantly for fast cold-start rendering; Restore recomputes them from
// the items and the recomputed values win.
type Snapshot struct {
	Items          []Item                `json:"items"`
	StoreID        uint                  `json:"store_id"`
	StoreName      string                `json:"store_name"`
	OrderType      OrderType             `json:"order_type"`
	Subtotal       int64                 `json:"subtotal"`
	TaxAmount      int64                 `json:"tax_amount"`
	DeliveryFee    int64                 `json:"delivery_fee"`
	TotalAmount    int64                 `json:"total_amount"`
	ReorderHistory []ReorderHistoryEntry `json:"reorder_history,omitempty"`
	UpdatedAt      time.Time             `json:"updated_at"`
}
