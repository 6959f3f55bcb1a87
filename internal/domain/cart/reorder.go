// internal/domain/cart/reorder.go
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tissue45/convi-backend/internal/domain/catalog"
)

// StockValidator is the read-only inventory collaborator the engine queries
// for live per-store stock. GetStoreProduct returns (nil, nil) when the
// store does not carry the product.
type StockValidator interface {
	GetStock(ctx context.Context, storeID uint, productIDs []uint) (map[uint]int, error)
	GetStoreProduct(ctx context.Context, storeID, productID uint) (*catalog.StoreProduct, error)
}

// OrderLine is one line of a historical order being reordered
type OrderLine struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// ReorderRequest carries everything the reconciler needs from a historical
// order: its identity, target store, fulfillment mode and line items.
type ReorderRequest struct {
	OrderID         uint        `json:"order_id"`
	OrderNumber     string      `json:"order_number"`
	StoreID         uint        `json:"store_id"`
	StoreName       string      `json:"store_name"`
	OrderType       OrderType   `json:"order_type"`
	DeliveryAddress string      `json:"delivery_address,omitempty"`
	Lines           []OrderLine `json:"lines"`
}

// ReorderStatus is the terminal state of a reorder attempt
type ReorderStatus string

const (
	ReorderCommitted ReorderStatus = "committed"
	ReorderRejected  ReorderStatus = "rejected"
	ReorderCancelled ReorderStatus = "cancelled"
)

// UnavailableItem reports one line that cannot be restored, with a reason
// meant to be rendered to the end user unmodified
type UnavailableItem struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Available   int    `json:"available"`
	Reason      string `json:"reason"`
}

// ReorderResult is the outcome of a reorder attempt. Rejection and
// cancellation are reported results, not errors; in both cases the live cart
// is untouched.
type ReorderResult struct {
	Status          ReorderStatus     `json:"status"`
	OrderNumber     string            `json:"order_number"`
	Unavailable     []UnavailableItem `json:"unavailable,omitempty"`
	ItemCount       int               `json:"item_count"`
	TotalAmount     int64             `json:"total_amount"`
	DeliveryAddress string            `json:"delivery_address,omitempty"`
}

// Reconciler re-validates a historical order against live inventory and
// either atomically replaces the cart contents or reports itemized failures
// without mutating anything.
type Reconciler struct {
	stock  StockValidator
	logger *logrus.Logger
	now    func() time.Time
}

// NewReconciler creates a reorder reconciler
func NewReconciler(stock StockValidator, logger *logrus.Logger) *Reconciler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Reconciler{
		stock:  stock,
		logger: logger,
		now:    time.Now,
	}
}

// Reorder runs the reconciliation state machine:
//
//	validate every line → all available? → confirm store switch if needed → commit
//
// Every line is validated before the cart is touched, so the cart is either
// fully untouched or fully replaced; there is no intermediate state. Items
// are priced at the current store snapshot, not the historical order price.
// A history entry is recorded on commit only, and only with a resolved order
// identity.
func (r *Reconciler) Reorder(ctx context.Context, c *Cart, req ReorderRequest, confirm Confirmer) (*ReorderResult, error) {
	if req.OrderID == 0 || req.OrderNumber == "" {
		return nil, fmt.Errorf("reorder requires a resolved order identity")
	}
	if req.StoreID == 0 {
		return nil, ErrMissingStoreBinding
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("order %s has no line items", req.OrderNumber)
	}

	orderType := req.OrderType
	if !orderType.IsValid() {
		orderType = OrderTypePickup
	}

	// Phase 1: validate every line against live inventory. No cart mutation
	// happens until all queries have resolved.
	type availableLine struct {
		line OrderLine
		snap catalog.StoreProduct
	}
	var availableLines []availableLine
	var unavailable []UnavailableItem

	for _, line := range req.Lines {
		snap, err := r.stock.GetStoreProduct(ctx, req.StoreID, line.ProductID)
		switch {
		case err != nil:
			r.logger.WithError(err).WithFields(logrus.Fields{
				"order_number": req.OrderNumber,
				"store_id":     req.StoreID,
				"product_id":   line.ProductID,
			}).Warn("Stock validation failed during reorder")
			unavailable = append(unavailable, UnavailableItem{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Quantity:    line.Quantity,
				Reason:      "validation failed",
			})
		case snap == nil:
			unavailable = append(unavailable, UnavailableItem{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Quantity:    line.Quantity,
				Reason:      "no longer sold at this store",
			})
		case !snap.IsAvailable:
			unavailable = append(unavailable, UnavailableItem{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Quantity:    line.Quantity,
				Reason:      "discontinued",
			})
		case snap.StockQuantity < line.Quantity:
			unavailable = append(unavailable, UnavailableItem{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Quantity:    line.Quantity,
				Available:   snap.StockQuantity,
				Reason:      fmt.Sprintf("insufficient stock: requested %d, available %d", line.Quantity, snap.StockQuantity),
			})
		default:
			availableLines = append(availableLines, availableLine{line: line, snap: *snap})
		}
	}

	if len(unavailable) > 0 {
		return &ReorderResult{
			Status:      ReorderRejected,
			OrderNumber: req.OrderNumber,
			Unavailable: unavailable,
		}, nil
	}

	// Phase 2: the reorder targets a different store than the bound one,
	// ask before rebinding
	if !c.IsEmpty() && c.StoreID() != req.StoreID {
		conflict := &CrossStoreConflictError{
			CurrentStoreID:   c.StoreID(),
			CurrentStoreName: c.StoreName(),
			TargetStoreID:    req.StoreID,
			TargetStoreName:  req.StoreName,
		}
		if confirm == nil {
			return nil, conflict
		}
		ok, err := confirm.Confirm(ctx, ConfirmPrompt{
			CurrentStoreID:   conflict.CurrentStoreID,
			CurrentStoreName: conflict.CurrentStoreName,
			TargetStoreID:    conflict.TargetStoreID,
			TargetStoreName:  conflict.TargetStoreName,
		})
		if err != nil {
			return nil, fmt.Errorf("store switch confirmation failed: %w", err)
		}
		if !ok {
			return &ReorderResult{
				Status:      ReorderCancelled,
				OrderNumber: req.OrderNumber,
			}, nil
		}
	}

	// Phase 3: commit. Replace the cart wholesale, pricing every line at the
	// current snapshot.
	items := make([]Item, 0, len(availableLines))
	for _, al := range availableLines {
		items = append(items, Item{
			ID:           uuid.NewString(),
			Product:      al.snap.Product,
			StoreProduct: al.snap,
			Quantity:     al.line.Quantity,
			Subtotal:     SubtotalFor(al.snap, al.line.Quantity),
		})
	}

	c.replaceAll(req.StoreID, req.StoreName, orderType, items)

	entry := ReorderHistoryEntry{
		OrderID:     req.OrderID,
		OrderNumber: req.OrderNumber,
		ReorderedAt: r.now().UTC(),
		ItemCount:   len(items),
		TotalAmount: c.Totals().TotalAmount,
	}
	c.appendHistory(entry)

	result := &ReorderResult{
		Status:      ReorderCommitted,
		OrderNumber: req.OrderNumber,
		ItemCount:   len(items),
		TotalAmount: c.Totals().TotalAmount,
	}
	if orderType == OrderTypeDelivery {
		// Side channel for the downstream checkout surface
		result.DeliveryAddress = req.DeliveryAddress
	}
	return result, nil
}
