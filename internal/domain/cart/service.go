// internal/domain/cart/service.go
package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Service owns one cart aggregate per owner key and wires it to the stock
// validator, the reorder reconciler and the snapshot store. Mutations are
// serialized; the aggregate itself has no internal locking. Snapshot saves
// are fire-and-forget: a failed save is logged and the in-memory cart stays
// authoritative for the session.
type Service struct {
	stock      StockValidator
	snapshots  SnapshotStore // nil means no persistence
	reconciler *Reconciler
	pricing    PricingPolicy
	logger     *logrus.Logger

	mu    sync.Mutex
	carts map[string]*Cart
}

// NewService creates a new cart service
func NewService(stock StockValidator, snapshots SnapshotStore, pricing PricingPolicy, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		stock:      stock,
		snapshots:  snapshots,
		reconciler: NewReconciler(stock, logger),
		pricing:    pricing,
		logger:     logger,
		carts:      make(map[string]*Cart),
	}
}

// GetCart returns the current cart state for an owner
func (s *Service) GetCart(ctx context.Context, ownerKey string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cartFor(ctx, ownerKey)
	return c.Snapshot(), nil
}

// AddItem resolves the live store-product snapshot and adds it to the
// owner's cart
func (s *Service) AddItem(ctx context.Context, ownerKey string, storeID, productID uint, quantity int, options map[string]string, confirm Confirmer) (Snapshot, error) {
	sp, err := s.stock.GetStoreProduct(ctx, storeID, productID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to look up product %d at store %d: %w", productID, storeID, err)
	}
	if sp == nil {
		return Snapshot{}, ErrProductNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cartFor(ctx, ownerKey)
	if err := c.AddItem(ctx, *sp, quantity, options, confirm); err != nil {
		return Snapshot{}, err
	}

	snap := c.Snapshot()
	s.persist(ownerKey, snap)
	return snap, nil
}

// UpdateQuantity updates the quantity of a cart line
func (s *Service) UpdateQuantity(ctx context.Context, ownerKey string, productID uint, quantity int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cartFor(ctx, ownerKey)
	if err := c.UpdateQuantity(productID, quantity); err != nil {
		return Snapshot{}, err
	}

	snap := c.Snapshot()
	s.persist(ownerKey, snap)
	return snap, nil
}

// RemoveItem removes a cart line
func (s *Service) RemoveItem(ctx context.Context, ownerKey string, productID uint) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cartFor(ctx, ownerKey)
	if err := c.RemoveItem(productID); err != nil {
		return Snapshot{}, err
	}

	snap := c.Snapshot()
	s.persist(ownerKey, snap)
	return snap, nil
}

// ClearCart resets the owner's cart to the empty state
func (s *Service) ClearCart(ctx context.Context, ownerKey string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cartFor(ctx, ownerKey)
	c.Clear()

	snap := c.Snapshot()
	s.persist(ownerKey, snap)
	return snap, nil
}

// SetOrderType switches the fulfillment mode of the owner's cart
func (s *Service) SetOrderType(ctx context.Context, ownerKey string, orderType OrderType) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cartFor(ctx, ownerKey)
	if err := c.SetOrderType(orderType); err != nil {
		return Snapshot{}, err
	}

	snap := c.Snapshot()
	s.persist(ownerKey, snap)
	return snap, nil
}

// StockShortage reports one cart line whose live stock no longer covers the
// cart quantity
type StockShortage struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

// ValidateStock re-checks every cart line against live stock in one bulk
// query. Used by the checkout surface before handing the cart off. The cart
// itself is not mutated.
func (s *Service) ValidateStock(ctx context.Context, ownerKey string) ([]StockShortage, error) {
	s.mu.Lock()
	c := s.cartFor(ctx, ownerKey)
	items := c.Items()
	storeID := c.StoreID()
	s.mu.Unlock()

	if storeID == 0 {
		return nil, ErrMissingStoreBinding
	}

	productIDs := make([]uint, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.StoreProduct.ProductID)
	}

	stock, err := s.stock.GetStock(ctx, storeID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to validate cart stock: %w", err)
	}

	var shortages []StockShortage
	for _, item := range items {
		available, carried := stock[item.StoreProduct.ProductID]
		if !carried {
			available = 0
		}
		if item.Quantity > available {
			shortages = append(shortages, StockShortage{
				ProductID:   item.StoreProduct.ProductID,
				ProductName: item.Product.Name,
				Requested:   item.Quantity,
				Available:   available,
			})
		}
	}
	return shortages, nil
}

// Reorder re-validates a historical order against live inventory and, on
// success, atomically replaces the owner's cart with it
func (s *Service) Reorder(ctx context.Context, ownerKey string, req ReorderRequest, confirm Confirmer) (*ReorderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cartFor(ctx, ownerKey)
	result, err := s.reconciler.Reorder(ctx, c, req, confirm)
	if err != nil {
		return nil, err
	}

	if result.Status == ReorderCommitted {
		s.persist(ownerKey, c.Snapshot())
	}
	return result, nil
}

// ReorderHistory returns the owner's reorder log, most recent last
func (s *Service) ReorderHistory(ctx context.Context, ownerKey string) ([]ReorderHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cartFor(ctx, ownerKey)
	return c.ReorderHistory(), nil
}

// cartFor returns the cached aggregate for an owner, restoring it from the
// snapshot store on first access. Callers hold s.mu. A failed load is logged
// and treated as an empty cart; persistence is never fatal.
func (s *Service) cartFor(ctx context.Context, ownerKey string) *Cart {
	if c, ok := s.carts[ownerKey]; ok {
		return c
	}

	c := New(s.pricing)
	if s.snapshots != nil {
		snap, err := s.snapshots.Load(ctx, ownerKey)
		if err != nil {
			s.logger.WithError(err).WithField("owner", ownerKey).
				Warn("Failed to load cart snapshot, starting empty")
		} else if snap != nil {
			c = Restore(*snap, s.pricing)
		}
	}

	s.carts[ownerKey] = c
	return c
}

// persist saves a snapshot in the background. Save failures are logged and
// otherwise ignored; they never block or roll back the mutation.
func (s *Service) persist(ownerKey string, snap Snapshot) {
	if s.snapshots == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.snapshots.Save(ctx, ownerKey, snap); err != nil {
			s.logger.WithError(err).WithField("owner", ownerKey).
				Warn("Failed to save cart snapshot")
		}
	}()
}
