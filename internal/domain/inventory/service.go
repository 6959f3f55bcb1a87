// internal/domain/inventory/service.go
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/tissue45/convi-backend/internal/config"
	"github.com/tissue45/convi-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// Service answers live stock questions against the store_products table.
// The cart engine consumes it read-only; stock is owned by store operators.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new inventory service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// GetStock returns current stock quantities for the given products at one
// store, keyed by product id. Products the store does not carry are absent
// from the result.
func (s *Service) GetStock(ctx context.Context, storeID uint, productIDs []uint) (map[uint]int, error) {
	if len(productIDs) == 0 {
		return map[uint]int{}, nil
	}

	var rows []catalog.StoreProduct
	err := s.db.WithContext(ctx).
		Select("product_id", "stock_quantity").
		Where("store_id = ? AND product_id IN ?", storeID, productIDs).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve stock levels: %w", err)
	}

	stock := make(map[uint]int, len(rows))
	for _, row := range rows {
		stock[row.ProductID] = row.StockQuantity
	}
	return stock, nil
}

// GetStoreProduct returns the current store-scoped product snapshot with its
// catalog product and store preloaded. Returns (nil, nil) when the store does
// not carry the product.
func (s *Service) GetStoreProduct(ctx context.Context, storeID, productID uint) (*catalog.StoreProduct, error) {
	var sp catalog.StoreProduct
	err := s.db.WithContext(ctx).
		Preload("Product").Preload("Store").
		Where("store_id = ? AND product_id = ?", storeID, productID).
		First(&sp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve store product: %w", err)
	}
	return &sp, nil
}
