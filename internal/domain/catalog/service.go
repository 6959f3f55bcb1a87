// internal/domain/catalog/service.go
package catalog

import (
	"fmt"

	"github.com/tissue45/convi-backend/internal/config"
	"gorm.io/gorm"
)

// Service handles catalog read operations
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// GetStores retrieves all active stores
func (s *Service) GetStores() ([]Store, error) {
	var stores []Store
	if err := s.db.Where("is_active = ?", true).Order("name").Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve stores: %w", err)
	}
	return stores, nil
}

// GetStore retrieves a single active store
func (s *Service) GetStore(storeID uint) (*Store, error) {
	var store Store
	if err := s.db.Where("id = ? AND is_active = ?", storeID, true).First(&store).Error; err != nil {
		return nil, fmt.Errorf("store not found")
	}
	return &store, nil
}

// GetStoreProducts retrieves the store-scoped product listing for one store
func (s *Service) GetStoreProducts(storeID uint, category string) ([]StoreProduct, error) {
	query := s.db.Preload("Product").Preload("Store").
		Joins("JOIN products ON products.id = store_products.product_id AND products.is_active = ? AND products.deleted_at IS NULL", true).
		Where("store_products.store_id = ?", storeID)

	if category != "" {
		query = query.Where("products.category = ?", category)
	}

	var storeProducts []StoreProduct
	if err := query.Find(&storeProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve store products: %w", err)
	}
	return storeProducts, nil
}
