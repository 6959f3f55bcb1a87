// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/tissue45/convi-backend/internal/domain/catalog"
	"github.com/tissue45/convi-backend/internal/domain/order"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Define all models that need migration in dependency order
	models := []interface{}{
		// Catalog domain - Base tables
		&catalog.Store{},
		&catalog.Product{},
		&catalog.StoreProduct{},

		// Order domain - Dependent tables
		&order.Order{},
		&order.OrderItem{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes not covered by struct tags
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_store_products_available ON store_products (store_id, is_available)",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders (user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order_product ON order_items (order_id, product_id)",
	}

	for _, idx := range indexes {
		if err := m.db.Exec(idx).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Println("✅ Additional indexes created")
	return nil
}

// SeedInitialData seeds development data: two stores carrying a small
// shared catalog with discounts and promotion tiers
func (m *Migration) SeedInitialData() error {
	var storeCount int64
	if err := m.db.Model(&catalog.Store{}).Count(&storeCount).Error; err != nil {
		return fmt.Errorf("failed to check existing stores: %w", err)
	}
	if storeCount > 0 {
		log.Println("ℹ️ Seed data already present, skipping")
		return nil
	}

	log.Println("🔄 Seeding initial data...")

	stores := []catalog.Store{
		{Name: "Gangnam Station Branch", Address: "123 Teheran-ro, Gangnam-gu", Phone: "02-1234-5678", IsActive: true},
		{Name: "Hongdae Branch", Address: "45 Wausan-ro, Mapo-gu", Phone: "02-8765-4321", IsActive: true},
	}
	if err := m.db.Create(&stores).Error; err != nil {
		return fmt.Errorf("failed to seed stores: %w", err)
	}

	products := []catalog.Product{
		{Name: "Triangle Kimbap Tuna Mayo", Category: "food", IsActive: true},
		{Name: "Banana Milk 240ml", Category: "beverage", IsActive: true},
		{Name: "Instant Ramen Cup", Category: "food", IsActive: true},
		{Name: "Chocolate Bar", Category: "snack", IsActive: true},
	}
	if err := m.db.Create(&products).Error; err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	storeProducts := []catalog.StoreProduct{
		{StoreID: stores[0].ID, ProductID: products[0].ID, Price: 1500, StockQuantity: 30, IsAvailable: true, PromotionTier: catalog.PromotionBuyOneGetOne, PromotionLabel: "1+1"},
		{StoreID: stores[0].ID, ProductID: products[1].ID, Price: 1700, DiscountRate: 0.1, StockQuantity: 24, IsAvailable: true},
		{StoreID: stores[0].ID, ProductID: products[2].ID, Price: 1200, StockQuantity: 50, IsAvailable: true, PromotionTier: catalog.PromotionBuyTwoGetOne, PromotionLabel: "2+1"},
		{StoreID: stores[1].ID, ProductID: products[0].ID, Price: 1500, StockQuantity: 12, IsAvailable: true},
		{StoreID: stores[1].ID, ProductID: products[3].ID, Price: 2000, DiscountRate: 0.2, StockQuantity: 40, IsAvailable: true},
	}
	if err := m.db.Create(&storeProducts).Error; err != nil {
		return fmt.Errorf("failed to seed store products: %w", err)
	}

	log.Println("✅ Initial data seeded")
	return nil
}
