// internal/domain/catalog/entity.go
package catalog

import (
	"time"

	"gorm.io/gorm"
)

// PromotionTier represents a quantity-based promotional pricing rule
type PromotionTier string

const (
	PromotionNone         PromotionTier = ""
	PromotionBuyOneGetOne PromotionTier = "buy_one_get_one" // pay for 1 of every 2
	PromotionBuyTwoGetOne PromotionTier = "buy_two_get_one" // pay for 2 of every 3
)

// IsValid reports whether the tier is one of the known promotion rules
func (t PromotionTier) IsValid() bool {
	switch t {
	case PromotionNone, PromotionBuyOneGetOne, PromotionBuyTwoGetOne:
		return true
	}
	return false
}

// Store represents a physical store location
type Store struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"not null;size:100" json:"name"`
	Address    string         `gorm:"type:text" json:"address"`
	Phone      string         `gorm:"size:20" json:"phone"`
	OwnerEmail string         `gorm:"size:100" json:"owner_email"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	StoreProducts []StoreProduct `gorm:"foreignKey:StoreID" json:"store_products,omitempty"`
}

// Product represents a catalog product shared across the chain
type Product struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Category  string         `gorm:"size:50;index" json:"category"`
	ImageURL  string         `gorm:"size:500" json:"image_url"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// StoreProduct is the store-scoped view of a catalog product: the price,
// discount, stock level and promotion under which one store sells it.
type StoreProduct struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	StoreID        uint          `gorm:"not null;uniqueIndex:idx_store_product" json:"store_id"`
	ProductID      uint          `gorm:"not null;uniqueIndex:idx_store_product" json:"product_id"`
	Price          int64         `gorm:"not null" json:"price"` // In minor currency units
	DiscountRate   float64       `gorm:"default:0" json:"discount_rate"`
	StockQuantity  int           `gorm:"default:0" json:"stock_quantity"`
	IsAvailable    bool          `gorm:"default:true" json:"is_available"`
	PromotionTier  PromotionTier `gorm:"size:30;default:''" json:"promotion_tier,omitempty"`
	PromotionLabel string        `gorm:"size:100" json:"promotion_label,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	// Relationships
	Store   Store   `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName overrides the table name
func (StoreProduct) TableName() string {
	return "store_products"
}

// CanFulfill checks if there's enough stock for the requested quantity
func (sp *StoreProduct) CanFulfill(quantity int) bool {
	return sp.IsAvailable && sp.StockQuantity >= quantity
}
