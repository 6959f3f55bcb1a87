// internal/domain/order/entity.go
package order

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order represents a placed order. The cart engine reads it as reorder
// input; order processing itself lives behind the data layer.
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderNumber string      `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID      uint        `gorm:"not null;index" json:"user_id"`
	StoreID     uint        `gorm:"not null;index" json:"store_id"`
	StoreName   string      `gorm:"not null;size:100" json:"store_name"` // Denormalized for order history display
	Status      OrderStatus `gorm:"not null;default:'pending'" json:"status"`
	OrderType   string      `gorm:"not null;size:20" json:"order_type"` // pickup or delivery

	// Financial information, in minor currency units
	SubtotalAmount int64 `gorm:"not null" json:"subtotal_amount"`
	TaxAmount      int64 `gorm:"default:0" json:"tax_amount"`
	DeliveryFee    int64 `gorm:"default:0" json:"delivery_fee"`
	TotalAmount    int64 `gorm:"not null" json:"total_amount"`

	DeliveryAddress string `gorm:"type:text" json:"delivery_address"`
	Notes           string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// OrderItem represents one line of a placed order
type OrderItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     uint      `gorm:"not null;index" json:"order_id"`
	ProductID   uint      `gorm:"not null;index" json:"product_id"`
	ProductName string    `gorm:"not null;size:255" json:"product_name"` // Name at time of ordering
	Quantity    int       `gorm:"not null" json:"quantity"`
	Price       int64     `gorm:"not null" json:"price"`       // Unit price at time of ordering
	TotalPrice  int64     `gorm:"not null" json:"total_price"` // Promotion-priced line subtotal
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
