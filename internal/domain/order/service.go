// internal/domain/order/service.go
package order

import (
	"fmt"

	"github.com/tissue45/convi-backend/internal/config"
	"github.com/tissue45/convi-backend/internal/domain/cart"
	"gorm.io/gorm"
)

// Service handles order history reads. Placing and processing orders is a
// separate concern behind the data layer; the cart engine only consumes
// historical orders as reorder input.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// GetOrders retrieves a user's order history, newest first
func (s *Service) GetOrders(userID uint, limit, offset int) ([]Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var orders []Order
	err := s.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, nil
}

// GetOrder retrieves a single order belonging to the user
func (s *Service) GetOrder(userID, orderID uint) (*Order, error) {
	var o Order
	err := s.db.Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o).Error
	if err != nil {
		return nil, fmt.Errorf("order not found")
	}
	return &o, nil
}

// ReorderRequest builds the reconciler input from a historical order
func (s *Service) ReorderRequest(userID, orderID uint) (*cart.ReorderRequest, error) {
	o, err := s.GetOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	lines := make([]cart.OrderLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, cart.OrderLine{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
		})
	}

	return &cart.ReorderRequest{
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		StoreID:         o.StoreID,
		StoreName:       o.StoreName,
		OrderType:       cart.OrderType(o.OrderType),
		DeliveryAddress: o.DeliveryAddress,
		Lines:           lines,
	}, nil
}
