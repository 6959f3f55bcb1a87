// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/tissue45/convi-backend/internal/config"
	"github.com/tissue45/convi-backend/internal/domain/cart"
	"github.com/tissue45/convi-backend/internal/domain/inventory"
	"github.com/tissue45/convi-backend/internal/domain/order"
	"github.com/tissue45/convi-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// CartHandler handles cart and reorder endpoints
type CartHandler struct {
	cartService  *cart.Service
	orderService *order.Service
	config       *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CartHandler {
	stock := inventory.NewService(db, cfg)
	snapshots := cart.NewRedisSnapshotStore(redisClient, cfg.Pricing.SnapshotTTL)
	pricing := cart.PricingPolicy{
		TaxRate:               cfg.Pricing.TaxRate,
		DeliveryFee:           cfg.Pricing.DeliveryFee,
		FreeDeliveryThreshold: cfg.Pricing.FreeDeliveryThreshold,
	}

	return &CartHandler{
		cartService:  cart.NewService(stock, snapshots, pricing, nil),
		orderService: order.NewService(db, cfg),
		config:       cfg,
	}
}

// staticConfirmer resolves the cross-store confirmation from a request flag:
// the client already asked the user and retried with the flag set.
type staticConfirmer bool

func (s staticConfirmer) Confirm(_ context.Context, _ cart.ConfirmPrompt) (bool, error) {
	return bool(s), nil
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	StoreID            uint              `json:"store_id" binding:"required"`
	ProductID          uint              `json:"product_id" binding:"required"`
	Quantity           int               `json:"quantity"`
	Options            map[string]string `json:"options"`
	ConfirmStoreSwitch bool              `json:"confirm_store_switch"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"gte=0"`
}

// SetOrderTypeRequest represents a fulfillment mode switch
type SetOrderTypeRequest struct {
	OrderType string `json:"order_type" binding:"required,oneof=pickup delivery"`
}

// ReorderBody carries the optional confirmation flag for a reorder
type ReorderBody struct {
	ConfirmStoreSwitch bool `json:"confirm_store_switch"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	ownerKey := middleware.CartOwnerKey(c)

	snap, err := h.cartService.GetCart(c.Request.Context(), ownerKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    snap,
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	ownerKey := middleware.CartOwnerKey(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	var confirm cart.Confirmer
	if req.ConfirmStoreSwitch {
		confirm = staticConfirmer(true)
	}

	snap, err := h.cartService.AddItem(c.Request.Context(), ownerKey, req.StoreID, req.ProductID, req.Quantity, req.Options, confirm)
	if err != nil {
		h.renderCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    snap,
	})
}

// UpdateCartItem handles PUT /cart/items/:productId
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	ownerKey := middleware.CartOwnerKey(c)

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	snap, err := h.cartService.UpdateQuantity(c.Request.Context(), ownerKey, uint(productID), req.Quantity)
	if err != nil {
		h.renderCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    snap,
	})
}

// RemoveFromCart handles DELETE /cart/items/:productId
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	ownerKey := middleware.CartOwnerKey(c)

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	snap, err := h.cartService.RemoveItem(c.Request.Context(), ownerKey, uint(productID))
	if err != nil {
		h.renderCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    snap,
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	ownerKey := middleware.CartOwnerKey(c)

	snap, err := h.cartService.ClearCart(c.Request.Context(), ownerKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to clear cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
		"data":    snap,
	})
}

// SetOrderType handles PUT /cart/order-type
func (h *CartHandler) SetOrderType(c *gin.Context) {
	ownerKey := middleware.CartOwnerKey(c)

	var req SetOrderTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	snap, err := h.cartService.SetOrderType(c.Request.Context(), ownerKey, cart.OrderType(req.OrderType))
	if err != nil {
		h.renderCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order type updated successfully",
		"data":    snap,
	})
}

// ValidateCart handles POST /cart/validate. The checkout surface calls this
// to re-check every line against live stock before handing the cart off.
func (h *CartHandler) ValidateCart(c *gin.Context) {
	ownerKey := middleware.CartOwnerKey(c)

	shortages, err := h.cartService.ValidateStock(c.Request.Context(), ownerKey)
	if err != nil {
		h.renderCartError(c, err)
		return
	}

	if len(shortages) > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Some items exceed available stock",
			"code":      "stock_insufficient",
			"shortages": shortages,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "All cart items are in stock",
	})
}

// Reorder handles POST /cart/reorder/:orderId
func (h *CartHandler) Reorder(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}
	ownerKey := middleware.CartOwnerKey(c)

	orderID, err := strconv.ParseUint(c.Param("orderId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	var body ReorderBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"details": err.Error(),
			})
			return
		}
	}

	req, err := h.orderService.ReorderRequest(userID, uint(orderID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
		return
	}

	var confirm cart.Confirmer
	if body.ConfirmStoreSwitch {
		confirm = staticConfirmer(true)
	}

	result, err := h.cartService.Reorder(c.Request.Context(), ownerKey, *req, confirm)
	if err != nil {
		h.renderCartError(c, err)
		return
	}

	status := http.StatusOK
	message := "Reorder completed successfully"
	switch result.Status {
	case cart.ReorderRejected:
		status = http.StatusConflict
		message = "Some items are no longer available"
	case cart.ReorderCancelled:
		message = "Reorder cancelled, cart unchanged"
	}

	c.JSON(status, gin.H{
		"message": message,
		"data":    result,
	})
}

// GetReorderHistory handles GET /cart/reorder-history
func (h *CartHandler) GetReorderHistory(c *gin.Context) {
	ownerKey := middleware.CartOwnerKey(c)

	history, err := h.cartService.ReorderHistory(c.Request.Context(), ownerKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve reorder history",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reorder history retrieved successfully",
		"data":    history,
	})
}

// renderCartError translates domain results into HTTP responses
func (h *CartHandler) renderCartError(c *gin.Context, err error) {
	var stockErr *cart.StockInsufficientError
	var conflictErr *cart.CrossStoreConflictError

	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":        stockErr.Error(),
			"code":         "stock_insufficient",
			"product_id":   stockErr.ProductID,
			"product_name": stockErr.ProductName,
			"requested":    stockErr.Requested,
			"available":    stockErr.Available,
		})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":              conflictErr.Error(),
			"code":               "cross_store_conflict",
			"current_store_id":   conflictErr.CurrentStoreID,
			"current_store_name": conflictErr.CurrentStoreName,
			"target_store_id":    conflictErr.TargetStoreID,
			"target_store_name":  conflictErr.TargetStoreName,
		})
	case errors.Is(err, cart.ErrStoreSwitchDeclined):
		c.JSON(http.StatusOK, gin.H{
			"message": "Store switch declined, cart unchanged",
		})
	case errors.Is(err, cart.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found at store",
		})
	case errors.Is(err, cart.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Item not found in cart",
		})
	case errors.Is(err, cart.ErrMissingStoreBinding):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Cart is not bound to a store",
		})
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, cart.ErrInvalidOrderType):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Cart operation failed",
		})
	}
}
