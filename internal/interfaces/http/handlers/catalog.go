// internal/interfaces/http/handlers/catalog.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tissue45/convi-backend/internal/config"
	"github.com/tissue45/convi-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// CatalogHandler handles store and store-product endpoints
type CatalogHandler struct {
	catalogService *catalog.Service
	config         *config.Config
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(db *gorm.DB, cfg *config.Config) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalog.NewService(db, cfg),
		config:         cfg,
	}
}

// GetStores handles GET /stores
func (h *CatalogHandler) GetStores(c *gin.Context) {
	stores, err := h.catalogService.GetStores()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve stores",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stores retrieved successfully",
		"data":    stores,
	})
}

// GetStore handles GET /stores/:id
func (h *CatalogHandler) GetStore(c *gin.Context) {
	storeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid store ID",
		})
		return
	}

	store, err := h.catalogService.GetStore(uint(storeID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Store not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Store retrieved successfully",
		"data":    store,
	})
}

// GetStoreProducts handles GET /stores/:id/products
func (h *CatalogHandler) GetStoreProducts(c *gin.Context) {
	storeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid store ID",
		})
		return
	}

	products, err := h.catalogService.GetStoreProducts(uint(storeID), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve store products",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Store products retrieved successfully",
		"data":    products,
	})
}
