// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/tissue45/convi-backend/internal/config"
	"github.com/tissue45/convi-backend/internal/interfaces/http/handlers"
	"github.com/tissue45/convi-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes registers all API routes
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	SetupCatalogRoutes(rg, db, cfg)
	SetupCartRoutes(rg, db, redisClient, cfg)
	SetupOrderRoutes(rg, db, cfg)
}

// SetupCatalogRoutes sets up store and product browsing routes
func SetupCatalogRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	catalogHandler := handlers.NewCatalogHandler(db, cfg)

	stores := rg.Group("/stores")
	{
		stores.GET("", catalogHandler.GetStores)
		stores.GET("/:id", catalogHandler.GetStore)
		stores.GET("/:id/products", catalogHandler.GetStoreProducts)
	}
}

// SetupCartRoutes sets up cart and reorder routes. Cart routes work with
// guest sessions or authenticated users; reorder needs an order history and
// therefore authentication.
func SetupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(db, redisClient, cfg)

	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:productId", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:productId", cartHandler.RemoveFromCart)
		cart.DELETE("", cartHandler.ClearCart)
		cart.PUT("/order-type", cartHandler.SetOrderType)
		cart.POST("/validate", cartHandler.ValidateCart)
		cart.GET("/reorder-history", cartHandler.GetReorderHistory)

		protected := cart.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/reorder/:orderId", cartHandler.Reorder)
		}
	}
}

// SetupOrderRoutes sets up order history routes
func SetupOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	orderHandler := handlers.NewOrderHandler(db, cfg)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", orderHandler.GetOrders)
		orders.GET("/:id", orderHandler.GetOrder)
	}
}
