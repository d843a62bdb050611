package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sellerdesk/backend/internal/infrastructure/logger"
	"github.com/sellerdesk/backend/internal/interfaces/http/handler"
	"github.com/sellerdesk/backend/internal/interfaces/http/middleware"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Health  *handler.HealthHandler
	Shops   *handler.ShopHandler
	Sync    *handler.SyncHandler
	Product *handler.ProductHandler
}

// New builds the gin engine with middleware and all routes mounted
func New(log *zap.Logger, h Handlers) *gin.Engine {
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
	)

	engine.GET("/health", h.Health.Health)
	engine.GET("/ready", h.Health.Ready)

	api := engine.Group("/api/v1")
	{
		shops := api.Group("/shops")
		{
			shops.POST("", h.Shops.Create)
			shops.GET("", h.Shops.List)
			shops.GET("/:id", h.Shops.Get)
			shops.PATCH("/:id/sync-enabled", h.Shops.SetSyncEnabled)

			shops.POST("/:id/sync", h.Sync.StartSync)

			shops.GET("/:id/postings", h.Shops.ListPostings)
			shops.GET("/:id/postings/:number", h.Shops.GetPosting)
			shops.PATCH("/:id/postings/:number/status", h.Shops.OverridePostingStatus)
		}

		api.GET("/sync/tasks/:id", h.Sync.GetTask)

		products := api.Group("/products")
		{
			products.GET("/:id", h.Product.Get)
			products.PUT("/:id/purchase-price", h.Product.SetPurchasePrice)
		}
	}

	return engine
}
