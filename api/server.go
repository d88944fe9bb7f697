package api

import (
	"github.com/gin-gonic/gin"

	"catalogcrawler/config"
)

// NewRouter wires middleware and routes into a gin engine.
func NewRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger())
	router.Use(CORSMiddleware(cfg.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	products := router.Group("/api/products")
	{
		products.GET("", handler.GetProducts)
		products.GET("/:id", handler.GetProductByID)
		products.GET("/categories/all", handler.GetAllCategories)
	}

	return router
}
