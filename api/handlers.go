package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"catalogcrawler/scraper"
	"catalogcrawler/storage"
)

// ProductStore is the data access surface the handlers need; the Mongo
// repo implements it and tests substitute a fake.
type ProductStore interface {
	Find(ctx context.Context, q storage.ProductQuery) ([]scraper.Product, int64, error)
	FindByID(ctx context.Context, id string) (*scraper.Product, error)
	DistinctCategories(ctx context.Context) ([]string, error)
}

// Handler serves the product API.
type Handler struct {
	store  ProductStore
	logger *log.Entry
}

func NewHandler(store ProductStore) *Handler {
	return &Handler{
		store:  store,
		logger: log.WithField("component", "api"),
	}
}

type pagination struct {
	Total int64 `json:"total"`
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Pages int64 `json:"pages"`
}

// GetProducts lists products with optional category equality filter,
// free-text search over name/description/sku and skip/limit pagination.
func (h *Handler) GetProducts(c *gin.Context) {
	query := storage.ProductQuery{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     parsePositive(c.DefaultQuery("page", "1"), 1),
		Limit:    parsePositive(c.DefaultQuery("limit", "50"), 50),
	}

	products, total, err := h.store.Find(c.Request.Context(), query)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch products")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch products",
		})
		return
	}

	pages := total / query.Limit
	if total%query.Limit != 0 {
		pages++
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    products,
		"pagination": pagination{
			Total: total,
			Page:  query.Page,
			Limit: query.Limit,
			Pages: pages,
		},
	})
}

// GetProductByID returns a single product by its site-assigned id.
func (h *Handler) GetProductByID(c *gin.Context) {
	product, err := h.store.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Product not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to fetch product")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch product",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// GetAllCategories returns the distinct category names, sorted.
func (h *Handler) GetAllCategories(c *gin.Context) {
	categories, err := h.store.DistinctCategories(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch categories")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch categories",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    categories,
	})
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parsePositive(s string, fallback int64) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
