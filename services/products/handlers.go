package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cosmiccoffee/cosmic-coffee/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProductHandler exposes the catalog over HTTP.
type ProductHandler struct {
	repository Repository
	log        *zap.Logger
}

// NewProductHandler builds the handler.
func NewProductHandler(repository Repository, log *zap.Logger) *ProductHandler {
	return &ProductHandler{repository: repository, log: log}
}

// ListProducts handles GET /api/products.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	products, err := h.repository.ListProducts(ctx)
	if err != nil {
		logger.Error(ctx, h.log, "failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}
	if products == nil {
		products = []Product{}
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct handles GET /api/products/:id.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	ctx := c.Request.Context()

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.repository.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		logger.Error(ctx, h.log, "failed to fetch product",
			zap.Int64("product_id", productID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// HealthCheck handles GET /health.
func (h *ProductHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "products"})
}
