package main

import (
	"errors"
	"net/http"

	"github.com/cosmiccoffee/cosmic-coffee/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sessionCookie = "session_id"

// sessionID returns the caller's session, issuing a new cookie on first
// touch. The cookie lifetime mirrors the cart's idle TTL.
func sessionID(c *gin.Context) string {
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		return id
	}
	id := uuid.New().String()
	c.SetCookie(sessionCookie, id, int(cartTTL.Seconds()), "/", "", false, true)
	return id
}

// CartHandler exposes the session cart over HTTP.
type CartHandler struct {
	store   Store
	catalog CatalogClient
	log     *zap.Logger
}

// NewCartHandler builds the handler.
func NewCartHandler(store Store, catalog CatalogClient, log *zap.Logger) *CartHandler {
	return &CartHandler{store: store, catalog: catalog, log: log}
}

// GetCart handles GET /api/cart.
func (h *CartHandler) GetCart(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := h.store.Get(ctx, sessionID(c))
	if err != nil {
		logger.Error(ctx, h.log, "failed to read cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read cart"})
		return
	}

	c.JSON(http.StatusOK, NewCart(items))
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(c *gin.Context) {
	ctx := c.Request.Context()

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error(ctx, h.log, "failed to resolve product",
			zap.Int64("product_id", req.ProductID),
			zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "products service unavailable"})
		return
	}

	session := sessionID(c)
	item := CartItem{
		ProductID:   product.ID,
		Quantity:    req.Quantity,
		ProductName: product.Name,
		UnitPrice:   product.Price,
	}
	if err := h.store.Add(ctx, session, item); err != nil {
		logger.Error(ctx, h.log, "failed to add cart item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add item"})
		return
	}

	items, err := h.store.Get(ctx, session)
	if err != nil {
		logger.Error(ctx, h.log, "failed to read cart after add", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read cart"})
		return
	}
	c.JSON(http.StatusOK, NewCart(items))
}

// ClearCart handles DELETE /api/cart.
func (h *CartHandler) ClearCart(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.store.Clear(ctx, sessionID(c)); err != nil {
		logger.Error(ctx, h.log, "failed to clear cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// HealthCheck handles GET /health.
func (h *CartHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "cart"})
}
