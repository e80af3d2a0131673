package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryStore is an in-memory Store for handler tests.
type memoryStore struct {
	mu    sync.Mutex
	carts map[string]map[int64]CartItem
	fail  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{carts: make(map[string]map[int64]CartItem)}
}

func (s *memoryStore) Get(_ context.Context, sessionID string) ([]CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	items := []CartItem{}
	for _, item := range s.carts[sessionID] {
		items = append(items, item)
	}
	return items, nil
}

func (s *memoryStore) Add(_ context.Context, sessionID string, item CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	if s.carts[sessionID] == nil {
		s.carts[sessionID] = make(map[int64]CartItem)
	}
	if existing, ok := s.carts[sessionID][item.ProductID]; ok {
		item.Quantity += existing.Quantity
	}
	s.carts[sessionID][item.ProductID] = item
	return nil
}

func (s *memoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	delete(s.carts, sessionID)
	return nil
}

type staticCatalog struct {
	products map[int64]*Product
}

func (c *staticCatalog) GetProduct(_ context.Context, productID int64) (*Product, error) {
	if p, ok := c.products[productID]; ok {
		return p, nil
	}
	return nil, ErrProductNotFound
}

func newCartRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	catalog := &staticCatalog{products: map[int64]*Product{
		1: {ID: 1, Name: "Espresso", Price: 3.50, Category: "coffee"},
		4: {ID: 4, Name: "Latte", Price: 4.25, Category: "coffee"},
	}}
	handler := NewCartHandler(store, catalog, zap.NewNop())
	r := gin.New()
	r.GET("/api/cart", handler.GetCart)
	r.POST("/api/cart/items", handler.AddItem)
	r.DELETE("/api/cart", handler.ClearCart)
	return r
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "session-abc"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetCartEmpty(t *testing.T) {
	router := newCartRouter(newMemoryStore())

	w := doJSON(router, http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, w.Code)

	var cart Cart
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.Total)
}

func TestAddItemResolvesProductAndTotals(t *testing.T) {
	router := newCartRouter(newMemoryStore())

	w := doJSON(router, http.MethodPost, "/api/cart/items", `{"productId":1,"quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code)

	var cart Cart
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Espresso", cart.Items[0].ProductName)
	assert.Equal(t, 3.50, cart.Items[0].UnitPrice)
	assert.InDelta(t, 7.00, cart.Total, 0.0001)
}

func TestAddItemMergesQuantities(t *testing.T) {
	router := newCartRouter(newMemoryStore())

	doJSON(router, http.MethodPost, "/api/cart/items", `{"productId":1,"quantity":2}`)
	w := doJSON(router, http.MethodPost, "/api/cart/items", `{"productId":1,"quantity":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	var cart Cart
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.InDelta(t, 10.50, cart.Total, 0.0001)
}

func TestAddItemUnknownProduct(t *testing.T) {
	router := newCartRouter(newMemoryStore())

	w := doJSON(router, http.MethodPost, "/api/cart/items", `{"productId":99,"quantity":1}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddItemRejectsBadPayload(t *testing.T) {
	router := newCartRouter(newMemoryStore())

	w := doJSON(router, http.MethodPost, "/api/cart/items", `{"productId":1,"quantity":0}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClearCart(t *testing.T) {
	store := newMemoryStore()
	router := newCartRouter(store)

	doJSON(router, http.MethodPost, "/api/cart/items", `{"productId":1,"quantity":2}`)
	w := doJSON(router, http.MethodDelete, "/api/cart", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cart cleared")

	w = doJSON(router, http.MethodGet, "/api/cart", "")
	var cart Cart
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	assert.Empty(t, cart.Items)
}

func TestClearCartIsIdempotent(t *testing.T) {
	router := newCartRouter(newMemoryStore())

	w := doJSON(router, http.MethodDelete, "/api/cart", "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestStoreFailureIsServerError(t *testing.T) {
	store := newMemoryStore()
	store.fail = errors.New("redis down")
	router := newCartRouter(store)

	w := doJSON(router, http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSessionCookieIssuedWhenMissing(t *testing.T) {
	router := newCartRouter(newMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, sessionCookie, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestNewCartTotals(t *testing.T) {
	cart := NewCart([]CartItem{
		{ProductID: 1, Quantity: 2, UnitPrice: 3.50},
		{ProductID: 4, Quantity: 1, UnitPrice: 4.25},
	})
	assert.InDelta(t, 11.25, cart.Total, 0.0001)

	empty := NewCart(nil)
	assert.NotNil(t, empty.Items)
	assert.Zero(t, empty.Total)
}
