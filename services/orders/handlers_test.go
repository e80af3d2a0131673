package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newOrdersRouter(repo Repository, catalog CatalogClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewOrderHandler(
		newTestUseCase(repo, catalog, NewMockFulfillment()),
		noop.NewTracerProvider().Tracer("test"),
	)
	r := gin.New()
	r.POST("/api/orders", handler.CreateOrder)
	r.GET("/api/orders/:id", handler.GetOrder)
	return r
}

func TestCreateOrderEndpoint(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	catalog.On("GetProduct", mock.Anything, int64(1)).
		Return(&Product{ID: 1, Price: 3.50}, nil)
	repo.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
		Return(int64(42), nil)

	body := `{"customerName":"Ada","customerEmail":"ada@example.com","items":[{"productId":1,"quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newOrdersRouter(repo, catalog).ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":42`)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
}

func TestCreateOrderEndpointValidation(t *testing.T) {
	body := `{"customerName":"Ada","customerEmail":"ada@example.com","items":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newOrdersRouter(new(MockRepository), new(MockCatalog)).ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrderEndpointPersistenceFailure(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	catalog.On("GetProduct", mock.Anything, mock.Anything).
		Return(&Product{ID: 1, Price: 3.50}, nil)
	repo.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
		Return(int64(0), ErrFaultInjected)

	body := `{"customerName":"Ada","customerEmail":"ada@example.com","items":[{"productId":1,"quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newOrdersRouter(repo, catalog).ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetOrderEndpointNotFound(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetOrder", mock.Anything, int64(999)).Return(nil, ErrOrderNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/999", nil)
	w := httptest.NewRecorder()
	newOrdersRouter(repo, new(MockCatalog)).ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOrderEndpoint(t *testing.T) {
	repo := new(MockRepository)
	details := &OrderDetails{
		Order:  Order{ID: 42, CustomerName: "Ada", Status: OrderStatusCompleted},
		Items:  []OrderItem{{OrderID: 42, ProductID: 1, Quantity: 2, Price: 3.50}},
		Events: []OrderEvent{{OrderID: 42, EventType: EventProcessingCompleted}},
	}
	repo.On("GetOrder", mock.Anything, int64(42)).Return(details, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/42", nil)
	w := httptest.NewRecorder()
	newOrdersRouter(repo, new(MockCatalog)).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)
	assert.Contains(t, w.Body.String(), `"eventType":"processing_completed"`)
}
