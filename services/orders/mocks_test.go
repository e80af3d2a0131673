package main

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRepository implements Repository for tests.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateOrder(ctx context.Context, order *Order, items []OrderItem) (int64, error) {
	args := m.Called(ctx, order, items)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *MockRepository) AppendEvent(ctx context.Context, orderID int64, eventType, eventData string) error {
	args := m.Called(ctx, orderID, eventType, eventData)
	return args.Error(0)
}

func (m *MockRepository) GetOrder(ctx context.Context, orderID int64) (*OrderDetails, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OrderDetails), args.Error(1)
}

// MockCatalog implements CatalogClient for tests.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

// MockFulfillment records processed order ids on a channel so tests can wait
// for the fire-and-forget notification.
type MockFulfillment struct {
	processed chan int64
	err       error
}

func NewMockFulfillment() *MockFulfillment {
	return &MockFulfillment{processed: make(chan int64, 1)}
}

func (m *MockFulfillment) Process(ctx context.Context, orderID int64) error {
	m.processed <- orderID
	return m.err
}
