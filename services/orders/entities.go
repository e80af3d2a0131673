package main

import (
	"fmt"
	"time"
)

// Order statuses. Status starts at pending and is advanced only by the
// fulfillment processor.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusError      = "error"
)

// Order event types, one per fulfillment transition.
const (
	EventProcessingStarted   = "processing_started"
	EventProcessingCompleted = "processing_completed"
	EventProcessingError     = "processing_error"
)

// Order is a persisted order.
type Order struct {
	ID            int64     `json:"id" db:"id"`
	CustomerName  string    `json:"customerName" db:"customer_name"`
	CustomerEmail string    `json:"customerEmail" db:"customer_email"`
	TotalAmount   float64   `json:"totalAmount" db:"total_amount"`
	Status        string    `json:"status" db:"status"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// NewOrder builds a pending order.
func NewOrder(customerName, customerEmail string, totalAmount float64) *Order {
	now := time.Now()
	return &Order{
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		TotalAmount:   totalAmount,
		Status:        OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// OrderItem is one order line. Price is what the catalog said at creation
// time, resolved independently of the amount the customer was charged.
type OrderItem struct {
	ID        int64   `json:"id" db:"id"`
	OrderID   int64   `json:"orderId" db:"order_id"`
	ProductID int64   `json:"productId" db:"product_id"`
	Quantity  int     `json:"quantity" db:"quantity"`
	Price     float64 `json:"price" db:"price"`
}

// OrderEvent is an append-only fulfillment lifecycle record.
type OrderEvent struct {
	ID          int64     `json:"id" db:"id"`
	OrderID     int64     `json:"orderId" db:"order_id"`
	EventType   string    `json:"eventType" db:"event_type"`
	EventData   string    `json:"eventData" db:"event_data"`
	ProcessedAt time.Time `json:"processedAt" db:"processed_at"`
}

// CreateOrderRequest is the inbound order payload.
type CreateOrderRequest struct {
	CustomerName  string             `json:"customerName"`
	CustomerEmail string             `json:"customerEmail"`
	Items         []OrderItemRequest `json:"items"`
}

// OrderItemRequest is one requested order line. Callers do not send prices.
type OrderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// ValidationError is a request the ledger refuses outright.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks the request before anything is looked up or written.
func (r *CreateOrderRequest) Validate() error {
	if r.CustomerName == "" {
		return &ValidationError{Message: "customerName is required"}
	}
	if len(r.Items) == 0 {
		return &ValidationError{Message: "order must contain at least one item"}
	}
	for idx, item := range r.Items {
		if item.ProductID <= 0 {
			return &ValidationError{Message: fmt.Sprintf("item %d has no product id", idx)}
		}
		if item.Quantity <= 0 {
			return &ValidationError{Message: fmt.Sprintf("item %d has invalid quantity", idx)}
		}
	}
	return nil
}

// OrderDetails is the read model for GET /api/orders/:id.
type OrderDetails struct {
	Order
	Items  []OrderItem  `json:"items"`
	Events []OrderEvent `json:"events"`
}
