package main

import (
	"encoding/json"
	"fmt"
)

// CheckoutRequest is the inbound checkout payload.
type CheckoutRequest struct {
	CustomerName  string `json:"customerName" binding:"required"`
	CustomerEmail string `json:"customerEmail" binding:"required,email"`
}

// CheckoutResponse is returned to the storefront on success.
type CheckoutResponse struct {
	Success       bool    `json:"success"`
	OrderID       int64   `json:"orderId"`
	TotalAmount   float64 `json:"totalAmount"`
	TransactionID string  `json:"transactionId"`
}

// CheckoutResult carries the outcome of a completed saga.
type CheckoutResult struct {
	OrderID       int64
	TotalAmount   float64
	TransactionID string
}

// Cart is the normalized view of the cart service response. The cart service
// has been rewritten more than once in different stacks, so payloads arrive in
// either camelCase or PascalCase; both are normalized here, at the boundary,
// and nowhere else.
type Cart struct {
	Items []CartItem
	Total float64
}

// CartItem is one normalized cart line.
type CartItem struct {
	ProductID   int64
	Quantity    int
	ProductName string
	UnitPrice   float64
}

// UnmarshalJSON accepts `items`/`total` as well as `Items`/`Total`.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if itemsRaw, ok := pickRaw(raw, "items", "Items"); ok {
		if err := json.Unmarshal(itemsRaw, &c.Items); err != nil {
			return fmt.Errorf("decoding cart items: %w", err)
		}
	}

	total, _, err := pickNumber(raw, "total", "Total")
	if err != nil {
		return fmt.Errorf("decoding cart total: %w", err)
	}
	c.Total = total
	return nil
}

// UnmarshalJSON accepts camelCase and PascalCase item fields, including the
// `price` alias some cart versions use instead of `unitPrice`.
func (i *CartItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	productID, _, err := pickNumber(raw, "productId", "ProductId", "ProductID")
	if err != nil {
		return fmt.Errorf("decoding productId: %w", err)
	}
	i.ProductID = int64(productID)

	quantity, _, err := pickNumber(raw, "quantity", "Quantity")
	if err != nil {
		return fmt.Errorf("decoding quantity: %w", err)
	}
	i.Quantity = int(quantity)

	price, _, err := pickNumber(raw, "unitPrice", "UnitPrice", "price", "Price")
	if err != nil {
		return fmt.Errorf("decoding price: %w", err)
	}
	i.UnitPrice = price

	if nameRaw, ok := pickRaw(raw, "productName", "ProductName"); ok {
		if err := json.Unmarshal(nameRaw, &i.ProductName); err != nil {
			return fmt.Errorf("decoding productName: %w", err)
		}
	}
	return nil
}

func pickRaw(raw map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, key := range keys {
		if v, ok := raw[key]; ok && string(v) != "null" {
			return v, true
		}
	}
	return nil, false
}

func pickNumber(raw map[string]json.RawMessage, keys ...string) (float64, bool, error) {
	v, ok := pickRaw(raw, keys...)
	if !ok {
		return 0, false, nil
	}
	var n float64
	if err := json.Unmarshal(v, &n); err != nil {
		return 0, true, err
	}
	return n, true, nil
}

// ComputedTotal prefers the total reported by the cart service and falls back
// to summing the lines when it is absent.
func (c *Cart) ComputedTotal() float64 {
	if c.Total > 0 {
		return c.Total
	}
	var total float64
	for _, item := range c.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// IsEmpty reports whether there is anything to check out.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// PaymentRequest is the outbound payment service payload.
type PaymentRequest struct {
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	Amount        float64 `json:"amount"`
}

// PaymentResult is the payment service response.
type PaymentResult struct {
	Success       bool    `json:"success"`
	TransactionID string  `json:"transactionId,omitempty"`
	Reason        string  `json:"reason,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
}

// OrderItemRequest is one order line sent to the order ledger. Price is
// deliberately absent: the ledger re-resolves it from the catalog.
type OrderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// CreateOrderRequest is the outbound order ledger payload.
type CreateOrderRequest struct {
	CustomerName  string             `json:"customerName"`
	CustomerEmail string             `json:"customerEmail"`
	Items         []OrderItemRequest `json:"items"`
}

// Order is the ledger's view of a created order.
type Order struct {
	ID            int64   `json:"id"`
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	TotalAmount   float64 `json:"totalAmount"`
	Status        string  `json:"status"`
}
