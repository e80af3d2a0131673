package main

// CartItem is one cart line, keyed by product.
type CartItem struct {
	ProductID   int64   `json:"productId"`
	Quantity    int     `json:"quantity"`
	ProductName string  `json:"productName"`
	UnitPrice   float64 `json:"unitPrice"`
}

// Cart is the response shape for GET /api/cart.
type Cart struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
}

// NewCart wraps items with their derived total. Items is never nil so the
// JSON always carries an array.
func NewCart(items []CartItem) Cart {
	if items == nil {
		items = []CartItem{}
	}
	var total float64
	for _, item := range items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return Cart{Items: items, Total: total}
}

// AddItemRequest is the payload for POST /api/cart/items.
type AddItemRequest struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}
