package main

// Product is one catalog entry. The price here is authoritative: the order
// ledger prices order lines from this catalog regardless of what the
// customer's cart said.
type Product struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description string  `json:"description" db:"description"`
	Price       float64 `json:"price" db:"price"`
	Category    string  `json:"category" db:"category"`
}
