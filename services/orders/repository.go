package main

import (
	"context"
	"errors"
	"math/rand"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrOrderNotFound is returned for lookups of orders that do not exist.
var ErrOrderNotFound = errors.New("order not found")

// ErrFaultInjected marks an artificially injected mid-transaction failure.
// The chaos scenarios for this system depend on the rollback it triggers.
var ErrFaultInjected = errors.New("injected fault")

// Repository defines the order ledger's database operations.
type Repository interface {
	// CreateOrder persists the order and all its items in one transaction
	// and returns the assigned order id. Either everything commits or
	// nothing does.
	CreateOrder(ctx context.Context, order *Order, items []OrderItem) (int64, error)

	// UpdateOrderStatus advances the order status.
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) error

	// AppendEvent records a fulfillment lifecycle event.
	AppendEvent(ctx context.Context, orderID int64, eventType, eventData string) error

	// GetOrder fetches an order with its items and events.
	GetOrder(ctx context.Context, orderID int64) (*OrderDetails, error)
}

// OrderRepository implements Repository on PostgreSQL. faultRate in (0,1]
// makes CreateOrder fail after the items are written but before commit,
// exercising the rollback path; 0 disables injection.
type OrderRepository struct {
	db        *pgxpool.Pool
	faultRate float64
	randFloat func() float64
}

// NewOrderRepository builds the repository. randFloat may be nil, in which
// case the package-level source is used; tests inject a deterministic one.
func NewOrderRepository(db *pgxpool.Pool, faultRate float64, randFloat func() float64) *OrderRepository {
	if randFloat == nil {
		randFloat = rand.Float64
	}
	return &OrderRepository{db: db, faultRate: faultRate, randFloat: randFloat}
}

func (r *OrderRepository) shouldFault() bool {
	return r.faultRate > 0 && r.randFloat() < r.faultRate
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order *Order, items []OrderItem) (int64, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var orderID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (customer_name, customer_email, total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, order.CustomerName, order.CustomerEmail, order.TotalAmount, order.Status, order.CreatedAt, order.UpdatedAt).Scan(&orderID)
	if err != nil {
		return 0, err
	}

	for _, item := range items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
		`, orderID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return 0, err
		}
	}

	// Fault injection point: mid-transaction, after all writes. The
	// deferred rollback undoes the order and every item.
	if r.shouldFault() {
		return 0, ErrFaultInjected
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return orderID, nil
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) AppendEvent(ctx context.Context, orderID int64, eventType, eventData string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO order_events (order_id, event_type, event_data, processed_at)
		VALUES ($1, $2, $3, NOW())
	`, orderID, eventType, eventData)
	return err
}

func (r *OrderRepository) GetOrder(ctx context.Context, orderID int64) (*OrderDetails, error) {
	var details OrderDetails
	err := r.db.QueryRow(ctx, `
		SELECT id, customer_name, customer_email, total_amount, status, created_at, updated_at
		FROM orders WHERE id = $1
	`, orderID).Scan(
		&details.ID, &details.CustomerName, &details.CustomerEmail,
		&details.TotalAmount, &details.Status, &details.CreatedAt, &details.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	itemRows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, quantity, price
		FROM order_items WHERE order_id = $1 ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var item OrderItem
		if err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		details.Items = append(details.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	eventRows, err := r.db.Query(ctx, `
		SELECT id, order_id, event_type, event_data, processed_at
		FROM order_events WHERE order_id = $1 ORDER BY processed_at, id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer eventRows.Close()
	for eventRows.Next() {
		var event OrderEvent
		if err := eventRows.Scan(&event.ID, &event.OrderID, &event.EventType, &event.EventData, &event.ProcessedAt); err != nil {
			return nil, err
		}
		details.Events = append(details.Events, event)
	}
	return &details, eventRows.Err()
}
