package main

import (
	"context"
	"fmt"

	"github.com/cosmiccoffee/cosmic-coffee/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Fulfillment advances an order through its lifecycle after commit.
type Fulfillment interface {
	Process(ctx context.Context, orderID int64) error
}

// OrderUseCase contains the order ledger's business logic.
type OrderUseCase struct {
	repository  Repository
	catalog     CatalogClient
	fulfillment Fulfillment
	tracer      trace.Tracer
	log         *zap.Logger
}

// NewOrderUseCase wires the ledger's collaborators.
func NewOrderUseCase(
	repository Repository,
	catalog CatalogClient,
	fulfillment Fulfillment,
	tracer trace.Tracer,
	log *zap.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		repository:  repository,
		catalog:     catalog,
		fulfillment: fulfillment,
		tracer:      tracer,
		log:         log,
	}
}

// CreateOrder validates the request, prices every item from the catalog,
// persists order and items atomically and kicks off fulfillment. The
// fulfillment notification is fire-and-forget: its failure shows up in logs
// and nowhere else.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	ctx, span := uc.tracer.Start(ctx, "orders.create")
	defer span.End()

	if err := req.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("customer_name", req.CustomerName),
		attribute.Int("order.items", len(req.Items)),
	)

	products, err := uc.resolveProducts(ctx, req.Items)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "price resolution failed")
		logger.Error(ctx, uc.log, "failed to resolve item prices",
			zap.String("customer_name", req.CustomerName),
			zap.Error(err))
		return nil, err
	}

	var total float64
	items := make([]OrderItem, len(req.Items))
	for idx, item := range req.Items {
		price := products[idx].Price
		items[idx] = OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     price,
		}
		total += price * float64(item.Quantity)
	}

	order := NewOrder(req.CustomerName, req.CustomerEmail, total)
	orderID, err := uc.repository.CreateOrder(ctx, order, items)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order persistence failed")
		logger.Error(ctx, uc.log, "failed to persist order",
			zap.String("customer_name", req.CustomerName),
			zap.Error(err))
		return nil, fmt.Errorf("creating order: %w", err)
	}
	order.ID = orderID

	span.SetAttributes(attribute.Int64("order.id", orderID))
	logger.Info(ctx, uc.log, "order created",
		zap.Int64("order_id", orderID),
		zap.Float64("total_amount", total))

	// Detached so neither the caller's deadline nor a client disconnect can
	// touch fulfillment; the order is already committed.
	notifyCtx := context.WithoutCancel(ctx)
	go func() {
		if err := uc.fulfillment.Process(notifyCtx, orderID); err != nil {
			logger.Error(notifyCtx, uc.log, "fulfillment processing failed",
				zap.Int64("order_id", orderID),
				zap.Error(err))
		}
	}()

	return order, nil
}

// GetOrder returns an order with its items and lifecycle events.
func (uc *OrderUseCase) GetOrder(ctx context.Context, orderID int64) (*OrderDetails, error) {
	return uc.repository.GetOrder(ctx, orderID)
}

type productResult struct {
	idx     int
	product *Product
	err     error
}

// resolveProducts looks up every item's product concurrently. There is no
// ordering dependency between items, so results are merged as they arrive.
func (uc *OrderUseCase) resolveProducts(ctx context.Context, items []OrderItemRequest) ([]*Product, error) {
	ctx, span := uc.tracer.Start(ctx, "orders.resolve_prices")
	defer span.End()

	results := make(chan productResult, len(items))
	for idx, item := range items {
		go func(idx int, productID int64) {
			product, err := uc.catalog.GetProduct(ctx, productID)
			results <- productResult{idx: idx, product: product, err: err}
		}(idx, item.ProductID)
	}

	products := make([]*Product, len(items))
	var firstErr error
	for range items {
		res := <-results
		if res.err != nil && firstErr == nil {
			firstErr = res.err
			continue
		}
		products[res.idx] = res.product
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return products, nil
}
