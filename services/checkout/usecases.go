package main

import (
	"context"
	"time"

	"github.com/cosmiccoffee/cosmic-coffee/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CheckoutUseCase runs the checkout saga: cart -> payment -> order -> cart
// clear, in that order, one attempt per step, no compensation. A failure
// after the payment step leaves the charge in place; that is surfaced to the
// caller and logged as a reconciliation case, never rolled back here.
type CheckoutUseCase struct {
	carts    CartClient
	payments PaymentClient
	orders   OrderClient
	tracer   trace.Tracer
	log      *zap.Logger
	metrics  *checkoutMetrics
}

// NewCheckoutUseCase wires the saga's collaborators.
func NewCheckoutUseCase(
	carts CartClient,
	payments PaymentClient,
	orders OrderClient,
	tracer trace.Tracer,
	log *zap.Logger,
	metrics *checkoutMetrics,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		carts:    carts,
		payments: payments,
		orders:   orders,
		tracer:   tracer,
		log:      log,
		metrics:  metrics,
	}
}

// Checkout executes the saga for one customer. sessionCookie is forwarded
// verbatim to the cart store so the right session's cart is read and cleared.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, req CheckoutRequest, sessionCookie string) (result *CheckoutResult, err error) {
	started := time.Now()
	defer func() {
		uc.metrics.record(ctx, outcomeOf(err), time.Since(started))
	}()

	// Step 1: fetch the cart.
	cart, err := uc.fetchCart(ctx, sessionCookie)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		logger.Warn(ctx, uc.log, "checkout attempted with empty cart",
			zap.String("customer_name", req.CustomerName))
		return nil, ErrCartEmpty
	}

	// Step 2: the total charged is the cart's view of the world. The order
	// ledger re-prices items from the catalog on its side, so the two can
	// diverge; that divergence is a documented property of this system.
	total := cart.ComputedTotal()

	// Step 3: charge payment.
	payment, err := uc.chargePayment(ctx, req, total)
	if err != nil {
		return nil, err
	}

	// Money has moved. From here on the inbound request must not be able to
	// cancel the flow: a disconnected client still gets their order created.
	ctx = context.WithoutCancel(ctx)

	// Step 4: create the order. Prices are not forwarded; the ledger
	// resolves them from the catalog.
	order, err := uc.createOrder(ctx, req, cart, payment)
	if err != nil {
		return nil, err
	}

	// Step 5: clear the cart. Best effort; the order exists either way.
	if clearErr := uc.clearCart(ctx, sessionCookie); clearErr != nil {
		logger.Warn(ctx, uc.log, "cart clear failed after successful order",
			zap.Int64("order_id", order.ID),
			zap.Error(clearErr))
	}

	logger.Info(ctx, uc.log, "checkout completed",
		zap.Int64("order_id", order.ID),
		zap.Float64("total_amount", total),
		zap.String("transaction_id", payment.TransactionID))

	return &CheckoutResult{
		OrderID:       order.ID,
		TotalAmount:   total,
		TransactionID: payment.TransactionID,
	}, nil
}

func (uc *CheckoutUseCase) fetchCart(ctx context.Context, sessionCookie string) (*Cart, error) {
	ctx, span := uc.tracer.Start(ctx, "checkout.fetch_cart")
	defer span.End()

	cart, err := uc.carts.Get(ctx, sessionCookie)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cart fetch failed")
		logger.Error(ctx, uc.log, "failed to fetch cart", zap.Error(err))
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("cart.items", len(cart.Items)),
		attribute.Float64("cart.total", cart.ComputedTotal()),
	)
	return cart, nil
}

func (uc *CheckoutUseCase) chargePayment(ctx context.Context, req CheckoutRequest, total float64) (*PaymentResult, error) {
	ctx, span := uc.tracer.Start(ctx, "checkout.charge_payment")
	defer span.End()

	span.SetAttributes(attribute.Float64("payment.amount", total))

	payment, err := uc.payments.Charge(ctx, PaymentRequest{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Amount:        total,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "payment failed")
		logger.Warn(ctx, uc.log, "payment not accepted",
			zap.String("customer_name", req.CustomerName),
			zap.Float64("amount", total),
			zap.Error(err))
		return nil, err
	}

	span.SetAttributes(attribute.String("payment.transaction_id", payment.TransactionID))
	return payment, nil
}

func (uc *CheckoutUseCase) createOrder(ctx context.Context, req CheckoutRequest, cart *Cart, payment *PaymentResult) (*Order, error) {
	ctx, span := uc.tracer.Start(ctx, "checkout.create_order")
	defer span.End()

	items := make([]OrderItemRequest, 0, len(cart.Items))
	for idx, item := range cart.Items {
		if item.ProductID <= 0 {
			// The charge already went through and there is no refund
			// path. Known defect of this flow, kept as-is.
			err := &InvalidItemError{Index: idx}
			span.RecordError(err)
			span.SetStatus(codes.Error, "invalid cart item after payment")
			logger.Error(ctx, uc.log, "cart item invalid after payment was charged",
				zap.String("customer_name", req.CustomerName),
				zap.String("transaction_id", payment.TransactionID),
				zap.Int("item_index", idx))
			return nil, err
		}
		items = append(items, OrderItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := uc.orders.Create(ctx, CreateOrderRequest{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Items:         items,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order creation failed")
		// Charged but not ordered. Nothing here can fix that; make sure
		// the log record carries enough to reconcile by hand.
		logger.Error(ctx, uc.log, "order creation failed after payment succeeded",
			zap.String("customer_name", req.CustomerName),
			zap.String("transaction_id", payment.TransactionID),
			zap.Error(err))
		return nil, err
	}

	span.SetAttributes(attribute.Int64("order.id", order.ID))
	return order, nil
}

func (uc *CheckoutUseCase) clearCart(ctx context.Context, sessionCookie string) error {
	ctx, span := uc.tracer.Start(ctx, "checkout.clear_cart")
	defer span.End()

	if err := uc.carts.Clear(ctx, sessionCookie); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func outcomeOf(err error) string {
	switch classify(err) {
	case outcomeSuccess:
		return "success"
	case outcomeEmptyCart:
		return "empty_cart"
	case outcomeDeclined:
		return "declined"
	case outcomeInvalidItem:
		return "invalid_item"
	case outcomeUnavailable:
		return "unavailable"
	default:
		return "error"
	}
}
