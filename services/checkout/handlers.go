package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeEmptyCart
	outcomeInvalidItem
	outcomeDeclined
	outcomeUnavailable
	outcomeInternal
)

// classify maps a saga error onto the error taxonomy: client error, payment
// declined, downstream unavailable, or unexpected.
func classify(err error) outcome {
	var declined *DeclinedError
	var invalidItem *InvalidItemError
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, ErrCartEmpty):
		return outcomeEmptyCart
	case errors.As(err, &invalidItem):
		return outcomeInvalidItem
	case errors.As(err, &declined):
		return outcomeDeclined
	case errors.Is(err, ErrServiceUnavailable):
		return outcomeUnavailable
	default:
		return outcomeInternal
	}
}

// CheckoutHandler exposes the saga over HTTP.
type CheckoutHandler struct {
	useCase *CheckoutUseCase
	tracer  trace.Tracer
}

// NewCheckoutHandler builds the handler.
func NewCheckoutHandler(useCase *CheckoutUseCase, tracer trace.Tracer) *CheckoutHandler {
	return &CheckoutHandler{useCase: useCase, tracer: tracer}
}

// Checkout handles POST /api/checkout.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "checkout")
	defer span.End()

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	span.SetAttributes(attribute.String("customer_name", req.CustomerName))

	result, err := h.useCase.Checkout(ctx, req, c.GetHeader("Cookie"))
	if err != nil {
		span.RecordError(err)
		status, message := httpError(err)
		c.JSON(status, gin.H{"success": false, "error": message})
		return
	}

	span.SetAttributes(
		attribute.Int64("order_id", result.OrderID),
		attribute.String("transaction_id", result.TransactionID),
	)

	c.JSON(http.StatusOK, CheckoutResponse{
		Success:       true,
		OrderID:       result.OrderID,
		TotalAmount:   result.TotalAmount,
		TransactionID: result.TransactionID,
	})
}

func httpError(err error) (int, string) {
	switch classify(err) {
	case outcomeEmptyCart:
		return http.StatusBadRequest, "Cart is empty"
	case outcomeInvalidItem:
		return http.StatusBadRequest, err.Error()
	case outcomeDeclined:
		return http.StatusPaymentRequired, err.Error()
	case outcomeUnavailable:
		return http.StatusServiceUnavailable, "downstream service unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// HealthCheck handles GET /health.
func (h *CheckoutHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "checkout"})
}
