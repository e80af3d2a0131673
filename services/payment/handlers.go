package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PaymentHandler exposes the processor over HTTP.
type PaymentHandler struct {
	processor *Processor
	tracer    trace.Tracer
}

// NewPaymentHandler builds the handler.
func NewPaymentHandler(processor *Processor, tracer trace.Tracer) *PaymentHandler {
	return &PaymentHandler{processor: processor, tracer: tracer}
}

// ProcessPayment handles POST /api/payment. Declines answer 402 with the
// reason in the body; only transport-level problems surface as 5xx.
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "payment.process")
	defer span.End()

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(
		attribute.String("customer_name", req.CustomerName),
		attribute.Float64("payment.amount", req.Amount),
	)

	result := h.processor.Process(ctx, req)
	if !result.Success {
		span.SetAttributes(attribute.String("payment.declined_reason", result.Reason))
		c.JSON(http.StatusPaymentRequired, result)
		return
	}

	span.SetAttributes(attribute.String("payment.transaction_id", result.TransactionID))
	c.JSON(http.StatusOK, result)
}

// HealthCheck handles GET /health.
func (h *PaymentHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "payment"})
}
