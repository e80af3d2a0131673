package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cosmiccoffee/cosmic-coffee/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// FulfillmentProcessor drives an order through
// pending -> processing -> completed, writing an order event per transition.
// Processing runs once per order: there are no retries and no recovery scan,
// so a crash mid-processing leaves the order in `processing` for good.
type FulfillmentProcessor struct {
	repository Repository
	delay      time.Duration
	tracer     trace.Tracer
	log        *zap.Logger
}

// NewFulfillmentProcessor builds the processor. delay simulates the work
// between transitions.
func NewFulfillmentProcessor(repository Repository, delay time.Duration, tracer trace.Tracer, log *zap.Logger) *FulfillmentProcessor {
	return &FulfillmentProcessor{
		repository: repository,
		delay:      delay,
		tracer:     tracer,
		log:        log,
	}
}

// Process advances the order's status. Any failure moves the order into the
// absorbing `error` state and appends a processing_error event.
func (p *FulfillmentProcessor) Process(ctx context.Context, orderID int64) error {
	ctx, span := p.tracer.Start(ctx, "fulfillment.process")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", orderID))

	if err := p.transition(ctx, orderID, OrderStatusProcessing, EventProcessingStarted); err != nil {
		return p.fail(ctx, span, orderID, err)
	}
	logger.Info(ctx, p.log, "order processing started", zap.Int64("order_id", orderID))

	// Simulated fulfillment work.
	time.Sleep(p.delay)

	if err := p.transition(ctx, orderID, OrderStatusCompleted, EventProcessingCompleted); err != nil {
		return p.fail(ctx, span, orderID, err)
	}
	logger.Info(ctx, p.log, "order processing completed", zap.Int64("order_id", orderID))
	return nil
}

func (p *FulfillmentProcessor) transition(ctx context.Context, orderID int64, status, eventType string) error {
	if err := p.repository.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return fmt.Errorf("updating order status to %s: %w", status, err)
	}
	eventData := fmt.Sprintf(`{"status":%q}`, status)
	if err := p.repository.AppendEvent(ctx, orderID, eventType, eventData); err != nil {
		return fmt.Errorf("appending %s event: %w", eventType, err)
	}
	return nil
}

// fail moves the order into the error state. Best effort: if even that
// fails, the order stays wherever it was, which is the documented behavior.
func (p *FulfillmentProcessor) fail(ctx context.Context, span trace.Span, orderID int64, cause error) error {
	span.RecordError(cause)
	span.SetStatus(codes.Error, "fulfillment failed")
	logger.Error(ctx, p.log, "order processing failed",
		zap.Int64("order_id", orderID),
		zap.Error(cause))

	if err := p.repository.UpdateOrderStatus(ctx, orderID, OrderStatusError); err != nil {
		logger.Error(ctx, p.log, "failed to mark order as errored",
			zap.Int64("order_id", orderID),
			zap.Error(err))
		return cause
	}
	eventData := fmt.Sprintf(`{"error":%q}`, cause.Error())
	if err := p.repository.AppendEvent(ctx, orderID, EventProcessingError, eventData); err != nil {
		logger.Error(ctx, p.log, "failed to append error event",
			zap.Int64("order_id", orderID),
			zap.Error(err))
	}
	return cause
}
