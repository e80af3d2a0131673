package main

import (
	"errors"
	"fmt"
)

var (
	// ErrCartEmpty aborts the saga before any money moves.
	ErrCartEmpty = errors.New("cart is empty")

	// ErrServiceUnavailable covers unreachable downstreams and timeouts
	// alike; the caller cannot tell them apart and should not try.
	ErrServiceUnavailable = errors.New("service unavailable")
)

// DeclinedError is a payment rejected by the processor, as opposed to a
// processor that could not be reached.
type DeclinedError struct {
	Reason string
}

func (e *DeclinedError) Error() string {
	if e.Reason == "" {
		return "payment declined"
	}
	return "payment declined: " + e.Reason
}

// InvalidItemError is a cart line that cannot be turned into an order line.
// By the time this is detected the payment has already been charged; there is
// no refund path, so the charge stands as a reconciliation case.
type InvalidItemError struct {
	Index int
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("cart item %d has no product id", e.Index)
}
