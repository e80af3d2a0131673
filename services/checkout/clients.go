package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Downstream call timeouts. A timeout is indistinguishable from an
// unreachable service as far as the saga is concerned.
const (
	cartTimeout    = 5 * time.Second
	paymentTimeout = 10 * time.Second
	orderTimeout   = 10 * time.Second
)

// CartClient talks to the session cart store.
type CartClient interface {
	Get(ctx context.Context, sessionCookie string) (*Cart, error)
	Clear(ctx context.Context, sessionCookie string) error
}

// PaymentClient talks to the payment processor.
type PaymentClient interface {
	Charge(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
}

// OrderClient talks to the order ledger.
type OrderClient interface {
	Create(ctx context.Context, req CreateOrderRequest) (*Order, error)
}

// newRequest builds a resty request carrying the caller's trace context as
// W3C traceparent/tracestate headers. Every hop of the saga goes through
// here; this propagation is the whole point of the exercise.
func newRequest(ctx context.Context, client *resty.Client) *resty.Request {
	r := client.R().SetContext(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(r.Header))
	return r
}

type cartClient struct {
	http *resty.Client
}

// NewCartClient builds the cart store client.
func NewCartClient(baseURL string) CartClient {
	return &cartClient{
		http: resty.New().SetBaseURL(baseURL).SetTimeout(cartTimeout),
	}
}

func (c *cartClient) Get(ctx context.Context, sessionCookie string) (*Cart, error) {
	r := newRequest(ctx, c.http)
	if sessionCookie != "" {
		r.SetHeader("Cookie", sessionCookie)
	}

	resp, err := r.Get("/api/cart")
	if err != nil {
		return nil, fmt.Errorf("cart service: %w: %s", ErrServiceUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("cart service returned %d: %w", resp.StatusCode(), ErrServiceUnavailable)
	}

	var cart Cart
	if err := json.Unmarshal(resp.Body(), &cart); err != nil {
		return nil, fmt.Errorf("decoding cart response: %w", err)
	}
	return &cart, nil
}

func (c *cartClient) Clear(ctx context.Context, sessionCookie string) error {
	r := newRequest(ctx, c.http)
	if sessionCookie != "" {
		r.SetHeader("Cookie", sessionCookie)
	}

	resp, err := r.Delete("/api/cart")
	if err != nil {
		return fmt.Errorf("cart service: %w: %s", ErrServiceUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("cart service returned %d: %w", resp.StatusCode(), ErrServiceUnavailable)
	}
	return nil
}

type paymentClient struct {
	http *resty.Client
}

// NewPaymentClient builds the payment processor client.
func NewPaymentClient(baseURL string) PaymentClient {
	return &paymentClient{
		http: resty.New().SetBaseURL(baseURL).SetTimeout(paymentTimeout),
	}
}

func (c *paymentClient) Charge(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	resp, err := newRequest(ctx, c.http).SetBody(req).Post("/api/payment")
	if err != nil {
		return nil, fmt.Errorf("payment service: %w: %s", ErrServiceUnavailable, err)
	}

	var result PaymentResult
	// The processor answers 402 with a body describing the decline; decode
	// before looking at the status so the reason survives.
	if decodeErr := json.Unmarshal(resp.Body(), &result); decodeErr != nil && resp.StatusCode() == http.StatusOK {
		return nil, fmt.Errorf("decoding payment response: %w", decodeErr)
	}

	switch {
	case resp.StatusCode() == http.StatusOK && result.Success:
		return &result, nil
	case resp.StatusCode() == http.StatusPaymentRequired || !result.Success && resp.StatusCode() == http.StatusOK:
		return nil, &DeclinedError{Reason: result.Reason}
	default:
		return nil, fmt.Errorf("payment service returned %d: %w", resp.StatusCode(), ErrServiceUnavailable)
	}
}

type orderClient struct {
	http *resty.Client
}

// NewOrderClient builds the order ledger client.
func NewOrderClient(baseURL string) OrderClient {
	return &orderClient{
		http: resty.New().SetBaseURL(baseURL).SetTimeout(orderTimeout),
	}
}

func (c *orderClient) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	resp, err := newRequest(ctx, c.http).SetBody(req).Post("/api/orders")
	if err != nil {
		return nil, fmt.Errorf("order service: %w: %s", ErrServiceUnavailable, err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return nil, fmt.Errorf("order service returned %d: %w", resp.StatusCode(), ErrServiceUnavailable)
	}

	var order Order
	if err := json.Unmarshal(resp.Body(), &order); err != nil {
		return nil, fmt.Errorf("decoding order response: %w", err)
	}
	return &order, nil
}
