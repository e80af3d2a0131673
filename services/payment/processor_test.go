package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

func newTestProcessor(cfg ProcessorConfig) *Processor {
	p := NewProcessor(cfg, zap.NewNop())
	p.sleep = func(time.Duration) {}
	return p
}

var testPayment = PaymentRequest{CustomerName: "Ada", CustomerEmail: "ada@example.com", Amount: 7.00}

func TestProcessAlwaysSucceedsAtRateZero(t *testing.T) {
	p := newTestProcessor(ProcessorConfig{FailureRate: 0})

	result := p.Process(context.Background(), testPayment)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.TransactionID)
	assert.Equal(t, 7.00, result.Amount)
	assert.Empty(t, result.Reason)
}

func TestProcessAlwaysDeclinesAtRateOne(t *testing.T) {
	p := newTestProcessor(ProcessorConfig{FailureRate: 1})

	result := p.Process(context.Background(), testPayment)
	assert.False(t, result.Success)
	assert.Equal(t, "Insufficient funds", result.Reason)
	assert.Empty(t, result.TransactionID)
}

func TestProcessUsesInjectedRandomness(t *testing.T) {
	p := newTestProcessor(ProcessorConfig{FailureRate: 0.5})

	p.randFloat = func() float64 { return 0.4 }
	assert.False(t, p.Process(context.Background(), testPayment).Success)

	p.randFloat = func() float64 { return 0.6 }
	assert.True(t, p.Process(context.Background(), testPayment).Success)
}

func TestSlowdownWindowOpensAndCloses(t *testing.T) {
	cfg := DefaultProcessorConfig()
	cfg.SlowdownEnabled = true
	p := newTestProcessor(cfg)

	clock := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return clock }
	p.nextSlowdown = clock

	ctx := context.Background()

	// The window opens as soon as the scheduled time arrives.
	p.mu.Lock()
	p.updateSlowdownState(ctx)
	active := p.slowdownActive
	delay := p.slowdownDelay()
	p.mu.Unlock()
	assert.True(t, active)
	assert.GreaterOrEqual(t, delay, cfg.SlowdownMinDelay)
	assert.LessOrEqual(t, delay, cfg.SlowdownMaxDelay)

	// And closes after its duration, scheduling the next one.
	clock = clock.Add(cfg.SlowdownDuration)
	p.mu.Lock()
	p.updateSlowdownState(ctx)
	active = p.slowdownActive
	next := p.nextSlowdown
	delay = p.slowdownDelay()
	p.mu.Unlock()
	assert.False(t, active)
	assert.Equal(t, clock.Add(cfg.SlowdownInterval), next)
	assert.Zero(t, delay)
}

func TestSlowdownDisabledAddsNoDelay(t *testing.T) {
	p := newTestProcessor(ProcessorConfig{FailureRate: 0})

	p.mu.Lock()
	p.updateSlowdownState(context.Background())
	delay := p.slowdownDelay()
	active := p.slowdownActive
	p.mu.Unlock()

	assert.False(t, active)
	assert.Zero(t, delay)
}

func newPaymentRouter(p *Processor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewPaymentHandler(p, noop.NewTracerProvider().Tracer("test"))
	r := gin.New()
	r.POST("/api/payment", handler.ProcessPayment)
	return r
}

func postPayment(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPaymentEndpointSuccess(t *testing.T) {
	router := newPaymentRouter(newTestProcessor(ProcessorConfig{FailureRate: 0}))

	w := postPayment(router, `{"customerName":"Ada","customerEmail":"ada@example.com","amount":7.00}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result PaymentResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.TransactionID)
}

func TestPaymentEndpointDeclined(t *testing.T) {
	router := newPaymentRouter(newTestProcessor(ProcessorConfig{FailureRate: 1}))

	w := postPayment(router, `{"customerName":"Ada","amount":7.00}`)
	require.Equal(t, http.StatusPaymentRequired, w.Code)

	var result PaymentResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Equal(t, "Insufficient funds", result.Reason)
}

func TestPaymentEndpointRejectsBadPayload(t *testing.T) {
	router := newPaymentRouter(newTestProcessor(ProcessorConfig{FailureRate: 0}))

	for _, body := range []string{
		`{"customerName":"Ada"}`,
		`{"amount":7.00}`,
		`{"customerName":"Ada","amount":-1}`,
	} {
		w := postPayment(router, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
	}
}
