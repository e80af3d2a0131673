package main

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/cosmiccoffee/cosmic-coffee/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentRequest is the inbound payment payload.
type PaymentRequest struct {
	CustomerName  string  `json:"customerName" binding:"required"`
	CustomerEmail string  `json:"customerEmail"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
}

// PaymentResult is the processing outcome.
type PaymentResult struct {
	Success       bool    `json:"success"`
	TransactionID string  `json:"transactionId,omitempty"`
	Reason        string  `json:"reason,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
}

// ProcessorConfig tunes the simulation.
type ProcessorConfig struct {
	// FailureRate is the probability a payment is declined.
	FailureRate float64

	// ProcessingDelay is the simulated time every payment takes.
	ProcessingDelay time.Duration

	// SlowdownEnabled switches on periodic degradation windows.
	SlowdownEnabled  bool
	SlowdownInterval time.Duration
	SlowdownDuration time.Duration
	SlowdownMinDelay time.Duration
	SlowdownMaxDelay time.Duration
}

// DefaultProcessorConfig mirrors the demo defaults: ~5% declines, half a
// second of processing, and when enabled a 5-minute slowdown window every
// 15 minutes adding 2-5s of latency.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		FailureRate:      0.05,
		ProcessingDelay:  500 * time.Millisecond,
		SlowdownInterval: 15 * time.Minute,
		SlowdownDuration: 5 * time.Minute,
		SlowdownMinDelay: 2 * time.Second,
		SlowdownMaxDelay: 5 * time.Second,
	}
}

// Processor simulates a payment gateway. Nothing is persisted; a declined
// payment and an accepted one differ only in the response.
type Processor struct {
	cfg ProcessorConfig
	log *zap.Logger

	mu             sync.Mutex
	slowdownActive bool
	slowdownStart  time.Time
	nextSlowdown   time.Time

	// Injected for deterministic tests.
	randFloat func() float64
	now       func() time.Time
	sleep     func(time.Duration)
}

// NewProcessor builds the simulator.
func NewProcessor(cfg ProcessorConfig, log *zap.Logger) *Processor {
	p := &Processor{
		cfg:       cfg,
		log:       log,
		randFloat: rand.Float64,
		now:       time.Now,
		sleep:     time.Sleep,
	}
	if cfg.SlowdownEnabled {
		p.nextSlowdown = p.now()
	}
	return p
}

// Process runs one simulated payment.
func (p *Processor) Process(ctx context.Context, req PaymentRequest) PaymentResult {
	p.mu.Lock()
	p.updateSlowdownState(ctx)
	extraDelay := p.slowdownDelay()
	p.mu.Unlock()

	if extraDelay > 0 {
		logger.Info(ctx, p.log, "slowdown delay applied",
			zap.Duration("delay", extraDelay),
			zap.String("customer_name", req.CustomerName))
		p.sleep(extraDelay)
	}

	p.sleep(p.cfg.ProcessingDelay)

	if p.randFloat() < p.cfg.FailureRate {
		logger.Warn(ctx, p.log, "payment declined",
			zap.String("customer_name", req.CustomerName),
			zap.Float64("amount", req.Amount))
		return PaymentResult{Success: false, Reason: "Insufficient funds"}
	}

	transactionID := uuid.New().String()
	logger.Info(ctx, p.log, "payment processed",
		zap.String("customer_name", req.CustomerName),
		zap.Float64("amount", req.Amount),
		zap.String("transaction_id", transactionID))

	return PaymentResult{
		Success:       true,
		TransactionID: transactionID,
		Amount:        req.Amount,
	}
}

// updateSlowdownState flips the slowdown window open or closed based on the
// clock. Callers must hold mu.
func (p *Processor) updateSlowdownState(ctx context.Context) {
	if !p.cfg.SlowdownEnabled {
		return
	}

	now := p.now()
	switch {
	case !p.slowdownActive && !p.nextSlowdown.IsZero() && !now.Before(p.nextSlowdown):
		p.slowdownActive = true
		p.slowdownStart = now
		logger.Info(ctx, p.log, "payment slowdown started",
			zap.Duration("duration", p.cfg.SlowdownDuration))
	case p.slowdownActive && now.Sub(p.slowdownStart) >= p.cfg.SlowdownDuration:
		p.slowdownActive = false
		p.nextSlowdown = now.Add(p.cfg.SlowdownInterval)
		logger.Info(ctx, p.log, "payment slowdown ended",
			zap.Time("next_slowdown", p.nextSlowdown))
	}
}

// slowdownDelay picks a random delay inside the configured range when a
// slowdown window is open. Callers must hold mu.
func (p *Processor) slowdownDelay() time.Duration {
	if !p.cfg.SlowdownEnabled || !p.slowdownActive {
		return 0
	}
	spread := p.cfg.SlowdownMaxDelay - p.cfg.SlowdownMinDelay
	return p.cfg.SlowdownMinDelay + time.Duration(p.randFloat()*float64(spread))
}

// MonitorSlowdowns keeps the slowdown state fresh between payments so the
// window opens and closes on schedule even when traffic is idle.
func (p *Processor) MonitorSlowdowns(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.mu.Lock()
			p.updateSlowdownState(ctx)
			p.mu.Unlock()
		}
	}
}
