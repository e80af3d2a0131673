package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/cosmiccoffee/cosmic-coffee/pkg/logger"
	"github.com/cosmiccoffee/cosmic-coffee/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	tel, err := telemetry.Init(ctx, getEnv("SERVICE_NAME", "payment-service"))
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			log.Printf("error shutting down telemetry: %v", err)
		}
	}()

	zlog, err := logger.New("payment")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	cfg := DefaultProcessorConfig()
	cfg.FailureRate = getEnvFloat("PAYMENT_FAILURE_RATE", cfg.FailureRate)
	cfg.SlowdownEnabled = getEnvBool("PAYMENT_SLOWDOWN_ENABLED", false)

	processor := NewProcessor(cfg, zlog)
	if cfg.SlowdownEnabled {
		zlog.Info("payment slowdown simulation enabled",
			zap.Duration("interval", cfg.SlowdownInterval),
			zap.Duration("duration", cfg.SlowdownDuration))
		go processor.MonitorSlowdowns(ctx)
	}

	handler := NewPaymentHandler(processor, tel.Tracer())

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(getEnv("SERVICE_NAME", "payment-service")))

	r.GET("/health", handler.HealthCheck)
	r.POST("/api/payment", handler.ProcessPayment)

	port := getEnv("PORT", "4002")
	zlog.Info("payment service listening", zap.String("port", port))

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zlog.Fatal("server failed", zap.Error(err))
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
