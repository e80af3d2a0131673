package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/cosmiccoffee/cosmic-coffee/pkg/logger"
	"github.com/cosmiccoffee/cosmic-coffee/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	tel, err := telemetry.Init(ctx, getEnv("SERVICE_NAME", "checkout-service"))
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			log.Printf("error shutting down telemetry: %v", err)
		}
	}()

	zlog, err := logger.New("checkout")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	metrics, err := newCheckoutMetrics(otel.Meter("checkout-service"))
	if err != nil {
		zlog.Fatal("failed to create metrics", zap.Error(err))
	}

	carts := NewCartClient(getEnv("CART_SERVICE_URL", "http://cart-service:4001"))
	payments := NewPaymentClient(getEnv("PAYMENT_SERVICE_URL", "http://payment-service:4002"))
	orders := NewOrderClient(getEnv("ORDER_SERVICE_URL", "http://orders-service:4003"))

	tracer := tel.Tracer()
	useCase := NewCheckoutUseCase(carts, payments, orders, tracer, zlog, metrics)
	handler := NewCheckoutHandler(useCase, tracer)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(getEnv("SERVICE_NAME", "checkout-service")))

	r.GET("/health", handler.HealthCheck)
	r.POST("/api/checkout", handler.Checkout)

	port := getEnv("PORT", "4000")
	zlog.Info("checkout service listening", zap.String("port", port))

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
