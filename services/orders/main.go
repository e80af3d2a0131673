package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/cosmiccoffee/cosmic-coffee/pkg/logger"
	"github.com/cosmiccoffee/cosmic-coffee/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	tel, err := telemetry.Init(ctx, getEnv("SERVICE_NAME", "orders-service"))
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			log.Printf("error shutting down telemetry: %v", err)
		}
	}()

	zlog, err := logger.New("orders")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	dbPool, err := initDB(ctx, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}
	defer dbPool.Close()

	if err := runMigrations(zlog); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}

	faultRate := getEnvFloat("FAULT_INJECTION_RATE", 0)
	if faultRate > 0 {
		zlog.Warn("fault injection enabled", zap.Float64("rate", faultRate))
	}

	fulfillmentDelay := getEnvDuration("FULFILLMENT_DELAY", 2*time.Second)

	tracer := tel.Tracer()
	repository := NewOrderRepository(dbPool, faultRate, nil)
	catalog := NewCatalogClient(getEnv("PRODUCTS_SERVICE_URL", "http://products-service:4004"))
	fulfillment := NewFulfillmentProcessor(repository, fulfillmentDelay, tracer, zlog)
	useCase := NewOrderUseCase(repository, catalog, fulfillment, tracer, zlog)
	handler := NewOrderHandler(useCase, tracer)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(getEnv("SERVICE_NAME", "orders-service")))

	r.GET("/health", handler.HealthCheck)
	r.POST("/api/orders", handler.CreateOrder)
	r.GET("/api/orders/:id", handler.GetOrder)

	port := getEnv("PORT", "4003")
	zlog.Info("orders service listening", zap.String("port", port))

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

func initDB(ctx context.Context, zlog *zap.Logger) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DATABASE_USER", "postgres"),
		getEnv("DATABASE_PASSWORD", "postgres"),
		getEnv("DATABASE_HOST", "localhost"),
		getEnv("DATABASE_PORT", "5432"),
		getEnv("DATABASE_NAME", "orders_db"),
	)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	config.MaxConns = 10
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			zlog.Info("connected to orders database")
			return pool, nil
		}
		zlog.Info("waiting for database", zap.Int("attempt", i+1))
		time.Sleep(time.Second)
	}

	pool.Close()
	return nil, fmt.Errorf("database not reachable after 30 attempts")
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
