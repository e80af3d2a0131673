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
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	tel, err := telemetry.Init(ctx, getEnv("SERVICE_NAME", "cart-service"))
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			log.Printf("error shutting down telemetry: %v", err)
		}
	}()

	zlog, err := logger.New("cart")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		zlog.Fatal("failed to connect to redis", zap.Error(err))
	}
	zlog.Info("connected to redis")

	store := NewRedisStore(redisClient)
	catalog := NewCatalogClient(getEnv("PRODUCTS_SERVICE_URL", "http://products-service:4004"))
	handler := NewCartHandler(store, catalog, zlog)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(getEnv("SERVICE_NAME", "cart-service")))

	r.GET("/health", handler.HealthCheck)
	r.GET("/api/cart", handler.GetCart)
	r.POST("/api/cart/items", handler.AddItem)
	r.DELETE("/api/cart", handler.ClearCart)

	port := getEnv("PORT", "4001")
	zlog.Info("cart service listening", zap.String("port", port))

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
