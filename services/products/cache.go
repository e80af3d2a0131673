package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// cachedRepository is a read-through Redis cache over by-id lookups. Cache
// problems degrade to the underlying repository, never to an error.
type cachedRepository struct {
	next        Repository
	redisClient *redis.Client
	cacheTTL    time.Duration
}

// NewCachedRepository wraps next with a Redis cache.
func NewCachedRepository(next Repository, redisClient *redis.Client) Repository {
	return &cachedRepository{
		next:        next,
		redisClient: redisClient,
		cacheTTL:    10 * time.Minute,
	}
}

func (r *cachedRepository) ListProducts(ctx context.Context) ([]Product, error) {
	return r.next.ListProducts(ctx)
}

func (r *cachedRepository) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	key := fmt.Sprintf("product:%d", productID)

	if val, err := r.redisClient.Get(ctx, key).Result(); err == nil {
		var product Product
		if err := json.Unmarshal([]byte(val), &product); err == nil {
			return &product, nil
		}
	}

	product, err := r.next.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(product); err == nil {
		r.redisClient.Set(ctx, key, data, r.cacheTTL)
	}
	return product, nil
}
