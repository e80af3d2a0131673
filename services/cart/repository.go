package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Carts idle out after this long without being touched.
const cartTTL = 30 * time.Minute

// Store is the session-scoped cart storage.
type Store interface {
	// Get returns the cart's items; a missing cart is an empty slice.
	Get(ctx context.Context, sessionID string) ([]CartItem, error)

	// Add merges the item into the cart, summing quantities for a product
	// already present.
	Add(ctx context.Context, sessionID string, item CartItem) error

	// Clear drops the cart. Clearing a missing cart is not an error.
	Clear(ctx context.Context, sessionID string) error
}

// RedisStore keeps each cart in a Redis hash, one field per product, with an
// idle TTL refreshed on every access.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds the store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) ([]CartItem, error) {
	key := cartKey(sessionID)

	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("reading cart: %w", err)
	}
	if len(fields) == 0 {
		return []CartItem{}, nil
	}

	items := make([]CartItem, 0, len(fields))
	for _, raw := range fields {
		var item CartItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, fmt.Errorf("decoding cart item: %w", err)
		}
		items = append(items, item)
	}
	// Hash iteration order is arbitrary; keep the response stable.
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	s.client.Expire(ctx, key, cartTTL)
	return items, nil
}

func (s *RedisStore) Add(ctx context.Context, sessionID string, item CartItem) error {
	key := cartKey(sessionID)
	field := strconv.FormatInt(item.ProductID, 10)

	existing, err := s.client.HGet(ctx, key, field).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("reading cart line: %w", err)
	}
	if err == nil {
		var current CartItem
		if err := json.Unmarshal([]byte(existing), &current); err != nil {
			return fmt.Errorf("decoding cart line: %w", err)
		}
		item.Quantity += current.Quantity
	}

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding cart line: %w", err)
	}
	if err := s.client.HSet(ctx, key, field, data).Err(); err != nil {
		return fmt.Errorf("writing cart line: %w", err)
	}
	return s.client.Expire(ctx, key, cartTTL).Err()
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}
