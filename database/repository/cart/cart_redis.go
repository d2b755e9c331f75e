package cartRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"creditcoach/models"
	"creditcoach/services/cart"

	"github.com/go-redis/redis/v8"
)

// RedisCartRepo stores each cart as a JSON array under its key.
type RedisCartRepo struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCartRepo returns a repository writing to client. A zero ttl keeps
// carts until they are overwritten.
func NewRedisCartRepo(client *redis.Client, ttl time.Duration) *RedisCartRepo {
	return &RedisCartRepo{client: client, ttl: ttl}
}

func (r *RedisCartRepo) LoadCart(ctx context.Context, key string) ([]models.CartItem, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var items []models.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", cart.ErrCorruptCart, key, err)
	}
	return items, nil
}

func (r *RedisCartRepo) SaveCart(ctx context.Context, key string, items []models.CartItem) error {
	if len(items) == 0 {
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis del %s: %w", key, err)
		}
		return nil
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
