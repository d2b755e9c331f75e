// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"creditcoach/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CartClient backs the durable cart mirror.
	CartClient *redis.Client
	// CacheClient is the generic cache client (catalog responses).
	CacheClient *redis.Client
)

func newRedisClient(db int, purpose string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", purpose, err)
	}
	return client
}

// InitRedis connects every Redis client the service uses.
func InitRedis() {
	GetCartClient()
	GetCacheClient()
}

// GetCartClient returns the Redis client holding cart mirrors.
func GetCartClient() *redis.Client {
	if CartClient == nil {
		CartClient = newRedisClient(config.AppConfig.RedisCartDB, "Cart")
	}
	return CartClient
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "Cache")
	}
	return CacheClient
}

// RedisClients lists the clients that are connected, for health checks.
func RedisClients() []*redis.Client {
	var clients []*redis.Client
	for _, c := range []*redis.Client{CartClient, CacheClient} {
		if c != nil {
			clients = append(clients, c)
		}
	}
	return clients
}
