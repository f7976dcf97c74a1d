// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"vecindo/config"

	"github.com/go-redis/redis/v8"
)

var (
	// AuthCacheClient is the dedicated client for authorization caching.
	AuthCacheClient *redis.Client
	// PresenceClient is the dedicated client for the presence pub/sub backplane.
	PresenceClient *redis.Client
)

// InitAuthCache initializes the Redis client for authorization caching (using DB from AppConfig for auth cache).
func InitAuthCache() {
	AuthCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisAuthDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := AuthCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Auth Cache): %v", err)
	}
}

// GetAuthCacheClient returns the Redis client for authorization caching.
func GetAuthCacheClient() *redis.Client {
	if AuthCacheClient == nil {
		InitAuthCache()
	}
	return AuthCacheClient
}

// InitPresenceClient initializes the Redis client used by the presence backplane.
func InitPresenceClient() {
	PresenceClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisPresenceDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := PresenceClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Presence): %v", err)
	}
}

// GetPresenceClient returns the Redis client for the presence backplane.
func GetPresenceClient() *redis.Client {
	if PresenceClient == nil {
		InitPresenceClient()
	}
	return PresenceClient
}
