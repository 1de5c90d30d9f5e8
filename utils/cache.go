// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"carhub/config"

	"github.com/go-redis/redis/v8"
)

var (
	// SessionCacheClient is the dedicated client for auth session storage.
	SessionCacheClient *redis.Client
	// FormCacheClient is the dedicated client for booking form sessions.
	FormCacheClient *redis.Client
)

// InitSessionCache initializes the Redis client holding auth sessions.
func InitSessionCache() {
	SessionCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSessionDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := SessionCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Sessions): %v", err)
	}
}

// GetSessionCacheClient returns the Redis client for auth sessions.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		InitSessionCache()
	}
	return SessionCacheClient
}

// InitFormCache initializes the Redis client holding booking form sessions.
func InitFormCache() {
	FormCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisFormDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := FormCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Forms): %v", err)
	}
}

// GetFormCacheClient returns the Redis client for booking form sessions.
func GetFormCacheClient() *redis.Client {
	if FormCacheClient == nil {
		InitFormCache()
	}
	return FormCacheClient
}
