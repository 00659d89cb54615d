package config

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetupRedis connects the ephemeral cache client and verifies the
// connection. Round state survives without it, but broadcasts, pause
// bookkeeping and heartbeat tracking depend on it.
func SetupRedis(url string) *redis.Client {
	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("[FATAL] Invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("[FATAL] Failed to connect to redis: %v", err)
	}
	return rdb
}
