package database

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is nil when Redis is unreachable; callers fall back to the database.
var Cache *redis.Client

func ConnectRedis(addr string) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis unavailable at %s, caching disabled: %v", addr, err)
		return
	}

	Cache = client
	log.Println("✅ Redis connected")
}
