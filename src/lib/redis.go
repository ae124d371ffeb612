package lib

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// CacheValue writes a key with an explicit TTL. Purchase references and
// other short-lived lookups go through here rather than process-wide maps.
func CacheValue(ctx context.Context, key, value string, ttl time.Duration) {
	rd := GetRedisClient()
	if rd == nil {
		return
	}
	if err := rd.SetEx(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("[redis] Failed to cache value for key %s: %s\n", key, err.Error())
	}
}

func CachedValue(ctx context.Context, key string) (string, bool) {
	rd := GetRedisClient()
	if rd == nil {
		return "", false
	}
	val, err := rd.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	} else if err != nil {
		log.Printf("[redis] Error retrieving value for %s: %s\n", key, err.Error())
		return "", false
	}
	return val, true
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}
