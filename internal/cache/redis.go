package cache

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keys
const (
	RegistryStatsKey = "registry:stats"
	JobSummaryKeyFmt = "dataquality:summary:%s"
)

var client *redis.Client

// Init initializes the Redis connection. The cache degrades gracefully:
// when Redis is unreachable every lookup is a miss.
func Init() error {
	host := os.Getenv("REDIS_SERVICE_HOST")
	if host == "" {
		host = "redis"
	}
	port := os.Getenv("REDIS_SERVICE_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client (nil when disabled)
func GetClient() *redis.Client {
	return client
}

// GetCachedRegistryStats returns the cached registry stats payload if present
func GetCachedRegistryStats(ctx context.Context) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, RegistryStatsKey).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// CacheRegistryStats caches registry stats for 5 minutes
func CacheRegistryStats(ctx context.Context, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, RegistryStatsKey, data, 5*time.Minute)
}

// InvalidateRegistryStats clears the stats cache (after merges or imports)
func InvalidateRegistryStats(ctx context.Context) {
	if client == nil {
		return
	}
	client.Del(ctx, RegistryStatsKey)
}

// CacheJobSummary stores the last summary of a data-quality job run
func CacheJobSummary(ctx context.Context, job string, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, fmt.Sprintf(JobSummaryKeyFmt, job), data, 24*time.Hour)
}

// GetCachedJobSummary returns the last summary of a data-quality job run
func GetCachedJobSummary(ctx context.Context, job string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, fmt.Sprintf(JobSummaryKeyFmt, job)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}
