package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

var (
	rdb    atomic.Pointer[redis.Client]
	locker atomic.Pointer[redislock.Client]
)

func GetRedisDB() *redis.Client {
	return rdb.Load()
}

// GetRedisLock returns nil until redis is connected.
func GetRedisLock() *redislock.Client {
	return locker.Load()
}

// RedisConfigured reports whether REDIS_ADDRESS is set.
func RedisConfigured() bool {
	return strings.TrimSpace(os.Getenv("REDIS_ADDRESS")) != ""
}

// ConnectRedisWithRetry connects and sets the global Redis client + lock client.
// Redis is optional: with REDIS_ADDRESS unset the rebuild lock stays process-local.
// maxAttempts <= 0 retries until ctx is done; the server runs it that way in the
// background, one-shot tools pass a small cap.
func ConnectRedisWithRetry(ctx context.Context, maxAttempts int) error {
	redisAddr := strings.TrimSpace(os.Getenv("REDIS_ADDRESS"))
	if redisAddr == "" {
		log.Printf("REDIS_ADDRESS not set; rebuild runs are serialized per process only")
		return nil
	}

	var attempt int
	for {
		attempt++
		client := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		})
		err := client.Ping(ctx).Err()
		if err == nil {
			rdb.Store(client)
			locker.Store(redislock.New(client))
			log.Printf("connected to redis (attempt=%d addr=%s)", attempt, redisAddr)
			return nil
		}
		_ = client.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if maxAttempts > 0 && attempt >= maxAttempts {
			return fmt.Errorf("redis %s unreachable after %d attempt(s): %w", redisAddr, attempt, err)
		}
		log.Printf("failed to connect redis (attempt=%d addr=%s): %v; retrying in %s", attempt, redisAddr, err, retryDelay(attempt))
		timer := time.NewTimer(retryDelay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// CloseRedis closes the client if one was connected.
func CloseRedis() {
	if c := rdb.Swap(nil); c != nil {
		locker.Store(nil)
		_ = c.Close()
	}
}
