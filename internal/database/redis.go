package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"rocketshoes-cart/internal/logger"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
)

var (
	redisInstance *redis.Client
	redisOnce     sync.Once
	redisErr      error
)

// RedisOptions accepts either a redis:// URL or a bare host[:port].
func RedisOptions(addr string) *redis.Options {
	if opts, err := redis.ParseURL(addr); err == nil {
		return opts
	}
	if !strings.Contains(addr, ":") {
		addr += ":6379"
	}
	return &redis.Options{
		Addr:         addr,
		MinIdleConns: 1,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		PoolTimeout:  4 * time.Second,
		IdleTimeout:  180 * time.Second,
	}
}

// RedisInstance dials once per process, retrying the initial ping with
// exponential backoff until ctx is done or attempts run out.
func RedisInstance(ctx context.Context, addr string) (*redis.Client, error) {
	redisOnce.Do(func() {
		log := logger.Instance()

		client := redis.NewClient(RedisOptions(addr))
		client.AddHook(redisotel.NewTracingHook())

		const attempts = 5
		backoff := 500 * time.Millisecond
		for i := 1; i <= attempts; i++ {
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := client.Ping(pingCtx).Err()
			cancel()
			if err == nil {
				log.Info("Connected to Redis successfully", slog.Int("attempt", i))
				redisInstance = client
				return
			}

			log.Warn("Redis ping failed",
				slog.Int("attempt", i),
				slog.String("error", err.Error()),
			)
			select {
			case <-ctx.Done():
				redisErr = ctx.Err()
				_ = client.Close()
				return
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		_ = client.Close()
		redisErr = fmt.Errorf("redis %s unreachable after %d attempts", addr, attempts)
	})

	return redisInstance, redisErr
}
