package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns a client for the optional report cache, or nil when
// REDIS_ADDR is unset or the server does not answer. The service runs
// without the cache in that case.
func ConnectRedis(ctx context.Context, cfg *Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
		PoolSize: 20,
	})

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		GetLogger().WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis unavailable, report cache disabled")
		rdb.Close()
		return nil
	}
	GetLogger().WithField("addr", cfg.RedisAddr).Info("connected to redis")
	return rdb
}
