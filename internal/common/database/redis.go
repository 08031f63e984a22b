package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trip-planner/internal/common/config"
)

const (
	redisDialTimeout = 5 * time.Second
	redisIOTimeout   = 3 * time.Second
	redisPoolSize    = 10
)

// Options maps the result store settings onto go-redis options.
// The store only issues single-key SET/GET, so the pool stays small.
func Options(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  redisDialTimeout,
		ReadTimeout:  redisIOTimeout,
		WriteTimeout: redisIOTimeout,
		PoolSize:     redisPoolSize,
		MinIdleConns: 2,
	}
}

// RedisClient is the connection behind the token result store.
type RedisClient struct {
	Client *redis.Client
	addr   string
}

// NewRedis does not dial; call Ping to verify the address.
func NewRedis(cfg config.RedisConfig) *RedisClient {
	return &RedisClient{Client: redis.NewClient(Options(cfg)), addr: cfg.Address}
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", c.addr, err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}
