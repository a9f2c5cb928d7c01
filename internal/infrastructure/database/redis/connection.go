// internal/infrastructure/database/redis/connection.go
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/eltech/store-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const pingTimeout = 3 * time.Second

// Client owns the shared go-redis client used by the rate limiter and the token store
type Client struct {
	rdb *redis.Client
}

// NewConnection dials redis and fails fast when it does not answer a ping
func NewConnection(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	c := &Client{rdb: redis.NewClient(options(cfg))}

	if err := c.Health(); err != nil {
		_ = c.rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.GetRedisAddr(), err)
	}

	logger.WithFields(logrus.Fields{
		"addr": cfg.GetRedisAddr(),
		"db":   cfg.Redis.DB,
		"pool": cfg.Redis.PoolSize,
	}).Info("Redis connection established")
	return c, nil
}

func options(cfg *config.Config) *redis.Options {
	return &redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  pingTimeout,
		WriteTimeout: pingTimeout,
	}
}

// GetClient returns the underlying go-redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Health pings redis
func (c *Client) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

// Close closes the pool
func (c *Client) Close() error {
	return c.rdb.Close()
}
