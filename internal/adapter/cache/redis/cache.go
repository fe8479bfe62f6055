package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
	"github.com/Kaybarax/todo-list-turborepo-sub002/pkg/config"
)

const scanCount = 100

type Cache struct {
	rdb *redis.Client
}

var _ port.Cache = (*Cache)(nil)

// New connects to the configured server and fails if it does not answer PING.
func New(ctx context.Context, cfg config.CacheConfig) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Cache{rdb: rdb}, nil
}

func NewFromClient(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	return b, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

// DeletePattern walks the keyspace with SCAN so the server is never blocked by
// KEYS. Matches are collected before deleting because removing keys mid-scan
// can make the cursor skip entries.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	var keys []string

	iter := c.rdb.Scan(ctx, 0, pattern, scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return err
	}

	for start := 0; start < len(keys); start += scanCount {
		end := min(start+scanCount, len(keys))

		if err := c.rdb.Unlink(ctx, keys[start:end]...).Err(); err != nil {
			return err
		}
	}

	return nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}
