package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Approved classes shown in the public catalog.
	KeyCatalog = "catalog:classes"

	// Approved archive listing.
	KeyApprovedArchive = "catalog:approved"

	// Single class detail: catalog:class:{class_id}
	KeyClass = "catalog:class:%s"
)

// ClassKey returns the detail key of a class.
func ClassKey(classID string) string {
	return fmt.Sprintf(KeyClass, classID)
}

// Cache stores JSON encoded values. Implementations treat a miss as
// (false, nil); errors mean the cache itself failed.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// RedisCache is a Cache backed by redis.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisClient creates a client for addr.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

// NewRedisCache wraps an existing client.
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Ping reports whether redis is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// Noop never stores anything.
type Noop struct{}

func (Noop) GetJSON(context.Context, string, any) (bool, error)        { return false, nil }
func (Noop) SetJSON(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Delete(context.Context, ...string) error                   { return nil }
