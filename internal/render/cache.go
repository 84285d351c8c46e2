package render

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache stores rendered PDFs in Redis, keyed by document identity and its
// updated_at so a stale copy can never be served. Concurrent renders of the
// same key collapse into one.
type Cache struct {
	redis *redis.Client
	ttl   time.Duration
	group singleflight.Group
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{redis: client, ttl: ttl}
}

func (c *Cache) GetOrRender(ctx context.Context, key string, render func() ([]byte, error)) ([]byte, error) {
	if data, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		return data, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		data, err := render()
		if err != nil {
			return nil, err
		}
		// Cache write failure is not a render failure.
		_ = c.redis.Set(ctx, key, data, c.ttl).Err()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
