package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const responseCachePrefix = "gradeoverlay:query:"

// ResponseCache keeps rendered storefront query bodies for a short TTL
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ResponseCache{client: client, ttl: ttl}
}

func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, responseCachePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *ResponseCache) Set(ctx context.Context, key string, body []byte) error {
	return c.client.Set(ctx, responseCachePrefix+key, body, c.ttl).Err()
}
