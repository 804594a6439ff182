package ledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a RowCache backed by Redis, for deployments running more
// than one instance against the same spreadsheet. Cache failures degrade
// to a miss; the worksheet read is the source of truth.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func cacheKey(class string) string {
	return "ledger:rows:" + class
}

func (c *RedisCache) Get(ctx context.Context, class string) ([]Event, bool) {
	data, err := c.client.Get(ctx, cacheKey(class)).Bytes()
	if err != nil {
		return nil, false
	}

	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, false
	}
	return events, true
}

func (c *RedisCache) Set(ctx context.Context, class string, events []Event) {
	data, err := json.Marshal(events)
	if err != nil {
		return
	}
	c.client.Set(ctx, cacheKey(class), data, c.ttl)
}

func (c *RedisCache) Invalidate(ctx context.Context, class string) {
	c.client.Del(ctx, cacheKey(class))
}

// Ping checks the Redis connection at startup.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
