package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const replyCachePrefix = "reply:"

// ReplyCache stores relay replies keyed by a hash of the outbound request
type ReplyCache struct {
	client *Client
	ttl    time.Duration
}

// NewReplyCache creates a new reply cache
func NewReplyCache(client *Client, ttl time.Duration) *ReplyCache {
	return &ReplyCache{client: client, ttl: ttl}
}

// Get returns the cached reply. ok is false on a cache miss.
func (c *ReplyCache) Get(ctx context.Context, key string) (string, bool, error) {
	reply, err := c.client.rdb.Get(ctx, replyCachePrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cached reply: %w", err)
	}
	return reply, true, nil
}

// Set caches a reply
func (c *ReplyCache) Set(ctx context.Context, key, reply string) error {
	return c.client.rdb.Set(ctx, replyCachePrefix+key, reply, c.ttl).Err()
}

// FlushAll removes all cached replies
func (c *ReplyCache) FlushAll(ctx context.Context) (int64, error) {
	pattern := replyCachePrefix + "*"
	var cursor uint64
	var deleted int64

	for {
		keys, nextCursor, err := c.client.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			count, err := c.client.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += count
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}
