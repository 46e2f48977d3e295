package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "catalog:listing"

// Cache keeps a snapshot of the full catalog listing in Redis so the
// search fallback does not re-fetch the whole listing on every miss.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Get returns the cached listing, or ok=false when absent, expired, or
// the snapshot fails to decode.
func (c *Cache) Get(ctx context.Context) ([]Book, bool) {
	payload, err := c.rdb.Get(ctx, cacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var books []Book
	if err := json.Unmarshal(payload, &books); err != nil {
		return nil, false
	}
	return books, true
}

func (c *Cache) Set(ctx context.Context, books []Book) error {
	payload, err := json.Marshal(books)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKey, payload, c.ttl).Err()
}
