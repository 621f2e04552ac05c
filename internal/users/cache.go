package users

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a best-effort Redis read cache for the identify path, where
// every request resolves a bearer subject to a user record. All methods
// are nil-safe so the cache can be disabled by simply not constructing
// one. Login invalidates before upserting so a stale view never
// outlives a profile refresh.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

func cacheKey(telegramID int64) string {
	return fmt.Sprintf("user:tg:%d", telegramID)
}

// Get returns the cached record, or ok=false on miss or any Redis
// failure. Cache errors never fail a request.
func (c *Cache) Get(ctx context.Context, telegramID int64) (User, bool) {
	if c == nil || c.rdb == nil {
		return User{}, false
	}
	raw, err := c.rdb.Get(ctx, cacheKey(telegramID)).Bytes()
	if err != nil {
		return User{}, false
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return User{}, false
	}
	return u, true
}

func (c *Cache) Set(ctx context.Context, u User) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKey(u.TelegramID), raw, c.ttl).Err()
}

func (c *Cache) Invalidate(ctx context.Context, telegramID int64) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, cacheKey(telegramID)).Err()
}
