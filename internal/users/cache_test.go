package users

import (
	"context"
	"testing"
)

func TestCache_NilIsDisabled(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	if _, ok := c.Get(ctx, 42); ok {
		t.Fatalf("nil cache must always miss")
	}
	if err := c.Set(ctx, User{TelegramID: 42}); err != nil {
		t.Fatalf("set on nil cache: %v", err)
	}
	if err := c.Invalidate(ctx, 42); err != nil {
		t.Fatalf("invalidate on nil cache: %v", err)
	}
}

func TestCacheKey(t *testing.T) {
	if got := cacheKey(42); got != "user:tg:42" {
		t.Fatalf("key = %q", got)
	}
}
