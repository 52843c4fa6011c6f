package utils

import (
	"testing"
	"time"
)

func TestTTLCacheExpiry(t *testing.T) {
	c, err := NewTTLCache(10)
	if err != nil {
		t.Fatalf("NewTTLCache: %v", err)
	}
	now := base
	c.now = func() time.Time { return now }

	c.Set("posts:hot:1", []int{1, 2}, time.Minute)
	if _, ok := c.Get("posts:hot:1"); !ok {
		t.Fatal("expected cache hit")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("posts:hot:1"); ok {
		t.Fatal("expected entry to expire")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be evicted, len=%d", c.Len())
	}
}

func TestTTLCacheDeletePrefix(t *testing.T) {
	c, _ := NewTTLCache(10)
	c.Set("posts:hot:1", 1, time.Minute)
	c.Set("posts:new:1", 2, time.Minute)
	c.Set("post:1", 3, time.Minute)

	c.DeletePrefix("posts:")
	if _, ok := c.Get("posts:hot:1"); ok {
		t.Error("posts:hot:1 should be gone")
	}
	if _, ok := c.Get("post:1"); !ok {
		t.Error("post:1 should survive")
	}
}

func TestNewTTLCacheRejectsBadSize(t *testing.T) {
	if _, err := NewTTLCache(0); err == nil {
		t.Fatal("expected error for size 0")
	}
}
