package utils

import (
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheEntry 包装缓存数据和过期时间
type cacheEntry struct {
	data      any
	expiresAt time.Time
}

// TTLCache 带过期时间的本地 LRU 缓存
type TTLCache struct {
	lru *lru.Cache[string, cacheEntry]
	now func() time.Time
}

var (
	cacheInstance *TTLCache
	cacheOnce     sync.Once
	cacheSize     = 500
)

// NewTTLCache 创建容量为 size 的缓存
func NewTTLCache(size int) (*TTLCache, error) {
	l, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &TTLCache{lru: l, now: time.Now}, nil
}

// SetCacheSize 在首次调用 GetCache 之前设置全局缓存容量
func SetCacheSize(size int) {
	if size > 0 {
		cacheSize = size
	}
}

// GetCache 获取单例缓存实例
func GetCache() *TTLCache {
	cacheOnce.Do(func() {
		c, err := NewTTLCache(cacheSize)
		if err != nil {
			// 容量非法时退回默认值
			c, _ = NewTTLCache(500)
		}
		cacheInstance = c
	})
	return cacheInstance
}

// Set 设置缓存，ttl 为有效期
func (c *TTLCache) Set(key string, data any, ttl time.Duration) {
	c.lru.Add(key, cacheEntry{data: data, expiresAt: c.now().Add(ttl)})
}

// Get 获取缓存，不存在或已过期返回 false
func (c *TTLCache) Get(key string) (any, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.lru.Remove(key)
		return nil, false
	}
	return e.data, true
}

// Delete 删除指定缓存
func (c *TTLCache) Delete(key string) {
	c.lru.Remove(key)
}

// DeletePrefix 删除所有以 prefix 开头的键，用于列表页整体失效
func (c *TTLCache) DeletePrefix(prefix string) {
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.lru.Remove(k)
		}
	}
}

func (c *TTLCache) Len() int {
	return c.lru.Len()
}
