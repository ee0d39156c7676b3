package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type cacheItem struct {
	value      []byte
	expiration time.Time
}

func (i *cacheItem) expired(now time.Time) bool {
	return now.After(i.expiration)
}

// MemoryCache implements Cache with a process-local map and a cleanup ticker
type MemoryCache struct {
	mu            sync.RWMutex
	items         map[string]*cacheItem
	maxMemory     int64
	currentMemory int64
	hits          int64
	misses        int64
	evictions     int64
	done          chan struct{}
	closeOnce     sync.Once
	closed        bool
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(config *CacheConfig) *MemoryCache {
	if config == nil {
		config = DefaultCacheConfig()
	}

	c := &MemoryCache{
		items:     make(map[string]*cacheItem),
		maxMemory: config.MaxMemory,
		done:      make(chan struct{}),
	}

	interval := config.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	go c.cleanupLoop(interval)

	return c
}

func itemSize(key string, value []byte) int64 {
	// key + value + estimated bookkeeping overhead
	return int64(len(key) + len(value) + 64)
}

// Get retrieves a value from cache
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil, ErrCacheDisabled
	}
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || item.expired(time.Now()) {
		atomic.AddInt64(&c.misses, 1)
		return nil, ErrKeyNotFound
	}

	atomic.AddInt64(&c.hits, 1)
	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, nil
}

// Set stores a value with expiration, evicting when over the memory limit
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCacheDisabled
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	if old, ok := c.items[key]; ok {
		c.currentMemory -= itemSize(key, old.value)
	}
	c.items[key] = &cacheItem{value: valueCopy, expiration: time.Now().Add(ttl)}
	c.currentMemory += itemSize(key, valueCopy)

	c.evictIfNeeded(key)
	return nil
}

// Delete removes a value from cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(key)
	return nil
}

// DeletePattern removes all keys matching the glob
func (c *MemoryCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		if matchPattern(key, pattern) {
			c.remove(key)
		}
	}
	return nil
}

// Exists checks if an unexpired key is present
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[key]
	return ok && !item.expired(time.Now()), nil
}

// Close stops the cleanup loop and drops every entry
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		c.items = make(map[string]*cacheItem)
		c.currentMemory = 0
		c.closed = true
		c.mu.Unlock()
	})
	return nil
}

// Stats returns cache statistics
func (c *MemoryCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	var active int64
	for _, item := range c.items {
		if !item.expired(now) {
			active++
		}
	}

	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	ratio := 0.0
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}

	return CacheStats{
		Hits:        hits,
		Misses:      misses,
		HitRatio:    ratio,
		Keys:        active,
		MemoryUsage: c.currentMemory,
		Evictions:   atomic.LoadInt64(&c.evictions),
	}
}

func (c *MemoryCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.done:
			return
		}
	}
}

func (c *MemoryCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if item.expired(now) {
			c.remove(key)
		}
	}
}

// remove must be called with c.mu held.
func (c *MemoryCache) remove(key string) {
	if item, ok := c.items[key]; ok {
		delete(c.items, key)
		c.currentMemory -= itemSize(key, item.value)
	}
}

// evictIfNeeded drops expired entries first, then arbitrary ones other than
// keep, until usage fits. Must be called with c.mu held.
func (c *MemoryCache) evictIfNeeded(keep string) {
	if c.maxMemory <= 0 || c.currentMemory <= c.maxMemory {
		return
	}

	now := time.Now()
	for key, item := range c.items {
		if item.expired(now) {
			c.remove(key)
			atomic.AddInt64(&c.evictions, 1)
		}
	}
	for key := range c.items {
		if c.currentMemory <= c.maxMemory {
			return
		}
		if key == keep {
			continue
		}
		c.remove(key)
		atomic.AddInt64(&c.evictions, 1)
	}
}

// matchPattern implements glob matching with * wildcards
func matchPattern(text, pattern string) bool {
	if pattern == "*" {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return text == pattern
	}

	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(text, parts[0]) {
		return false
	}
	pos := len(parts[0])
	last := parts[len(parts)-1]

	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(text[pos:], part)
		if idx < 0 {
			return false
		}
		pos += idx + len(part)
	}

	return len(text)-pos >= len(last) && strings.HasSuffix(text, last)
}
