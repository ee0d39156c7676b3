package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qolzam/telar/apps/social/internal/metrics"
	"github.com/qolzam/telar/apps/social/internal/pkg/log"
)

// GenericCacheService stores JSON values under a key prefix. Every method is
// safe to call when caching is disabled.
type GenericCacheService struct {
	cache  Cache
	config *CacheConfig
}

// NewGenericCacheService creates a new generic cache service
func NewGenericCacheService(cache Cache, config *CacheConfig) *GenericCacheService {
	if config == nil {
		config = DefaultCacheConfig()
		config.Enabled = cache != nil
	}
	return &GenericCacheService{
		cache:  cache,
		config: config,
	}
}

// IsEnabled returns whether caching is enabled
func (gcs *GenericCacheService) IsEnabled() bool {
	return gcs != nil && gcs.config.Enabled && gcs.cache != nil
}

// GetCached retrieves and unmarshals cached data into target
func (gcs *GenericCacheService) GetCached(ctx context.Context, key string, target interface{}) error {
	if !gcs.IsEnabled() {
		return ErrCacheDisabled
	}

	fullKey := gcs.buildKey(key)
	data, err := gcs.cache.Get(ctx, fullKey)
	if err != nil {
		metrics.ObserveCacheLookup(false)
		if !errors.Is(err, ErrKeyNotFound) {
			log.ErrorWithContext(ctx, "Cache get error for key %s: %v", fullKey, err)
		}
		return err
	}

	if err := json.Unmarshal(data, target); err != nil {
		metrics.ObserveCacheLookup(false)
		log.ErrorWithContext(ctx, "Cache data unmarshal error for key %s: %v", fullKey, err)
		return fmt.Errorf("%w: %v", ErrDeserializationFailed, err)
	}

	metrics.ObserveCacheLookup(true)
	log.Debug("Cache hit for key %s", fullKey)
	return nil
}

// CacheData marshals and stores data, using the configured TTL unless one is given
func (gcs *GenericCacheService) CacheData(ctx context.Context, key string, data interface{}, ttl ...time.Duration) error {
	if !gcs.IsEnabled() {
		return ErrCacheDisabled
	}

	cacheTTL := gcs.config.TTL
	if len(ttl) > 0 && ttl[0] > 0 {
		cacheTTL = ttl[0]
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.ErrorWithContext(ctx, "Cache data marshal error for key %s: %v", key, err)
		return fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}

	fullKey := gcs.buildKey(key)
	if err := gcs.cache.Set(ctx, fullKey, jsonData, cacheTTL); err != nil {
		log.ErrorWithContext(ctx, "Cache set error for key %s: %v", fullKey, err)
		return err
	}
	return nil
}

// InvalidatePattern removes all keys matching pattern under the prefix
func (gcs *GenericCacheService) InvalidatePattern(ctx context.Context, pattern string) error {
	if !gcs.IsEnabled() {
		return ErrCacheDisabled
	}

	fullPattern := gcs.buildKey(pattern)
	if err := gcs.cache.DeletePattern(ctx, fullPattern); err != nil {
		log.ErrorWithContext(ctx, "Cache pattern invalidation error for pattern %s: %v", fullPattern, err)
		return err
	}
	return nil
}

// InvalidateKey removes a specific key
func (gcs *GenericCacheService) InvalidateKey(ctx context.Context, key string) error {
	if !gcs.IsEnabled() {
		return ErrCacheDisabled
	}

	fullKey := gcs.buildKey(key)
	if err := gcs.cache.Delete(ctx, fullKey); err != nil {
		log.ErrorWithContext(ctx, "Cache key invalidation error for key %s: %v", fullKey, err)
		return err
	}
	return nil
}

// GetStats returns backend statistics
func (gcs *GenericCacheService) GetStats() CacheStats {
	if !gcs.IsEnabled() {
		return CacheStats{}
	}
	return gcs.cache.Stats()
}

// Close closes the underlying cache
func (gcs *GenericCacheService) Close() error {
	if gcs != nil && gcs.cache != nil {
		return gcs.cache.Close()
	}
	return nil
}

func (gcs *GenericCacheService) buildKey(key string) string {
	prefix := gcs.config.Prefix
	if prefix == "" {
		return key
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return prefix + key
}
