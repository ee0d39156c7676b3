package cache

import "fmt"

// CacheFactory creates cache instances based on configuration
type CacheFactory struct{}

// NewCacheFactory creates a new cache factory
func NewCacheFactory() *CacheFactory {
	return &CacheFactory{}
}

// CreateCache creates a cache instance for the configured backend
func (f *CacheFactory) CreateCache(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Backend {
	case CacheTypeMemory:
		return NewMemoryCache(config), nil
	case CacheTypeRedis:
		return NewRedisCache(config)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidCacheType, config.Backend)
	}
}

// NewCacheService builds the cache service for config. A disabled config, or a
// backend that cannot be reached, yields a disabled service and the cause.
func NewCacheService(config *CacheConfig) (*GenericCacheService, error) {
	if config == nil || !config.Enabled {
		return NewGenericCacheService(nil, config), nil
	}

	c, err := NewCacheFactory().CreateCache(config)
	if err != nil {
		return NewGenericCacheService(nil, config), err
	}
	return NewGenericCacheService(c, config), nil
}
