package cache

import (
	"context"
	"errors"
	"time"

	platformconfig "github.com/qolzam/telar/apps/social/internal/platform/config"
)

// Cache defines the byte-level cache every backend implements
type Cache interface {
	// Get retrieves a value by key, or ErrKeyNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key
	Delete(ctx context.Context, key string) error

	// DeletePattern removes all keys matching a glob with * wildcards
	DeletePattern(ctx context.Context, pattern string) error

	Exists(ctx context.Context, key string) (bool, error)

	Close() error

	Stats() CacheStats
}

// CacheType represents a cache backend
type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeRedis  CacheType = "redis"
)

// IsValid checks if the cache type is valid
func (ct CacheType) IsValid() bool {
	switch ct {
	case CacheTypeMemory, CacheTypeRedis:
		return true
	default:
		return false
	}
}

// CacheConfig holds configuration for cache instances
type CacheConfig struct {
	Enabled         bool
	TTL             time.Duration
	Prefix          string
	Backend         CacheType
	MaxMemory       int64
	CleanupInterval time.Duration
	Redis           RedisConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Address      string
	Password     string
	Database     int
	PoolSize     int
	MinIdleConns int
}

// CacheStats provides cache performance statistics
type CacheStats struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	HitRatio    float64 `json:"hit_ratio"`
	Keys        int64   `json:"keys"`
	MemoryUsage int64   `json:"memory_usage"`
	Evictions   int64   `json:"evictions"`
}

// Common cache errors
var (
	ErrKeyNotFound           = errors.New("key not found")
	ErrCacheUnavailable      = errors.New("cache unavailable")
	ErrInvalidCacheType      = errors.New("invalid cache type")
	ErrCacheDisabled         = errors.New("cache disabled")
	ErrSerializationFailed   = errors.New("serialization failed")
	ErrDeserializationFailed = errors.New("deserialization failed")
)

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Enabled:         true,
		TTL:             5 * time.Minute,
		Prefix:          "social:",
		Backend:         CacheTypeMemory,
		MaxMemory:       64 * 1024 * 1024,
		CleanupInterval: time.Minute,
		Redis: RedisConfig{
			Address:      "localhost:6379",
			PoolSize:     10,
			MinIdleConns: 2,
		},
	}
}

// FromPlatformConfig maps the platform cache section onto a CacheConfig
func FromPlatformConfig(cfg platformconfig.CacheConfig) *CacheConfig {
	return &CacheConfig{
		Enabled:         cfg.Enabled,
		TTL:             cfg.TTL,
		Prefix:          cfg.Prefix,
		Backend:         CacheType(cfg.Backend),
		MaxMemory:       cfg.MaxMemory,
		CleanupInterval: cfg.CleanupInterval,
		Redis: RedisConfig{
			Address:      cfg.Redis.Address,
			Password:     cfg.Redis.Password,
			Database:     cfg.Redis.Database,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		},
	}
}
