// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/subosito/gotenv"
)

// Config is the root configuration of the social API.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Cache    CacheConfig    `json:"cache"`
	NATS     NATSConfig     `json:"nats"`
	Metrics  MetricsConfig  `json:"metrics"`
}

type ServerConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	WebDomain string `json:"webDomain"`
	Debug     bool   `json:"debug"`
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Type                  string           `json:"type"`
	MongoDB               MongoDBConfig    `json:"mongodb"`
	Postgres              PostgreSQLConfig `json:"postgres"`
	ForceNonTransactional bool             `json:"forceNonTransactional"`
}

type MongoDBConfig struct {
	URI            string        `json:"uri"`
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	Username       string        `json:"username"`
	Password       string        `json:"password"`
	Database       string        `json:"database"`
	AuthDatabase   string        `json:"authDatabase"`
	ReplicaSet     string        `json:"replicaSet"`
	MaxPoolSize    int           `json:"maxPoolSize"`
	ConnectTimeout time.Duration `json:"connectTimeout"`
	SocketTimeout  time.Duration `json:"socketTimeout"`
}

type PostgreSQLConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Username        string        `json:"username"`
	Password        string        `json:"password"`
	Database        string        `json:"database"`
	Schema          string        `json:"schema"`
	SSLMode         string        `json:"sslMode"`
	MaxOpenConns    int           `json:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime"`
}

type CacheConfig struct {
	Enabled         bool          `json:"enabled"`
	Backend         string        `json:"backend"`
	TTL             time.Duration `json:"ttl"`
	Prefix          string        `json:"prefix"`
	MaxMemory       int64         `json:"maxMemory"`
	CleanupInterval time.Duration `json:"cleanupInterval"`
	Redis           RedisConfig   `json:"redis"`
}

type RedisConfig struct {
	Address      string `json:"address"`
	Password     string `json:"password"`
	Database     int    `json:"database"`
	PoolSize     int    `json:"poolSize"`
	MinIdleConns int    `json:"minIdleConns"`
}

type NATSConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
	Subject string `json:"subject"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

var validDBTypes = []string{"mongodb", "postgresql", "memory"}

var validCacheBackends = []string{"memory", "redis"}

// LoadFromEnv loads configuration from a .env file (when present) and the process environment.
func LoadFromEnv() (*Config, error) {
	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	var loadErr error
	for _, envPath := range envPaths {
		loadErr = godotenv.Load(envPath)
		if loadErr == nil {
			break
		}
	}

	if loadErr != nil {
		fmt.Println("INFO: .env file not found, using environment variables and defaults.")
	}

	return build(os.Getenv)
}

// LoadFromMap builds configuration from an in-memory map. It never touches the process
// environment so tests can run in parallel.
func LoadFromMap(envMap map[string]string) (*Config, error) {
	return build(func(key string) string {
		return envMap[key]
	})
}

// LoadFromFile reads an explicit env file without exporting it into the process environment.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()

	env, err := gotenv.StrictParse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return LoadFromMap(env)
}

func build(lookup func(string) string) (*Config, error) {
	e := envReader{lookup: lookup}

	config := &Config{
		Server: ServerConfig{
			Host:      e.get("HOST", "0.0.0.0"),
			Port:      e.getInt("SERVER_PORT", 8080),
			WebDomain: e.get("WEB_DOMAIN", "*"),
			Debug:     e.getBool("DEBUG", false),
		},
		Database: DatabaseConfig{
			Type:                  strings.ToLower(e.get("DB_TYPE", "mongodb")),
			ForceNonTransactional: e.getBool("FORCE_NON_TRANSACTIONAL", false),
			MongoDB: MongoDBConfig{
				URI:            e.get("MONGO_URI", ""),
				Host:           e.get("MONGO_HOST", "localhost"),
				Port:           e.getInt("MONGO_PORT", 27017),
				Username:       e.get("MONGO_USERNAME", ""),
				Password:       e.get("MONGO_PASSWORD", ""),
				Database:       e.get("MONGO_DATABASE", "social"),
				AuthDatabase:   e.get("MONGO_AUTH_DATABASE", ""),
				ReplicaSet:     e.get("MONGO_REPLICA_SET", ""),
				MaxPoolSize:    e.getInt("MONGO_MAX_POOL_SIZE", 100),
				ConnectTimeout: e.getDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
				SocketTimeout:  e.getDuration("MONGO_SOCKET_TIMEOUT", 30*time.Second),
			},
			Postgres: PostgreSQLConfig{
				Host:            e.get("POSTGRES_HOST", "localhost"),
				Port:            e.getInt("POSTGRES_PORT", 5432),
				Username:        e.get("POSTGRES_USERNAME", ""),
				Password:        e.get("POSTGRES_PASSWORD", ""),
				Database:        e.get("POSTGRES_DATABASE", "social"),
				Schema:          e.get("POSTGRES_SCHEMA", "public"),
				SSLMode:         e.get("POSTGRES_SSL_MODE", "disable"),
				MaxOpenConns:    e.getInt("POSTGRES_MAX_OPEN_CONNS", 25),
				MaxIdleConns:    e.getInt("POSTGRES_MAX_IDLE_CONNS", 25),
				ConnMaxLifetime: time.Duration(e.getInt("POSTGRES_CONN_MAX_LIFETIME", 300)) * time.Second,
			},
		},
		Cache: CacheConfig{
			Enabled:         e.getBool("CACHE_ENABLED", false),
			Backend:         strings.ToLower(e.get("CACHE_BACKEND", "memory")),
			TTL:             e.getDuration("CACHE_TTL", 5*time.Minute),
			Prefix:          e.get("CACHE_PREFIX", "social:"),
			MaxMemory:       e.getInt64("CACHE_MAX_MEMORY", 64*1024*1024),
			CleanupInterval: e.getDuration("CACHE_CLEANUP_INTERVAL", 5*time.Minute),
			Redis: RedisConfig{
				Address:      e.get("REDIS_ADDRESS", "localhost:6379"),
				Password:     e.get("REDIS_PASSWORD", ""),
				Database:     e.getInt("REDIS_DATABASE", 0),
				PoolSize:     e.getInt("REDIS_POOL_SIZE", 10),
				MinIdleConns: e.getInt("REDIS_MIN_IDLE_CONNS", 2),
			},
		},
		NATS: NATSConfig{
			Enabled: e.getBool("NATS_ENABLED", false),
			URL:     e.get("NATS_URL", "nats://localhost:4222"),
			Subject: e.get("NATS_SUBJECT_PREFIX", "social"),
		},
		Metrics: MetricsConfig{
			Enabled: e.getBool("METRICS_ENABLED", true),
			Path:    e.get("METRICS_PATH", "/metrics"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration for required fields
func (c *Config) Validate() error {
	var errors []string

	if !contains(validDBTypes, c.Database.Type) {
		errors = append(errors, fmt.Sprintf("DB_TYPE must be one of: %s", strings.Join(validDBTypes, ", ")))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}

	if c.Cache.Enabled && !contains(validCacheBackends, c.Cache.Backend) {
		errors = append(errors, fmt.Sprintf("CACHE_BACKEND must be one of: %s", strings.Join(validCacheBackends, ", ")))
	}

	if c.NATS.Enabled && strings.TrimSpace(c.NATS.URL) == "" {
		errors = append(errors, "NATS_URL is required when NATS_ENABLED is true")
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errors = append(errors, "METRICS_PATH must start with /")
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// envReader applies typed defaults on top of a key lookup.
type envReader struct {
	lookup func(string) string
}

func (e envReader) get(key, defaultValue string) string {
	if value := e.lookup(key); value != "" {
		return value
	}
	return defaultValue
}

func (e envReader) getInt(key string, defaultValue int) int {
	if value := e.lookup(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (e envReader) getInt64(key string, defaultValue int64) int64 {
	if value := e.lookup(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (e envReader) getBool(key string, defaultValue bool) bool {
	if value := e.lookup(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func (e envReader) getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := e.lookup(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
